package layouts

import (
	"html/template"
	"io"
	"strings"

	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/validation"
	"pagecraft-backend/pkg/validator"
)

// View is a content document arranged by one layout.
type View struct {
	ContentID       uint    `json:"content_id"`
	Layout          string  `json:"layout"`
	Heading         string  `json:"heading"`
	Subheading      string  `json:"subheading"`
	BackgroundColor string  `json:"background_color"`
	Groups          []Group `json:"groups"`
}

// Arrange orders doc and groups it with layout.
func Arrange(doc *models.Content, layout Layout) View {
	background := doc.BackgroundColor
	if !validator.IsHexColor(background) {
		background = "#ffffff"
	}
	return View{
		ContentID:       doc.ID,
		Layout:          layout.Name,
		Heading:         doc.Heading,
		Subheading:      doc.Subheading,
		BackgroundColor: background,
		Groups:          layout.Arrange(Ordered(doc)),
	}
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"entry": renderEntry,
	"css":   func(s string) template.CSS { return template.CSS(s) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Heading}}</title></head>
<body style="background-color: {{css .BackgroundColor}}">
<main class="layout layout--{{.Layout}}">
<header><h1>{{.Heading}}</h1>{{with .Subheading}}<p class="subheading">{{.}}</p>{{end}}</header>
{{range .Groups}}<section class="group group--{{.Name}}">
{{range .Entries}}<div class="entry entry--{{.Type}}" data-order="{{.Order}}">{{with .Title}}<h2>{{.}}</h2>{{end}}{{entry .}}</div>
{{end}}</section>
{{end}}</main>
</body>
</html>
`))

// Render writes the HTML page for v.
func Render(w io.Writer, v View) error {
	return pageTemplate.Execute(w, v)
}

var entryTemplates = template.Must(template.New("entries").Parse(`
{{define "text"}}<p>{{.}}</p>{{end}}
{{define "image"}}<img src="{{.}}" alt="" loading="lazy">{{end}}
{{define "youtube"}}<iframe src="{{.}}" allow="accelerometer; encrypted-media; picture-in-picture" allowfullscreen loading="lazy"></iframe>{{end}}
{{define "video"}}<video src="{{.}}" controls preload="metadata"></video>{{end}}
{{define "file"}}<a href="{{.}}" download>Download</a>{{end}}
{{define "link"}}<a href="{{.}}" rel="noopener noreferrer" target="_blank">{{.}}</a>{{end}}
`))

func renderEntry(e Entry) (template.HTML, error) {
	var b strings.Builder
	var err error

	switch e.Type {
	case sections.KindText:
		if e.Format == sections.FormatHTML {
			return template.HTML(validator.SanitizeHTML(e.Value)), nil
		}
		err = entryTemplates.ExecuteTemplate(&b, "text", e.Value)
	case sections.KindImage:
		err = entryTemplates.ExecuteTemplate(&b, "image", e.Value)
	case sections.KindVideo:
		if info, verr := validation.ValidateVideoURL(e.Value); verr == nil && info.IsYouTube() {
			err = entryTemplates.ExecuteTemplate(&b, "youtube", info.EmbedURL())
		} else {
			err = entryTemplates.ExecuteTemplate(&b, "video", e.Value)
		}
	case sections.KindFile:
		err = entryTemplates.ExecuteTemplate(&b, "file", e.Value)
	case sections.KindLink:
		err = entryTemplates.ExecuteTemplate(&b, "link", e.Value)
	}
	if err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
