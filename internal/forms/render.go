package forms

import (
	"html/template"
	"io"

	"pagecraft-backend/internal/validation"
)

// Page is the data passed to the form template.
type Page struct {
	Title   string
	Action  string
	Form    Form
	Fields  []fieldView
	Entries []sectionView
	Banner  string

	// CSRFToken is echoed as a hidden field for cookie-authenticated posts.
	CSRFToken string
}

type fieldView struct {
	Control
	Value string
	Error *validation.FieldError
}

type sectionView struct {
	Control
	State FieldState
}

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<main class="content-form">
<h1>{{.Form.TemplateName}}</h1>
{{with .Form.Description}}<p class="description">{{.}}</p>{{end}}
{{with .Banner}}<div class="banner banner--error" role="alert">{{.}}</div>{{end}}
<form method="post" action="{{.Action}}" enctype="multipart/form-data">
<input type="hidden" name="templateId" value="{{.Form.TemplateID}}">
{{with .CSRFToken}}<input type="hidden" name="csrf_token" value="{{.}}">{{end}}
{{range .Fields}}
<div class="field{{if .Error}} field--invalid{{end}}">
<label for="{{.Name}}">{{.Label}}{{if .Required}} *{{end}}</label>
{{if eq .Kind "color"}}<input type="text" id="{{.Name}}" name="{{.Name}}" value="{{.Value}}" placeholder="{{.Placeholder}}" pattern="#([0-9A-Fa-f]{3}){1,2}">
{{else}}<input type="text" id="{{.Name}}" name="{{.Name}}" value="{{.Value}}" minlength="{{.MinLength}}" maxlength="{{.MaxLength}}"{{if .Required}} required{{end}}>
{{end}}{{with .Error}}<p class="field__error">{{.Message}}</p>{{end}}
</div>
{{end}}
{{range .Entries}}
<div class="section section--{{.SectionType}}{{if .State.Error}} section--invalid{{end}}" data-order="{{.Order}}">
<label for="{{.Name}}">{{.Label}}{{if .Required}} *{{end}}</label>
{{with .Description}}<p class="section__description">{{.}}</p>{{end}}
{{if eq .Kind "textarea"}}<textarea id="{{.Name}}" name="{{.Name}}" placeholder="{{.Placeholder}}"{{if gt .MaxLength 0}} maxlength="{{.MaxLength}}"{{end}}>{{.State.Value}}</textarea>
{{else if eq .Kind "url"}}<input type="url" id="{{.Name}}" name="{{.Name}}" value="{{.State.Value}}" placeholder="{{.Placeholder}}">
{{else if eq .Kind "file"}}{{$name := .Name}}{{with .State.Value}}<p class="section__current"><a href="{{.}}">current file</a></p><input type="hidden" name="{{$name}}" value="{{.}}">{{end}}<input type="file" id="{{.Name}}" name="{{.Name}}" accept="{{.AcceptAttr}}">
{{else if eq .Kind "media"}}<fieldset class="media" data-mode="{{.State.Mode}}">
{{range .Modes}}<span class="media__mode">{{.}}</span>{{end}}
<input type="hidden" name="{{.Name}}__mode" value="{{.State.Mode}}">
{{if eq .State.Mode "upload"}}<input type="file" id="{{.Name}}" name="{{.Name}}" accept="{{.AcceptAttr}}">
{{else}}<input type="url" id="{{.Name}}" name="{{.Name}}" value="{{.State.Value}}" placeholder="{{.Placeholder}}">
{{end}}{{with .State.Preview}}<p class="media__preview">{{.}}</p>{{end}}
</fieldset>
{{end}}{{if gt .MaxSizeMB 0}}<p class="section__hint">Up to {{.MaxSizeMB}} MB</p>{{end}}
{{with .State.Error}}<p class="section__error">{{.Message}}</p>{{end}}
</div>
{{end}}
<button type="submit">Publish</button>
</form>
</main>
</body>
</html>
`))

// NewPage builds the view of s.
func NewPage(title, action string, s *State, banner string) Page {
	p := Page{
		Title:  title,
		Action: action,
		Form:   s.form,
		Banner: banner,
	}

	values := map[string]string{
		validation.FieldHeading:         s.Heading,
		validation.FieldSubheading:      s.Subheading,
		validation.FieldBackgroundColor: s.BackgroundColor,
	}
	for _, c := range s.form.Fields {
		p.Fields = append(p.Fields, fieldView{Control: c, Value: values[c.Name], Error: s.top[c.Name]})
	}
	for _, c := range s.form.Sections {
		p.Entries = append(p.Entries, sectionView{Control: c, State: *s.fields[c.Name]})
	}
	return p
}

// Render writes the HTML form for s.
func Render(w io.Writer, page Page) error {
	return formTemplate.Execute(w, page)
}
