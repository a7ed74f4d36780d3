package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/forms"
	"pagecraft-backend/internal/service"
	"pagecraft-backend/internal/validation"
)

const (
	multipartMemory = 32 << 20
	modeSuffix      = "__mode"
)

var errTemplateIDRequired = errors.New("template id is required")

// submissionJSON is the JSON form of a submission. Media sections accept
// URLs only; files need a multipart request.
type submissionJSON struct {
	TemplateID      uint              `json:"template_id"`
	Heading         string            `json:"heading"`
	Subheading      string            `json:"subheading"`
	BackgroundColor string            `json:"background_color"`
	Sections        map[string]string `json:"sections"`
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data") ||
		c.ContentType() == "application/x-www-form-urlencoded"
}

// readSubmission decodes the request body into a submission. Multipart
// fields use the generated form's names: heading, subheading,
// backgroundColor and one entry per section id. A media control posted with
// <id>__mode=url ignores any attached file.
func readSubmission(c *gin.Context) (service.SubmissionInput, error) {
	if !isMultipart(c) {
		var body submissionJSON
		if err := c.ShouldBindJSON(&body); err != nil {
			return service.SubmissionInput{}, err
		}
		return service.SubmissionInput{
			TemplateID:      body.TemplateID,
			Heading:         body.Heading,
			Subheading:      body.Subheading,
			BackgroundColor: body.BackgroundColor,
			Values:          body.Sections,
		}, nil
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return service.SubmissionInput{}, err
	}

	in := service.SubmissionInput{
		Heading:         c.PostForm(validation.FieldHeading),
		Subheading:      c.PostForm(validation.FieldSubheading),
		BackgroundColor: c.PostForm(validation.FieldBackgroundColor),
		Values:          make(map[string]string),
		Files:           make(map[string]*multipart.FileHeader),
	}
	if raw := c.PostForm("templateId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return service.SubmissionInput{}, errTemplateIDRequired
		}
		in.TemplateID = uint(id)
	}

	form := c.Request.MultipartForm
	postValues := c.Request.PostForm
	for name, values := range postValues {
		if len(values) == 0 || isReservedField(name) {
			continue
		}
		in.Values[name] = values[len(values)-1]
	}
	if form == nil {
		return in, nil
	}
	for name, files := range form.File {
		if len(files) == 0 || (files[0].Size == 0 && files[0].Filename == "") {
			continue
		}
		if forms.Mode(postValues.Get(name+modeSuffix)) == forms.ModeURL {
			continue
		}
		in.Files[name] = files[0]
	}
	return in, nil
}

func isReservedField(name string) bool {
	switch name {
	case validation.FieldHeading, validation.FieldSubheading, validation.FieldBackgroundColor, "templateId", "csrf_token":
		return true
	}
	return strings.HasSuffix(name, modeSuffix)
}

// asValidationSubmission is what the form state replays after a failed post.
func asValidationSubmission(in service.SubmissionInput) validation.Submission {
	sub := validation.Submission{
		Heading:         in.Heading,
		Subheading:      in.Subheading,
		BackgroundColor: in.BackgroundColor,
		Values:          make(map[string]string, len(in.Values)),
		Files:           make(map[string]*validation.FileInfo, len(in.Files)),
	}
	for id, value := range in.Values {
		sub.Values[id] = value
	}
	for id, file := range in.Files {
		sub.Files[id] = service.FileInfo(file)
	}
	return sub
}
