package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/constants"
	"pagecraft-backend/internal/forms"
	"pagecraft-backend/internal/layouts"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/service"
	"pagecraft-backend/internal/validation"
	"pagecraft-backend/pkg/logger"
)

const fixFieldsBanner = "Please correct the highlighted fields."

// PageHandler serves the server-rendered form and content pages.
type PageHandler struct {
	templates service.TemplateUseCase
	content   service.ContentUseCase
}

func NewPageHandler(templates service.TemplateUseCase, content service.ContentUseCase) *PageHandler {
	return &PageHandler{templates: templates, content: content}
}

func (h *PageHandler) TemplateForm(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tmpl, ok := h.publishedTemplate(c, id)
	if !ok {
		return
	}

	state := forms.NewState(forms.Generate(tmpl), h.content.Engine())
	h.renderForm(c, http.StatusOK, state, formAction(id), "")
}

func (h *PageHandler) SubmitTemplateForm(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tmpl, ok := h.publishedTemplate(c, id)
	if !ok {
		return
	}

	in, err := readSubmission(c)
	if err != nil {
		h.renderError(c, http.StatusBadRequest, err.Error())
		return
	}
	in.TemplateID = tmpl.ID

	doc, err := h.content.Submit(c.Request.Context(), currentSession(c), in)
	if err != nil {
		state := forms.NewState(forms.Generate(tmpl), h.content.Engine())
		h.renderFailure(c, state, in, formAction(id), err)
		return
	}

	c.Redirect(http.StatusSeeOther, renderPath(doc.ID))
}

func (h *PageHandler) EditForm(c *gin.Context) {
	doc, state, ok := h.editableContent(c)
	if !ok {
		return
	}

	state.Load(contentSubmission(doc))
	h.renderForm(c, http.StatusOK, state, editAction(doc.ID), "")
}

func (h *PageHandler) SubmitEditForm(c *gin.Context) {
	doc, state, ok := h.editableContent(c)
	if !ok {
		return
	}

	in, err := readSubmission(c)
	if err != nil {
		h.renderError(c, http.StatusBadRequest, err.Error())
		return
	}
	in.TemplateID = doc.TemplateID

	if _, err := h.content.Update(c.Request.Context(), currentSession(c), doc.ID, in); err != nil {
		h.renderFailure(c, state, in, editAction(doc.ID), err)
		return
	}

	c.Redirect(http.StatusSeeOther, renderPath(doc.ID))
}

// RenderContent writes a document arranged by the layout named in ?layout=.
func (h *PageHandler) RenderContent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := h.content.Render(id, c.Query("layout"))
	if err != nil {
		h.renderError(c, statusFor(err), err.Error())
		return
	}

	var buf bytes.Buffer
	if err := layouts.Render(&buf, view); err != nil {
		logger.Error(err, "Failed to render content page", map[string]interface{}{"content_id": id})
		h.renderError(c, http.StatusInternalServerError, "")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PageHandler) publishedTemplate(c *gin.Context, id uint) (*models.Template, bool) {
	tmpl, err := h.templates.GetByID(id)
	if err != nil {
		h.renderError(c, statusFor(err), err.Error())
		return nil, false
	}
	if tmpl.Status != models.TemplatePublished {
		h.renderError(c, http.StatusNotFound, service.ErrTemplateNotPublished.Error())
		return nil, false
	}
	return tmpl, true
}

// editableContent loads the document named by :id and a form built from the
// schema it was submitted against. Only the creator may edit.
func (h *PageHandler) editableContent(c *gin.Context) (*models.Content, *forms.State, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, nil, false
	}
	doc, err := h.content.GetByID(id)
	if err != nil {
		h.renderError(c, statusFor(err), err.Error())
		return nil, nil, false
	}
	if doc.CreatedBy != currentSession(c).UserID {
		h.renderError(c, http.StatusForbidden, service.ErrContentForbidden.Error())
		return nil, nil, false
	}

	schema, err := h.content.SchemaFor(doc)
	if err != nil {
		h.renderError(c, statusFor(err), err.Error())
		return nil, nil, false
	}

	name, description := doc.Heading, ""
	if doc.Template != nil {
		name, description = doc.Template.Name, doc.Template.Description
	}
	form := forms.GenerateFromSchema(doc.TemplateID, name, description, schema)
	return doc, forms.NewState(form, h.content.Engine()), true
}

// renderFailure re-renders the posted values with inline errors. Failures
// that are not about a field are shown in the banner.
func (h *PageHandler) renderFailure(c *gin.Context, state *forms.State, in service.SubmissionInput, action string, err error) {
	state.Load(asValidationSubmission(in))

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		state.ApplyErrors(verrs)
		h.renderForm(c, http.StatusUnprocessableEntity, state, action, fixFieldsBanner)
		return
	}

	status := statusFor(err)
	banner := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).WithError(err).Error("Content submission failed")
		banner = "Something went wrong. Please try again."
	}
	h.renderForm(c, status, state, action, banner)
}

func (h *PageHandler) renderForm(c *gin.Context, status int, state *forms.State, action, banner string) {
	page := forms.NewPage(state.Form().TemplateName, action, state, banner)
	if token, err := c.Cookie(constants.CSRFTokenCookieName); err == nil {
		page.CSRFToken = token
	}

	var buf bytes.Buffer
	if err := forms.Render(&buf, page); err != nil {
		logger.Error(err, "Failed to render form", map[string]interface{}{"template_id": state.Form().TemplateID})
		h.renderError(c, http.StatusInternalServerError, "")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PageHandler) renderError(c *gin.Context, status int, message string) {
	if message == "" || status == http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	c.String(status, message)
}

// contentSubmission turns a stored document back into form input.
func contentSubmission(doc *models.Content) validation.Submission {
	sub := validation.Submission{
		Heading:         doc.Heading,
		Subheading:      doc.Subheading,
		BackgroundColor: doc.BackgroundColor,
		Values:          make(map[string]string, len(doc.Sections)),
		Files:           map[string]*validation.FileInfo{},
	}
	for id, value := range doc.Sections {
		sub.Values[id] = value.Value
	}
	return sub
}

func formAction(templateID uint) string {
	return fmt.Sprintf("/templates/%d/form", templateID)
}

func editAction(contentID uint) string {
	return fmt.Sprintf("/content/%d/edit", contentID)
}

func renderPath(contentID uint) string {
	return fmt.Sprintf("/content/%d/render", contentID)
}
