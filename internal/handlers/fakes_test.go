package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/constants"
	"pagecraft-backend/internal/layouts"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/service"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withSession stands in for the auth middleware.
func withSession(sess session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextSessionKey, sess)
		c.Request = c.Request.WithContext(session.WithContext(c.Request.Context(), sess))
		c.Next()
	}
}

// fakeContent records the last submission. Methods a test does not need
// are left to the embedded nil interface.
type fakeContent struct {
	service.ContentUseCase

	docs      map[uint]*models.Content
	submitted *service.SubmissionInput
	submitErr error
	nextID    uint
}

func newFakeContent(docs ...*models.Content) *fakeContent {
	f := &fakeContent{docs: make(map[uint]*models.Content), nextID: 100}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return f
}

func (f *fakeContent) Engine() *validation.Engine {
	return validation.NewEngine(validation.DefaultUploadPrefix)
}

func (f *fakeContent) Submit(_ context.Context, actor session.Session, in service.SubmissionInput) (*models.Content, error) {
	f.submitted = &in
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.nextID++
	doc := &models.Content{ID: f.nextID, TemplateID: in.TemplateID, Heading: in.Heading, CreatedBy: actor.UserID}
	f.docs[doc.ID] = doc
	return doc, nil
}

func (f *fakeContent) Update(_ context.Context, _ session.Session, id uint, in service.SubmissionInput) (*models.Content, error) {
	f.submitted = &in
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.docs[id], nil
}

func (f *fakeContent) GetByID(id uint) (*models.Content, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, service.ErrContentNotFound
	}
	return doc, nil
}

func (f *fakeContent) SchemaFor(doc *models.Content) (sections.Schema, error) {
	return sections.Normalize(doc.Schema), nil
}

func (f *fakeContent) Render(id uint, layout string) (layouts.View, error) {
	doc, err := f.GetByID(id)
	if err != nil {
		return layouts.View{}, err
	}
	return layouts.Arrange(doc, layouts.DefaultRegistry().Lookup(layout)), nil
}

type fakeTemplates struct {
	service.TemplateUseCase

	templates map[uint]*models.Template
}

func (f *fakeTemplates) GetByID(id uint) (*models.Template, error) {
	tmpl, ok := f.templates[id]
	if !ok {
		return nil, service.ErrTemplateNotFound
	}
	return tmpl, nil
}

type fakeShortLinks struct {
	service.ShortLinkUseCase

	targets map[string]string
}

func (f *fakeShortLinks) Resolve(code string) (string, error) {
	target, ok := f.targets[code]
	if !ok {
		return "", service.ErrShortLinkNotFound
	}
	return target, nil
}
