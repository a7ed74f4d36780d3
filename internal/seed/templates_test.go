package seed

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/service"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/pkg/utils"
)

func TestBundledTemplatesAreValid(t *testing.T) {
	definitions, err := loadTemplateDefinitions(defaultTemplatesFS, templatesDir)
	require.NoError(t, err)
	require.Len(t, definitions, 3)

	for _, def := range definitions {
		schema := sections.Normalize(def.Sections)
		assert.NoError(t, schema.Validate(), def.Name)
		assert.NotEmpty(t, schema, def.Name)
	}

	article := definitions[0]
	assert.Equal(t, "Article", article.Name)
	text, ok := article.Sections[0].Config.(*sections.TextConfig)
	require.True(t, ok)
	assert.Equal(t, sections.FormatMarkdown, text.Format)
	assert.Equal(t, 100, text.MinLength)
}

func TestLoadTemplateDefinitionsRejectsBadFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"t/ok.yaml":    {Data: []byte("name: Ok\nsections: []\n")},
		"t/notes.txt":  {Data: []byte("ignored")},
		"t/bad.yaml":   {Data: []byte("name: Bad\nsections:\n  - type: hologram\n")},
		"t/empty.yaml": {Data: []byte("description: no name\n")},
	}

	_, err := loadTemplateDefinitions(fsys, "t")
	assert.Error(t, err)

	delete(fsys, "t/bad.yaml")
	_, err = loadTemplateDefinitions(fsys, "t")
	assert.ErrorContains(t, err, "empty.yaml")

	delete(fsys, "t/empty.yaml")
	definitions, err := loadTemplateDefinitions(fsys, "t")
	require.NoError(t, err)
	assert.Len(t, definitions, 1)
}

type recordingTemplates struct {
	service.TemplateUseCase

	bySlug    map[string]*models.Template
	published []uint
	nextID    uint
}

func (r *recordingTemplates) GetBySlug(slug string) (*models.Template, error) {
	if tmpl, ok := r.bySlug[slug]; ok {
		return tmpl, nil
	}
	return nil, service.ErrTemplateNotFound
}

func (r *recordingTemplates) Create(actor session.Session, req models.CreateTemplateRequest) (*models.Template, error) {
	r.nextID++
	tmpl := &models.Template{ID: r.nextID, Name: req.Name, Slug: utils.GenerateSlug(req.Name), CreatedBy: actor.UserID}
	r.bySlug[tmpl.Slug] = tmpl
	return tmpl, nil
}

func (r *recordingTemplates) SetStatus(id uint, status models.TemplateStatus) (*models.Template, error) {
	r.published = append(r.published, id)
	return &models.Template{ID: id, Status: status}, nil
}

func TestEnsureDefaultTemplatesIsIdempotent(t *testing.T) {
	templates := &recordingTemplates{bySlug: map[string]*models.Template{
		"article": {ID: 50, Name: "Article", Slug: "article"},
	}}
	owner := session.Session{UserID: 1, Role: authorization.RoleSuperadmin}

	EnsureDefaultTemplates(templates, owner)

	assert.Len(t, templates.bySlug, 3)
	assert.Equal(t, uint(1), templates.bySlug["landing-page"].CreatedBy)
	assert.Equal(t, []uint{2}, templates.published, "only the new published-by-default template is published")

	EnsureDefaultTemplates(templates, owner)
	assert.Len(t, templates.bySlug, 3)
	assert.Equal(t, uint(2), templates.nextID)
}

func TestEnsureDefaultTemplatesNeedsOwner(t *testing.T) {
	templates := &recordingTemplates{bySlug: map[string]*models.Template{}}
	EnsureDefaultTemplates(templates, session.Session{})
	assert.Empty(t, templates.bySlug)
}
