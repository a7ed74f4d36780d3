package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/layouts"
	"pagecraft-backend/internal/metrics"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/internal/validation"
	"pagecraft-backend/pkg/logger"
)

var (
	ErrContentNotFound  = errors.New("content not found")
	ErrContentForbidden = errors.New("only the creator can change this content")
)

// SubmissionInput is one filled-in form. Values and Files are keyed by
// section id; a section with a file ignores its value.
type SubmissionInput struct {
	TemplateID      uint
	Heading         string
	Subheading      string
	BackgroundColor string
	Values          map[string]string
	Files           map[string]*multipart.FileHeader
}

func (in SubmissionInput) submission() validation.Submission {
	sub := validation.Submission{
		Heading:         strings.TrimSpace(in.Heading),
		Subheading:      strings.TrimSpace(in.Subheading),
		BackgroundColor: strings.TrimSpace(in.BackgroundColor),
		Values:          make(map[string]string, len(in.Values)),
		Files:           make(map[string]*validation.FileInfo, len(in.Files)),
	}
	for id, value := range in.Values {
		sub.Values[id] = value
	}
	for id, file := range in.Files {
		if file != nil {
			sub.Files[id] = FileInfo(file)
		}
	}
	return sub
}

type ContentService struct {
	repo          repository.ContentRepository
	templates     *TemplateService
	uploads       *UploadService
	engine        *validation.Engine
	layouts       *layouts.Registry
	defaultLayout string
}

func NewContentService(
	repo repository.ContentRepository,
	templates *TemplateService,
	uploads *UploadService,
	engine *validation.Engine,
	layoutRegistry *layouts.Registry,
	defaultLayout string,
) *ContentService {
	if engine == nil {
		engine = validation.NewEngine(validation.DefaultUploadPrefix)
	}
	if layoutRegistry == nil {
		layoutRegistry = layouts.DefaultRegistry()
	}
	if defaultLayout == "" {
		defaultLayout = layouts.DefaultLayout
	}
	return &ContentService{
		repo:          repo,
		templates:     templates,
		uploads:       uploads,
		engine:        engine,
		layouts:       layoutRegistry,
		defaultLayout: defaultLayout,
	}
}

// Engine exposes the validation engine so form pages check fields the same way.
func (s *ContentService) Engine() *validation.Engine {
	return s.engine
}

// Submit validates every field in one pass, stores uploads and persists the
// document. On any failure after an upload was stored, the stored files are removed.
func (s *ContentService) Submit(ctx context.Context, actor session.Session, in SubmissionInput) (*models.Content, error) {
	if !actor.Can(authorization.PermissionSubmitContent) {
		return nil, ErrForbidden
	}

	tmpl, err := s.templates.GetByID(in.TemplateID)
	if err != nil {
		return nil, err
	}
	if tmpl.Status != models.TemplatePublished {
		return nil, ErrTemplateNotPublished
	}

	schema := sections.Normalize(tmpl.Sections)
	assembled, err := s.assemble(ctx, schema, in)
	if err != nil {
		observeSubmission("submit", err)
		return nil, err
	}

	doc := &models.Content{
		TemplateID:      tmpl.ID,
		Heading:         assembled.heading,
		Subheading:      assembled.subheading,
		BackgroundColor: assembled.background,
		Sections:        assembled.values,
		Schema:          schema,
		Uploads:         assembled.stored,
		TenantName:      actor.TenantName,
		CreatedBy:       actor.UserID,
	}
	if err := s.repo.Create(doc); err != nil {
		s.rollback(assembled.stored)
		observeSubmission("submit", err)
		return nil, fmt.Errorf("failed to save content: %w", err)
	}

	observeSubmission("submit", nil)
	logger.FromContext(ctx).WithFields(map[string]interface{}{
		"content_id":  doc.ID,
		"template_id": tmpl.ID,
		"uploads":     len(assembled.stored),
	}).Info("Content submitted")
	return doc, nil
}

// Update replaces the values of doc. Only the creator may edit, and values are
// checked against the schema snapshot taken at submission time.
func (s *ContentService) Update(ctx context.Context, actor session.Session, id uint, in SubmissionInput) (*models.Content, error) {
	doc, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.Authenticated() || doc.CreatedBy != actor.UserID {
		return nil, ErrContentForbidden
	}

	schema, err := s.schemaFor(doc)
	if err != nil {
		return nil, err
	}

	assembled, err := s.assemble(ctx, schema, in)
	if err != nil {
		observeSubmission("update", err)
		return nil, err
	}

	kept, released := splitOwnedUploads(doc.Uploads, assembled.values)
	doc.Heading = assembled.heading
	doc.Subheading = assembled.subheading
	doc.BackgroundColor = assembled.background
	doc.Sections = assembled.values
	doc.Schema = schema
	doc.Uploads = append(kept, assembled.stored...)

	if err := s.repo.Update(doc); err != nil {
		s.rollback(assembled.stored)
		observeSubmission("update", err)
		return nil, fmt.Errorf("failed to save content: %w", err)
	}

	s.uploads.Discard(released...)
	observeSubmission("update", nil)
	return doc, nil
}

func (s *ContentService) GetByID(id uint) (*models.Content, error) {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// SchemaFor returns the schema doc is edited against.
func (s *ContentService) SchemaFor(doc *models.Content) (sections.Schema, error) {
	return s.schemaFor(doc)
}

func (s *ContentService) ListMine(actor session.Session) ([]models.Content, error) {
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	return s.repo.ListByUser(actor.UserID)
}

func (s *ContentService) List(actor session.Session, filter models.ListFilter) ([]models.Content, int64, error) {
	if !actor.Can(authorization.PermissionReviewResponses) {
		return nil, 0, ErrForbidden
	}
	filter = filter.Normalize()
	if !actor.IsSuperadmin() && actor.TenantName != "" {
		filter.TenantName = actor.TenantName
	}
	return s.repo.List(filter)
}

// Delete is allowed for the creator and for template managers.
func (s *ContentService) Delete(actor session.Session, id uint) error {
	doc, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if doc.CreatedBy != actor.UserID && !actor.Can(authorization.PermissionManageTemplates) {
		return ErrContentForbidden
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.uploads.Discard(doc.Uploads...)
	return nil
}

// Render arranges doc with the named layout. Unknown or empty names use the
// configured default.
func (s *ContentService) Render(id uint, layoutName string) (layouts.View, error) {
	doc, err := s.GetByID(id)
	if err != nil {
		return layouts.View{}, err
	}
	if strings.TrimSpace(layoutName) == "" {
		layoutName = s.defaultLayout
	}
	return layouts.Arrange(doc, s.layouts.Lookup(layoutName)), nil
}

func (s *ContentService) Layouts() []layouts.Layout {
	return s.layouts.List()
}

type assembly struct {
	heading    string
	subheading string
	background string
	values     models.ContentSections
	stored     []string
}

func (s *ContentService) assemble(ctx context.Context, schema sections.Schema, in SubmissionInput) (*assembly, error) {
	sub := in.submission()
	if errs := s.engine.ValidateSubmission(schema, sub); len(errs) > 0 {
		observeFieldFailures(schema, errs)
		return nil, errs
	}

	out := &assembly{
		heading:    sub.Heading,
		subheading: sub.Subheading,
		background: sub.BackgroundColor,
		values:     make(models.ContentSections, len(schema)),
	}

	for _, def := range schema {
		value := strings.TrimSpace(sub.Values[def.ID])

		if file := in.Files[def.ID]; file != nil {
			result, err := s.uploads.Store(ctx, def, file)
			if err != nil {
				s.rollback(out.stored)
				if fieldErr := uploadFieldError(def, err); fieldErr != nil {
					observeFieldFailures(schema, fieldErr)
					return nil, fieldErr
				}
				return nil, fmt.Errorf("failed to store %s: %w", def.ID, err)
			}
			out.stored = append(out.stored, result.URL)
			value = result.URL
		}

		out.values[def.ID] = models.SectionValue{Type: def.Type, Value: value, Order: def.Order}
	}
	return out, nil
}

func (s *ContentService) schemaFor(doc *models.Content) (sections.Schema, error) {
	if len(doc.Schema) > 0 {
		return sections.Normalize(doc.Schema), nil
	}
	tmpl, err := s.templates.GetByID(doc.TemplateID)
	if err != nil {
		return nil, err
	}
	return sections.Normalize(tmpl.Sections), nil
}

func (s *ContentService) rollback(urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := s.uploads.Remove(context.Background(), urls...); err != nil {
		logger.Error(err, "Failed to roll back uploads", map[string]interface{}{"count": len(urls)})
	}
}

// uploadFieldError turns rejections caused by the file itself into a field
// error; storage failures stay plain errors.
func uploadFieldError(def sections.Definition, err error) validation.Errors {
	var msg string
	switch {
	case errors.Is(err, ErrVideoTooLong):
		if cfg, ok := def.Config.(*sections.VideoConfig); ok {
			msg = fmt.Sprintf("must not exceed %d seconds", cfg.MaxDuration)
		} else {
			msg = "video is too long"
		}
	case errors.Is(err, ErrUploadTypeMismatch):
		msg = "file content does not match the section type"
	case errors.Is(err, ErrUploadTooLarge):
		msg = "file exceeds the maximum upload size"
	case errors.Is(err, ErrUploadNotAccepted):
		msg = "does not accept file uploads"
	default:
		return nil
	}
	return validation.Errors{def.ID: msg}
}

// splitOwnedUploads partitions the files a document stored into those still
// referenced by an upload section in values and those no longer used.
func splitOwnedUploads(owned []string, values models.ContentSections) (kept, released []string) {
	referenced := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v.Type.AcceptsUpload() && v.Value != "" {
			referenced[v.Value] = struct{}{}
		}
	}

	for _, url := range owned {
		if _, ok := referenced[url]; ok {
			kept = append(kept, url)
		} else {
			released = append(released, url)
		}
	}
	return kept, released
}

func observeSubmission(operation string, err error) {
	if metrics.ContentSubmissions == nil {
		return
	}
	result := "stored"
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		result = "invalid"
	case err != nil:
		result = "error"
	}
	metrics.ContentSubmissions.WithLabelValues(operation, result).Inc()
}

func observeFieldFailures(schema sections.Schema, errs validation.Errors) {
	if metrics.ValidationFailures == nil {
		return
	}
	for field := range errs {
		kind := "field"
		if def, ok := schema.Find(field); ok {
			kind = def.Type.String()
		}
		metrics.ValidationFailures.WithLabelValues(kind).Inc()
	}
}
