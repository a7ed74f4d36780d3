package service

import (
	"errors"
	"fmt"
	"strings"

	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/pkg/cache"
	"pagecraft-backend/pkg/logger"
	"pagecraft-backend/pkg/utils"
)

var (
	ErrTemplateNotFound        = errors.New("template not found")
	ErrTemplateNotPublished    = errors.New("template is not published")
	ErrInvalidStatusTransition = errors.New("invalid template status transition")
	ErrInvalidSchema           = errors.New("invalid template schema")
)

type TemplateService struct {
	repo     repository.TemplateRepository
	cache    *cache.Cache
	registry *sections.Registry
}

func NewTemplateService(repo repository.TemplateRepository, cacheService *cache.Cache, registry *sections.Registry) *TemplateService {
	if registry == nil {
		registry = sections.DefaultRegistry()
	}
	return &TemplateService{repo: repo, cache: cacheService, registry: registry}
}

// Catalogue lists the section kinds the editor can add.
func (s *TemplateService) Catalogue() []sections.Descriptor {
	return s.registry.Catalogue()
}

func (s *TemplateService) Create(actor session.Session, req models.CreateTemplateRequest) (*models.Template, error) {
	name := strings.TrimSpace(req.Name)
	slug, err := s.uniqueSlug(name, 0)
	if err != nil {
		return nil, err
	}

	schema := sections.Normalize(req.Sections)
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	tmpl := &models.Template{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		Type:        strings.TrimSpace(req.Type),
		Status:      models.TemplateDraft,
		Sections:    schema,
		TenantName:  actor.TenantName,
		CreatedBy:   actor.UserID,
	}
	if err := s.repo.Create(tmpl); err != nil {
		return nil, err
	}

	logger.Info("Template created", map[string]interface{}{"template_id": tmpl.ID, "sections": len(schema)})
	return tmpl, nil
}

func (s *TemplateService) GetByID(id uint) (*models.Template, error) {
	if s.cache != nil {
		var cached models.Template
		if err := s.cache.GetCachedTemplate(id, &cached); err == nil {
			return &cached, nil
		}
	}

	tmpl, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.CacheTemplate(id, tmpl)
	}
	return tmpl, nil
}

func (s *TemplateService) GetBySlug(slug string) (*models.Template, error) {
	tmpl, err := s.repo.GetBySlug(slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTemplateNotFound
	}
	return tmpl, err
}

func (s *TemplateService) List(filter models.ListFilter) ([]models.Template, int64, error) {
	filter = filter.Normalize()
	if filter.Status != "" && !models.TemplateStatus(filter.Status).Valid() {
		return nil, 0, ErrInvalidStatusTransition
	}
	return s.repo.List(filter)
}

// ListPublished is what regular users pick from.
func (s *TemplateService) ListPublished(filter models.ListFilter) ([]models.Template, int64, error) {
	filter.Status = string(models.TemplatePublished)
	return s.List(filter)
}

func (s *TemplateService) Update(id uint, req models.UpdateTemplateRequest) (*models.Template, error) {
	tmpl, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != tmpl.Name {
			slug, err := s.uniqueSlug(name, tmpl.ID)
			if err != nil {
				return nil, err
			}
			tmpl.Name = name
			tmpl.Slug = slug
		}
	}
	if req.Description != nil {
		tmpl.Description = strings.TrimSpace(*req.Description)
	}
	if req.Type != nil {
		tmpl.Type = strings.TrimSpace(*req.Type)
	}
	if req.Sections != nil {
		schema := sections.Normalize(*req.Sections)
		if err := schema.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
		tmpl.Sections = schema
	}
	if req.Status != nil {
		if !tmpl.Status.CanTransitionTo(*req.Status) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, tmpl.Status, *req.Status)
		}
		tmpl.Status = *req.Status
	}

	return tmpl, s.save(tmpl)
}

func (s *TemplateService) SetStatus(id uint, status models.TemplateStatus) (*models.Template, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, status)
	}
	return s.Update(id, models.UpdateTemplateRequest{Status: &status})
}

func (s *TemplateService) Delete(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	s.invalidate(id)
	logger.Info("Template deleted", map[string]interface{}{"template_id": id})
	return nil
}

func (s *TemplateService) AddSection(id uint, rawKind string) (*models.Template, error) {
	kind, err := sections.ParseKind(rawKind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return s.mutate(id, func(schema sections.Schema) (sections.Schema, error) {
		return sections.AddSection(schema, kind)
	})
}

func (s *TemplateService) RemoveSection(id uint, sectionID string) (*models.Template, error) {
	return s.mutate(id, func(schema sections.Schema) (sections.Schema, error) {
		return sections.RemoveSection(schema, sectionID)
	})
}

func (s *TemplateService) MoveSection(id uint, from, to int) (*models.Template, error) {
	return s.mutate(id, func(schema sections.Schema) (sections.Schema, error) {
		return sections.MoveSection(schema, from, to)
	})
}

func (s *TemplateService) UpdateSectionField(id uint, sectionID, field string, value interface{}) (*models.Template, error) {
	return s.mutate(id, func(schema sections.Schema) (sections.Schema, error) {
		return sections.UpdateSectionField(schema, sectionID, field, value)
	})
}

func (s *TemplateService) UpdateSectionConfig(id uint, sectionID, key string, value interface{}) (*models.Template, error) {
	return s.mutate(id, func(schema sections.Schema) (sections.Schema, error) {
		return sections.UpdateSectionConfig(schema, sectionID, key, value)
	})
}

// mutate applies op to a normalised copy of the stored schema and persists the result.
func (s *TemplateService) mutate(id uint, op func(sections.Schema) (sections.Schema, error)) (*models.Template, error) {
	tmpl, err := s.load(id)
	if err != nil {
		return nil, err
	}

	next, err := op(sections.Normalize(tmpl.Sections))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	tmpl.Sections = next

	return tmpl, s.save(tmpl)
}

// load always reads from the database so edits never start from a stale cache entry.
func (s *TemplateService) load(id uint) (*models.Template, error) {
	tmpl, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return tmpl, nil
}

func (s *TemplateService) save(tmpl *models.Template) error {
	if err := s.repo.Update(tmpl); err != nil {
		return err
	}
	s.invalidate(tmpl.ID)
	return nil
}

func (s *TemplateService) invalidate(id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTemplate(id); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		logger.Warn("Failed to invalidate template cache", map[string]interface{}{"template_id": id, "error": err.Error()})
	}
}

func (s *TemplateService) uniqueSlug(name string, excludeID uint) (string, error) {
	base := utils.GenerateSlug(name)
	if base == "" {
		base = "template"
	}

	candidate := base
	for i := 2; i < 1000; i++ {
		exists, err := s.repo.ExistsBySlug(candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("could not find a free slug for %q", name)
}
