package repository

import (
	"pagecraft-backend/internal/models"

	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(template *models.Template) error
	Update(template *models.Template) error
	Delete(id uint) error
	GetByID(id uint) (*models.Template, error)
	GetBySlug(slug string) (*models.Template, error)
	List(filter models.ListFilter) ([]models.Template, int64, error)
	ExistsBySlug(slug string, excludeID uint) (bool, error)
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(template *models.Template) error {
	return translate(r.db.Create(template).Error)
}

func (r *templateRepository) Update(template *models.Template) error {
	return translate(r.db.Save(template).Error)
}

func (r *templateRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Template{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *templateRepository) GetByID(id uint) (*models.Template, error) {
	var template models.Template
	if err := r.db.First(&template, id).Error; err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

func (r *templateRepository) GetBySlug(slug string) (*models.Template, error) {
	var template models.Template
	if err := r.db.Where("slug = ?", slug).First(&template).Error; err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

func (r *templateRepository) List(filter models.ListFilter) ([]models.Template, int64, error) {
	query := r.db.Model(&models.Template{}).Scopes(byTenant(filter.TenantName))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var templates []models.Template
	err := query.Scopes(paginate(filter.Limit, filter.Offset())).
		Order("updated_at DESC").
		Find(&templates).Error
	return templates, total, translate(err)
}

func (r *templateRepository) ExistsBySlug(slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.Template{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, translate(err)
}
