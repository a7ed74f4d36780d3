package repository

import (
	"pagecraft-backend/internal/models"

	"gorm.io/gorm"
)

type ContentRepository interface {
	Create(content *models.Content) error
	Update(content *models.Content) error
	Delete(id uint) error
	GetByID(id uint) (*models.Content, error)
	ListByUser(userID uint) ([]models.Content, error)
	ListByTemplate(templateID uint) ([]models.Content, error)
	List(filter models.ListFilter) ([]models.Content, int64, error)
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(content *models.Content) error {
	return translate(r.db.Omit("Template", "Creator").Create(content).Error)
}

func (r *contentRepository) Update(content *models.Content) error {
	return translate(r.db.Omit("Template", "Creator").Save(content).Error)
}

func (r *contentRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Content{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *contentRepository) GetByID(id uint) (*models.Content, error) {
	var content models.Content
	if err := r.db.First(&content, id).Error; err != nil {
		return nil, translate(err)
	}
	return &content, nil
}

func (r *contentRepository) ListByUser(userID uint) ([]models.Content, error) {
	var contents []models.Content
	err := r.db.Where("created_by = ?", userID).Order("created_at DESC").Find(&contents).Error
	return contents, translate(err)
}

func (r *contentRepository) ListByTemplate(templateID uint) ([]models.Content, error) {
	var contents []models.Content
	err := r.db.Where("template_id = ?", templateID).Order("created_at DESC").Find(&contents).Error
	return contents, translate(err)
}

func (r *contentRepository) List(filter models.ListFilter) ([]models.Content, int64, error) {
	query := r.db.Model(&models.Content{}).Scopes(byTenant(filter.TenantName))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var contents []models.Content
	err := query.Scopes(paginate(filter.Limit, filter.Offset())).
		Order("created_at DESC").
		Find(&contents).Error
	return contents, total, translate(err)
}
