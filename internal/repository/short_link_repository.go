package repository

import (
	"pagecraft-backend/internal/models"

	"gorm.io/gorm"
)

type ShortLinkRepository interface {
	Create(link *models.ShortLink) error
	GetByCode(code string) (*models.ShortLink, error)
	ListByUser(userID uint) ([]models.ShortLink, error)
	IncrementClicks(code string) error
	Delete(id uint) error
	GetByID(id uint) (*models.ShortLink, error)
}

type shortLinkRepository struct {
	db *gorm.DB
}

func NewShortLinkRepository(db *gorm.DB) ShortLinkRepository {
	return &shortLinkRepository{db: db}
}

func (r *shortLinkRepository) Create(link *models.ShortLink) error {
	return translate(r.db.Create(link).Error)
}

func (r *shortLinkRepository) GetByCode(code string) (*models.ShortLink, error) {
	var link models.ShortLink
	if err := r.db.Where("code = ?", code).First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (r *shortLinkRepository) GetByID(id uint) (*models.ShortLink, error) {
	var link models.ShortLink
	if err := r.db.First(&link, id).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (r *shortLinkRepository) ListByUser(userID uint) ([]models.ShortLink, error) {
	var links []models.ShortLink
	err := r.db.Where("created_by = ?", userID).Order("created_at DESC").Find(&links).Error
	return links, translate(err)
}

func (r *shortLinkRepository) IncrementClicks(code string) error {
	result := r.db.Model(&models.ShortLink{}).
		Where("code = ?", code).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *shortLinkRepository) Delete(id uint) error {
	result := r.db.Delete(&models.ShortLink{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
