package repository

import (
	"pagecraft-backend/internal/models"

	"gorm.io/gorm"
)

type FeedbackRepository interface {
	Create(feedback *models.Feedback) error
	List(filter models.ListFilter) ([]models.Feedback, int64, error)
	Delete(id uint) error
	AverageRating(tenant string) (float64, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(feedback *models.Feedback) error {
	return translate(r.db.Omit("User").Create(feedback).Error)
}

func (r *feedbackRepository) List(filter models.ListFilter) ([]models.Feedback, int64, error) {
	query := r.db.Model(&models.Feedback{}).Scopes(byTenant(filter.TenantName))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var items []models.Feedback
	err := query.Preload("User").
		Scopes(paginate(filter.Limit, filter.Offset())).
		Order("created_at DESC").
		Find(&items).Error
	return items, total, translate(err)
}

func (r *feedbackRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Feedback{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *feedbackRepository) AverageRating(tenant string) (float64, error) {
	var avg *float64
	err := r.db.Model(&models.Feedback{}).
		Scopes(byTenant(tenant)).
		Select("AVG(rating)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, translate(err)
	}
	return *avg, nil
}
