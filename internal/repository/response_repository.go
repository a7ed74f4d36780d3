package repository

import (
	"pagecraft-backend/internal/models"

	"gorm.io/gorm"
)

type ResponseRepository interface {
	Create(response *models.Response) error
	ListByQuestion(questionID uint) ([]models.Response, error)
	ListByUser(userID uint) ([]models.Response, error)
	List(filter models.ListFilter) ([]models.Response, int64, error)
	Delete(id uint) error
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Create(response *models.Response) error {
	return translate(r.db.Omit("Question", "User").Create(response).Error)
}

func (r *responseRepository) ListByQuestion(questionID uint) ([]models.Response, error) {
	var responses []models.Response
	err := r.db.Preload("User").
		Where("question_id = ?", questionID).
		Order("created_at DESC").
		Find(&responses).Error
	return responses, translate(err)
}

func (r *responseRepository) ListByUser(userID uint) ([]models.Response, error) {
	var responses []models.Response
	err := r.db.Preload("Question").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&responses).Error
	return responses, translate(err)
}

func (r *responseRepository) List(filter models.ListFilter) ([]models.Response, int64, error) {
	query := r.db.Model(&models.Response{}).Scopes(byTenant(filter.TenantName))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var responses []models.Response
	err := query.Preload("User").Preload("Question").
		Scopes(paginate(filter.Limit, filter.Offset())).
		Order("created_at DESC").
		Find(&responses).Error
	return responses, total, translate(err)
}

func (r *responseRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Response{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
