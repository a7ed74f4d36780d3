package repository

import (
	"pagecraft-backend/internal/models"

	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *models.Question) error
	Update(question *models.Question) error
	Delete(id uint) error
	GetByID(id uint) (*models.Question, error)
	List(filter models.ListFilter, quiz string) ([]models.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *models.Question) error {
	return translate(r.db.Create(question).Error)
}

func (r *questionRepository) Update(question *models.Question) error {
	return translate(r.db.Save(question).Error)
}

func (r *questionRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Question{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepository) GetByID(id uint) (*models.Question, error) {
	var question models.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

func (r *questionRepository) List(filter models.ListFilter, quiz string) ([]models.Question, error) {
	query := r.db.Model(&models.Question{}).Scopes(byTenant(filter.TenantName))
	if quiz != "" {
		query = query.Where("quiz = ?", quiz)
	}

	var questions []models.Question
	err := query.Order("id ASC").Find(&questions).Error
	return questions, translate(err)
}
