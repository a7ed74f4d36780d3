package repository

import (
	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	List(filter models.ListFilter) ([]models.User, int64, error)
	Update(user *models.User) error
	UpdateRole(id uint, role authorization.UserRole) error
	Delete(id uint) error
	CountByRole(role authorization.UserRole) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return translate(r.db.Create(user).Error)
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// List filters by tenant and role; the filter should already be normalised.
func (r *userRepository) List(filter models.ListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{}).Scopes(byTenant(filter.TenantName))
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var users []models.User
	err := query.Scopes(paginate(filter.Limit, filter.Offset())).
		Order("created_at DESC").
		Find(&users).Error
	return users, total, translate(err)
}

func (r *userRepository) Update(user *models.User) error {
	return translate(r.db.Save(user).Error)
}

func (r *userRepository) UpdateRole(id uint, role authorization.UserRole) error {
	result := r.db.Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(id uint) error {
	result := r.db.Delete(&models.User{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) CountByRole(role authorization.UserRole) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	return count, translate(err)
}
