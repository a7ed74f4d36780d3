package repository

import (
	"pagecraft-backend/internal/models"

	"gorm.io/gorm"
)

type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByID(id uint) (*models.Tenant, error)
	GetByName(name string) (*models.Tenant, error)
	GetByToken(token string) (*models.Tenant, error)
	GetAll() ([]models.Tenant, error)
	UpdateToken(id uint, token string) error
	Delete(id uint) error
}

type tenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(tenant *models.Tenant) error {
	return translate(r.db.Create(tenant).Error)
}

func (r *tenantRepository) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.First(&tenant, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tenant, nil
}

func (r *tenantRepository) GetByName(name string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.Where("name = ?", name).First(&tenant).Error; err != nil {
		return nil, translate(err)
	}
	return &tenant, nil
}

func (r *tenantRepository) GetByToken(token string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.Where("token = ?", token).First(&tenant).Error; err != nil {
		return nil, translate(err)
	}
	return &tenant, nil
}

func (r *tenantRepository) GetAll() ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.db.Order("name ASC").Find(&tenants).Error
	return tenants, translate(err)
}

func (r *tenantRepository) UpdateToken(id uint, token string) error {
	result := r.db.Model(&models.Tenant{}).Where("id = ?", id).Update("token", token)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tenantRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Tenant{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
