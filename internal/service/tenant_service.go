package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
	"pagecraft-backend/pkg/logger"
	"pagecraft-backend/pkg/utils"
)

var ErrTenantExists = errors.New("tenant already exists")

type TenantService struct {
	repo     repository.TenantRepository
	newToken func() string
}

func NewTenantService(repo repository.TenantRepository) *TenantService {
	return &TenantService{repo: repo, newToken: generateTenantToken}
}

func generateTenantToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *TenantService) Create(req models.CreateTenantRequest) (*models.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	slug := utils.GenerateSlug(name)
	if slug == "" {
		slug = s.newToken()[:8]
	}

	tenant := &models.Tenant{
		Name:  name,
		Slug:  slug,
		Token: s.newToken(),
	}
	if err := s.repo.Create(tenant); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTenantExists
		}
		return nil, err
	}

	logger.Info("Tenant created", map[string]interface{}{"tenant": tenant.Name})
	return tenant, nil
}

func (s *TenantService) GetAll() ([]models.Tenant, error) {
	return s.repo.GetAll()
}

func (s *TenantService) GetByID(id uint) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTenantNotFound
	}
	return tenant, err
}

// RegenerateToken invalidates the old registration token.
func (s *TenantService) RegenerateToken(id uint) (*models.Tenant, error) {
	tenant, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	token := s.newToken()
	if err := s.repo.UpdateToken(id, token); err != nil {
		return nil, err
	}
	tenant.Token = token

	logger.Info("Tenant token regenerated", map[string]interface{}{"tenant": tenant.Name})
	return tenant, nil
}

func (s *TenantService) Delete(id uint) error {
	err := s.repo.Delete(id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTenantNotFound
	}
	return err
}
