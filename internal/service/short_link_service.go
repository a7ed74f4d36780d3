package service

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/metrics"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/pkg/cache"
	"pagecraft-backend/pkg/logger"
	"pagecraft-backend/pkg/validator"
)

var (
	ErrShortLinkNotFound = errors.New("short link not found")
	ErrShortCodeTaken    = errors.New("short code already in use")
	ErrInvalidTargetURL  = errors.New("target must be an absolute http or https URL")
)

const (
	shortCodeAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	shortCodeLength   = 7
	shortCodeAttempts = 5
)

type ShortLinkService struct {
	repo    repository.ShortLinkRepository
	cache   *cache.Cache
	newCode func() (string, error)
}

func NewShortLinkService(repo repository.ShortLinkRepository, cacheService *cache.Cache) *ShortLinkService {
	return &ShortLinkService{repo: repo, cache: cacheService, newCode: randomShortCode}
}

// Create stores a short link. A requested code is used as is; otherwise a
// random one is generated, retrying on collisions.
func (s *ShortLinkService) Create(actor session.Session, req models.CreateShortLinkRequest) (*models.ShortLink, error) {
	if !actor.Can(authorization.PermissionShortenLinks) {
		return nil, ErrForbidden
	}
	target := strings.TrimSpace(req.URL)
	if !validator.IsHTTPURL(target) {
		return nil, ErrInvalidTargetURL
	}

	if code := strings.TrimSpace(req.Code); code != "" {
		return s.insert(actor, code, target)
	}

	for attempt := 0; attempt < shortCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		link, err := s.insert(actor, code, target)
		if errors.Is(err, ErrShortCodeTaken) {
			continue
		}
		return link, err
	}
	return nil, ErrShortCodeTaken
}

func (s *ShortLinkService) insert(actor session.Session, code, target string) (*models.ShortLink, error) {
	link := &models.ShortLink{Code: code, TargetURL: target, CreatedBy: actor.UserID}
	if err := s.repo.Create(link); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrShortCodeTaken
		}
		return nil, err
	}
	_ = s.cache.CacheShortLink(code, target)
	return link, nil
}

// Resolve returns the target of code and counts the visit.
func (s *ShortLinkService) Resolve(code string) (string, error) {
	target, err := s.cache.GetCachedShortLink(code)
	if err != nil || target == "" {
		link, err := s.repo.GetByCode(code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", ErrShortLinkNotFound
			}
			return "", err
		}
		target = link.TargetURL
		_ = s.cache.CacheShortLink(code, target)
	}

	if err := s.repo.IncrementClicks(code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = s.cache.InvalidateShortLink(code)
			return "", ErrShortLinkNotFound
		}
		logger.Warn("Failed to count short link click", map[string]interface{}{"code": code, "error": err.Error()})
	}
	if metrics.ShortLinkRedirects != nil {
		metrics.ShortLinkRedirects.Inc()
	}
	return target, nil
}

func (s *ShortLinkService) ListMine(actor session.Session) ([]models.ShortLink, error) {
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	return s.repo.ListByUser(actor.UserID)
}

// Delete is allowed for the creator and for admins.
func (s *ShortLinkService) Delete(actor session.Session, id uint) error {
	link, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrShortLinkNotFound
		}
		return err
	}
	if link.CreatedBy != actor.UserID && !actor.Can(authorization.PermissionManageUsers) {
		return ErrForbidden
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	_ = s.cache.InvalidateShortLink(link.Code)
	return nil
}

func randomShortCode() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(shortCodeAlphabet)))
	for i := 0; i < shortCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(shortCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
