package service

import (
	"errors"
	"strings"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/pkg/validator"
)

var ErrFeedbackNotFound = errors.New("feedback not found")

type FeedbackService struct {
	repo repository.FeedbackRepository
}

func NewFeedbackService(repo repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

func (s *FeedbackService) Create(actor session.Session, req models.CreateFeedbackRequest) (*models.Feedback, error) {
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}

	feedback := &models.Feedback{
		Message:    validator.SanitizeString(strings.TrimSpace(req.Message)),
		Rating:     req.Rating,
		Page:       strings.TrimSpace(req.Page),
		TenantName: actor.TenantName,
		UserID:     actor.UserID,
	}
	if err := s.repo.Create(feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

// FeedbackSummary is the admin listing plus the average rating of the same scope.
type FeedbackSummary struct {
	Items         []models.Feedback `json:"items"`
	Total         int64             `json:"total"`
	AverageRating float64           `json:"average_rating"`
}

func (s *FeedbackService) List(actor session.Session, filter models.ListFilter) (*FeedbackSummary, error) {
	if !actor.Can(authorization.PermissionReviewFeedback) {
		return nil, ErrForbidden
	}
	filter = filter.Normalize()
	if !actor.IsSuperadmin() && actor.TenantName != "" {
		filter.TenantName = actor.TenantName
	}

	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}
	avg, err := s.repo.AverageRating(filter.TenantName)
	if err != nil {
		return nil, err
	}
	return &FeedbackSummary{Items: items, Total: total, AverageRating: avg}, nil
}

func (s *FeedbackService) Delete(actor session.Session, id uint) error {
	if !actor.Can(authorization.PermissionReviewFeedback) {
		return ErrForbidden
	}
	err := s.repo.Delete(id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFeedbackNotFound
	}
	return err
}
