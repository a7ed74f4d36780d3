package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
	"pagecraft-backend/internal/session"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidOption    = errors.New("option index out of range")
)

// QuestionService manages quiz questions and the responses users give to them.
type QuestionService struct {
	questions repository.QuestionRepository
	responses repository.ResponseRepository
}

func NewQuestionService(questions repository.QuestionRepository, responses repository.ResponseRepository) *QuestionService {
	return &QuestionService{questions: questions, responses: responses}
}

func (s *QuestionService) Create(actor session.Session, req models.CreateQuestionRequest) (*models.Question, error) {
	if !actor.Can(authorization.PermissionManageQuestions) {
		return nil, ErrForbidden
	}

	options := trimOptions(req.Options)
	correct := 0
	if req.CorrectOption != nil {
		correct = *req.CorrectOption
	}
	if correct < 0 || correct >= len(options) {
		return nil, fmt.Errorf("%w: correct option %d of %d", ErrInvalidOption, correct, len(options))
	}

	encoded, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}

	question := &models.Question{
		Prompt:        strings.TrimSpace(req.Prompt),
		Options:       datatypes.JSON(encoded),
		CorrectOption: correct,
		Quiz:          strings.TrimSpace(req.Quiz),
		TenantName:    actor.TenantName,
		CreatedBy:     actor.UserID,
	}
	if err := s.questions.Create(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuestionService) Update(actor session.Session, id uint, req models.UpdateQuestionRequest) (*models.Question, error) {
	if !actor.Can(authorization.PermissionManageQuestions) {
		return nil, ErrForbidden
	}
	question, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	options, err := question.OptionList()
	if err != nil {
		return nil, err
	}
	if req.Prompt != nil {
		question.Prompt = strings.TrimSpace(*req.Prompt)
	}
	if req.Options != nil {
		options = trimOptions(req.Options)
		encoded, err := json.Marshal(options)
		if err != nil {
			return nil, err
		}
		question.Options = datatypes.JSON(encoded)
	}
	if req.CorrectOption != nil {
		question.CorrectOption = *req.CorrectOption
	}
	if req.Quiz != nil {
		question.Quiz = strings.TrimSpace(*req.Quiz)
	}

	if question.CorrectOption < 0 || question.CorrectOption >= len(options) {
		return nil, fmt.Errorf("%w: correct option %d of %d", ErrInvalidOption, question.CorrectOption, len(options))
	}

	if err := s.questions.Update(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuestionService) Delete(actor session.Session, id uint) error {
	if !actor.Can(authorization.PermissionManageQuestions) {
		return ErrForbidden
	}
	err := s.questions.Delete(id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrQuestionNotFound
	}
	return err
}

func (s *QuestionService) GetByID(id uint) (*models.Question, error) {
	question, err := s.questions.GetByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	return question, err
}

// List returns the questions of one quiz, or all when quiz is empty.
func (s *QuestionService) List(actor session.Session, quiz string) ([]models.Question, error) {
	filter := models.ListFilter{}
	if !actor.IsSuperadmin() {
		filter.TenantName = actor.TenantName
	}
	return s.questions.List(filter, strings.TrimSpace(quiz))
}

// Answer records a response and whether it picked the correct option.
func (s *QuestionService) Answer(actor session.Session, questionID uint, req models.CreateResponseRequest) (*models.Response, error) {
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	question, err := s.GetByID(questionID)
	if err != nil {
		return nil, err
	}
	options, err := question.OptionList()
	if err != nil {
		return nil, err
	}

	selected := -1
	if req.SelectedOption != nil {
		selected = *req.SelectedOption
	}
	if selected < 0 || selected >= len(options) {
		return nil, fmt.Errorf("%w: selected option %d of %d", ErrInvalidOption, selected, len(options))
	}

	var answer datatypes.JSON
	if len(req.Answer) > 0 {
		encoded, err := json.Marshal(req.Answer)
		if err != nil {
			return nil, err
		}
		answer = datatypes.JSON(encoded)
	}

	response := &models.Response{
		QuestionID:     question.ID,
		SelectedOption: selected,
		Correct:        selected == question.CorrectOption,
		Answer:         answer,
		TenantName:     actor.TenantName,
		UserID:         actor.UserID,
	}
	if err := s.responses.Create(response); err != nil {
		return nil, err
	}
	return response, nil
}

func (s *QuestionService) ResponsesFor(actor session.Session, questionID uint) ([]models.Response, error) {
	if !actor.Can(authorization.PermissionReviewResponses) {
		return nil, ErrForbidden
	}
	if _, err := s.GetByID(questionID); err != nil {
		return nil, err
	}
	return s.responses.ListByQuestion(questionID)
}

func (s *QuestionService) MyResponses(actor session.Session) ([]models.Response, error) {
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	return s.responses.ListByUser(actor.UserID)
}

func (s *QuestionService) ListResponses(actor session.Session, filter models.ListFilter) ([]models.Response, int64, error) {
	if !actor.Can(authorization.PermissionReviewResponses) {
		return nil, 0, ErrForbidden
	}
	filter = filter.Normalize()
	if !actor.IsSuperadmin() && actor.TenantName != "" {
		filter.TenantName = actor.TenantName
	}
	return s.responses.List(filter)
}

func trimOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, option := range options {
		if trimmed := strings.TrimSpace(option); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
