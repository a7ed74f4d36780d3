package service

import (
	"context"

	"pagecraft-backend/internal/layouts"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/internal/validation"
)

type AuthUseCase interface {
	Register(models.RegisterRequest) (*models.User, error)
	Login(models.LoginRequest) (string, *models.User, error)
	ValidateToken(string) (session.Session, error)
	GetUserByID(uint) (*models.User, error)
	UpdateProfile(uint, models.UpdateProfileRequest) (*models.User, error)
	ChangePassword(uint, string, string) error
}

type UserUseCase interface {
	List(session.Session, models.ListFilter) ([]models.User, int64, error)
	ListAdmins(session.Session, models.ListFilter) ([]models.User, int64, error)
	CreateAdmin(session.Session, models.CreateAdminRequest) (*models.User, error)
	UpdateRole(session.Session, uint, string) (*models.User, error)
	Delete(session.Session, uint) error
}

type TenantUseCase interface {
	Create(models.CreateTenantRequest) (*models.Tenant, error)
	GetAll() ([]models.Tenant, error)
	GetByID(uint) (*models.Tenant, error)
	RegenerateToken(uint) (*models.Tenant, error)
	Delete(uint) error
}

type TemplateUseCase interface {
	Catalogue() []sections.Descriptor
	Create(session.Session, models.CreateTemplateRequest) (*models.Template, error)
	GetByID(uint) (*models.Template, error)
	GetBySlug(string) (*models.Template, error)
	List(models.ListFilter) ([]models.Template, int64, error)
	ListPublished(models.ListFilter) ([]models.Template, int64, error)
	Update(uint, models.UpdateTemplateRequest) (*models.Template, error)
	SetStatus(uint, models.TemplateStatus) (*models.Template, error)
	Delete(uint) error
	AddSection(uint, string) (*models.Template, error)
	RemoveSection(uint, string) (*models.Template, error)
	MoveSection(uint, int, int) (*models.Template, error)
	UpdateSectionField(uint, string, string, interface{}) (*models.Template, error)
	UpdateSectionConfig(uint, string, string, interface{}) (*models.Template, error)
}

type ContentUseCase interface {
	Engine() *validation.Engine
	Submit(context.Context, session.Session, SubmissionInput) (*models.Content, error)
	Update(context.Context, session.Session, uint, SubmissionInput) (*models.Content, error)
	GetByID(uint) (*models.Content, error)
	SchemaFor(*models.Content) (sections.Schema, error)
	ListMine(session.Session) ([]models.Content, error)
	List(session.Session, models.ListFilter) ([]models.Content, int64, error)
	Delete(session.Session, uint) error
	Render(uint, string) (layouts.View, error)
	Layouts() []layouts.Layout
}

type FeedbackUseCase interface {
	Create(session.Session, models.CreateFeedbackRequest) (*models.Feedback, error)
	List(session.Session, models.ListFilter) (*FeedbackSummary, error)
	Delete(session.Session, uint) error
}

type QuestionUseCase interface {
	Create(session.Session, models.CreateQuestionRequest) (*models.Question, error)
	Update(session.Session, uint, models.UpdateQuestionRequest) (*models.Question, error)
	Delete(session.Session, uint) error
	GetByID(uint) (*models.Question, error)
	List(session.Session, string) ([]models.Question, error)
	Answer(session.Session, uint, models.CreateResponseRequest) (*models.Response, error)
	ResponsesFor(session.Session, uint) ([]models.Response, error)
	MyResponses(session.Session) ([]models.Response, error)
	ListResponses(session.Session, models.ListFilter) ([]models.Response, int64, error)
}

type ShortLinkUseCase interface {
	Create(session.Session, models.CreateShortLinkRequest) (*models.ShortLink, error)
	Resolve(string) (string, error)
	ListMine(session.Session) ([]models.ShortLink, error)
	Delete(session.Session, uint) error
}

var (
	_ AuthUseCase      = (*AuthService)(nil)
	_ UserUseCase      = (*UserService)(nil)
	_ TenantUseCase    = (*TenantService)(nil)
	_ TemplateUseCase  = (*TemplateService)(nil)
	_ ContentUseCase   = (*ContentService)(nil)
	_ FeedbackUseCase  = (*FeedbackService)(nil)
	_ QuestionUseCase  = (*QuestionService)(nil)
	_ ShortLinkUseCase = (*ShortLinkService)(nil)
)
