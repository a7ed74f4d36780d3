package models

import (
	"pagecraft-backend/internal/sections"
)

type RegisterRequest struct {
	Username    string `json:"username" form:"username" binding:"required,min=3,max=50,no_html"`
	Email       string `json:"email" form:"email" binding:"required,email"`
	Password    string `json:"password" form:"password" binding:"required,min=8,max=128"`
	TenantToken string `json:"tenant_token" form:"tenant_token"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" binding:"omitempty,min=3,max=50,no_html"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=superadmin admin user"`
}

type CreateAdminRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=50,no_html"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8,max=128"`
	TenantName string `json:"tenant_name"`
}

type CreateTenantRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100,no_html"`
}

// CreateTemplateRequest accepts sections in the same shape they are returned in.
type CreateTemplateRequest struct {
	Name        string          `json:"name" binding:"required,min=2,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Type        string          `json:"type" binding:"max=64"`
	Sections    sections.Schema `json:"sections"`
}

type UpdateTemplateRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=2,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Type        *string          `json:"type" binding:"omitempty,max=64"`
	Status      *TemplateStatus  `json:"status" binding:"omitempty,oneof=draft published archived"`
	Sections    *sections.Schema `json:"sections"`
}

type AddSectionRequest struct {
	Type string `json:"type" binding:"required,oneof=text image video file link"`
}

type MoveSectionRequest struct {
	From *int `json:"from" binding:"required,min=0"`
	To   *int `json:"to" binding:"required,min=0"`
}

type UpdateSectionFieldRequest struct {
	Field string      `json:"field" binding:"required,oneof=title description required type"`
	Value interface{} `json:"value"`
}

type UpdateSectionConfigRequest struct {
	Key   string      `json:"key" binding:"required"`
	Value interface{} `json:"value"`
}

type CreateFeedbackRequest struct {
	Message string `json:"message" binding:"required,min=3,max=5000"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Page    string `json:"page" binding:"max=255"`
}

type CreateQuestionRequest struct {
	Prompt        string   `json:"prompt" binding:"required,min=3,max=2000"`
	Options       []string `json:"options" binding:"required,min=2,max=10,dive,required,max=500"`
	CorrectOption *int     `json:"correct_option" binding:"required,min=0"`
	Quiz          string   `json:"quiz" binding:"max=100"`
}

type UpdateQuestionRequest struct {
	Prompt        *string  `json:"prompt" binding:"omitempty,min=3,max=2000"`
	Options       []string `json:"options" binding:"omitempty,min=2,max=10,dive,required,max=500"`
	CorrectOption *int     `json:"correct_option" binding:"omitempty,min=0"`
	Quiz          *string  `json:"quiz" binding:"omitempty,max=100"`
}

type CreateResponseRequest struct {
	SelectedOption *int                   `json:"selected_option" binding:"required,min=0"`
	Answer         map[string]interface{} `json:"answer"`
}

type CreateShortLinkRequest struct {
	URL  string `json:"url" binding:"required,http_url,max=2048"`
	Code string `json:"code" binding:"omitempty,short_code"`
}

// ListFilter narrows admin listings. Tenant filtering is a convenience, not isolation.
type ListFilter struct {
	TenantName string `form:"tenant"`
	Role       string `form:"role"`
	Status     string `form:"status"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

// Normalize clamps paging values.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
