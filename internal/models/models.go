package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/sections"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username   string                 `gorm:"uniqueIndex;not null" json:"username"`
	Email      string                 `gorm:"uniqueIndex;not null" json:"email"`
	Password   string                 `gorm:"not null" json:"-"`
	Role       authorization.UserRole `gorm:"type:varchar(32);default:'user'" json:"role"`
	TenantName string                 `gorm:"index" json:"tenant_name,omitempty"`
	Status     string                 `gorm:"default:'active'" json:"status"`
}

type Tenant struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name  string `gorm:"uniqueIndex;not null" json:"name"`
	Slug  string `gorm:"uniqueIndex;not null" json:"slug"`
	Token string `gorm:"uniqueIndex;not null" json:"token"`
}

type TemplateStatus string

const (
	TemplateDraft     TemplateStatus = "draft"
	TemplatePublished TemplateStatus = "published"
	TemplateArchived  TemplateStatus = "archived"
)

func (s TemplateStatus) Valid() bool {
	return s == TemplateDraft || s == TemplatePublished || s == TemplateArchived
}

// CanTransitionTo follows draft -> published -> archived -> published.
func (s TemplateStatus) CanTransitionTo(next TemplateStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case TemplateDraft:
		return next == TemplatePublished
	case TemplatePublished:
		return next == TemplateArchived
	case TemplateArchived:
		return next == TemplatePublished
	}
	return false
}

type Template struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string          `gorm:"not null" json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Type        string          `gorm:"index" json:"type"`
	Status      TemplateStatus  `gorm:"type:varchar(16);default:'draft';index" json:"status"`
	Sections    sections.Schema `gorm:"type:jsonb" json:"sections"`
	TenantName  string          `gorm:"index" json:"tenant_name,omitempty"`

	CreatedBy uint `gorm:"not null" json:"created_by"`
}

// SectionValue is what a user supplied for one section definition.
type SectionValue struct {
	Type  sections.Kind `json:"type"`
	Value string        `json:"value"`
	Order int           `json:"order"`
}

// ContentSections is keyed by section definition id.
type ContentSections map[string]SectionValue

func (cs *ContentSections) Scan(value interface{}) error {
	if value == nil {
		*cs = ContentSections{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to scan ContentSections")
	}

	decoded := ContentSections{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*cs = decoded
	return nil
}

func (cs ContentSections) Value() (driver.Value, error) {
	if cs == nil {
		return "{}", nil
	}
	data, err := json.Marshal(cs)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// IDs returns the section ids sorted by order, ties broken by id.
func (cs ContentSections) IDs() []string {
	ids := make([]string, 0, len(cs))
	for id := range cs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := cs[ids[i]], cs[ids[j]]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Content is one user's filled-in instance of a template. Schema is the
// template's section list at submission time; edits are validated against it.
type Content struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TemplateID      uint                        `gorm:"not null;index" json:"template_id"`
	Template        *Template                   `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Heading         string                      `gorm:"not null" json:"heading"`
	Subheading      string                      `json:"subheading"`
	BackgroundColor string                      `gorm:"type:varchar(7)" json:"background_color"`
	Sections        ContentSections             `gorm:"type:jsonb" json:"sections"`
	Schema          sections.Schema             `gorm:"type:jsonb" json:"schema"`
	Uploads         datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"-"`
	TenantName      string                      `gorm:"index" json:"tenant_name,omitempty"`

	CreatedBy uint  `gorm:"not null;index" json:"created_by"`
	Creator   *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

type Feedback struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Message    string `gorm:"type:text;not null" json:"message"`
	Rating     int    `gorm:"not null" json:"rating"`
	Page       string `json:"page,omitempty"`
	TenantName string `gorm:"index" json:"tenant_name,omitempty"`

	UserID uint  `gorm:"not null;index" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type Question struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Prompt        string         `gorm:"type:text;not null" json:"prompt"`
	Options       datatypes.JSON `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption int            `gorm:"not null" json:"correct_option"`
	Quiz          string         `gorm:"index" json:"quiz,omitempty"`
	TenantName    string         `gorm:"index" json:"tenant_name,omitempty"`

	CreatedBy uint `gorm:"not null" json:"created_by"`
}

// OptionList decodes Options.
func (q *Question) OptionList() ([]string, error) {
	var options []string
	if len(q.Options) == 0 {
		return options, nil
	}
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil, err
	}
	return options, nil
}

type Response struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	QuestionID     uint           `gorm:"not null;index" json:"question_id"`
	Question       *Question      `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	SelectedOption int            `gorm:"not null" json:"selected_option"`
	Correct        bool           `json:"correct"`
	Answer         datatypes.JSON `gorm:"type:jsonb" json:"answer"`
	TenantName     string         `gorm:"index" json:"tenant_name,omitempty"`

	UserID uint  `gorm:"not null;index" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type ShortLink struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Code      string `gorm:"uniqueIndex;not null" json:"code"`
	TargetURL string `gorm:"type:text;not null" json:"target_url"`
	Clicks    int64  `gorm:"default:0" json:"clicks"`

	CreatedBy uint `gorm:"not null;index" json:"created_by"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	User      User   `json:"user"`
	CSRFToken string `json:"csrf_token,omitempty"`
}
