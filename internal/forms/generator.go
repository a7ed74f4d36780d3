// Package forms turns a template's section schema into form controls and
// tracks the editing state of one submission.
package forms

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/validation"
)

type ControlKind string

const (
	ControlTextarea ControlKind = "textarea"
	ControlMedia    ControlKind = "media"
	ControlFile     ControlKind = "file"
	ControlURL      ControlKind = "url"
	ControlText     ControlKind = "text"
	ControlColor    ControlKind = "color"
)

type Mode string

const (
	ModeUpload Mode = "upload"
	ModeURL    Mode = "url"
)

// Control is one input of a generated form.
type Control struct {
	Name        string        `json:"name"`
	Kind        ControlKind   `json:"kind"`
	SectionType sections.Kind `json:"section_type,omitempty"`
	Label       string        `json:"label"`
	Description string        `json:"description,omitempty"`
	Required    bool          `json:"required"`
	Placeholder string        `json:"placeholder,omitempty"`
	MinLength   int           `json:"min_length,omitempty"`
	MaxLength   int           `json:"max_length,omitempty"`
	MaxSizeMB   int           `json:"max_size_mb,omitempty"`
	Accept      []string      `json:"accept,omitempty"`
	Modes       []Mode        `json:"modes,omitempty"`
	Order       int           `json:"order"`
}

// AcceptAttr renders Accept for an <input type="file"> element.
func (c Control) AcceptAttr() string {
	exts := make([]string, 0, len(c.Accept))
	for _, ext := range c.Accept {
		exts = append(exts, "."+ext)
	}
	return strings.Join(exts, ",")
}

// DefaultMode is the mode a media control starts in.
func (c Control) DefaultMode() Mode {
	if len(c.Modes) == 0 {
		return ""
	}
	return c.Modes[0]
}

func (c Control) supports(mode Mode) bool {
	for _, m := range c.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// Form is the generated form for one template.
type Form struct {
	TemplateID   uint      `json:"template_id"`
	TemplateName string    `json:"template_name"`
	Description  string    `json:"description,omitempty"`
	Fields       []Control `json:"fields"`
	Sections     []Control `json:"sections"`

	schema sections.Schema
}

// Schema returns the definitions the form was generated from, in order.
func (f Form) Schema() sections.Schema {
	return f.schema.Clone()
}

// Section returns the control for a section id.
func (f Form) Section(id string) (Control, bool) {
	for _, c := range f.Sections {
		if c.Name == id {
			return c, true
		}
	}
	return Control{}, false
}

// Generate builds a form for tmpl using its current schema.
func Generate(tmpl *models.Template) Form {
	return GenerateFromSchema(tmpl.ID, tmpl.Name, tmpl.Description, tmpl.Sections)
}

// GenerateFromSchema builds a form for an explicit schema, such as the
// snapshot stored with existing content.
func GenerateFromSchema(templateID uint, name, description string, schema sections.Schema) Form {
	ordered := schema.Ordered()

	form := Form{
		TemplateID:   templateID,
		TemplateName: name,
		Description:  description,
		Fields:       topLevelControls(),
		Sections:     make([]Control, 0, len(ordered)),
		schema:       ordered,
	}
	for _, def := range ordered {
		form.Sections = append(form.Sections, controlFor(def))
	}
	return form
}

func topLevelControls() []Control {
	return []Control{
		{Name: validation.FieldHeading, Kind: ControlText, Label: "Heading", Required: true, MinLength: 3, MaxLength: 100},
		{Name: validation.FieldSubheading, Kind: ControlText, Label: "Subheading", Required: true, MinLength: 3, MaxLength: 100},
		{Name: validation.FieldBackgroundColor, Kind: ControlColor, Label: "Background color", Required: true, Placeholder: "#ffffff"},
	}
}

func controlFor(def sections.Definition) Control {
	c := Control{
		Name:        def.ID,
		SectionType: def.Type,
		Label:       def.Title,
		Description: def.Description,
		Required:    def.Required,
		Order:       def.Order,
	}
	if c.Label == "" {
		c.Label = cases.Title(language.English).String(string(def.Type))
	}

	cfg := def.Config
	if cfg == nil || cfg.Kind() != def.Type {
		cfg = sections.DefaultConfig(def.Type)
	}

	switch v := cfg.(type) {
	case *sections.TextConfig:
		c.Kind = ControlTextarea
		c.Placeholder = v.Placeholder
		c.MinLength = v.MinLength
		c.MaxLength = v.MaxLength
	case *sections.ImageConfig:
		c.Kind = ControlMedia
		c.MaxSizeMB = v.MaxSize
		c.Accept = v.AllowedTypes
		c.Modes = []Mode{ModeUpload, ModeURL}
		c.Placeholder = "https://"
	case *sections.VideoConfig:
		c.Kind = ControlMedia
		c.MaxSizeMB = v.MaxSize
		c.Accept = v.AllowedTypes
		if v.AllowsSource(sections.SourceUpload) {
			c.Modes = append(c.Modes, ModeUpload)
		}
		c.Modes = append(c.Modes, ModeURL)
		c.Placeholder = "https://youtu.be/..."
	case *sections.FileConfig:
		c.Kind = ControlFile
		c.MaxSizeMB = v.MaxSize
		c.Accept = v.AllowedTypes
	case *sections.LinkConfig:
		c.Kind = ControlURL
		c.Placeholder = "https://"
	}
	return c
}
