package sections

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrIndexOutOfRange = errors.New("section index out of range")
	ErrUnknownField    = errors.New("unknown section field")
	ErrDuplicateID     = errors.New("duplicate section id")
)

// Field names accepted by UpdateSectionField.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldRequired    = "required"
	FieldType        = "type"
)

var newID = func() string {
	return uuid.NewString()
}

// Definition is one typed slot of a template.
type Definition struct {
	ID          string `json:"id"`
	Type        Kind   `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Order       int    `json:"order"`
	Config      Config `json:"config"`
}

type definitionJSON struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Required    bool            `json:"required"`
	Order       int             `json:"order"`
	Config      json.RawMessage `json:"config"`
}

// UnmarshalJSON decodes config according to type, filling gaps from the defaults.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var raw definitionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	kind, err := ParseKind(raw.Type)
	if err != nil {
		return err
	}
	cfg, err := DecodeConfig(kind, raw.Config)
	if err != nil {
		return err
	}

	*d = Definition{
		ID:          strings.TrimSpace(raw.ID),
		Type:        kind,
		Title:       raw.Title,
		Description: raw.Description,
		Required:    raw.Required,
		Order:       raw.Order,
		Config:      cfg,
	}
	return nil
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	d.Config = CloneConfig(d.Config)
	return d
}

// Schema is the ordered list of definitions of a template.
type Schema []Definition

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for i, d := range s {
		out[i] = d.Clone()
	}
	return out
}

// Find returns the definition with id.
func (s Schema) Find(id string) (Definition, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s[i], true
	}
	return Definition{}, false
}

// Ordered returns a copy sorted by Order.
func (s Schema) Ordered() Schema {
	out := s.Clone()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (s Schema) indexOf(id string) int {
	for i := range s {
		if s[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the structural invariants of a stored schema.
func (s Schema) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for i, d := range s {
		if d.ID == "" {
			return fmt.Errorf("section %d has no id", i)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
		}
		seen[d.ID] = struct{}{}
		if !d.Type.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownKind, d.Type)
		}
		if d.Order != i {
			return fmt.Errorf("section %s has order %d at position %d", d.ID, d.Order, i)
		}
	}
	return nil
}

// Normalize prepares a schema arriving from a client: it sorts by the incoming
// order, assigns ids where missing or duplicated, fills missing configs and
// renumbers order to match position.
func Normalize(s Schema) Schema {
	out := s.Ordered()
	seen := make(map[string]struct{}, len(out))
	for i := range out {
		if _, dup := seen[out[i].ID]; out[i].ID == "" || dup {
			out[i].ID = newID()
		}
		seen[out[i].ID] = struct{}{}
		if out[i].Config == nil || out[i].Config.Kind() != out[i].Type {
			out[i].Config = DefaultConfig(out[i].Type)
		}
	}
	return renumber(out)
}

// AddSection appends a section of kind with default config.
func AddSection(s Schema, kind Kind) (Schema, error) {
	cfg := DefaultConfig(kind)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	out := append(s.Clone(), Definition{
		ID:     newID(),
		Type:   kind,
		Title:  defaultTitle(kind),
		Config: cfg,
	})
	return renumber(out), nil
}

// RemoveSection deletes the section with id and closes the gap in order.
func RemoveSection(s Schema, id string) (Schema, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}

	out := make(Schema, 0, len(s)-1)
	for j, d := range s {
		if j != i {
			out = append(out, d.Clone())
		}
	}
	return renumber(out), nil
}

// MoveSection relocates the section at from to position to.
func MoveSection(s Schema, from, to int) (Schema, error) {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) {
		return nil, fmt.Errorf("%w: move %d to %d in %d sections", ErrIndexOutOfRange, from, to, len(s))
	}

	out := s.Clone()
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append(Schema{moved}, out[to:]...)...)
	return renumber(out), nil
}

// UpdateSectionField sets title, description, required or type. Changing the
// type replaces the config with the new kind's defaults.
func UpdateSectionField(s Schema, id, field string, value interface{}) (Schema, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}

	out := s.Clone()
	d := &out[i]

	switch field {
	case FieldTitle, FieldDescription:
		text, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a string", field)
		}
		if field == FieldTitle {
			d.Title = text
		} else {
			d.Description = text
		}
	case FieldRequired:
		required, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%s must be a boolean", field)
		}
		d.Required = required
	case FieldType:
		var raw string
		switch v := value.(type) {
		case string:
			raw = v
		case Kind:
			raw = string(v)
		default:
			return nil, fmt.Errorf("%s must be a string", field)
		}
		kind, err := ParseKind(raw)
		if err != nil {
			return nil, err
		}
		if kind != d.Type {
			d.Type = kind
			d.Config = DefaultConfig(kind)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	return renumber(out), nil
}

// UpdateSectionConfig sets one config key, named as in the JSON form of the config.
func UpdateSectionConfig(s Schema, id, key string, value interface{}) (Schema, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}

	out := s.Clone()
	cfg := out[i].Config
	if cfg == nil {
		cfg = DefaultConfig(out[i].Type)
	}
	next, err := WithConfigValue(cfg, key, value)
	if err != nil {
		return nil, err
	}
	out[i].Config = next
	return renumber(out), nil
}

func renumber(s Schema) Schema {
	if s == nil {
		s = Schema{}
	}
	for i := range s {
		s[i].Order = i
	}
	return s
}

func defaultTitle(kind Kind) string {
	switch kind {
	case KindText:
		return "Text"
	case KindImage:
		return "Image"
	case KindVideo:
		return "Video"
	case KindFile:
		return "File"
	case KindLink:
		return "Link"
	}
	return ""
}
