package sections

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownConfigKey is returned when a config update names a key the kind does not have.
var ErrUnknownConfigKey = errors.New("unknown config key")

// Config is the per-kind configuration of a section. Only the five config
// types in this package implement it.
type Config interface {
	Kind() Kind
	clone() Config
	fields() map[string]interface{}
	normalize()
}

type TextFormat string

const (
	FormatPlain    TextFormat = "plain"
	FormatMarkdown TextFormat = "markdown"
	FormatHTML     TextFormat = "html"
)

func (f TextFormat) Valid() bool {
	return f == FormatPlain || f == FormatMarkdown || f == FormatHTML
}

type TextConfig struct {
	MinLength   int        `json:"minLength"`
	MaxLength   int        `json:"maxLength"`
	Placeholder string     `json:"placeholder"`
	Format      TextFormat `json:"format"`
}

// ImageConfig sizes are megabytes.
type ImageConfig struct {
	MaxSize      int      `json:"maxSize"`
	AllowedTypes []string `json:"allowedTypes"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	AspectRatio  string   `json:"aspectRatio"`
}

// VideoConfig durations are seconds and sizes are megabytes.
type VideoConfig struct {
	MaxDuration    int      `json:"maxDuration"`
	MaxSize        int      `json:"maxSize"`
	AllowedSources []string `json:"allowedSources"`
	AllowedTypes   []string `json:"allowedTypes"`
}

type FileConfig struct {
	MaxSize      int      `json:"maxSize"`
	AllowedTypes []string `json:"allowedTypes"`
}

type LinkConfig struct {
	ValidateURL    bool     `json:"validateUrl"`
	AllowedDomains []string `json:"allowedDomains"`
}

const (
	SourceUpload  = "upload"
	SourceYouTube = "youtube"
	SourceVimeo   = "vimeo"
)

// DefaultConfig returns a fresh default configuration, or nil for an invalid kind.
func DefaultConfig(kind Kind) Config {
	switch kind {
	case KindText:
		return &TextConfig{MinLength: 0, MaxLength: 1000, Format: FormatPlain}
	case KindImage:
		return &ImageConfig{
			MaxSize:      5,
			AllowedTypes: []string{"jpg", "jpeg", "png", "gif", "webp"},
		}
	case KindVideo:
		return &VideoConfig{
			MaxDuration:    300,
			MaxSize:        100,
			AllowedSources: []string{SourceUpload, SourceYouTube, SourceVimeo},
			AllowedTypes:   []string{"mp4", "mov", "avi", "mkv", "webm"},
		}
	case KindFile:
		return &FileConfig{MaxSize: 10, AllowedTypes: []string{"pdf", "doc", "docx", "txt"}}
	case KindLink:
		return &LinkConfig{ValidateURL: true, AllowedDomains: []string{}}
	}
	return nil
}

// DecodeConfig overlays raw onto the defaults of kind. Keys that are missing,
// unknown or of the wrong JSON type keep their default value.
func DecodeConfig(kind Kind, raw json.RawMessage) (Config, error) {
	cfg := DefaultConfig(kind)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if len(raw) == 0 {
		return cfg, nil
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return cfg, nil
	}

	for key, target := range cfg.fields() {
		value, ok := values[key]
		if !ok {
			continue
		}
		// a value of the wrong type leaves the default in place
		_ = decodeField(target, value)
	}
	cfg.normalize()
	return cfg, nil
}

// WithConfigValue returns a copy of cfg with key set to value.
func WithConfigValue(cfg Config, key string, value interface{}) (Config, error) {
	next := cfg.clone()
	target, ok := next.fields()[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := decodeField(target, raw); err != nil {
		return nil, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	next.normalize()
	return next, nil
}

// CloneConfig returns a deep copy.
func CloneConfig(cfg Config) Config {
	if cfg == nil {
		return nil
	}
	return cfg.clone()
}

func decodeField(target interface{}, raw json.RawMessage) error {
	switch t := target.(type) {
	case *int:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*t = int(v)
	case *bool:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*t = v
	case *string:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*t = v
	case *TextFormat:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		f := TextFormat(strings.ToLower(strings.TrimSpace(v)))
		if !f.Valid() {
			return fmt.Errorf("unsupported format %q", v)
		}
		*t = f
	case *[]string:
		var v []string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if v == nil {
			v = []string{}
		}
		*t = v
	default:
		return fmt.Errorf("unsupported config field %T", target)
	}
	return nil
}

func (c *TextConfig) Kind() Kind { return KindText }

func (c *TextConfig) clone() Config {
	out := *c
	return &out
}

func (c *TextConfig) fields() map[string]interface{} {
	return map[string]interface{}{
		"minLength":   &c.MinLength,
		"maxLength":   &c.MaxLength,
		"placeholder": &c.Placeholder,
		"format":      &c.Format,
	}
}

func (c *TextConfig) normalize() {
	if !c.Format.Valid() {
		c.Format = FormatPlain
	}
	if c.MinLength < 0 {
		c.MinLength = 0
	}
}

func (c *ImageConfig) Kind() Kind { return KindImage }

func (c *ImageConfig) clone() Config {
	out := *c
	out.AllowedTypes = cloneStrings(c.AllowedTypes)
	return &out
}

func (c *ImageConfig) fields() map[string]interface{} {
	return map[string]interface{}{
		"maxSize":      &c.MaxSize,
		"allowedTypes": &c.AllowedTypes,
		"width":        &c.Width,
		"height":       &c.Height,
		"aspectRatio":  &c.AspectRatio,
	}
}

func (c *ImageConfig) normalize() {
	c.AllowedTypes = normalizeExtensions(c.AllowedTypes)
}

func (c *VideoConfig) Kind() Kind { return KindVideo }

func (c *VideoConfig) clone() Config {
	out := *c
	out.AllowedSources = cloneStrings(c.AllowedSources)
	out.AllowedTypes = cloneStrings(c.AllowedTypes)
	return &out
}

func (c *VideoConfig) fields() map[string]interface{} {
	return map[string]interface{}{
		"maxDuration":    &c.MaxDuration,
		"maxSize":        &c.MaxSize,
		"allowedSources": &c.AllowedSources,
		"allowedTypes":   &c.AllowedTypes,
	}
}

func (c *VideoConfig) normalize() {
	c.AllowedTypes = normalizeExtensions(c.AllowedTypes)
	for i, s := range c.AllowedSources {
		c.AllowedSources[i] = strings.ToLower(strings.TrimSpace(s))
	}
}

// AllowsSource reports whether source is listed in AllowedSources.
func (c *VideoConfig) AllowsSource(source string) bool {
	for _, s := range c.AllowedSources {
		if s == source {
			return true
		}
	}
	return false
}

func (c *FileConfig) Kind() Kind { return KindFile }

func (c *FileConfig) clone() Config {
	out := *c
	out.AllowedTypes = cloneStrings(c.AllowedTypes)
	return &out
}

func (c *FileConfig) fields() map[string]interface{} {
	return map[string]interface{}{
		"maxSize":      &c.MaxSize,
		"allowedTypes": &c.AllowedTypes,
	}
}

func (c *FileConfig) normalize() {
	c.AllowedTypes = normalizeExtensions(c.AllowedTypes)
}

func (c *LinkConfig) Kind() Kind { return KindLink }

func (c *LinkConfig) clone() Config {
	out := *c
	out.AllowedDomains = cloneStrings(c.AllowedDomains)
	return &out
}

func (c *LinkConfig) fields() map[string]interface{} {
	return map[string]interface{}{
		"validateUrl":    &c.ValidateURL,
		"allowedDomains": &c.AllowedDomains,
	}
}

func (c *LinkConfig) normalize() {
	if c.AllowedDomains == nil {
		c.AllowedDomains = []string{}
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// normalizeExtensions lower-cases entries and strips a leading dot.
func normalizeExtensions(in []string) []string {
	if in == nil {
		return []string{}
	}
	for i, ext := range in {
		in[i] = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	}
	return in
}
