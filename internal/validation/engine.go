// Package validation checks submitted values against section definitions.
// Every rule returns a *FieldError or nil and never panics.
package validation

import (
	"mime"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"pagecraft-backend/internal/sections"
	"pagecraft-backend/pkg/validator"
)

const megabyte = 1024 * 1024

// DefaultUploadPrefix is where locally stored uploads are served from.
const DefaultUploadPrefix = "/uploads/"

// FileInfo describes an uploaded file without its contents.
type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
}

// Extension returns the lower-case extension without the dot, falling back to
// the content type's subtype when the name has none.
func (f *FileInfo) Extension() string {
	if ext := strings.TrimPrefix(strings.ToLower(path.Ext(f.Name)), "."); ext != "" {
		return ext
	}
	if mediaType, _, err := mime.ParseMediaType(f.ContentType); err == nil {
		if i := strings.Index(mediaType, "/"); i >= 0 {
			return mediaType[i+1:]
		}
	}
	return ""
}

// Engine validates values against definitions. The zero value is not usable;
// construct it with NewEngine.
type Engine struct {
	uploadPrefix string
}

func NewEngine(uploadPrefix string) *Engine {
	if uploadPrefix == "" {
		uploadPrefix = DefaultUploadPrefix
	}
	if !strings.HasSuffix(uploadPrefix, "/") {
		uploadPrefix += "/"
	}
	return &Engine{uploadPrefix: uploadPrefix}
}

var defaultEngine = NewEngine(DefaultUploadPrefix)

// Validate checks value (or file, when present) against def using the default upload prefix.
func Validate(def sections.Definition, value string, file *FileInfo) *FieldError {
	return defaultEngine.Validate(def, value, file)
}

func (e *Engine) Validate(def sections.Definition, value string, file *FileInfo) *FieldError {
	empty := strings.TrimSpace(value) == "" && file == nil
	if def.Required && empty {
		return newFieldError(def.ID, "is required")
	}

	cfg := def.Config
	if cfg == nil || cfg.Kind() != def.Type {
		cfg = sections.DefaultConfig(def.Type)
	}

	switch c := cfg.(type) {
	case *sections.TextConfig:
		return validateText(def.ID, value, c)
	case *sections.ImageConfig:
		if file != nil {
			return validateFile(def.ID, file, c.MaxSize, c.AllowedTypes)
		}
		if empty {
			return nil
		}
		return e.validateMediaURL(def.ID, value)
	case *sections.VideoConfig:
		return e.validateVideo(def.ID, value, file, c)
	case *sections.FileConfig:
		if file != nil {
			return validateFile(def.ID, file, c.MaxSize, c.AllowedTypes)
		}
		if empty {
			return nil
		}
		return e.validateStoredFile(def.ID, value, c.AllowedTypes)
	case *sections.LinkConfig:
		if empty {
			return nil
		}
		return validateLink(def.ID, value, c)
	}
	return newFieldError(def.ID, "has an unsupported section type")
}

func validateText(field, value string, c *sections.TextConfig) *FieldError {
	n := utf8.RuneCountInString(value)
	if n < c.MinLength {
		return newFieldError(field, "must be at least %d characters", c.MinLength)
	}
	if c.MaxLength > 0 && n > c.MaxLength {
		return newFieldError(field, "must not exceed %d characters", c.MaxLength)
	}
	return nil
}

func validateFile(field string, file *FileInfo, maxSizeMB int, allowed []string) *FieldError {
	if maxSizeMB > 0 && file.Size > int64(maxSizeMB)*megabyte {
		return newFieldError(field, "file must not exceed %d MB", maxSizeMB)
	}
	ext := file.Extension()
	if !containsFold(allowed, ext) {
		return newFieldError(field, "file type %q is not allowed", ext)
	}
	return nil
}

func (e *Engine) validateVideo(field, value string, file *FileInfo, c *sections.VideoConfig) *FieldError {
	if file != nil {
		if !c.AllowsSource(sections.SourceUpload) {
			return newFieldError(field, "video uploads are not allowed")
		}
		return validateFile(field, file, c.MaxSize, c.AllowedTypes)
	}
	if strings.TrimSpace(value) == "" {
		return nil
	}

	if err := e.validateMediaURL(field, value); err != nil {
		return err
	}

	info, err := ValidateVideoURL(value)
	if err != nil {
		return newFieldError(field, "%s", ErrInvalidVideoURL.Error())
	}
	if !c.AllowsSource(info.Source) {
		return newFieldError(field, "video source %q is not allowed", info.Source)
	}
	return nil
}

// validateMediaURL accepts absolute http(s) URLs and paths under the upload prefix.
func (e *Engine) validateMediaURL(field, value string) *FieldError {
	value = strings.TrimSpace(value)
	if e.IsLocalUpload(value) || validator.IsHTTPURL(value) {
		return nil
	}
	return newFieldError(field, "must be a valid URL")
}

// validateStoredFile accepts only a file stored earlier, which comes back as
// its upload URL. File sections have no external URL mode.
func (e *Engine) validateStoredFile(field, value string, allowed []string) *FieldError {
	value = strings.TrimSpace(value)
	if !e.IsLocalUpload(value) {
		return newFieldError(field, "must be an uploaded file")
	}
	u, _ := url.Parse(value)
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if !containsFold(allowed, ext) {
		return newFieldError(field, "file type %q is not allowed", ext)
	}
	return nil
}

// IsLocalUpload reports whether value points into the upload location, either
// a local path or the public base of a remote store.
func (e *Engine) IsLocalUpload(value string) bool {
	if !strings.HasPrefix(value, e.uploadPrefix) || strings.Contains(value, "..") {
		return false
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	if strings.HasPrefix(e.uploadPrefix, "/") {
		return u.Scheme == "" && u.Host == ""
	}
	return u.Host != ""
}

func validateLink(field, value string, c *sections.LinkConfig) *FieldError {
	value = strings.TrimSpace(value)
	if c.ValidateURL && !validator.IsHTTPURL(value) {
		return newFieldError(field, "must be a valid URL")
	}
	if len(c.AllowedDomains) == 0 {
		return nil
	}
	lower := strings.ToLower(value)
	for _, domain := range c.AllowedDomains {
		d := strings.ToLower(strings.TrimSpace(domain))
		if d != "" && strings.Contains(lower, d) {
			return nil
		}
	}
	return newFieldError(field, "must link to one of: %s", strings.Join(c.AllowedDomains, ", "))
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimPrefix(item, "."), value) {
			return true
		}
	}
	return false
}
