package validation

import (
	"strings"
	"unicode/utf8"

	"pagecraft-backend/internal/sections"
	"pagecraft-backend/pkg/validator"
)

// Top-level field names used as keys in Errors.
const (
	FieldHeading         = "heading"
	FieldSubheading      = "subheading"
	FieldBackgroundColor = "backgroundColor"
)

const (
	headingMin = 3
	headingMax = 100
)

func ValidateHeading(value string) *FieldError {
	return validateTitleLike(FieldHeading, value)
}

func ValidateSubheading(value string) *FieldError {
	return validateTitleLike(FieldSubheading, value)
}

func validateTitleLike(field, value string) *FieldError {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n == 0 {
		return newFieldError(field, "is required")
	}
	if n < headingMin {
		return newFieldError(field, "must be at least %d characters", headingMin)
	}
	if n > headingMax {
		return newFieldError(field, "must not exceed %d characters", headingMax)
	}
	return nil
}

// ValidateBackgroundColor accepts #RGB or #RRGGBB in any letter case.
func ValidateBackgroundColor(value string) *FieldError {
	if !validator.IsHexColor(value) {
		return newFieldError(FieldBackgroundColor, "must be a hex color like #fff or #1a2b3c")
	}
	return nil
}

// Submission is the full set of values a user sends for a template.
// Values and Files are keyed by section id.
type Submission struct {
	Heading         string
	Subheading      string
	BackgroundColor string
	Values          map[string]string
	Files           map[string]*FileInfo
}

// ValidateSubmission checks every section of schema and the top-level fields
// in one pass. The returned map is empty when the submission is valid.
func ValidateSubmission(schema sections.Schema, sub Submission) Errors {
	return defaultEngine.ValidateSubmission(schema, sub)
}

func (e *Engine) ValidateSubmission(schema sections.Schema, sub Submission) Errors {
	errs := Errors{}
	errs.Add(ValidateHeading(sub.Heading))
	errs.Add(ValidateSubheading(sub.Subheading))
	errs.Add(ValidateBackgroundColor(sub.BackgroundColor))

	for _, def := range schema {
		var file *FileInfo
		if sub.Files != nil {
			file = sub.Files[def.ID]
		}
		if file != nil && !def.Type.AcceptsUpload() {
			errs.Add(newFieldError(def.ID, "does not accept file uploads"))
			continue
		}
		errs.Add(e.Validate(def, sub.Values[def.ID], file))
	}
	return errs
}
