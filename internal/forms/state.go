package forms

import (
	"errors"
	"fmt"
	"strings"

	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/validation"
)

var (
	ErrUnknownControl = errors.New("unknown form control")
	ErrWrongControl   = errors.New("operation not supported by control")
	ErrModeInactive   = errors.New("control is in the other mode")
)

// FieldState is the pending input of one section control.
type FieldState struct {
	Mode    Mode                   `json:"mode,omitempty"`
	Value   string                 `json:"value"`
	File    *validation.FileInfo   `json:"-"`
	Preview string                 `json:"preview,omitempty"`
	Error   *validation.FieldError `json:"error,omitempty"`
}

// State tracks one user's edits to a generated form. Each setter re-runs the
// rule for the field it touches and stores the result inline; other fields
// are not revalidated.
type State struct {
	form   Form
	engine *validation.Engine
	defs   map[string]sections.Definition

	Heading         string
	Subheading      string
	BackgroundColor string

	top    map[string]*validation.FieldError
	fields map[string]*FieldState
}

func NewState(form Form, engine *validation.Engine) *State {
	if engine == nil {
		engine = validation.NewEngine(validation.DefaultUploadPrefix)
	}

	s := &State{
		form:            form,
		engine:          engine,
		defs:            make(map[string]sections.Definition, len(form.schema)),
		BackgroundColor: "#ffffff",
		top:             make(map[string]*validation.FieldError),
		fields:          make(map[string]*FieldState, len(form.Sections)),
	}
	for _, def := range form.schema {
		s.defs[def.ID] = def
	}
	for _, c := range form.Sections {
		s.fields[c.Name] = &FieldState{Mode: c.DefaultMode()}
	}
	return s
}

func (s *State) Form() Form {
	return s.form
}

// Field returns a copy of the state of a section control.
func (s *State) Field(id string) (FieldState, bool) {
	f, ok := s.fields[id]
	if !ok {
		return FieldState{}, false
	}
	return *f, true
}

func (s *State) SetHeading(value string) *validation.FieldError {
	s.Heading = value
	return s.setTop(validation.FieldHeading, validation.ValidateHeading(value))
}

func (s *State) SetSubheading(value string) *validation.FieldError {
	s.Subheading = value
	return s.setTop(validation.FieldSubheading, validation.ValidateSubheading(value))
}

func (s *State) SetBackgroundColor(value string) *validation.FieldError {
	s.BackgroundColor = value
	return s.setTop(validation.FieldBackgroundColor, validation.ValidateBackgroundColor(value))
}

func (s *State) setTop(field string, err *validation.FieldError) *validation.FieldError {
	if err == nil {
		delete(s.top, field)
		return nil
	}
	s.top[field] = err
	return err
}

// SetText updates a textarea control.
func (s *State) SetText(id, value string) (*validation.FieldError, error) {
	c, f, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if c.Kind != ControlTextarea {
		return nil, fmt.Errorf("%w: %s is %s", ErrWrongControl, id, c.Kind)
	}
	f.Value = value
	return s.revalidate(id, f), nil
}

// SetURL updates a url control or a media control in url mode.
func (s *State) SetURL(id, value string) (*validation.FieldError, error) {
	c, f, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	switch c.Kind {
	case ControlURL:
	case ControlMedia, ControlFile:
		if c.Kind == ControlMedia && f.Mode != ModeURL {
			return nil, fmt.Errorf("%w: %s", ErrModeInactive, id)
		}
		f.File = nil
		f.Preview = strings.TrimSpace(value)
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrWrongControl, id, c.Kind)
	}
	f.Value = value
	return s.revalidate(id, f), nil
}

// AttachFile selects a file for a file control or a media control in upload mode.
func (s *State) AttachFile(id string, file *validation.FileInfo) (*validation.FieldError, error) {
	c, f, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	switch c.Kind {
	case ControlFile:
	case ControlMedia:
		if f.Mode != ModeUpload {
			return nil, fmt.Errorf("%w: %s", ErrModeInactive, id)
		}
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrWrongControl, id, c.Kind)
	}

	f.File = file
	f.Value = ""
	f.Preview = ""
	if file != nil {
		f.Preview = file.Name
	}
	return s.revalidate(id, f), nil
}

// SwitchMode flips a media control between upload and url, discarding the
// pending value, file and preview of the previous mode.
func (s *State) SwitchMode(id string, mode Mode) error {
	c, f, err := s.lookup(id)
	if err != nil {
		return err
	}
	if c.Kind != ControlMedia || !c.supports(mode) {
		return fmt.Errorf("%w: %s cannot use mode %q", ErrWrongControl, id, mode)
	}
	if f.Mode == mode {
		return nil
	}

	*f = FieldState{Mode: mode}
	return nil
}

func (s *State) lookup(id string) (Control, *FieldState, error) {
	c, ok := s.form.Section(id)
	if !ok {
		return Control{}, nil, fmt.Errorf("%w: %s", ErrUnknownControl, id)
	}
	return c, s.fields[id], nil
}

func (s *State) revalidate(id string, f *FieldState) *validation.FieldError {
	f.Error = s.engine.Validate(s.defs[id], f.Value, f.File)
	return f.Error
}

// Errors returns the inline errors currently shown.
func (s *State) Errors() validation.Errors {
	errs := validation.Errors{}
	for _, err := range s.top {
		errs.Add(err)
	}
	for _, f := range s.fields {
		errs.Add(f.Error)
	}
	return errs
}

// CanSubmit is false while any control shows an error.
func (s *State) CanSubmit() bool {
	return len(s.Errors()) == 0
}

// Submission assembles the pending values and validates all of them in one
// pass, including fields that were never touched.
func (s *State) Submission() (validation.Submission, validation.Errors) {
	sub := validation.Submission{
		Heading:         s.Heading,
		Subheading:      s.Subheading,
		BackgroundColor: s.BackgroundColor,
		Values:          make(map[string]string, len(s.fields)),
		Files:           make(map[string]*validation.FileInfo),
	}
	for id, f := range s.fields {
		if f.File != nil {
			sub.Files[id] = f.File
			continue
		}
		sub.Values[id] = f.Value
	}

	errs := s.engine.ValidateSubmission(s.form.schema, sub)
	s.ApplyErrors(errs)
	return sub, errs
}

// Load replays a submitted payload through the setters so the state mirrors
// what a user would have seen after typing it in.
func (s *State) Load(sub validation.Submission) {
	s.SetHeading(sub.Heading)
	s.SetSubheading(sub.Subheading)
	if sub.BackgroundColor != "" {
		s.SetBackgroundColor(sub.BackgroundColor)
	}

	for _, c := range s.form.Sections {
		file := sub.Files[c.Name]
		value := sub.Values[c.Name]

		switch c.Kind {
		case ControlTextarea:
			_, _ = s.SetText(c.Name, value)
		case ControlURL:
			_, _ = s.SetURL(c.Name, value)
		case ControlFile:
			if file != nil {
				_, _ = s.AttachFile(c.Name, file)
			} else {
				_, _ = s.SetURL(c.Name, value)
			}
		case ControlMedia:
			if file != nil && c.supports(ModeUpload) {
				_ = s.SwitchMode(c.Name, ModeUpload)
				_, _ = s.AttachFile(c.Name, file)
			} else if value != "" {
				_ = s.SwitchMode(c.Name, ModeURL)
				_, _ = s.SetURL(c.Name, value)
			}
		}
	}
}

// ApplyErrors overwrites inline errors with the result of a full validation pass.
func (s *State) ApplyErrors(errs validation.Errors) {
	s.top = make(map[string]*validation.FieldError)
	for _, field := range []string{validation.FieldHeading, validation.FieldSubheading, validation.FieldBackgroundColor} {
		if msg, ok := errs[field]; ok {
			s.top[field] = &validation.FieldError{Field: field, Message: msg}
		}
	}
	for id, f := range s.fields {
		f.Error = nil
		if msg, ok := errs[id]; ok {
			f.Error = &validation.FieldError{Field: id, Message: msg}
		}
	}
}

// TopError returns the inline error of heading, subheading or backgroundColor.
func (s *State) TopError(field string) *validation.FieldError {
	return s.top[field]
}
