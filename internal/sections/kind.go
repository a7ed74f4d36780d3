package sections

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the type of content a section collects.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindFile  Kind = "file"
	KindLink  Kind = "link"
)

var ErrUnknownKind = errors.New("unknown section type")

var kinds = []Kind{KindText, KindImage, KindVideo, KindFile, KindLink}

// Kinds returns every section kind in catalogue order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) Valid() bool {
	switch k {
	case KindText, KindImage, KindVideo, KindFile, KindLink:
		return true
	}
	return false
}

// ParseKind normalises case and surrounding whitespace.
func ParseKind(value string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(value)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
	}
	return k, nil
}

// AcceptsUpload reports whether the kind can carry an uploaded file.
func (k Kind) AcceptsUpload() bool {
	return k == KindImage || k == KindVideo || k == KindFile
}
