// Package storage persists uploaded section files either on local disk or on
// a remote object endpoint.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var (
	ErrInvalidName = errors.New("invalid object name")
	ErrNotManaged  = errors.New("url is not managed by this store")
)

// Store saves objects under a flat name and returns the public URL they are
// served from.
type Store interface {
	Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
	Manages(url string) bool
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base != name {
		return "", ErrInvalidName
	}
	return base, nil
}

func ensureTrailingSlash(value string) string {
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
