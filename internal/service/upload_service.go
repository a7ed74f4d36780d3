package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"pagecraft-backend/internal/background"
	"pagecraft-backend/internal/metrics"
	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/storage"
	"pagecraft-backend/internal/validation"
	"pagecraft-backend/pkg/logger"
	"pagecraft-backend/pkg/media"
	"pagecraft-backend/pkg/utils"
	"pagecraft-backend/pkg/validator"
)

var (
	ErrUploadTooLarge      = errors.New("file size exceeds maximum allowed size")
	ErrUploadTypeMismatch  = errors.New("file content does not match the section type")
	ErrUploadNotAccepted   = errors.New("section does not accept file uploads")
	ErrVideoTooLong        = errors.New("video exceeds the maximum duration")
	errUploadNotConfigured = errors.New("upload service is not configured")
)

const megabyte = 1024 * 1024

// UploadResult describes one stored section file.
type UploadResult struct {
	URL         string        `json:"url"`
	Filename    string        `json:"filename"`
	Size        int64         `json:"size"`
	ContentType string        `json:"content_type"`
	Duration    time.Duration `json:"duration,omitempty"`
}

type UploadService struct {
	store   storage.Store
	maxSize int64
	tasks   *background.Queue
}

func NewUploadService(store storage.Store, maxSize int64) *UploadService {
	return &UploadService{store: store, maxSize: maxSize}
}

// UseQueue makes Discard remove files asynchronously.
func (s *UploadService) UseQueue(queue *background.Queue) {
	s.tasks = queue
}

// FileInfo converts a multipart header into the shape the validation engine reads.
func FileInfo(file *multipart.FileHeader) *validation.FileInfo {
	if file == nil {
		return nil
	}
	return &validation.FileInfo{
		Name:        file.Filename,
		Size:        file.Size,
		ContentType: file.Header.Get("Content-Type"),
	}
}

// Store saves file for the section def. The content is sniffed so that, for
// example, a renamed executable is not accepted as an image; video durations
// are checked against the section's maxDuration.
func (s *UploadService) Store(ctx context.Context, def sections.Definition, file *multipart.FileHeader) (*UploadResult, error) {
	if s == nil || s.store == nil {
		return nil, errUploadNotConfigured
	}
	if file == nil {
		return nil, errors.New("file is required")
	}
	if !def.Type.AcceptsUpload() {
		return nil, ErrUploadNotAccepted
	}
	if s.maxSize > 0 && !validator.ValidateFileSize(file.Size, s.maxSize) {
		return nil, ErrUploadTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect upload: %w", err)
	}
	if !contentMatchesKind(def.Type, detected) {
		return nil, fmt.Errorf("%w: %s", ErrUploadTypeMismatch, detected.String())
	}

	var duration time.Duration
	if cfg, ok := def.Config.(*sections.VideoConfig); ok {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		duration, err = checkVideoDuration(src, cfg)
		if err != nil {
			return nil, err
		}
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	name := storedName(file.Filename, detected)
	url, err := s.store.Save(ctx, name, src, file.Size, detected.String())
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	if metrics.UploadedBytes != nil {
		metrics.UploadedBytes.WithLabelValues(def.Type.String()).Add(float64(file.Size))
	}

	return &UploadResult{
		URL:         url,
		Filename:    name,
		Size:        file.Size,
		ContentType: detected.String(),
		Duration:    duration,
	}, nil
}

// Remove deletes stored files immediately. URLs this service does not manage
// (external links, YouTube) are skipped.
func (s *UploadService) Remove(ctx context.Context, urls ...string) error {
	if s == nil || s.store == nil {
		return nil
	}
	var errs []error
	for _, url := range urls {
		if url == "" || !s.store.Manages(url) {
			continue
		}
		if err := s.store.Delete(ctx, url); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
		}
	}
	return errors.Join(errs...)
}

// Discard removes files that are no longer referenced. With a queue the
// removal happens in the background and is retried; otherwise inline.
func (s *UploadService) Discard(urls ...string) {
	if s == nil || len(urls) == 0 {
		return
	}

	run := func(ctx context.Context) error {
		return s.Remove(ctx, urls...)
	}

	if s.tasks != nil {
		err := s.tasks.Enqueue(background.Task{
			Name:    "discard-uploads",
			Run:     run,
			Timeout: 30 * time.Second,
			Retries: 2,
			Backoff: time.Second,
		})
		if err == nil {
			return
		}
		logger.Warn("Falling back to inline upload cleanup", map[string]interface{}{"error": err.Error()})
	}

	if err := run(context.Background()); err != nil {
		logger.Error(err, "Failed to remove discarded uploads", map[string]interface{}{"count": len(urls)})
	}
}

func (s *UploadService) Manages(url string) bool {
	return s != nil && s.store != nil && s.store.Manages(url)
}

func checkVideoDuration(src io.ReadSeeker, cfg *sections.VideoConfig) (time.Duration, error) {
	if cfg.MaxDuration <= 0 {
		return 0, nil
	}

	duration, err := media.CheckDuration(src, time.Duration(cfg.MaxDuration)*time.Second)
	switch {
	case err == nil:
		return duration, nil
	case errors.Is(err, media.ErrTooLong):
		return duration, fmt.Errorf("%w: must not exceed %d seconds", ErrVideoTooLong, cfg.MaxDuration)
	case errors.Is(err, media.ErrDurationUnknown):
		// only MP4 family containers carry an mvhd box
		logger.Debug("Video duration could not be determined", map[string]interface{}{"error": err.Error()})
		return 0, nil
	default:
		return 0, err
	}
}

func contentMatchesKind(kind sections.Kind, detected *mimetype.MIME) bool {
	switch kind {
	case sections.KindImage:
		return detectedAs(detected, "image/*")
	case sections.KindVideo:
		return detectedAs(detected, "video/*")
	case sections.KindFile:
		return true
	}
	return false
}

// detectedAs checks the detected type and its parents against allowed.
func detectedAs(detected *mimetype.MIME, allowed ...string) bool {
	for m := detected; m != nil; m = m.Parent() {
		if validator.ValidateContentType(m.String(), allowed) {
			return true
		}
	}
	return false
}

func storedName(original string, detected *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = detected.Extension()
	}

	base := utils.GenerateSlug(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))
	if len(base) > 48 {
		base = strings.Trim(base[:48], "-")
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if base == "" {
		return suffix + ext
	}
	return base + "-" + suffix + ext
}
