package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newTestUploadService(t *testing.T) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/uploads/")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return NewUploadService(store, 200*megabyte), dir
}

func sectionOf(kind sections.Kind) sections.Definition {
	return sections.Definition{ID: "s-" + string(kind), Type: kind, Title: "Field", Config: sections.DefaultConfig(kind)}
}

func TestUploadVideoStoresFileAndDuration(t *testing.T) {
	svc, dir := newTestUploadService(t)

	content := buildTestMP4(t, buildMvhdVersion0Payload(1000, 45*1000))
	file := createMultipartFile(t, "Course Intro.mp4", content)

	result, err := svc.Store(context.Background(), sectionOf(sections.KindVideo), file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(result.URL, "/uploads/course-intro-") || !strings.HasSuffix(result.URL, ".mp4") {
		t.Fatalf("unexpected url: %s", result.URL)
	}
	if result.Duration != 45*time.Second {
		t.Fatalf("unexpected duration: %v", result.Duration)
	}
	if _, err := os.Stat(filepath.Join(dir, result.Filename)); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}

func TestUploadVideoTooLong(t *testing.T) {
	svc, dir := newTestUploadService(t)

	def := sectionOf(sections.KindVideo)
	def.Config.(*sections.VideoConfig).MaxDuration = 30

	file := createMultipartFile(t, "long.mp4", buildTestMP4(t, buildMvhdVersion0Payload(1000, 45*1000)))
	if _, err := svc.Store(context.Background(), def, file); !errors.Is(err, ErrVideoTooLong) {
		t.Fatalf("expected ErrVideoTooLong, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("rejected video must not be stored, found %d files", len(entries))
	}
}

func TestUploadVideoUnknownDurationIsAccepted(t *testing.T) {
	svc, _ := newTestUploadService(t)

	// ftyp without a moov box: recognised as mp4, duration unreadable
	content := buildBox("ftyp", []byte("isom"))
	file := createMultipartFile(t, "clip.mp4", content)

	result, err := svc.Store(context.Background(), sectionOf(sections.KindVideo), file)
	if err != nil {
		t.Fatalf("unexpected error for media with unreadable duration: %v", err)
	}
	if result.Duration != 0 {
		t.Fatalf("expected zero duration, got %v", result.Duration)
	}
}

func TestUploadImageRejectsMismatchedContent(t *testing.T) {
	svc, dir := newTestUploadService(t)

	file := createMultipartFile(t, "photo.png", []byte("just some text pretending to be a picture"))
	if _, err := svc.Store(context.Background(), sectionOf(sections.KindImage), file); !errors.Is(err, ErrUploadTypeMismatch) {
		t.Fatalf("expected ErrUploadTypeMismatch, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no stored files, found %d", len(entries))
	}
}

func TestContentMatchesKind(t *testing.T) {
	png := mimetype.Detect(pngHeader)
	text := mimetype.Detect([]byte("plain text"))

	if !contentMatchesKind(sections.KindImage, png) {
		t.Fatalf("expected %s to count as an image", png)
	}
	if contentMatchesKind(sections.KindVideo, png) {
		t.Fatalf("expected %s not to count as a video", png)
	}
	if contentMatchesKind(sections.KindImage, text) {
		t.Fatalf("expected %s not to count as an image", text)
	}
	if !contentMatchesKind(sections.KindFile, text) {
		t.Fatal("file sections accept any detected type")
	}
	if contentMatchesKind(sections.KindLink, png) {
		t.Fatal("link sections never hold uploads")
	}
}

func TestUploadImageAndRemove(t *testing.T) {
	svc, dir := newTestUploadService(t)

	file := createMultipartFile(t, "photo.png", pngHeader)
	result, err := svc.Store(context.Background(), sectionOf(sections.KindImage), file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", result.ContentType)
	}
	if !svc.Manages(result.URL) {
		t.Fatalf("expected %s to be managed", result.URL)
	}

	if err := svc.Remove(context.Background(), result.URL, "https://example.com/elsewhere.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, result.Filename)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected file to be removed, got %v", err)
	}
}

func TestUploadRejectsNonUploadKinds(t *testing.T) {
	svc, _ := newTestUploadService(t)

	file := createMultipartFile(t, "notes.txt", []byte("hello"))
	for _, kind := range []sections.Kind{sections.KindText, sections.KindLink} {
		if _, err := svc.Store(context.Background(), sectionOf(kind), file); !errors.Is(err, ErrUploadNotAccepted) {
			t.Fatalf("%s: expected ErrUploadNotAccepted, got %v", kind, err)
		}
	}
}

func TestUploadRespectsServiceLimit(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/uploads/")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	svc := NewUploadService(store, 4)

	file := createMultipartFile(t, "doc.pdf", []byte("%PDF-1.4 body"))
	if _, err := svc.Store(context.Background(), sectionOf(sections.KindFile), file); !errors.Is(err, ErrUploadTooLarge) {
		t.Fatalf("expected ErrUploadTooLarge, got %v", err)
	}
}

func TestDiscardWithoutQueueRemovesInline(t *testing.T) {
	svc, dir := newTestUploadService(t)

	result, err := svc.Store(context.Background(), sectionOf(sections.KindFile), createMultipartFile(t, "doc.pdf", []byte("%PDF-1.4 body")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.Discard(result.URL)
	if _, err := os.Stat(filepath.Join(dir, result.Filename)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected discarded file to be removed, got %v", err)
	}
}

func createMultipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write file content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(int64(body.Len())); err != nil {
		t.Fatalf("failed to parse multipart form: %v", err)
	}

	files := req.MultipartForm.File["file"]
	if len(files) == 0 {
		t.Fatalf("expected multipart file to be available")
	}
	return files[0]
}

// Minimal MP4 payloads: an ftyp box followed by moov/mvhd.
func buildTestMP4(t *testing.T, mvhdPayload []byte) []byte {
	t.Helper()
	moov := buildBox("moov", buildBox("mvhd", mvhdPayload))
	ftyp := buildBox("ftyp", []byte("isom"))
	return append(ftyp, moov...)
}

func buildMvhdVersion0Payload(timescale, duration uint32) []byte {
	payload := make([]byte, 4+16)
	binary.BigEndian.PutUint32(payload[12:16], timescale)
	binary.BigEndian.PutUint32(payload[16:20], duration)
	return payload
}

func buildBox(boxType string, payload []byte) []byte {
	size := uint32(len(payload) + 8)
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, size)
	data := make([]byte, 0, size)
	data = append(data, header...)
	data = append(data, boxType...)
	data = append(data, payload...)
	return data
}
