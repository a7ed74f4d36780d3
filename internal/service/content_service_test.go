package service

import (
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagecraft-backend/internal/authorization"
	"pagecraft-backend/internal/layouts"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/internal/storage"
	"pagecraft-backend/internal/validation"
)

type contentFixture struct {
	svc       *ContentService
	contents  *memoryContentRepo
	templates *memoryTemplateRepo
	uploadDir string
	tmpl      *models.Template
}

func landingSchema() sections.Schema {
	return sections.Schema{
		{ID: "intro", Type: sections.KindText, Title: "Intro", Required: true, Order: 0, Config: sections.DefaultConfig(sections.KindText)},
		{ID: "hero", Type: sections.KindImage, Title: "Hero", Order: 1, Config: sections.DefaultConfig(sections.KindImage)},
		{ID: "cta", Type: sections.KindLink, Title: "Call to action", Order: 2, Config: sections.DefaultConfig(sections.KindLink)},
	}
}

func newContentFixture(t *testing.T, status models.TemplateStatus) *contentFixture {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/uploads/")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	templates := newMemoryTemplateRepo()
	tmpl := &models.Template{Name: "Landing", Slug: "landing", Status: status, Sections: landingSchema(), CreatedBy: 1}
	if err := templates.Create(tmpl); err != nil {
		t.Fatalf("failed to seed template: %v", err)
	}

	contents := newMemoryContentRepo()
	svc := NewContentService(
		contents,
		NewTemplateService(templates, nil, nil),
		NewUploadService(store, 200*megabyte),
		validation.NewEngine("/uploads/"),
		layouts.DefaultRegistry(),
		"",
	)
	return &contentFixture{svc: svc, contents: contents, templates: templates, uploadDir: dir, tmpl: tmpl}
}

func author(id uint) session.Session {
	return session.Session{UserID: id, Username: "author", Role: authorization.RoleUser}
}

func validInput(templateID uint) SubmissionInput {
	return SubmissionInput{
		TemplateID:      templateID,
		Heading:         "Summer launch",
		Subheading:      "Everything new this season",
		BackgroundColor: "#1A2B3C",
		Values: map[string]string{
			"intro": "Welcome to the launch page",
			"cta":   "https://example.com/signup",
		},
	}
}

func TestSubmitStoresValuesInSchemaOrder(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)

	doc, err := fx.svc.Submit(context.Background(), author(7), validInput(fx.tmpl.ID))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if doc.CreatedBy != 7 {
		t.Fatalf("expected creator 7, got %d", doc.CreatedBy)
	}
	if len(doc.Sections) != len(fx.tmpl.Sections) {
		t.Fatalf("expected %d section values, got %d", len(fx.tmpl.Sections), len(doc.Sections))
	}
	for _, def := range fx.tmpl.Sections {
		value, ok := doc.Sections[def.ID]
		if !ok {
			t.Fatalf("missing value for %s", def.ID)
		}
		if value.Order != def.Order || value.Type != def.Type {
			t.Fatalf("%s: expected order %d type %s, got %d %s", def.ID, def.Order, def.Type, value.Order, value.Type)
		}
	}
	if doc.Sections["intro"].Value != "Welcome to the launch page" {
		t.Fatalf("unexpected intro value %q", doc.Sections["intro"].Value)
	}
	if len(doc.Schema) != len(fx.tmpl.Sections) {
		t.Fatalf("expected schema snapshot to be stored")
	}

	stored, err := fx.svc.GetByID(doc.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	entries := layouts.Ordered(stored)
	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.ID)
	}
	// the optional hero was left blank and is not rendered
	if strings.Join(got, ",") != "intro,cta" {
		t.Fatalf("unexpected section order %v", got)
	}
}

func TestSubmitReportsEveryInvalidField(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)

	in := validInput(fx.tmpl.ID)
	in.Heading = ""
	in.BackgroundColor = "blue"
	in.Values = map[string]string{"cta": "not a link"}

	_, err := fx.svc.Submit(context.Background(), author(7), in)

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	for _, field := range []string{validation.FieldHeading, validation.FieldBackgroundColor, "intro", "cta"} {
		if _, ok := verrs[field]; !ok {
			t.Fatalf("expected an error for %s, got %v", field, verrs)
		}
	}
	if _, ok := verrs[validation.FieldSubheading]; ok {
		t.Fatalf("valid subheading must not be reported")
	}
	if len(fx.contents.contents) != 0 {
		t.Fatalf("invalid submission must not be stored")
	}
}

func TestSubmitRejectsUnpublishedTemplate(t *testing.T) {
	for _, status := range []models.TemplateStatus{models.TemplateDraft, models.TemplateArchived} {
		fx := newContentFixture(t, status)
		if _, err := fx.svc.Submit(context.Background(), author(7), validInput(fx.tmpl.ID)); !errors.Is(err, ErrTemplateNotPublished) {
			t.Fatalf("%s: expected ErrTemplateNotPublished, got %v", status, err)
		}
	}
}

func TestSubmitRequiresSession(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)
	if _, err := fx.svc.Submit(context.Background(), session.Session{}, validInput(fx.tmpl.ID)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSubmitStoresUploadedImage(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)

	in := validInput(fx.tmpl.ID)
	in.Files = map[string]*multipart.FileHeader{"hero": createMultipartFile(t, "hero.png", pngHeader)}

	doc, err := fx.svc.Submit(context.Background(), author(7), in)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !strings.HasPrefix(doc.Sections["hero"].Value, "/uploads/hero-") {
		t.Fatalf("expected stored upload url, got %q", doc.Sections["hero"].Value)
	}
}

func TestSubmitRemovesUploadsWhenSaveFails(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)
	fx.contents.failWrite = errors.New("database unavailable")

	in := validInput(fx.tmpl.ID)
	in.Files = map[string]*multipart.FileHeader{"hero": createMultipartFile(t, "hero.png", pngHeader)}

	if _, err := fx.svc.Submit(context.Background(), author(7), in); err == nil {
		t.Fatalf("expected save failure to be returned")
	}

	entries, err := os.ReadDir(fx.uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected uploads to be rolled back, found %d files", len(entries))
	}
}

func TestSubmitTurnsUploadRejectionIntoFieldError(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)

	in := validInput(fx.tmpl.ID)
	in.Files = map[string]*multipart.FileHeader{"hero": createMultipartFile(t, "hero.png", []byte("plain text, not an image"))}

	_, err := fx.svc.Submit(context.Background(), author(7), in)
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if _, ok := verrs["hero"]; !ok {
		t.Fatalf("expected hero error, got %v", verrs)
	}
}

func TestUpdateOnlyAllowedForCreator(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)

	doc, err := fx.svc.Submit(context.Background(), author(7), validInput(fx.tmpl.ID))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	in := validInput(fx.tmpl.ID)
	in.Heading = "Edited heading"

	admin := session.Session{UserID: 99, Role: authorization.RoleSuperadmin}
	for _, actor := range []session.Session{author(8), admin, {}} {
		if _, err := fx.svc.Update(context.Background(), actor, doc.ID, in); !errors.Is(err, ErrContentForbidden) {
			t.Fatalf("user %d: expected ErrContentForbidden, got %v", actor.UserID, err)
		}
	}

	stored, _ := fx.svc.GetByID(doc.ID)
	if stored.Heading != "Summer launch" {
		t.Fatalf("blocked update must not change content, got %q", stored.Heading)
	}

	updated, err := fx.svc.Update(context.Background(), author(7), doc.ID, in)
	if err != nil {
		t.Fatalf("creator update returned error: %v", err)
	}
	if updated.Heading != "Edited heading" {
		t.Fatalf("expected heading to change, got %q", updated.Heading)
	}
}

func TestUpdateUsesSchemaSnapshot(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)

	doc, err := fx.svc.Submit(context.Background(), author(7), validInput(fx.tmpl.ID))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	// the template gains a required section after the document was written
	tmpl, _ := fx.templates.GetByID(fx.tmpl.ID)
	tmpl.Sections = append(tmpl.Sections, sections.Definition{
		ID: "extra", Type: sections.KindText, Title: "Extra", Required: true, Order: 3,
		Config: sections.DefaultConfig(sections.KindText),
	})
	if err := fx.templates.Update(tmpl); err != nil {
		t.Fatalf("failed to change template: %v", err)
	}

	if _, err := fx.svc.Update(context.Background(), author(7), doc.ID, validInput(fx.tmpl.ID)); err != nil {
		t.Fatalf("expected update against the snapshot to pass, got %v", err)
	}
}

func TestDeleteAllowedForCreatorAndTemplateManagers(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)

	first, _ := fx.svc.Submit(context.Background(), author(7), validInput(fx.tmpl.ID))
	second, _ := fx.svc.Submit(context.Background(), author(7), validInput(fx.tmpl.ID))

	if err := fx.svc.Delete(author(8), first.ID); !errors.Is(err, ErrContentForbidden) {
		t.Fatalf("expected ErrContentForbidden, got %v", err)
	}
	if err := fx.svc.Delete(author(7), first.ID); err != nil {
		t.Fatalf("creator delete returned error: %v", err)
	}
	admin := session.Session{UserID: 2, Role: authorization.RoleAdmin}
	if err := fx.svc.Delete(admin, second.ID); err != nil {
		t.Fatalf("admin delete returned error: %v", err)
	}
	if _, err := fx.svc.GetByID(second.ID); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func uploadExists(t *testing.T, fx *contentFixture, url string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(fx.uploadDir, strings.TrimPrefix(url, "/uploads/")))
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("stat upload: %v", err)
	}
	return err == nil
}

func TestDeleteOnlyRemovesOwnUploads(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)

	in := validInput(fx.tmpl.ID)
	in.Files = map[string]*multipart.FileHeader{"hero": createMultipartFile(t, "hero.png", pngHeader)}
	original, err := fx.svc.Submit(context.Background(), author(7), in)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	heroURL := original.Sections["hero"].Value

	borrowed := validInput(fx.tmpl.ID)
	borrowed.Values["hero"] = heroURL
	other, err := fx.svc.Submit(context.Background(), author(99), borrowed)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if len(other.Uploads) != 0 {
		t.Fatalf("a pasted url must not be recorded as an upload, got %v", other.Uploads)
	}

	if err := fx.svc.Delete(author(99), other.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !uploadExists(t, fx, heroURL) {
		t.Fatalf("deleting another document removed %s", heroURL)
	}

	if err := fx.svc.Delete(author(7), original.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if uploadExists(t, fx, heroURL) {
		t.Fatalf("expected %s to be removed with its document", heroURL)
	}
}

func TestUpdateReleasesReplacedUploads(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)

	in := validInput(fx.tmpl.ID)
	in.Files = map[string]*multipart.FileHeader{"hero": createMultipartFile(t, "hero.png", pngHeader)}
	doc, err := fx.svc.Submit(context.Background(), author(7), in)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	heroURL := doc.Sections["hero"].Value

	// a pasted copy in another document is not released by its edits
	borrowed := validInput(fx.tmpl.ID)
	borrowed.Values["hero"] = heroURL
	other, err := fx.svc.Submit(context.Background(), author(99), borrowed)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if _, err := fx.svc.Update(context.Background(), author(99), other.ID, validInput(fx.tmpl.ID)); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !uploadExists(t, fx, heroURL) {
		t.Fatalf("editing another document removed %s", heroURL)
	}

	keep := validInput(fx.tmpl.ID)
	keep.Values["hero"] = heroURL
	updated, err := fx.svc.Update(context.Background(), author(7), doc.ID, keep)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !uploadExists(t, fx, heroURL) || len(updated.Uploads) != 1 {
		t.Fatalf("kept upload must survive the edit, uploads %v", updated.Uploads)
	}

	updated, err = fx.svc.Update(context.Background(), author(7), doc.ID, validInput(fx.tmpl.ID))
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if uploadExists(t, fx, heroURL) {
		t.Fatalf("expected replaced upload %s to be removed", heroURL)
	}
	if len(updated.Uploads) != 0 {
		t.Fatalf("expected no owned uploads, got %v", updated.Uploads)
	}
}

func TestRenderFallsBackToDefaultLayout(t *testing.T) {
	fx := newContentFixture(t, models.TemplatePublished)

	doc, err := fx.svc.Submit(context.Background(), author(7), validInput(fx.tmpl.ID))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	view, err := fx.svc.Render(doc.ID, "no-such-layout")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if view.Layout != layouts.DefaultLayout {
		t.Fatalf("expected %s layout, got %s", layouts.DefaultLayout, view.Layout)
	}

	total := 0
	for _, group := range view.Groups {
		total += len(group.Entries)
	}
	if total != 2 {
		t.Fatalf("expected the two filled sections to be rendered, got %d", total)
	}
}
