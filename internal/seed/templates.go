package seed

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/goccy/go-yaml"

	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/service"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/pkg/logger"
	"pagecraft-backend/pkg/utils"
)

//go:embed data/templates/*.yaml
var defaultTemplatesFS embed.FS

const templatesDir = "data/templates"

// templateDefinition is one seed file. Sections use the same keys as the
// template API.
type templateDefinition struct {
	models.CreateTemplateRequest
	Publish bool `json:"publish"`
}

// EnsureDefaultTemplates creates the bundled templates that do not exist yet,
// owned by owner. Existing templates are matched by slug and left untouched.
func EnsureDefaultTemplates(templates service.TemplateUseCase, owner session.Session) {
	if templates == nil {
		return
	}
	if !owner.Authenticated() {
		logger.Warn("Skipping default templates: no owner account", nil)
		return
	}

	definitions, err := loadTemplateDefinitions(defaultTemplatesFS, templatesDir)
	if err != nil {
		logger.Error(err, "Failed to load default templates", nil)
		return
	}

	for _, def := range definitions {
		ensureTemplate(templates, owner, def)
	}
}

func ensureTemplate(templates service.TemplateUseCase, owner session.Session, def templateDefinition) {
	slug := utils.GenerateSlug(def.Name)
	fields := map[string]interface{}{"slug": slug}

	if _, err := templates.GetBySlug(slug); err == nil {
		logger.Debug("Default template already present", fields)
		return
	} else if !errors.Is(err, service.ErrTemplateNotFound) {
		logger.Error(err, "Failed to verify default template", fields)
		return
	}

	tmpl, err := templates.Create(owner, def.CreateTemplateRequest)
	if err != nil {
		logger.Error(err, "Failed to create default template", fields)
		return
	}
	if def.Publish {
		if _, err := templates.SetStatus(tmpl.ID, models.TemplatePublished); err != nil {
			logger.Error(err, "Failed to publish default template", fields)
			return
		}
	}

	fields["template_id"] = tmpl.ID
	logger.Info("Ensured default template", fields)
}

// loadTemplateDefinitions reads every YAML file in dir, in name order. YAML
// is converted to JSON first so sections decode through their JSON rules.
func loadTemplateDefinitions(fsys fs.FS, dir string) ([]templateDefinition, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var definitions []templateDefinition
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		def, err := parseTemplateDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		definitions = append(definitions, def)
	}
	return definitions, nil
}

func parseTemplateDefinition(data []byte) (templateDefinition, error) {
	var def templateDefinition

	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return def, err
	}
	if err := json.Unmarshal(raw, &def); err != nil {
		return def, err
	}
	if def.Name == "" {
		return def, errors.New("template name is required")
	}
	return def, nil
}
