package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/forms"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/service"
)

type TemplateHandler struct {
	templateService service.TemplateUseCase
}

func NewTemplateHandler(templateService service.TemplateUseCase) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Catalogue lists the section types a template can contain and their defaults.
func (h *TemplateHandler) Catalogue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sections": h.templateService.Catalogue()})
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req models.CreateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	tmpl, err := h.templateService.Create(currentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": tmpl})
}

func (h *TemplateHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tmpl, err := h.templateService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}

func (h *TemplateHandler) GetBySlug(c *gin.Context) {
	tmpl, err := h.templateService.GetBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	if tmpl.Status != models.TemplatePublished {
		respondError(c, service.ErrTemplateNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}

// Form returns the generated form description for a published template.
func (h *TemplateHandler) Form(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tmpl, err := h.templateService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if tmpl.Status != models.TemplatePublished {
		respondError(c, service.ErrTemplateNotPublished)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": forms.Generate(tmpl)})
}

// ListPublished is the public catalogue of templates users can fill in.
func (h *TemplateHandler) ListPublished(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	templates, total, err := h.templateService.ListPublished(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(templates, total, filter))
}

func (h *TemplateHandler) List(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	templates, total, err := h.templateService.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(templates, total, filter))
}

func (h *TemplateHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	tmpl, err := h.templateService.Update(id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}

func (h *TemplateHandler) setStatus(c *gin.Context, status models.TemplateStatus) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tmpl, err := h.templateService.SetStatus(id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}

func (h *TemplateHandler) Publish(c *gin.Context) {
	h.setStatus(c, models.TemplatePublished)
}

func (h *TemplateHandler) Archive(c *gin.Context) {
	h.setStatus(c, models.TemplateArchived)
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.templateService.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "template deleted"})
}

func (h *TemplateHandler) AddSection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.AddSectionRequest
	if !bindJSON(c, &req) {
		return
	}
	tmpl, err := h.templateService.AddSection(id, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": tmpl})
}

func (h *TemplateHandler) RemoveSection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tmpl, err := h.templateService.RemoveSection(id, c.Param("section_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}

func (h *TemplateHandler) MoveSection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.MoveSectionRequest
	if !bindJSON(c, &req) {
		return
	}
	tmpl, err := h.templateService.MoveSection(id, *req.From, *req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}

func (h *TemplateHandler) UpdateSectionField(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateSectionFieldRequest
	if !bindJSON(c, &req) {
		return
	}
	tmpl, err := h.templateService.UpdateSectionField(id, c.Param("section_id"), req.Field, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}

func (h *TemplateHandler) UpdateSectionConfig(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateSectionConfigRequest
	if !bindJSON(c, &req) {
		return
	}
	tmpl, err := h.templateService.UpdateSectionConfig(id, c.Param("section_id"), req.Key, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}
