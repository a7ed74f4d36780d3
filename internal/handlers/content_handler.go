package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/service"
)

type ContentHandler struct {
	contentService service.ContentUseCase
}

func NewContentHandler(contentService service.ContentUseCase) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func (h *ContentHandler) Submit(c *gin.Context) {
	in, err := readSubmission(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.TemplateID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errTemplateIDRequired.Error()})
		return
	}

	doc, err := h.contentService.Submit(c.Request.Context(), currentSession(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"content": doc})
}

func (h *ContentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	in, err := readSubmission(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.contentService.Update(c.Request.Context(), currentSession(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": doc})
}

func (h *ContentHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	doc, err := h.contentService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": doc})
}

func (h *ContentHandler) ListMine(c *gin.Context) {
	docs, err := h.contentService.ListMine(currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": docs})
}

func (h *ContentHandler) List(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	docs, total, err := h.contentService.List(currentSession(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(docs, total, filter))
}

func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.contentService.Delete(currentSession(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "content deleted"})
}

// Render returns the arranged view of a document as JSON.
func (h *ContentHandler) Render(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := h.contentService.Render(id, c.Query("layout"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ContentHandler) Layouts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"layouts": h.contentService.Layouts()})
}
