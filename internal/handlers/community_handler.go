package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/service"
)

type FeedbackHandler struct {
	feedbackService service.FeedbackUseCase
}

func NewFeedbackHandler(feedbackService service.FeedbackUseCase) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

func (h *FeedbackHandler) Create(c *gin.Context) {
	var req models.CreateFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	feedback, err := h.feedbackService.Create(currentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"feedback": feedback})
}

func (h *FeedbackHandler) List(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	summary, err := h.feedbackService.List(currentSession(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *FeedbackHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.feedbackService.Delete(currentSession(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feedback deleted"})
}

type QuestionHandler struct {
	questionService service.QuestionUseCase
}

func NewQuestionHandler(questionService service.QuestionUseCase) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

func (h *QuestionHandler) Create(c *gin.Context) {
	var req models.CreateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}
	question, err := h.questionService.Create(currentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"question": question})
}

func (h *QuestionHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}
	question, err := h.questionService.Update(currentSession(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": question})
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.questionService.Delete(currentSession(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "question deleted"})
}

func (h *QuestionHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	question, err := h.questionService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": question})
}

func (h *QuestionHandler) List(c *gin.Context) {
	questions, err := h.questionService.List(currentSession(c), c.Query("quiz"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (h *QuestionHandler) Answer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.CreateResponseRequest
	if !bindJSON(c, &req) {
		return
	}
	response, err := h.questionService.Answer(currentSession(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"response": response})
}

func (h *QuestionHandler) ResponsesFor(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	responses, err := h.questionService.ResponsesFor(currentSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": responses})
}

func (h *QuestionHandler) MyResponses(c *gin.Context) {
	responses, err := h.questionService.MyResponses(currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": responses})
}

func (h *QuestionHandler) ListResponses(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	responses, total, err := h.questionService.ListResponses(currentSession(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paged(responses, total, filter))
}

type ShortLinkHandler struct {
	shortLinkService service.ShortLinkUseCase
	baseURL          string
}

func NewShortLinkHandler(shortLinkService service.ShortLinkUseCase, baseURL string) *ShortLinkHandler {
	return &ShortLinkHandler{shortLinkService: shortLinkService, baseURL: baseURL}
}

func (h *ShortLinkHandler) Create(c *gin.Context) {
	var req models.CreateShortLinkRequest
	if !bindJSON(c, &req) {
		return
	}
	link, err := h.shortLinkService.Create(currentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"short_link": link, "short_url": h.shortURL(link.Code)})
}

func (h *ShortLinkHandler) ListMine(c *gin.Context) {
	links, err := h.shortLinkService.ListMine(currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"short_links": links})
}

func (h *ShortLinkHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.shortLinkService.Delete(currentSession(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "short link deleted"})
}

// Redirect resolves /s/:code. Unknown codes are a plain 404.
func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	target, err := h.shortLinkService.Resolve(c.Param("code"))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			respondError(c, err)
			return
		}
		c.String(status, http.StatusText(status))
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *ShortLinkHandler) shortURL(code string) string {
	return h.baseURL + "/s/" + code
}
