package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/middleware"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/repository"
	"pagecraft-backend/internal/sections"
	"pagecraft-backend/internal/service"
	"pagecraft-backend/internal/session"
	"pagecraft-backend/internal/validation"
	"pagecraft-backend/pkg/logger"
)

// statusFor maps service errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrContentForbidden),
		errors.Is(err, service.ErrSelfModification):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrContentNotFound),
		errors.Is(err, service.ErrFeedbackNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrShortLinkNotFound),
		errors.Is(err, sections.ErrSectionNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAccountExists),
		errors.Is(err, service.ErrTenantExists),
		errors.Is(err, service.ErrShortCodeTaken),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, service.ErrTemplateNotPublished),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrReferenced):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidSchema),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidTenantToken),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrTenantNotFound),
		errors.Is(err, service.ErrInvalidOption),
		errors.Is(err, service.ErrInvalidTargetURL),
		errors.Is(err, service.ErrUploadTypeMismatch),
		errors.Is(err, service.ErrUploadNotAccepted),
		errors.Is(err, service.ErrVideoTooLong):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Validation failures carry every field
// error; internal errors are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		c.JSON(status, gin.H{"error": "validation failed", "fields": verrs})
		return
	}
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + strings.ReplaceAll(name, "_", " ")})
		return 0, false
	}
	return uint(id), true
}

func parseFilter(c *gin.Context) (models.ListFilter, bool) {
	var filter models.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return filter, false
	}
	return filter.Normalize(), true
}

func currentSession(c *gin.Context) session.Session {
	sess, _ := middleware.CurrentSession(c)
	return sess
}

type listResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func paged(items interface{}, total int64, filter models.ListFilter) listResponse {
	return listResponse{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}
}
