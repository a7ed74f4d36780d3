package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/constants"
	"pagecraft-backend/internal/models"
	"pagecraft-backend/internal/service"
)

const csrfTokenBytes = 32

type AuthHandler struct {
	authService service.AuthUseCase
	tokenTTL    time.Duration
}

func NewAuthHandler(authService service.AuthUseCase, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 72 * time.Hour
	}
	return &AuthHandler{authService: authService, tokenTTL: tokenTTL}
}

type cookieConfig struct {
	name     string
	value    string
	maxAge   int
	httpOnly bool
}

func generateCSRFToken() (string, error) {
	token := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(token), nil
}

func (h *AuthHandler) setCookie(c *gin.Context, cfg cookieConfig) {
	secure := c.Request.TLS != nil
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(cfg.name, cfg.value, cfg.maxAge, "/", "", secure, cfg.httpOnly)
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, token, csrfToken string) {
	maxAge := int(h.tokenTTL.Seconds())
	h.setCookie(c, cookieConfig{name: constants.AuthTokenCookieName, value: token, maxAge: maxAge, httpOnly: true})
	h.setCookie(c, cookieConfig{name: constants.CSRFTokenCookieName, value: csrfToken, maxAge: maxAge})
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	h.setCookie(c, cookieConfig{name: constants.AuthTokenCookieName, maxAge: -1, httpOnly: true})
	h.setCookie(c, cookieConfig{name: constants.CSRFTokenCookieName, maxAge: -1})
}

// bindAuthRequest accepts both JSON and HTML form posts.
func bindAuthRequest(c *gin.Context, req interface{}) error {
	if strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		return c.ShouldBindJSON(req)
	}
	return c.ShouldBind(req)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := bindAuthRequest(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindAuthRequest(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.authService.Login(req)
	if err != nil {
		respondError(c, err)
		return
	}

	csrfToken, err := generateCSRFToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate CSRF token"})
		return
	}
	h.setSessionCookies(c, token, csrfToken)

	c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: *user, CSRFToken: csrfToken})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.authService.GetUserByID(currentSession(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(currentSession(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(currentSession(c).UserID, req.OldPassword, req.NewPassword); err != nil {
		// a wrong old password is a bad request here, not a failed login
		if statusFor(err) == http.StatusUnauthorized {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
