package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"pagecraft-backend/internal/constants"
)

func TestCSRFMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CSRFMiddleware())
	router.POST("/api/v1/feedback", func(c *gin.Context) { c.Status(http.StatusCreated) })

	cases := []struct {
		name     string
		auth     string
		cookies  map[string]string
		header   string
		form     string
		expected int
	}{
		{name: "anonymous", expected: http.StatusCreated},
		{name: "bearer client", auth: "Bearer t", cookies: map[string]string{constants.AuthTokenCookieName: "t"}, expected: http.StatusCreated},
		{name: "cookie without csrf", cookies: map[string]string{constants.AuthTokenCookieName: "t"}, expected: http.StatusForbidden},
		{name: "cookie with matching header", cookies: map[string]string{constants.AuthTokenCookieName: "t", constants.CSRFTokenCookieName: "abc"}, header: "abc", expected: http.StatusCreated},
		{name: "cookie with matching form field", cookies: map[string]string{constants.AuthTokenCookieName: "t", constants.CSRFTokenCookieName: "abc"}, form: "abc", expected: http.StatusCreated},
		{name: "cookie with wrong header", cookies: map[string]string{constants.AuthTokenCookieName: "t", constants.CSRFTokenCookieName: "abc"}, header: "xyz", expected: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := url.Values{}
			if tc.form != "" {
				body.Set(constants.CSRFTokenCookieName, tc.form)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			if tc.header != "" {
				req.Header.Set(constants.CSRFHeaderName, tc.header)
			}
			for name, value := range tc.cookies {
				req.AddCookie(&http.Cookie{Name: name, Value: value})
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, w.Code)
			}
		})
	}
}
