package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubVerifier map[string]uint

func (s stubVerifier) Verify(token string) (uint, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, errors.New("bad token")
}

func newRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", handler, func(c *gin.Context) {
		id, ok := AccountID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(stubVerifier{"good": 7}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", want: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", want: http.StatusOK},
		{name: "lower-case scheme", header: "bearer good", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := newRouter(OptionalAuthMiddleware(stubVerifier{"good": 7}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != `{"id":0,"ok":false}` {
		t.Fatalf("expected anonymous pass-through, got %d %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != `{"id":7,"ok":true}` {
		t.Fatalf("expected account 7, got %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", w.Code)
	}
}
