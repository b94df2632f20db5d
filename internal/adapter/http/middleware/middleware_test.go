package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const testSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuth(t *testing.T) {
	valid, err := GenerateToken("user-1", entities.RoleFreelancer, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	expired, _ := GenerateToken("user-1", entities.RoleFreelancer, testSecret, -time.Hour)
	noRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	otherKey, _ := GenerateToken("user-1", entities.RoleClient, "other", time.Hour)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"missing scheme", valid, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"unknown role", "Bearer " + noRole, http.StatusUnauthorized},
		{"wrong key", "Bearer " + otherKey, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got usecase.Caller
			r := gin.New()
			r.Use(Auth(testSecret, ""))
			r.GET("/test", func(c *gin.Context) {
				got, _ = CallerFrom(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK && (got.UserID != "user-1" || got.Role != entities.RoleFreelancer) {
				t.Fatalf("unexpected caller: %+v", got)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	if w.Header().Get(HeaderRequestID) == "" || w.Body.String() != w.Header().Get(HeaderRequestID) {
		t.Fatalf("expected generated request id, header=%q body=%q", w.Header().Get(HeaderRequestID), w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(HeaderRequestID) != "req-1" {
		t.Fatalf("expected propagated request id, got %q", w.Header().Get(HeaderRequestID))
	}
}

func TestRequestLoggerAndRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger), Recovery(logger))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !bytes.Contains(buf.Bytes(), []byte("panic recovered")) || !bytes.Contains(buf.Bytes(), []byte(`"status":500`)) {
		t.Fatalf("unexpected log output: %s", buf.String())
	}
}
