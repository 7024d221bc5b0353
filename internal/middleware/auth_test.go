package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"trading_edu_backend/internal/config"
	"trading_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret-test-secret-test-secret"

func newRouter(cfg *config.JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, ByUser(c))
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	valid, err := util.GenerateJWT("user-42", "a@example.com", secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, _ := util.GenerateJWT("user-42", "", secret, -time.Minute)
	wrongKey, _ := util.GenerateJWT("user-42", "", "another-secret", time.Hour)
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantBody string
	}{
		{"bearer header", "Bearer " + valid, "", http.StatusOK, "user:user-42"},
		{"query token", "", valid, http.StatusOK, "user:user-42"},
		{"missing", "", "", http.StatusUnauthorized, ""},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized, ""},
		{"wrong key", "Bearer " + wrongKey, "", http.StatusUnauthorized, ""},
		{"no subject", "Bearer " + noSubject, "", http.StatusUnauthorized, ""},
	}

	r := newRouter(&config.JWTConfig{Secret: secret})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/me"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthMiddlewareIssuer(t *testing.T) {
	token, _ := util.GenerateJWT("user-42", "", secret, time.Hour)
	r := newRouter(&config.JWTConfig{Secret: secret, Issuer: "https://auth.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for a token without the issuer", w.Code)
	}
}
