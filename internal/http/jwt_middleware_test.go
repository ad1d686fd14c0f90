package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"getabib/internal/domain"
	"getabib/internal/service"
)

func protectedRouter(jwtSvc *service.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(jwtSvc), func(c *gin.Context) {
		id, ok := runnerID(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"runner_id": id})
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtSvc := service.NewJWTServiceWithStore("secret", 15*time.Minute, 30*time.Minute, service.NewMemoryRefreshTokenStore())
	runner := domain.Runner{ID: "r1", DeviceID: "device-1", CreatedAt: time.Now().UTC()}
	pair, err := jwtSvc.GeneratePair(context.Background(), runner)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	r := protectedRouter(jwtSvc)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "access token", header: "Bearer " + pair.AccessToken, want: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + pair.AccessToken, want: http.StatusOK},
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "other scheme", header: "Token " + pair.AccessToken, want: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer   ", want: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + pair.RefreshToken, want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestJWTAuthMiddleware_NotConfigured(t *testing.T) {
	r := protectedRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc", token: "abc", ok: true},
		{header: "  BEARER abc  ", token: "abc", ok: true},
		{header: "Bearer", ok: false},
		{header: "Basic abc", ok: false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		if token != tt.token || ok != tt.ok {
			t.Fatalf("%q: expected %q,%v got %q,%v", tt.header, tt.token, tt.ok, token, ok)
		}
	}
}
