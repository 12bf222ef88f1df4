package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AutoMercado/AutoMercado/internal/common/config"
	"github.com/AutoMercado/AutoMercado/internal/common/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc, _ := testService(t)
	authCfg := config.AuthConfig{JWTSecret: "test-secret", Issuer: "test", TokenTTLHrs: 1}

	r := gin.New()
	NewHandler(svc).Mount(r, authCfg, middleware.NewSlidingWindow(time.Minute, 2))

	login := func() int {
		body := strings.NewReader(`{"email":"ana@example.com","password":"wrong"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// the first two attempts reach the service, the third hits the window
	assert.Equal(t, http.StatusUnauthorized, login())
	assert.Equal(t, http.StatusUnauthorized, login())
	assert.Equal(t, http.StatusTooManyRequests, login())
}

func TestLoginCaseInsensitiveEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc, _ := testService(t)
	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	authCfg := config.AuthConfig{JWTSecret: "test-secret", Issuer: "test", TokenTTLHrs: 1}
	r := gin.New()
	NewHandler(svc).Mount(r, authCfg, middleware.NewSlidingWindow(time.Minute, 10))

	body := strings.NewReader(`{"email":"ANA@Example.COM","password":"secret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
