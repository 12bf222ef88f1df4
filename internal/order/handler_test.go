package order

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AutoMercado/AutoMercado/internal/common/auth"
	"github.com/AutoMercado/AutoMercado/internal/common/config"
	"github.com/AutoMercado/AutoMercado/internal/common/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) (*gin.Engine, *Service, *memStore, *fakeDirectory, config.AuthConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.NewLogrusLogger("error", "text", "stdout", "")
	require.NoError(t, err)

	store := newMemStore()
	dir := newFakeDirectory()
	svc := NewService(store, dir, log)

	authCfg := config.AuthConfig{JWTSecret: "test-secret", Issuer: "test", TokenTTLHrs: 1}
	r := gin.New()
	NewHandler(svc).Mount(r, authCfg)
	return r, svc, store, dir, authCfg
}

func bearerFor(t *testing.T, cfg config.AuthConfig, actor *auth.Actor) string {
	t.Helper()
	token, _, err := auth.GenerateAccessToken(cfg, actor.ID, actor.Email, actor.Role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRejectRouteRecordsNotes(t *testing.T) {
	r, svc, store, dir, authCfg := testRouter(t)
	dir.add(corolla())

	o := place(t, svc, buyer, 85000)

	body := strings.NewReader(`{"notes":"price too low"}`)
	req := httptest.NewRequest(http.MethodPut, "/orders/"+o.ID+"/reject", body)
	req.Header.Set("Authorization", bearerFor(t, authCfg, seller))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := store.FindByID(req.Context(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
	assert.Equal(t, "price too low", got.Notes)
}

func TestCancelRouteWithoutBody(t *testing.T) {
	r, svc, store, dir, authCfg := testRouter(t)
	dir.add(corolla())

	o := place(t, svc, buyer, 85000)

	req := httptest.NewRequest(http.MethodPut, "/orders/"+o.ID+"/cancel", nil)
	req.Header.Set("Authorization", bearerFor(t, authCfg, buyer))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := store.FindByID(req.Context(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Empty(t, got.Notes)
}
