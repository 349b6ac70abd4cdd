package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantkeeper.io/plantkeeper/internal/api/handlers"
	"plantkeeper.io/plantkeeper/internal/api/middleware"
	"plantkeeper.io/plantkeeper/internal/config"
	"plantkeeper.io/plantkeeper/internal/domain"
	"plantkeeper.io/plantkeeper/internal/pkg/logger"
	"plantkeeper.io/plantkeeper/internal/pkg/worker"
)

func init() {
	_ = logger.Init("error", "json")
}

func TestBootstrap_NoDB(t *testing.T) {
	// Bootstrap without a real database should fail at DB connection.
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     65432, // Non-existent port
			User:     "test",
			Password: "test",
			Database: "test",
			SSLMode:  "disable",
			MaxConns: 5,
			MinConns: 1,
		},
		Worker: config.WorkerConfig{
			GeneralPoolSize: 10,
			JobsPoolSize:    5,
		},
	}

	ctx := context.Background()
	application, err := Bootstrap(ctx, cfg)
	require.Error(t, err, "Bootstrap should fail without database")
	assert.Nil(t, application, "Application should be nil on bootstrap failure")
}

func TestApplication_Shutdown_Nil(t *testing.T) {
	// Shutdown on empty application should not panic.
	app := &Application{}
	app.Shutdown()
}

func TestRouter_UnauthenticatedRequestRejected(t *testing.T) {
	server := handlers.NewServer(handlers.ServerDeps{})
	router := newRouter(server, []byte("0123456789abcdef0123456789abcdef"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_WorkerMetricsReportsPools(t *testing.T) {
	pools, err := worker.NewPools(context.Background(), worker.DefaultPoolConfig())
	require.NoError(t, err)
	defer pools.Shutdown()

	jwtCfg := middleware.JWTConfig{
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
		Issuer:     "plantkeeper",
		ExpiresIn:  time.Hour,
	}
	server := handlers.NewServer(handlers.ServerDeps{JWTCfg: jwtCfg, Pools: pools})
	router := newRouter(server, jwtCfg.SigningKey)

	admin := &domain.User{ID: 1, Username: "admin", Role: domain.RoleAdministrator, Status: domain.StatusActive}
	token, _, err := middleware.GenerateToken(jwtCfg, admin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/workers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"general"`)
	assert.Contains(t, w.Body.String(), `"jobs"`)
}

func TestRouter_HealthIsPublic(t *testing.T) {
	server := handlers.NewServer(handlers.ServerDeps{})
	router := newRouter(server, []byte("0123456789abcdef0123456789abcdef"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
