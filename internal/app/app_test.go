package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordenescli/internal/config"
	"ordenescli/internal/services"
	ws "ordenescli/internal/websocket"
	"ordenescli/pkg/contracts"
)

// newTestApplication wires the container by hand so tests stay free of
// environment variables and the global meter provider.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hub := ws.NewHub(logger, nil)
	t.Cleanup(hub.Stop)

	reportService := services.NewReportService(cfg.Upload, logger, hub, nil)
	healthService := services.NewHealthService(contracts.Version, contracts.BuildTime, reportService, hub, logger)

	app := &Application{
		Config:        cfg,
		Hub:           hub,
		ReportService: reportService,
		HealthService: healthService,
		Logger:        logger,
	}
	app.setupRouter()
	app.createServer()
	return app
}

func TestApplication_HealthRoute(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\"status\"")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestApplication_VersionRoute(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), contracts.Version)
}

func TestApplication_UnknownAPIRouteIsProblem(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestApplication_SecurityHeadersOnAPI(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestApplication_DatasetRoutesMounted(t *testing.T) {
	app := newTestApplication(t)

	// No body: the upload must fail with a client error, not a 404.
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.NotEqual(t, http.StatusNotFound, rec.Code)
	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestApplication_GzipResponses(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestApplication_TrailingSlashStripped(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/version/", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplication_ServerSettings(t *testing.T) {
	app := newTestApplication(t)

	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.NotNil(t, app.Server.Handler)
}
