package ops

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotebot/internal/platform/config"
	"quotebot/internal/platform/metrics"
	"quotebot/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChecker struct {
	name string
	err  error
}

func (s *stubChecker) Name() string                  { return s.name }
func (s *stubChecker) Check(_ context.Context) error { return s.err }

func newTestServer(t *testing.T, checkers ...ports.HealthChecker) (*Server, *prometheus.Registry) {
	t.Helper()

	registry := ports.NewHealthRegistry()
	for _, checker := range checkers {
		require.NoError(t, registry.Register(checker))
	}

	promReg := prometheus.NewRegistry()

	cfg := config.OpsConfig{
		Enabled:      true,
		Host:         "127.0.0.1",
		Port:         9090,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	buildInfo := NewBuildInfo("1.2.3", "abc123", "2024-01-15T10:00:00Z")

	return New(cfg, logger, registry, promReg, buildInfo), promReg
}

func get(server *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("1.0.0", "abc123", "2024-01-15T10:00:00Z")

	assert.Equal(t, "1.0.0", bi.Version)
	assert.Equal(t, "abc123", bi.Commit)
	assert.Equal(t, "2024-01-15T10:00:00Z", bi.BuildTime)
	assert.Equal(t, runtime.Version(), bi.GoVersion)
}

func TestServer_Liveness(t *testing.T) {
	server, _ := newTestServer(t)

	w := get(server, "/-/live")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp livenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestServer_Readiness(t *testing.T) {
	t.Run("all checks healthy", func(t *testing.T) {
		server, _ := newTestServer(t,
			&stubChecker{name: "postgres"},
			&stubChecker{name: "discord"},
		)

		w := get(server, "/-/ready")

		assert.Equal(t, http.StatusOK, w.Code)

		var resp readinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Len(t, resp.Checks, 2)
	})

	t.Run("unhealthy check returns 503", func(t *testing.T) {
		server, _ := newTestServer(t,
			&stubChecker{name: "postgres"},
			&stubChecker{name: "discord", err: errors.New("gateway session not ready")},
		)

		w := get(server, "/-/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp readinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "gateway session not ready", resp.Checks["discord"].Message)
	})
}

func TestServer_BuildInfo(t *testing.T) {
	server, _ := newTestServer(t)

	w := get(server, "/-/build")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "abc123", resp.Commit)
}

func TestServer_Metrics(t *testing.T) {
	server, promReg := newTestServer(t)

	m := metrics.New(promReg)
	m.CommandsTotal.WithLabelValues("save", metrics.OutcomeOK).Inc()

	w := get(server, "/-/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quotebot_commands_total")
}

func TestServer_Addr(t *testing.T) {
	server, _ := newTestServer(t)

	assert.Equal(t, "127.0.0.1:9090", server.Addr())
}
