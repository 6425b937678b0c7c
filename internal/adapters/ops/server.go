// Package ops serves the bot's operational HTTP endpoints: liveness and
// readiness probes, build info, and Prometheus metrics. The bot's actual
// traffic arrives over the Discord gateway; this server exists for the
// orchestrator and the monitoring stack.
package ops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quotebot/internal/platform/config"
	"quotebot/internal/ports"
)

// BuildInfo contains build-time information about the service. The values are
// injected at build time using ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo creates a BuildInfo with the Go version automatically set.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// Server wraps http.Server with Gin and provides graceful shutdown.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates the ops server and registers its routes:
//   - GET /-/live - liveness probe
//   - GET /-/ready - readiness probe over the health registry
//   - GET /-/build - build information
//   - GET /-/metrics - Prometheus metrics from gatherer
func New(cfg config.OpsConfig, logger *slog.Logger, registry ports.HealthRegistry, gatherer prometheus.Gatherer, buildInfo BuildInfo) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	h := &handler{registry: registry, buildInfo: buildInfo}

	group := engine.Group("/-")
	group.GET("/live", h.liveness)
	group.GET("/ready", h.readiness)
	group.GET("/build", h.build)
	group.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		engine:     engine,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Engine returns the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start begins listening and serving HTTP requests. It is non-blocking and
// returns a channel that receives any ListenAndServe error.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting ops server", slog.String("addr", s.httpServer.Addr))

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("ops server error: %w", err)
		}

		close(errCh)
	}()

	return errCh
}

// Shutdown gracefully stops the server, waiting for active connections to
// finish. The provided context controls the shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down ops server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ops server shutdown: %w", err)
	}

	return nil
}

type handler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
}

type livenessResponse struct {
	Status string `json:"status"`
}

// liveness reports that the process is running. It deliberately checks no
// dependencies; that is readiness's job.
func (h *handler) liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// readiness runs every registered health check and returns 503 when any
// fails. The quote store and the Discord gateway register themselves at
// startup.
func (h *handler) readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	})
}

func (h *handler) build(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}
