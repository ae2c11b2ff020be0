package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/log"
)

const (
	healthCheckTimeout = 3 * time.Second

	serviceName = "blockplan"

	healthHealthy      = "healthy"
	healthUnhealthy    = "unhealthy"
	resourceOK         = "ok"
	resourceNotEnabled = "not configured"
)

// handleHealth reports the reachability of the shared collaborators. An
// unconfigured collaborator does not make the service unhealthy
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(
		c.Request.Context(), healthCheckTimeout,
	)
	defer cancel()

	res := api.HealthResponse{
		Service:   serviceName,
		Status:    healthHealthy,
		Resources: map[string]string{},
	}

	res.Resources["redis"] = s.checkRedis(ctx)
	res.Resources["files"] = s.checkFiles(ctx)

	status := http.StatusOK
	for name, state := range res.Resources {
		if state != resourceOK && state != resourceNotEnabled {
			res.Status = healthUnhealthy
			status = http.StatusServiceUnavailable
			s.deps.Logger.Warn("Health check failed",
				slog.String("resource", name),
				log.ErrorString(state))
		}
	}
	c.JSON(status, res)
}

func (s *Server) checkRedis(ctx context.Context) string {
	if s.deps.Redis == nil {
		return resourceNotEnabled
	}
	if err := s.deps.Redis.Ping(ctx); err != nil {
		return err.Error()
	}
	return resourceOK
}

func (s *Server) checkFiles(ctx context.Context) string {
	if s.deps.Files == nil {
		return resourceNotEnabled
	}
	ok, err := s.deps.Files.Accessible(ctx)
	if err != nil {
		return err.Error()
	}
	if !ok {
		return healthUnhealthy
	}
	return resourceOK
}
