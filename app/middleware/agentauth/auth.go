// Package agentauth authenticates data-plane requests with the per-agent
// API key issued at registration.
package agentauth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"trustplane/domain/agent"

	"github.com/labstack/echo/v4"
)

// AgentSource resolves the stored credential for an agent id.
type AgentSource interface {
	FindByID(ctx context.Context, id string) (*agent.Agent, error)
}

// Middleware rejects requests that do not carry a matching
// X-Agent-ID / X-API-Key pair for an active agent.
func Middleware(repo AgentSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			agentID := c.Request().Header.Get("X-Agent-ID")
			if agentID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing agent ID")
			}

			apiKey := c.Request().Header.Get("X-API-Key")
			if apiKey == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing API key")
			}

			found, err := repo.FindByID(c.Request().Context(), agentID)
			if err != nil || !found.IsActive {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication failed")
			}

			if subtle.ConstantTimeCompare([]byte(found.APIKey), []byte(apiKey)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication failed")
			}

			return next(c)
		}
	}
}
