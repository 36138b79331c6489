// Package agents exposes agent registration, heartbeat and lifecycle routes.
package agents

import (
	"errors"
	"net/http"

	"trustplane/app/service/registry"
	"trustplane/domain/agent"

	"github.com/labstack/echo/v4"
)

type (
	Handler struct {
		registry registry.Service
	}

	// RegistrationRequest is the payload an agent sends on startup.
	RegistrationRequest struct {
		Name            string `json:"name" validate:"required"`
		Type            string `json:"type" validate:"required"`
		Version         string `json:"version"`
		MachineName     string `json:"machine_name" validate:"required"`
		IPAddress       string `json:"ip_address"`
		Domain          string `json:"domain"`
		OperatingSystem string `json:"os"`
		Configuration   string `json:"configuration,omitempty"`
	}

	RegistrationResponse struct {
		AgentID       string                    `json:"agent_id"`
		Success       bool                      `json:"success"`
		Message       string                    `json:"message"`
		APIKey        string                    `json:"api_key"`
		Configuration registry.CollectionConfig `json:"configuration"`
	}

	HeartbeatRequest struct {
		AgentID       string `json:"agent_id" validate:"required"`
		Status        string `json:"status"`
		StatusMessage string `json:"status_message"`
	}

	HeartbeatResponse struct {
		Success         bool   `json:"success"`
		Message         string `json:"message"`
		UpdateAvailable bool   `json:"update_available"`
	}

	DeactivateResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
)

func NewHandler(svc registry.Service) *Handler {
	return &Handler{registry: svc}
}

// Register handles agent registration; re-registering a known machine
// refreshes it instead of failing.
func (h *Handler) Register(c echo.Context) error {
	var req RegistrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request format: " + err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Validation failed: " + err.Error(),
		})
	}

	agentType, err := agent.ParseType(req.Type)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid agent type: " + req.Type,
		})
	}

	result, err := h.registry.Register(c.Request().Context(), registry.RegistrationRequest{
		Name:            req.Name,
		Type:            agentType,
		Version:         req.Version,
		MachineName:     req.MachineName,
		IPAddress:       req.IPAddress,
		Domain:          req.Domain,
		OperatingSystem: req.OperatingSystem,
		Configuration:   req.Configuration,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, RegistrationResponse{
		AgentID:       result.Agent.ID,
		Success:       true,
		Message:       registrationMessage(result.IsNew),
		APIKey:        result.APIKey,
		Configuration: result.Configuration,
	})
}

func (h *Handler) Heartbeat(c echo.Context) error {
	var req HeartbeatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request format: " + err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Validation failed: " + err.Error(),
		})
	}

	result, err := h.registry.Heartbeat(c.Request().Context(), registry.HeartbeatRequest{
		AgentID:       req.AgentID,
		Status:        req.Status,
		StatusMessage: req.StatusMessage,
	})
	if err != nil {
		if errors.Is(err, agent.ErrAgentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Agent not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, HeartbeatResponse{
		Success:         true,
		Message:         "Heartbeat received",
		UpdateAvailable: result.UpdateAvailable,
	})
}

// List returns all active agents, optionally filtered by type and
// online state.
func (h *Handler) List(c echo.Context) error {
	var filters agent.Filters

	if typeParam := c.QueryParam("type"); typeParam != "" {
		agentType, err := agent.ParseType(typeParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid agent type: " + typeParam,
			})
		}
		filters.Type = &agentType
	}

	if onlineParam := c.QueryParam("online"); onlineParam != "" {
		online := onlineParam == "true"
		filters.IsOnline = &online
	}

	agents, err := h.registry.List(c.Request().Context(), filters)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch agents: " + err.Error(),
		})
	}

	return c.JSON(http.StatusOK, agents)
}

// Show returns details of a single active agent.
func (h *Handler) Show(c echo.Context) error {
	found, err := h.registry.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, agent.ErrAgentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Agent not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, found)
}

func (h *Handler) Deactivate(c echo.Context) error {
	err := h.registry.Deactivate(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, agent.ErrAgentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Agent not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, DeactivateResponse{
		Success: true,
		Message: "Agent deactivated",
	})
}

func registrationMessage(isNew bool) string {
	if isNew {
		return "Agent successfully registered"
	}
	return "Agent successfully re-registered"
}

// RegisterRoutes registers all agent-related routes.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/heartbeat", h.Heartbeat)
	g.GET("", h.List)
	g.GET("/:id", h.Show)
	g.POST("/:id/deactivate", h.Deactivate)
}
