// Package submissions exposes the data ingestion route and a read-only
// listing over past submissions.
package submissions

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	processor "trustplane/app/service/submission"
	"trustplane/domain/agent"
	"trustplane/domain/submission"

	"github.com/labstack/echo/v4"
)

type (
	Handler struct {
		processor processor.Service
	}

	SubmitRequest struct {
		AgentID     string          `json:"agent_id" validate:"required"`
		DataType    string          `json:"data_type" validate:"required"`
		RecordCount int             `json:"record_count"`
		Data        json.RawMessage `json:"data"`
		DataHash    string          `json:"data_hash"`
		Metadata    string          `json:"metadata"`
	}

	SubmitResponse struct {
		SubmissionID string     `json:"submission_id"`
		Success      bool       `json:"success"`
		Message      string     `json:"message"`
		ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	}
)

func NewHandler(svc processor.Service) *Handler {
	return &Handler{processor: svc}
}

// Submit ingests one payload. A processing failure still answers 200:
// the submission row exists and carries the failure, which is what the
// agent needs for its retry bookkeeping.
func (h *Handler) Submit(c echo.Context) error {
	var req SubmitRequest
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

	result, err := h.processor.Submit(c.Request().Context(), processor.SubmitRequest{
		AgentID:     req.AgentID,
		DataType:    submission.DataType(req.DataType),
		RecordCount: req.RecordCount,
		Data:        req.Data,
		DataHash:    req.DataHash,
		Metadata:    req.Metadata,
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

	sub := result.Submission
	resp := SubmitResponse{
		SubmissionID: sub.ID,
		Success:      sub.Status == submission.StatusCompleted,
		ProcessedAt:  sub.ProcessedAt,
	}
	if resp.Success {
		resp.Message = "Submission processed"
	} else {
		resp.Message = sub.ErrorDetails
	}
	return c.JSON(http.StatusOK, resp)
}

// List returns past submissions, optionally filtered by agent, status
// and data type.
func (h *Handler) List(c echo.Context) error {
	var filters submission.Filters

	if agentID := c.QueryParam("agent_id"); agentID != "" {
		filters.AgentID = &agentID
	}
	if status := c.QueryParam("status"); status != "" {
		s := submission.Status(status)
		filters.Status = &s
	}
	if dataType := c.QueryParam("data_type"); dataType != "" {
		dt := submission.DataType(dataType)
		filters.DataType = &dt
	}

	subs, err := h.processor.List(c.Request().Context(), filters)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch submissions: " + err.Error(),
		})
	}

	return c.JSON(http.StatusOK, subs)
}

// RegisterRoutes registers the data-plane routes.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/submit", h.Submit)
	g.GET("/submissions", h.List)
}
