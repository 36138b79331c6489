// Package errorreports exposes the agent error ingestion route and
// read-only listings over deduplicated errors and batch envelopes.
package errorreports

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"trustplane/app/service/erroraggregator"
	"trustplane/domain/agent"

	"github.com/labstack/echo/v4"
)

type (
	Handler struct {
		aggregator erroraggregator.Service
	}

	ReportRequest struct {
		AgentID    string      `json:"agent_id" validate:"required"`
		ReportedAt *time.Time  `json:"reported_at,omitempty"`
		Errors     []ErrorItem `json:"errors"`
	}

	ErrorItem struct {
		ErrorID         string     `json:"error_id"`
		Severity        string     `json:"severity"`
		Category        string     `json:"category"`
		Source          string     `json:"source"`
		Message         string     `json:"message"`
		StackTrace      string     `json:"stack_trace"`
		AdditionalData  string     `json:"additional_data"`
		OccurredAt      *time.Time `json:"occurred_at,omitempty"`
		OccurrenceCount int        `json:"occurrence_count"`
		FirstOccurrence *time.Time `json:"first_occurrence,omitempty"`
		LastOccurrence  *time.Time `json:"last_occurrence,omitempty"`
	}

	ReportResponse struct {
		Success             bool      `json:"success"`
		Message             string    `json:"message"`
		ProcessedErrorCount int       `json:"processed_error_count"`
		NewErrorCount       int       `json:"new_error_count"`
		DuplicateErrorCount int       `json:"duplicate_error_count"`
		ProcessedAt         time.Time `json:"processed_at"`
	}
)

func NewHandler(svc erroraggregator.Service) *Handler {
	return &Handler{aggregator: svc}
}

// Report ingests a batch of agent errors. Bad items are counted rather
// than rejected up front so one malformed record cannot block the rest
// of the batch.
func (h *Handler) Report(c echo.Context) error {
	var req ReportRequest
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

	svcReq := erroraggregator.ReportRequest{AgentID: req.AgentID}
	if req.ReportedAt != nil {
		svcReq.ReportedAt = *req.ReportedAt
	}
	for _, item := range req.Errors {
		svcItem := erroraggregator.ErrorItem{
			ErrorID:         item.ErrorID,
			Severity:        item.Severity,
			Category:        item.Category,
			Source:          item.Source,
			Message:         item.Message,
			StackTrace:      item.StackTrace,
			AdditionalData:  item.AdditionalData,
			OccurrenceCount: item.OccurrenceCount,
		}
		if item.OccurredAt != nil {
			svcItem.OccurredAt = *item.OccurredAt
		}
		if item.FirstOccurrence != nil {
			svcItem.FirstOccurrence = *item.FirstOccurrence
		}
		if item.LastOccurrence != nil {
			svcItem.LastOccurrence = *item.LastOccurrence
		}
		svcReq.Errors = append(svcReq.Errors, svcItem)
	}

	result, err := h.aggregator.Report(c.Request().Context(), svcReq)
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

	resp := ReportResponse{
		Success:             result.FailedCount == 0,
		ProcessedErrorCount: result.Report.ProcessedErrorCount,
		NewErrorCount:       result.Report.NewErrorCount,
		DuplicateErrorCount: result.Report.DuplicateErrorCount,
		ProcessedAt:         result.ProcessedAt,
	}
	if resp.Success {
		resp.Message = "Error report processed"
	} else {
		resp.Message = fmt.Sprintf("%d error items failed", result.FailedCount)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListErrors returns the deduplicated errors for one agent, most recent
// occurrence first.
func (h *Handler) ListErrors(c echo.Context) error {
	agentID := c.QueryParam("agent_id")
	if agentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "agent_id query parameter is required",
		})
	}

	rows, err := h.aggregator.ListErrors(c.Request().Context(), agentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch errors: " + err.Error(),
		})
	}

	return c.JSON(http.StatusOK, rows)
}

// ListReports returns the audit envelopes for one agent, newest first.
func (h *Handler) ListReports(c echo.Context) error {
	agentID := c.QueryParam("agent_id")
	if agentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "agent_id query parameter is required",
		})
	}

	reports, err := h.aggregator.ListReports(c.Request().Context(), agentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch reports: " + err.Error(),
		})
	}

	return c.JSON(http.StatusOK, reports)
}

// RegisterRoutes registers the error ingestion and listing routes.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/report", h.Report)
	g.GET("", h.ListErrors)
	g.GET("/reports", h.ListReports)
}
