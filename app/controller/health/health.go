// Package health reports whether the control plane can serve traffic. The
// probe is backed by a store ping: a control plane that cannot reach its
// database cannot register agents or accept submissions.
package health

import (
	"net/http"

	"trustplane/version"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

type StatusResponse struct {
	Ok      bool   `json:"ok"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) GET(c echo.Context) error {
	resp := StatusResponse{
		Ok:      true,
		Service: "trustplane",
		Version: version.Version,
	}

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		resp.Ok = false
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	return c.JSON(http.StatusOK, resp)
}

func Register(g *echo.Group, db *gorm.DB) {
	h := NewHandler(db)

	g.GET("/health", h.GET)
}
