package config

import (
	"github.com/labstack/echo/v4"

	"trustplane/app"
	"trustplane/app/controller/agents"
	"trustplane/app/controller/certificates"
	"trustplane/app/controller/errorreports"
	"trustplane/app/controller/health"
	"trustplane/app/controller/static"
	"trustplane/app/controller/submissions"
	"trustplane/app/middleware/agentauth"
)

// RouteOptions toggles cross-cutting behavior that depends on deployment
// configuration rather than on the handlers themselves.
type RouteOptions struct {
	// AgentAuth protects the submission and error-report groups with
	// per-agent credential checks.
	AgentAuth bool
}

func AddRoutes(e *echo.Echo, container *app.Container, opts RouteOptions) {
	root := e.Group("")
	static.Register(root)
	health.Register(root, container.DB)

	agentController := agents.NewHandler(container.Registry)
	agentController.RegisterRoutes(e.Group("/api/v1/agents"))

	certificateController := certificates.NewHandler(container.Authority)
	certificateController.RegisterRoutes(e.Group("/api/v1/certificates"))

	dataGroup := e.Group("/api/v1/data")
	errorGroup := e.Group("/api/v1/errors")
	if opts.AgentAuth {
		authenticated := agentauth.Middleware(container.AgentRepository)
		dataGroup.Use(authenticated)
		errorGroup.Use(authenticated)
	}

	submissionController := submissions.NewHandler(container.SubmissionProcessor)
	submissionController.RegisterRoutes(dataGroup)

	errorController := errorreports.NewHandler(container.ErrorAggregator)
	errorController.RegisterRoutes(errorGroup)
}
