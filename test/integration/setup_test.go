//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"trustplane/app"
	agentController "trustplane/app/controller/agents"
	"trustplane/config"
	"trustplane/internal/validator"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	echo      *echo.Echo
	container *app.Container
}

// setupTestEnv builds the full HTTP stack on a named shared-cache memory
// database so every pooled connection sees the same schema.
func setupTestEnv(t *testing.T, opts config.RouteOptions) *testEnv {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "failed to open test DB")

	container := app.NewContainer(db)
	require.NoError(t, container.Migrate(), "failed to run migrations")

	e := echo.New()
	e.Validator = validator.New()
	e.Use(middleware.Recover())
	config.AddRoutes(e, container, opts)

	return &testEnv{echo: e, container: container}
}

func (env *testEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) getPath(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

// registerTestAgent runs a registration round trip and returns the issued
// identity for use in subsequent requests.
func registerTestAgent(t *testing.T, env *testEnv, machineName, agentType string) agentController.RegistrationResponse {
	t.Helper()

	rec := env.postJSON(t, "/api/v1/agents/register", map[string]any{
		"name":         machineName + " agent",
		"type":         agentType,
		"machine_name": machineName,
		"version":      "1.0.0",
	})
	require.Equal(t, http.StatusOK, rec.Code, "registration failed: %s", rec.Body.String())

	var resp agentController.RegistrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AgentID)
	return resp
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}
