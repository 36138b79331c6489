// Package development contains development configuration of the app
package development

import (
	"fmt"
	"os"
	"strings"

	"trustplane/config"
)

type devconf struct{}

func New() config.AppConfiger {
	return devconf{}
}

func (dc devconf) GetPort() string {
	appPort := os.Getenv("TP_APP_PORT")
	if strings.TrimSpace(appPort) == "" {
		appPort = "8080"
	}
	return appPort
}

func (dc devconf) getHost() string {
	host := os.Getenv("TP_API_SERVER_HOST")
	if strings.TrimSpace(host) == "" {
		host = "localhost"
	}
	return host
}

func (dc devconf) GetDBURL() string {
	dbURL := os.Getenv("TP_DB_URL")
	if strings.TrimSpace(dbURL) == "" {
		dbURL = "file:trustplane.db"
	}
	return dbURL
}

func (dc devconf) GetControlPlaneURL() string {
	cpURL := os.Getenv("TP_CONTROL_PLANE_URL")
	if strings.TrimSpace(cpURL) == "" {
		cpURL = fmt.Sprintf("http://%s:%s", dc.getHost(), dc.GetPort())
	}
	return cpURL
}
