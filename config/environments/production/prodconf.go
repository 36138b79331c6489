// Package production contains production configuration of the app
package production

import (
	"os"
	"strings"

	"trustplane/config"
)

type prodconf struct{}

func New() config.AppConfiger {
	return prodconf{}
}

func (pc prodconf) GetPort() string {
	appPort := os.Getenv("TP_APP_PORT")
	if strings.TrimSpace(appPort) == "" {
		appPort = "8080"
	}
	return appPort
}

func (pc prodconf) GetDBURL() string {
	dbURL := os.Getenv("TP_DB_URL")
	if strings.TrimSpace(dbURL) == "" {
		dbURL = "/var/lib/trustplane/storage/trustplane.db"
	}
	return dbURL
}

func (pc prodconf) GetControlPlaneURL() string {
	cpURL := os.Getenv("TP_CONTROL_PLANE_URL")
	if strings.TrimSpace(cpURL) == "" {
		cpURL = "https://trustplane.corp.internal"
	}
	return cpURL
}
