// Package appconf contains app related configurations
package appconf

import (
	"os"
	"strconv"
	"time"

	"trustplane/config"
	devconf "trustplane/config/environments/development"
	prodconf "trustplane/config/environments/production"
)

const minHeartbeatInterval = 10 * time.Second

var appconf config.AppConfiger

func Port() string {
	return appconf.GetPort()
}

func DBURL() string {
	return appconf.GetDBURL()
}

func ControlPlaneURL() string {
	return appconf.GetControlPlaneURL()
}

// AgentAuthEnabled gates the API-key middleware on the data-plane routes.
// Off by default so a fresh deployment can onboard its first agents before
// turning enforcement on.
func AgentAuthEnabled() bool {
	raw := os.Getenv("TP_AGENT_AUTH")
	if raw == "" {
		return false
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return enabled
}

func AgentStatePath() string {
	if path := os.Getenv("TP_AGENT_STATE_PATH"); path != "" {
		return path
	}
	return "/var/lib/trustplane"
}

func AgentConfigPath() string {
	if path := os.Getenv("TP_AGENT_CONFIG_PATH"); path != "" {
		return path
	}
	return "/etc/trustplane/agent.yaml"
}

// HeartbeatInterval is how often the agent pings the control plane.
// Clamped so a typo cannot hammer the server.
func HeartbeatInterval() time.Duration {
	raw := os.Getenv("TP_HEARTBEAT_INTERVAL")
	if raw == "" {
		return time.Minute
	}
	interval, err := time.ParseDuration(raw)
	if err != nil {
		return time.Minute
	}
	if interval < minHeartbeatInterval {
		return minHeartbeatInterval
	}
	return interval
}

func init() {
	env := os.Getenv("APP_ENV")

	switch env {
	case "production":
		appconf = prodconf.New()
	case "development":
		appconf = devconf.New()
	default:
		appconf = devconf.New()
	}
}
