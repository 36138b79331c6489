package appconf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAgentAuthEnabled_DefaultFalse(t *testing.T) {
	t.Setenv("TP_AGENT_AUTH", "")
	assert.False(t, AgentAuthEnabled())
}

func TestAgentAuthEnabled_ExplicitTrue(t *testing.T) {
	t.Setenv("TP_AGENT_AUTH", "true")
	assert.True(t, AgentAuthEnabled())
}

func TestAgentAuthEnabled_ExplicitFalse(t *testing.T) {
	t.Setenv("TP_AGENT_AUTH", "false")
	assert.False(t, AgentAuthEnabled())
}

func TestAgentAuthEnabled_InvalidFallsToDefault(t *testing.T) {
	t.Setenv("TP_AGENT_AUTH", "garbage")
	assert.False(t, AgentAuthEnabled())
}

func TestHeartbeatInterval_Default1m(t *testing.T) {
	t.Setenv("TP_HEARTBEAT_INTERVAL", "")
	assert.Equal(t, time.Minute, HeartbeatInterval())
}

func TestHeartbeatInterval_CustomValue(t *testing.T) {
	t.Setenv("TP_HEARTBEAT_INTERVAL", "30s")
	assert.Equal(t, 30*time.Second, HeartbeatInterval())
}

func TestHeartbeatInterval_ClampedToMin(t *testing.T) {
	t.Setenv("TP_HEARTBEAT_INTERVAL", "1s")
	assert.Equal(t, 10*time.Second, HeartbeatInterval())
}

func TestHeartbeatInterval_InvalidFallsToDefault(t *testing.T) {
	t.Setenv("TP_HEARTBEAT_INTERVAL", "soon")
	assert.Equal(t, time.Minute, HeartbeatInterval())
}

func TestAgentStatePath_Default(t *testing.T) {
	t.Setenv("TP_AGENT_STATE_PATH", "")
	assert.Equal(t, "/var/lib/trustplane", AgentStatePath())
}

func TestAgentStatePath_Override(t *testing.T) {
	t.Setenv("TP_AGENT_STATE_PATH", "/tmp/tp-state")
	assert.Equal(t, "/tmp/tp-state", AgentStatePath())
}
