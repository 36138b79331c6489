package hostfacts

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	facts, err := New().Collect(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, facts.MachineName)
	assert.NotContains(t, facts.MachineName, ".")
	assert.NotEmpty(t, facts.OperatingSystem)
	assert.NotNil(t, net.ParseIP(facts.IPAddress))
}

func TestSplitFQDN(t *testing.T) {
	t.Run("fully qualified name", func(t *testing.T) {
		name, domain := splitFQDN("dc01.corp.example")
		assert.Equal(t, "dc01", name)
		assert.Equal(t, "corp.example", domain)
	})

	t.Run("bare hostname", func(t *testing.T) {
		name, domain := splitFQDN("dc01")
		assert.Equal(t, "dc01", name)
		assert.Empty(t, domain)
	})
}
