package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	t.Parallel()

	cmd := Root()
	assert.Equal(t, "netforge", cmd.Use)
	assert.Empty(t, cmd.Commands(), "the CLI has no subcommands")
	require.NotNil(t, cmd.Args)
	assert.Error(t, cmd.Args(cmd, []string{"unexpected"}))
}
