package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap_ConfigurationErrorBeforeAnyMutation(t *testing.T) {
	// No NF_* variables set: the handler must fail pre-flight, before
	// touching the platform.
	t.Setenv("NF_IMAGE", "")

	err := Bootstrap(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}
