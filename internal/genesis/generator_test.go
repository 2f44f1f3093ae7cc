package genesis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandGenerator_MissingBinaryIsUnavailable(t *testing.T) {
	t.Parallel()

	g := &CommandGenerator{Binary: filepath.Join(t.TempDir(), "chaind-missing")}
	err := g.Generate(context.Background(), "validator-set.yml", t.TempDir(), false)

	require.ErrorIs(t, err, ErrGeneratorUnavailable)

	var genErr *GeneratorError
	assert.False(t, errors.As(err, &genErr), "spawn failure must not be a GeneratorError")
}

func TestCommandGenerator_NonZeroExitIsGeneratorError(t *testing.T) {
	t.Parallel()

	script := filepath.Join(t.TempDir(), "chaind-broken")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho boom >&2\nexit 3\n"), 0o755))

	g := &CommandGenerator{Binary: script}
	err := g.Generate(context.Background(), "validator-set.yml", t.TempDir(), false)

	var genErr *GeneratorError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Stderr, "boom")
	assert.NotErrorIs(t, err, ErrGeneratorUnavailable)
}
