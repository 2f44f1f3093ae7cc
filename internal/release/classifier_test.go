package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    Decision
	}{
		{"v1.2.3", Patch},
		{"v1.2.0", FullRebuild},
		{"v2.0.0", FullRebuild},
		{"v0.55.1", Patch},
		{"v0.55.10", Patch},
		{"v0.0.0", FullRebuild},
		{"v1", Patch},
		{"v0", FullRebuild},
		{"nightly-build", Malformed},
		{"1.2.3", Malformed},
		{"v1.2.3-rc1", Malformed},
		{"v1..2", Malformed},
		{"", Malformed},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.version))
		})
	}
}

func TestDecisionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "patch", Patch.String())
	assert.Equal(t, "full-rebuild", FullRebuild.String())
	assert.Equal(t, "malformed", Malformed.String())
}
