package genesis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// stderrTailLimit bounds how much generator stderr is carried into the
// error message.
const stderrTailLimit = 2048

// ErrGeneratorUnavailable means the generator binary could not be
// started at all. The placeholder descriptors remain in the workspace
// and the deployment carries inert identities; callers treat this as a
// degraded mode, not a failure.
var ErrGeneratorUnavailable = errors.New("genesis generator unavailable")

// CommandGenerator invokes the genesis generator binary as a subprocess.
type CommandGenerator struct {
	// Binary is the generator executable, resolved through PATH.
	Binary string
}

// Generate runs the generator against the validator-set document.
// Failure is communicated via the process exit status. A binary that
// cannot be started at all yields ErrGeneratorUnavailable instead of a
// GeneratorError.
func (g *CommandGenerator) Generate(ctx context.Context, validatorSetPath, outputDir string, preserveChainID bool) error {
	args := []string{"generate", "--validators-input-file", validatorSetPath, "--output-dir", outputDir}
	if preserveChainID {
		args = append(args, "--preserve-chain-id")
	}

	cmd := exec.CommandContext(ctx, g.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &GeneratorError{Err: err, Stderr: stderrTail(stderr.String())}
		}
		return fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	return nil
}

func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTailLimit {
		s = s[len(s)-stderrTailLimit:]
	}
	return s
}
