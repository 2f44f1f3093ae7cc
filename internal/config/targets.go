package config

import (
	"fmt"
	"strings"
)

// ValuesOverlay maps a release target name to its values overlay file.
// The recognized patterns are fixed: the long-lived "testnet" target, the
// per-release preview targets ("testnet-<anything>"), and throwaway
// devnets ("devnet<anything>"). Any other name is a configuration error.
func ValuesOverlay(target string) (string, error) {
	switch {
	case target == "testnet":
		return "testnet.yml", nil
	case strings.HasPrefix(target, "testnet-"):
		return "testnet-preview.yml", nil
	case strings.HasPrefix(target, "devnet"):
		return "devnet.yml", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTarget, target)
	}
}
