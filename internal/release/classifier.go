// Package release classifies version tokens into deployment strategies.
//
// A patch release bumps only the last component of a semantic version
// (v1.2.3 -> v1.2.4) and is assumed not to change network topology, so it
// is eligible for an in-place image update. Anything else forces a full
// network rebuild.
package release

import (
	"regexp"
	"strings"
)

// Decision is the outcome of classifying a version token.
type Decision int

const (
	// FullRebuild means the network must be torn down and bootstrapped
	// from a fresh genesis.
	FullRebuild Decision = iota

	// Patch means the running network can take the new image in place.
	Patch

	// Malformed means the version token did not parse. Callers treat
	// this the same as FullRebuild: never skip a needed rebuild because
	// of an unparsable version.
	Malformed
)

// String returns the decision name for log output.
func (d Decision) String() string {
	switch d {
	case FullRebuild:
		return "full-rebuild"
	case Patch:
		return "patch"
	case Malformed:
		return "malformed"
	}
	return "unknown"
}

// versionPattern matches a leading marker character followed by
// dot-separated non-negative integers, e.g. v1.2.3 or v0.55.0.
var versionPattern = regexp.MustCompile(`^v\d+(\.\d+)*$`)

// Classify inspects the final dot-separated component of a semantic
// version token. A trailing zero is treated as a minor or major bump,
// which may have changed topology, so it forces a rebuild. Note that
// this rule is deliberately lexical: v2.0.0 rebuilds because it ends in
// 0, not because the major version changed.
func Classify(version string) Decision {
	if !versionPattern.MatchString(version) {
		return Malformed
	}

	parts := strings.Split(strings.TrimPrefix(version, "v"), ".")
	last := parts[len(parts)-1]
	if strings.Trim(last, "0") == "" {
		return FullRebuild
	}
	return Patch
}
