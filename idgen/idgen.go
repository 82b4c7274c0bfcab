// CLAUDE:SUMMARY Run identifiers: prefixed, time-sortable UUIDv7 strings, plus parsing back to the UUID.
// Package idgen generates and validates run identifiers.
package idgen

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RunPrefix marks imgwidths run identifiers.
const RunPrefix = "run_"

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator of RFC 9562 UUID v7 strings. They sort by
// creation time, which keeps run listings stable.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Run is the default run ID generator: "run_" + UUIDv7.
var Run Generator = Prefixed(RunPrefix, UUIDv7())

// ParseRun validates a run ID and returns its UUID part.
func ParseRun(id string) (uuid.UUID, error) {
	rest, ok := strings.CutPrefix(id, RunPrefix)
	if !ok {
		return uuid.Nil, fmt.Errorf("idgen: %q: missing %q prefix", id, RunPrefix)
	}
	u, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, fmt.Errorf("idgen: %q: %w", id, err)
	}
	return u, nil
}
