package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Depth limits.
const (
	MinDepth     = 1
	MaxDepth     = 20
	DefaultDepth = 3
)

var (
	// ErrDepthRange is returned for a numeric depth outside MinDepth..MaxDepth.
	ErrDepthRange = errors.New("max depth should be between 1 and 20")
	// ErrDepthInvalid is returned for a depth that is not an integer.
	ErrDepthInvalid = errors.New("invalid max depth")
)

// DepthInRange reports whether d is an accepted max depth.
func DepthInRange(d int) bool {
	return d >= MinDepth && d <= MaxDepth
}

// ParseDepth parses a --depth value. On error the returned depth is
// DefaultDepth, which callers use after printing a warning.
func ParseDepth(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultDepth, fmt.Errorf("%w %q", ErrDepthInvalid, s)
	}
	if !DepthInRange(n) {
		return DefaultDepth, fmt.Errorf("%w: %d", ErrDepthRange, n)
	}
	return n, nil
}

// DepthWarning renders the user-facing warning for a ParseDepth error.
func DepthWarning(raw string, err error) string {
	if errors.Is(err, ErrDepthRange) {
		return fmt.Sprintf("Warning: Max depth should be between %d and %d. Using default value of %d.",
			MinDepth, MaxDepth, DefaultDepth)
	}
	return fmt.Sprintf("Warning: Invalid max depth '%s'. Using default value of %d.", raw, DefaultDepth)
}
