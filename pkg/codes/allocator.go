// Package codes allocates stable identifiers for new target-catalog records.
// The allocator is injectable so callers can substitute deterministic
// implementations in tests.
package codes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultStart is the first numeric suffix used when a group has no
	// existing codes.
	DefaultStart = 10000

	// maxCodeLength caps allocated codes; the target store truncates longer
	// identifiers.
	maxCodeLength = 20
)

// Allocator generates the next unused identifier for a group. The existing
// set is caller-owned and scoped to one reconciliation run; callers must add
// each allocated code back to the set before the next call so that multiple
// additions in the same group never collide.
type Allocator interface {
	Next(existing map[string]struct{}, prefix string) string
}

// Sequential allocates codes of the form prefix+N where N continues the
// highest numeric suffix found among the existing codes.
type Sequential struct {
	// Start is the first numeric suffix for an empty group. Zero means
	// DefaultStart.
	Start int
}

// NewSequential returns a Sequential allocator starting at DefaultStart.
func NewSequential() *Sequential {
	return &Sequential{Start: DefaultStart}
}

// Next scans existing codes matching prefix+digits (case-insensitive), takes
// the maximum numeric suffix, and returns prefix with the next number,
// truncated to the maximum code length.
func (s *Sequential) Next(existing map[string]struct{}, prefix string) string {
	start := s.Start
	if start == 0 {
		start = DefaultStart
	}

	pattern := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix) + `(\d+)$`)
	maxNum := start - 1

	for code := range existing {
		m := pattern.FindStringSubmatch(strings.TrimSpace(code))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxNum {
			maxNum = n
		}
	}

	code := fmt.Sprintf("%s%d", prefix, maxNum+1)
	if len(code) > maxCodeLength {
		code = code[:maxCodeLength]
	}
	return code
}
