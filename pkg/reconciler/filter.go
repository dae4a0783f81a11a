package reconciler

import (
	"fmt"
	"strings"

	"github.com/shadeworks/fabricsync/pkg/catalog"
)

// IsEligible reports whether a supply row's second identity field is allowed
// for the group. Groups with no restriction entry accept everything. Matching
// is a case-insensitive substring test against each allowed value.
func IsEligible(field2 string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	needle := strings.ToLower(strings.TrimSpace(field2))
	for _, a := range allowed {
		if strings.Contains(needle, strings.ToLower(strings.TrimSpace(a))) {
			return true
		}
	}
	return false
}

// exclusions remembers supply rows a group rejected on material restriction,
// keyed by identity key, so deprecation can name the rejected material in
// its reason instead of claiming the row vanished from the catalog.
type exclusions map[catalog.Key]string

func (e exclusions) record(key catalog.Key, field2 string) {
	if _, ok := e[key]; !ok {
		e[key] = field2
	}
}

func (e exclusions) reason(key catalog.Key) (string, bool) {
	field2, ok := e[key]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Material type '%s' not allowed for this product group", field2), true
}
