package query

import (
	"encoding/json"
	"fmt"
)

// Key identifies one logical request as an ordered tuple of primitive values,
// e.g. Key{"cards", "search", "pikachu", 2}.
type Key []any

// String is the canonical form used for cache lookup and request coalescing.
// Element types matter: Key{"a", 1} and Key{"a", "1"} differ.
func (k Key) String() string {
	b, err := json.Marshal([]any(k))
	if err != nil {
		return fmt.Sprintf("%#v", []any(k))
	}
	return string(b)
}

// HasPrefix reports whether k starts with every element of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	return k[:len(prefix)].String() == prefix.String()
}
