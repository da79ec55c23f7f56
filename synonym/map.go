package synonym

import (
	"crypto/sha256"
	"encoding/hex"
)

// Map is an immutable compiled synonym map. Lookup keys and expansion terms
// are case-folded at compile time; callers must not mutate returned slices.
type Map struct {
	entries     map[string][]string
	rules       int
	fingerprint string
}

var emptyMap = &Map{entries: map[string][]string{}}

// Empty returns the shared empty map. It is served before the first
// successful compile so filters never observe a nil map.
func Empty() *Map {
	return emptyMap
}

// Lookup returns the expansion terms for a term, or nil if the term has no
// synonyms. The original term is never included in its own expansions.
func (m *Map) Lookup(term string) []string {
	return m.entries[term]
}

// Rules returns the number of effective rule lines compiled into the map
func (m *Map) Rules() int {
	return m.rules
}

// Terms returns the number of distinct lookup terms in the map
func (m *Map) Terms() int {
	return len(m.entries)
}

// Fingerprint returns a short content hash of the rule text this map was
// compiled from, for change logging.
func (m *Map) Fingerprint() string {
	return m.fingerprint
}

func fingerprint(text []byte) string {
	sum := sha256.Sum256(text)
	return hex.EncodeToString(sum[:6])
}
