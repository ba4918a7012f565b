package metrics

import "strings"

// PlayerKey is the normalized player identity used for every cross-source join.
//
// Two different players whose names normalize to the same key are merged. This
// is a known limitation of name-based identity and is not detected.
type PlayerKey string

// Normalizer turns a display name into a PlayerKey.
type Normalizer func(name string) PlayerKey

// DefaultNormalizer lowercases and trims the name.
var DefaultNormalizer Normalizer = func(name string) PlayerKey {
	return PlayerKey(strings.ToLower(strings.TrimSpace(name)))
}

// NewPlayerKey normalizes name with the DefaultNormalizer.
func NewPlayerKey(name string) PlayerKey {
	return DefaultNormalizer(name)
}

func (k PlayerKey) String() string {
	return string(k)
}
