package metrics

// Lookup supplies one attribute (such as Role or class Year) for a player key.
type Lookup interface {
	Name() string
	Lookup(key PlayerKey) (string, bool)
}

// MapLookup is a Lookup backed by a map.
type MapLookup struct {
	Source string
	Values map[PlayerKey]string
}

// Name returns the source name.
func (m MapLookup) Name() string {
	return m.Source
}

// Lookup returns the value for key. Empty values count as missing.
func (m MapLookup) Lookup(key PlayerKey) (string, bool) {
	v, ok := m.Values[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Chain is an ordered list of lookups, highest priority first.
type Chain []Lookup

// Resolve returns the first non-missing value in priority order.
func (c Chain) Resolve(key PlayerKey) (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if v, ok := l.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// ResolveAttributes fills Role and Year on each row from the given chains.
// Values already present on a row are kept.
func ResolveAttributes(rows []CareerRow, roles, years Chain) {
	for i := range rows {
		row := &rows[i]
		if !row.Role.Valid {
			if v, ok := roles.Resolve(row.Key); ok {
				row.Role = TextOf(v)
			}
		}
		if !row.Year.Valid {
			if v, ok := years.Resolve(row.Key); ok {
				row.Year = TextOf(v)
			}
		}
	}
}
