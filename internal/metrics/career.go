package metrics

import "sort"

// SeasonRecord is one player's raw counts for a single season of data.
type SeasonRecord struct {
	Season int
	ID     string
	Name   string
	Team   string
	Counts Counts
}

// Key returns the record's normalized player key.
func (r SeasonRecord) Key() PlayerKey {
	return NewPlayerKey(r.Name)
}

// CareerRow is the per-player aggregate of every contributing SeasonRecord.
type CareerRow struct {
	Key         PlayerKey `json:"player_lower"`
	Player      string    `json:"Player"`
	Team        string    `json:"Team"`
	FirstSeason int       `json:"First_Season"`
	LastSeason  int       `json:"Last_Season"`
	Counts
	Derived

	Role     Text  `json:"Role"`
	Year     Text  `json:"Year"`
	Height   Ratio `json:"Height"`
	Position Text  `json:"Position"`
}

// Recompute refreshes the derived columns from the row's Counts.
func (r *CareerRow) Recompute() {
	r.Derived = Derive(r.Counts)
}

// Aggregate sums season records per normalized key and derives the ratio
// columns once over the career totals. The first record seen for a key
// supplies the display name and team. The result is sorted by key, so the
// output does not depend on record order apart from the display fields.
func Aggregate(records []SeasonRecord) []CareerRow {
	// Sort a copy by season so that "first seen" means earliest season,
	// keeping input order within a season.
	ordered := make([]SeasonRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Season < ordered[j].Season
	})

	byKey := make(map[PlayerKey]*CareerRow)
	for _, rec := range ordered {
		key := rec.Key()
		if key == "" {
			continue
		}

		row, ok := byKey[key]
		if !ok {
			byKey[key] = &CareerRow{
				Key:         key,
				Player:      rec.Name,
				Team:        rec.Team,
				FirstSeason: rec.Season,
				LastSeason:  rec.Season,
				Counts:      rec.Counts.Sanitized(),
			}
			continue
		}

		row.Counts = row.Counts.Add(rec.Counts.Sanitized())
		if rec.Season < row.FirstSeason {
			row.FirstSeason = rec.Season
		}
		if rec.Season > row.LastSeason {
			row.LastSeason = rec.Season
		}
	}

	rows := make([]CareerRow, 0, len(byKey))
	for _, row := range byKey {
		row.Recompute()
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Key < rows[j].Key
	})

	return rows
}

// Filter keeps only rows whose key is in include. A nil include keeps every row.
func Filter(rows []CareerRow, include map[PlayerKey]struct{}) []CareerRow {
	if include == nil {
		return rows
	}
	kept := make([]CareerRow, 0, len(rows))
	for _, row := range rows {
		if _, ok := include[row.Key]; ok {
			kept = append(kept, row)
		}
	}
	return kept
}
