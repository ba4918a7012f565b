package pbp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

// ParseSeason decodes a season export: a JSON array of positional player
// rows. Rows with fewer than RowWidth fields are skipped, and so are rows
// whose player name is null or blank. It returns the parsed records and the
// number of skipped rows.
func ParseSeason(season int, data []byte) ([]metrics.SeasonRecord, int, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("decoding season %d: %w", season, err)
	}

	records := make([]metrics.SeasonRecord, 0, len(rows))
	skipped := 0
	for _, raw := range rows {
		var fields []json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || len(fields) < RowWidth {
			skipped++
			continue
		}

		name := text(fields[fieldName])
		if strings.TrimSpace(name) == "" {
			skipped++
			continue
		}

		records = append(records, metrics.SeasonRecord{
			Season: season,
			ID:     text(fields[fieldID]),
			Name:   name,
			Team:   text(fields[fieldTeam]),
			Counts: metrics.Counts{
				RimMade:   number(fields[fieldRimMade]),
				RimMiss:   number(fields[fieldRimMiss]),
				RimAst:    number(fields[fieldRimAst]),
				MidMade:   number(fields[fieldMidMade]),
				MidMiss:   number(fields[fieldMidMiss]),
				MidAst:    number(fields[fieldMidAst]),
				ThreeMade: number(fields[fieldThreeMade]),
				ThreeMiss: number(fields[fieldThreeMiss]),
				ThreeAst:  number(fields[fieldThreeAst]),
				DunkMade:  number(fields[fieldDunkMade]),
				DunkMiss:  number(fields[fieldDunkMiss]),
				DunkAst:   number(fields[fieldDunkAst]),
			},
		})
	}

	return records, skipped, nil
}

// number coerces a JSON number or numeric string; anything else is 0.
func number(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return 0
}

// text reads a JSON string or number as a string.
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
