package pbp

// Positions of the fields in one player row of a season export.
const (
	fieldID = iota
	fieldName
	fieldTeam
	fieldRimMade
	fieldRimMiss
	fieldRimAst
	fieldMidMade
	fieldMidMiss
	fieldMidAst
	fieldThreeMade
	fieldThreeMiss
	fieldThreeAst
	fieldDunkMade
	fieldDunkMiss
	fieldDunkAst

	// RowWidth is the minimum number of fields a row needs to be used.
	RowWidth
)

// DefaultPattern names season files; {year} is replaced by the season.
const DefaultPattern = "{year}_pbp_playerstat_array.json"
