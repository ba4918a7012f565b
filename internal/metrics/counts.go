package metrics

import "math"

// Counts holds the raw shot counts for one player, by zone. Dunks are a subset
// of rim shots. Values are float64 because sources are coerced numerics; they
// are expected to be non-negative integers but this is not enforced.
type Counts struct {
	RimMade   float64 `json:"RimMade"`
	RimMiss   float64 `json:"RimMiss"`
	RimAst    float64 `json:"RimAst"`
	MidMade   float64 `json:"MidMade"`
	MidMiss   float64 `json:"MidMiss"`
	MidAst    float64 `json:"MidAst"`
	ThreeMade float64 `json:"ThreeMade"`
	ThreeMiss float64 `json:"ThreeMiss"`
	ThreeAst  float64 `json:"ThreeAst"`
	DunkMade  float64 `json:"DunkMade"`
	DunkMiss  float64 `json:"DunkMiss"`
	DunkAst   float64 `json:"DunkAst"`
}

// Add returns the field-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		RimMade:   c.RimMade + o.RimMade,
		RimMiss:   c.RimMiss + o.RimMiss,
		RimAst:    c.RimAst + o.RimAst,
		MidMade:   c.MidMade + o.MidMade,
		MidMiss:   c.MidMiss + o.MidMiss,
		MidAst:    c.MidAst + o.MidAst,
		ThreeMade: c.ThreeMade + o.ThreeMade,
		ThreeMiss: c.ThreeMiss + o.ThreeMiss,
		ThreeAst:  c.ThreeAst + o.ThreeAst,
		DunkMade:  c.DunkMade + o.DunkMade,
		DunkMiss:  c.DunkMiss + o.DunkMiss,
		DunkAst:   c.DunkAst + o.DunkAst,
	}
}

// Sanitized replaces NaN and infinite counts with zero.
func (c Counts) Sanitized() Counts {
	fix := func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}
	return Counts{
		RimMade:   fix(c.RimMade),
		RimMiss:   fix(c.RimMiss),
		RimAst:    fix(c.RimAst),
		MidMade:   fix(c.MidMade),
		MidMiss:   fix(c.MidMiss),
		MidAst:    fix(c.MidAst),
		ThreeMade: fix(c.ThreeMade),
		ThreeMiss: fix(c.ThreeMiss),
		ThreeAst:  fix(c.ThreeAst),
		DunkMade:  fix(c.DunkMade),
		DunkMiss:  fix(c.DunkMiss),
		DunkAst:   fix(c.DunkAst),
	}
}
