package metrics

import "math"

// Derived holds every column computed from a player's Counts. Ratio fields
// are missing whenever their denominator is zero.
type Derived struct {
	NDRimMade float64 `json:"ND_RimMade"`
	NDRimMiss float64 `json:"ND_RimMiss"`
	NDRimAtt  float64 `json:"ND_RimAtt"`
	RimAtt    float64 `json:"RimAtt"`
	MidAtt    float64 `json:"Mid_Att"`
	TwoPtAtt  float64 `json:"TwoPt_Att"`
	ThreeAtt  float64 `json:"Three_Att"`
	TotalAtt  float64 `json:"Total_Att"`
	DunkAtt   float64 `json:"DunkAtt"`

	NonDunkRimPct      Ratio `json:"NonDunk_Rim%"`
	NonDunkAssistedPct Ratio `json:"NonDunk_Assisted%"`
	TotalRimPct        Ratio `json:"Total_Rim%"`
	TotalAssistedRim   Ratio `json:"Total_Assisted_Rim%"`
	MidFGPct           Ratio `json:"Mid_FG%"`
	MidAssistedPct     Ratio `json:"Mid_Assisted%"`
	TwoPtFGPct         Ratio `json:"TwoPt_FG%"`
	TwoPtAssistedPct   Ratio `json:"TwoPt_Assisted%"`
	ThreeFGPct         Ratio `json:"Three_FG%"`
	ThreeAssistedPct   Ratio `json:"Three_Assisted%"`
	TotalAssistedPct   Ratio `json:"Total_Assisted%"`
	RimFreq            Ratio `json:"Rim_Freq"`
	MidFreq            Ratio `json:"Mid_Freq"`
	ThreeFreq          Ratio `json:"Three_Freq"`
	TwoPtFreq          Ratio `json:"TwoPt_Freq"`
	DunkFreq           Ratio `json:"Dunk_Freq"`
	DunkFGPct          Ratio `json:"Dunk_FG%"`
}

// Derive computes the derived shooting columns from career totals.
//
// Assisted counts larger than made counts are passed through unchanged and can
// produce assisted percentages above 1.
func Derive(c Counts) Derived {
	c = c.Sanitized()

	var d Derived

	d.NDRimMade = math.Max(c.RimMade-c.DunkMade, 0)
	d.NDRimMiss = math.Max(c.RimMiss-c.DunkMiss, 0)
	d.NDRimAtt = d.NDRimMade + d.NDRimMiss
	d.NonDunkRimPct = Div(d.NDRimMade, d.NDRimAtt)
	d.NonDunkAssistedPct = Div(math.Max(c.RimAst-c.DunkAst, 0), d.NDRimMade)

	d.RimAtt = c.RimMade + c.RimMiss
	d.TotalRimPct = Div(c.RimMade, d.RimAtt)
	d.TotalAssistedRim = Div(c.RimAst, c.RimMade)

	d.MidAtt = c.MidMade + c.MidMiss
	d.MidFGPct = Div(c.MidMade, d.MidAtt)
	d.MidAssistedPct = Div(c.MidAst, c.MidMade)

	d.TwoPtAtt = c.RimMade + c.RimMiss + c.MidMade + c.MidMiss
	d.TwoPtFGPct = Div(c.RimMade+c.MidMade, d.TwoPtAtt)
	d.TwoPtAssistedPct = Div(c.RimAst+c.MidAst, c.RimMade+c.MidMade)

	d.ThreeAtt = c.ThreeMade + c.ThreeMiss
	d.ThreeFGPct = Div(c.ThreeMade, d.ThreeAtt)
	d.ThreeAssistedPct = Div(c.ThreeAst, c.ThreeMade)

	d.TotalAssistedPct = Div(c.RimAst+c.MidAst+c.ThreeAst, c.RimMade+c.MidMade+c.ThreeMade)

	d.TotalAtt = d.RimAtt + d.MidAtt + d.ThreeAtt
	d.RimFreq = Div(d.RimAtt, d.TotalAtt)
	d.MidFreq = Div(d.MidAtt, d.TotalAtt)
	d.ThreeFreq = Div(d.ThreeAtt, d.TotalAtt)
	d.TwoPtFreq = Div(d.TwoPtAtt, d.TotalAtt)

	d.DunkAtt = c.DunkMade + c.DunkMiss
	d.DunkFreq = Div(d.DunkAtt, d.TotalAtt)
	d.DunkFGPct = Div(c.DunkMade, d.DunkAtt)

	return d
}
