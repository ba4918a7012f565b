package metrics

// Band grades a value against its role average.
type Band string

const (
	BandNone      Band = ""
	BandBad       Band = "bad"
	BandBelow     Band = "below"
	BandAverage   Band = "average"
	BandAbove     Band = "above"
	BandExcellent Band = "excellent"
)

// Classify compares val to avg. No band is given when either is missing or
// the average is zero.
func Classify(val, avg Ratio) Band {
	v, ok := val.Get()
	if !ok {
		return BandNone
	}
	a, ok := avg.Get()
	if !ok || a == 0 {
		return BandNone
	}

	diff := v - a
	switch {
	case diff <= -0.10:
		return BandBad
	case diff <= -0.04:
		return BandBelow
	case diff > -0.02 && diff < 0.02:
		return BandAverage
	case diff < 0.06:
		return BandAbove
	default:
		return BandExcellent
	}
}
