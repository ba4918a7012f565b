package metrics

import (
	"strconv"
	"strings"
)

// Class year labels. Anything outside the closed set is Unknown.
const (
	Freshman  = "Fr"
	Sophomore = "So"
	Junior    = "Jr"
	Senior    = "Sr"
	Unknown   = "Unknown"
)

var classYearOrder = map[string]int{
	Freshman:  1,
	Sophomore: 2,
	Junior:    3,
	Senior:    4,
}

// NormalizeClassYear maps a raw class label onto Fr/So/Jr/Sr, or Unknown.
func NormalizeClassYear(raw string) string {
	s := strings.TrimSpace(raw)
	for label := range classYearOrder {
		if strings.EqualFold(s, label) {
			return label
		}
	}
	return Unknown
}

// ClassYearOrder returns the sort position of a class label; Unknown sorts last.
func ClassYearOrder(label string) int {
	if o, ok := classYearOrder[label]; ok {
		return o
	}
	return 99
}

// ParseHeight converts "feet-inches" (e.g. "6-5") to total inches. Plain
// numbers are taken as inches already.
func ParseHeight(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	if feet, inches, ok := strings.Cut(s, "-"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(feet), 64)
		if err != nil {
			return 0, false
		}
		i, err := strconv.ParseFloat(strings.TrimSpace(inches), 64)
		if err != nil {
			return 0, false
		}
		if f < 0 || i < 0 {
			return 0, false
		}
		return f*12 + i, true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// StandardizePosition reduces a free-form position label to G, F or C.
func StandardizePosition(raw string) (string, bool) {
	p := strings.ToUpper(strings.TrimSpace(raw))
	if p == "" {
		return "", false
	}

	if strings.Contains(p, "G") && !strings.Contains(p, "F") {
		return "G", true
	}

	for _, fwd := range []string{"PF", "SF", "WING F", "STRETCH 4"} {
		if strings.Contains(p, fwd) {
			return "F", true
		}
	}
	if p == "F" {
		return "F", true
	}

	if strings.Contains(p, "F-C") || strings.Contains(p, "C-F") {
		return "F", true
	}

	if p == "C" {
		return "C", true
	}

	return "", false
}
