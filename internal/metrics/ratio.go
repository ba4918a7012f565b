package metrics

import (
	"database/sql"
	"encoding/json"
	"math"
	"strconv"
)

// Ratio is a nullable float. A Ratio is missing when it was computed over a
// zero denominator or when its source value was absent.
type Ratio struct {
	sql.NullFloat64
}

// Of returns a present Ratio. NaN and infinities are treated as missing.
func Of(v float64) Ratio {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing()
	}
	return Ratio{sql.NullFloat64{Float64: v, Valid: true}}
}

// Missing returns an absent Ratio.
func Missing() Ratio {
	return Ratio{}
}

// Div returns num/den, missing when den is zero.
func Div(num, den float64) Ratio {
	if den == 0 {
		return Missing()
	}
	return Of(num / den)
}

// Get returns the value and whether it is present.
func (r Ratio) Get() (float64, bool) {
	return r.Float64, r.Valid
}

// MarshalJSON encodes a missing Ratio as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Float64)
}

// UnmarshalJSON accepts a number or null.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Missing()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Of(v)
	return nil
}

// String formats the value for CSV output; missing values become empty cells.
func (r Ratio) String() string {
	if !r.Valid {
		return ""
	}
	return strconv.FormatFloat(r.Float64, 'f', -1, 64)
}

// Text is a nullable string used for resolved attributes such as Role and Year.
type Text struct {
	sql.NullString
}

// TextOf returns a present Text, or missing for an empty string.
func TextOf(s string) Text {
	if s == "" {
		return Text{}
	}
	return Text{sql.NullString{String: s, Valid: true}}
}

// MarshalJSON encodes a missing Text as null.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.String)
}

// UnmarshalJSON accepts a string or null.
func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Text{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = TextOf(s)
	return nil
}
