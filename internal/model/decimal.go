package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Decimal is a float64 that decodes from either a JSON number or a numeric
// string. Values that fail to parse decode to NaN rather than erroring, so a
// malformed rate degrades to an "Invalid rate" label instead of failing the
// whole rates fetch.
type Decimal float64

// UnmarshalJSON accepts numbers, quoted numbers, and null.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*d = Decimal(math.NaN())
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			*d = Decimal(math.NaN())
			return nil
		}
		s = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*d = Decimal(math.NaN())
		return nil
	}
	*d = Decimal(f)
	return nil
}

// MarshalJSON emits a plain number, or null for non-finite values.
func (d Decimal) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// FormatRate renders a redemption rate as "<points> pts / $<base>", where
// points = baseDollar / rate. A zero or non-finite rate or base yields
// "Invalid rate" rather than an Infinity display.
func FormatRate(rate, baseDollar float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate == 0 ||
		math.IsNaN(baseDollar) || math.IsInf(baseDollar, 0) {
		return "Invalid rate"
	}
	points := baseDollar / rate
	return fmt.Sprintf("%.0f pts / $%.2f", points, baseDollar)
}
