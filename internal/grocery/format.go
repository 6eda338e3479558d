package grocery

import (
	"math"
	"strconv"
)

// commonFractions maps quantities near a kitchen-friendly fraction to its
// glyph. Matching uses an absolute tolerance so accumulated floating-point
// error from aggregation is absorbed here at display time.
var commonFractions = []struct {
	value float64
	glyph string
}{
	{0.25, "¼"},
	{0.33, "⅓"},
	{0.5, "½"},
	{0.67, "⅔"},
	{0.75, "¾"},
}

const fractionTolerance = 0.01

// FormatQuantity renders a quantity as a human string: whole numbers as plain
// integers, common fractions as glyphs, everything else rounded to two
// decimal places.
func FormatQuantity(quantity float64) string {
	if quantity == math.Trunc(quantity) {
		return strconv.FormatFloat(quantity, 'f', -1, 64)
	}
	for _, f := range commonFractions {
		if math.Abs(quantity-f.value) < fractionTolerance {
			return f.glyph
		}
	}
	return strconv.FormatFloat(quantity, 'f', 2, 64)
}
