package domain

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders stats values for the page. Each method is total:
// absent values become Placeholder and present non-numbers pass through.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a Formatter grouping digits the way tag does.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Format renders v unchanged.
func (f *Formatter) Format(v Value) string {
	return v.String()
}

// FormatK renders a number in thousands with one decimal, e.g. 825 -> "0.8K+".
func (f *Formatter) FormatK(v Value) string {
	n, ok := v.Number()
	if !ok {
		return v.String()
	}
	return strconv.FormatFloat(roundTies(n/1000, 1), 'f', 1, 64) + "K+"
}

// FormatWithCommas renders a number with locale grouping, e.g. 1234567 -> "1,234,567+".
func (f *Formatter) FormatWithCommas(v Value) string {
	n, ok := v.Number()
	if !ok {
		return v.String()
	}
	if n == math.Trunc(n) && math.Abs(n) < math.MaxInt64 {
		return f.printer.Sprintf("%d", int64(n)) + "+"
	}
	n = roundTies(n, 3)
	return f.printer.Sprint(number.Decimal(n, number.MaxFractionDigits(3))) + "+"
}

// roundTies rounds n half away from zero when it sits exactly halfway
// between two values with the given number of decimals. Any other n is
// returned as is, leaving the rounding to the formatter. A binary float can
// only be such a tie when it is an odd multiple of 2^-(places+1).
func roundTies(n float64, places int) float64 {
	q := math.Ldexp(n, places+1)
	if q != math.Trunc(q) || math.Mod(q, 2) == 0 {
		return n
	}
	p := math.Pow10(places)
	return math.Round(n*p) / p
}
