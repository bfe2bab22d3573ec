package omnibus

import (
	"math"
	"strconv"
	"strings"

	"github.com/chocante/omnibus/internal/config"
)

// PriceFormatter renders a normalized decimal price string the way the
// shop's price renderer does: grouped thousands, fixed decimals, currency
// symbol on the configured side.
type PriceFormatter struct {
	Symbol      string
	Position    string
	ThousandSep string
	DecimalSep  string
	Decimals    int
}

// NewPriceFormatter builds a formatter from the currency configuration.
func NewPriceFormatter(cc config.CurrencyConfig) PriceFormatter {
	return PriceFormatter{
		Symbol:      cc.Symbol,
		Position:    cc.Position,
		ThousandSep: cc.ThousandSep,
		DecimalSep:  cc.DecimalSep,
		Decimals:    cc.Decimals,
	}
}

// Format renders a price for display. Input that does not parse as a
// decimal is returned unchanged.
func (f PriceFormatter) Format(raw string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}

	fixed := strconv.FormatFloat(math.Abs(v), 'f', f.Decimals, 64)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	amount := groupThousands(intPart, f.ThousandSep)
	if fracPart != "" {
		amount += f.DecimalSep + fracPart
	}
	if math.Signbit(v) {
		amount = "-" + amount
	}

	switch f.Position {
	case config.PositionRight:
		return amount + f.Symbol
	case config.PositionRightSpace:
		return amount + " " + f.Symbol
	case config.PositionLeftSpace:
		return f.Symbol + " " + amount
	default:
		return f.Symbol + amount
	}
}

// groupThousands inserts sep every three digits counting from the right.
func groupThousands(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
