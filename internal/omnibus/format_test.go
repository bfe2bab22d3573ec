package omnibus

import (
	"testing"

	"github.com/chocante/omnibus/internal/config"
)

func TestPriceFormatter_Format(t *testing.T) {
	eur := PriceFormatter{Symbol: "€", Position: config.PositionLeft, ThousandSep: ",", DecimalSep: ".", Decimals: 2}
	pln := PriceFormatter{Symbol: "zł", Position: config.PositionRightSpace, ThousandSep: " ", DecimalSep: ",", Decimals: 2}

	tests := []struct {
		name  string
		f     PriceFormatter
		input string
		want  string
	}{
		{name: "simple", f: eur, input: "19.99", want: "€19.99"},
		{name: "integer padded to decimals", f: eur, input: "100", want: "€100.00"},
		{name: "thousands grouped", f: eur, input: "1234567.89", want: "€1,234,567.89"},
		{name: "rounding", f: eur, input: "19.999", want: "€20.00"},
		{name: "right space position", f: pln, input: "1299.9", want: "1 299,90 zł"},
		{name: "negative", f: eur, input: "-5.5", want: "€-5.50"},
		{name: "zero decimals", f: PriceFormatter{Symbol: "¥", Position: config.PositionLeft, ThousandSep: ",", Decimals: 0}, input: "1500.4", want: "¥1,500"},
		{name: "left space position", f: PriceFormatter{Symbol: "kr", Position: config.PositionLeftSpace, DecimalSep: ".", Decimals: 2}, input: "49.5", want: "kr 49.50"},
		{name: "unparseable passes through", f: eur, input: "n/a", want: "n/a"},
		{name: "no thousand separator configured", f: PriceFormatter{Symbol: "$", Position: config.PositionLeft, DecimalSep: ".", Decimals: 2}, input: "12345.00", want: "$12345.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Format(tt.input); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewPriceFormatter(t *testing.T) {
	f := NewPriceFormatter(config.CurrencyConfig{
		Symbol:      "€",
		Position:    config.PositionRight,
		ThousandSep: ".",
		DecimalSep:  ",",
		Decimals:    2,
	})

	if got := f.Format("1299.9"); got != "1.299,90€" {
		t.Errorf("Format() = %q, want %q", got, "1.299,90€")
	}
}
