package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter(language.AmericanEnglish)

	assert.Equal(t, "-", f.Format(Absent()))
	assert.Equal(t, "15", f.Format(ValueOf(json.Number("15"))))
	assert.Equal(t, "0", f.Format(ValueOf(0)))
	assert.Equal(t, "beta", f.Format(ValueOf("beta")))
}

func TestFormatter_FormatK(t *testing.T) {
	f := NewFormatter(language.AmericanEnglish)

	tests := []struct {
		name string
		in   Value
		want string
	}{
		{name: "absent", in: Absent(), want: "-"},
		{name: "825", in: ValueOf(json.Number("825")), want: "0.8K+"},
		{name: "12345", in: ValueOf(json.Number("12345")), want: "12.3K+"},
		{name: "zero", in: ValueOf(0), want: "0.0K+"},
		{name: "exact thousands", in: ValueOf(2000), want: "2.0K+"},
		{name: "negative", in: ValueOf(-1500), want: "-1.5K+"},
		{name: "tie rounds up", in: ValueOf(json.Number("250")), want: "0.3K+"},
		{name: "tie 750", in: ValueOf(json.Number("750")), want: "0.8K+"},
		{name: "tie 1250", in: ValueOf(json.Number("1250")), want: "1.3K+"},
		{name: "tie 2250", in: ValueOf(json.Number("2250")), want: "2.3K+"},
		{name: "negative tie", in: ValueOf(-1250), want: "-1.3K+"},
		{name: "inexact half stays down", in: ValueOf(json.Number("150")), want: "0.1K+"},
		{name: "small negative", in: ValueOf(-25), want: "-0.0K+"},
		{name: "string passthrough", in: ValueOf("soon"), want: "soon"},
		{name: "nan passthrough", in: ValueOf(math.NaN()), want: "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FormatK(tt.in))
		})
	}
}

func TestFormatter_FormatWithCommas(t *testing.T) {
	f := NewFormatter(language.AmericanEnglish)

	tests := []struct {
		name string
		in   Value
		want string
	}{
		{name: "absent", in: Absent(), want: "-"},
		{name: "825", in: ValueOf(json.Number("825")), want: "825+"},
		{name: "1234567", in: ValueOf(json.Number("1234567")), want: "1,234,567+"},
		{name: "integral float", in: ValueOf(825.0), want: "825+"},
		{name: "negative", in: ValueOf(-4200), want: "-4,200+"},
		{name: "fraction", in: ValueOf(json.Number("1234.5")), want: "1,234.5+"},
		{name: "fraction tie", in: ValueOf(0.0625), want: "0.063+"},
		{name: "grouped fraction tie", in: ValueOf(1234.5625), want: "1,234.563+"},
		{name: "negative fraction tie", in: ValueOf(-0.0625), want: "-0.063+"},
		{name: "string passthrough", in: ValueOf("n/a"), want: "n/a"},
		{name: "inf passthrough", in: ValueOf(math.Inf(1)), want: "+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FormatWithCommas(tt.in))
		})
	}
}

func TestRoundTies(t *testing.T) {
	tests := []struct {
		name   string
		in     float64
		places int
		want   float64
	}{
		{name: "quarter", in: 0.25, places: 1, want: 0.3},
		{name: "negative quarter", in: -1.25, places: 1, want: -1.3},
		{name: "not a tie", in: 0.24, places: 1, want: 0.24},
		{name: "even multiple", in: 0.5, places: 1, want: 0.5},
		{name: "sixteenth", in: 0.0625, places: 3, want: 0.063},
		{name: "integer", in: 7, places: 3, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, roundTies(tt.in, tt.places), 1e-12)
		})
	}
}

func TestFormatter_FormatWithCommas_Locale(t *testing.T) {
	f := NewFormatter(language.German)
	assert.Equal(t, "1.234.567+", f.FormatWithCommas(ValueOf(1234567)))
}

func TestFormatter_Substitutions(t *testing.T) {
	f := NewFormatter(language.AmericanEnglish)

	t.Run("derived configs", func(t *testing.T) {
		rec := NewStatsRecord(map[string]any{
			FieldThemes:  json.Number("15"),
			FieldMotions: json.Number("55"),
		})
		got := f.Substitutions(rec)
		assert.Equal(t, []Substitution{
			{Token: TokenConfigs, Value: "825+"},
			{Token: TokenConfigsShort, Value: "0.8K+"},
			{Token: TokenThemes, Value: "15"},
			{Token: TokenMotions, Value: "55"},
			{Token: TokenJSBytes, Value: "0"},
		}, got)
	})

	t.Run("empty record", func(t *testing.T) {
		got := f.Substitutions(EmptyStats())
		assert.Equal(t, []Substitution{
			{Token: TokenConfigs, Value: "-"},
			{Token: TokenConfigsShort, Value: "-"},
			{Token: TokenThemes, Value: "-"},
			{Token: TokenMotions, Value: "-"},
			{Token: TokenJSBytes, Value: "0"},
		}, got)
	})
}

func TestAllTokens_NoMarkerInsideAnother(t *testing.T) {
	// single-pass replacement relies on no marker being a prefix of another
	for _, a := range AllTokens {
		for _, b := range AllTokens {
			if a == b {
				continue
			}
			assert.NotContains(t, string(a), string(b))
		}
	}
}
