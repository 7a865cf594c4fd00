package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		code   string
		want   string
	}{
		{name: "whole", amount: "300", code: "USD", want: "USD 300"},
		{name: "grouping", amount: "1234567", code: "eur", want: "EUR 1,234,567"},
		{name: "rounds half up", amount: "1234.5", code: "GBP", want: "GBP 1,235"},
		{name: "rounds down", amount: "99.49", code: "INR", want: "INR 99"},
		{name: "unknown code falls back", amount: "10", code: "ZZZ", want: "GBP 10"},
		{name: "empty code falls back", amount: "10", code: "", want: "GBP 10"},
		{name: "garbage falls back", amount: "10", code: "dollars", want: "GBP 10"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatMoney(decimal.RequireFromString(tc.amount), tc.code))
		})
	}
}

func TestFormatterFallback(t *testing.T) {
	f := NewFormatter("aud")
	assert.Equal(t, "AUD", f.Fallback())
	assert.Equal(t, "AUD 5", f.Format(decimal.NewFromInt(5), "nope"))

	invalid := NewFormatter("???")
	assert.Equal(t, DefaultCurrency, invalid.Fallback())
}

func TestNormalizeCurrency(t *testing.T) {
	code, ok := NormalizeCurrency(" cad ")
	require.True(t, ok)
	assert.Equal(t, "CAD", code)

	_, ok = NormalizeCurrency("US")
	assert.False(t, ok)
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(250), decimal.NewFromInt(20))
	assert.True(t, got.Equal(decimal.NewFromInt(50)), got.String())

	got = Percent(decimal.RequireFromString("0.1"), decimal.NewFromInt(19))
	assert.True(t, got.Equal(decimal.RequireFromString("0.019")), got.String())
}

func TestDecimalMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(struct {
		Total decimal.Decimal `json:"total"`
	}{Total: decimal.RequireFromString("300.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":300.5}`, string(b))
}
