package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleRoundTripKeepsRateAndLabel(t *testing.T) {
	p := Policy{Rate: decimal.NewFromInt(19), Label: "VAT", Enabled: false}

	on := p.Toggled()
	assert.True(t, on.Enabled)
	assert.True(t, on.Rate.Equal(p.Rate))
	assert.Equal(t, "VAT", on.Label)
	assert.Equal(t, p, on.Toggled())
}

func TestWithRateValidatesRange(t *testing.T) {
	p := DefaultPolicy()

	got, err := p.WithRate(decimal.RequireFromString("12.5"))
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.Rate.String())
	assert.Equal(t, DefaultLabel, got.Label)

	for _, bad := range []string{"-0.01", "100.01"} {
		_, err := p.WithRate(decimal.RequireFromString(bad))
		assert.ErrorIs(t, err, ErrInvalidTaxRate, bad)
	}

	_, err = p.WithRate(decimal.NewFromInt(100))
	assert.NoError(t, err)
}
