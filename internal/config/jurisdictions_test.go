package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJurisdictionTableLookupIgnoresCaseAndSpacing(t *testing.T) {
	table := NewJurisdictionTable(DefaultJurisdictions())

	entry, ok := table.Lookup("  united   kingdom ")
	require.True(t, ok)
	assert.Equal(t, "United Kingdom", entry.Country)
	assert.Equal(t, float64(20), entry.Rate)
	assert.Equal(t, "VAT", entry.Label)

	_, ok = table.Lookup("")
	assert.False(t, ok)
	_, ok = table.Lookup("Nowhereland")
	assert.False(t, ok)
}

func TestLoadJurisdictionTableHolderFallsBackToBuiltIn(t *testing.T) {
	holder, err := LoadJurisdictionTableHolder(zap.NewNop(), t.TempDir())
	require.NoError(t, err)

	table := holder.Get()
	assert.Equal(t, len(DefaultJurisdictions()), table.Len())
	entry, ok := table.Lookup("Germany")
	require.True(t, ok)
	assert.Equal(t, float64(19), entry.Rate)
}

func TestLoadJurisdictionTableHolderReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`tax:
  jurisdictions:
    - country: Netherlands
      rate: 21
      label: BTW
    - country: Singapore
      rate: 9
      label: GST
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jurisdictions.yml"), content, 0o600))

	holder, err := LoadJurisdictionTableHolder(zap.NewNop(), dir)
	require.NoError(t, err)

	table := holder.Get()
	assert.Equal(t, 2, table.Len())
	entry, ok := table.Lookup("netherlands")
	require.True(t, ok)
	assert.Equal(t, "BTW", entry.Label)
	assert.Equal(t, float64(21), entry.Rate)
	_, ok = table.Lookup("Germany")
	assert.False(t, ok)
}

func TestLoadJurisdictionTableHolderRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`tax:
  jurisdictions:
    - country: Atlantis
      rate: 140
      label: VAT
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jurisdictions.yml"), content, 0o600))

	_, err := LoadJurisdictionTableHolder(zap.NewNop(), dir)
	require.Error(t, err)
}

func TestValidateJurisdictions(t *testing.T) {
	cases := []struct {
		name    string
		entries []Jurisdiction
		wantErr bool
	}{
		{name: "defaults", entries: DefaultJurisdictions()},
		{name: "empty", entries: nil, wantErr: true},
		{name: "missing country", entries: []Jurisdiction{{Rate: 5, Label: "GST"}}, wantErr: true},
		{name: "missing label", entries: []Jurisdiction{{Country: "Canada", Rate: 5}}, wantErr: true},
		{name: "negative rate", entries: []Jurisdiction{{Country: "Canada", Rate: -1, Label: "GST"}}, wantErr: true},
		{
			name: "duplicate",
			entries: []Jurisdiction{
				{Country: "Canada", Rate: 5, Label: "GST"},
				{Country: "CANADA", Rate: 13, Label: "HST"},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateJurisdictions(tc.entries)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStaticHolderNilSafe(t *testing.T) {
	var holder *JurisdictionTableHolder
	assert.Equal(t, len(DefaultJurisdictions()), holder.Get().Len())
}

func TestSameCountry(t *testing.T) {
	assert.True(t, SameCountry("United Kingdom", "  united   kingdom "))
	assert.False(t, SameCountry("Germany", "United Kingdom"))
	assert.False(t, SameCountry("", ""))
}
