package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Jurisdiction maps a country to its standard sales tax.
type Jurisdiction struct {
	Country string  `mapstructure:"country"`
	Rate    float64 `mapstructure:"rate"` // percentage, 0-100
	Label   string  `mapstructure:"label"`
}

func DefaultJurisdictions() []Jurisdiction {
	return []Jurisdiction{
		{Country: "United Kingdom", Rate: 20, Label: "VAT"},
		{Country: "Germany", Rate: 19, Label: "VAT"},
		{Country: "France", Rate: 20, Label: "VAT"},
		{Country: "India", Rate: 18, Label: "GST"},
		{Country: "United States", Rate: 0, Label: "Sales Tax"},
		{Country: "Australia", Rate: 10, Label: "GST"},
		{Country: "Canada", Rate: 5, Label: "GST"},
	}
}

// JurisdictionTable is an immutable country lookup.
type JurisdictionTable struct {
	entries map[string]Jurisdiction
}

func NewJurisdictionTable(entries []Jurisdiction) JurisdictionTable {
	table := JurisdictionTable{entries: make(map[string]Jurisdiction, len(entries))}
	for _, entry := range entries {
		entry.Country = strings.TrimSpace(entry.Country)
		entry.Label = strings.TrimSpace(entry.Label)
		table.entries[countryKey(entry.Country)] = entry
	}
	return table
}

// Lookup matches country names case-insensitively.
func (t JurisdictionTable) Lookup(country string) (Jurisdiction, bool) {
	key := countryKey(country)
	if key == "" || t.entries == nil {
		return Jurisdiction{}, false
	}
	entry, ok := t.entries[key]
	return entry, ok
}

// Entries returns the table sorted by country.
func (t JurisdictionTable) Entries() []Jurisdiction {
	out := make([]Jurisdiction, 0, len(t.entries))
	for _, entry := range t.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}

func (t JurisdictionTable) Len() int {
	return len(t.entries)
}

// SameCountry reports whether two free-text country names refer to the same
// jurisdiction key.
func SameCountry(a, b string) bool {
	key := countryKey(a)
	return key != "" && key == countryKey(b)
}

func countryKey(country string) string {
	return strings.ToLower(strings.Join(strings.Fields(country), " "))
}

type JurisdictionTableHolder struct {
	current atomic.Value // holds JurisdictionTable
}

// NewJurisdictionTableHolder loads jurisdictions.yml from the standard
// locations, falling back to the built-in table when no file exists.
func NewJurisdictionTableHolder(log *zap.Logger) (*JurisdictionTableHolder, error) {
	return LoadJurisdictionTableHolder(log, "/var/lib/dealdesk/config", "/etc/dealdesk", ".")
}

func LoadJurisdictionTableHolder(log *zap.Logger, paths ...string) (*JurisdictionTableHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.jurisdictions")

	v := viper.New()
	v.SetConfigName("jurisdictions")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	v.SetEnvPrefix("DEALDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &JurisdictionTableHolder{}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		holder.current.Store(NewJurisdictionTable(DefaultJurisdictions()))
		log.Info("jurisdictions file not found, using built-in table")
		return holder, nil
	}

	entries, err := decodeJurisdictions(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(NewJurisdictionTable(entries))
	log.Info("jurisdictions loaded",
		zap.String("file", v.ConfigFileUsed()),
		zap.Int("count", len(entries)),
	)

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeJurisdictions(v)
		if err != nil {
			log.Warn("jurisdictions reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(NewJurisdictionTable(updated))
		log.Info("jurisdictions reloaded", zap.String("file", e.Name), zap.Int("count", len(updated)))
	})
	v.WatchConfig()

	return holder, nil
}

// NewStaticJurisdictionTableHolder wraps a fixed table.
func NewStaticJurisdictionTableHolder(entries []Jurisdiction) *JurisdictionTableHolder {
	holder := &JurisdictionTableHolder{}
	holder.current.Store(NewJurisdictionTable(entries))
	return holder
}

func (h *JurisdictionTableHolder) Get() JurisdictionTable {
	if h == nil {
		return NewJurisdictionTable(DefaultJurisdictions())
	}
	table, ok := h.current.Load().(JurisdictionTable)
	if !ok {
		return NewJurisdictionTable(DefaultJurisdictions())
	}
	return table
}

func decodeJurisdictions(v *viper.Viper) ([]Jurisdiction, error) {
	var entries []Jurisdiction
	if err := v.UnmarshalKey("tax.jurisdictions", &entries); err != nil {
		return nil, err
	}
	if err := ValidateJurisdictions(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func ValidateJurisdictions(entries []Jurisdiction) error {
	if len(entries) == 0 {
		return errors.New("tax.jurisdictions cannot be empty")
	}
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		key := countryKey(entry.Country)
		if key == "" {
			return fmt.Errorf("tax.jurisdictions[%d]: country is required", i)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("tax.jurisdictions[%d]: duplicate country %q", i, entry.Country)
		}
		seen[key] = struct{}{}
		if strings.TrimSpace(entry.Label) == "" {
			return fmt.Errorf("tax.jurisdictions[%d]: label is required", i)
		}
		if entry.Rate < 0 || entry.Rate > 100 {
			return fmt.Errorf("tax.jurisdictions[%d]: rate %v out of range", i, entry.Rate)
		}
	}
	return nil
}
