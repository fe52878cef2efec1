package ratetable

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrNoRateTable = errors.New("no rate table effective for date")

//go:embed defaults.yaml
var defaultTablesYAML []byte

type file struct {
	Tables []RateTable `yaml:"tables"`
}

// Registry resolves the rate table in force on a given date.
type Registry struct {
	tables []RateTable // ascending by EffectiveFrom
}

func NewRegistry(tables ...RateTable) (*Registry, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("rate table registry: no tables")
	}

	sorted := make([]RateTable, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})

	for i := range sorted {
		if err := sorted[i].Validate(); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i].EffectiveFrom.Equal(sorted[i-1].EffectiveFrom) {
			return nil, fmt.Errorf("rate tables %s and %s share effective date %s",
				sorted[i-1].Version, sorted[i].Version, sorted[i].EffectiveFrom.Format("2006-01-02"))
		}
	}

	return &Registry{tables: sorted}, nil
}

// Parse reads a YAML document with a top-level "tables" list.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rate tables: %w", err)
	}
	return NewRegistry(f.Tables...)
}

// LoadFile reads rate tables from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate tables: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in tables.
func Default() *Registry {
	r, err := Parse(defaultTablesYAML)
	if err != nil {
		panic("built-in rate tables are invalid: " + err.Error())
	}
	return r
}

// For returns the latest table whose EffectiveFrom is on or before at.
func (r *Registry) For(at time.Time) (*RateTable, error) {
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)

	var found *RateTable
	for i := range r.tables {
		if r.tables[i].EffectiveFrom.After(day) {
			break
		}
		found = &r.tables[i]
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRateTable, at.Format("2006-01-02"))
	}
	return found, nil
}

// Versions lists the loaded table versions in effective order.
func (r *Registry) Versions() []string {
	versions := make([]string, 0, len(r.tables))
	for _, t := range r.tables {
		versions = append(versions, t.Version)
	}
	return versions
}
