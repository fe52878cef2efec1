package ratetable

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_SelectsByEffectiveDate(t *testing.T) {
	registry := Default()
	assert.Equal(t, []string{"KR-2024", "KR-2025"}, registry.Versions())

	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "KR-2024"},
		{time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), "KR-2024"},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "KR-2025"},
		{time.Date(2031, 6, 30, 0, 0, 0, 0, time.UTC), "KR-2025"},
	}
	for _, c := range cases {
		table, err := registry.For(c.at)
		require.NoError(t, err)
		assert.Equal(t, c.want, table.Version, c.at.String())
	}
}

func TestRegistry_NoTableBeforeFirstEffectiveDate(t *testing.T) {
	_, err := Default().For(time.Date(2019, 5, 31, 0, 0, 0, 0, time.UTC))
	assert.True(t, errors.Is(err, ErrNoRateTable))
}

func TestParse_RejectsDescendingBrackets(t *testing.T) {
	doc := []byte(`
tables:
  - version: BROKEN
    effective_from: 2024-01-01
    standard_monthly_hours: 209
    local_income_tax_rate: "0.1"
    social_insurance: { pension_rate: "0.045", pension_ceiling: "1", health_rate: "0", long_term_care_rate: "0", employment_rate: "0" }
    earned_income_deduction:
      - { upto: "0", base: "0", rate: "0.7", over: "0" }
    income_tax_brackets:
      - { over: "100", rate: "0.1", fixed_deduction: "0" }
      - { over: "50", rate: "0.2", fixed_deduction: "0" }
    overtime_multipliers: { weekday: "1.5", weekend: "1.5", holiday: "2", night: "0.5" }
`)
	_, err := Parse(doc)
	assert.Error(t, err)
}

func TestParse_RejectsDuplicateEffectiveDates(t *testing.T) {
	registry := Default()
	first, err := registry.For(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	dup := *first
	dup.Version = "KR-2024-copy"
	_, err = NewRegistry(*first, dup)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, defaultTablesYAML, 0o600))

	registry, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Versions(), registry.Versions())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
