package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUIDv7(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // v1
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"",
	}
	for _, id := range valid {
		if !IsValidUUIDv7(id) {
			t.Errorf("IsValidUUIDv7(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUIDv7(id) {
			t.Errorf("IsValidUUIDv7(%q) = true, want false", id)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"123e4567-e89b-12d3-a456-426614174000",
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"urn:uuid:123e4567-e89b-12d3-a456-426614174000",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidYearMonth(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"2025-01", true},
		{"2024-12", true},
		{"2025-13", false},
		{"2025-00", false},
		{"2025-1", false},
		{"202501", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsValidYearMonth(c.input); got != c.want {
			t.Errorf("IsValidYearMonth(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2025-02-28"); !ok {
		t.Error("IsValidDate(2025-02-28) = false, want true")
	}
	if _, ok := IsValidDate("2025-02-30"); ok {
		t.Error("IsValidDate(2025-02-30) = true, want false")
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "year_month", Message: "is required"},
		{Field: "reason", Message: "is required"},
	}
	m := errs.ToMap()
	if len(m) != 2 || m["year_month"] != "is required" {
		t.Errorf("ToMap() = %v", m)
	}
	if errs.Error() != "year_month: is required; reason: is required" {
		t.Errorf("Error() = %q", errs.Error())
	}
}

func TestValidationErrors_AddAndErr(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.Err())

	errs.Add("year_month", "is required")
	err := errs.Err()
	assert.EqualError(t, err, "year_month: is required")

	var verrs ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 1)
}

func TestExceedsLength(t *testing.T) {
	assert.False(t, ExceedsLength("성과급 지급", 6))
	assert.True(t, ExceedsLength("성과급 지급 누락", 6))
	assert.False(t, ExceedsLength("", 0))
}

func TestIsNonNegativeAmount(t *testing.T) {
	zero := decimal.Zero
	positive := decimal.NewFromInt(500000)
	negative := decimal.NewFromInt(-1)

	assert.True(t, IsNonNegativeAmount(nil))
	assert.True(t, IsNonNegativeAmount(&zero))
	assert.True(t, IsNonNegativeAmount(&positive))
	assert.False(t, IsNonNegativeAmount(&negative))
}
