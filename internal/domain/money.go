package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a trimmed decimal literal into a decimal.Decimal.
// An empty string is reported as absent rather than as an error.
func ParseAmount(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return &d, nil
}

// FormatAmount renders d with a fixed number of decimal places.
func FormatAmount(d decimal.Decimal, places int32) string {
	if places < 0 {
		places = DefaultPrecision
	}
	return d.StringFixed(places)
}

// MustAmount parses a literal and panics on failure. Intended for tests and fixtures.
func MustAmount(raw string) decimal.Decimal {
	d, err := ParseAmount(raw)
	if err != nil {
		panic(err)
	}
	if d == nil {
		return decimal.Zero
	}
	return *d
}
