// Package currency normalizes the mixed monetary representations that reach
// the weekly records: machine-formatted decimals from the earnings feed and
// human-entered es-AR amounts ("1.234,56") from legacy imports.
package currency

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	stripPattern   = regexp.MustCompile(`[^0-9.,-]`)
	machineDecimal = regexp.MustCompile(`^-?\d+\.\d{1,2}$`)
)

// Parse returns the canonical decimal value of any upstream representation.
// Nil and empty inputs are zero; unparseable input is zero, never an error,
// because a bad cell in the feed must not poison a reconciliation pass.
func Parse(value any) decimal.Decimal {
	switch v := value.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero
		}
		return *v
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case string:
		return parseString(v)
	default:
		return decimal.Zero
	}
}

func parseString(raw string) decimal.Decimal {
	s := stripPattern.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" || s == "-" {
		return decimal.Zero
	}

	// A lone dot followed by one or two digits is a machine-formatted
	// decimal ("45.00"), not a thousands separator.
	if strings.Contains(s, ".") && !strings.Contains(s, ",") && machineDecimal.MatchString(s) {
		return mustDecimal(s)
	}

	// es-AR: dots group thousands, comma is the decimal point.
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return mustDecimal(s)
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
