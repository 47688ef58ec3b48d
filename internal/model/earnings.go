package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// EarningsAmount distinguishes a confirmed amount (including a confirmed
// zero) from "no data yet". Weekly record columns are nullable; this type is
// what the API exposes so consumers cannot read an unknown as a zero.
type EarningsAmount struct {
	known  bool
	amount decimal.Decimal
}

func KnownAmount(amount decimal.Decimal) EarningsAmount {
	return EarningsAmount{known: true, amount: amount}
}

func UnknownAmount() EarningsAmount {
	return EarningsAmount{}
}

// AmountFromColumn maps a nullable earnings column to the tagged form.
func AmountFromColumn(value *decimal.Decimal) EarningsAmount {
	if value == nil {
		return UnknownAmount()
	}
	return KnownAmount(*value)
}

func (e EarningsAmount) Known() bool {
	return e.known
}

// Value returns the amount and whether it is confirmed.
func (e EarningsAmount) Value() (decimal.Decimal, bool) {
	return e.amount, e.known
}

func (e EarningsAmount) MarshalJSON() ([]byte, error) {
	if !e.known {
		return json.Marshal(map[string]string{"status": "unknown"})
	}
	return json.Marshal(map[string]string{
		"status": "known",
		"amount": e.amount.StringFixed(2),
	})
}
