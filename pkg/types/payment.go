package types

import (
	"database/sql/driver"

	"github.com/greencartlabs/greencart-backend/pkg/enums"
)

// CardDetails holds the display-only card metadata the storefront records.
type CardDetails struct {
	Last4    string `json:"last4,omitempty"`
	Brand    string `json:"brand,omitempty"`
	ExpMonth string `json:"exp_month,omitempty"`
	ExpYear  string `json:"exp_year,omitempty"`
}

// Payment captures the payment metadata snapshotted onto an order. No charge
// is ever attempted against it.
type Payment struct {
	Method        enums.PaymentMethod `json:"method"`
	Status        enums.PaymentStatus `json:"status"`
	TransactionID string              `json:"transaction_id,omitempty"`
	Details       *CardDetails        `json:"details,omitempty"`
}

// Value implements driver.Valuer.
func (p Payment) Value() (driver.Value, error) {
	return jsonbValue(p)
}

// Scan implements sql.Scanner.
func (p *Payment) Scan(value interface{}) error {
	return jsonbScan(p, value)
}
