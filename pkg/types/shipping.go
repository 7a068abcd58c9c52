package types

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

// ShippingMethod is the selected delivery option. Tracking fields stay empty
// on carts and are filled in once an order ships.
type ShippingMethod struct {
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	EstimatedDays  string          `json:"estimated_days,omitempty"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	Carrier        string          `json:"carrier,omitempty"`
}

// IsZero reports whether no shipping method has been chosen.
func (s ShippingMethod) IsZero() bool {
	return s.Name == "" && s.Price.IsZero()
}

// Value implements driver.Valuer.
func (s ShippingMethod) Value() (driver.Value, error) {
	return jsonbValue(s)
}

// Scan implements sql.Scanner.
func (s *ShippingMethod) Scan(value interface{}) error {
	return jsonbScan(s, value)
}
