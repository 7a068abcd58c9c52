package types

import (
	"database/sql/driver"
	"strings"
)

// Address is the customer-facing shipping/billing address stored as jsonb.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Street    string `json:"street"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// IsZero reports whether no address fields have been set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Normalized fills the default country when missing.
func (a Address) Normalized() Address {
	if strings.TrimSpace(a.Country) == "" {
		a.Country = "United States"
	}
	return a
}

// Value implements driver.Valuer.
func (a Address) Value() (driver.Value, error) {
	return jsonbValue(a)
}

// Scan implements sql.Scanner.
func (a *Address) Scan(value interface{}) error {
	return jsonbScan(a, value)
}
