package types

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

// Variant is a named product option (e.g. size) optionally carrying its own
// price, distinct from the base product price.
type Variant struct {
	Name  string           `json:"name"`
	Val   string           `json:"value"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

// Matches reports whether two variants refer to the same option by name and
// value. Price is deliberately ignored.
func (v Variant) Matches(other Variant) bool {
	return v.Name == other.Name && v.Val == other.Val
}

// IsZero reports whether the variant carries no option at all.
func (v Variant) IsZero() bool {
	return v.Name == "" && v.Val == "" && v.Price == nil
}

// Value implements driver.Valuer.
func (v Variant) Value() (driver.Value, error) {
	return jsonbValue(v)
}

// Scan implements sql.Scanner.
func (v *Variant) Scan(value interface{}) error {
	return jsonbScan(v, value)
}

// Variants is a jsonb list of options configured on a product.
type Variants []Variant

// Value implements driver.Valuer.
func (v Variants) Value() (driver.Value, error) {
	if v == nil {
		return jsonbValue(Variants{})
	}
	return jsonbValue(v)
}

// Scan implements sql.Scanner.
func (v *Variants) Scan(value interface{}) error {
	return jsonbScan(v, value)
}
