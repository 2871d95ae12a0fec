// Package currency provides the Currency catalog.
package currency

import (
	"regexp"

	"github.com/shopspring/decimal"

	"fakeseed/internal/core/apperror"
	"fakeseed/internal/core/entity"
)

var isoCodeRE = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency represents a currency used in financial operations.
type Currency struct {
	entity.Catalog

	// ISOCode is the ISO 4217 alphabetic code (e.g., "USD", "EUR")
	ISOCode *string `db:"iso_code" json:"isoCode" meta:"size=3"`

	// ISONumericCode is the ISO 4217 numeric code (e.g., "840", "978")
	ISONumericCode *string `db:"iso_numeric_code" json:"isoNumericCode,omitempty" meta:"size=3"`

	// Symbol is the currency symbol (e.g., "$", "€")
	Symbol *string `db:"symbol" json:"symbol" meta:"size=5"`

	DecimalPlaces int16 `db:"decimal_places" json:"decimalPlaces"`

	// IsBase indicates the accounting currency
	IsBase bool `db:"is_base" json:"isBase"`

	// Country is the primary country for this currency
	Country *string `db:"country" json:"country,omitempty" meta:"size=64"`
}

// NewCurrency creates a Currency with two decimal places.
func NewCurrency(code, name string, isoCode, symbol *string) *Currency {
	return &Currency{
		Catalog:       entity.NewCatalog(code, name),
		ISOCode:       isoCode,
		Symbol:        symbol,
		DecimalPlaces: 2,
	}
}

// Validate implements entity.Validatable.
func (c *Currency) Validate() error {
	if err := c.Catalog.Validate(); err != nil {
		return err
	}

	if c.ISOCode == nil || !isoCodeRE.MatchString(*c.ISOCode) {
		return apperror.NewValidation("ISO code must be 3 uppercase letters").
			WithDetail("field", "isoCode")
	}
	if c.Symbol == nil || *c.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}
	if c.DecimalPlaces < 0 || c.DecimalPlaces > 8 {
		return apperror.NewValidation("decimal places must be between 0 and 8").
			WithDetail("field", "decimalPlaces")
	}
	return nil
}

// Format renders amount with the currency's precision and symbol.
func (c *Currency) Format(amount decimal.Decimal) string {
	formatted := amount.StringFixed(int32(c.DecimalPlaces))
	if c.Symbol == nil {
		return formatted
	}
	return formatted + " " + *c.Symbol
}
