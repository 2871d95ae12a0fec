// Package unit provides the Unit catalog.
// Units represent measurement units for products and goods.
package unit

import (
	"github.com/shopspring/decimal"

	"fakeseed/internal/core/apperror"
	"fakeseed/internal/core/entity"
)

// UnitType defines the type of measurement unit.
type UnitType string

const (
	TypePiece  UnitType = "piece"
	TypeWeight UnitType = "weight"
	TypeLength UnitType = "length"
	TypeArea   UnitType = "area"
	TypeVolume UnitType = "volume"
	TypeTime   UnitType = "time"
	TypePack   UnitType = "pack"
)

// Types lists every UnitType.
var Types = []UnitType{TypePiece, TypeWeight, TypeLength, TypeArea, TypeVolume, TypeTime, TypePack}

// Unit represents a unit of measurement.
type Unit struct {
	entity.Catalog

	Type UnitType `db:"type" json:"type" meta:"size=16"`

	// Symbol is the short designation (e.g., "kg", "pcs")
	Symbol string `db:"symbol" json:"symbol" meta:"size=10"`

	// InternationalCode is the UN/CEFACT code (e.g., "KGM", "H87")
	InternationalCode *string `db:"international_code" json:"internationalCode,omitempty" meta:"size=3"`

	// ConversionFactor converts to the base unit of the same type
	ConversionFactor decimal.Decimal `db:"conversion_factor" json:"conversionFactor"`

	IsBase bool `db:"is_base" json:"isBase"`

	Description *string `db:"description" json:"description,omitempty" meta:"type=text"`
}

// NewUnit creates a base Unit with conversion factor 1.
func NewUnit(code, name, symbol string, unitType UnitType) *Unit {
	return &Unit{
		Catalog:          entity.NewCatalog(code, name),
		Type:             unitType,
		Symbol:           symbol,
		ConversionFactor: decimal.NewFromInt(1),
		IsBase:           true,
	}
}

// Validate implements entity.Validatable.
func (u *Unit) Validate() error {
	if err := u.Catalog.Validate(); err != nil {
		return err
	}
	if u.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}
	if !isValidUnitType(u.Type) {
		return apperror.NewValidation("invalid unit type").
			WithDetail("field", "type").
			WithDetail("value", string(u.Type))
	}
	if !u.ConversionFactor.IsPositive() {
		return apperror.NewValidation("conversion factor must be positive").
			WithDetail("field", "conversionFactor")
	}
	if u.IsBase && !u.ConversionFactor.Equal(decimal.NewFromInt(1)) {
		return apperror.NewValidation("base unit must have conversion factor 1").
			WithDetail("field", "isBase")
	}
	return nil
}

// ConvertTo converts qty in this unit into target. Both units must share a type.
func (u *Unit) ConvertTo(qty decimal.Decimal, target *Unit) (decimal.Decimal, error) {
	if u.Type != target.Type {
		return decimal.Zero, apperror.NewValidation("cannot convert between unit types").
			WithDetail("from", string(u.Type)).
			WithDetail("to", string(target.Type))
	}
	return qty.Mul(u.ConversionFactor).Div(target.ConversionFactor), nil
}

func isValidUnitType(t UnitType) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}
