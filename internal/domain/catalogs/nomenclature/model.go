// Package nomenclature provides the Nomenclature catalog.
// Nomenclature represents products, goods, services, and other items.
package nomenclature

import (
	"github.com/shopspring/decimal"

	"fakeseed/internal/core/apperror"
	"fakeseed/internal/core/entity"
	"fakeseed/internal/domain/catalogs/counterparty"
	"fakeseed/internal/domain/catalogs/unit"
)

// NomenclatureType defines the type of item.
type NomenclatureType string

const (
	TypeGoods       NomenclatureType = "goods"
	TypeService     NomenclatureType = "service"
	TypeWork        NomenclatureType = "work"
	TypeMaterial    NomenclatureType = "material"
	TypeSemiProduct NomenclatureType = "semi"
	TypeProduct     NomenclatureType = "product"
)

// Types lists every NomenclatureType.
var Types = []NomenclatureType{TypeGoods, TypeService, TypeWork, TypeMaterial, TypeSemiProduct, TypeProduct}

// VATRate defines the VAT rate in percent.
type VATRate string

const (
	VAT0  VATRate = "0"
	VAT10 VATRate = "10"
	VAT20 VATRate = "20"
)

// VATRates lists every VATRate.
var VATRates = []VATRate{VAT0, VAT10, VAT20}

// Nomenclature represents a product, good, service, or other item.
type Nomenclature struct {
	entity.Catalog

	Type NomenclatureType `db:"type" json:"type" meta:"size=16"`

	// Article is the item article/SKU
	Article *string `db:"article" json:"article,omitempty" meta:"size=25"`

	// Barcode is the item barcode (EAN-13)
	Barcode *string `db:"barcode" json:"barcode,omitempty" meta:"size=13"`

	// BaseUnit is the unit stock is kept in
	BaseUnit *unit.Unit `db:"base_unit_id" json:"baseUnit"`

	VATRate VATRate `db:"vat_rate" json:"vatRate" meta:"size=2"`

	// Weight in kg
	Weight decimal.Decimal `db:"weight" json:"weight"`

	// Volume in cubic meters
	Volume decimal.Decimal `db:"volume" json:"volume"`

	Description *string `db:"description" json:"description,omitempty" meta:"type=text"`

	Manufacturer *counterparty.Counterparty `db:"manufacturer_id" json:"manufacturer,omitempty" meta:"optional"`

	// CountryOfOrigin is the ISO 3166-1 alpha-2 code
	CountryOfOrigin *string `db:"country_of_origin" json:"country,omitempty" meta:"size=2"`

	IsWeighed   bool `db:"is_weighed" json:"isWeighed"`
	TrackSerial bool `db:"track_serial" json:"trackSerial"`
	TrackBatch  bool `db:"track_batch" json:"trackBatch"`

	ImageURL *string `db:"image_url" json:"url,omitempty" meta:"size=250"`
}

// NewNomenclature creates a Nomenclature item at the standard VAT rate.
func NewNomenclature(code, name string, itemType NomenclatureType, base *unit.Unit) *Nomenclature {
	return &Nomenclature{
		Catalog:  entity.NewCatalog(code, name),
		Type:     itemType,
		BaseUnit: base,
		VATRate:  VAT20,
	}
}

// Validate implements entity.Validatable.
func (n *Nomenclature) Validate() error {
	if err := n.Catalog.Validate(); err != nil {
		return err
	}
	if !isValidNomenclatureType(n.Type) {
		return apperror.NewValidation("invalid nomenclature type").
			WithDetail("field", "type").
			WithDetail("value", string(n.Type))
	}
	if !isValidVATRate(n.VATRate) {
		return apperror.NewValidation("invalid VAT rate").
			WithDetail("field", "vatRate").
			WithDetail("value", string(n.VATRate))
	}
	if n.BaseUnit == nil {
		return apperror.NewValidation("base unit is required").
			WithDetail("field", "baseUnit")
	}
	if n.Weight.IsNegative() || n.Volume.IsNegative() {
		return apperror.NewValidation("weight and volume must not be negative").
			WithDetail("field", "weight")
	}
	if !n.IsPhysical() && (n.IsWeighed || n.TrackSerial || n.TrackBatch) {
		return apperror.NewValidation("services and work cannot be weighed or tracked").
			WithDetail("field", "type")
	}
	return nil
}

// IsPhysical returns true for items that occupy stock.
func (n *Nomenclature) IsPhysical() bool {
	return n.Type != TypeService && n.Type != TypeWork
}

// VATMultiplier returns 1 + rate/100.
func (n *Nomenclature) VATMultiplier() decimal.Decimal {
	rate, err := decimal.NewFromString(string(n.VATRate))
	if err != nil {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100)))
}

func isValidNomenclatureType(t NomenclatureType) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

func isValidVATRate(r VATRate) bool {
	for _, known := range VATRates {
		if r == known {
			return true
		}
	}
	return false
}
