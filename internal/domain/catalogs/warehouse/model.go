// Package warehouse provides the Warehouse catalog.
// Warehouses represent physical locations for storing goods and inventory.
package warehouse

import (
	"fakeseed/internal/core/apperror"
	"fakeseed/internal/core/entity"
	"fakeseed/internal/domain/catalogs/currency"
	"fakeseed/internal/domain/catalogs/organization"
)

// WarehouseType defines the type of warehouse.
type WarehouseType string

const (
	TypeMain         WarehouseType = "main"
	TypeDistribution WarehouseType = "distribution"
	TypeRetail       WarehouseType = "retail"
	TypeProduction   WarehouseType = "production"
	TypeTransit      WarehouseType = "transit"
)

// Types lists every WarehouseType.
var Types = []WarehouseType{TypeMain, TypeDistribution, TypeRetail, TypeProduction, TypeTransit}

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.Catalog

	Type WarehouseType `db:"type" json:"type" meta:"size=16"`

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty" meta:"size=250"`

	// IsActive indicates if warehouse is operational
	IsActive bool `db:"is_active" json:"isActive"`

	AllowNegativeStock bool `db:"allow_negative_stock" json:"allowNegativeStock"`

	IsDefault bool `db:"is_default" json:"isDefault"`

	// Organization owns the warehouse
	Organization *organization.Organization `db:"organization_id" json:"organization"`

	Description *string `db:"description" json:"description,omitempty" meta:"type=text"`

	// DefaultCurrency is the default currency for documents on this warehouse
	DefaultCurrency *currency.Currency `db:"default_currency_id" json:"defaultCurrency,omitempty" meta:"optional"`
}

// NewWarehouse creates an active Warehouse.
func NewWarehouse(code, name string, whType WarehouseType, owner *organization.Organization) *Warehouse {
	return &Warehouse{
		Catalog:      entity.NewCatalog(code, name),
		Type:         whType,
		IsActive:     true,
		Organization: owner,
	}
}

// Validate implements entity.Validatable.
func (w *Warehouse) Validate() error {
	if err := w.Catalog.Validate(); err != nil {
		return err
	}
	if !isValidWarehouseType(w.Type) {
		return apperror.NewValidation("invalid warehouse type").
			WithDetail("field", "type").
			WithDetail("value", string(w.Type))
	}
	if w.Organization == nil {
		return apperror.NewValidation("organization is required").
			WithDetail("field", "organization")
	}
	return nil
}

// CanIssueStock reports whether goods can leave the warehouse with the given balance sign.
func (w *Warehouse) CanIssueStock(negativeBalance bool) bool {
	return w.IsActive && (!negativeBalance || w.AllowNegativeStock)
}

func isValidWarehouseType(t WarehouseType) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}
