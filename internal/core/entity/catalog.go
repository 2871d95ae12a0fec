// Package entity holds the fields shared by every seeded catalog.
package entity

import (
	"fakeseed/internal/core/apperror"
	"fakeseed/internal/core/id"
)

// Validatable is implemented by entities that check their own invariants
// (without database access).
type Validatable interface {
	Validate() error
}

// Catalog is the base type for reference data.
// Examples: Nomenclature, Counterparties, Warehouses, Organizations.
type Catalog struct {
	// ID is the primary key. A zero ID is assigned when the instance is staged.
	ID id.ID `db:"id" json:"id"`

	// Code is a human-readable identifier
	Code string `db:"code" json:"code" meta:"size=9"`

	// Name is the display name
	Name string `db:"name" json:"name" meta:"size=150"`

	// DeletionMark indicates a soft-deleted entry
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// IsFolder indicates a group in the hierarchy
	IsFolder bool `db:"is_folder" json:"isFolder"`
}

// NewCatalog creates a Catalog with a generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		ID:   id.New(),
		Code: code,
		Name: name,
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate() error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
