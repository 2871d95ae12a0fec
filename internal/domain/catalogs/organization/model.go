// Package organization provides the Organization catalog.
// Organizations are the legal entities that own warehouses and documents.
package organization

import (
	"regexp"

	"fakeseed/internal/core/apperror"
	"fakeseed/internal/core/entity"
	"fakeseed/internal/domain/catalogs/currency"
)

var (
	innRE = regexp.MustCompile(`^\d{10}$`)
	kppRE = regexp.MustCompile(`^\d{9}$`)
)

// Organization represents a legal entity or business unit.
type Organization struct {
	entity.Catalog

	// FullName is the official full name of the organization
	FullName *string `db:"full_name" json:"fullName,omitempty" meta:"size=250"`

	// INN is the tax identification number
	INN *string `db:"inn" json:"inn,omitempty" meta:"size=12"`

	// KPP is the code of reason for registration
	KPP *string `db:"kpp" json:"kpp,omitempty" meta:"size=9"`

	// BaseCurrency is the main accounting currency
	BaseCurrency *currency.Currency `db:"base_currency_id" json:"baseCurrency,omitempty" meta:"optional"`

	// IsDefault marks the default organization for new documents
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewOrganization creates an Organization.
func NewOrganization(code, name string, base *currency.Currency) *Organization {
	return &Organization{
		Catalog:      entity.NewCatalog(code, name),
		BaseCurrency: base,
	}
}

// Validate implements entity.Validatable.
func (o *Organization) Validate() error {
	if err := o.Catalog.Validate(); err != nil {
		return err
	}
	if o.INN != nil && *o.INN != "" && !innRE.MatchString(*o.INN) {
		return apperror.NewValidation("organization INN must be 10 digits").
			WithDetail("field", "inn")
	}
	if o.KPP != nil && *o.KPP != "" && !kppRE.MatchString(*o.KPP) {
		return apperror.NewValidation("invalid KPP format (must be 9 digits)").
			WithDetail("field", "kpp")
	}
	return nil
}
