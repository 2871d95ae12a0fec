// Package counterparty provides the Counterparty catalog.
// Counterparties represent business partners: customers, suppliers, etc.
package counterparty

import (
	"regexp"

	"fakeseed/internal/core/apperror"
	"fakeseed/internal/core/entity"
)

var (
	digitsOnlyRE = regexp.MustCompile(`^\d+$`)
	kppRE        = regexp.MustCompile(`^\d{9}$`)
	emailRE      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// CounterpartyType defines the type of counterparty.
type CounterpartyType string

const (
	TypeCustomer CounterpartyType = "customer"
	TypeSupplier CounterpartyType = "supplier"
	TypeBoth     CounterpartyType = "both"
	TypeOther    CounterpartyType = "other"
)

// Types lists every CounterpartyType.
var Types = []CounterpartyType{TypeCustomer, TypeSupplier, TypeBoth, TypeOther}

// LegalForm defines the legal form of counterparty.
type LegalForm string

const (
	LegalIndividual LegalForm = "individual"
	LegalSoleTrader LegalForm = "sole_trader"
	LegalCompany    LegalForm = "company"
	LegalGovernment LegalForm = "government"
)

// LegalForms lists every LegalForm.
var LegalForms = []LegalForm{LegalIndividual, LegalSoleTrader, LegalCompany, LegalGovernment}

// Counterparty represents a business partner.
type Counterparty struct {
	entity.Catalog

	Type CounterpartyType `db:"type" json:"type" meta:"size=16"`

	LegalForm LegalForm `db:"legal_form" json:"legalForm" meta:"size=16"`

	// FullName is the official registered name
	FullName *string `db:"full_name" json:"fullName" meta:"size=250"`

	// INN is the taxpayer number: 10 digits for organizations, 12 for persons
	INN *string `db:"inn" json:"inn" meta:"size=12"`

	// KPP is the registration reason code (companies only)
	KPP *string `db:"kpp" json:"kpp,omitempty" meta:"size=9"`

	// OGRN is the primary state registration number
	OGRN *string `db:"ogrn" json:"ogrn,omitempty" meta:"size=15"`

	LegalAddress  *string `db:"legal_address" json:"legalAddress,omitempty" meta:"size=250"`
	ActualAddress *string `db:"actual_address" json:"actualAddress,omitempty" meta:"size=250"`

	Phone         *string `db:"phone" json:"phone,omitempty" meta:"size=32"`
	Email         *string `db:"email" json:"email,omitempty" meta:"size=128"`
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty" meta:"size=128"`

	Comment *string `db:"comment" json:"comment,omitempty" meta:"type=text"`
}

// NewCounterparty creates a Counterparty with required fields.
func NewCounterparty(code, name string, cpType CounterpartyType, legalForm LegalForm) *Counterparty {
	return &Counterparty{
		Catalog:   entity.NewCatalog(code, name),
		Type:      cpType,
		LegalForm: legalForm,
	}
}

// Validate implements entity.Validatable.
func (c *Counterparty) Validate() error {
	if err := c.Catalog.Validate(); err != nil {
		return err
	}

	if !isValidCounterpartyType(c.Type) {
		return apperror.NewValidation("invalid counterparty type").
			WithDetail("field", "type").
			WithDetail("value", string(c.Type))
	}
	if !isValidLegalForm(c.LegalForm) {
		return apperror.NewValidation("invalid legal form").
			WithDetail("field", "legalForm").
			WithDetail("value", string(c.LegalForm))
	}

	if c.INN != nil && *c.INN != "" {
		if err := validateINN(*c.INN, c.LegalForm); err != nil {
			return err
		}
	}
	if c.LegalForm == LegalCompany && c.KPP != nil && *c.KPP != "" && !kppRE.MatchString(*c.KPP) {
		return apperror.NewValidation("invalid KPP format (must be 9 digits)").
			WithDetail("field", "kpp")
	}
	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}
	return nil
}

// IsCustomer returns true if counterparty is a customer.
func (c *Counterparty) IsCustomer() bool {
	return c.Type == TypeCustomer || c.Type == TypeBoth
}

// IsSupplier returns true if counterparty is a supplier.
func (c *Counterparty) IsSupplier() bool {
	return c.Type == TypeSupplier || c.Type == TypeBoth
}

// INNLength returns the INN length required for form.
func INNLength(form LegalForm) int {
	switch form {
	case LegalIndividual, LegalSoleTrader:
		return 12
	default:
		return 10
	}
}

func isValidCounterpartyType(t CounterpartyType) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

func isValidLegalForm(f LegalForm) bool {
	for _, known := range LegalForms {
		if f == known {
			return true
		}
	}
	return false
}

func validateINN(inn string, form LegalForm) error {
	if len(inn) != INNLength(form) {
		return apperror.NewValidation("INN length does not match the legal form").
			WithDetail("field", "inn").
			WithDetail("legalForm", string(form))
	}
	if !digitsOnlyRE.MatchString(inn) {
		return apperror.NewValidation("INN must contain only digits").
			WithDetail("field", "inn")
	}
	return nil
}
