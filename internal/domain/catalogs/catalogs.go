// Package catalogs wires the demo reference catalogs into a population run.
//
// Register adds their schemas; Formatters and Modifiers layer domain rules
// over the guessed generators so every seeded row passes Validate.
package catalogs

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"fakeseed/internal/core/entity"
	"fakeseed/internal/core/numerator"
	"fakeseed/internal/core/types"
	"fakeseed/internal/domain/catalogs/counterparty"
	"fakeseed/internal/domain/catalogs/currency"
	"fakeseed/internal/domain/catalogs/nomenclature"
	"fakeseed/internal/domain/catalogs/organization"
	"fakeseed/internal/domain/catalogs/unit"
	"fakeseed/internal/domain/catalogs/warehouse"
	"fakeseed/internal/metadata"
	"fakeseed/internal/populate"
)

// Entity names.
const (
	Currency     = "currency"
	Organization = "organization"
	Unit         = "unit"
	Warehouse    = "warehouse"
	Counterparty = "counterparty"
	Nomenclature = "nomenclature"
)

var codePrefixes = map[string]string{
	Currency:     "CUR",
	Organization: "ORG",
	Unit:         "UOM",
	Warehouse:    "WH",
	Counterparty: "CP",
	Nomenclature: "NOM",
}

// CodeConfig returns how codes of the entity named name are numbered.
// Codes fit the 9 characters of entity.Catalog.Code.
func CodeConfig(name string) numerator.Config {
	prefix, ok := codePrefixes[name]
	if !ok {
		prefix = strings.ToUpper(name[:min(3, len(name))])
	}
	return numerator.DefaultConfig(prefix)
}

// Register adds every catalog to reg, referenced catalogs first.
func Register(reg *metadata.Registry) {
	reg.MustRegister(&currency.Currency{})
	reg.MustRegister(&organization.Organization{})
	reg.MustRegister(&unit.Unit{})
	reg.MustRegister(&warehouse.Warehouse{})
	reg.MustRegister(&counterparty.Counterparty{})
	reg.MustRegister(&nomenclature.Nomenclature{})
}

var (
	currencySymbols = []string{"$", "€", "£", "¥", "₽", "₸", "zł", "kr"}
	unitSymbols     = map[unit.UnitType][]string{
		unit.TypePiece:  {"pcs", "ea"},
		unit.TypeWeight: {"kg", "g", "t"},
		unit.TypeLength: {"m", "cm", "mm"},
		unit.TypeArea:   {"m2", "cm2"},
		unit.TypeVolume: {"l", "ml", "m3"},
		unit.TypeTime:   {"h", "min", "s"},
		unit.TypePack:   {"box", "pack"},
	}
)

// Formatters returns the domain formatters of the entity named name. Fields not
// listed keep their guessed formatter.
func Formatters(name string, f *gofakeit.Faker) *populate.Formatters {
	fs := populate.NewFormatters().
		Set("deletionMark", populate.Literal(false)).
		Set("isFolder", populate.Literal(false))

	switch name {
	case Currency:
		fs.Set("name", populate.Generated(func() any { return f.CurrencyLong() })).
			Set("isoCode", populate.Generated(func() any { return f.CurrencyShort() })).
			Set("isoNumericCode", populate.Generated(func() any { return f.Numerify("###") })).
			Set("symbol", pick(f, currencySymbols)).
			Set("decimalPlaces", populate.Literal(int16(2)))

	case Organization:
		fs.Set("name", populate.Generated(func() any { return f.Company() })).
			Set("fullName", populate.Stateless(func(_ *populate.InsertionContext, instance any) (any, error) {
				return fmt.Sprintf("%s %s", instance.(*organization.Organization).Name, f.CompanySuffix()), nil
			})).
			Set("inn", populate.Generated(func() any { return f.Numerify("##########") })).
			Set("kpp", populate.Generated(func() any { return f.Numerify("#########") }))

	case Unit:
		fs.Set("type", pick(f, unit.Types)).
			Set("symbol", populate.Stateless(func(_ *populate.InsertionContext, instance any) (any, error) {
				symbols := unitSymbols[instance.(*unit.Unit).Type]
				if len(symbols) == 0 {
					return nil, nil
				}
				return symbols[f.IntRange(0, len(symbols)-1)], nil
			})).
			Set("conversionFactor", populate.Generated(func() any {
				return types.NewMoney(f.Float64Range(0.001, 1000), 3)
			}))

	case Warehouse:
		fs.Set("name", populate.Generated(func() any { return f.City() + " warehouse" })).
			Set("type", pick(f, warehouse.Types)).
			Set("isActive", populate.Literal(true))

	case Counterparty:
		fs.Set("name", populate.Generated(func() any { return f.Company() })).
			Set("type", pick(f, counterparty.Types)).
			Set("legalForm", pick(f, counterparty.LegalForms)).
			Set("inn", populate.Stateless(func(_ *populate.InsertionContext, instance any) (any, error) {
				n := counterparty.INNLength(instance.(*counterparty.Counterparty).LegalForm)
				return f.Numerify(strings.Repeat("#", n)), nil
			})).
			Set("kpp", populate.Generated(func() any { return f.Numerify("#########") })).
			Set("ogrn", populate.Generated(func() any { return f.Numerify("#############") })).
			Set("legalAddress", populate.Generated(func() any { return f.Address().Address })).
			Set("actualAddress", populate.Generated(func() any { return f.Address().Address })).
			Set("contactPerson", populate.Generated(func() any { return f.Name() }))

	case Nomenclature:
		fs.Set("name", populate.Generated(func() any { return f.ProductName() })).
			Set("type", pick(f, nomenclature.Types)).
			Set("vatRate", pick(f, nomenclature.VATRates)).
			Set("weight", populate.Generated(func() any { return types.NewMoney(f.Float64Range(0, 50), 3) })).
			Set("volume", populate.Generated(func() any { return types.NewMoney(f.Float64Range(0, 2), 3) }))
	}
	return fs
}

// Modifiers returns the modifiers of the entity named name. The last one always
// validates the instance.
func Modifiers(name string) []populate.Modifier {
	var modifiers []populate.Modifier

	switch name {
	case Currency:
		modifiers = append(modifiers, func(instance any, ic *populate.InsertionContext) error {
			instance.(*currency.Currency).IsBase = ic.Len(Currency) == 0
			return nil
		})
	case Organization:
		modifiers = append(modifiers, func(instance any, ic *populate.InsertionContext) error {
			instance.(*organization.Organization).IsDefault = ic.Len(Organization) == 0
			return nil
		})
	case Unit:
		modifiers = append(modifiers, firstUnitOfTypeIsBase, func(instance any, _ *populate.InsertionContext) error {
			u := instance.(*unit.Unit)
			u.Name = fmt.Sprintf("%s, %s", u.Symbol, u.Type)
			return nil
		})
	case Warehouse:
		modifiers = append(modifiers, func(instance any, ic *populate.InsertionContext) error {
			instance.(*warehouse.Warehouse).IsDefault = ic.Len(Warehouse) == 0
			return nil
		})
	case Nomenclature:
		modifiers = append(modifiers, func(instance any, _ *populate.InsertionContext) error {
			n := instance.(*nomenclature.Nomenclature)
			if !n.IsPhysical() {
				n.IsWeighed, n.TrackSerial, n.TrackBatch = false, false, false
			}
			return nil
		})
	}

	return append(modifiers, validate)
}

// firstUnitOfTypeIsBase makes the first unit of each type the base unit.
func firstUnitOfTypeIsBase(instance any, ic *populate.InsertionContext) error {
	u := instance.(*unit.Unit)
	for _, prev := range ic.Get(Unit) {
		if prev.(*unit.Unit).Type == u.Type {
			u.IsBase = false
			return nil
		}
	}
	u.IsBase = true
	u.ConversionFactor = types.NewMoney(1, 0)
	return nil
}

func validate(instance any, _ *populate.InsertionContext) error {
	if v, ok := instance.(entity.Validatable); ok {
		return v.Validate()
	}
	return nil
}

func pick[T ~string](f *gofakeit.Faker, values []T) populate.Formatter {
	return populate.Generated(func() any {
		return values[f.IntRange(0, len(values)-1)]
	})
}
