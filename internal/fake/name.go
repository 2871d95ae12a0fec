package fake

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"fakeseed/internal/metadata"
)

var (
	boolPrefix = regexp.MustCompile(`^(is|has)[_A-Z]`)
	dateSuffix = regexp.MustCompile(`(_a|A)t$|(_d|D)ate$`)
)

// NameGuesser maps well-known field names to generators.
type NameGuesser struct {
	f *gofakeit.Faker
}

func NewNameGuesser(f *gofakeit.Faker) *NameGuesser {
	return &NameGuesser{f: f}
}

// GuessFormat returns a generator for field's name, or nil when the name is not
// known or its usual value does not fit the field's type. String results are cut
// to the field's length.
func (g *NameGuesser) GuessFormat(field metadata.FieldDef) Generator {
	gen, kind := g.byName(field.Name, field.Length)
	if gen == nil || !fits(kind, field.Type) {
		return nil
	}
	return limit(gen, field.Length)
}

func (g *NameGuesser) byName(name string, size int) (Generator, valueKind) {
	if boolPrefix.MatchString(name) {
		return func() any { return g.f.Bool() }, boolValue
	}
	if dateSuffix.MatchString(name) {
		return func() any { return pastDate(g.f, 10) }, dateValue
	}

	key := strings.ToLower(strings.ReplaceAll(name, "_", ""))
	switch key {
	case "latitude", "lat":
		return func() any { return g.f.Latitude() }, floatValue
	case "longitude", "lng", "lon":
		return func() any { return g.f.Longitude() }, floatValue
	case "uuid", "guid":
		return func() any { return uuid.MustParse(g.f.UUID()) }, uuidValue
	}
	return g.byKey(key, size), stringValue
}

// valueKind is the kind of value a name generator produces.
type valueKind int

const (
	stringValue valueKind = iota
	boolValue
	dateValue
	floatValue
	uuidValue
)

// fits reports whether values of kind can be assigned to a field of type t.
// Non-string values are rendered as text on string fields.
func fits(kind valueKind, t metadata.FieldType) bool {
	if t == metadata.TypeString || t == metadata.TypeText {
		return true
	}
	switch kind {
	case boolValue:
		return t == metadata.TypeBoolean
	case dateValue:
		return t == metadata.TypeDate
	case floatValue:
		return t == metadata.TypeNumber
	case uuidValue:
		return t == metadata.TypeUUID
	}
	return false
}

func (g *NameGuesser) byKey(key string, size int) Generator {
	f := g.f
	switch key {
	case "firstname":
		return func() any { return f.FirstName() }
	case "lastname":
		return func() any { return f.LastName() }
	case "name", "fullname":
		return func() any { return f.Name() }
	case "username", "login":
		return func() any { return f.Username() }
	case "email", "emailaddress":
		return func() any { return f.Email() }
	case "phone", "phonenumber", "telephone", "telnumber", "mobile":
		return func() any { return f.Phone() }
	case "address":
		return func() any { return f.Address().Address }
	case "streetaddress", "street":
		return func() any { return f.Street() }
	case "city", "town":
		return func() any { return f.City() }
	case "postcode", "zipcode", "zip":
		return func() any { return f.Zip() }
	case "state":
		return func() any { return f.State() }
	case "country":
		switch size {
		case 2:
			return func() any { return f.CountryAbr() }
		case 3:
			return func() any { return strings.ToUpper(f.Lexify("???")) }
		}
		return func() any { return f.Country() }
	case "currency", "currencycode":
		return func() any { return f.CurrencyShort() }
	case "url", "website":
		return func() any { return f.URL() }
	case "company", "companyname", "employer":
		return func() any { return f.Company() }
	case "jobtitle":
		return func() any { return f.JobTitle() }
	case "title":
		if size > 0 && size < 10 {
			return func() any { return f.NamePrefix() }
		}
		return func() any { return strings.TrimSuffix(f.Sentence(4), ".") }
	case "body", "summary", "description", "content":
		return func() any { return f.Paragraph(1, 3, 12, " ") }
	case "code", "sku", "article":
		return func() any { return strings.ToUpper(f.Lexify("???")) + "-" + f.Numerify("####") }
	case "barcode", "ean", "ean13":
		return func() any { return f.Numerify("#############") }
	case "color", "colour":
		return func() any { return f.HexColor() }
	case "ip", "ipaddress", "ipv4":
		return func() any { return f.IPv4Address() }
	}
	return nil
}

// limit wraps gen so string values never exceed size runes.
func limit(gen Generator, size int) Generator {
	if size <= 0 {
		return gen
	}
	return func() any {
		v := gen()
		if s, ok := v.(string); ok {
			return truncate(s, size)
		}
		return v
	}
}

func truncate(s string, size int) string {
	if utf8.RuneCountInString(s) <= size {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:size]))
}

func pastDate(f *gofakeit.Faker, years int) time.Time {
	now := time.Now().UTC()
	return f.DateRange(now.AddDate(-years, 0, 0), now)
}
