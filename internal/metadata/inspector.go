package metadata

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"

	"fakeseed/internal/core/types"
)

// InspectOption customizes Inspect.
type InspectOption func(*EntityDef)

// WithName overrides the entity name (default: snake_case of the struct name).
func WithName(name string) InspectOption {
	return func(d *EntityDef) { d.name = name }
}

// WithTable overrides the table name (default: plural of the entity name).
func WithTable(table string) InspectOption {
	return func(d *EntityDef) { d.table = table }
}

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// Inspect analyzes a struct and returns its EntityDef.
//
// Recognized tags:
//
//	db:"column"     column name, "-" skips the field
//	json:"name"     field name (default: lowerCamel Go name)
//	meta:"..."      comma separated: id, nullable, optional, one_to_one, many_to_one,
//	                one_to_many, many_to_many, size=N, type=T, target=entity
//
// Pointers to structs are single-valued associations, slices of them are collections.
// A field named ID is the identifier unless some field is tagged meta:"id".
func Inspect(entity any, opts ...InspectOption) (*EntityDef, error) {
	t := reflect.TypeOf(entity)
	if t == nil {
		return nil, fmt.Errorf("inspect: nil entity")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("inspect: %s is not a struct", t)
	}

	def := &EntityDef{
		name:     toSnake(t.Name()),
		typ:      t,
		fieldIdx: make(map[string]int),
		assocIdx: make(map[string]int),
	}
	for _, opt := range opts {
		opt(def)
	}
	if def.table == "" {
		def.table = inflection.Plural(def.name)
	}

	if err := inspectStruct(t, nil, def); err != nil {
		return nil, fmt.Errorf("inspect %s: %w", def.name, err)
	}

	if len(def.Identifiers()) == 0 {
		for i := range def.fields {
			if def.fields[i].goName == "ID" {
				def.fields[i].Identifier = true
				break
			}
		}
	}

	return def, nil
}

// MustInspect is like Inspect but panics on error.
// Use only for statically known entity types.
func MustInspect(entity any, opts ...InspectOption) *EntityDef {
	def, err := Inspect(entity, opts...)
	if err != nil {
		panic(err)
	}
	return def
}

func inspectStruct(t reflect.Type, prefix []int, def *EntityDef) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int{}, prefix...), i)

		// Handle embedded structs (flattening)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := inspectStruct(field.Type, index, def); err != nil {
				return err
			}
			continue
		}

		if field.PkgPath != "" { // unexported
			continue
		}

		column := field.Tag.Get("db")
		if column == "-" {
			continue
		}
		tag := parseMetaTag(field.Tag.Get("meta"))
		name := jsonName(field)
		if name == "-" {
			continue
		}

		if elem, ok := associationTarget(field.Type); ok {
			assoc, err := buildAssociation(field, elem, name, column, tag, index)
			if err != nil {
				return err
			}
			if _, dup := def.assocIdx[name]; dup {
				return fmt.Errorf("duplicate association %q", name)
			}
			def.assocIdx[name] = len(def.associations)
			def.associations = append(def.associations, assoc)
			continue
		}

		fDef := FieldDef{
			Name:       name,
			Column:     column,
			Identifier: tag.flags["id"],
			Length:     tag.size,
			goName:     field.Name,
			index:      index,
		}
		if fDef.Column == "" {
			fDef.Column = toSnake(field.Name)
		}
		fDef.Type, fDef.Nullable = mapFieldType(field.Type)
		if tag.flags["nullable"] {
			fDef.Nullable = true
		}
		if tag.typ != "" {
			fDef.Type = tag.typ
		}

		if _, dup := def.fieldIdx[name]; dup {
			return fmt.Errorf("duplicate field %q", name)
		}
		def.fieldIdx[name] = len(def.fields)
		def.fields = append(def.fields, fDef)
	}
	return nil
}

func buildAssociation(field reflect.StructField, elem reflect.Type, name, column string, tag metaTag, index []int) (AssociationDef, error) {
	assoc := AssociationDef{
		Name:     name,
		Target:   tag.target,
		Optional: tag.flags["optional"] || tag.flags["nullable"],
		index:    index,
	}
	if assoc.Target == "" {
		assoc.Target = toSnake(elem.Name())
	}

	if field.Type.Kind() == reflect.Slice {
		assoc.Kind = OneToMany
		if tag.flags["many_to_many"] {
			assoc.Kind = ManyToMany
		}
		return assoc, nil
	}

	assoc.Kind = ManyToOne
	if tag.flags["one_to_one"] {
		assoc.Kind = OneToOne
	}
	assoc.Column = column
	if assoc.Column == "" {
		assoc.Column = toSnake(field.Name) + "_id"
	}

	targetID, ok := identifierIndex(elem)
	if !ok {
		return assoc, fmt.Errorf("association %q: target %s has no identifier", name, elem.Name())
	}
	assoc.targetID = targetID
	assoc.TargetIDType, _ = mapFieldType(elem.FieldByIndex(targetID).Type)
	return assoc, nil
}

// associationTarget reports whether t is *Struct or []*Struct / []Struct of an entity type.
func associationTarget(t reflect.Type) (reflect.Type, bool) {
	switch t.Kind() {
	case reflect.Pointer:
		if isEntityStruct(t.Elem()) {
			return t.Elem(), true
		}
	case reflect.Slice:
		elem := t.Elem()
		if elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		if isEntityStruct(elem) {
			return elem, true
		}
	}
	return nil, false
}

func isEntityStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t != timeType && t != uuidType && t != types.MoneyType
}

// identifierIndex finds the identifier of an association target without a full inspection,
// which keeps self-referencing types from recursing.
func identifierIndex(t reflect.Type) ([]int, bool) {
	var byName []int
	var walk func(t reflect.Type, prefix []int) []int
	walk = func(t reflect.Type, prefix []int) []int {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			index := append(append([]int{}, prefix...), i)
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				if found := walk(field.Type, index); found != nil {
					return found
				}
				continue
			}
			if field.PkgPath != "" {
				continue
			}
			if parseMetaTag(field.Tag.Get("meta")).flags["id"] {
				return index
			}
			if field.Name == "ID" && byName == nil {
				byName = index
			}
		}
		return nil
	}

	if found := walk(t, nil); found != nil {
		return found, true
	}
	return byName, byName != nil
}

func mapFieldType(t reflect.Type) (FieldType, bool) {
	nullable := false
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
		nullable = true
	}

	switch t {
	case uuidType:
		return TypeUUID, nullable
	case timeType:
		return TypeDate, nullable
	case types.MoneyType:
		return TypeMoney, nullable
	}

	switch t.Kind() {
	case reflect.String:
		return TypeString, nullable
	case reflect.Int8, reflect.Uint8:
		return TypeTinyInt, nullable
	case reflect.Int16, reflect.Uint16:
		return TypeSmallInt, nullable
	case reflect.Int, reflect.Int32, reflect.Uint, reflect.Uint32:
		return TypeInteger, nullable
	case reflect.Int64, reflect.Uint64:
		return TypeBigInt, nullable
	case reflect.Float32, reflect.Float64:
		return TypeNumber, nullable
	case reflect.Bool:
		return TypeBoolean, nullable
	default:
		return TypeUnknown, nullable
	}
}

type metaTag struct {
	flags  map[string]bool
	size   int
	typ    FieldType
	target string
}

func parseMetaTag(tag string) metaTag {
	mt := metaTag{flags: make(map[string]bool)}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		if !hasValue {
			mt.flags[key] = true
			continue
		}
		switch key {
		case "size":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				mt.size = n
			}
		case "type":
			mt.typ = FieldType(value)
		case "target":
			mt.target = value
		}
	}
	return mt
}

func jsonName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("json"); ok {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			return parts[0]
		}
	}
	return lowerCamel(field.Name)
}

// lowerCamel lowers the leading initialism: ID -> id, URLPath -> urlPath, FirstName -> firstName.
func lowerCamel(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == len(runes):
		return strings.ToLower(s)
	case n > 1:
		n-- // keep the start of the next word capitalized
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// toSnake converts CamelCase to snake_case: BaseUnitID -> base_unit_id.
func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
