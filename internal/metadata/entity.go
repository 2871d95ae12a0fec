package metadata

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"fakeseed/internal/core/apperror"
)

// EntityDef is the reflection-backed Schema built by Inspect.
type EntityDef struct {
	name         string
	table        string
	typ          reflect.Type
	fields       []FieldDef
	associations []AssociationDef

	fieldIdx map[string]int
	assocIdx map[string]int
}

var _ Schema = (*EntityDef)(nil)

func (d *EntityDef) EntityName() string { return d.name }

func (d *EntityDef) TableName() string { return d.table }

func (d *EntityDef) Fields() []FieldDef { return d.fields }

func (d *EntityDef) Associations() []AssociationDef { return d.associations }

// GoType returns the struct type the definition was inspected from.
func (d *EntityDef) GoType() reflect.Type { return d.typ }

func (d *EntityDef) Field(name string) (FieldDef, bool) {
	i, ok := d.fieldIdx[name]
	if !ok {
		return FieldDef{}, false
	}
	return d.fields[i], true
}

func (d *EntityDef) Association(name string) (AssociationDef, bool) {
	i, ok := d.assocIdx[name]
	if !ok {
		return AssociationDef{}, false
	}
	return d.associations[i], true
}

// HasField reports whether name is a scalar field. Associations are not fields.
func (d *EntityDef) HasField(name string) bool {
	_, ok := d.fieldIdx[name]
	return ok
}

func (d *EntityDef) IsIdentifier(name string) bool {
	f, ok := d.Field(name)
	return ok && f.Identifier
}

func (d *EntityDef) Identifiers() []string {
	var ids []string
	for _, f := range d.fields {
		if f.Identifier {
			ids = append(ids, f.Name)
		}
	}
	return ids
}

func (d *EntityDef) NewInstance() any {
	return reflect.New(d.typ).Interface()
}

func (d *EntityDef) SetFieldValue(instance any, name string, value any) error {
	rv, err := d.structValue(instance)
	if err != nil {
		return err
	}

	var target reflect.Value
	if f, ok := d.Field(name); ok {
		target = rv.FieldByIndex(f.index)
	} else if a, ok := d.Association(name); ok && !a.IsCollection() {
		target = rv.FieldByIndex(a.index)
	} else {
		return apperror.NewUnknownField(d.name, name)
	}

	if !assign(target, value) {
		return apperror.NewInvalidValue(d.name, name, value)
	}
	return nil
}

func (d *EntityDef) FieldValue(instance any, name string) (any, error) {
	rv, err := d.structValue(instance)
	if err != nil {
		return nil, err
	}

	if f, ok := d.Field(name); ok {
		return scalarValue(rv.FieldByIndex(f.index)), nil
	}
	if a, ok := d.Association(name); ok {
		return rv.FieldByIndex(a.index).Interface(), nil
	}
	return nil, apperror.NewUnknownField(d.name, name)
}

func (d *EntityDef) Row(instance any) (map[string]any, error) {
	rv, err := d.structValue(instance)
	if err != nil {
		return nil, err
	}

	row := make(map[string]any, len(d.fields)+len(d.associations))
	for _, f := range d.fields {
		row[f.Column] = scalarValue(rv.FieldByIndex(f.index))
	}

	for _, a := range d.associations {
		if a.IsCollection() {
			continue
		}
		ref := rv.FieldByIndex(a.index)
		if ref.IsNil() {
			row[a.Column] = nil
			continue
		}
		row[a.Column] = scalarValue(ref.Elem().FieldByIndex(a.targetID))
	}

	return row, nil
}

// structValue checks that instance is a non-nil pointer to this definition's struct.
func (d *EntityDef) structValue(instance any) (reflect.Value, error) {
	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != d.typ {
		return reflect.Value{}, apperror.NewInvalidValue(d.name, "", instance).
			WithCause(fmt.Errorf("expected *%s, got %T", d.typ.Name(), instance))
	}
	return rv.Elem(), nil
}

// scalarValue unwraps pointer fields so stores see plain values or nil.
func scalarValue(v reflect.Value) any {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		return v.Elem().Interface()
	}
	return v.Interface()
}

// assign sets dst from value, allocating pointers and converting between
// compatible kinds (int -> int32, string -> named string type, ...).
// Scalars assigned to string fields are rendered as text.
func assign(dst reflect.Value, value any) bool {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return true
	}

	src := reflect.ValueOf(value)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return true
	}

	if dst.Kind() == reflect.Pointer && src.Kind() != reflect.Pointer {
		ptr := reflect.New(dst.Type().Elem())
		if !assign(ptr.Elem(), value) {
			return false
		}
		dst.Set(ptr)
		return true
	}

	if src.Kind() == reflect.Pointer && dst.Kind() != reflect.Pointer {
		if src.IsNil() {
			dst.Set(reflect.Zero(dst.Type()))
			return true
		}
		return assign(dst, src.Elem().Interface())
	}

	if dst.Kind() == reflect.String && src.Kind() != reflect.String {
		if s, ok := stringify(value); ok {
			dst.Set(reflect.ValueOf(s).Convert(dst.Type()))
			return true
		}
		return false
	}

	if isNumeric(src.Kind()) && isNumeric(dst.Kind()) {
		if overflows(dst, src) {
			return false
		}
		dst.Set(src.Convert(dst.Type()))
		return true
	}

	if sameFamily(src.Kind(), dst.Kind()) && src.Type().ConvertibleTo(dst.Type()) {
		dst.Set(src.Convert(dst.Type()))
		return true
	}

	return false
}

// overflows reports whether converting the number src to dst's type would change its value.
func overflows(dst, src reflect.Value) bool {
	switch {
	case isSigned(src.Kind()):
		n := src.Int()
		switch {
		case isSigned(dst.Kind()):
			return dst.OverflowInt(n)
		case isUnsigned(dst.Kind()):
			return n < 0 || dst.OverflowUint(uint64(n))
		}
		return false
	case isUnsigned(src.Kind()):
		n := src.Uint()
		switch {
		case isSigned(dst.Kind()):
			return n > math.MaxInt64 || dst.OverflowInt(int64(n))
		case isUnsigned(dst.Kind()):
			return dst.OverflowUint(n)
		}
		return false
	default:
		f := src.Float()
		switch {
		case isSigned(dst.Kind()):
			return f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || dst.OverflowInt(int64(f))
		case isUnsigned(dst.Kind()):
			return f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || dst.OverflowUint(uint64(f))
		}
		return dst.OverflowFloat(f)
	}
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// stringify renders scalar values for string fields.
func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339), true
	case fmt.Stringer:
		return v.String(), true
	}
	if k := reflect.TypeOf(value).Kind(); isNumeric(k) || k == reflect.Bool {
		return fmt.Sprint(value), true
	}
	return "", false
}

func sameFamily(a, b reflect.Kind) bool {
	switch {
	case isNumeric(a) && isNumeric(b):
		return true
	case a == reflect.String && b == reflect.String:
		return true
	case a == reflect.Bool && b == reflect.Bool:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
