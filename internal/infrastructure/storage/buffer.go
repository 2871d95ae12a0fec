// Package storage holds the pieces shared by the SQL stores: the staging buffer
// that collects instances between flushes and the squirrel statement builders.
package storage

import (
	"fmt"
	"reflect"
	"sync"

	"fakeseed/internal/core/id"
	"fakeseed/internal/metadata"
)

// Record is one staged instance. Values is filled by Pending.Resolve when the
// record is about to be written, so association columns see identifiers the
// database assigned to earlier records.
type Record struct {
	Instance any
	Values   map[string]any
	// Generated lists identifier fields the database must assign on insert.
	Generated []metadata.FieldDef
}

// Pending groups the records staged for one entity, in stage order.
type Pending struct {
	Schema  metadata.Schema
	Records []Record
}

// Split separates records that carry every identifier from those waiting for
// database-assigned identifiers.
func (p *Pending) Split() (complete, returning []Record) {
	for _, r := range p.Records {
		if len(r.Generated) > 0 {
			returning = append(returning, r)
		} else {
			complete = append(complete, r)
		}
	}
	return complete, returning
}

// Resolve reads rec's column values from the instance's current state. Columns of
// generated identifiers are left out.
func (p *Pending) Resolve(rec *Record) error {
	values, err := p.Schema.Row(rec.Instance)
	if err != nil {
		return err
	}
	for _, field := range rec.Generated {
		delete(values, field.Column)
	}
	rec.Values = values
	return nil
}

// Write resolves and hands records to writeRows, for records that carry every
// identifier, and to writeReturning, for records waiting for database identifiers.
// writeReturning must write the assigned identifiers back onto the instances.
//
// When the entity references itself and some identifiers come from the database,
// records are written in stage order and resolved only after every earlier record
// is written, so references to them carry their assigned keys. Otherwise all
// complete records go first, in one call.
func (p *Pending) Write(writeRows, writeReturning func([]Record) error) error {
	complete, returning := p.Split()
	if len(returning) == 0 || !p.selfReferencing() {
		if err := p.resolveAll(complete); err != nil {
			return err
		}
		if len(complete) > 0 {
			if err := writeRows(complete); err != nil {
				return err
			}
		}
		if err := p.resolveAll(returning); err != nil {
			return err
		}
		if len(returning) > 0 {
			return writeReturning(returning)
		}
		return nil
	}

	var run []Record
	flushRun := func() error {
		if len(run) == 0 {
			return nil
		}
		if err := p.resolveAll(run); err != nil {
			return err
		}
		err := writeRows(run)
		run = nil
		return err
	}

	for _, rec := range p.Records {
		if len(rec.Generated) == 0 {
			run = append(run, rec)
			continue
		}
		if err := flushRun(); err != nil {
			return err
		}
		if err := p.Resolve(&rec); err != nil {
			return err
		}
		if err := writeReturning([]Record{rec}); err != nil {
			return err
		}
	}
	return flushRun()
}

func (p *Pending) resolveAll(records []Record) error {
	for i := range records {
		if err := p.Resolve(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

// selfReferencing reports whether the entity has a single-valued association to itself.
func (p *Pending) selfReferencing() bool {
	for _, a := range p.Schema.Associations() {
		if !a.IsCollection() && a.Target == p.Schema.EntityName() {
			return true
		}
	}
	return false
}

// Buffer collects staged instances until the next flush.
type Buffer struct {
	mu     sync.Mutex
	order  []string
	groups map[string]*Pending
	size   int
}

func NewBuffer() *Buffer {
	return &Buffer{groups: make(map[string]*Pending)}
}

// Add stages instance. Zero UUID identifiers get a fresh time-ordered UUID;
// other zero identifiers are left for the database to assign. Column values are
// read later, when the record is written.
func (b *Buffer) Add(schema metadata.Schema, instance any) error {
	if instance == nil {
		return fmt.Errorf("stage %s: nil instance", schema.EntityName())
	}

	var generated []metadata.FieldDef
	for _, name := range schema.Identifiers() {
		field, _ := schema.Field(name)
		value, err := schema.FieldValue(instance, name)
		if err != nil {
			return err
		}
		if !isZero(value) {
			continue
		}
		if field.Type == metadata.TypeUUID {
			if err := schema.SetFieldValue(instance, name, id.New()); err != nil {
				return err
			}
			continue
		}
		generated = append(generated, field)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	name := schema.EntityName()
	group, ok := b.groups[name]
	if !ok {
		group = &Pending{Schema: schema}
		b.groups[name] = group
		b.order = append(b.order, name)
	}
	group.Records = append(group.Records, Record{Instance: instance, Generated: generated})
	b.size++
	return nil
}

// Drain returns everything staged, grouped per entity in first-stage order, and
// empties the buffer.
func (b *Buffer) Drain() []*Pending {
	b.mu.Lock()
	defer b.mu.Unlock()

	pending := make([]*Pending, 0, len(b.order))
	for _, name := range b.order {
		pending = append(pending, b.groups[name])
	}
	b.order = nil
	b.groups = make(map[string]*Pending)
	b.size = 0
	return pending
}

// Discard empties the buffer and returns how many records it held.
func (b *Buffer) Discard() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.size
	b.order = nil
	b.groups = make(map[string]*Pending)
	b.size = 0
	return n
}

// Len returns the number of staged records.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

func isZero(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}

// ReturningDest allocates scan targets for the identifiers rec waits for.
func ReturningDest(rec Record) []any {
	dest := make([]any, len(rec.Generated))
	for i, f := range rec.Generated {
		if isIntegerType(f.Type) {
			dest[i] = new(int64)
		} else {
			dest[i] = new(string)
		}
	}
	return dest
}

// ApplyReturned writes identifiers scanned into dest back onto the instance.
func ApplyReturned(schema metadata.Schema, rec Record, dest []any) error {
	for i, f := range rec.Generated {
		value := reflect.ValueOf(dest[i]).Elem().Interface()
		if err := schema.SetFieldValue(rec.Instance, f.Name, value); err != nil {
			return err
		}
	}
	return nil
}
