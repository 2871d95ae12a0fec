package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"fakeseed/internal/core/apperror"
)

// Plan lists the entities to populate, in population order.
type Plan struct {
	Entities []PlanEntry `yaml:"entities"`
}

// PlanEntry is one population step.
type PlanEntry struct {
	Entity     string         `yaml:"entity"`
	Count      int            `yaml:"count"`
	GenerateID bool           `yaml:"generate_id"`
	Values     map[string]any `yaml:"values"`
}

// ValueNames returns the names of the literal overrides in sorted order.
func (e PlanEntry) ValueNames() []string {
	names := make([]string, 0, len(e.Values))
	for name := range e.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPlan seeds the demo catalogs: referenced entities come first.
func DefaultPlan() *Plan {
	return &Plan{Entities: []PlanEntry{
		{Entity: "currency", Count: 3},
		{Entity: "organization", Count: 1},
		{Entity: "unit", Count: 5},
		{Entity: "warehouse", Count: 3},
		{Entity: "counterparty", Count: 5},
		{Entity: "nomenclature", Count: 10},
	}}
}

// LoadPlan reads and validates the plan at path.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes and validates a YAML plan. Unknown keys are rejected.
func ParsePlan(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var plan Plan
	if err := dec.Decode(&plan); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperror.NewConfiguration("invalid plan").WithCause(err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks every entry.
func (p *Plan) Validate() error {
	if len(p.Entities) == 0 {
		return apperror.NewConfiguration("plan has no entities")
	}
	for i, e := range p.Entities {
		if e.Entity == "" {
			return apperror.NewConfiguration("plan entry has no entity name").WithDetail("index", i)
		}
		if e.Count < 0 {
			return apperror.NewConfiguration(fmt.Sprintf("negative count for %s", e.Entity)).
				WithDetail("entity", e.Entity).
				WithDetail("count", e.Count)
		}
	}
	return nil
}
