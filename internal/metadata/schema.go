// Package metadata describes entity types: their scalar fields, identifiers and
// associations, and how to read and write them on Go instances.
package metadata

// FieldType defines the declared scalar type of a field.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeText     FieldType = "text" // unbounded string
	TypeInteger  FieldType = "integer"
	TypeTinyInt  FieldType = "tinyint"
	TypeSmallInt FieldType = "smallint"
	TypeBigInt   FieldType = "bigint"
	TypeNumber   FieldType = "number" // float
	TypeMoney    FieldType = "money"  // decimal
	TypeBoolean  FieldType = "boolean"
	TypeDate     FieldType = "date"
	TypeUUID     FieldType = "uuid"
	TypeUnknown  FieldType = "unknown"
)

// AssociationKind defines the cardinality of an association.
type AssociationKind string

const (
	ManyToOne  AssociationKind = "many_to_one"
	OneToOne   AssociationKind = "one_to_one"
	OneToMany  AssociationKind = "one_to_many"
	ManyToMany AssociationKind = "many_to_many"
)

// FieldDef describes a scalar field.
type FieldDef struct {
	Name       string    `json:"name"`
	Column     string    `json:"column"`
	Type       FieldType `json:"type"`
	Length     int       `json:"length,omitempty"` // 0 means unconstrained
	Identifier bool      `json:"identifier,omitempty"`
	Nullable   bool      `json:"nullable,omitempty"`

	goName string
	index  []int
}

// AssociationDef describes a reference to another entity type.
type AssociationDef struct {
	Name     string          `json:"name"`
	Column   string          `json:"column,omitempty"` // foreign key column, single-valued only
	Target   string          `json:"target"`
	Kind     AssociationKind `json:"kind"`
	Optional bool            `json:"optional,omitempty"`

	// TargetIDType is the type of the referenced identifier (foreign key column type).
	TargetIDType FieldType `json:"targetIdType,omitempty"`

	index    []int
	targetID []int
}

// IsCollection reports whether the association holds many targets.
func (a AssociationDef) IsCollection() bool {
	return a.Kind == OneToMany || a.Kind == ManyToMany
}

// IsUnique reports whether each target may be referenced at most once.
func (a AssociationDef) IsUnique() bool {
	return a.Kind == OneToOne
}

// Schema is the read-only description of one entity type together with the
// accessors needed to build and persist its instances.
type Schema interface {
	EntityName() string
	TableName() string

	// Fields returns scalar fields in declaration order.
	Fields() []FieldDef
	Field(name string) (FieldDef, bool)
	HasField(name string) bool
	IsIdentifier(name string) bool
	Identifiers() []string

	// Associations returns associations in declaration order.
	Associations() []AssociationDef
	Association(name string) (AssociationDef, bool)

	// NewInstance allocates a blank instance (pointer to struct).
	NewInstance() any
	// SetFieldValue assigns a scalar field or a single-valued association by name.
	// A nil value assigns the zero value.
	SetFieldValue(instance any, name string, value any) error
	FieldValue(instance any, name string) (any, error)
	// Row maps column names to values for persistence. Single-valued associations
	// are written as the referenced instance's identifier.
	Row(instance any) (map[string]any, error)
}

// Provider resolves entity names to schemas.
type Provider interface {
	Schema(name string) (Schema, error)
}
