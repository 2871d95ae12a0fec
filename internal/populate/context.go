package populate

// InsertionContext accumulates the instances created during a run, per entity,
// in insertion order.
type InsertionContext struct {
	order []string
	items map[string][]any
}

func NewInsertionContext() *InsertionContext {
	return &InsertionContext{items: make(map[string][]any)}
}

// Append records instance as the latest created instance of entity.
func (ic *InsertionContext) Append(entity string, instance any) {
	if _, ok := ic.items[entity]; !ok {
		ic.order = append(ic.order, entity)
	}
	ic.items[entity] = append(ic.items[entity], instance)
}

// Get returns the instances of entity in insertion order. The slice must not be modified.
func (ic *InsertionContext) Get(entity string) []any {
	if ic == nil {
		return nil
	}
	return ic.items[entity]
}

func (ic *InsertionContext) Len(entity string) int {
	return len(ic.Get(entity))
}

// Entities returns entity names in the order their first instance was appended.
func (ic *InsertionContext) Entities() []string {
	if ic == nil {
		return nil
	}
	return append([]string(nil), ic.order...)
}

// Total returns the number of instances across all entities.
func (ic *InsertionContext) Total() int {
	if ic == nil {
		return 0
	}
	n := 0
	for _, items := range ic.items {
		n += len(items)
	}
	return n
}
