package populate

// FormatterKind tells how a Formatter produces its value.
type FormatterKind int

const (
	// KindUnset is the zero Formatter; the field is skipped.
	KindUnset FormatterKind = iota
	// KindLiteral assigns a fixed value.
	KindLiteral
	// KindStateless calls a function of the insertion context and the partially filled instance.
	KindStateless
	// KindResolver asks a stateful Resolver for the next value.
	KindResolver
)

// Func computes a field value. instance is the instance being filled; fields earlier
// in the formatter order are already assigned.
type Func func(ic *InsertionContext, instance any) (any, error)

// Resolver produces successive values and may keep state between calls.
type Resolver interface {
	Resolve(ic *InsertionContext) (any, error)
}

// Formatter is the value-producing rule for one field.
type Formatter struct {
	kind     FormatterKind
	literal  any
	fn       Func
	resolver Resolver
}

// Literal returns a Formatter that always yields v. A nil v assigns the zero value.
func Literal(v any) Formatter {
	return Formatter{kind: KindLiteral, literal: v}
}

// Stateless returns a Formatter backed by fn.
func Stateless(fn Func) Formatter {
	return Formatter{kind: KindStateless, fn: fn}
}

// Generated adapts a value generator that needs no context.
func Generated(gen func() any) Formatter {
	return Stateless(func(*InsertionContext, any) (any, error) {
		return gen(), nil
	})
}

// StatefulResolver returns a Formatter backed by r.
func StatefulResolver(r Resolver) Formatter {
	return Formatter{kind: KindResolver, resolver: r}
}

func (f Formatter) Kind() FormatterKind { return f.kind }

func (f Formatter) IsZero() bool { return f.kind == KindUnset }

// Resolver returns the underlying resolver for KindResolver formatters.
func (f Formatter) Resolver() (Resolver, bool) {
	return f.resolver, f.kind == KindResolver
}

// Evaluate produces the field value. Errors from functions and resolvers are returned as is.
func (f Formatter) Evaluate(ic *InsertionContext, instance any) (any, error) {
	switch f.kind {
	case KindLiteral:
		return f.literal, nil
	case KindStateless:
		return f.fn(ic, instance)
	case KindResolver:
		return f.resolver.Resolve(ic)
	default:
		return nil, nil
	}
}

// Formatters is an insertion-ordered mapping from field name to Formatter.
// Fields are filled in this order.
type Formatters struct {
	names  []string
	byName map[string]Formatter
}

func NewFormatters() *Formatters {
	return &Formatters{byName: make(map[string]Formatter)}
}

// Set adds or replaces the formatter for name. A replaced entry keeps its position.
func (fs *Formatters) Set(name string, f Formatter) *Formatters {
	if _, ok := fs.byName[name]; !ok {
		fs.names = append(fs.names, name)
	}
	fs.byName[name] = f
	return fs
}

func (fs *Formatters) Get(name string) (Formatter, bool) {
	if fs == nil {
		return Formatter{}, false
	}
	f, ok := fs.byName[name]
	return f, ok
}

func (fs *Formatters) Delete(name string) {
	if _, ok := fs.byName[name]; !ok {
		return
	}
	delete(fs.byName, name)
	for i, n := range fs.names {
		if n == name {
			fs.names = append(fs.names[:i], fs.names[i+1:]...)
			break
		}
	}
}

// Names returns field names in order.
func (fs *Formatters) Names() []string {
	if fs == nil {
		return nil
	}
	return append([]string(nil), fs.names...)
}

func (fs *Formatters) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.names)
}

// Merge copies every entry of other into fs, overwriting same-named entries.
func (fs *Formatters) Merge(other *Formatters) *Formatters {
	for _, name := range other.Names() {
		fs.Set(name, other.byName[name])
	}
	return fs
}

// Clone returns a shallow copy. Resolvers are shared with the original.
func (fs *Formatters) Clone() *Formatters {
	return NewFormatters().Merge(fs)
}
