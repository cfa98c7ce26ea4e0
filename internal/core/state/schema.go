package state

import "sort"

// Field declares a single schema field: its merge reducer and an optional
// initial value used when the caller's initial state omits the field.
type Field struct {
	Reducer Reducer
	Initial any
}

// Schema declares the shape of the shared state: which fields exist and
// how each one merges incoming updates. A Schema is built once, before
// compiling a graph, and is read-only afterwards.
type Schema struct {
	fields map[string]Field
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{fields: make(map[string]Field)}
}

// AddField declares a field. A nil reducer means replace. Redeclaring a
// field overwrites the earlier declaration; builders call this before any
// graph compiles against the schema.
func (s *Schema) AddField(name string, r Reducer) *Schema {
	if r == nil {
		r = Replace()
	}
	s.fields[name] = Field{Reducer: r}
	return s
}

// AddFieldWithInitial declares a field with an initial value.
func (s *Schema) AddFieldWithInitial(name string, r Reducer, initial any) *Schema {
	if r == nil {
		r = Replace()
	}
	s.fields[name] = Field{Reducer: r, Initial: initial}
	return s
}

// Has reports whether the field is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Fields returns the declared field names in sorted order.
func (s *Schema) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Init validates the caller's initial state against the schema and
// produces the run's first snapshot. Declared fields missing from the
// input take their declared initial value.
func (s *Schema) Init(initial State) (State, error) {
	for name := range initial {
		if !s.Has(name) {
			return nil, &SchemaViolationError{Field: name}
		}
	}
	out := make(State, len(s.fields))
	for name, field := range s.fields {
		if field.Initial != nil {
			out[name] = field.Initial
		}
	}
	for name, value := range initial {
		out[name] = value
	}
	return out, nil
}

// Apply merges a partial update into the current snapshot and returns a
// new snapshot. For each field present in the update the field's reducer
// is invoked with (current, incoming); fields absent from the update are
// carried over unchanged. The current snapshot is never mutated.
//
// Referencing a field not declared in the schema is a SchemaViolationError;
// nothing is merged in that case.
func (s *Schema) Apply(current State, update Update) (State, error) {
	for name := range update {
		if !s.Has(name) {
			return nil, &SchemaViolationError{Field: name}
		}
	}
	next := current.Clone()
	for name, incoming := range update {
		next[name] = s.fields[name].Reducer.Reduce(current[name], incoming)
	}
	return next, nil
}
