package wizard

import "sort"

// Reader is the read side of a FieldStore. Custom checks receive one.
type Reader interface {
	Read(name string) Value
}

// FieldStore is the working copy of every field value in one wizard
// session, plus the failure message currently shown for each field.
type FieldStore struct {
	kinds  map[string]Kind
	values Values
	errors map[string]string
}

// NewFieldStore creates a store for fields with the given declared kinds,
// pre-populated with initial.
func NewFieldStore(kinds map[string]Kind, initial Values) *FieldStore {
	s := &FieldStore{kinds: kinds}
	s.Reset(initial)
	return s
}

// Update overwrites a field and clears its recorded failure. Values are
// converted to the declared kind; one that cannot be converted is stored
// as the kind's empty value, so presence validation reports it.
func (s *FieldStore) Update(name string, v Value) {
	if kind, ok := s.kinds[name]; ok {
		c, err := v.Coerce(kind)
		if err != nil {
			c = Empty(kind)
		}
		v = c
	}
	s.values[name] = v.Clone()
	delete(s.errors, name)
}

// Read returns the current value, or the empty default for the field's
// declared kind when it has never been set.
func (s *FieldStore) Read(name string) Value {
	if v, ok := s.values[name]; ok {
		return v.Clone()
	}
	return Empty(s.kinds[name])
}

// Has reports whether name has been written.
func (s *FieldStore) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Reset replaces all content with initial and clears every failure.
func (s *FieldStore) Reset(initial Values) {
	s.values = make(Values, len(initial))
	s.errors = make(map[string]string)
	for name, v := range initial {
		s.Update(name, v)
	}
}

// Snapshot returns a deep copy of every written field.
func (s *FieldStore) Snapshot() Values {
	return s.values.Clone()
}

// Names returns the written field names in sorted order.
func (s *FieldStore) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetError records a failure message for a field.
func (s *FieldStore) SetError(name, msg string) {
	s.errors[name] = msg
}

// ClearError removes the failure recorded for a field.
func (s *FieldStore) ClearError(name string) {
	delete(s.errors, name)
}

// Error returns the failure message for a field, or "".
func (s *FieldStore) Error(name string) string {
	return s.errors[name]
}

// Errors returns a copy of all recorded failures.
func (s *FieldStore) Errors() map[string]string {
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}
