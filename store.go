package tir

import (
	"bytes"
	"fmt"

	"github.com/benbjohnson/immutable"
)

// Store represents the program state: an immutable mapping of variable
// names to values. Every update returns a new store and leaves the receiver
// untouched, so stores can be shared freely between evaluations.
//
// The zero value and a nil *Store are both valid empty stores.
type Store struct {
	m *immutable.SortedMap
}

// NewStore returns a new, empty store.
func NewStore() *Store {
	return &Store{m: immutable.NewSortedMap(&stringComparer{})}
}

// NewStoreFrom returns a new store holding the given bindings.
func NewStoreFrom(bindings map[string]*ConstantExpr) *Store {
	s := NewStore()
	for name, value := range bindings {
		s = s.Set(name, value)
	}
	return s
}

// Len returns the number of bound variables.
func (s *Store) Len() int {
	if s == nil || s.m == nil {
		return 0
	}
	return s.m.Len()
}

// Get returns the value bound to name.
func (s *Store) Get(name string) (*ConstantExpr, bool) {
	if s == nil || s.m == nil {
		return nil, false
	}
	v, ok := s.m.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*ConstantExpr), true
}

// Lookup returns the value bound to name or an unbound variable error.
func (s *Store) Lookup(name string) (*ConstantExpr, error) {
	v, ok := s.Get(name)
	if !ok {
		return nil, &VarError{Name: name, Err: ErrUnboundVariable}
	}
	return v, nil
}

// Set returns a new store with name bound to value, replacing any prior binding.
func (s *Store) Set(name string, value *ConstantExpr) *Store {
	assert(value != nil, "store: nil value: %s", name)
	m := s.sortedMap()
	return &Store{m: m.Set(name, value)}
}

// Delete returns a new store without a binding for name.
func (s *Store) Delete(name string) *Store {
	return &Store{m: s.sortedMap().Delete(name)}
}

func (s *Store) sortedMap() *immutable.SortedMap {
	if s == nil || s.m == nil {
		return immutable.NewSortedMap(&stringComparer{})
	}
	return s.m
}

// ForEach calls fn for every binding in name order.
func (s *Store) ForEach(fn func(name string, value *ConstantExpr)) {
	if s.Len() == 0 {
		return
	}
	itr := s.m.Iterator()
	for itr.First(); !itr.Done(); {
		k, v := itr.Next()
		fn(k.(string), v.(*ConstantExpr))
	}
}

// Names returns the bound variable names in sorted order.
func (s *Store) Names() []string {
	a := make([]string, 0, s.Len())
	s.ForEach(func(name string, _ *ConstantExpr) { a = append(a, name) })
	return a
}

// Map returns the bindings as a regular map.
func (s *Store) Map() map[string]*ConstantExpr {
	m := make(map[string]*ConstantExpr, s.Len())
	s.ForEach(func(name string, value *ConstantExpr) { m[name] = value })
	return m
}

// Equal returns true if both stores bind the same names to structurally
// equal values.
func (s *Store) Equal(other *Store) bool {
	if s.Len() != other.Len() {
		return false
	}

	equal := true
	s.ForEach(func(name string, value *ConstantExpr) {
		if v, ok := other.Get(name); !ok || compareConstantExpr(value, v) != 0 {
			equal = false
		}
	})
	return equal
}

// String returns the bindings in name order, e.g. "{x: (i64 1), y: (i64 2)}".
func (s *Store) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	s.ForEach(func(name string, value *ConstantExpr) {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %s", name, value)
		i++
	})
	buf.WriteByte('}')
	return buf.String()
}

// Dump returns the contents of the store with one binding per line.
func (s *Store) Dump() string {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "STORE")
	fmt.Fprintln(&buf, "=====")
	s.ForEach(func(name string, value *ConstantExpr) {
		fmt.Fprintf(&buf, "%s = %s\n", name, value)
	})
	return buf.String()
}

// stringComparer compares two strings. Implements immutable.Comparer.
type stringComparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b, and
// returns 0 if a is equal to b. Panic if a or b is not a string.
func (c *stringComparer) Compare(a, b interface{}) int {
	if i, j := a.(string), b.(string); i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}
