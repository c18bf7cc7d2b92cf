package serialization

import (
	"reflect"
	"sort"
)

// KnownTypeSet is an add-only set of types.
//
// Type identity is reflect.Type equality, so two tokens name the same type
// exactly when they describe the same Go type. A KnownTypeSet is not safe
// for concurrent mutation.
type KnownTypeSet struct {
	types map[reflect.Type]struct{}
}

func NewKnownTypeSet(types ...reflect.Type) *KnownTypeSet {
	s := &KnownTypeSet{types: make(map[reflect.Type]struct{}, len(types))}
	for _, t := range types {
		s.Add(t)
	}
	return s
}

// Add inserts t and reports whether it was new. Adding a nil type or a type
// already present is a no-op.
func (s *KnownTypeSet) Add(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if _, ok := s.types[t]; ok {
		return false
	}
	s.types[t] = struct{}{}
	return true
}

func (s *KnownTypeSet) Contains(t reflect.Type) bool {
	_, ok := s.types[t]
	return ok
}

// Union adds every type of other and returns how many were new.
func (s *KnownTypeSet) Union(other *KnownTypeSet) int {
	if other == nil || other == s {
		return 0
	}
	added := 0
	for t := range other.types {
		if s.Add(t) {
			added++
		}
	}
	return added
}

func (s *KnownTypeSet) Len() int {
	return len(s.types)
}

// ByName returns the known type whose element name is name. When types
// from different packages share the name, the first in Types order wins.
func (s *KnownTypeSet) ByName(name string) (reflect.Type, bool) {
	for _, t := range s.Types() {
		if typeName(t) == name {
			return t, true
		}
	}
	return nil, false
}

// Types returns the members ordered by their string form, then by package
// path.
func (s *KnownTypeSet) Types() []reflect.Type {
	out := make([]reflect.Type, 0, len(s.types))
	for t := range s.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if a, b := out[i].String(), out[j].String(); a != b {
			return a < b
		}
		return indirectType(out[i]).PkgPath() < indirectType(out[j]).PkgPath()
	})
	return out
}

func (s *KnownTypeSet) Clone() *KnownTypeSet {
	c := &KnownTypeSet{types: make(map[reflect.Type]struct{}, len(s.types))}
	for t := range s.types {
		c.types[t] = struct{}{}
	}
	return c
}

// typeName returns the element name used for t: the name of the type with
// pointers removed.
func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
