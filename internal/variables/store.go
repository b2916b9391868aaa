// Package variables implements the session variable store of spec §6:
// "connection.variables.as_column(name) -> ConstantColumn" and
// "SetVariable(name, value) mutates this store".
//
// Grounded on set_variable_node.py (original_source, a supplemented
// feature: SetVariableNode mutates `parameters["variables"]` and returns a
// NonTabularResult) and on design note §9's instruction to thread session
// state through an explicit Engine/session handle rather than a process
// global.
package variables

import (
	"sync"

	"github.com/cascadedb/cascadeql/internal/exprtree"
	"github.com/cascadedb/cascadeql/internal/schema"
)

// Store is process-scoped per design note §9 but owned by a session, not a
// package-level global; spec §5 notes it is "single-threaded and may be
// mutated by a distinct SetVariable operator (one entry per statement)", so
// the mutex here only guards against accidental concurrent access, not
// against contention that's expected in the hot path.
type Store struct {
	mu   sync.Mutex
	vars map[string]exprtree.Value
}

// NewStore returns an empty variable store.
func NewStore() *Store {
	return &Store{vars: make(map[string]exprtree.Value)}
}

// Set mutates the store -- the SetVariable operator's sole effect (spec §6).
func (s *Store) Set(name string, value exprtree.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
}

// AsColumn returns a bound ConstantColumn for name, the counterpart of
// opteryx's `connection.variables.as_column`. ok is false if the variable is
// unset.
func (s *Store) AsColumn(name string) (*schema.Column, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[name]
	if !ok {
		return nil, false
	}
	return schema.NewConstantColumn(name, name, domainTypeOf(v), v, nil), true
}

func domainTypeOf(v exprtree.Value) exprtree.DomainType {
	switch v.Kind {
	case exprtree.KindBool:
		return exprtree.TypeBoolean
	case exprtree.KindI64:
		return exprtree.TypeInteger
	case exprtree.KindF64:
		return exprtree.TypeFloat
	case exprtree.KindString:
		return exprtree.TypeVarchar
	case exprtree.KindTimestamp:
		return exprtree.TypeTimestamp
	case exprtree.KindInterval:
		return exprtree.TypeInterval
	default:
		return exprtree.TypeUnknown
	}
}
