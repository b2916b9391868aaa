package schema

import (
	"github.com/cascadedb/cascadeql/internal/errors"
)

// DerivedRelationName is the synthetic relation spec §3.2 invariant (iii)
// requires to always exist in the environment: "$derived always exists ...
// and accumulates columns created during binding".
const DerivedRelationName = "$derived"

// SharedRelationPrefix marks broadcast/shared relations (spec §2:
// "$shared*"), visible to identifier resolution regardless of the
// requested source (binder §4.2.1 step 1).
const SharedRelationPrefix = "$shared"

// RelationSchema is an ordered collection of column descriptors plus a name
// (spec §3.2).
type RelationSchema struct {
	Name    string
	Columns []*Column
}

// NewRelationSchema returns an empty schema for the given relation name.
func NewRelationSchema(name string) *RelationSchema {
	return &RelationSchema{Name: name}
}

// Clone returns a deep copy: the schema struct and its column slice are
// copied (columns themselves are value-distinct so mutating one schema's
// copy -- e.g. appending an alias -- never reaches back into the source,
// matching binder §4.2.2 "if the key is new, copy the schema (deep)").
func (s *RelationSchema) Clone() *RelationSchema {
	cols := make([]*Column, len(s.Columns))
	for i, c := range s.Columns {
		cc := *c
		cols[i] = &cc
	}
	return &RelationSchema{Name: s.Name, Columns: cols}
}

// FindColumn returns the column named name (matching Name or any alias), or
// nil if absent.
func (s *RelationSchema) FindColumn(name string) *Column {
	for _, c := range s.Columns {
		if c.HasName(name) {
			return c
		}
	}
	return nil
}

// FindByIdentity returns the column with the given identity, or nil.
func (s *RelationSchema) FindByIdentity(identity string) *Column {
	for _, c := range s.Columns {
		if c.Identity == identity {
			return c
		}
	}
	return nil
}

// AllColumnNames returns every Name/alias across every column, used to
// compute the nearest-name suggestion on a failed lookup (binder §4.2.1
// step 4).
func (s *RelationSchema) AllColumnNames() []string {
	var names []string
	for _, c := range s.Columns {
		names = append(names, c.AllNames()...)
	}
	return names
}

// Append appends a column.
func (s *RelationSchema) Append(c *Column) {
	s.Columns = append(s.Columns, c)
}

// ReplaceByIdentity removes any column sharing c's identity and appends c in
// its place (binder §4.2 step 6: "recreate it as a flat column with a
// preserved identity, replace the entry in $derived").
func (s *RelationSchema) ReplaceByIdentity(c *Column) {
	kept := s.Columns[:0:0]
	for _, existing := range s.Columns {
		if existing.Identity != c.Identity {
			kept = append(kept, existing)
		}
	}
	kept = append(kept, c)
	s.Columns = kept
}

// UnionWith merges other into s "by the set-union by identity" (spec §3.2
// invariant iv), returning a new schema and leaving both inputs untouched.
func (s *RelationSchema) UnionWith(other *RelationSchema) *RelationSchema {
	merged := s.Clone()
	seen := make(map[string]struct{}, len(merged.Columns))
	shapes := make(map[uint64]struct{}, len(merged.Columns))
	for _, c := range merged.Columns {
		seen[c.Identity] = struct{}{}
		if h, err := c.StructuralHash(); err == nil {
			shapes[h] = struct{}{}
		}
	}
	for _, c := range other.Columns {
		if _, ok := seen[c.Identity]; ok {
			continue
		}
		if h, err := c.StructuralHash(); err == nil {
			if _, dup := shapes[h]; dup {
				continue
			}
			shapes[h] = struct{}{}
		}
		cc := *c
		merged.Columns = append(merged.Columns, &cc)
		seen[c.Identity] = struct{}{}
	}
	return merged
}

// Environment is the schema environment of spec §2: a mapping from relation
// name to relation schema. NewEnvironment always seeds $derived, per
// invariant (iii).
type Environment map[string]*RelationSchema

// NewEnvironment returns an environment containing only the ever-present
// $derived relation.
func NewEnvironment() Environment {
	return Environment{DerivedRelationName: NewRelationSchema(DerivedRelationName)}
}

// Clone deep-copies the environment (every contained schema is cloned too).
func (e Environment) Clone() Environment {
	out := make(Environment, len(e))
	for k, v := range e {
		out[k] = v.Clone()
	}
	return out
}

// MergeSchemas implements binder §4.2.2: for each input mapping, if the key
// is new, copy the schema (deep); if it exists, union the two schemas by
// column identity. It accepts environments rather than untyped maps because
// Go's type system already rules out "a non-schema value under a key" --
// the one case binder.merge_schemas defends against with
// InvalidInternalStateError -- but a degenerate nil entry is still checked
// explicitly since callers can construct one.
func MergeSchemas(envs ...Environment) (Environment, error) {
	merged := make(Environment)
	for _, env := range envs {
		for key, value := range env {
			if value == nil {
				return nil, errors.InvalidInternalState("merge_schemas received a nil schema for relation " + key)
			}
			if existing, ok := merged[key]; ok {
				merged[key] = existing.UnionWith(value)
			} else {
				merged[key] = value.Clone()
			}
		}
	}
	return merged, nil
}

// CandidateSchemas implements binder §4.2.1 step 1: schemas whose key
// equals source, or that start with "$shared"; or, if source is empty, all
// schemas.
func (e Environment) CandidateSchemas(source string) Environment {
	if source == "" {
		return e
	}
	out := make(Environment)
	for name, s := range e {
		if name == source || hasSharedPrefix(name) {
			out[name] = s
		}
	}
	return out
}

func hasSharedPrefix(name string) bool {
	return len(name) >= len(SharedRelationPrefix) && name[:len(SharedRelationPrefix)] == SharedRelationPrefix
}
