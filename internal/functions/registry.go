// Package functions implements the flat function/aggregator registries of
// spec §6: "A single flat mapping from function/aggregator name (uppercase)
// to callable descriptor." Design note §9 calls for keeping scalar
// functions and aggregators in two registries sharing one lookup key
// (node_type disambiguates which one applies) rather than fusing them the
// way the source does.
package functions

import (
	"strings"

	"github.com/cascadedb/cascadeql/internal/errors"
	"github.com/cascadedb/cascadeql/internal/suggest"
)

// Callable is the signature every registered scalar function or aggregator
// implements: it evaluates over one or more input columns and produces one
// output column. Args/result are left abstract ([]any in, any out) at the
// registry layer; the morsel/exec layers supply concrete Arrow-backed
// adapters, the same separation the teacher keeps between sql.Function and
// its Eval-time column vectors.
type Callable func(args ...any) (any, error)

// Descriptor names and binds a registry entry; it is the FunctionBinding the
// schema package's FunctionColumn stores (schema.FunctionBinding).
type Descriptor struct {
	FuncName string
	Fn       Callable
}

// Name implements schema.FunctionBinding.
func (d *Descriptor) Name() string { return d.FuncName }

// Registry is a flat, case-insensitive name -> Descriptor map.
type Registry map[string]*Descriptor

// NewRegistry returns an empty registry.
func NewRegistry() Registry {
	return make(Registry)
}

// Register adds fn under the uppercased name (spec §6: "name (uppercase)").
func (r Registry) Register(name string, fn Callable) {
	r[strings.ToUpper(name)] = &Descriptor{FuncName: strings.ToUpper(name), Fn: fn}
}

// Lookup resolves name, returning FunctionNotFoundError with a nearest-name
// suggestion on miss (binder §4.2 step 6).
func (r Registry) Lookup(name string) (*Descriptor, error) {
	if d, ok := r[strings.ToUpper(name)]; ok {
		return d, nil
	}
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	return nil, errors.FunctionNotFound(name, suggest.Nearest(name, names))
}

// Combined merges scalarFns and aggregateFns into one lookup surface, the
// COMBINED_FUNCTIONS map binder.py builds at import time
// (`{**FUNCTIONS, **AGGREGATORS}`), used only for the single binder lookup
// where node_type alone decides which table actually owns the name.
func Combined(scalarFns, aggregateFns Registry) Registry {
	out := make(Registry, len(scalarFns)+len(aggregateFns))
	for k, v := range scalarFns {
		out[k] = v
	}
	for k, v := range aggregateFns {
		out[k] = v
	}
	return out
}
