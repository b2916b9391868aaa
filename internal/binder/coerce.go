package binder

import (
	"github.com/spf13/cast"

	"github.com/cascadedb/cascadeql/internal/exprtree"
)

// coerceTo converts v to the domain type want when it doesn't already match,
// using spf13/cast for the underlying conversions. This covers the case
// noted in design note §9: a session variable is stored under whatever type
// its SET statement produced, but the identifier referencing it may appear
// in a position that expects a different type (e.g. a string variable used
// where an integer is expected). ok is false if want is unknown or the
// conversion isn't one cast supports; callers leave v unchanged in that case
// rather than fail binding over a coercion that downstream evaluation may
// not even need.
func coerceTo(v exprtree.Value, want exprtree.DomainType) (exprtree.Value, bool) {
	if want == exprtree.TypeUnknown || domainTypeOfValue(v) == want {
		return v, false
	}

	switch want {
	case exprtree.TypeInteger:
		i, err := cast.ToInt64E(scalarOf(v))
		if err != nil {
			return v, false
		}
		return exprtree.Value{Kind: exprtree.KindI64, I64: i}, true

	case exprtree.TypeFloat:
		f, err := cast.ToFloat64E(scalarOf(v))
		if err != nil {
			return v, false
		}
		return exprtree.Value{Kind: exprtree.KindF64, F64: f}, true

	case exprtree.TypeVarchar:
		s, err := cast.ToStringE(scalarOf(v))
		if err != nil {
			return v, false
		}
		return exprtree.Value{Kind: exprtree.KindString, Str: s}, true

	case exprtree.TypeBoolean:
		b, err := cast.ToBoolE(scalarOf(v))
		if err != nil {
			return v, false
		}
		return exprtree.Value{Kind: exprtree.KindBool, Bool: b}, true

	default:
		return v, false
	}
}

// scalarOf unwraps a Value to the plain Go value cast's ToXxxE functions
// expect.
func scalarOf(v exprtree.Value) interface{} {
	switch v.Kind {
	case exprtree.KindBool:
		return v.Bool
	case exprtree.KindI64:
		return v.I64
	case exprtree.KindF64:
		return v.F64
	case exprtree.KindString:
		return v.Str
	case exprtree.KindBytes:
		return string(v.Bytes)
	default:
		return nil
	}
}

func domainTypeOfValue(v exprtree.Value) exprtree.DomainType {
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
