package functions

import "strings"

// RegisterStringFunctions installs STARTS_WITH/ENDS_WITH/SEARCH, the three
// functions the predicate rewriter (spec §4.3) rewrites LIKE/ILIKE
// expressions into. They must exist in the registry before the binder sees
// a rewritten FUNCTION node, or binding would fail with
// FunctionNotFoundError.
func RegisterStringFunctions(r Registry) {
	r.Register("STARTS_WITH", func(args ...any) (any, error) {
		s, prefix, ignoreCase := stringArgs(args)
		if ignoreCase {
			return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix)), nil
		}
		return strings.HasPrefix(s, prefix), nil
	})

	r.Register("ENDS_WITH", func(args ...any) (any, error) {
		s, suffix, ignoreCase := stringArgs(args)
		if ignoreCase {
			return strings.HasSuffix(strings.ToLower(s), strings.ToLower(suffix)), nil
		}
		return strings.HasSuffix(s, suffix), nil
	})

	r.Register("SEARCH", func(args ...any) (any, error) {
		s, needle, ignoreCase := stringArgs(args)
		if ignoreCase {
			return strings.Contains(strings.ToLower(s), strings.ToLower(needle)), nil
		}
		return strings.Contains(s, needle), nil
	})
}

func stringArgs(args []any) (s, other string, ignoreCase bool) {
	if len(args) > 0 {
		if v, ok := args[0].(string); ok {
			s = v
		}
	}
	if len(args) > 1 {
		if v, ok := args[1].(string); ok {
			other = v
		}
	}
	if len(args) > 2 {
		if v, ok := args[2].(bool); ok {
			ignoreCase = v
		}
	}
	return
}
