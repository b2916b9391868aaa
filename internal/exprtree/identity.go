package exprtree

import (
	"strconv"

	"github.com/cespare/xxhash"
)

// Identity computes the stable 64-bit content-hash identity of spec §4.1,
// ported from opteryx's binder.hash_tree. The source uses CityHash64;
// CascadeQL grounds the same deterministic-hash role in cespare/xxhash
// (wired per SPEC_FULL.md's Domain Stack) since both are non-cryptographic,
// seed-free, stable-across-process 64-bit hashes and the algorithm only
// needs "a deterministic hash of a string", not a specific function.
//
// H = hash(format(node)) XOR inner(node)
func Identity(n *Node) string {
	h := hash64(Format(n)) ^ inner(n)
	return strconv.FormatUint(h, 16)
}

func inner(n *Node) uint64 {
	if n == nil {
		return 0
	}

	var h uint64
	if n.Left != nil {
		h ^= inner(n.Left)
	}
	if n.Right != nil {
		h ^= inner(n.Right)
	}
	if n.Centre != nil {
		h ^= inner(n.Centre)
	}
	for _, p := range n.Parameters {
		h ^= inner(p)
	}

	if h == 0 {
		switch {
		case n.Identity != "":
			return hash64(n.Identity)
		case n.SchemaColumn != nil:
			return hash64(n.SchemaColumn.Identity)
		case n.Value != "" || n.Literal.Kind != KindNull:
			return hash64(valueString(n))
		case n.NodeType == Wildcard:
			return hash64(n.Source + "*")
		}
	}
	return h
}

// valueString stringifies a node's opaque payload the way opteryx's
// `str(node.value)` does: operator/function nodes hash their Value string,
// literal nodes hash their formatted literal.
func valueString(n *Node) string {
	if n.NodeType == Literal {
		return formatLiteral(n.Literal)
	}
	return n.Value
}

func hash64(s string) uint64 {
	return xxhash.Sum64([]byte(s))
}
