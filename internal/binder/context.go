// Package binder implements spec §4.2: resolving identifiers and
// expression trees against a schema environment, materializing derived
// columns, and assigning each node a stable column identity.
//
// Ported from opteryx/components/binder/binder.py (inner_binder,
// locate_identifier, merge_schemas), generalized per design note §9 to
// thread context explicitly rather than mutate the tree in place: Bind
// returns a new node and a new BindingContext rather than relying on
// Python's implicit object aliasing, removing the mutation-during-
// traversal hazard the source papers over with copy.deepcopy at merge
// time.
package binder

import (
	uuid "github.com/satori/go.uuid"

	"github.com/cascadedb/cascadeql/internal/functions"
	"github.com/cascadedb/cascadeql/internal/schema"
	"github.com/cascadedb/cascadeql/internal/stats"
	"github.com/cascadedb/cascadeql/internal/variables"
)

// Connection is the narrow handle to session state the binder needs (spec
// §3.4 "connection -- handle to session state (variable store)").
type Connection struct {
	Variables *variables.Store
}

// Context is the BindingContext of spec §3.4, threaded through binding.
type Context struct {
	Schemas    schema.Environment
	Connection *Connection
	Statistics *stats.QueryStatistics
	Functions  functions.Registry

	// QueryID identifies this bind/execute lifecycle. It is shared by the
	// context's clones; no log line or statistics record includes it.
	QueryID uuid.UUID
}

// NewContext returns a Context seeded with an empty (but $derived-bearing)
// schema environment and a fresh query identifier.
func NewContext(conn *Connection, fns functions.Registry) *Context {
	return &Context{
		Schemas:    schema.NewEnvironment(),
		Connection: conn,
		Statistics: stats.New(),
		Functions:  fns,
		QueryID:    uuid.NewV4(),
		// NewV4 in this version of satori/go.uuid returns a bare UUID
		// (no error); a rand.Reader failure would panic inside it, which
		// is acceptable here since it indicates a broken host entropy
		// source, not a recoverable query-level condition.
	}
}

// Clone returns a context with a deep-copied schema environment, sharing
// Connection/Statistics/Functions/QueryID (session-scoped, not per-bind-call
// state).
func (c *Context) Clone() *Context {
	return &Context{
		Schemas:    c.Schemas.Clone(),
		Connection: c.Connection,
		Statistics: c.Statistics,
		Functions:  c.Functions,
		QueryID:    c.QueryID,
	}
}
