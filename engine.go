// CascadeQL compiles a bound logical plan into a streaming pipeline of
// morsel-streaming operators. Parsing SQL text into that plan is out of
// scope (spec.md Non-goals: "the SQL parser" is an external collaborator);
// Engine wires everything downstream of it -- binder, predicate rewriter,
// async scan, single-key hash join -- behind one session-scoped handle, the
// way the teacher's engine.go (package sqle) wires its analyzer, catalog
// and session builder behind one sqle.Engine.
package cascadeql

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cascadedb/cascadeql/internal/binder"
	"github.com/cascadedb/cascadeql/internal/catalog"
	"github.com/cascadedb/cascadeql/internal/config"
	"github.com/cascadedb/cascadeql/internal/exec"
	"github.com/cascadedb/cascadeql/internal/exprtree"
	"github.com/cascadedb/cascadeql/internal/functions"
	"github.com/cascadedb/cascadeql/internal/join"
	"github.com/cascadedb/cascadeql/internal/morsel"
	"github.com/cascadedb/cascadeql/internal/pool"
	"github.com/cascadedb/cascadeql/internal/rewrite"
	"github.com/cascadedb/cascadeql/internal/schema"
	"github.com/cascadedb/cascadeql/internal/scan"
	"github.com/cascadedb/cascadeql/internal/stats"
	"github.com/cascadedb/cascadeql/internal/variables"
)

// Engine is the top-level handle a CascadeQL host process constructs once
// and shares across sessions.
type Engine struct {
	Config  *config.Config
	Catalog catalog.Catalog
	Pool    *pool.MemoryPool

	scalarFns    functions.Registry
	aggregateFns functions.Registry
	log          *logrus.Entry
}

// New constructs an Engine from cfg: opens the metadata catalog (spec §6
// "metadata_factory"), the bounded memory pool (spec §4.5/§5), and the
// scalar/aggregate function registries (spec §6 "Function registry").
func New(cfg *config.Config, catalogPath string) (*Engine, error) {
	cat, err := catalog.Open(cfg, catalogPath)
	if err != nil {
		return nil, err
	}

	scalarFns := functions.NewRegistry()
	functions.RegisterNumberFunctions(scalarFns)
	functions.RegisterStringFunctions(scalarFns)
	aggregateFns := functions.NewRegistry()
	functions.RegisterAggregates(aggregateFns)

	return &Engine{
		Config:       cfg,
		Catalog:      cat,
		Pool:         pool.New(cfg.MaxReadBufferCapacity),
		scalarFns:    scalarFns,
		aggregateFns: aggregateFns,
		log:          logrus.NewEntry(logrus.New()),
	}, nil
}

// Close releases the engine's catalog handle.
func (e *Engine) Close() error {
	return e.Catalog.Close()
}

// Session is the per-connection handle spec §3.4 calls BindingContext's
// Connection: a variable store plus the engine's shared registries.
type Session struct {
	engine    *Engine
	Variables *variables.Store
}

// NewSession opens a session against e. Each session owns an independent
// variable store; the engine's catalog, pool, and function registries are
// shared (spec §5: session variables are single-threaded per session, while
// the memory pool is the one component shared across concurrent scans).
func (e *Engine) NewSession() *Session {
	return &Session{engine: e, Variables: variables.NewStore()}
}

// newBindingContext seeds a fresh binder.Context and merges env's schemas
// into it before a Bind call.
func (s *Session) newBindingContext(env schema.Environment) *binder.Context {
	conn := &binder.Connection{Variables: s.Variables}
	ctx := binder.NewContext(conn, functions.Combined(s.engine.scalarFns, s.engine.aggregateFns))
	for name, rs := range env {
		if existing, ok := ctx.Schemas[name]; ok {
			ctx.Schemas[name] = existing.UnionWith(rs)
		} else {
			ctx.Schemas[name] = rs.Clone()
		}
	}
	return ctx
}

// Bind resolves node against env, a schema environment describing the
// relations available to the query (spec §4.2).
func (s *Session) Bind(node *exprtree.Node, env schema.Environment) (*exprtree.Node, *binder.Context, error) {
	return binder.Bind(node, s.newBindingContext(env))
}

// Rewrite applies the predicate-rewrite optimizer to every predicate in
// preds (spec §4.3), returning a new, equally-ordered slice.
func (s *Session) Rewrite(preds []*exprtree.Node) []*exprtree.Node {
	out := make([]*exprtree.Node, len(preds))
	for i, p := range preds {
		out[i] = rewrite.RewritePredicate(p)
	}
	return out
}

// NewScan builds an AsyncScan operator over reader, wired to the session's
// engine pool (spec §4.5). Each scan gets its own QueryStatistics; callers
// that need the final counters read them back off the returned operator.
func (s *Session) NewScan(reader scan.Reader, decoderFor scan.DecoderLookup, relationSchema *schema.RelationSchema, projection []string, predicates []*exprtree.Node) *scan.AsyncScan {
	return &scan.AsyncScan{
		Reader:          reader,
		DecoderFor:      decoderFor,
		RelationSchema:  relationSchema,
		Projection:      projection,
		Predicates:      predicates,
		Pool:            s.engine.Pool,
		ConcurrentReads: s.engine.Config.ConcurrentReads,
		Statistics:      stats.New(),
		Log:             s.engine.log,
	}
}

// NewInnerJoin builds a single-key hash inner join operator over leftColumn
// and rightColumn, backed by the engine's Arrow allocator (spec §4.6).
func (s *Session) NewInnerJoin(leftColumn, rightColumn string) *join.InnerJoinSingleNode {
	return &join.InnerJoinSingleNode{
		LeftColumns:  []string{leftColumn},
		RightColumns: []string{rightColumn},
		Allocator:    s.engine.Pool.Allocator(),
	}
}

// RunJoin drains left and right through n per the drain-left-before-right
// contract of spec §4.4, returning the output morsels in arrival order,
// terminated by morsel.EOS.
func (s *Session) RunJoin(ctx context.Context, n *join.InnerJoinSingleNode, left, right <-chan morsel.Morsel) ([]morsel.Morsel, error) {
	out := make(chan morsel.Morsel, 16)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		errc <- exec.RunMultiInput(ctx, n, left, right, out)
	}()

	var results []morsel.Morsel
	for m := range out {
		results = append(results, m)
	}
	return results, <-errc
}
