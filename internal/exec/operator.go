// Package exec implements the morsel-streaming execution framework of
// spec §4.4: a uniform operator contract (`Execute(morsel) -> []morsel`),
// EOS propagation, and the multi-input stream multiplexing joins need.
//
// Grounded on the teacher's sql.RowIter / sql/rowexec pull-based iterator
// protocol (Next(ctx) (Row, error), io.EOF signaling end-of-stream),
// adapted to the push-based per-call contract spec §4.4 requires: a
// producer hands an operator either a morsel or the sentinel EOS, and the
// operator answers with zero or more morsels rather than one row at a
// time.
package exec

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/cascadedb/cascadeql/internal/morsel"
)

// Operator is the single-input operator contract of spec §4.4.
type Operator interface {
	// Execute consumes one input (a morsel or morsel.EOS) and returns zero
	// or more output morsels. EOS must be propagated to the operator's own
	// consumers only after all pending output for that input is drained.
	Execute(ctx context.Context, in morsel.Morsel) ([]morsel.Morsel, error)
}

// Stream names which input edge a MultiInputOperator is currently being
// fed on (spec §4.4 "multiplex their inputs by a stream selector").
type Stream int

const (
	StreamLeft Stream = iota
	StreamRight
)

func (s Stream) String() string {
	if s == StreamLeft {
		return "left"
	}
	return "right"
}

// MultiInputOperator is the join-shaped operator contract of spec §4.4:
// each call names which input edge the morsel arrived on.
type MultiInputOperator interface {
	ExecuteStream(ctx context.Context, stream Stream, in morsel.Morsel) ([]morsel.Morsel, error)
}

// RunSingleInput pumps every value from in through op, forwarding op's
// output to out, and returns once op has been fed morsel.EOS (or in is
// closed). It does not send morsel.EOS on out itself: EOS reaches out only
// when op returns it. It is the harness around a single operator edge
// (spec §4.4, §5 "morsel order is preserved FIFO").
func RunSingleInput(ctx context.Context, op Operator, in <-chan morsel.Morsel, out chan<- morsel.Morsel) error {
	for m := range in {
		span, spanCtx := opentracing.StartSpanFromContext(ctx, "operator.Execute")
		results, err := op.Execute(spanCtx, m)
		if err != nil {
			span.SetTag("error", true)
		}
		span.Finish()
		if err != nil {
			return err
		}
		for _, r := range results {
			out <- r
		}
		if m.IsEOS() {
			return nil
		}
	}
	return nil
}

// RunMultiInput drives a MultiInputOperator per spec §4.4: "The framework
// is responsible for draining the build side to EOS before feeding the
// probe side." left is fully drained (including its EOS) before any value
// from right is fed to the operator.
func RunMultiInput(ctx context.Context, op MultiInputOperator, left, right <-chan morsel.Morsel, out chan<- morsel.Morsel) error {
	for m := range left {
		span, spanCtx := opentracing.StartSpanFromContext(ctx, "operator.ExecuteStream")
		span.SetTag("stream", StreamLeft.String())
		results, err := op.ExecuteStream(spanCtx, StreamLeft, m)
		if err != nil {
			span.SetTag("error", true)
		}
		span.Finish()
		if err != nil {
			return err
		}
		for _, r := range results {
			out <- r
		}
		if m.IsEOS() {
			break
		}
	}

	for m := range right {
		span, spanCtx := opentracing.StartSpanFromContext(ctx, "operator.ExecuteStream")
		span.SetTag("stream", StreamRight.String())
		results, err := op.ExecuteStream(spanCtx, StreamRight, m)
		if err != nil {
			span.SetTag("error", true)
		}
		span.Finish()
		if err != nil {
			return err
		}
		for _, r := range results {
			out <- r
		}
		if m.IsEOS() {
			return nil
		}
	}
	return nil
}
