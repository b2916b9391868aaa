// Package morsel implements the columnar record batch of spec §3.3: an
// immutable schema plus one column array per field, flowing between
// execution operators with a sentinel EOS marking end-of-stream on each
// edge.
//
// Morsels are backed by Arrow Go (github.com/apache/arrow-go/v18), mined
// from the pack's airport-go catalog types (arrow.Schema, array.Record) as
// the closest in-pack analogue to the teacher's own columnar value model
// in sql/types. Using a real Arrow record gives CascadeQL schema casting,
// null bitmaps and chunked-array concatenation for free, rather than
// hand-rolling a columnar batch type.
package morsel

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Morsel is the immutable columnar record batch of spec §3.3. A zero-value
// Morsel (Record == nil) is the EOS sentinel; see IsEOS.
type Morsel struct {
	Record arrow.Record
}

// EOS is the sentinel value on an operator edge marking end-of-stream
// (spec §3.3, §4.4).
var EOS = Morsel{}

// New wraps an already-built Arrow record as a Morsel.
func New(rec arrow.Record) Morsel {
	return Morsel{Record: rec}
}

// Empty builds a zero-row morsel conforming to schema, used by the async
// scan when a relation has no matching blobs or produced no rows (spec
// §4.5 steps 2 and 9).
func Empty(schema *arrow.Schema, mem memory.Allocator) Morsel {
	columns := make([]arrow.Array, schema.NumFields())
	for i, f := range schema.Fields() {
		b := array.NewBuilder(mem, f.Type)
		defer b.Release()
		columns[i] = b.NewArray()
	}
	rec := array.NewRecord(schema, columns, 0)
	return Morsel{Record: rec}
}

// IsEOS reports whether m is the end-of-stream sentinel.
func (m Morsel) IsEOS() bool {
	return m.Record == nil
}

// NumRows returns the morsel's row count, or 0 for EOS.
func (m Morsel) NumRows() int64 {
	if m.IsEOS() {
		return 0
	}
	return m.Record.NumRows()
}

// Schema returns the morsel's Arrow schema, or nil for EOS.
func (m Morsel) Schema() *arrow.Schema {
	if m.IsEOS() {
		return nil
	}
	return m.Record.Schema()
}

// Column returns the i'th column array, or nil for EOS / out-of-range i.
func (m Morsel) Column(i int) arrow.Array {
	if m.IsEOS() || i < 0 || i >= int(m.Record.NumCols()) {
		return nil
	}
	return m.Record.Column(i)
}

// ColumnByName returns the column array for the named field, or nil if
// absent.
func (m Morsel) ColumnByName(name string) arrow.Array {
	if m.IsEOS() {
		return nil
	}
	idx := m.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return nil
	}
	return m.Record.Column(idx[0])
}

// Retain/Release follow Arrow's reference-counted array lifetime: a morsel
// shared across operator boundaries must be retained by each holder and
// released when no longer needed.
func (m Morsel) Retain() {
	if !m.IsEOS() {
		m.Record.Retain()
	}
}

func (m Morsel) Release() {
	if !m.IsEOS() {
		m.Record.Release()
	}
}

// SchemaEqual reports whether two schemas have identical field names,
// types and order (spec Testable Property 7: "all morsels produced by one
// scan share identical schema").
func SchemaEqual(a, b *arrow.Schema) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}
