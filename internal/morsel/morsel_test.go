package morsel

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/go-cmp/cmp"
)

func intSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
}

func buildMorsel(mem *memory.GoAllocator, schema *arrow.Schema, values []int64) Morsel {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.AppendValues(values, nil)
	col := b.NewArray()
	defer col.Release()
	rec := array.NewRecord(schema, []arrow.Array{col}, int64(len(values)))
	return New(rec)
}

func TestEmptyMorselIsNotEOS(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := intSchema()
	m := Empty(schema, mem)
	defer m.Release()

	if m.IsEOS() {
		t.Fatalf("an empty morsel is not the EOS sentinel")
	}
	if m.NumRows() != 0 {
		t.Fatalf("expected 0 rows, got %d", m.NumRows())
	}
	if !SchemaEqual(m.Schema(), schema) {
		t.Fatalf("expected empty morsel to conform to the output schema")
	}
}

func TestEOSSentinel(t *testing.T) {
	if !EOS.IsEOS() {
		t.Fatalf("expected zero-value Morsel to be EOS")
	}
	if EOS.NumRows() != 0 || EOS.Schema() != nil {
		t.Fatalf("EOS must carry no data")
	}
}

func TestColumnByName(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := intSchema()
	m := buildMorsel(mem, schema, []int64{1, 2, 3})
	defer m.Release()

	col := m.ColumnByName("id")
	if col == nil {
		t.Fatalf("expected to find column 'id'")
	}
	if col.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", col.Len())
	}
	if m.ColumnByName("missing") != nil {
		t.Fatalf("expected nil for a missing column")
	}
}

func TestSchemaStabilityAcrossMorsels(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := intSchema()
	m1 := buildMorsel(mem, schema, []int64{1})
	m2 := buildMorsel(mem, schema, []int64{2, 3})
	defer m1.Release()
	defer m2.Release()

	if !SchemaEqual(m1.Schema(), m2.Schema()) {
		t.Fatalf("morsels from the same scan must share an identical schema (Testable Property 7)")
	}

	// Field names/order must match exactly too, not merely same field count.
	names := func(s *arrow.Schema) []string {
		out := make([]string, s.NumFields())
		for i, f := range s.Fields() {
			out[i] = f.Name
		}
		return out
	}
	if diff := cmp.Diff(names(m1.Schema()), names(m2.Schema())); diff != "" {
		t.Fatalf("schema field names diverged across morsels (-m1 +m2):\n%s", diff)
	}
}
