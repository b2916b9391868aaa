// Package scan implements the asynchronous scan operator of spec §4.5: a
// background I/O executor reads blobs concurrently (bounded by
// CONCURRENT_READS) into a shared memory pool, feeding a reply queue the
// operator's own goroutine polls to decode and emit morsels with a stable
// output schema.
//
// Ported from opteryx/operators/async_read_node.py's AsyncReaderNode and
// fetch_data. Python's asyncio.gather + aiohttp.ClientSession + a daemon
// thread running its own event loop collapses, in Go, to a pool of
// goroutines bounded by a buffered channel acting as the counting
// semaphore (design note §9 "concurrency transplant"); the reply queue is
// a buffered Go channel instead of queue.Queue, polled with the same
// 100ms stall-detection timeout via select/time.After.
package scan

import (
	"context"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/cascadedb/cascadeql/internal/exprtree"
	"github.com/cascadedb/cascadeql/internal/pool"
	"github.com/cascadedb/cascadeql/internal/stats"
)

// Session is an opaque per-scan handle to whatever transport the Reader
// uses (an HTTP client, an object-store SDK client, ...). Its shape is an
// external collaborator per spec §1 ("object-store clients" out of
// scope); the scan only opens one per Run and closes it once the
// background executor finishes.
type Session interface{}

// Reader is the external collaborator of spec §6 "Reader contract".
type Reader interface {
	Dataset() string
	StartDate() time.Time
	EndDate() time.Time

	// GetBlobsInPartition enumerates blob names matching the reader's time
	// range and prefix, honoring any pushed-down predicates (spec's
	// "partition scheme").
	GetBlobsInPartition(ctx context.Context, startDate, endDate time.Time, listFn func(ctx context.Context, prefix string) ([]string, error), prefix string, predicates []*exprtree.Node) ([]string, error)

	GetListOfBlobNames(ctx context.Context, prefix string) ([]string, error)

	OpenSession(ctx context.Context) (Session, error)
	CloseSession(session Session) error

	// AsyncReadBlob reads blobName's raw bytes into pool, returning a
	// reference the operator later reads and releases.
	AsyncReadBlob(ctx context.Context, blobName string, pool *pool.MemoryPool, session Session, statistics *stats.QueryStatistics) (pool.Reference, error)
}

// DecodeResult is a decoder's `(num_rows, some_meta, morsel)` (spec §6
// "Decoder contract"), returning a morsel with the blob's native schema
// (not yet cast to the scan's stable output schema).
type DecodeResult struct {
	NumRows int64
	Meta    any
	Columns []DecodedColumn
}

// DecodedColumn is a single decoded output column: its field name (for
// alignment against the output schema) and Arrow array.
type DecodedColumn struct {
	Name  string
	Field arrow.Field
	Array arrow.Array
}

// Decoder accepts raw blob bytes plus the pushed-down projection and
// predicates, and returns the decoded columns (spec §6: "(bytes,
// projection, selection) -> (row_count, some_meta, morsel)").
type Decoder func(ctx context.Context, data []byte, projection []string, predicates []*exprtree.Node) (DecodeResult, error)

// DecoderLookup resolves a Decoder by blob name (extension/MIME, spec §6:
// "Supported formats include columnar (Parquet, ORC, Arrow IPC) and row
// (JSONL), each potentially with compression suffixes").
type DecoderLookup func(blobName string) (Decoder, error)
