// Package stats implements the statistics counters threaded through the
// BindingContext (spec §3.4: "rows_read, blobs_read, stalls, timings") and
// updated by the async scan operator (spec §4.5 step 7).
package stats

import (
	"sync"
	"time"
)

// QueryStatistics accumulates counters for a single query's execution.
// Fields are exported to mirror the source's plain-attribute statistics
// object; every method takes the mutex because the async scan's background
// I/O executor (failed reads, messages, time spent reading) writes
// concurrently with the scan's own goroutine (blobs_read, rows_read), and
// spec §5 notes the scan is the one component that escapes the otherwise
// single-threaded execution pipeline.
type QueryStatistics struct {
	mu sync.Mutex

	RowsRead                    int64
	RowsSeen                    int64
	BlobsRead                   int64
	FailedReads                 int64
	EmptyDatasets               int64
	ColumnsRead                 int64
	StallsReadingFromReadBuffer int64
	IOWaitSeconds               float64
	TimeReadingBlobs            time.Duration

	messages []string
}

// New returns a zeroed QueryStatistics.
func New() *QueryStatistics {
	return &QueryStatistics{}
}

// AddRowsRead adds n to the rows-read counter (spec §4.5 step 7).
func (s *QueryStatistics) AddRowsRead(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RowsRead += n
}

// AddRowsSeen adds n to the rows-seen counter (rows decoded before
// predicate pushdown is applied downstream of the decoder).
func (s *QueryStatistics) AddRowsSeen(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RowsSeen += n
}

// IncBlobsRead increments the successfully-read blob counter.
func (s *QueryStatistics) IncBlobsRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BlobsRead++
}

// IncFailedReads increments the failed-blob counter (spec §4.5 step 8: a
// per-blob failure is downgraded to a warning and a counter increment).
func (s *QueryStatistics) IncFailedReads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailedReads++
}

// IncEmptyDatasets increments the counter for scans that produced no
// morsels and fell back to the empty-schema morsel (spec §4.5 step 9).
func (s *QueryStatistics) IncEmptyDatasets() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EmptyDatasets++
}

// IncStall increments the reply-queue-timeout stall counter and the
// cumulative I/O wait time (spec §4.5 step 4).
func (s *QueryStatistics) IncStall(wait time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StallsReadingFromReadBuffer++
	s.IOWaitSeconds += wait.Seconds()
}

// AddTimeReadingBlobs accumulates wall time spent inside blob reads/decodes.
func (s *QueryStatistics) AddTimeReadingBlobs(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TimeReadingBlobs += d
}

// SetColumnsRead records the number of columns surviving projection.
func (s *QueryStatistics) SetColumnsRead(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ColumnsRead = n
}

// AddMessage appends a free-form diagnostic message (opteryx's
// `statistics.add_message`), a bounded log of non-fatal warnings such as
// "failed to read <blob>". Capped to avoid unbounded growth across a
// long-running scan.
func (s *QueryStatistics) AddMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	const cap = 1000
	if len(s.messages) >= cap {
		return
	}
	s.messages = append(s.messages, msg)
}

// Messages returns a snapshot of the accumulated diagnostic messages.
func (s *QueryStatistics) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

// Snapshot is an immutable copy of the counters, safe to log or assert on.
type Snapshot struct {
	RowsRead, RowsSeen, BlobsRead, FailedReads, EmptyDatasets, StallsReadingFromReadBuffer int64
	IOWaitSeconds                                                                         float64
	TimeReadingBlobs                                                                      time.Duration
}

// Snapshot takes a consistent point-in-time copy of the counters.
func (s *QueryStatistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		RowsRead:                    s.RowsRead,
		RowsSeen:                    s.RowsSeen,
		BlobsRead:                   s.BlobsRead,
		FailedReads:                 s.FailedReads,
		EmptyDatasets:               s.EmptyDatasets,
		StallsReadingFromReadBuffer: s.StallsReadingFromReadBuffer,
		IOWaitSeconds:               s.IOWaitSeconds,
		TimeReadingBlobs:            s.TimeReadingBlobs,
	}
}
