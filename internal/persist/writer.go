// Package persist moves journey persistence off the caller's goroutine.
//
// Session rows are coalesced per key so only the latest snapshot of a
// session is written. Event log entries are queued in order up to a bound
// and dropped, with a metric, once the bound is reached. Nothing here ever
// blocks a mutation.
package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/journey-engine/internal/logging"
	"github.com/danielpatrickdp/journey-engine/internal/metrics"
	"github.com/danielpatrickdp/journey-engine/internal/state"
)

// ErrClosed is returned when enqueueing onto a closed Writer.
var ErrClosed = errors.New("persist writer closed")

// ErrQueueFull is returned when an event is dropped on a full queue.
var ErrQueueFull = errors.New("persist event queue full")

const (
	DefaultQueueSize    = 1024
	DefaultWriteTimeout = 5 * time.Second
)

// Saver is the storage the writer flushes into. *StoreSaver adapts a
// state.Store.
type Saver interface {
	SaveSession(ctx context.Context, row state.SessionRow) error
	LogEvent(ctx context.Context, entry logging.EventEntry) error
}

// StoreSaver writes session rows and event log entries to one SQLite store.
type StoreSaver struct {
	Store *state.Store
}

func (s StoreSaver) SaveSession(ctx context.Context, row state.SessionRow) error {
	return s.Store.SaveSession(ctx, row)
}

func (s StoreSaver) LogEvent(_ context.Context, entry logging.EventEntry) error {
	return logging.LogEvent(s.Store.DB(), entry)
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger used for write failures and drops.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMetrics records write outcomes and drops.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Writer) { w.metrics = m }
}

// WithQueueSize bounds the number of pending event log entries.
func WithQueueSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.queueSize = n
		}
	}
}

// WithWriteTimeout bounds each individual store write.
func WithWriteTimeout(d time.Duration) Option {
	return func(w *Writer) {
		if d > 0 {
			w.writeTimeout = d
		}
	}
}

// #region writer

// Writer flushes session rows and event entries on a single background
// goroutine.
type Writer struct {
	saver        Saver
	logger       *zap.Logger
	metrics      *metrics.Metrics
	queueSize    int
	writeTimeout time.Duration

	mu      sync.Mutex
	closed  bool
	rows    map[string]state.SessionRow
	order   []string
	events  []logging.EventEntry
	dropped int

	wake          chan struct{}
	flushRequests chan chan struct{}
	stop          chan struct{}
	done          chan struct{}
	closeOnce     sync.Once
}

// NewWriter starts the background goroutine. Close must be called to stop it.
func NewWriter(saver Saver, opts ...Option) *Writer {
	w := &Writer{
		saver:         saver,
		logger:        zap.NewNop(),
		queueSize:     DefaultQueueSize,
		writeTimeout:  DefaultWriteTimeout,
		rows:          make(map[string]state.SessionRow),
		wake:          make(chan struct{}, 1),
		flushRequests: make(chan chan struct{}),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	go w.run()
	return w
}

// EnqueueSession schedules row for writing, replacing any pending row with
// the same key.
func (w *Writer) EnqueueSession(row state.SessionRow) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if _, pending := w.rows[row.Key]; !pending {
		w.order = append(w.order, row.Key)
	}
	w.rows[row.Key] = row
	w.mu.Unlock()
	w.signal()
	return nil
}

// EnqueueEvent schedules entry for the event log. A full queue drops the
// entry and returns ErrQueueFull.
func (w *Writer) EnqueueEvent(entry logging.EventEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if len(w.events) >= w.queueSize {
		w.dropped++
		w.mu.Unlock()
		w.metrics.Dropped()
		w.logger.Warn("event log queue full, dropping entry",
			zap.String("session_id", entry.SessionID),
			zap.String("kind", string(entry.Kind)),
			zap.Int("queue_size", w.queueSize))
		return ErrQueueFull
	}
	w.events = append(w.events, entry)
	w.mu.Unlock()
	w.signal()
	return nil
}

// Pending reports queued session rows and event entries.
func (w *Writer) Pending() (rows, events int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.rows), len(w.events)
}

// Dropped reports how many event entries were discarded on a full queue.
func (w *Writer) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// Flush waits until everything enqueued before the call has been written.
func (w *Writer) Flush(ctx context.Context) error {
	resp := make(chan struct{})
	select {
	case w.flushRequests <- resp:
	case <-w.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-resp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, drains what is queued and stops the goroutine.
// If ctx expires first the goroutine still finishes the drain in the
// background and Close returns ctx.Err().
func (w *Writer) Close(ctx context.Context) error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.stop)
	})
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// #endregion writer

// #region loop

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case resp := <-w.flushRequests:
			w.drain()
			close(resp)
		case <-w.stop:
			w.drain()
			return
		}
	}
}

// drain writes everything currently queued. Rows go first so the event log
// never references a session that has not been stored yet.
func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.rows) == 0 && len(w.events) == 0 {
			w.mu.Unlock()
			return
		}
		rows := make([]state.SessionRow, 0, len(w.order))
		for _, key := range w.order {
			rows = append(rows, w.rows[key])
		}
		events := w.events
		w.rows = make(map[string]state.SessionRow)
		w.order = nil
		w.events = nil
		w.mu.Unlock()

		for _, row := range rows {
			w.write("session", func(ctx context.Context) error { return w.saver.SaveSession(ctx, row) },
				zap.String("key", row.Key))
		}
		for _, entry := range events {
			w.write("event", func(ctx context.Context) error { return w.saver.LogEvent(ctx, entry) },
				zap.String("session_id", entry.SessionID), zap.String("kind", string(entry.Kind)))
		}
	}
}

func (w *Writer) write(target string, fn func(context.Context) error, fields ...zap.Field) {
	ctx, cancel := context.WithTimeout(context.Background(), w.writeTimeout)
	err := fn(ctx)
	cancel()
	w.metrics.PersistResult(target, err)
	if err != nil {
		w.logger.Error("persist write failed",
			append(fields, zap.String("target", target), zap.Error(err))...)
	}
}

// #endregion loop
