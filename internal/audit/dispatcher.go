package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull makes Emit return immediately when the queue is full. The
	// event is counted as dropped under its Kind.
	DropIfFull bool
}

// Dispatcher delivers events to a Sink from a single goroutine, in the order
// they were queued.
type Dispatcher struct {
	sink       Sink
	dropIfFull bool

	mu      sync.RWMutex // guards closed and sends on queue
	closed  bool
	queue   chan Event
	stopped chan struct{}

	drops     [len(kindSlots)]atomic.Uint64
	delivered atomic.Uint64
}

// kindSlots indexes drop counters. The last slot collects unknown kinds.
var kindSlots = [...]Kind{
	KindLoginSucceeded,
	KindLoginFailed,
	KindLoginRateLimited,
	KindLogout,
	KindRequestUnauthenticated,
	KindRequestForbidden,
	"",
}

func slot(k Kind) int {
	for i, known := range kindSlots[:len(kindSlots)-1] {
		if known == k {
			return i
		}
	}
	return len(kindSlots) - 1
}

// NewDispatcher starts delivery to sink. A disabled cfg yields nil, and every
// method on a nil *Dispatcher is a no-op.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	d := &Dispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan Event, max(cfg.BufferSize, 1)),
		stopped:    make(chan struct{}),
	}
	go d.deliver()
	return d
}

func (d *Dispatcher) deliver() {
	defer close(d.stopped)
	for event := range d.queue {
		d.sink.Emit(context.Background(), event)
		d.delivered.Add(1)
	}
}

// Emit queues event. Without DropIfFull it waits for room; a cancelled ctx
// drops the event. Events emitted after Close are discarded uncounted.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		default:
			d.drops[slot(event.Kind)].Add(1)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.drops[slot(event.Kind)].Add(1)
	}
}

// Close stops intake and returns once every queued event reached the sink.
// It is safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.stopped
}

// Dropped is the total number of dropped events.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	var total uint64
	for i := range d.drops {
		total += d.drops[i].Load()
	}
	return total
}

// DroppedKind is the number of dropped events of kind k.
func (d *Dispatcher) DroppedKind(k Kind) uint64 {
	if d == nil {
		return 0
	}
	return d.drops[slot(k)].Load()
}

// Delivered is the number of events handed to the sink.
func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}
