// Package queue is the bounded event FIFO between touch and display goroutines.
//
// Slots carry a sequence number (bounded MPMC ring by D. Vyukov), so a record
// is published to the consumer only after it is fully written, without locks.
// Overflow policy is drop-newest: TrySend reports false and the caller decides.
package queue

import (
	"time"

	"github.com/juju/errors"
	"github.com/temoto/atomic_clock"
	"github.com/temoto/touchpanel/internal/types"
	"go.uber.org/atomic"
)

const DefaultCapacity = 32

type cell struct {
	seq   atomic.Uint64
	event types.Event
}

type Queue struct {
	capacity uint64
	// ring has at least 2 cells, sequence numbers can't tell full from free in one cell
	size  uint64
	cells []cell
	// signalled by consumer after each receive, wakes SendTimeout
	space chan struct{}

	_   [56]byte
	enq atomic.Uint64
	_   [56]byte
	deq atomic.Uint64
	_   [56]byte

	stat struct {
		sent     atomic.Uint64
		received atomic.Uint64
		dropped  atomic.Uint64
		lastDrop atomic_clock.Clock
	}
}

type Stat struct {
	Sent     uint64
	Received uint64
	Dropped  uint64
	// SinceLastDrop is zero if nothing was dropped
	SinceLastDrop time.Duration
}

func New(capacity int) (*Queue, error) {
	if capacity <= 0 {
		return nil, errors.NotValidf("queue capacity=%d", capacity)
	}
	size := capacity
	if size < 2 {
		size = 2
	}
	q := &Queue{
		capacity: uint64(capacity),
		size:     uint64(size),
		cells:    make([]cell, size),
		space:    make(chan struct{}, 1),
	}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}
	return q, nil
}

func MustNew(capacity int) *Queue {
	q, err := New(capacity)
	if err != nil {
		panic("code error " + err.Error())
	}
	return q
}

func (q *Queue) Cap() int { return int(q.capacity) }

// Count is exact when called from the consumer with producers idle,
// otherwise a snapshot.
func (q *Queue) Count() int {
	deq := q.deq.Load()
	enq := q.enq.Load()
	if enq <= deq {
		return 0
	}
	n := enq - deq
	if n > q.capacity {
		n = q.capacity
	}
	return int(n)
}

// TrySend never blocks. Returns false when queue is full, event is dropped.
func (q *Queue) TrySend(e types.Event) bool {
	if q.push(e) {
		q.stat.sent.Inc()
		return true
	}
	q.stat.dropped.Inc()
	q.stat.lastDrop.SetNow()
	return false
}

// SendTimeout waits up to timeout for free slot.
// Only for producers that can tolerate blocking, touch sampler must use TrySend.
func (q *Queue) SendTimeout(e types.Event, timeout time.Duration) bool {
	if timeout <= 0 {
		return q.TrySend(e)
	}
	if q.push(e) {
		q.stat.sent.Inc()
		return true
	}
	tmr := time.NewTimer(timeout)
	defer tmr.Stop()
	for {
		select {
		case <-q.space:
			if q.push(e) {
				q.stat.sent.Inc()
				return true
			}
		case <-tmr.C:
			// last chance, consumer may have freed slot without signal reaching us
			return q.TrySend(e)
		}
	}
}

// TryReceive never blocks. Returns false when queue is empty.
func (q *Queue) TryReceive(out *types.Event) bool {
	if !q.pop(out) {
		return false
	}
	q.stat.received.Inc()
	select {
	case q.space <- struct{}{}:
	default:
	}
	return true
}

func (q *Queue) Stat() Stat {
	s := Stat{
		Sent:     q.stat.sent.Load(),
		Received: q.stat.received.Load(),
		Dropped:  q.stat.dropped.Load(),
	}
	if !q.stat.lastDrop.IsZero() {
		s.SinceLastDrop = atomic_clock.Since(&q.stat.lastDrop)
	}
	return s
}

func (q *Queue) push(e types.Event) bool {
	pos := q.enq.Load()
	for {
		c := &q.cells[pos%q.size]
		seq := c.seq.Load()
		switch dif := int64(seq - pos); {
		case dif == 0:
			// stale deq only makes this stricter
			if pos-q.deq.Load() >= q.capacity {
				return false
			}
			if q.enq.CompareAndSwap(pos, pos+1) {
				c.event = e
				c.seq.Store(pos + 1)
				return true
			}
			pos = q.enq.Load()
		case dif < 0: // full
			return false
		default: // another producer took this slot
			pos = q.enq.Load()
		}
	}
}

func (q *Queue) pop(out *types.Event) bool {
	pos := q.deq.Load()
	for {
		c := &q.cells[pos%q.size]
		seq := c.seq.Load()
		switch dif := int64(seq - (pos + 1)); {
		case dif == 0:
			if q.deq.CompareAndSwap(pos, pos+1) {
				*out = c.event
				c.event = types.Event{}
				c.seq.Store(pos + q.size)
				return true
			}
			pos = q.deq.Load()
		case dif < 0: // empty
			return false
		default:
			pos = q.deq.Load()
		}
	}
}
