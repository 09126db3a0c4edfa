// Package spsc is a fixed-capacity, lock-free single-producer/single-consumer
// FIFO of values. The backing storage is split exactly once into one Producer
// and one Consumer; neither side ever blocks or allocates.
package spsc

import (
	"sync/atomic"

	"ctrlloop-go/errcode"
)

// Ring owns the storage. It may be declared statically and split at init.
type Ring[T any] struct {
	buf   []T
	mask  uint32
	rd    atomic.Uint32 // consumer index (monotonic)
	wr    atomic.Uint32 // producer index (monotonic)
	split atomic.Bool
}

// NewRing allocates a ring of the given power-of-two capacity (>= 2).
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 2 || (capacity&(capacity-1)) != 0 {
		panic("spsc: capacity must be power of two >= 2")
	}
	return &Ring[T]{
		buf:  make([]T, capacity),
		mask: uint32(capacity - 1),
	}
}

// New allocates a ring and splits it in one call, so no second split is reachable.
func New[T any](capacity int) (*Producer[T], *Consumer[T]) {
	p, c, _ := NewRing[T](capacity).Split()
	return p, c
}

// Split hands out the only producer and consumer handles. Every call after
// the first returns errcode.AlreadySplit.
func (r *Ring[T]) Split() (*Producer[T], *Consumer[T], error) {
	if !r.split.CompareAndSwap(false, true) {
		return nil, nil, errcode.AlreadySplit
	}
	return &Producer[T]{r: r}, &Consumer[T]{r: r}, nil
}

func (r *Ring[T]) size() uint32 { return uint32(len(r.buf)) }

// Cap is the number of values the ring holds when full.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Len is a snapshot of the queued count; exact only from the producer or consumer side.
func (r *Ring[T]) Len() int {
	return int(r.wr.Load() - r.rd.Load())
}

// Producer is the write side. Only one goroutine/ISR may use it.
type Producer[T any] struct{ r *Ring[T] }

// Enqueue appends v, or fails with errcode.QueueFull leaving the ring unchanged.
func (p *Producer[T]) Enqueue(v T) error {
	r := p.r
	wr := r.wr.Load()
	rd := r.rd.Load() // acquire
	if wr-rd >= r.size() {
		return errcode.QueueFull
	}
	r.buf[wr&r.mask] = v
	r.wr.Store(wr + 1) // release
	return nil
}

// Space reports how many more values fit.
func (p *Producer[T]) Space() int { return p.r.Cap() - p.r.Len() }

func (p *Producer[T]) Len() int { return p.r.Len() }
func (p *Producer[T]) Cap() int { return p.r.Cap() }

// Consumer is the read side. Only one goroutine may use it.
type Consumer[T any] struct{ r *Ring[T] }

// Dequeue removes the oldest value. ok is false when empty.
func (c *Consumer[T]) Dequeue() (v T, ok bool) {
	r := c.r
	rd := r.rd.Load()
	wr := r.wr.Load() // acquire
	if wr == rd {
		return v, false
	}
	idx := rd & r.mask
	v = r.buf[idx]
	var zero T
	r.buf[idx] = zero  // drop references held by the slot
	r.rd.Store(rd + 1) // release
	return v, true
}

// Peek returns the oldest value without removing it.
func (c *Consumer[T]) Peek() (v T, ok bool) {
	r := c.r
	rd := r.rd.Load()
	if r.wr.Load() == rd {
		return v, false
	}
	return r.buf[rd&r.mask], true
}

func (c *Consumer[T]) Len() int { return c.r.Len() }
func (c *Consumer[T]) Cap() int { return c.r.Cap() }
