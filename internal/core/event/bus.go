package event

import (
	"reflect"
	"sync"
)

// Bus holds one typed channel per event type. Events live in an append-only
// per-frame buffer; each subscriber owns a cursor into it, so one reader
// draining never starves another. An event published in frame N stays
// readable through frame N+1 and is discarded entering frame N+2 whether or
// not every cursor saw it; slow subscribers lose events silently.
type Bus struct {
	mu       sync.Mutex
	channels map[reflect.Type]*channel
	frame    uint64
}

type stamped struct {
	value any
	frame uint64
}

type channel struct {
	mu      sync.Mutex
	events  []stamped
	cursors []*cursor
}

type cursor struct {
	pos int
}

func NewBus() *Bus {
	return &Bus{
		channels: make(map[reflect.Type]*channel),
	}
}

// Frame reports the current frame number, incremented by EndFrame.
func (b *Bus) Frame() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame
}

// EndFrame advances the frame counter and drops events that have been
// retained for one full frame already. The scheduler calls this once per tick.
func (b *Bus) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame++
	for _, ch := range b.channels {
		ch.expire(b.frame)
	}
}

func (b *Bus) channelFor(t reflect.Type) *channel {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[t]
	if !ok {
		ch = &channel{events: make([]stamped, 0, 16)}
		b.channels[t] = ch
	}
	return ch
}

// expire drops events published before frame-1, shifting every cursor so it
// keeps its place among the survivors.
func (ch *channel) expire(frame uint64) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	drop := 0
	for drop < len(ch.events) && ch.events[drop].frame+1 < frame {
		drop++
	}
	if drop == 0 {
		return
	}
	ch.events = append(ch.events[:0], ch.events[drop:]...)
	for _, c := range ch.cursors {
		c.pos -= drop
		if c.pos < 0 {
			c.pos = 0
		}
	}
}

// Publish appends an event of type T to its channel. Publish order per
// producer is preserved; interleaving across producers is unspecified.
func Publish[T any](b *Bus, v T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	ch := b.channelFor(t)

	b.mu.Lock()
	frame := b.frame
	b.mu.Unlock()

	ch.mu.Lock()
	ch.events = append(ch.events, stamped{value: v, frame: frame})
	ch.mu.Unlock()
}

// Reader is an independent subscriber cursor over one event type.
type Reader[T any] struct {
	ch  *channel
	cur *cursor
}

// NewReader subscribes a fresh cursor to events of type T. The cursor starts
// at the beginning of the retained buffer.
func NewReader[T any](b *Bus) *Reader[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	ch := b.channelFor(t)
	c := &cursor{}
	ch.mu.Lock()
	ch.cursors = append(ch.cursors, c)
	ch.mu.Unlock()
	return &Reader[T]{ch: ch, cur: c}
}

// Drain returns every retained event this cursor has not seen yet and
// advances past them. It never blocks; an empty channel yields nil.
func (r *Reader[T]) Drain() []T {
	r.ch.mu.Lock()
	defer r.ch.mu.Unlock()
	if r.cur.pos >= len(r.ch.events) {
		return nil
	}
	out := make([]T, 0, len(r.ch.events)-r.cur.pos)
	for _, ev := range r.ch.events[r.cur.pos:] {
		out = append(out, ev.value.(T))
	}
	r.cur.pos = len(r.ch.events)
	return out
}
