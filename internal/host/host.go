// Package host is the boundary to the underlying game engine: windowing,
// rendering, audio, and input capture live on the other side of it. The core
// consumes a per-frame time delta, raw input events, and the engine's scene
// transform type, and never redefines them.
package host

import "time"

// Transform is the engine's scene-graph transform. Game bundles embed it
// rather than declaring their own spatial type.
type Transform struct {
	X, Y, Z  float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
}

// Time is the per-frame clock resource, refreshed by the frame loop before
// each tick.
type Time struct {
	Delta   time.Duration
	Elapsed time.Duration
	Frame   uint64
}

// Seconds returns the delta as float seconds, the unit movement math wants.
func (t Time) Seconds() float64 {
	return t.Delta.Seconds()
}

// Key identifies a raw input key as reported by the engine.
type Key uint8

const (
	KeyUnknown Key = iota
	KeySpace
	KeyEscape
	KeyEnter
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyP
	KeyR
)

// InputEvent is a raw key press or release captured by the engine.
type InputEvent struct {
	Key     Key
	Pressed bool
}

// Input is the engine-side input source drained once per frame by the input
// pump. Poll must return quickly; it is called inside the Input phase.
type Input interface {
	Poll() []InputEvent
}

// ScriptedInput replays queued events, one batch per Poll. It stands in for
// the engine during development runs and in tests.
type ScriptedInput struct {
	batches [][]InputEvent
}

func (s *ScriptedInput) Queue(events ...InputEvent) {
	s.batches = append(s.batches, events)
}

func (s *ScriptedInput) Poll() []InputEvent {
	if len(s.batches) == 0 {
		return nil
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	return batch
}
