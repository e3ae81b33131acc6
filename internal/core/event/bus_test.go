package event

import "testing"

type scored struct{ Amount int }
type collided struct{ A, B int }

func TestPublishDrain(t *testing.T) {
	t.Run("same frame visibility", func(t *testing.T) {
		b := NewBus()
		r := NewReader[scored](b)
		Publish(b, scored{5})
		got := r.Drain()
		if len(got) != 1 || got[0].Amount != 5 {
			t.Fatalf("expected one event, got %v", got)
		}
	})

	t.Run("drain consumes only once per cursor", func(t *testing.T) {
		b := NewBus()
		r := NewReader[scored](b)
		Publish(b, scored{1})
		if got := r.Drain(); len(got) != 1 {
			t.Fatalf("first drain: %v", got)
		}
		if got := r.Drain(); got != nil {
			t.Fatalf("second drain should be empty, got %v", got)
		}
	})

	t.Run("publish order per producer is kept", func(t *testing.T) {
		b := NewBus()
		r := NewReader[scored](b)
		for i := 1; i <= 4; i++ {
			Publish(b, scored{i})
		}
		got := r.Drain()
		for i, ev := range got {
			if ev.Amount != i+1 {
				t.Fatalf("out of order at %d: %v", i, got)
			}
		}
	})

	t.Run("channels are isolated by type", func(t *testing.T) {
		b := NewBus()
		rs := NewReader[scored](b)
		rc := NewReader[collided](b)
		Publish(b, scored{1})
		if got := rc.Drain(); got != nil {
			t.Fatalf("collided reader saw scored events: %v", got)
		}
		if got := rs.Drain(); len(got) != 1 {
			t.Fatalf("scored reader missed its event: %v", got)
		}
	})
}

func TestIndependentCursors(t *testing.T) {
	b := NewBus()
	r1 := NewReader[scored](b)
	r2 := NewReader[scored](b)
	Publish(b, scored{7})

	if got := r1.Drain(); len(got) != 1 {
		t.Fatalf("r1 drain: %v", got)
	}
	// r1 draining must not consume r2's view.
	if got := r2.Drain(); len(got) != 1 || got[0].Amount != 7 {
		t.Fatalf("r2 starved by r1: %v", got)
	}
}

func TestRetention(t *testing.T) {
	t.Run("visible next frame, gone the frame after", func(t *testing.T) {
		b := NewBus()
		lazy := NewReader[scored](b)
		Publish(b, scored{42}) // frame 0

		b.EndFrame() // now frame 1
		if got := lazy.Drain(); len(got) != 1 || got[0].Amount != 42 {
			t.Fatalf("event lost before one-frame retention elapsed: %v", got)
		}

		late := NewReader[scored](b)
		b.EndFrame() // now frame 2, event published in frame 0 is discarded
		if got := late.Drain(); got != nil {
			t.Fatalf("event visible two frames after publish: %v", got)
		}
	})

	t.Run("slow subscriber loses expired events silently", func(t *testing.T) {
		b := NewBus()
		slow := NewReader[scored](b)
		Publish(b, scored{1})
		b.EndFrame()
		b.EndFrame()
		Publish(b, scored{2})
		got := slow.Drain()
		if len(got) != 1 || got[0].Amount != 2 {
			t.Fatalf("expected only the fresh event, got %v", got)
		}
	})

	t.Run("cursor keeps its place across expiry", func(t *testing.T) {
		b := NewBus()
		r := NewReader[scored](b)
		Publish(b, scored{1})
		r.Drain()
		b.EndFrame()
		Publish(b, scored{2}) // frame 1
		b.EndFrame()          // frame 2: event from frame 0 drops, cursor shifts
		got := r.Drain()
		if len(got) != 1 || got[0].Amount != 2 {
			t.Fatalf("cursor drifted across expiry: %v", got)
		}
	})
}
