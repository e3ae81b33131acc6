package game

import (
	"reflect"

	"github.com/worldkeeper/engine/internal/core/ecs"
	"github.com/worldkeeper/engine/internal/core/event"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/core/schedule"
	"github.com/worldkeeper/engine/internal/host"
)

// Event streams are declared in the resource space of the access signature:
// a publisher writes the event type, a subscriber reads it. That keeps the
// pump before the control routine in the same frame without extra locks.

// PumpSystem drains the host input source once per frame and republishes the
// raw events on the bus, where any number of subscribers can cursor them.
type PumpSystem struct {
	source host.Input
}

func NewPumpSystem(source host.Input) *PumpSystem {
	return &PumpSystem{source: source}
}

func (s *PumpSystem) Name() string { return "input_pump" }

func (s *PumpSystem) Access() schedule.Access {
	return schedule.Access{
		WritesResources: []reflect.Type{schedule.T[host.InputEvent]()},
	}
}

func (s *PumpSystem) Update(ctx *schedule.Context) {
	if s.source == nil {
		return
	}
	for _, ev := range s.source.Poll() {
		event.Publish(ctx.Events, ev)
	}
}

// ControlSystem turns raw key events into flow requests and player steering.
// Held arrow keys persist across frames; action keys fire on press only.
type ControlSystem struct {
	keys    *event.Reader[host.InputEvent]
	bundles *Bundles
	speed   float64

	up, down, left, right bool
}

func NewControlSystem(bus *event.Bus, bundles *Bundles, speed float64) *ControlSystem {
	return &ControlSystem{
		keys:    event.NewReader[host.InputEvent](bus),
		bundles: bundles,
		speed:   speed,
	}
}

func (s *ControlSystem) Name() string { return "control" }

func (s *ControlSystem) Access() schedule.Access {
	return schedule.Access{
		ReadsBundles:  []reflect.Type{schedule.T[Player]()},
		WritesBundles: []reflect.Type{schedule.T[Velocity]()},
		ReadsResources: []reflect.Type{
			schedule.T[host.InputEvent](),
			schedule.T[Flow](),
		},
		WritesResources: []reflect.Type{schedule.T[FlowRequest]()},
	}
}

func (s *ControlSystem) Update(ctx *schedule.Context) {
	flow, ok := resource.Get[Flow](ctx.Resources)
	if !ok {
		return
	}

	for _, ev := range s.keys.Drain() {
		switch ev.Key {
		case host.KeyUp:
			s.up = ev.Pressed
		case host.KeyDown:
			s.down = ev.Pressed
		case host.KeyLeft:
			s.left = ev.Pressed
		case host.KeyRight:
			s.right = ev.Pressed
		}
		if !ev.Pressed {
			continue
		}
		switch ev.Key {
		case host.KeyEnter, host.KeySpace:
			if flow.Current() == StateMainMenu {
				event.Publish(ctx.Events, FlowRequest{Action: ActionStart})
			}
		case host.KeyP:
			switch flow.Current() {
			case StatePlaying:
				event.Publish(ctx.Events, FlowRequest{Action: ActionPause})
			case StatePaused:
				event.Publish(ctx.Events, FlowRequest{Action: ActionResume})
			}
		case host.KeyEscape:
			if flow.Current() == StatePlaying {
				event.Publish(ctx.Events, FlowRequest{Action: ActionPause})
			}
		case host.KeyR:
			if flow.Current() == StateGameOver {
				event.Publish(ctx.Events, FlowRequest{Action: ActionRestart})
			}
		}
	}

	var dx, dy float64
	if s.up {
		dy -= s.speed
	}
	if s.down {
		dy += s.speed
	}
	if s.left {
		dx -= s.speed
	}
	if s.right {
		dx += s.speed
	}
	ecs.Each2(s.bundles.Players, s.bundles.Velocities,
		func(_ ecs.EntityID, _ *Player, v *Velocity) {
			v.DX = dx
			v.DY = dy
		})
}
