package game

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/worldkeeper/engine/internal/core/event"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/core/schedule"
)

// State is one node of the game flow machine.
type State uint8

const (
	StateMainMenu State = iota
	StatePlaying
	StatePaused
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateMainMenu:
		return "main_menu"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Action is a flow transition trigger.
type Action uint8

const (
	ActionStart Action = iota
	ActionPause
	ActionResume
	ActionDie
	ActionRestart
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionPause:
		return "pause"
	case ActionResume:
		return "resume"
	case ActionDie:
		return "die"
	case ActionRestart:
		return "restart"
	default:
		return "unknown"
	}
}

type transition struct {
	from State
	act  Action
}

// Flow is the shared-state flow machine. Only transitions declared in the
// table ever change state; dispatching anything else is a silent no-op, so a
// queued pause landing after a death cannot corrupt the flow.
type Flow struct {
	current State
	table   map[transition]State
}

func NewFlow() *Flow {
	return &Flow{
		current: StateMainMenu,
		table: map[transition]State{
			{StateMainMenu, ActionStart}:   StatePlaying,
			{StatePlaying, ActionPause}:    StatePaused,
			{StatePaused, ActionResume}:    StatePlaying,
			{StatePlaying, ActionDie}:      StateGameOver,
			{StateGameOver, ActionRestart}: StateMainMenu,
		},
	}
}

func (f *Flow) Current() State {
	return f.current
}

// Dispatch applies one action. It returns the resulting state and whether the
// transition was declared; undeclared actions leave the state untouched.
func (f *Flow) Dispatch(a Action) (State, bool) {
	to, ok := f.table[transition{f.current, a}]
	if !ok {
		return f.current, false
	}
	f.current = to
	return to, true
}

// FlowSystem drains FlowRequest events in arrival order and dispatches them
// against the flow table, announcing applied transitions as FlowChanged.
type FlowSystem struct {
	requests *event.Reader[FlowRequest]
}

func NewFlowSystem(bus *event.Bus) *FlowSystem {
	return &FlowSystem{requests: event.NewReader[FlowRequest](bus)}
}

func (s *FlowSystem) Name() string { return "flow" }

func (s *FlowSystem) Access() schedule.Access {
	return schedule.Access{
		ReadsResources:  []reflect.Type{schedule.T[FlowRequest]()},
		WritesResources: []reflect.Type{schedule.T[Flow](), schedule.T[FlowChanged]()},
	}
}

func (s *FlowSystem) Update(ctx *schedule.Context) {
	flow, ok := resource.GetMut[Flow](ctx.Resources)
	if !ok {
		return
	}
	for _, req := range s.requests.Drain() {
		from := flow.Current()
		to, applied := flow.Dispatch(req.Action)
		if !applied {
			ctx.Log.Debug("flow action ignored",
				zap.String("state", from.String()),
				zap.String("action", req.Action.String()))
			continue
		}
		ctx.Log.Info("flow transition",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.String("action", req.Action.String()))
		event.Publish(ctx.Events, FlowChanged{From: from, To: to})
	}
}
