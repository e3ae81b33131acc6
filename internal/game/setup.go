package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/worldkeeper/engine/internal/core/ecs"
	"github.com/worldkeeper/engine/internal/core/event"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/core/schedule"
	"github.com/worldkeeper/engine/internal/data"
	"github.com/worldkeeper/engine/internal/host"
	"github.com/worldkeeper/engine/internal/scripting"
)

// Frame phases in execution order.
const (
	PhaseInput   = "input"
	PhaseLogic   = "logic"
	PhasePhysics = "physics"
	PhaseUI      = "ui"
)

// PlayerSpeed is the steering speed in world units per second.
const PlayerSpeed = 120.0

// Options wires a Game together. Rules may be nil when scripting is disabled;
// Scene may be nil for an empty world.
type Options struct {
	Log     *zap.Logger
	Workers int
	Input   host.Input
	Scene   *data.Scene
	Rules   *scripting.Engine
}

// Game bundles the built world, stores, and schedule for the frame loop.
type Game struct {
	World     *ecs.World
	Bundles   *Bundles
	Resources *resource.Store
	Events    *event.Bus
	Schedule  *schedule.Schedule

	log *zap.Logger
}

// New builds the full frame pipeline: phases chained input through ui, all
// gameplay routines registered, schedule built. Any configuration error here
// is fatal to startup.
func New(opts Options) (*Game, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	world := ecs.NewWorld()
	bundles := NewBundles(world)
	resources := resource.NewStore()
	bus := event.NewBus()

	if err := resource.Register(resources, NewFlow()); err != nil {
		return nil, fmt.Errorf("register flow: %w", err)
	}
	if err := resource.Register(resources, &Session{}); err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}
	if err := resource.Register(resources, &RenderState{}); err != nil {
		return nil, fmt.Errorf("register render state: %w", err)
	}
	if err := resource.Register(resources, &host.Time{}); err != nil {
		return nil, fmt.Errorf("register time: %w", err)
	}

	sched := schedule.New(opts.Log, opts.Workers)
	if err := sched.AddPhase(PhaseInput, PhaseLogic, PhasePhysics, PhaseUI); err != nil {
		return nil, err
	}
	if err := sched.Chain(PhaseInput, PhaseLogic, PhasePhysics, PhaseUI); err != nil {
		return nil, err
	}

	regs := []struct {
		phase string
		sys   schedule.System
	}{
		{PhaseInput, NewPumpSystem(opts.Input)},
		{PhaseInput, NewControlSystem(bus, bundles, PlayerSpeed)},
		{PhaseLogic, NewScriptSystem(opts.Rules, bundles, opts.Scene)},
		{PhaseLogic, NewCollisionSystem(bundles, opts.Rules)},
		{PhaseLogic, NewHealthSystem(bundles)},
		{PhaseLogic, NewFlowSystem(bus)},
		{PhaseLogic, NewSessionSystem(bus, opts.Rules)},
		{PhaseLogic, NewLifecycleSystem(bus, bundles, opts.Scene)},
		{PhasePhysics, NewMovementSystem(bundles)},
		{PhaseUI, NewHUDSystem(bundles)},
	}
	for _, r := range regs {
		if err := sched.Register(r.phase, r.sys); err != nil {
			return nil, err
		}
	}
	if err := sched.Build(); err != nil {
		return nil, err
	}

	return &Game{
		World:     world,
		Bundles:   bundles,
		Resources: resources,
		Events:    bus,
		Schedule:  sched,
		log:       opts.Log,
	}, nil
}

// Tick advances the simulation one frame with the host-supplied delta.
func (g *Game) Tick(delta time.Duration) {
	if tm, ok := resource.GetMut[host.Time](g.Resources); ok {
		tm.Delta = delta
		tm.Elapsed += delta
		tm.Frame++
	}
	g.Schedule.Tick(&schedule.Context{
		World:     g.World,
		Resources: g.Resources,
		Events:    g.Events,
		Delta:     delta,
		Log:       g.log,
	})
}

// Flow returns the current flow state, for loop-level decisions and logging.
func (g *Game) Flow() State {
	if f, ok := resource.Get[Flow](g.Resources); ok {
		return f.Current()
	}
	return StateMainMenu
}
