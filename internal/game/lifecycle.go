package game

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/worldkeeper/engine/internal/core/ecs"
	"github.com/worldkeeper/engine/internal/core/event"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/core/schedule"
	"github.com/worldkeeper/engine/internal/data"
)

// LifecycleSystem populates the world when play begins and tears it down when
// the flow returns to the menu. It reacts to FlowChanged, so the transition
// itself has already been validated by the flow routine.
type LifecycleSystem struct {
	changes *event.Reader[FlowChanged]
	bundles *Bundles
	scene   *data.Scene
}

func NewLifecycleSystem(bus *event.Bus, bundles *Bundles, scene *data.Scene) *LifecycleSystem {
	return &LifecycleSystem{
		changes: event.NewReader[FlowChanged](bus),
		bundles: bundles,
		scene:   scene,
	}
}

func (s *LifecycleSystem) Name() string { return "lifecycle" }

func (s *LifecycleSystem) Access() schedule.Access {
	return schedule.Access{
		WritesBundles: []reflect.Type{
			schedule.T[Position](),
			schedule.T[Velocity](),
			schedule.T[Health](),
			schedule.T[Sprite](),
			schedule.T[Player](),
		},
		ReadsResources:  []reflect.Type{schedule.T[FlowChanged]()},
		WritesResources: []reflect.Type{schedule.T[Session]()},
	}
}

func (s *LifecycleSystem) Update(ctx *schedule.Context) {
	for _, ch := range s.changes.Drain() {
		switch {
		case ch.To == StatePlaying && ch.From == StateMainMenu:
			s.startRun(ctx)
		case ch.To == StateMainMenu:
			s.endRun(ctx)
		}
	}
}

func (s *LifecycleSystem) startRun(ctx *schedule.Context) {
	if sess, ok := resource.GetMut[Session](ctx.Resources); ok {
		*sess = Session{}
	}
	if s.scene == nil {
		return
	}
	spawned := 0
	for i := range s.scene.Entities {
		def := &s.scene.Entities[i]
		for n := 0; n < def.Count; n++ {
			SpawnFromDef(ctx, s.bundles, def)
			spawned++
		}
	}
	ctx.Log.Info("scene populated",
		zap.String("scene", s.scene.Name),
		zap.Int("entities", spawned))
}

// endRun tears down everything the run produced, scripted spawns included.
// The run owns the whole world, so clearing is by state, not by a spawn list.
func (s *LifecycleSystem) endRun(ctx *schedule.Context) {
	cleared := 0
	ctx.World.EachEntity(func(id ecs.EntityID) {
		ctx.World.Despawn(id)
		cleared++
	})
	ctx.Log.Info("scene cleared", zap.Int("entities", cleared))
}

// SpawnFromDef stamps one prefab into the world at the prefab's own position.
func SpawnFromDef(ctx *schedule.Context, b *Bundles, def *data.EntityDef) ecs.EntityID {
	return spawnDef(ctx, b, def, 0, 0, false)
}

// SpawnFromDefAt stamps one prefab at an explicit position, which is how
// scripted spawns place new entities. The override applies even at the origin.
func SpawnFromDefAt(ctx *schedule.Context, b *Bundles, def *data.EntityDef, x, y float64) ecs.EntityID {
	return spawnDef(ctx, b, def, x, y, true)
}

func spawnDef(ctx *schedule.Context, b *Bundles, def *data.EntityDef, x, y float64, place bool) ecs.EntityID {
	id := ctx.World.Spawn()
	if def.Position != nil || place {
		pos := Position{}
		pos.ScaleX, pos.ScaleY = 1, 1
		if def.Position != nil {
			pos.X, pos.Y, pos.Z = def.Position.X, def.Position.Y, def.Position.Z
		}
		if place {
			pos.X, pos.Y = x, y
		}
		attach(ctx, b.Positions, id, pos)
	}
	if def.Velocity != nil {
		attach(ctx, b.Velocities, id, Velocity{DX: def.Velocity.DX, DY: def.Velocity.DY})
	}
	if def.Health != nil {
		attach(ctx, b.Healths, id, Health{Current: def.Health.Max, Max: def.Health.Max})
	}
	if def.Sprite != "" {
		attach(ctx, b.Sprites, id, Sprite{Name: def.Sprite})
	}
	if def.Player {
		attach(ctx, b.Players, id, Player{})
	}
	return id
}

// attach logs instead of failing: a fresh ID can only collide if a prefab
// lists the same bundle twice, which is a data bug worth surfacing.
func attach[T any](ctx *schedule.Context, store *ecs.Store[T], id ecs.EntityID, v T) {
	if err := store.Attach(id, v); err != nil {
		ctx.Log.Warn("prefab attach failed",
			zap.Uint64("entity", uint64(id)),
			zap.Error(err))
	}
}
