// Package game holds the WorldKeeper gameplay layer: bundle types, the flow
// state machine, and the per-frame routines registered to the core schedule.
package game

import (
	"github.com/worldkeeper/engine/internal/core/ecs"
	"github.com/worldkeeper/engine/internal/host"
)

// Position embeds the engine's scene transform. The core never declares a
// competing spatial type; rendering reads these values verbatim.
type Position struct {
	host.Transform
}

// Velocity is units per second in world space.
type Velocity struct {
	DX, DY float64
}

type Health struct {
	Current int
	Max     int
}

// Sprite names the drawable the host renderer resolves.
type Sprite struct {
	Name string
}

// Player tags the single player-controlled entity.
type Player struct{}

// Bundles owns one store per bundle type. Every routine that touches entity
// data goes through here, so despawn reliably clears all rows.
type Bundles struct {
	Positions  *ecs.Store[Position]
	Velocities *ecs.Store[Velocity]
	Healths    *ecs.Store[Health]
	Sprites    *ecs.Store[Sprite]
	Players    *ecs.Store[Player]
}

func NewBundles(w *ecs.World) *Bundles {
	return &Bundles{
		Positions:  ecs.NewStore[Position](w),
		Velocities: ecs.NewStore[Velocity](w),
		Healths:    ecs.NewStore[Health](w),
		Sprites:    ecs.NewStore[Sprite](w),
		Players:    ecs.NewStore[Player](w),
	}
}
