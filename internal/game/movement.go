package game

import (
	"reflect"

	"github.com/worldkeeper/engine/internal/core/ecs"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/core/schedule"
)

// MovementSystem integrates velocity into position. The world clock freezes
// while the flow sits anywhere outside Playing.
type MovementSystem struct {
	bundles *Bundles
}

func NewMovementSystem(bundles *Bundles) *MovementSystem {
	return &MovementSystem{bundles: bundles}
}

func (s *MovementSystem) Name() string { return "movement" }

func (s *MovementSystem) Access() schedule.Access {
	return schedule.Access{
		ReadsBundles:   []reflect.Type{schedule.T[Velocity]()},
		WritesBundles:  []reflect.Type{schedule.T[Position]()},
		ReadsResources: []reflect.Type{schedule.T[Flow]()},
	}
}

func (s *MovementSystem) Update(ctx *schedule.Context) {
	flow, ok := resource.Get[Flow](ctx.Resources)
	if !ok || flow.Current() != StatePlaying {
		return
	}
	dt := ctx.Delta.Seconds()
	ecs.Each2(s.bundles.Positions, s.bundles.Velocities,
		func(_ ecs.EntityID, p *Position, v *Velocity) {
			p.X += v.DX * dt
			p.Y += v.DY * dt
		})
}
