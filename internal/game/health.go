package game

import (
	"reflect"

	"github.com/worldkeeper/engine/internal/core/ecs"
	"github.com/worldkeeper/engine/internal/core/event"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/core/schedule"
)

// HealthSystem removes entities whose health hit zero. Player death also
// requests the die transition; everything else announces the kill so the
// session routine can score it. Despawns issued mid-pass land in the command
// buffer and apply at the query boundary.
type HealthSystem struct {
	bundles *Bundles
}

func NewHealthSystem(bundles *Bundles) *HealthSystem {
	return &HealthSystem{bundles: bundles}
}

func (s *HealthSystem) Name() string { return "health" }

func (s *HealthSystem) Access() schedule.Access {
	return schedule.Access{
		// Despawning clears every store, so the signature declares the full
		// structural write set, not just the bundles it inspects.
		WritesBundles: []reflect.Type{
			schedule.T[Position](),
			schedule.T[Velocity](),
			schedule.T[Health](),
			schedule.T[Sprite](),
			schedule.T[Player](),
		},
		ReadsResources: []reflect.Type{schedule.T[Flow]()},
		WritesResources: []reflect.Type{
			schedule.T[PlayerDied](),
			schedule.T[EntityKilled](),
			schedule.T[FlowRequest](),
		},
	}
}

func (s *HealthSystem) Update(ctx *schedule.Context) {
	flow, ok := resource.Get[Flow](ctx.Resources)
	if !ok || flow.Current() != StatePlaying {
		return
	}
	s.bundles.Healths.Each(func(id ecs.EntityID, h *Health) {
		if h.Current > 0 {
			return
		}
		if s.bundles.Players.Has(id) {
			event.Publish(ctx.Events, PlayerDied{Entity: id})
			event.Publish(ctx.Events, FlowRequest{Action: ActionDie})
		} else {
			name := ""
			if sp, ok := s.bundles.Sprites.Get(id); ok {
				name = sp.Name
			}
			event.Publish(ctx.Events, EntityKilled{Entity: id, Name: name})
		}
		ctx.World.Despawn(id)
	})
}
