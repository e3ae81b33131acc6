package game

import (
	"reflect"
	"time"

	"github.com/worldkeeper/engine/internal/core/ecs"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/core/schedule"
	"github.com/worldkeeper/engine/internal/scripting"
)

const (
	contactRadius     = 24.0
	contactCooldown   = time.Second
	baseContactDamage = 5
)

// CollisionSystem applies contact damage to the player from any sprite inside
// the contact radius. Damage values route through the Lua rules when loaded.
// Each attacker re-arms after a cooldown, so a rock resting on the keeper
// chips once per second instead of once per frame.
type CollisionSystem struct {
	bundles   *Bundles
	rules     *scripting.Engine // may be nil
	cooldowns map[ecs.EntityID]time.Duration
}

func NewCollisionSystem(bundles *Bundles, rules *scripting.Engine) *CollisionSystem {
	return &CollisionSystem{
		bundles:   bundles,
		rules:     rules,
		cooldowns: make(map[ecs.EntityID]time.Duration),
	}
}

func (s *CollisionSystem) Name() string { return "collision" }

func (s *CollisionSystem) Access() schedule.Access {
	return schedule.Access{
		ReadsBundles: []reflect.Type{
			schedule.T[Position](),
			schedule.T[Sprite](),
			schedule.T[Player](),
		},
		WritesBundles:  []reflect.Type{schedule.T[Health]()},
		ReadsResources: []reflect.Type{schedule.T[Flow]()},
		// The Lua VM is single-goroutine; exclusive access keeps every
		// script-calling routine out of shared waves.
		WritesResources: []reflect.Type{schedule.T[scripting.Engine]()},
	}
}

func (s *CollisionSystem) Update(ctx *schedule.Context) {
	flow, ok := resource.Get[Flow](ctx.Resources)
	if !ok || flow.Current() != StatePlaying {
		return
	}

	for id, left := range s.cooldowns {
		left -= ctx.Delta
		if left <= 0 {
			delete(s.cooldowns, id)
		} else {
			s.cooldowns[id] = left
		}
	}

	var player ecs.EntityID
	var playerPos *Position
	var playerHP *Health
	s.bundles.Players.Each(func(id ecs.EntityID, _ *Player) {
		player = id
		playerPos, _ = s.bundles.Positions.Get(id)
		playerHP, _ = s.bundles.Healths.Get(id)
	})
	if playerPos == nil || playerHP == nil || playerHP.Current <= 0 {
		return
	}

	ecs.Each2(s.bundles.Positions, s.bundles.Sprites,
		func(id ecs.EntityID, p *Position, sp *Sprite) {
			if id == player {
				return
			}
			if _, cooling := s.cooldowns[id]; cooling {
				return
			}
			dx := p.X - playerPos.X
			dy := p.Y - playerPos.Y
			if dx*dx+dy*dy > contactRadius*contactRadius {
				return
			}
			dmg := baseContactDamage
			if s.rules != nil {
				res := s.rules.CalcCollision(scripting.CollisionContext{
					AttackerName: sp.Name,
					BaseDamage:   baseContactDamage,
					TargetHealth: playerHP.Current,
					TargetMax:    playerHP.Max,
				})
				dmg = res.Damage
			}
			playerHP.Current -= dmg
			s.cooldowns[id] = contactCooldown
		})
}
