package game

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/worldkeeper/engine/internal/core/ecs"
	"github.com/worldkeeper/engine/internal/core/event"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/core/schedule"
	"github.com/worldkeeper/engine/internal/data"
	"github.com/worldkeeper/engine/internal/host"
	"github.com/worldkeeper/engine/internal/scripting"
)

// ScriptSystem hands a snapshot of the world to the Lua rule pack once per
// frame and executes the commands it returns. Scripts never mutate stores
// directly; every structural change routes through the same deferral path as
// native routines.
type ScriptSystem struct {
	rules   *scripting.Engine
	bundles *Bundles
	scene   *data.Scene
}

func NewScriptSystem(rules *scripting.Engine, bundles *Bundles, scene *data.Scene) *ScriptSystem {
	return &ScriptSystem{rules: rules, bundles: bundles, scene: scene}
}

func (s *ScriptSystem) Name() string { return "script" }

func (s *ScriptSystem) Access() schedule.Access {
	return schedule.Access{
		// Structural writes: spawn and despawn commands touch every store,
		// the Player tag included.
		WritesBundles: []reflect.Type{
			schedule.T[Position](),
			schedule.T[Velocity](),
			schedule.T[Health](),
			schedule.T[Sprite](),
			schedule.T[Player](),
		},
		ReadsResources: []reflect.Type{
			schedule.T[Flow](),
			schedule.T[host.Time](),
		},
		WritesResources: []reflect.Type{
			schedule.T[Session](),
			schedule.T[FlowRequest](),
			schedule.T[scripting.Engine](), // exclusive Lua VM access
		},
	}
}

func (s *ScriptSystem) Update(ctx *schedule.Context) {
	if s.rules == nil {
		return
	}
	fc := scripting.FrameContext{Delta: ctx.Delta.Seconds()}
	if tm, ok := resource.Get[host.Time](ctx.Resources); ok {
		fc.Frame = tm.Frame
	}
	if flow, ok := resource.Get[Flow](ctx.Resources); ok {
		fc.Flow = flow.Current().String()
	}
	if sess, ok := resource.Get[Session](ctx.Resources); ok {
		fc.Score = sess.Score
	}
	fc.EntityCount = s.bundles.Positions.Len()

	s.bundles.Players.Each(func(id ecs.EntityID, _ *Player) {
		fc.PlayerAlive = true
		if p, ok := s.bundles.Positions.Get(id); ok {
			fc.PlayerX, fc.PlayerY = p.X, p.Y
		}
		if h, ok := s.bundles.Healths.Get(id); ok {
			fc.PlayerHealth = h.Current
		}
	})

	for _, cmd := range s.rules.RunFrame(fc) {
		switch cmd.Type {
		case "spawn":
			def := s.prefab(cmd.Name)
			if def == nil {
				ctx.Log.Warn("script spawn of unknown prefab", zap.String("name", cmd.Name))
				continue
			}
			SpawnFromDefAt(ctx, s.bundles, def, cmd.X, cmd.Y)
		case "despawn_named":
			s.bundles.Sprites.Each(func(id ecs.EntityID, sp *Sprite) {
				if sp.Name == cmd.Name {
					ctx.World.Despawn(id)
				}
			})
		case "set_flow":
			if act, ok := actionFromName(cmd.Name); ok {
				event.Publish(ctx.Events, FlowRequest{Action: act})
			} else {
				ctx.Log.Warn("script requested unknown flow action", zap.String("name", cmd.Name))
			}
		case "add_score":
			if sess, ok := resource.GetMut[Session](ctx.Resources); ok {
				sess.Score += cmd.Amount
			}
		default:
			ctx.Log.Warn("script returned unknown command", zap.String("type", cmd.Type))
		}
	}
}

func (s *ScriptSystem) prefab(name string) *data.EntityDef {
	if s.scene == nil {
		return nil
	}
	for i := range s.scene.Entities {
		if s.scene.Entities[i].Name == name {
			return &s.scene.Entities[i]
		}
	}
	return nil
}

// actionFromName maps the action names scripts use onto flow actions.
// "game_over" is accepted as an alias for die.
func actionFromName(name string) (Action, bool) {
	switch name {
	case "start":
		return ActionStart, true
	case "pause":
		return ActionPause, true
	case "resume":
		return ActionResume, true
	case "die", "game_over":
		return ActionDie, true
	case "restart":
		return ActionRestart, true
	default:
		return 0, false
	}
}
