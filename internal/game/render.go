package game

import (
	"reflect"
	"sort"

	"github.com/worldkeeper/engine/internal/core/ecs"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/core/schedule"
)

// SpriteDraw is one draw request the host renderer consumes after the frame.
type SpriteDraw struct {
	Name string
	X, Y float64
}

// RenderState is the shared-state snapshot rebuilt every frame by the HUD
// routine. The host reads it between ticks; nothing in the core holds onto it.
type RenderState struct {
	Sprites []SpriteDraw
	Flow    string
	Score   int
}

// HUDSystem composes the render snapshot: every positioned sprite plus the
// flow label and score. Draws are sorted so identical frames render
// identically regardless of map iteration order.
type HUDSystem struct {
	bundles *Bundles
}

func NewHUDSystem(bundles *Bundles) *HUDSystem {
	return &HUDSystem{bundles: bundles}
}

func (s *HUDSystem) Name() string { return "hud" }

func (s *HUDSystem) Access() schedule.Access {
	return schedule.Access{
		ReadsBundles: []reflect.Type{
			schedule.T[Position](),
			schedule.T[Sprite](),
		},
		ReadsResources: []reflect.Type{
			schedule.T[Flow](),
			schedule.T[Session](),
		},
		WritesResources: []reflect.Type{schedule.T[RenderState]()},
	}
}

func (s *HUDSystem) Update(ctx *schedule.Context) {
	rs, ok := resource.GetMut[RenderState](ctx.Resources)
	if !ok {
		return
	}
	rs.Sprites = rs.Sprites[:0]
	ecs.Each2(s.bundles.Positions, s.bundles.Sprites,
		func(_ ecs.EntityID, p *Position, sp *Sprite) {
			rs.Sprites = append(rs.Sprites, SpriteDraw{Name: sp.Name, X: p.X, Y: p.Y})
		})
	sort.Slice(rs.Sprites, func(i, j int) bool {
		a, b := rs.Sprites[i], rs.Sprites[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	if flow, ok := resource.Get[Flow](ctx.Resources); ok {
		rs.Flow = flow.Current().String()
	}
	if sess, ok := resource.Get[Session](ctx.Resources); ok {
		rs.Score = sess.Score
	}
}
