package game

import (
	"reflect"
	"time"

	"github.com/worldkeeper/engine/internal/core/event"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/core/schedule"
	"github.com/worldkeeper/engine/internal/scripting"
)

// Session is the shared-state record of the current run: score, kill count,
// and accumulated play time. The lifecycle routine resets it when a new run
// starts.
type Session struct {
	Score    int
	Kills    int
	PlayTime time.Duration
}

// fallbackKillScore applies when no Lua rule pack prices a kill.
const fallbackKillScore = 10

// SessionSystem accumulates play time while the flow is Playing and scores
// kills announced by the health routine. Kill values come from the Lua rules
// when loaded.
type SessionSystem struct {
	kills *event.Reader[EntityKilled]
	rules *scripting.Engine // may be nil
}

func NewSessionSystem(bus *event.Bus, rules *scripting.Engine) *SessionSystem {
	return &SessionSystem{
		kills: event.NewReader[EntityKilled](bus),
		rules: rules,
	}
}

func (s *SessionSystem) Name() string { return "session" }

func (s *SessionSystem) Access() schedule.Access {
	return schedule.Access{
		ReadsResources: []reflect.Type{
			schedule.T[Flow](),
			schedule.T[EntityKilled](),
		},
		WritesResources: []reflect.Type{
			schedule.T[Session](),
			schedule.T[scripting.Engine](), // exclusive Lua VM access
		},
	}
}

func (s *SessionSystem) Update(ctx *schedule.Context) {
	sess, ok := resource.GetMut[Session](ctx.Resources)
	if !ok {
		return
	}
	if flow, ok := resource.Get[Flow](ctx.Resources); ok && flow.Current() == StatePlaying {
		sess.PlayTime += ctx.Delta
	}
	for _, kill := range s.kills.Drain() {
		pts := fallbackKillScore
		if s.rules != nil {
			if p := s.rules.ScoreForKill(kill.Name); p > 0 {
				pts = p
			}
		}
		sess.Score += pts
		sess.Kills++
	}
}
