package game

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/worldkeeper/engine/internal/core/ecs"
	"github.com/worldkeeper/engine/internal/core/event"
	"github.com/worldkeeper/engine/internal/core/resource"
	"github.com/worldkeeper/engine/internal/data"
	"github.com/worldkeeper/engine/internal/host"
)

const step = 100 * time.Millisecond

func testScene() *data.Scene {
	return &data.Scene{
		Name: "test",
		Entities: []data.EntityDef{
			{
				Name:     "keeper",
				Count:    1,
				Player:   true,
				Position: &data.PositionDef{X: 10, Y: 20},
				Velocity: &data.VelocityDef{},
				Health:   &data.HealthDef{Max: 100},
				Sprite:   "keeper",
			},
			{
				Name:     "rock",
				Count:    2,
				Position: &data.PositionDef{X: 50, Y: 50},
				Health:   &data.HealthDef{Max: 5},
				Sprite:   "rock",
			},
		},
	}
}

func newTestGame(t *testing.T) (*Game, *host.ScriptedInput) {
	t.Helper()
	input := &host.ScriptedInput{}
	g, err := New(Options{
		Log:     zap.NewNop(),
		Workers: 2,
		Input:   input,
		Scene:   testScene(),
	})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g, input
}

func press(in *host.ScriptedInput, key host.Key) {
	in.Queue(host.InputEvent{Key: key, Pressed: true})
}

func playerID(t *testing.T, g *Game) ecs.EntityID {
	t.Helper()
	var id ecs.EntityID
	found := false
	g.Bundles.Players.Each(func(e ecs.EntityID, _ *Player) {
		id = e
		found = true
	})
	if !found {
		t.Fatal("no player entity")
	}
	return id
}

func rockID(t *testing.T, g *Game) ecs.EntityID {
	t.Helper()
	var id ecs.EntityID
	found := false
	g.Bundles.Sprites.Each(func(e ecs.EntityID, sp *Sprite) {
		if sp.Name == "rock" && !found {
			id = e
			found = true
		}
	})
	if !found {
		t.Fatal("no rock entity")
	}
	return id
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestGameRun(t *testing.T) {
	g, in := newTestGame(t)
	died := event.NewReader[PlayerDied](g.Events)

	// Enter on the menu starts a run and populates the scene the same frame.
	press(in, host.KeyEnter)
	g.Tick(step)
	if g.Flow() != StatePlaying {
		t.Fatalf("expected playing, got %v", g.Flow())
	}
	if n := g.Bundles.Positions.Len(); n != 3 {
		t.Fatalf("expected 3 positioned entities, got %d", n)
	}

	// Holding right moves the player at PlayerSpeed.
	player := playerID(t, g)
	press(in, host.KeyRight)
	g.Tick(step)
	g.Tick(step)
	pos, _ := g.Bundles.Positions.Get(player)
	wantX := 10 + 2*PlayerSpeed*step.Seconds()
	if !near(pos.X, wantX) {
		t.Fatalf("player x = %v, want %v", pos.X, wantX)
	}

	// Pause freezes movement on the very frame it lands.
	press(in, host.KeyP)
	g.Tick(step)
	if g.Flow() != StatePaused {
		t.Fatalf("expected paused, got %v", g.Flow())
	}
	g.Tick(step)
	if p, _ := g.Bundles.Positions.Get(player); !near(p.X, wantX) {
		t.Fatalf("player moved while paused: %v", p.X)
	}

	// Resume picks the held key back up.
	press(in, host.KeyP)
	g.Tick(step)
	if g.Flow() != StatePlaying {
		t.Fatalf("expected playing after resume, got %v", g.Flow())
	}
	if p, _ := g.Bundles.Positions.Get(player); p.X <= wantX {
		t.Fatalf("player did not move after resume: %v", p.X)
	}
	in.Queue(host.InputEvent{Key: host.KeyRight, Pressed: false})
	g.Tick(step)

	// A dead rock is despawned and scored with the fallback value.
	rock := rockID(t, g)
	if h, ok := g.Bundles.Healths.Get(rock); ok {
		h.Current = 0
	}
	g.Tick(step)
	if g.World.Alive(rock) {
		t.Fatal("dead rock still alive")
	}
	sess, _ := resource.Get[Session](g.Resources)
	if sess.Score != fallbackKillScore || sess.Kills != 1 {
		t.Fatalf("session after kill: %+v", sess)
	}

	// Player death ends the run.
	if h, ok := g.Bundles.Healths.Get(player); ok {
		h.Current = 0
	}
	g.Tick(step)
	if g.Flow() != StateGameOver {
		t.Fatalf("expected game_over, got %v", g.Flow())
	}
	if len(died.Drain()) != 1 {
		t.Fatal("expected one PlayerDied event")
	}
	if g.World.Alive(player) {
		t.Fatal("dead player still alive")
	}

	// R on the game-over screen clears the world back to the menu.
	press(in, host.KeyR)
	g.Tick(step)
	if g.Flow() != StateMainMenu {
		t.Fatalf("expected main_menu, got %v", g.Flow())
	}
	if n := g.Bundles.Positions.Len(); n != 0 {
		t.Fatalf("expected empty world, got %d entities", n)
	}

	// Starting again resets the session and respawns the scene.
	press(in, host.KeyEnter)
	g.Tick(step)
	sess, _ = resource.Get[Session](g.Resources)
	if sess.Score != 0 || sess.Kills != 0 {
		t.Fatalf("session not reset: %+v", sess)
	}
	if n := g.Bundles.Positions.Len(); n != 3 {
		t.Fatalf("expected fresh scene, got %d entities", n)
	}
}

func TestPauseActionsIgnoredOnMenu(t *testing.T) {
	g, in := newTestGame(t)
	press(in, host.KeyP)
	press(in, host.KeyR)
	g.Tick(step)
	g.Tick(step)
	if g.Flow() != StateMainMenu {
		t.Fatalf("menu should ignore pause/restart keys, got %v", g.Flow())
	}
}

func TestHUDSnapshot(t *testing.T) {
	g, in := newTestGame(t)
	press(in, host.KeyEnter)
	g.Tick(step)

	rs, ok := resource.Get[RenderState](g.Resources)
	if !ok {
		t.Fatal("render state missing")
	}
	if rs.Flow != "playing" {
		t.Fatalf("hud flow label: %q", rs.Flow)
	}
	if len(rs.Sprites) != 3 {
		t.Fatalf("expected 3 draws, got %d", len(rs.Sprites))
	}
	// Sorted draws: keeper before the two rocks.
	if rs.Sprites[0].Name != "keeper" || rs.Sprites[1].Name != "rock" {
		t.Fatalf("draw order wrong: %+v", rs.Sprites)
	}
}
