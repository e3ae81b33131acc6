package game

import (
	"testing"

	"github.com/worldkeeper/engine/internal/host"
)

func TestContactDamage(t *testing.T) {
	g, in := newTestGame(t)
	press(in, host.KeyEnter)
	g.Tick(step)

	player := playerID(t, g)
	rock := rockID(t, g)

	// Park the rock on the keeper.
	if rp, ok := g.Bundles.Positions.Get(rock); ok {
		pp, _ := g.Bundles.Positions.Get(player)
		rp.X, rp.Y = pp.X, pp.Y
	}
	if v, ok := g.Bundles.Velocities.Get(rock); ok {
		v.DX, v.DY = 0, 0
	}

	g.Tick(step)
	hp, _ := g.Bundles.Healths.Get(player)
	if hp.Current != 100-baseContactDamage {
		t.Fatalf("health after first contact: %d", hp.Current)
	}

	// Cooldown holds for the next frame.
	g.Tick(step)
	if hp.Current != 100-baseContactDamage {
		t.Fatalf("cooldown did not hold: %d", hp.Current)
	}

	// After the cooldown elapses the rock chips again.
	for i := 0; i < int(contactCooldown/step); i++ {
		g.Tick(step)
	}
	if hp.Current != 100-2*baseContactDamage {
		t.Fatalf("health after re-armed contact: %d", hp.Current)
	}
}
