package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

const tickScript = `
function world_tick(ctx)
    local cmds = {}
    if ctx.flow == "playing" and ctx.entity_count < 3 then
        cmds[#cmds + 1] = {type = "spawn", name = "rock", x = ctx.frame * 10, y = 5}
    end
    if ctx.player.alive == false then
        cmds[#cmds + 1] = {type = "set_flow", name = "game_over"}
    end
    return cmds
end

function score_for_kill(name)
    if name == "rock" then
        return 25
    end
    return 0
end

function calc_collision(ctx)
    local dmg = ctx.base_damage * 2
    return {damage = dmg, lethal = ctx.target_health <= dmg}
end
`

func newTestEngine(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rules.lua"), []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestRunFrame(t *testing.T) {
	e := newTestEngine(t, tickScript)

	t.Run("spawn request below population floor", func(t *testing.T) {
		cmds := e.RunFrame(FrameContext{
			Frame: 4, Flow: "playing", EntityCount: 1, PlayerAlive: true,
		})
		if len(cmds) != 1 {
			t.Fatalf("expected 1 command, got %d", len(cmds))
		}
		c := cmds[0]
		if c.Type != "spawn" || c.Name != "rock" || c.X != 40 || c.Y != 5 {
			t.Fatalf("unexpected command: %+v", c)
		}
	})

	t.Run("dead player requests flow change", func(t *testing.T) {
		cmds := e.RunFrame(FrameContext{
			Frame: 9, Flow: "playing", EntityCount: 10, PlayerAlive: false,
		})
		if len(cmds) != 1 || cmds[0].Type != "set_flow" || cmds[0].Name != "game_over" {
			t.Fatalf("unexpected commands: %+v", cmds)
		}
	})

	t.Run("no commands when nothing applies", func(t *testing.T) {
		cmds := e.RunFrame(FrameContext{
			Frame: 1, Flow: "main_menu", EntityCount: 10, PlayerAlive: true,
		})
		if len(cmds) != 0 {
			t.Fatalf("expected none, got %+v", cmds)
		}
	})
}

func TestScoreForKill(t *testing.T) {
	e := newTestEngine(t, tickScript)
	if got := e.ScoreForKill("rock"); got != 25 {
		t.Fatalf("rock score: %d", got)
	}
	if got := e.ScoreForKill("unknown"); got != 0 {
		t.Fatalf("unknown score: %d", got)
	}
}

func TestCalcCollision(t *testing.T) {
	e := newTestEngine(t, tickScript)
	res := e.CalcCollision(CollisionContext{AttackerName: "rock", BaseDamage: 10, TargetHealth: 15, TargetMax: 100})
	if res.Damage != 20 || !res.Lethal {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestMissingFunctionsFallBack(t *testing.T) {
	e := newTestEngine(t, "-- no rule pack\n")
	if cmds := e.RunFrame(FrameContext{Frame: 1}); cmds != nil {
		t.Fatalf("expected nil commands, got %+v", cmds)
	}
	if got := e.ScoreForKill("rock"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	res := e.CalcCollision(CollisionContext{BaseDamage: 7, TargetHealth: 5})
	if res.Damage != 7 || !res.Lethal {
		t.Fatalf("fallback wrong: %+v", res)
	}
}

func TestMissingScriptsDirIsFine(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "absent"), zap.NewNop())
	if err != nil {
		t.Fatalf("expected nil error for missing dir: %v", err)
	}
	e.Close()
}

func TestBrokenScriptFailsLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function oops("), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if _, err := NewEngine(dir, zap.NewNop()); err == nil {
		t.Fatal("expected load error")
	}
}
