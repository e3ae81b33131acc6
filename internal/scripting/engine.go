package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for data-driven gameplay rules.
// Single-goroutine access only (called from one routine per frame).
// Hot-reload planned via atomic swap.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}

	// Optional rule packs layered on top of the base scripts.
	for _, sub := range []string{"rules", "waves"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// FrameContext holds pre-packed world data for one scripted tick.
type FrameContext struct {
	Frame        uint64
	Delta        float64 // seconds
	Flow         string  // current flow state name
	Score        int
	EntityCount  int
	PlayerX      float64
	PlayerY      float64
	PlayerHealth int
	PlayerAlive  bool
}

// Command is a single action returned by the Lua tick. The caller translates
// these into deferred world mutations; scripts never touch the store directly.
type Command struct {
	Type   string // "spawn", "despawn_named", "set_flow", "add_score"
	Name   string // prefab name for spawn, entity name for despawn, state for set_flow
	X, Y   float64
	Amount int
}

// RunFrame calls Lua world_tick(ctx) and returns the commands it requested.
// A missing world_tick is fine: rule packs are optional.
func (e *Engine) RunFrame(ctx FrameContext) []Command {
	fn := e.vm.GetGlobal("world_tick")
	if fn == lua.LNil {
		return nil
	}

	// Build context table
	t := e.vm.NewTable()
	t.RawSetString("frame", lua.LNumber(ctx.Frame))
	t.RawSetString("delta", lua.LNumber(ctx.Delta))
	t.RawSetString("flow", lua.LString(ctx.Flow))
	t.RawSetString("score", lua.LNumber(ctx.Score))
	t.RawSetString("entity_count", lua.LNumber(ctx.EntityCount))

	pl := e.vm.NewTable()
	pl.RawSetString("x", lua.LNumber(ctx.PlayerX))
	pl.RawSetString("y", lua.LNumber(ctx.PlayerY))
	pl.RawSetString("health", lua.LNumber(ctx.PlayerHealth))
	if ctx.PlayerAlive {
		pl.RawSetString("alive", lua.LTrue)
	} else {
		pl.RawSetString("alive", lua.LFalse)
	}
	t.RawSetString("player", pl)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua world_tick error", zap.Error(err), zap.Uint64("frame", ctx.Frame))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}

	// Parse commands array
	var cmds []Command
	rt.ForEach(func(_, v lua.LValue) {
		if row, ok := v.(*lua.LTable); ok {
			cmds = append(cmds, Command{
				Type:   lStr(row, "type"),
				Name:   lStr(row, "name"),
				X:      float64(lua.LVAsNumber(row.RawGetString("x"))),
				Y:      float64(lua.LVAsNumber(row.RawGetString("y"))),
				Amount: lInt(row, "amount"),
			})
		}
	})
	return cmds
}

// ScoreForKill calls Lua score_for_kill(name). Unknown names score zero.
func (e *Engine) ScoreForKill(name string) int {
	fn := e.vm.GetGlobal("score_for_kill")
	if fn == lua.LNil {
		return 0
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(name)); err != nil {
		e.log.Error("lua score_for_kill error", zap.Error(err), zap.String("name", name))
		return 0
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(result))
}

// CollisionContext holds pre-packed data for a contact damage calculation.
type CollisionContext struct {
	AttackerName string
	BaseDamage   int
	TargetHealth int
	TargetMax    int
}

// CollisionResult is returned by the Lua collision function.
type CollisionResult struct {
	Damage int
	Lethal bool
}

// CalcCollision calls the Lua calc_collision function. When no rule pack
// defines it, base damage applies unmodified.
func (e *Engine) CalcCollision(ctx CollisionContext) CollisionResult {
	fallback := CollisionResult{
		Damage: ctx.BaseDamage,
		Lethal: ctx.TargetHealth <= ctx.BaseDamage,
	}

	fn := e.vm.GetGlobal("calc_collision")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("attacker", lua.LString(ctx.AttackerName))
	t.RawSetString("base_damage", lua.LNumber(ctx.BaseDamage))
	t.RawSetString("target_health", lua.LNumber(ctx.TargetHealth))
	t.RawSetString("target_max", lua.LNumber(ctx.TargetMax))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_collision error", zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua calc_collision returned non-table")
		return fallback
	}

	return CollisionResult{
		Damage: lInt(rt, "damage"),
		Lethal: rt.RawGetString("lethal") == lua.LTrue,
	}
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
