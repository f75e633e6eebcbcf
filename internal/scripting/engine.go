package scripting

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

//go:embed scripts
var builtin embed.FS

var ErrMissingFunction = errors.New("lua function not defined")

// Engine wraps a single gopher-lua VM for game logic execution.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine with the built-in scripts, then loads any
// overrides found under scriptsDir. An empty scriptsDir skips overrides.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadBuiltin("scripts/loot"); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load builtin loot scripts: %w", err)
	}
	if scriptsDir != "" {
		if err := e.loadDir(filepath.Join(scriptsDir, "loot")); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load loot scripts: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) Close() { e.vm.Close() }

func (e *Engine) loadBuiltin(dir string) error {
	entries, err := builtin.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".lua" {
			continue
		}
		p := path.Join(dir, entry.Name())
		src, err := builtin.ReadFile(p)
		if err != nil {
			return err
		}
		if err := e.vm.DoString(string(src)); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// loadDir loads all .lua files in a directory. Missing directories are skipped.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		p := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", p))
	}
	return nil
}

// LootContext is the input of one loot count calculation for one map.
type LootContext struct {
	Looters         int
	Items           int
	Probability     float64
	Period          time.Duration
	TimeWithoutLoot time.Duration
}

// CalcLootCount calls the Lua loot_count function. Negative results are
// clamped to zero.
func (e *Engine) CalcLootCount(ctx LootContext) (int, error) {
	fn := e.vm.GetGlobal("loot_count")
	if fn == lua.LNil {
		return 0, fmt.Errorf("loot_count: %w", ErrMissingFunction)
	}

	t := e.vm.NewTable()
	t.RawSetString("looters", lua.LNumber(ctx.Looters))
	t.RawSetString("items", lua.LNumber(ctx.Items))
	t.RawSetString("probability", lua.LNumber(ctx.Probability))
	t.RawSetString("period", lua.LNumber(ctx.Period.Seconds()))
	t.RawSetString("time_without_loot", lua.LNumber(ctx.TimeWithoutLoot.Seconds()))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		return 0, fmt.Errorf("call loot_count: %w", err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("loot_count returned %s, want number", result.Type())
	}
	if n < 0 {
		return 0, nil
	}
	return int(n), nil
}
