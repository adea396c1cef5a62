// Package loader compiles Lua behaviour scripts into monster definitions.
// The Lua VM is discarded after loading; nothing runs Lua at edit time.
package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/dungeoncore/engine/state"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	file     string
	monsters []rawMonster
}

// Load reads all .lua files from dir, compiles them into monster
// definitions, validates them and returns the immutable Defs. Warnings are
// logged; errors are returned together as a *ValidationError.
func Load(dir string, log *slog.Logger) (*state.Defs, error) {
	if log == nil {
		log = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading script directory %s: %w", dir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	sort.Strings(luaFiles)

	coll := &collector{}
	if err := run(coll, dir, luaFiles); err != nil {
		return nil, err
	}

	defs, ve := compile(coll)
	validate(defs, ve)
	for _, w := range ve.Warnings {
		log.Warn("behaviour script", "warning", w)
	}
	if len(ve.Errors) > 0 {
		return nil, ve
	}

	log.Info("loaded behaviour scripts", "files", len(luaFiles), "monsters", len(defs.Monsters))
	return defs, nil
}

// run executes files in a fresh sandboxed VM.
func run(coll *collector, dir string, files []string) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)
	registerAPI(L, coll)

	for _, f := range files {
		coll.file = f
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return fmt.Errorf("executing %s: %w", f, err)
		}
	}
	return nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the VM.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Scripts must compile to the same data every time.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
