package spellbook

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"rune-and-ruin/server/spell"
)

// collector accumulates spell declarations while the Lua files run.
type collector struct {
	spells []rawSpell
}

type rawSpell struct {
	id    string
	table *lua.LTable
}

// Load reads every .lua file in dir (alphabetical order), compiles the
// declared spells into a Registry, and validates it. The Lua VM is
// sandboxed and discarded once loading ends; nothing Lua survives into
// the runtime.
//
// Book files declare spells with a curried constructor:
//
//	Spell "gale-step" {
//	    name = "Gale Step",
//	    instructions = {
//	        { op = "self" },
//	        { op = "trace" },
//	        { op = "dash", distance = 4 },
//	    },
//	}
func Load(dir string) (Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading spellbook directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	sort.Strings(files)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range files {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	book, err := compile(coll)
	if err != nil {
		return nil, err
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	return book, nil
}

// openSafeLibs opens only the side-effect-free subset of the Lua standard
// libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox strips the globals a book file has no business calling.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "print",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	if mathTbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		mathTbl.RawSetString("randomseed", lua.LNil)
		mathTbl.RawSetString("random", lua.LNil)
	}
}

// registerAPI installs the Spell constructor. Curried so the book reads
// as a declaration, not a call.
func registerAPI(L *lua.LState, coll *collector) {
	L.SetGlobal("Spell", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.spells = append(coll.spells, rawSpell{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}

func compile(coll *collector) (Registry, error) {
	book := make(Registry, 0, len(coll.spells))
	for _, raw := range coll.spells {
		def, err := compileSpell(raw)
		if err != nil {
			return nil, fmt.Errorf("spell %q: %w", raw.id, err)
		}
		book = append(book, def)
	}
	return book, nil
}

func compileSpell(raw rawSpell) (Definition, error) {
	def := Definition{
		ID:          raw.id,
		Name:        getString(raw.table, "name"),
		Description: getString(raw.table, "description"),
	}
	if def.Name == "" {
		def.Name = raw.id
	}
	list := getTable(raw.table, "instructions")
	if list == nil {
		return Definition{}, fmt.Errorf("missing instructions table")
	}
	instructions, err := compileInstructions(list)
	if err != nil {
		return Definition{}, err
	}
	def.Instructions = instructions
	return def, nil
}

func compileInstructions(list *lua.LTable) ([]spell.Axiom, error) {
	n := list.MaxN()
	out := make([]spell.Axiom, 0, n)
	for i := 1; i <= n; i++ {
		tbl, ok := list.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("instruction %d is not a table", i)
		}
		ax, err := compileAxiom(tbl)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		out = append(out, ax)
	}
	return out, nil
}

func compileAxiom(tbl *lua.LTable) (spell.Axiom, error) {
	op := spell.Op(getString(tbl, "op"))
	if op == "" {
		return spell.Axiom{}, fmt.Errorf("missing op")
	}
	ax := spell.Axiom{Op: op}
	switch op {
	case spell.OpRing:
		ax.Ring = &spell.RingPayload{Radius: getInt(tbl, "radius")}
	case spell.OpDash:
		ax.Dash = &spell.DashPayload{MaxDistance: getInt(tbl, "distance")}
	case spell.OpSummon:
		ax.Summon = &spell.SummonPayload{Species: getString(tbl, "species")}
	case spell.OpHarmOrHeal:
		ax.Pulse = &spell.PulsePayload{Amount: getInt(tbl, "amount")}
	case spell.OpApplyStatus:
		ax.Status = &spell.StatusPayload{
			Kind:    getString(tbl, "status"),
			Potency: getInt(tbl, "potency"),
			Stacks:  getInt(tbl, "stacks"),
		}
	case spell.OpPlaceTrap:
		inner := getTable(tbl, "instructions")
		if inner == nil {
			return spell.Axiom{}, fmt.Errorf("place_trap needs an instructions table")
		}
		payload, err := compileInstructions(inner)
		if err != nil {
			return spell.Axiom{}, err
		}
		ax.Trap = &spell.TrapPayload{Instructions: payload}
	}
	return ax, nil
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getInt returns an integer field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}
