package loader

import (
	"bytes"
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultLuaTimeout bounds the evaluation of a single Lua config file.
const DefaultLuaTimeout = 5 * time.Second

// LuaParser evaluates Lua configuration files.
//
// The chunk must return either a table, used as is, or a function. A
// function is called with the parser arguments converted to Lua values and
// must itself return a table. Each file runs in a fresh state with only the
// base, table, string and math libraries opened.
type LuaParser struct {
	timeout time.Duration
}

// LuaOption configures a LuaParser.
type LuaOption func(*LuaParser)

// WithLuaTimeout sets the evaluation timeout.
func WithLuaTimeout(d time.Duration) LuaOption {
	return func(p *LuaParser) {
		p.timeout = d
	}
}

// NewLuaParser creates a Lua parser.
func NewLuaParser(opts ...LuaOption) *LuaParser {
	p := &LuaParser{timeout: DefaultLuaTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse implements Parser.
func (p *LuaParser) Parse(path string, data []byte, args ...any) (map[string]any, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibraries(L)

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	L.SetContext(ctx)

	chunk, err := L.Load(bytes.NewReader(data), path)
	if err != nil {
		return nil, newParseError(path, err)
	}

	L.Push(chunk)
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, newParseError(path, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	if fn, ok := ret.(*lua.LFunction); ok {
		L.Push(fn)
		for _, arg := range args {
			L.Push(toLuaValue(L, arg))
		}
		if err := L.PCall(len(args), 1, nil); err != nil {
			return nil, newParseError(path, err)
		}
		ret = L.Get(-1)
		L.Pop(1)
	}

	switch v := ret.(type) {
	case *lua.LNilType:
		return nil, nil
	case *lua.LTable:
		if m, ok := tableToGo(v, make(map[*lua.LTable]bool)).(map[string]any); ok {
			return m, nil
		}
		return nil, &ParseError{Path: path, Message: "config must be a table with named keys, got a list"}
	default:
		return nil, &ParseError{
			Path:    path,
			Message: fmt.Sprintf("config must return a table or a function, got %s", ret.Type()),
		}
	}
}

// openSafeLibraries opens only the libraries a config file may need.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

func toGoValue(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return tableToGo(v, visited)
	default:
		return nil
	}
}

// tableToGo converts a Lua table to a slice when its keys are exactly
// 1..n, and to a map otherwise. Empty tables become empty maps.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	maxN := t.MaxN()
	count := 0
	t.ForEach(func(_, _ lua.LValue) {
		count++
	})

	if maxN > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = toGoValue(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = kv.String()
		default:
			key = k.String()
		}
		m[key] = toGoValue(v, visited)
	})
	return m
}

func toLuaValue(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []string:
		t := L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, lua.LString(item))
		}
		return t
	case []any:
		t := L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, toLuaValue(L, item))
		}
		return t
	case map[string]string:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, lua.LString(item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, toLuaValue(L, item))
		}
		return t
	case fmt.Stringer:
		return lua.LString(val.String())
	default:
		return lua.LString(fmt.Sprint(val))
	}
}
