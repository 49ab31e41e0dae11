package target

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/buildtarget/internal/config/layer"
)

// Build type keys of entry, output and html settings.
var environments = []string{string(Development), string(Production)}

// fillFromDefault sets every key that is missing or nil to the value of
// the "default" key, then drops "default".
func fillFromDefault(m map[string]any, keys ...string) map[string]any {
	if m == nil {
		m = make(map[string]any)
	}
	def := m["default"]
	for _, key := range keys {
		if m[key] == nil {
			m[key] = layer.Clone(def)
		}
	}
	delete(m, "default")
	return m
}

// fillFromDefaultDeep is fillFromDefault for map values. A nil key becomes
// a copy of "default"; a map key is merged over "default" and any of its
// falsy values is replaced with the default one. Afterwards every key holds
// the same set of settings.
func fillFromDefaultDeep(m map[string]any, keys ...string) map[string]any {
	if m == nil {
		m = make(map[string]any)
	}
	def, _ := m["default"].(map[string]any)

	for _, key := range keys {
		own, _ := m[key].(map[string]any)
		switch {
		case own == nil:
			if def == nil {
				own = make(map[string]any)
			} else {
				own = layer.CloneMap(def)
			}
		case def != nil:
			own = layer.Merge(def, own)
			for k, v := range own {
				if dv, ok := def[k]; ok && isFalsy(v) {
					own[k] = layer.Clone(dv)
				}
			}
		}
		m[key] = own
	}
	delete(m, "default")

	// A setting only one key declares is shared with the others.
	for _, key := range keys {
		own := m[key].(map[string]any)
		for _, other := range keys {
			if other == key {
				continue
			}
			for k, v := range m[other].(map[string]any) {
				if _, ok := own[k]; !ok {
					own[k] = layer.Clone(v)
				}
			}
		}
	}
	return m
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	}
	return false
}

// substitute replaces placeholders in every string of a nested value.
func substitute(val any, r *strings.Replacer) any {
	switch t := val.(type) {
	case string:
		return r.Replace(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = substitute(v, r)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = substitute(v, r)
		}
		return out
	default:
		return val
	}
}

// parseCopyItems converts a copy list. A string keeps its base name at the
// destination; a map needs non-empty "from" and "to".
func parseCopyItems(items []any) ([]CopyItem, error) {
	out := make([]CopyItem, 0, len(items))
	for i, item := range items {
		switch t := item.(type) {
		case string:
			if t == "" {
				return nil, fmt.Errorf("%w: empty path at index %d", ErrInvalidCopyItem, i)
			}
			out = append(out, CopyItem{From: t, To: filepath.Base(t)})
		case map[string]any:
			from, _ := t["from"].(string)
			to, _ := t["to"].(string)
			if from == "" || to == "" {
				return nil, fmt.Errorf("%w: index %d needs 'from' and 'to'", ErrInvalidCopyItem, i)
			}
			out = append(out, CopyItem{From: from, To: to})
		default:
			return nil, fmt.Errorf("%w: unexpected %T at index %d", ErrInvalidCopyItem, item, i)
		}
	}
	return out, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

func mapValue(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
