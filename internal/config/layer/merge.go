package layer

import (
	"fmt"
	"strings"
)

// Merge deep-merges maps in increasing precedence and returns a new map.
// None of the inputs are modified.
func Merge(maps ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, m := range maps {
		result = DeepMerge(result, m)
	}
	return result
}

// DeepMerge recursively merges src into dst.
// Values in src override values in dst.
// Maps are merged recursively, slices are merged by index and
// other types are replaced. Values taken from src are cloned.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	if src == nil {
		return dst
	}

	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = Clone(srcVal)
			continue
		}
		dst[key] = mergeValue(dstVal, srcVal)
	}

	return dst
}

func mergeValue(dstVal, srcVal any) any {
	srcVal = normalize(srcVal)
	dstVal = normalize(dstVal)

	switch s := srcVal.(type) {
	case map[string]any:
		if d, ok := dstVal.(map[string]any); ok {
			return DeepMerge(d, s)
		}
	case []any:
		if d, ok := dstVal.([]any); ok {
			return mergeSlices(d, s)
		}
	}
	return Clone(srcVal)
}

// mergeSlices merges src over dst position by position. Elements of dst
// beyond the length of src are kept.
func mergeSlices(dst, src []any) []any {
	size := len(dst)
	if len(src) > size {
		size = len(src)
	}

	result := make([]any, size)
	for i := 0; i < size; i++ {
		switch {
		case i >= len(src):
			result[i] = dst[i]
		case i >= len(dst):
			result[i] = Clone(src[i])
		default:
			result[i] = mergeValue(dst[i], src[i])
		}
	}
	return result
}

// Clone creates a deep copy of a value. Typed string maps and slices are
// converted to their generic forms so merges treat them uniformly.
func Clone(val any) any {
	switch v := normalize(val).(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		return cloneSlice(v)
	default:
		return v
	}
}

// CloneMap creates a deep copy of a map.
func CloneMap(src map[string]any) map[string]any {
	return cloneMap(src)
}

func normalize(val any) any {
	switch v := val.(type) {
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[fmt.Sprint(k)] = item
		}
		return m
	case []string:
		s := make([]any, len(v))
		for i, item := range v {
			s[i] = item
		}
		return s
	case []map[string]any:
		s := make([]any, len(v))
		for i, item := range v {
			s[i] = item
		}
		return s
	default:
		return val
	}
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = Clone(val)
	}
	return dst
}

func cloneSlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))
	for i, val := range src {
		dst[i] = Clone(val)
	}
	return dst
}

// GetByPath retrieves a value from a nested map using a dot-separated path.
func GetByPath(data map[string]any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}

	current := any(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := normalize(current).(map[string]any)
		if !ok {
			return nil, false
		}

		val, exists := m[part]
		if !exists {
			return nil, false
		}
		current = val
	}

	return current, true
}

// SetByPath sets a value in a nested map using a dot-separated path.
// Creates intermediate maps as needed.
func SetByPath(data map[string]any, path string, value any) {
	if data == nil || path == "" {
		return
	}

	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
}
