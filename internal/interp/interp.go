// Package interp implements the pipeline's placeholder interpolation
// grammar: `{{dotted.path}}` substitution against a context map. It is
// deliberately not a general expression language — no conditionals, no
// function calls, no arithmetic.
package interp

import (
	"encoding/json"
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// String resolves every `{{path}}` placeholder found in s against ctx and
// returns the rendered string. A placeholder whose path cannot be resolved
// is left in the output verbatim, delimiters included, so that unresolved
// references are visible rather than silently dropped.
func String(s string, ctx map[string]any) string {
	var out strings.Builder
	rest := s
	for {
		start := strings.Index(rest, openDelim)
		if start == -1 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], closeDelim)
		if end == -1 {
			out.WriteString(rest)
			break
		}
		end += start

		out.WriteString(rest[:start])
		path := strings.TrimSpace(rest[start+len(openDelim) : end])
		if val, ok := lookup(path, ctx); ok {
			out.WriteString(stringify(val))
		} else {
			out.WriteString(rest[start : end+len(closeDelim)])
		}
		rest = rest[end+len(closeDelim):]
	}
	return out.String()
}

// Value recursively interpolates every string found in v against ctx,
// descending into maps and slices and leaving every other type untouched.
// Use this to interpolate whole tool/agent config blocks in one pass.
func Value(v any, ctx map[string]any) any {
	switch t := v.(type) {
	case string:
		return String(t, ctx)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = Value(vv, ctx)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = Value(vv, ctx)
		}
		return out
	default:
		return v
	}
}

// lookup resolves a dotted path against ctx. It first tries a direct,
// literal key match for the whole path (so keys that themselves contain
// dots, like step-output keys, resolve without needing escaping). If that
// fails, it walks the path one segment at a time through nested maps. If
// any segment fails to resolve, it falls back to fallbackLookup against the
// top-level context, which also covers the original implementation's
// tolerance for `{{stepId.field}}` references where stepId's output was
// stored as a flat `{stepId}_{field}` key instead of a nested object.
func lookup(path string, ctx map[string]any) (any, bool) {
	if path == "" {
		return nil, false
	}
	if v, ok := ctx[path]; ok {
		return v, true
	}

	segments := strings.Split(path, ".")
	if v, ok := lookupSegments(segments, ctx); ok {
		return v, true
	}
	return fallbackLookup(segments, ctx)
}

// fallbackLookup searches each immediate child map of m for a key matching
// this path's first segment, descending into it and resolving the remaining
// segments from there. For a path of two or more segments it first tries
// the flattened key formed by joining all segments with underscores
// (matching the `{nodeId}_{k}` namespacing used for tool/agent outputs).
// Child maps are visited in Go map iteration order, so when more than one
// child map holds the first segment, which one supplies the value is not
// defined.
func fallbackLookup(segments []string, m map[string]any) (any, bool) {
	if len(segments) >= 2 {
		flatKey := segments[0] + "_" + strings.Join(segments[1:], "_")
		if v, ok := m[flatKey]; ok {
			return v, true
		}
	}
	for _, child := range m {
		childMap, ok := child.(map[string]any)
		if !ok {
			continue
		}
		if v, ok := childMap[segments[0]]; ok {
			if len(segments) == 1 {
				return v, true
			}
			rest, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if resolved, ok := lookupSegments(segments[1:], rest); ok {
				return resolved, true
			}
		}
	}
	return nil, false
}

// lookupSegments walks segments through nested maps starting at m, with no
// fallback search of its own.
func lookupSegments(segments []string, m map[string]any) (any, bool) {
	cur := any(m)
	for _, seg := range segments {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := mm[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// stringify renders a resolved value for substitution into template text.
// Strings are inserted verbatim; everything else is rendered as compact
// JSON so structured values remain machine-readable in the resulting text.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
