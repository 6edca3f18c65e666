// Package logdiff renders activity log metadata either as a field-level
// before/after diff or as a flat property table.
package logdiff

import (
	"encoding/json"
	"sort"
	"strings"
)

// Kind tells which table a View holds.
type Kind string

const (
	KindDiff  Kind = "diff"
	KindFlat  Kind = "flat"
	KindEmpty Kind = "empty"
)

// Change is one row of the diff table.
type Change struct {
	Field    string `json:"field"`
	Label    string `json:"label"`
	Previous string `json:"previous"`
	Updated  string `json:"updated"`
	Changed  bool   `json:"changed"`
}

// Property is one row of the flat table.
type Property struct {
	Property string `json:"property"`
	Label    string `json:"label"`
	Value    string `json:"value"`
}

// View is the rendered metadata.
type View struct {
	Kind       Kind       `json:"kind"`
	Changes    []Change   `json:"changes,omitempty"`
	Properties []Property `json:"properties,omitempty"`
}

// keys hidden from the flat table unless nothing else is left
var diffKeys = map[string]bool{"changes": true, "before": true, "after": true}

// Parse decodes string and byte payloads as JSON. Undecodable text is
// returned unchanged.
func Parse(raw any) any {
	var data []byte
	switch x := raw.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		data = []byte(x)
	case []byte:
		if len(x) == 0 {
			return nil
		}
		data = x
	case json.RawMessage:
		if len(x) == 0 {
			return nil
		}
		data = x
	default:
		return raw
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}

// Render renders raw with the default formatter.
func Render(raw any) View {
	return Default.Render(raw)
}

// Render parses raw and picks the diff table when it has a before/after
// shape, otherwise the flat table.
func (f Formatter) Render(raw any) View {
	meta := Parse(raw)
	switch m := meta.(type) {
	case nil:
		return View{Kind: KindEmpty}
	case map[string]any:
		if before, after, ok := diffShape(m); ok {
			return f.diff(before, after)
		}
		return f.flat(m)
	}
	return View{Kind: KindFlat, Properties: []Property{{Property: "value", Label: "Value", Value: f.FormatValue(meta)}}}
}

// diffShape accepts {before?, after?} where each present side is an
// object; a null side counts as empty.
func diffShape(m map[string]any) (map[string]any, map[string]any, bool) {
	rawBefore, hasBefore := m["before"]
	rawAfter, hasAfter := m["after"]
	if !hasBefore && !hasAfter {
		return nil, nil, false
	}
	before, ok := asObject(rawBefore)
	if !ok {
		return nil, nil, false
	}
	after, ok := asObject(rawAfter)
	if !ok {
		return nil, nil, false
	}
	return before, after, true
}

func asObject(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case nil:
		return map[string]any{}, true
	case map[string]any:
		return x, true
	}
	return nil, false
}

func (f Formatter) diff(before, after map[string]any) View {
	seen := make(map[string]bool, len(before)+len(after))
	keys := make([]string, 0, len(before)+len(after))
	for _, src := range []map[string]any{before, after} {
		for k := range src {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	changes := make([]Change, 0, len(keys))
	for _, k := range keys {
		prev := f.FormatValue(before[k])
		next := f.FormatValue(after[k])
		changes = append(changes, Change{
			Field:    k,
			Label:    Humanize(k),
			Previous: prev,
			Updated:  next,
			Changed:  prev != next,
		})
	}
	return View{Kind: KindDiff, Changes: changes}
}

func (f Formatter) flat(m map[string]any) View {
	if len(m) == 0 {
		return View{Kind: KindEmpty}
	}
	all := make([]string, 0, len(m))
	for k := range m {
		all = append(all, k)
	}
	sort.Strings(all)

	shown := make([]string, 0, len(all))
	for _, k := range all {
		if !diffKeys[k] {
			shown = append(shown, k)
		}
	}
	if len(shown) == 0 {
		shown = all
	}

	props := make([]Property, 0, len(shown))
	for _, k := range shown {
		props = append(props, Property{Property: k, Label: Humanize(k), Value: f.FormatValue(m[k])})
	}
	return View{Kind: KindFlat, Properties: props}
}

// Snapshot builds {before, after} metadata from two JSON-encodable values,
// keeping only the keys whose values differ plus any listed in keep.
// A nil side is omitted, so creates carry only after and deletes only
// before.
func Snapshot(before, after any, keep ...string) (map[string]any, error) {
	b, err := toObject(before)
	if err != nil {
		return nil, err
	}
	a, err := toObject(after)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if b != nil && a != nil {
		kept := make(map[string]bool, len(keep))
		for _, k := range keep {
			kept[k] = true
		}
		bd, ad := map[string]any{}, map[string]any{}
		for k, bv := range b {
			av, ok := a[k]
			if kept[k] || !ok || !equalJSON(bv, av) {
				bd[k] = bv
			}
		}
		for k, av := range a {
			bv, ok := b[k]
			if kept[k] || !ok || !equalJSON(bv, av) {
				ad[k] = av
			}
		}
		out["before"], out["after"] = bd, ad
		return out, nil
	}
	if b != nil {
		out["before"] = b
	}
	if a != nil {
		out["after"] = a
	}
	return out, nil
}

func toObject(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func equalJSON(a, b any) bool {
	ab, err1 := json.Marshal(a)
	bb, err2 := json.Marshal(b)
	return err1 == nil && err2 == nil && string(ab) == string(bb)
}
