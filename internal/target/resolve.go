package target

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/buildtarget/internal/config/layer"
	"github.com/dshills/buildtarget/internal/project"
)

// resolve builds the target name from its declared override.
func (r *Resolver) resolve(name string, override map[string]any, hash string) (Target, error) {
	override = layer.CloneMap(override)
	if override == nil {
		override = make(map[string]any)
	}

	typ := TypeNode
	if raw, ok := override["type"]; ok && raw != nil {
		t, err := ParseType(fmt.Sprint(raw))
		if err != nil {
			return Target{}, newError(name, "resolve", err)
		}
		typ = t
	}

	sourceFolder := stringValue(override["folder"])
	if sourceFolder == "" {
		sourceFolder = name
	}

	t := layer.Merge(
		r.settings.TargetsTemplates[string(typ)],
		override,
		map[string]any{
			"name": name,
			"type": string(typ),
			"is": map[string]any{
				"node":    typ == TypeNode,
				"browser": typ == TypeBrowser,
			},
			"paths":   map[string]any{},
			"folders": map[string]any{},
		},
	)

	if (typ == TypeBrowser || boolValue(t["bundle"])) && stringValue(t["engine"]) == "" {
		return Target{}, newError(name, "resolve",
			fmt.Errorf("%w: browser and bundled targets need an engine", ErrMissingEngine))
	}

	t["entry"] = fillFromDefault(mapValue(t["entry"]), environments...)

	output := fillFromDefaultDeep(mapValue(t["output"]), environments...)
	t["originalOutput"] = layer.CloneMap(output)
	placeholders := strings.NewReplacer("[target-name]", name, "[hash]", hash)
	t["output"] = substitute(output, placeholders)

	if files, ok := layer.GetByPath(override, "dotEnv.files"); ok && files != nil {
		layer.SetByPath(t, "dotEnv.files", layer.Clone(files))
	}

	if html := mapValue(t["html"]); html != nil {
		t["html"] = fillFromDefault(html, "template", "filename")
	}

	detectLanguage(t)
	if (boolValue(t["flow"]) || boolValue(t["typeScript"])) && !boolValue(t["transpile"]) {
		t["transpile"] = true
	}

	r.computePaths(t, sourceFolder)

	switch items := t["copy"].(type) {
	case nil:
	case []any:
		copyItems, err := parseCopyItems(items)
		if err != nil {
			return Target{}, newError(name, "resolve", err)
		}
		list := make([]any, len(copyItems))
		for i, item := range copyItems {
			list[i] = map[string]any{"from": item.From, "to": item.To}
		}
		t["copy"] = list
	default:
		return Target{}, newError(name, "resolve",
			fmt.Errorf("%w: copy must be a list, got %T", ErrInvalidCopyItem, items))
	}

	var out Target
	if err := project.Decode(t, &out); err != nil {
		return Target{}, newError(name, "resolve", err)
	}
	return out, nil
}

// detectLanguage flags TypeScript entries, and React for .tsx ones.
func detectLanguage(t map[string]any) {
	if boolValue(t["typeScript"]) {
		return
	}
	entry := mapValue(t["entry"])
	for _, env := range environments {
		file := stringValue(entry[env])
		switch strings.ToLower(filepath.Ext(file)) {
		case ".ts":
			t["typeScript"] = true
		case ".tsx":
			t["typeScript"] = true
			if stringValue(t["framework"]) == "" {
				t["framework"] = "react"
			}
		}
	}
}

func (r *Resolver) computePaths(t map[string]any, sourceFolder string) {
	source := r.settings.Paths.Source
	if boolValue(t["hasFolder"]) {
		source = filepath.Join(source, sourceFolder)
	}

	build := r.settings.Paths.Build
	if boolValue(t["createFolder"]) {
		build = filepath.Join(build, sourceFolder)
	}

	t["folders"] = map[string]any{
		"source": filepath.Clean(source),
		"build":  filepath.Clean(build),
	}
	t["paths"] = map[string]any{
		"source": r.abs(source),
		"build":  r.abs(build),
	}
}
