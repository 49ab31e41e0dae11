package loader

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func newTestLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", path, err)
		}
	}
	return New(fs)
}

func TestLoader_LoadFile(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"/conf/app.toml": `
[paths]
source = "src"
build = "dist"

[targets.api]
bundle = true
`,
		"/conf/app.yaml": `
paths:
  source: src
  build: dist
targets:
  api:
    bundle: true
`,
		"/conf/app.json": `{"paths": {"source": "src", "build": "dist"}, "targets": {"api": {"bundle": true}}}`,
		"/conf/app.lua": `
return {
  paths = { source = "src", build = "dist" },
  targets = { api = { bundle = true } },
}
`,
	})

	expected := map[string]any{
		"paths":   map[string]any{"source": "src", "build": "dist"},
		"targets": map[string]any{"api": map[string]any{"bundle": true}},
	}

	for _, path := range []string{"/conf/app.toml", "/conf/app.yaml", "/conf/app.json", "/conf/app.lua"} {
		t.Run(path, func(t *testing.T) {
			config, err := l.LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if !reflect.DeepEqual(config, expected) {
				t.Errorf("LoadFile() = %v, want %v", config, expected)
			}
		})
	}
}

func TestLoader_LoadFileErrors(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"/conf/app.ini":  "a=1",
		"/conf/bad.toml": "[paths\nsource = 1",
		"/conf/bad.json": "{",
	})

	if _, err := l.LoadFile("/conf/missing.toml"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("LoadFile(missing) error = %v, want ErrFileNotFound", err)
	}
	if _, err := l.LoadFile("/conf/app.ini"); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("LoadFile(ini) error = %v, want unsupported format", err)
	}

	_, err := l.LoadFile("/conf/bad.toml")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("LoadFile(bad.toml) error = %v, want *ParseError", err)
	}
	if perr.Path != "/conf/bad.toml" || perr.Line == 0 {
		t.Errorf("ParseError = %+v, want path and line", perr)
	}

	if _, err := l.LoadFile("/conf/bad.json"); !errors.As(err, &perr) {
		t.Errorf("LoadFile(bad.json) error = %v, want *ParseError", err)
	}
}

func TestLoader_EmptyFile(t *testing.T) {
	l := newTestLoader(t, map[string]string{"/conf/empty.yaml": ""})

	config, err := l.LoadFile("/conf/empty.yaml")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if config == nil || len(config) != 0 {
		t.Errorf("LoadFile() = %v, want empty map", config)
	}
}

func TestLoader_FindOrder(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"/conf/project.config.json": `{"from": "json"}`,
		"/conf/project.config.yml":  "from: yml",
		"/conf/project.config.lua":  `return { from = "lua" }`,
	})

	path, ok := l.Find("/conf", "project.config")
	if !ok || path != "/conf/project.config.lua" {
		t.Errorf("Find() = %q, %v, want the lua file", path, ok)
	}

	config, path, err := l.Load("/conf", "project.config")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "/conf/project.config.lua" || config["from"] != "lua" {
		t.Errorf("Load() = %v, %q", config, path)
	}
}

func TestLoader_LoadMissing(t *testing.T) {
	l := newTestLoader(t, nil)

	config, path, err := l.Load("/conf", "project.config")
	if err != nil || config != nil || path != "" {
		t.Errorf("Load() = %v, %q, %v, want nothing", config, path, err)
	}
	if _, ok := l.Find("/conf", "project.config"); ok {
		t.Error("Find() found a missing file")
	}
}

func TestLoader_Register(t *testing.T) {
	l := newTestLoader(t, map[string]string{"/conf/app.conf": "anything"})

	if l.Supports("/conf/app.conf") {
		t.Fatal("Supports(.conf) = true before Register")
	}

	l.Register("conf", ParserFunc(func(path string, data []byte, args ...any) (map[string]any, error) {
		return map[string]any{"raw": string(data), "args": len(args)}, nil
	}))

	if !l.Supports("/conf/APP.CONF") {
		t.Error("Supports() should ignore extension case")
	}
	config, err := l.LoadFile("/conf/app.conf", "x")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !reflect.DeepEqual(config, map[string]any{"raw": "anything", "args": 1}) {
		t.Errorf("LoadFile() = %v", config)
	}
}
