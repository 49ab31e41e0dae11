package layer

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

// fakeLoader serves overwrite files from memory.
type fakeLoader struct {
	files map[string]map[string]any
	calls int
	args  []any
}

func (f *fakeLoader) Load(dir, base string, args ...any) (map[string]any, string, error) {
	f.calls++
	f.args = args
	path := filepath.Join(dir, base+".json")
	config, ok := f.files[path]
	if !ok {
		return nil, "", nil
	}
	return CloneMap(config), path, nil
}

func TestLayer_Config(t *testing.T) {
	l := New("app", func(...any) (map[string]any, error) {
		return map[string]any{"port": 8080, "host": "localhost"}, nil
	})

	config, err := l.Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}

	expected := map[string]any{"port": 8080, "host": "localhost"}
	if !reflect.DeepEqual(config, expected) {
		t.Errorf("Config() = %v, want %v", config, expected)
	}
	if l.Name() != "app" {
		t.Errorf("Name() = %q, want app", l.Name())
	}
}

func TestLayer_NotImplemented(t *testing.T) {
	l := New("base", nil)

	_, err := l.Config()
	if !errors.Is(err, ErrCreateNotImplemented) {
		t.Errorf("Config() error = %v, want ErrCreateNotImplemented", err)
	}
}

func TestLayer_CreateError(t *testing.T) {
	boom := errors.New("boom")
	l := New("app", func(...any) (map[string]any, error) {
		return nil, boom
	})

	if _, err := l.Config(); !errors.Is(err, boom) {
		t.Errorf("Config() error = %v, want %v", err, boom)
	}
}

func TestLayer_ParentChain(t *testing.T) {
	base := Static(map[string]any{
		"server": map[string]any{"port": 80, "tls": false},
		"hosts":  []any{"a", "b"},
	})
	l := New("app", func(...any) (map[string]any, error) {
		return map[string]any{
			"server": map[string]any{"tls": true},
			"hosts":  []any{"c"},
		}, nil
	}, WithParent(base))

	config, err := l.Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}

	expected := map[string]any{
		"server": map[string]any{"port": 80, "tls": true},
		"hosts":  []any{"c", "b"},
	}
	if !reflect.DeepEqual(config, expected) {
		t.Errorf("Config() = %v, want %v", config, expected)
	}
}

func TestLayer_Overwrite(t *testing.T) {
	fl := &fakeLoader{files: map[string]map[string]any{
		"/etc/app/app.config.json": {"server": map[string]any{"port": 9090}},
	}}
	parent := New("defaults", func(...any) (map[string]any, error) {
		return map[string]any{"server": map[string]any{"port": 80, "host": "0.0.0.0"}}, nil
	}, WithOverwrite(&fakeLoader{}, "/etc/defaults", ""))

	l := New("app", func(...any) (map[string]any, error) {
		return map[string]any{"server": map[string]any{"port": 8080}}, nil
	}, WithParent(parent), WithOverwrite(fl, "/etc/app", ""))

	config, err := l.Config("prod")
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}

	expected := map[string]any{"server": map[string]any{"port": 9090, "host": "0.0.0.0"}}
	if !reflect.DeepEqual(config, expected) {
		t.Errorf("Config() = %v, want %v", config, expected)
	}
	if l.File() != "/etc/app/app.config.json" {
		t.Errorf("File() = %q", l.File())
	}
	if files := []string{"/etc/app/app.config.json"}; !reflect.DeepEqual(l.Files(), files) {
		t.Errorf("Files() = %v, want %v", l.Files(), files)
	}
	if !reflect.DeepEqual(fl.args, []any{"prod"}) {
		t.Errorf("loader args = %v, want [prod]", fl.args)
	}
}

func TestLayer_OverwriteFilename(t *testing.T) {
	fl := &fakeLoader{files: map[string]map[string]any{
		"/conf/custom.json": {"a": 1},
	}}
	l := New("app", func(...any) (map[string]any, error) {
		return map[string]any{}, nil
	}, WithOverwrite(fl, "/conf", "custom"))

	config, err := l.Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if !reflect.DeepEqual(config, map[string]any{"a": 1}) {
		t.Errorf("Config() = %v", config)
	}
}

func TestLayer_Cached(t *testing.T) {
	calls := 0
	fl := &fakeLoader{}
	l := New("app", func(args ...any) (map[string]any, error) {
		calls++
		return map[string]any{"args": len(args)}, nil
	}, WithOverwrite(fl, "/conf", ""))

	first, _ := l.Config("a")
	first["args"] = 99
	second, _ := l.Config("a", "b")

	if calls != 1 || fl.calls != 1 {
		t.Errorf("create calls = %d, loader calls = %d, want 1 and 1", calls, fl.calls)
	}
	if second["args"] != 1 {
		t.Errorf("second Config() = %v, want the cached result unchanged", second)
	}
}

func TestLayer_Factory(t *testing.T) {
	calls := 0
	l := New("app", func(args ...any) (map[string]any, error) {
		calls++
		return map[string]any{"env": args[0]}, nil
	}, AsFactory())

	dev, _ := l.Config("development")
	prod, _ := l.Config("production")

	if calls != 2 {
		t.Errorf("create calls = %d, want 2", calls)
	}
	if dev["env"] != "development" || prod["env"] != "production" {
		t.Errorf("Config() = %v, %v", dev, prod)
	}
}

func TestLayer_FilesFromParents(t *testing.T) {
	parent := New("default", func(...any) (map[string]any, error) {
		return map[string]any{}, nil
	}, WithOverwrite(&fakeLoader{files: map[string]map[string]any{
		"/conf/default.config.json": {"a": 1},
	}}, "/conf", ""))

	child := New("staging", func(...any) (map[string]any, error) {
		return map[string]any{}, nil
	}, WithParent(parent), WithOverwrite(&fakeLoader{files: map[string]map[string]any{
		"/conf/staging.config.json": {"b": 2},
	}}, "/conf", ""))

	config, err := child.Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if !reflect.DeepEqual(config, map[string]any{"a": 1, "b": 2}) {
		t.Errorf("Config() = %v", config)
	}

	expected := []string{"/conf/default.config.json", "/conf/staging.config.json"}
	if !reflect.DeepEqual(child.Files(), expected) {
		t.Errorf("Files() = %v, want %v", child.Files(), expected)
	}
}
