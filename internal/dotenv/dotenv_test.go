package dotenv

import (
	"errors"
	"reflect"
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

func TestLoader_Load(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"/p/.env.web.production": "API_URL=https://web.example.com\n",
		"/p/.env.production":     "API_URL=https://example.com\nDEBUG=false\n",
		"/p/.env": `# shared
API_URL=http://localhost
DEBUG=true
NAME="my app"
`,
	})
	files := []string{"/p/.env.web.production", "/p/.env.web", "/p/.env.production", "/p/.env"}

	tests := []struct {
		name       string
		extend     bool
		wantLoaded []string
		wantVars   map[string]string
	}{
		{
			name:       "extend",
			extend:     true,
			wantLoaded: []string{"/p/.env.web.production", "/p/.env.production", "/p/.env"},
			wantVars: map[string]string{
				"API_URL": "https://web.example.com",
				"DEBUG":   "false",
				"NAME":    "my app",
			},
		},
		{
			name:       "first file only",
			extend:     false,
			wantLoaded: []string{"/p/.env.web.production"},
			wantVars:   map[string]string{"API_URL": "https://web.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := l.Load(files, tt.extend)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(res.Loaded, tt.wantLoaded) {
				t.Errorf("Loaded = %v, want %v", res.Loaded, tt.wantLoaded)
			}
			if !reflect.DeepEqual(res.Variables, tt.wantVars) {
				t.Errorf("Variables = %v, want %v", res.Variables, tt.wantVars)
			}
		})
	}
}

func TestLoader_LoadNothing(t *testing.T) {
	l := newTestLoader(t, nil)

	res, err := l.Load([]string{"/p/.env"}, true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(res.Loaded) != 0 || len(res.Variables) != 0 {
		t.Errorf("Load() = %+v, want nothing", res)
	}
}

func TestLoader_Inject(t *testing.T) {
	env := map[string]string{"EXISTING": "process"}
	l := newTestLoader(t, nil)
	l.lookup = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	l.setenv = func(k, v string) error {
		env[k] = v
		return nil
	}

	vars := map[string]string{"EXISTING": "file", "NEW": "file"}

	if err := l.Inject(vars, false); err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if env["EXISTING"] != "process" || env["NEW"] != "file" {
		t.Errorf("env = %v, want existing kept and new set", env)
	}

	if err := l.Inject(vars, true); err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if env["EXISTING"] != "file" {
		t.Errorf("EXISTING = %q, want overwritten", env["EXISTING"])
	}
}

func TestLoader_InjectError(t *testing.T) {
	boom := errors.New("boom")
	l := newTestLoader(t, nil)
	l.lookup = func(string) (string, bool) { return "", false }
	l.setenv = func(string, string) error { return boom }

	if err := l.Inject(map[string]string{"A": "1"}, false); !errors.Is(err, boom) {
		t.Errorf("Inject() error = %v, want %v", err, boom)
	}
}
