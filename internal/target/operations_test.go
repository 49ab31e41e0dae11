package target

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/dshills/buildtarget/internal/dotenv"
	"github.com/dshills/buildtarget/internal/logging"
	"github.com/dshills/buildtarget/internal/project"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/project/.env", "SHARED=base\nONLY_BASE=1\n")
	writeFile(t, fs, "/project/.env.production", "SHARED=production\n")
	writeFile(t, fs, "/project/.env.api", "SHARED=api\nAPI_ONLY=yes\n")

	r := newResolver(t, map[string]any{
		"api": map[string]any{},
		"single": map[string]any{
			"dotEnv": map[string]any{"extend": false},
		},
		"off": map[string]any{
			"dotEnv": map[string]any{"enabled": false},
		},
	}, WithFs(fs))

	tests := []struct {
		name   string
		target string
		bt     BuildType
		want   map[string]string
	}{
		{
			name:   "extend merges with specific files first",
			target: "api",
			bt:     Production,
			want:   map[string]string{"SHARED": "api", "API_ONLY": "yes", "ONLY_BASE": "1"},
		},
		{
			name:   "first existing file only",
			target: "single",
			bt:     Production,
			want:   map[string]string{"SHARED": "production"},
		},
		{
			name:   "build type file missing",
			target: "single",
			bt:     Development,
			want:   map[string]string{"SHARED": "base", "ONLY_BASE": "1"},
		},
		{
			name:   "disabled",
			target: "off",
			bt:     Production,
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.LoadDotEnv(mustTarget(t, r, tt.target), tt.bt, false)
			if err != nil {
				t.Fatalf("LoadDotEnv() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadDotEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadDotEnvHookAndInject(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/project/.env", "BUILDTARGET_TEST_PRESET=file\nBUILDTARGET_TEST_NEW=file\n")

	t.Setenv("BUILDTARGET_TEST_PRESET", "process")
	t.Cleanup(func() { _ = os.Unsetenv("BUILDTARGET_TEST_NEW") })

	hooks := NewHooks()
	hooks.EnvironmentVariables.Register("build-type", func(vars map[string]string, ctx BuildContext) map[string]string {
		vars["BUILDTARGET_TEST_BUILD"] = ctx.Target.Name + ":" + string(ctx.BuildType)
		return vars
	})
	t.Cleanup(func() { _ = os.Unsetenv("BUILDTARGET_TEST_BUILD") })

	r := newResolver(t, map[string]any{"api": map[string]any{}},
		WithFs(fs), WithHooks(hooks), WithDotEnvLoader(dotenv.New(fs)))

	vars, err := r.LoadDotEnv(mustTarget(t, r, "api"), Development, true)
	if err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if vars["BUILDTARGET_TEST_BUILD"] != "api:development" {
		t.Errorf("hook value = %q", vars["BUILDTARGET_TEST_BUILD"])
	}
	if got := os.Getenv("BUILDTARGET_TEST_PRESET"); got != "process" {
		t.Errorf("preset variable = %q, want it kept", got)
	}
	if got := os.Getenv("BUILDTARGET_TEST_NEW"); got != "file" {
		t.Errorf("new variable = %q, want file", got)
	}
}

func TestLoadDotEnvInvalidBuildType(t *testing.T) {
	r := newResolver(t, map[string]any{"api": map[string]any{}})

	if _, err := r.LoadDotEnv(mustTarget(t, r, "api"), "staging", false); err == nil {
		t.Error("LoadDotEnv(staging) error = nil, want error")
	}
}

func TestFilesToCopy(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/project/src/web/favicon.ico", "")
	writeFile(t, fs, "/project/src/web/assets/robots.txt", "")

	r := newResolver(t, map[string]any{
		"web": map[string]any{
			"type": "browser",
			"copy": []any{
				"favicon.ico",
				map[string]any{"from": "assets/robots.txt", "to": "public/robots.txt"},
			},
		},
		"broken": map[string]any{
			"type": "browser",
			"copy": []any{"missing.txt"},
		},
		"api":     map[string]any{},
		"bundled": map[string]any{"bundle": true},
	}, WithFs(fs))

	got, err := r.FilesToCopy(mustTarget(t, r, "web"), "")
	if err != nil {
		t.Fatalf("FilesToCopy(web) error = %v", err)
	}
	want := []CopyItem{
		{From: "/project/src/web/favicon.ico", To: "/project/dist/web/favicon.ico"},
		{From: "/project/src/web/assets/robots.txt", To: "/project/dist/web/public/robots.txt"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilesToCopy(web) = %v, want %v", got, want)
	}

	if _, err := r.FilesToCopy(mustTarget(t, r, "broken"), Production); !errors.Is(err, ErrCopySourceMissing) {
		t.Errorf("FilesToCopy(broken) error = %v, want ErrCopySourceMissing", err)
	}
	if _, err := r.FilesToCopy(mustTarget(t, r, "api"), Production); !errors.Is(err, ErrCopyNotSupported) {
		t.Errorf("FilesToCopy(api) error = %v, want ErrCopyNotSupported", err)
	}
	if got, err := r.FilesToCopy(mustTarget(t, r, "bundled"), Production); err != nil || len(got) != 0 {
		t.Errorf("FilesToCopy(bundled) = %v, %v, want no files", got, err)
	}
}

func TestFilesToCopyHook(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/project/LICENSE", "")

	hooks := NewHooks()
	hooks.CopyFiles.Register("license", func(items []CopyItem, ctx BuildContext) []CopyItem {
		if ctx.BuildType != Production {
			return items
		}
		return append(items, CopyItem{From: "/project/LICENSE", To: ctx.Target.Paths.Build + "/LICENSE"})
	})

	r := newResolver(t, map[string]any{"web": map[string]any{"type": "browser"}},
		WithFs(fs), WithHooks(hooks))
	web := mustTarget(t, r, "web")

	got, err := r.FilesToCopy(web, Production)
	if err != nil {
		t.Fatalf("FilesToCopy() error = %v", err)
	}
	want := []CopyItem{{From: "/project/LICENSE", To: "/project/dist/web/LICENSE"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilesToCopy() = %v, want %v", got, want)
	}

	got, err = r.FilesToCopy(web, Development)
	if err != nil || len(got) != 0 {
		t.Errorf("FilesToCopy(development) = %v, %v, want no files", got, err)
	}
}

func TestProjectFilesToCopy(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/project/package.json", "{}")
	writeFile(t, fs, "/project/config/app.json", "{}")

	raw := project.Defaults()
	raw["paths"] = map[string]any{"source": "src", "build": "dist", "output": "release"}
	raw["copy"] = map[string]any{
		"enabled": true,
		"items": []any{
			"package.json",
			map[string]any{"from": "config/app.json", "to": "config/production.json"},
		},
	}
	s, err := project.NewSettings(testRoot, raw)
	if err != nil {
		t.Fatalf("NewSettings() error = %v", err)
	}

	hooks := NewHooks()
	hooks.ProjectFilesToCopy.Register("rename", func(items []CopyItem, s *project.Settings) []CopyItem {
		for i := range items {
			if items[i].From == filepath.Join(s.Root, "package.json") {
				items[i].To = filepath.Join(s.OutputPath(), "manifest.json")
			}
		}
		return items
	})

	r, err := New(s, WithFs(fs), WithHooks(hooks))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := r.ProjectFilesToCopy()
	if err != nil {
		t.Fatalf("ProjectFilesToCopy() error = %v", err)
	}
	want := []CopyItem{
		{From: "/project/package.json", To: "/project/release/manifest.json"},
		{From: "/project/config/app.json", To: "/project/release/config/production.json"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ProjectFilesToCopy() = %v, want %v", got, want)
	}
}

func TestProjectFilesToCopyDisabled(t *testing.T) {
	r := newResolver(t, map[string]any{})

	got, err := r.ProjectFilesToCopy()
	if err != nil || len(got) != 0 {
		t.Errorf("ProjectFilesToCopy() = %v, %v, want nothing", got, err)
	}
}

func TestBrowserConfiguration(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/project/config/web/web.default.config.yaml",
		"api:\n  url: http://localhost\n  timeout: 10\nfeatures:\n  - search\n")
	writeFile(t, fs, "/project/config/web/web.staging.config.lua", `
return function(args)
  return { api = { url = "https://" .. args.configuration .. ".example.com" } }
end
`)

	r := newResolver(t, map[string]any{
		"web": map[string]any{
			"type":          "browser",
			"configuration": map[string]any{"enabled": true},
		},
	}, WithFs(fs))
	web := mustTarget(t, r, "web")

	t.Run("default file", func(t *testing.T) {
		t.Setenv("CONFIG", "")
		got, err := r.BrowserConfiguration(web)
		if err != nil {
			t.Fatalf("BrowserConfiguration() error = %v", err)
		}
		want := map[string]any{
			"api":      map[string]any{"url": "http://localhost", "timeout": 10},
			"features": []any{"search"},
		}
		if !reflect.DeepEqual(got.Configuration, want) {
			t.Errorf("Configuration = %v, want %v", got.Configuration, want)
		}
		if files := []string{"/project/config/web/web.default.config.yaml"}; !reflect.DeepEqual(got.Files, files) {
			t.Errorf("Files = %v, want %v", got.Files, files)
		}
	})

	t.Run("environment configuration", func(t *testing.T) {
		t.Setenv("CONFIG", "staging")
		got, err := r.BrowserConfiguration(web)
		if err != nil {
			t.Fatalf("BrowserConfiguration() error = %v", err)
		}
		want := map[string]any{
			"api":      map[string]any{"url": "https://staging.example.com", "timeout": 10},
			"features": []any{"search"},
		}
		if !reflect.DeepEqual(got.Configuration, want) {
			t.Errorf("Configuration = %v, want %v", got.Configuration, want)
		}
		files := []string{
			"/project/config/web/web.default.config.yaml",
			"/project/config/web/web.staging.config.lua",
		}
		if !reflect.DeepEqual(got.Files, files) {
			t.Errorf("Files = %v, want %v", got.Files, files)
		}
	})

	t.Run("missing environment configuration", func(t *testing.T) {
		t.Setenv("CONFIG", "qa")
		if _, err := r.BrowserConfiguration(web); !errors.Is(err, ErrConfigurationNotFound) {
			t.Errorf("BrowserConfiguration() error = %v, want ErrConfigurationNotFound", err)
		}
	})
}

func TestBrowserConfigurationInlineAndPrefix(t *testing.T) {
	t.Setenv("CONFIG", "")
	t.Setenv("WEBAPP_API_URL", "https://env.example.com")
	t.Setenv("WEBAPP_DEBUG", "true")

	r := newResolver(t, map[string]any{
		"web": map[string]any{
			"type": "browser",
			"configuration": map[string]any{
				"enabled":   true,
				"default":   map[string]any{"api": map[string]any{"url": "http://localhost"}},
				"envPrefix": "WEBAPP",
			},
		},
	})

	got, err := r.BrowserConfiguration(mustTarget(t, r, "web"))
	if err != nil {
		t.Fatalf("BrowserConfiguration() error = %v", err)
	}
	want := map[string]any{
		"api":   map[string]any{"url": "https://env.example.com"},
		"debug": true,
	}
	if !reflect.DeepEqual(got.Configuration, want) {
		t.Errorf("Configuration = %v, want %v", got.Configuration, want)
	}
	if len(got.Files) != 0 {
		t.Errorf("Files = %v, want none", got.Files)
	}
}

func TestBrowserConfigurationDefaultFile(t *testing.T) {
	t.Setenv("CONFIG", "")
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/project/settings/app.toml", "title = \"Shop\"\n")

	r := newResolver(t, map[string]any{
		"web": map[string]any{
			"type": "browser",
			"configuration": map[string]any{
				"enabled": true,
				"default": "settings/app.toml",
			},
		},
	}, WithFs(fs))

	got, err := r.BrowserConfiguration(mustTarget(t, r, "web"))
	if err != nil {
		t.Fatalf("BrowserConfiguration() error = %v", err)
	}
	if !reflect.DeepEqual(got.Configuration, map[string]any{"title": "Shop"}) {
		t.Errorf("Configuration = %v", got.Configuration)
	}
	if files := []string{"/project/settings/app.toml"}; !reflect.DeepEqual(got.Files, files) {
		t.Errorf("Files = %v, want %v", got.Files, files)
	}
}

func TestBrowserConfigurationLogsLayer(t *testing.T) {
	t.Setenv("CONFIG", "")
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Level: log.DebugLevel, Output: &buf})

	r := newResolver(t, map[string]any{
		"web": map[string]any{
			"type":          "browser",
			"configuration": map[string]any{"enabled": true, "default": map[string]any{}},
		},
	}, WithLogger(logger))

	if _, err := r.BrowserConfiguration(mustTarget(t, r, "web")); err != nil {
		t.Fatalf("BrowserConfiguration() error = %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "layer=default") || !strings.Contains(out, "target=web") {
		t.Errorf("log output %q, want the configuration layer name", out)
	}
}

func TestBrowserConfigurationPreconditions(t *testing.T) {
	r := newResolver(t, map[string]any{
		"api": map[string]any{},
		"web": map[string]any{"type": "browser"},
	})

	if _, err := r.BrowserConfiguration(mustTarget(t, r, "api")); !errors.Is(err, ErrNotBrowserTarget) {
		t.Errorf("BrowserConfiguration(api) error = %v, want ErrNotBrowserTarget", err)
	}

	got, err := r.BrowserConfiguration(mustTarget(t, r, "web"))
	if err != nil {
		t.Fatalf("BrowserConfiguration(web) error = %v", err)
	}
	want := AppConfiguration{Configuration: map[string]any{}, Files: []string{}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BrowserConfiguration(web) = %+v, want %+v", got, want)
	}
}
