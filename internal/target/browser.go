package target

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/buildtarget/internal/config/layer"
	"github.com/dshills/buildtarget/internal/config/loader"
)

// DefaultConfigurationName is the configuration loaded when no named one
// is selected through the environment.
const DefaultConfigurationName = "default"

// AppConfiguration is the configuration bundled into a browser target and
// the files it was read from.
type AppConfiguration struct {
	Configuration map[string]any `yaml:"configuration"`
	Files         []string       `yaml:"files"`
}

// BrowserConfiguration builds the app configuration of a browser target.
//
// The default configuration comes from the inline map or file named by
// configuration.default, or from the "default" file in the configuration
// directory. When loadFromEnvironment is set and the environment variable
// names a configuration, its file is merged over the default one. Finally
// variables starting with envPrefix are merged over the result.
func (r *Resolver) BrowserConfiguration(t Target) (AppConfiguration, error) {
	if !t.Is.Browser {
		return AppConfiguration{}, newError(t.Name, "configure", ErrNotBrowserTarget)
	}

	cfg := t.Configuration
	if cfg == nil || !cfg.Enabled {
		return AppConfiguration{Configuration: map[string]any{}, Files: []string{}}, nil
	}

	dir := r.abs(cfg.Path)
	if cfg.HasFolder {
		dir = filepath.Join(dir, t.Name)
	}
	filename := func(configName string) string {
		return strings.NewReplacer(
			"[target-name]", t.Name,
			"[configuration-name]", configName,
		).Replace(cfg.FilenameFormat)
	}

	envName := ""
	if cfg.LoadFromEnvironment && cfg.EnvironmentVariable != "" {
		envName = os.Getenv(cfg.EnvironmentVariable)
	}
	args := map[string]any{
		"target":        t.Name,
		"configuration": envName,
	}

	var files []string
	base, err := r.defaultConfigurationLayer(t, cfg, dir, filename(DefaultConfigurationName), &files)
	if err != nil {
		return AppConfiguration{}, err
	}

	result := base
	if envName != "" {
		name := filename(envName)
		if _, ok := r.files.Find(dir, name); !ok {
			return AppConfiguration{}, newError(t.Name, "configure",
				fmt.Errorf("%w: %s in %s", ErrConfigurationNotFound, name, dir))
		}
		result = layer.New(envName, emptyConfig,
			layer.WithParent(base),
			layer.WithOverwrite(r.files, dir, name),
		)
	}

	config, err := result.Config(args)
	if err != nil {
		return AppConfiguration{}, newError(t.Name, "configure", err)
	}
	files = append(files, result.Files()...)
	r.logger.Debug("loaded app configuration", "target", t.Name, "layer", result.Name(), "files", files)

	if cfg.EnvPrefix != "" {
		prefix := strings.TrimSuffix(cfg.EnvPrefix, "_") + "_"
		overlay, err := loader.NewEnvLoader(prefix).Load()
		if err != nil {
			return AppConfiguration{}, newError(t.Name, "configure", err)
		}
		config = layer.Merge(config, overlay)
	}

	if files == nil {
		files = []string{}
	}
	return AppConfiguration{Configuration: config, Files: files}, nil
}

// defaultConfigurationLayer returns the layer holding the default
// configuration. A file named by configuration.default is added to files.
func (r *Resolver) defaultConfigurationLayer(t Target, cfg *Configuration, dir, filename string, files *[]string) (*layer.Layer, error) {
	switch def := cfg.Default.(type) {
	case nil:
		return layer.New(DefaultConfigurationName, emptyConfig,
			layer.WithOverwrite(r.files, dir, filename),
		), nil
	case map[string]any:
		inline := layer.CloneMap(def)
		return layer.New(DefaultConfigurationName, func(...any) (map[string]any, error) {
			return inline, nil
		}), nil
	case string:
		path := r.abs(def)
		*files = append(*files, path)
		return layer.New(DefaultConfigurationName, func(args ...any) (map[string]any, error) {
			return r.files.LoadFile(path, args...)
		}), nil
	default:
		return nil, newError(t.Name, "configure",
			fmt.Errorf("configuration default must be a map or a file path, got %T", def))
	}
}

func emptyConfig(...any) (map[string]any, error) {
	return map[string]any{}, nil
}
