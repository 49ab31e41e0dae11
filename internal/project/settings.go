// Package project loads the project-level settings that describe every
// build target: paths, per-type target templates and target overrides.
//
// Settings are a configuration layer named "project". Its base is Defaults
// and its overwrite is the first of config/project.config.{lua,toml,yaml,yml,json}
// under the project root. Targets discovered in the merged source directory
// are folded in afterwards, below any declared override of the same name.
package project

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"

	"github.com/dshills/buildtarget/internal/config/layer"
	"github.com/dshills/buildtarget/internal/config/loader"
	"github.com/dshills/buildtarget/internal/discovery"
	"github.com/dshills/buildtarget/internal/logging"
)

const (
	// LayerName is the name of the project settings layer.
	LayerName = "project"
	// DefaultConfigDir is where overwrite files live, relative to the root.
	DefaultConfigDir = "config"
)

// ErrSettingNotFound indicates the settings path doesn't exist.
var ErrSettingNotFound = errors.New("unknown settings path")

// PathSettings holds the project roots, relative to the project root.
type PathSettings struct {
	Source string `mapstructure:"source"`
	Build  string `mapstructure:"build"`
	// Output is where project files are copied. Empty means Build.
	Output string `mapstructure:"output"`
}

// CopySettings lists project files copied into the distribution directory.
type CopySettings struct {
	Enabled bool  `mapstructure:"enabled"`
	Items   []any `mapstructure:"items"`
}

// RevisionSettings configures the revision file.
type RevisionSettings struct {
	Enabled  bool   `mapstructure:"enabled"`
	Copy     bool   `mapstructure:"copy"`
	Filename string `mapstructure:"filename"`
}

// VersionSettings configures how the project version is exposed.
type VersionSettings struct {
	DefineOn            string           `mapstructure:"defineOn"`
	EnvironmentVariable string           `mapstructure:"environmentVariable"`
	Revision            RevisionSettings `mapstructure:"revision"`
}

// Settings is the typed view of the merged project configuration.
type Settings struct {
	Paths            PathSettings              `mapstructure:"paths"`
	TargetsTemplates map[string]map[string]any `mapstructure:"targetsTemplates"`
	Targets          map[string]map[string]any `mapstructure:"targets"`
	Copy             CopySettings              `mapstructure:"copy"`
	Version          VersionSettings           `mapstructure:"version"`
	Watch            map[string]any            `mapstructure:"watch"`
	Others           map[string]any            `mapstructure:",remain"`

	// Root is the absolute project root.
	Root string `mapstructure:"-"`
	// Package is the metadata read from package.json.
	Package Package `mapstructure:"-"`

	raw   map[string]any
	files []string
}

// NewSettings decodes a merged settings map.
func NewSettings(root string, raw map[string]any) (*Settings, error) {
	s := &Settings{Root: root}
	if err := Decode(raw, s); err != nil {
		return nil, fmt.Errorf("decoding project settings: %w", err)
	}
	s.raw = layer.CloneMap(raw)
	return s, nil
}

// Decode decodes a nested map into a tagged struct.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Get returns the value at a dot-separated settings path.
func (s *Settings) Get(path string) (any, error) {
	val, ok := layer.GetByPath(s.raw, path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	return layer.Clone(val), nil
}

// Raw returns a copy of the merged settings map.
func (s *Settings) Raw() map[string]any {
	return layer.CloneMap(s.raw)
}

// Files returns the overwrite files the settings were loaded from.
func (s *Settings) Files() []string {
	return append([]string(nil), s.files...)
}

// SourcePath returns the absolute source root.
func (s *Settings) SourcePath() string {
	return filepath.Join(s.Root, s.Paths.Source)
}

// BuildPath returns the absolute build root.
func (s *Settings) BuildPath() string {
	return filepath.Join(s.Root, s.Paths.Build)
}

// OutputPath returns the absolute root project files are copied to.
func (s *Settings) OutputPath() string {
	if s.Paths.Output == "" {
		return s.BuildPath()
	}
	return filepath.Join(s.Root, s.Paths.Output)
}

// Options configures Load.
type Options struct {
	// ConfigDir overrides the config directory, relative to the root.
	ConfigDir string
	// DisableDiscovery skips folding discovered targets into the settings.
	DisableDiscovery bool
	// Logger receives debug output.
	Logger *log.Logger
}

// Load builds the project settings for root.
func Load(fs afero.Fs, root string, opts Options) (*Settings, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.ConfigDir == "" {
		opts.ConfigDir = DefaultConfigDir
	}

	pkg, err := ReadPackage(fs, root)
	if err != nil {
		return nil, err
	}

	l := NewLayer(fs, root, opts)
	raw, err := l.Config(map[string]any{
		"root":    root,
		"name":    pkg.Name,
		"version": pkg.Version,
	})
	if err != nil {
		return nil, err
	}

	if !opts.DisableDiscovery {
		source, _ := layer.GetByPath(raw, "paths.source")
		finder := discovery.New(fs,
			discovery.WithProjectName(pkg.Name),
			discovery.WithLogger(opts.Logger),
		)
		FoldFragments(raw, finder.Find(filepath.Join(root, fmt.Sprint(source))))
	}

	s, err := NewSettings(root, raw)
	if err != nil {
		return nil, err
	}
	s.Package = pkg
	s.files = l.Files()
	return s, nil
}

// NewLayer creates the project settings layer.
func NewLayer(fs afero.Fs, root string, opts Options) *layer.Layer {
	configDir := opts.ConfigDir
	if configDir == "" {
		configDir = DefaultConfigDir
	}

	create := func(...any) (map[string]any, error) {
		return Defaults(), nil
	}

	return layer.New(LayerName, create,
		layer.WithOverwrite(loader.New(fs), filepath.Join(root, configDir), ""),
	)
}

// FoldFragments merges discovered fragments into the targets of a raw
// settings map. Declared overrides win over discovered values.
func FoldFragments(raw map[string]any, fragments []discovery.Fragment) {
	targets, ok := raw["targets"].(map[string]any)
	if !ok {
		targets = make(map[string]any)
		raw["targets"] = targets
	}

	for _, frag := range fragments {
		declared, _ := targets[frag.Name].(map[string]any)
		targets[frag.Name] = layer.Merge(frag.Override(), declared)
	}
}
