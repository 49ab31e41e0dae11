package target

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/buildtarget/internal/config/layer"
)

// Type is the kind of build target.
type Type string

// Supported target types.
const (
	TypeNode    Type = "node"
	TypeBrowser Type = "browser"
)

// ParseType parses a target type, ignoring case.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeNode, TypeBrowser:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// BuildType is the environment a target is built for.
type BuildType string

// Supported build types.
const (
	Development BuildType = "development"
	Production  BuildType = "production"
)

// ParseBuildType parses a build type, ignoring case.
func ParseBuildType(s string) (BuildType, error) {
	switch b := BuildType(strings.ToLower(strings.TrimSpace(s))); b {
	case Development, Production:
		return b, nil
	default:
		return "", fmt.Errorf("invalid build type %q", s)
	}
}

// Is flags the target type. Exactly one field is true.
type Is struct {
	Node    bool `mapstructure:"node" yaml:"node"`
	Browser bool `mapstructure:"browser" yaml:"browser"`
}

// Entry holds the entry file for each build type. Empty means no entry.
type Entry struct {
	Development string `mapstructure:"development" yaml:"development"`
	Production  string `mapstructure:"production" yaml:"production"`
}

// Output holds the output settings for each build type. Both maps have
// the same keys.
type Output struct {
	Development map[string]any `mapstructure:"development" yaml:"development"`
	Production  map[string]any `mapstructure:"production" yaml:"production"`
}

// Locations is a pair of source and build locations.
type Locations struct {
	Source string `mapstructure:"source" yaml:"source"`
	Build  string `mapstructure:"build" yaml:"build"`
}

// HTML holds the html template and output file of a browser target.
type HTML struct {
	Template string `mapstructure:"template" yaml:"template"`
	Filename string `mapstructure:"filename" yaml:"filename"`
}

// DotEnv configures the environment files of a target.
type DotEnv struct {
	Enabled   bool     `mapstructure:"enabled" yaml:"enabled"`
	Files     []string `mapstructure:"files" yaml:"files"`
	Extend    bool     `mapstructure:"extend" yaml:"extend"`
	Overwrite bool     `mapstructure:"overwrite" yaml:"overwrite"`
}

// CopyItem is a file to copy. Target items are relative to the target
// source and build directories until FilesToCopy makes them absolute.
type CopyItem struct {
	From string `mapstructure:"from" yaml:"from"`
	To   string `mapstructure:"to" yaml:"to"`
}

// Configuration controls the app configuration of a browser target.
type Configuration struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Default is an inline map, a file path relative to the project root,
	// or nil to look for the "default" configuration file.
	Default             any    `mapstructure:"default" yaml:"default"`
	Path                string `mapstructure:"path" yaml:"path"`
	HasFolder           bool   `mapstructure:"hasFolder" yaml:"hasFolder"`
	EnvironmentVariable string `mapstructure:"environmentVariable" yaml:"environmentVariable"`
	LoadFromEnvironment bool   `mapstructure:"loadFromEnvironment" yaml:"loadFromEnvironment"`
	FilenameFormat      string `mapstructure:"filenameFormat" yaml:"filenameFormat"`
	EnvPrefix           string `mapstructure:"envPrefix" yaml:"envPrefix"`
}

// Target is the resolved description of a build target.
type Target struct {
	Name           string `mapstructure:"name" yaml:"name"`
	Type           Type   `mapstructure:"type" yaml:"type"`
	Is             Is     `mapstructure:"is" yaml:"is"`
	Entry          Entry  `mapstructure:"entry" yaml:"entry"`
	Output         Output `mapstructure:"output" yaml:"output"`
	OriginalOutput Output `mapstructure:"originalOutput" yaml:"originalOutput"`
	// Paths are absolute.
	Paths Locations `mapstructure:"paths" yaml:"paths"`
	// Folders are relative to the project root.
	Folders Locations `mapstructure:"folders" yaml:"folders"`
	// HTML is only set for targets with html settings.
	HTML          *HTML          `mapstructure:"html" yaml:"html,omitempty"`
	DotEnv        DotEnv         `mapstructure:"dotEnv" yaml:"dotEnv"`
	Configuration *Configuration `mapstructure:"configuration" yaml:"configuration,omitempty"`
	Copy          []CopyItem     `mapstructure:"copy" yaml:"copy"`

	Engine           string `mapstructure:"engine" yaml:"engine"`
	Framework        string `mapstructure:"framework" yaml:"framework"`
	Folder           string `mapstructure:"folder" yaml:"folder"`
	HasFolder        bool   `mapstructure:"hasFolder" yaml:"hasFolder"`
	CreateFolder     bool   `mapstructure:"createFolder" yaml:"createFolder"`
	Transpile        bool   `mapstructure:"transpile" yaml:"transpile"`
	Bundle           bool   `mapstructure:"bundle" yaml:"bundle"`
	TypeScript       bool   `mapstructure:"typeScript" yaml:"typeScript"`
	Flow             bool   `mapstructure:"flow" yaml:"flow"`
	Library          bool   `mapstructure:"library" yaml:"library"`
	CleanBeforeBuild bool   `mapstructure:"cleanBeforeBuild" yaml:"cleanBeforeBuild"`
	RunOnDevelopment bool   `mapstructure:"runOnDevelopment" yaml:"runOnDevelopment"`

	// Extra holds settings this package doesn't interpret, for other tools.
	Extra map[string]any `mapstructure:",remain" yaml:"extra,omitempty"`
}

// clone returns a deep copy of t sharing nothing with it.
func (t Target) clone() Target {
	out := t
	out.Output = t.Output.clone()
	out.OriginalOutput = t.OriginalOutput.clone()
	out.DotEnv.Files = slices.Clone(t.DotEnv.Files)
	out.Copy = slices.Clone(t.Copy)
	out.Extra = layer.CloneMap(t.Extra)
	if t.HTML != nil {
		html := *t.HTML
		out.HTML = &html
	}
	if t.Configuration != nil {
		cfg := *t.Configuration
		cfg.Default = layer.Clone(cfg.Default)
		out.Configuration = &cfg
	}
	return out
}

func (o Output) clone() Output {
	return Output{
		Development: layer.CloneMap(o.Development),
		Production:  layer.CloneMap(o.Production),
	}
}
