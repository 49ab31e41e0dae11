// Package loader reads configuration files into nested maps.
//
// Files are located by a base name and one of the supported extensions.
// TOML, YAML and JSON files are always used verbatim. Lua files are
// evaluated: a chunk returning a table is used verbatim, and a chunk
// returning a function is called with the loader's arguments and its
// result is used instead.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrFileNotFound indicates the configuration file doesn't exist.
var ErrFileNotFound = errors.New("config file not found")

// DefaultExtensions lists the supported extensions in lookup order.
var DefaultExtensions = []string{".lua", ".toml", ".yaml", ".yml", ".json"}

// Parser converts raw file contents into a configuration map.
// Args are forwarded to formats that can be evaluated.
type Parser interface {
	Parse(path string, data []byte, args ...any) (map[string]any, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(path string, data []byte, args ...any) (map[string]any, error)

// Parse implements Parser.
func (f ParserFunc) Parse(path string, data []byte, args ...any) (map[string]any, error) {
	return f(path, data, args...)
}

// Loader finds and parses configuration files on a filesystem.
type Loader struct {
	fs         afero.Fs
	parsers    map[string]Parser
	extensions []string
}

// New creates a loader with the default parsers.
func New(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{
		fs: fs,
		parsers: map[string]Parser{
			".lua":  NewLuaParser(),
			".toml": ParserFunc(parseTOML),
			".yaml": ParserFunc(parseYAML),
			".yml":  ParserFunc(parseYAML),
			".json": ParserFunc(parseJSON),
		},
		extensions: DefaultExtensions,
	}
}

// Register adds or replaces the parser for an extension. New extensions
// are appended to the lookup order.
func (l *Loader) Register(ext string, p Parser) {
	ext = normalizeExt(ext)
	if _, ok := l.parsers[ext]; !ok {
		l.extensions = append(append([]string(nil), l.extensions...), ext)
	}
	l.parsers[ext] = p
}

// Supports reports whether the loader can parse the file at path.
func (l *Loader) Supports(path string) bool {
	_, ok := l.parsers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Find looks for dir/base with each supported extension and returns the
// first path that exists.
func (l *Loader) Find(dir, base string) (string, bool) {
	for _, ext := range l.extensions {
		path := filepath.Join(dir, base+ext)
		if ok, _ := afero.Exists(l.fs, path); ok {
			return path, true
		}
	}
	return "", false
}

// LoadFile parses the file at path using the parser for its extension.
func (l *Loader) LoadFile(path string, args ...any) (map[string]any, error) {
	ext := strings.ToLower(filepath.Ext(path))
	parser, ok := l.parsers[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported config format %q: %s", ext, path)
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	config, err := parser.Parse(path, data, args...)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = make(map[string]any)
	}
	return config, nil
}

// Load finds dir/base with any supported extension and parses it.
// Returns nil, "", nil when no such file exists.
func (l *Loader) Load(dir, base string, args ...any) (map[string]any, string, error) {
	path, ok := l.Find(dir, base)
	if !ok {
		return nil, "", nil
	}
	config, err := l.LoadFile(path, args...)
	if err != nil {
		return nil, path, err
	}
	return config, path, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func parseYAML(path string, data []byte, _ ...any) (map[string]any, error) {
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, newParseError(path, err)
	}
	return config, nil
}

func parseJSON(path string, data []byte, _ ...any) (map[string]any, error) {
	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, newParseError(path, err)
	}
	return config, nil
}
