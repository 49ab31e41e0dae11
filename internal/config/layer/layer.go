// Package layer provides layered configuration for the build target resolver.
//
// A Layer merges, in increasing precedence, the resolved configuration of an
// optional parent Provider, its own code-defined configuration and an
// optional file-based overwrite found under a config directory. Parents can
// themselves be layers, so chains can be arbitrarily deep.
package layer

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCreateNotImplemented is returned by layers built without a CreateFunc.
var ErrCreateNotImplemented = errors.New("layer doesn't define its own configuration")

// CreateFunc builds a layer's code-defined configuration.
type CreateFunc func(args ...any) (map[string]any, error)

// Provider produces a resolved configuration map.
type Provider interface {
	Config(args ...any) (map[string]any, error)
}

// FileLoader locates and parses overwrite files. A missing file must be
// reported as a nil map with no error.
type FileLoader interface {
	Load(dir, base string, args ...any) (map[string]any, string, error)
}

// Layer is a single level of layered configuration.
type Layer struct {
	name     string
	create   CreateFunc
	parent   Provider
	loader   FileLoader
	dir      string
	filename string
	factory  bool

	mu     sync.Mutex
	cached map[string]any
	file   string
}

// Option configures a Layer.
type Option func(*Layer)

// WithParent sets the layer whose resolved configuration sits below this one.
func WithParent(p Provider) Option {
	return func(l *Layer) {
		l.parent = p
	}
}

// WithOverwrite enables the file-based overwrite: dir/filename.<ext>.
// An empty filename defaults to "<name>.config".
func WithOverwrite(fl FileLoader, dir, filename string) Option {
	return func(l *Layer) {
		l.loader = fl
		l.dir = dir
		l.filename = filename
	}
}

// AsFactory makes the layer recompute its configuration on every call
// instead of caching the first result.
func AsFactory() Option {
	return func(l *Layer) {
		l.factory = true
	}
}

// New creates a layer. A nil create function makes every Config call fail
// with ErrCreateNotImplemented.
func New(name string, create CreateFunc, opts ...Option) *Layer {
	l := &Layer{
		name:   name,
		create: create,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.filename == "" {
		l.filename = name + ".config"
	}
	return l
}

// Static wraps a fixed map as a Provider.
func Static(config map[string]any) Provider {
	return staticProvider(config)
}

type staticProvider map[string]any

func (p staticProvider) Config(...any) (map[string]any, error) {
	return CloneMap(p), nil
}

// Name returns the layer name.
func (l *Layer) Name() string {
	return l.name
}

// File returns the overwrite file used by the last computation, or "" if
// none was found.
func (l *Layer) File() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file
}

// Files returns every overwrite file consulted by this layer and its
// parent chain, deepest parent first.
func (l *Layer) Files() []string {
	var files []string
	if tracker, ok := l.parent.(interface{ Files() []string }); ok {
		files = append(files, tracker.Files()...)
	}
	if file := l.File(); file != "" {
		files = append(files, file)
	}
	return files
}

// Config returns the merged configuration. Unless the layer is a factory,
// the first result is cached and later calls return copies of it
// regardless of their arguments.
func (l *Layer) Config(args ...any) (map[string]any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.factory && l.cached != nil {
		return CloneMap(l.cached), nil
	}

	config, err := l.compute(args...)
	if err != nil {
		return nil, err
	}

	if !l.factory {
		l.cached = config
	}
	return CloneMap(config), nil
}

func (l *Layer) compute(args ...any) (map[string]any, error) {
	overwrite, err := l.loadOverwrite(args...)
	if err != nil {
		return nil, err
	}

	var parentConfig map[string]any
	if l.parent != nil {
		parentConfig, err = l.parent.Config(args...)
		if err != nil {
			return nil, fmt.Errorf("layer %s: parent: %w", l.name, err)
		}
	}

	if l.create == nil {
		return nil, fmt.Errorf("layer %s: %w", l.name, ErrCreateNotImplemented)
	}
	own, err := l.create(args...)
	if err != nil {
		return nil, fmt.Errorf("layer %s: %w", l.name, err)
	}

	return Merge(parentConfig, own, overwrite), nil
}

func (l *Layer) loadOverwrite(args ...any) (map[string]any, error) {
	if l.loader == nil {
		return nil, nil
	}

	overwrite, path, err := l.loader.Load(l.dir, l.filename, args...)
	if err != nil {
		return nil, fmt.Errorf("layer %s: %w", l.name, err)
	}
	l.file = path
	return overwrite, nil
}
