// Package target resolves the canonical description of every build target
// of a project.
//
// Each declared target override is merged over the template of its type,
// validated and normalized into a Target. Resolution happens once, when
// the Resolver is created; afterwards lookups are read-only and safe for
// concurrent use.
package target

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/dshills/buildtarget/internal/config/loader"
	"github.com/dshills/buildtarget/internal/dotenv"
	"github.com/dshills/buildtarget/internal/logging"
	"github.com/dshills/buildtarget/internal/project"
)

// Clock provides the resolution time used for the [hash] placeholder.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Resolver holds the resolved targets of a project.
type Resolver struct {
	settings *project.Settings
	fs       afero.Fs
	hooks    *Hooks
	env      *dotenv.Loader
	files    *loader.Loader
	clock    Clock
	logger   *log.Logger

	targets map[string]Target
	names   []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFs sets the filesystem. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) { r.fs = fs }
}

// WithHooks sets the reducer seams.
func WithHooks(h *Hooks) Option {
	return func(r *Resolver) { r.hooks = h }
}

// WithClock sets the clock used for [hash].
func WithClock(c Clock) Option {
	return func(r *Resolver) { r.clock = c }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithDotEnvLoader sets the dotenv collaborator.
func WithDotEnvLoader(l *dotenv.Loader) Option {
	return func(r *Resolver) { r.env = l }
}

// New resolves every target declared in settings. Any invalid target
// aborts the whole pass.
func New(settings *project.Settings, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		settings: settings,
		clock:    ClockFunc(time.Now),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}
	if r.hooks == nil {
		r.hooks = NewHooks()
	}
	if r.env == nil {
		r.env = dotenv.New(r.fs)
	}
	if r.logger == nil {
		r.logger = logging.Discard()
	}
	r.files = loader.New(r.fs)

	if err := r.loadTargets(); err != nil {
		return nil, err
	}
	return r, nil
}

// Settings returns the project settings the targets were resolved from.
func (r *Resolver) Settings() *project.Settings {
	return r.settings
}

// Hooks returns the reducer seams.
func (r *Resolver) Hooks() *Hooks {
	return r.hooks
}

func (r *Resolver) loadTargets() error {
	hash := fmt.Sprint(r.clock.Now().UnixMilli())

	names := make([]string, 0, len(r.settings.Targets))
	for name := range r.settings.Targets {
		names = append(names, name)
	}
	sort.Strings(names)

	r.targets = make(map[string]Target, len(names))
	for _, name := range names {
		t, err := r.resolve(name, r.settings.Targets[name], hash)
		if err != nil {
			return err
		}
		t = r.hooks.TargetLoad.Reduce(t, r.settings)
		r.targets[name] = t
		r.logger.Debug("resolved target", "name", name, "type", t.Type, "engine", t.Engine)
	}
	r.names = names
	return nil
}

// Targets returns every resolved target by name.
func (r *Resolver) Targets() map[string]Target {
	out := make(map[string]Target, len(r.targets))
	for name, t := range r.targets {
		out[name] = t.clone()
	}
	return out
}

// Names returns the target names in alphabetical order.
func (r *Resolver) Names() []string {
	return append([]string(nil), r.names...)
}

// Target returns the target with the given name.
func (r *Resolver) Target(name string) (Target, error) {
	t, ok := r.targets[name]
	if !ok {
		return Target{}, newError(name, "lookup", ErrTargetNotFound)
	}
	return t.clone(), nil
}

// Exists reports whether a target is declared.
func (r *Resolver) Exists(name string) bool {
	_, ok := r.targets[name]
	return ok
}

// Default returns the target to use when none is named. An empty typ
// considers every target. The one named after the project package wins,
// otherwise the first in alphabetical order.
func (r *Resolver) Default(typ string) (Target, error) {
	var filter Type
	if typ != "" {
		t, err := ParseType(typ)
		if err != nil {
			return Target{}, err
		}
		filter = t
	}

	var candidates []string
	for _, name := range r.names {
		if filter == "" || r.targets[name].Type == filter {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		if filter != "" {
			return Target{}, fmt.Errorf("%w of type '%s'", ErrNoTargets, filter)
		}
		return Target{}, ErrNoTargets
	}

	pkg := r.settings.Package.Name
	for _, name := range candidates {
		if name == pkg {
			return r.targets[name].clone(), nil
		}
	}
	return r.targets[candidates[0]].clone(), nil
}

// ForFile returns the target whose source directory contains path. When
// source directories are nested the deepest one wins.
func (r *Resolver) ForFile(path string) (Target, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.settings.Root, path)
	}
	path = filepath.Clean(path)

	var (
		found Target
		best  = -1
	)
	for _, name := range r.names {
		t := r.targets[name]
		source := filepath.Clean(t.Paths.Source)
		if !within(path, source) {
			continue
		}
		if len(source) > best {
			found, best = t, len(source)
		}
	}
	if best < 0 {
		return Target{}, fmt.Errorf("%w: %s", ErrNoTargetForFile, path)
	}
	return found.clone(), nil
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}

// abs resolves a path relative to the project root.
func (r *Resolver) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.settings.Root, path)
}
