// Package discovery infers build targets from a source tree.
//
// Discovery is best effort: it reads entry files and classifies them with
// ordered pattern tables. Candidates that can't be classified are left out
// of the result, never reported as errors.
package discovery

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/dshills/buildtarget/internal/logging"
)

// Target types produced by discovery.
const (
	TypeNode    = "node"
	TypeBrowser = "browser"
)

// systemEntries are names ignored when listing directories.
var systemEntries = map[string]bool{
	"thumbs.db":   true,
	"desktop.ini": true,
}

// Entry holds the entry files of a discovered target. Empty means unset.
type Entry struct {
	Default     string
	Development string
	Production  string
}

// Fragment is a partial target inferred from source files.
type Fragment struct {
	Name         string
	HasFolder    bool
	CreateFolder bool
	Entry        Entry
	Type         string
	Library      bool
	Framework    string
	Transpile    bool
	Bundle       bool
	Output       map[string]any

	// Dir is the directory the fragment was inferred from.
	Dir string
	// File is the entry file that was analyzed.
	File string
}

// Override converts the fragment into the target override shape.
func (f Fragment) Override() map[string]any {
	override := map[string]any{
		"hasFolder":    f.HasFolder,
		"createFolder": f.CreateFolder,
		"entry": map[string]any{
			"default":     nullable(f.Entry.Default),
			"development": nullable(f.Entry.Development),
			"production":  nullable(f.Entry.Production),
		},
		"type":    f.Type,
		"library": f.Library,
	}
	if f.Framework != "" {
		override["framework"] = f.Framework
	}
	if f.Transpile {
		override["transpile"] = true
	}
	if f.Bundle {
		override["bundle"] = true
	}
	if f.Output != nil {
		override["output"] = f.Output
	}
	return override
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Finder discovers targets in a directory.
type Finder struct {
	fs          afero.Fs
	projectName string
	logger      *log.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithProjectName sets the name used when the directory itself is a target.
func WithProjectName(name string) Option {
	return func(f *Finder) {
		f.projectName = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(f *Finder) {
		f.logger = logger
	}
}

// New creates a Finder reading from fs.
func New(fs afero.Fs, opts ...Option) *Finder {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f := &Finder{
		fs:     fs,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type candidate struct {
	name         string
	dir          string
	hasFolder    bool
	createFolder bool
}

// Find returns the fragments inferred from dir, ordered by name for
// multi-target layouts. A missing or empty directory yields nothing.
func (f *Finder) Find(dir string) []Fragment {
	entries := f.list(dir)
	if len(entries) == 0 {
		return nil
	}

	var candidates []candidate
	if hasScript(entries) {
		name := f.projectName
		if name == "" {
			name = filepath.Base(filepath.Dir(filepath.Clean(dir)))
		}
		candidates = append(candidates, candidate{name: name, dir: dir})
	} else {
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			candidates = append(candidates, candidate{
				name:         e.Name(),
				dir:          filepath.Join(dir, e.Name()),
				hasFolder:    true,
				createFolder: true,
			})
		}
	}

	var fragments []Fragment
	for _, c := range candidates {
		if frag, ok := f.inspect(c); ok {
			fragments = append(fragments, frag)
		}
	}
	return fragments
}

func (f *Finder) list(dir string) []os.FileInfo {
	infos, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		return nil
	}

	visible := infos[:0]
	for _, info := range infos {
		name := info.Name()
		if strings.HasPrefix(name, ".") || systemEntries[strings.ToLower(name)] {
			continue
		}
		visible = append(visible, info)
	}
	return visible
}

func hasScript(entries []os.FileInfo) bool {
	for _, e := range entries {
		if !e.IsDir() && scriptFile.MatchString(e.Name()) {
			return true
		}
	}
	return false
}

func (f *Finder) inspect(c candidate) (Fragment, bool) {
	var scripts []string
	for _, e := range f.list(c.dir) {
		if !e.IsDir() && scriptFile.MatchString(e.Name()) {
			scripts = append(scripts, e.Name())
		}
	}

	frag := Fragment{
		Name:         c.name,
		HasFolder:    c.hasFolder,
		CreateFolder: c.createFolder,
		Dir:          c.dir,
	}

	switch len(scripts) {
	case 0:
		f.logger.Debug("discarding target candidate", "name", c.name, "reason", "no script files")
		return Fragment{}, false
	case 1:
		frag.Entry.Default = scripts[0]
	default:
		for _, s := range scripts {
			switch strings.ToLower(strings.TrimSuffix(s, filepath.Ext(s))) {
			case "index.development":
				frag.Entry.Development = s
			case "index.production":
				frag.Entry.Production = s
			}
		}
	}

	file := frag.Entry.Production
	if file == "" {
		file = frag.Entry.Default
	}
	if file == "" {
		f.logger.Debug("discarding target candidate", "name", c.name, "reason", "no entry file")
		return Fragment{}, false
	}

	path := filepath.Join(c.dir, file)
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		f.logger.Debug("discarding target candidate", "name", c.name, "file", path, "error", err)
		return Fragment{}, false
	}
	frag.File = path

	classify(&frag, string(data))
	f.logger.Debug("discovered target", "name", frag.Name, "type", frag.Type, "library", frag.Library)
	return frag, true
}

// classify sets the type and feature flags of a fragment from the text of
// its entry file.
func classify(frag *Fragment, text string) {
	stmts := Extract(text)
	imports := stmts.Imports()

	frag.Library = stmts.HasExports()

	browser := false
	if r, ok := match(BrowserFrameworks, imports); ok {
		frag.Framework = r.Tag
		browser = true
	} else if _, ok := matchText(BrowserGlobals, text); ok {
		browser = true
	}

	// Server rendering entry points mean the code runs on node even though
	// it uses a browser framework.
	if _, ok := match(NodeFrameworks, imports); ok {
		browser = false
	}

	frag.Type = TypeNode
	if browser {
		frag.Type = TypeBrowser
	}

	if frag.Framework == "" && frag.Type == TypeNode {
		if _, ok := match(AssetImports, imports); ok {
			frag.Bundle = true
		} else if stmts.Modern() {
			frag.Transpile = true
		}
	}

	if frag.Type == TypeBrowser && frag.Library {
		js := frag.Name + ".js"
		frag.Output = map[string]any{
			"default":     map[string]any{"js": js},
			"development": map[string]any{"js": js},
		}
	}
}
