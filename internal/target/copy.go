package target

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// FilesToCopy returns the files a target copies into its build directory,
// with absolute paths. Only browser targets and bundled node targets copy
// files. An empty bt means production.
func (r *Resolver) FilesToCopy(t Target, bt BuildType) ([]CopyItem, error) {
	if t.Is.Node && !t.Bundle {
		return nil, newError(t.Name, "copy files", ErrCopyNotSupported)
	}
	if bt == "" {
		bt = Production
	}

	items := make([]CopyItem, len(t.Copy))
	for i, item := range t.Copy {
		items[i] = CopyItem{
			From: joinUnlessAbs(t.Paths.Source, item.From),
			To:   joinUnlessAbs(t.Paths.Build, item.To),
		}
	}

	items = r.hooks.CopyFiles.Reduce(items, BuildContext{Target: t, BuildType: bt})
	if err := r.checkSources(items); err != nil {
		return nil, newError(t.Name, "copy files", err)
	}
	return items, nil
}

// ProjectFilesToCopy returns the project files copied into the output
// directory, or nothing when copying is disabled.
func (r *Resolver) ProjectFilesToCopy() ([]CopyItem, error) {
	if !r.settings.Copy.Enabled {
		return []CopyItem{}, nil
	}

	parsed, err := parseCopyItems(r.settings.Copy.Items)
	if err != nil {
		return nil, fmt.Errorf("project copy items: %w", err)
	}

	output := r.settings.OutputPath()
	items := make([]CopyItem, len(parsed))
	for i, item := range parsed {
		items[i] = CopyItem{
			From: r.abs(item.From),
			To:   joinUnlessAbs(output, item.To),
		}
	}

	items = r.hooks.ProjectFilesToCopy.Reduce(items, r.settings)
	if err := r.checkSources(items); err != nil {
		return nil, fmt.Errorf("project copy items: %w", err)
	}
	return items, nil
}

func (r *Resolver) checkSources(items []CopyItem) error {
	for _, item := range items {
		ok, err := afero.Exists(r.fs, item.From)
		if err != nil {
			return fmt.Errorf("checking %s: %w", item.From, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrCopySourceMissing, item.From)
		}
	}
	return nil
}

func joinUnlessAbs(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
