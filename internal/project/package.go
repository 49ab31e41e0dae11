package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// PackageFile is the package metadata file read from the project root.
const PackageFile = "package.json"

// Package is the host project's package metadata.
type Package struct {
	Name    string
	Version string
}

// ReadPackage reads the package metadata under root. A missing file yields
// the zero Package.
func ReadPackage(fs afero.Fs, root string) (Package, error) {
	path := filepath.Join(root, PackageFile)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Package{}, nil
		}
		return Package{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if !gjson.ValidBytes(data) {
		return Package{}, fmt.Errorf("invalid JSON in %s", path)
	}

	res := gjson.GetManyBytes(data, "name", "version")
	return Package{
		Name:    res[0].String(),
		Version: res[1].String(),
	}, nil
}
