// Package dotenv loads environment files for build targets.
package dotenv

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// Result describes a load: the files that existed and the merged variables.
type Result struct {
	Loaded    []string
	Variables map[string]string
}

// Loader reads dotenv files and injects variables into the process environment.
type Loader struct {
	fs     afero.Fs
	lookup func(string) (string, bool)
	setenv func(string, string) error
}

// New creates a loader reading from fs.
func New(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{
		fs:     fs,
		lookup: os.LookupEnv,
		setenv: os.Setenv,
	}
}

// Load parses the files that exist, in order. When extend is true every
// existing file is used and earlier files take precedence over later ones;
// otherwise only the first existing file is used. Missing files are skipped.
func (l *Loader) Load(files []string, extend bool) (Result, error) {
	result := Result{Variables: make(map[string]string)}

	var parsed []map[string]string
	for _, file := range files {
		exists, err := afero.Exists(l.fs, file)
		if err != nil {
			return Result{}, fmt.Errorf("checking env file %s: %w", file, err)
		}
		if !exists {
			continue
		}

		vars, err := l.parse(file)
		if err != nil {
			return Result{}, err
		}
		result.Loaded = append(result.Loaded, file)
		parsed = append(parsed, vars)

		if !extend {
			break
		}
	}

	for i := len(parsed) - 1; i >= 0; i-- {
		for k, v := range parsed[i] {
			result.Variables[k] = v
		}
	}

	return result, nil
}

func (l *Loader) parse(file string) (map[string]string, error) {
	f, err := l.fs.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening env file %s: %w", file, err)
	}
	defer func() { _ = f.Close() }()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing env file %s: %w", file, err)
	}
	return vars, nil
}

// Inject sets the variables in the process environment. Variables that are
// already set are left alone unless overwrite is true.
func (l *Loader) Inject(vars map[string]string, overwrite bool) error {
	for k, v := range vars {
		if _, exists := l.lookup(k); exists && !overwrite {
			continue
		}
		if err := l.setenv(k, v); err != nil {
			return fmt.Errorf("setting %s: %w", k, err)
		}
	}
	return nil
}
