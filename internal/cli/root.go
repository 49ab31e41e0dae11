// Package cli implements the buildtarget command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/buildtarget/internal/logging"
	"github.com/dshills/buildtarget/internal/project"
	"github.com/dshills/buildtarget/internal/target"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// EnvPrefix is the prefix of environment variables bound to global flags.
const EnvPrefix = "BUILDTARGET"

// Global flag names. They double as viper keys.
const (
	flagRoot        = "root"
	flagConfigDir   = "config-dir"
	flagLogLevel    = "log-level"
	flagOutput      = "output"
	flagNoDiscovery = "no-discovery"
)

// app holds the collaborators shared by every command.
type app struct {
	fs     afero.Fs
	v      *viper.Viper
	logger *log.Logger

	settings *project.Settings
	resolver *target.Resolver
}

// newApp creates an app reading from fs.
func newApp(fs afero.Fs) *app {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(flagLogLevel, "info")
	v.SetDefault(flagOutput, formatYAML)

	return &app{
		fs:     fs,
		v:      v,
		logger: logging.Discard(),
	}
}

// root returns the absolute project root.
func (a *app) root() (string, error) {
	root := a.v.GetString(flagRoot)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	return filepath.Abs(root)
}

// loadSettings reads the project settings once.
func (a *app) loadSettings() (*project.Settings, error) {
	if a.settings != nil {
		return a.settings, nil
	}

	root, err := a.root()
	if err != nil {
		return nil, err
	}

	s, err := project.Load(a.fs, root, project.Options{
		ConfigDir:        a.v.GetString(flagConfigDir),
		DisableDiscovery: a.v.GetBool(flagNoDiscovery),
		Logger:           a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("loading project settings: %w", err)
	}

	a.settings = s
	a.logger.Debug("settings loaded", "root", root, "files", s.Files())
	return s, nil
}

// loadResolver resolves every target of the project once.
func (a *app) loadResolver() (*target.Resolver, error) {
	if a.resolver != nil {
		return a.resolver, nil
	}

	s, err := a.loadSettings()
	if err != nil {
		return nil, err
	}

	r, err := target.New(s,
		target.WithFs(a.fs),
		target.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	a.resolver = r
	return r, nil
}

// newRootCmd creates the root command for buildtarget.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "buildtarget",
		Short: "Resolve and inspect the build targets of a project",
		Long: TitleStyle.Render("buildtarget") + SubtitleStyle.Render(" - resolve and inspect build targets") + `

buildtarget merges per-type templates with the targets declared in
config/project.config.{lua,toml,yaml,yml,json} and the targets discovered
in the source directory, and prints the resolved result.

` + SubtitleStyle.Render("Examples:") + `
  buildtarget targets              List all targets
  buildtarget target web           Show the resolved 'web' target
  buildtarget which src/api/app.js Find the target that owns a file
  buildtarget env web production   Print the dotenv variables of 'web'`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(a.v.GetString(flagOutput)); err != nil {
				return err
			}
			opts := logging.DefaultOptions()
			opts.Level = logging.ParseLevel(a.v.GetString(flagLogLevel))
			opts.Output = cmd.ErrOrStderr()
			a.logger = logging.New(opts)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(flagRoot, "r", "", "project root (default: working directory)")
	flags.String(flagConfigDir, project.DefaultConfigDir, "config directory, relative to the project root")
	flags.String(flagLogLevel, "info", "log level (debug, info, warn, error)")
	flags.StringP(flagOutput, "o", formatYAML, "output format (yaml, json)")
	flags.Bool(flagNoDiscovery, false, "don't fold discovered targets into the settings")
	_ = a.v.BindPFlags(flags)

	rootCmd.AddCommand(newTargetsCmd(a))
	rootCmd.AddCommand(newTargetCmd(a))
	rootCmd.AddCommand(newDefaultCmd(a))
	rootCmd.AddCommand(newWhichCmd(a))
	rootCmd.AddCommand(newDiscoverCmd(a))
	rootCmd.AddCommand(newEnvCmd(a))
	rootCmd.AddCommand(newCopyCmd(a))
	rootCmd.AddCommand(newAppConfigCmd(a))
	rootCmd.AddCommand(newSettingsCmd(a))

	return rootCmd
}

// Execute runs the CLI application.
func Execute() {
	a := newApp(afero.NewOsFs())
	rootCmd := newRootCmd(a)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}
