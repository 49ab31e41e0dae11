package cli

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dshills/buildtarget/internal/discovery"
	"github.com/dshills/buildtarget/internal/project"
	"github.com/dshills/buildtarget/internal/target"
)

// discovered is the printable form of a discovered fragment.
type discovered struct {
	Name     string         `yaml:"name"`
	File     string         `yaml:"file"`
	Override map[string]any `yaml:"override"`
}

// newDiscoverCmd creates the discover command.
func newDiscoverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "discover [dir]",
		Short: "Infer targets from the files in a directory",
		Long: `Infer targets from the files in a directory.

Without a directory the source directory of the project settings is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.root()
			if err != nil {
				return err
			}

			pkg, err := project.ReadPackage(a.fs, root)
			if err != nil {
				return err
			}

			var dir string
			if len(args) == 1 {
				dir = args[0]
				if !filepath.IsAbs(dir) {
					dir = filepath.Join(root, dir)
				}
			} else {
				s, err := a.loadSettings()
				if err != nil {
					return err
				}
				dir = s.SourcePath()
			}

			finder := discovery.New(a.fs,
				discovery.WithProjectName(pkg.Name),
				discovery.WithLogger(a.logger),
			)

			fragments := finder.Find(dir)
			result := make([]discovered, 0, len(fragments))
			for _, f := range fragments {
				result = append(result, discovered{
					Name:     f.Name,
					File:     f.File,
					Override: f.Override(),
				})
			}
			return a.render(cmd.OutOrStdout(), result)
		},
	}
}

// buildTypeArg parses an optional build type argument.
func buildTypeArg(args []string, i int, def target.BuildType) (target.BuildType, error) {
	if len(args) <= i {
		return def, nil
	}
	return target.ParseBuildType(args[i])
}

// newEnvCmd creates the env command.
func newEnvCmd(a *app) *cobra.Command {
	var inject bool

	cmd := &cobra.Command{
		Use:   "env <target> [build-type]",
		Short: "Print the dotenv variables of a target",
		Long: `Print the dotenv variables of a target in dotenv format.

The build type defaults to development.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.loadResolver()
			if err != nil {
				return err
			}

			t, err := r.Target(args[0])
			if err != nil {
				return err
			}
			bt, err := buildTypeArg(args, 1, target.Development)
			if err != nil {
				return err
			}

			vars, err := r.LoadDotEnv(t, bt, inject)
			if err != nil {
				return err
			}
			if len(vars) == 0 {
				return nil
			}

			content, err := godotenv.Marshal(vars)
			if err != nil {
				return fmt.Errorf("formatting variables: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	}

	cmd.Flags().BoolVar(&inject, "inject", false, "also set the variables in the process environment")

	return cmd
}

// newCopyCmd creates the copy command.
func newCopyCmd(a *app) *cobra.Command {
	var projectFiles bool

	cmd := &cobra.Command{
		Use:   "copy [target] [build-type]",
		Short: "List the files copied for a target or the project",
		Long: `List the files copied for a target or, with --project, the project
files copied into the distribution directory.

The build type defaults to production.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if projectFiles {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.loadResolver()
			if err != nil {
				return err
			}

			var items []target.CopyItem
			if projectFiles {
				items, err = r.ProjectFilesToCopy()
			} else {
				items, err = copyItems(r, args)
			}
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), items)
		},
	}

	cmd.Flags().BoolVar(&projectFiles, "project", false, "list the project files instead of a target's")

	return cmd
}

func copyItems(r *target.Resolver, args []string) ([]target.CopyItem, error) {
	t, err := r.Target(args[0])
	if err != nil {
		return nil, err
	}
	bt, err := buildTypeArg(args, 1, target.Production)
	if err != nil {
		return nil, err
	}
	return r.FilesToCopy(t, bt)
}

// newAppConfigCmd creates the app-config command.
func newAppConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "app-config <target>",
		Short: "Print the app configuration of a browser target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.loadResolver()
			if err != nil {
				return err
			}

			t, err := r.Target(args[0])
			if err != nil {
				return err
			}

			cfg, err := r.BrowserConfiguration(t)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), cfg)
		},
	}
}

// newSettingsCmd creates the settings command and its subcommands.
func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect the project settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Print a settings value by dotted path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSettings()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return a.render(cmd.OutOrStdout(), s.Raw())
			}

			val, err := s.Get(args[0])
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), val)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "files",
		Short: "List the settings files that were read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSettings()
			if err != nil {
				return err
			}
			for _, f := range s.Files() {
				fmt.Fprintln(cmd.OutOrStdout(), PathStyle.Render(f))
			}
			return nil
		},
	})

	return cmd
}
