package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/buildtarget/internal/target"
)

// newTargetsCmd creates the targets command.
func newTargetsCmd(a *app) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:     "targets",
		Short:   "List the resolved targets",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.loadResolver()
			if err != nil {
				return err
			}

			var filter target.Type
			if typ != "" {
				if filter, err = target.ParseType(typ); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			names := r.Names()
			if len(names) == 0 {
				fmt.Fprintln(out, SubtitleStyle.Render("No targets found"))
				return nil
			}

			def, _ := r.Default(typ)
			for _, name := range names {
				t, err := r.Target(name)
				if err != nil {
					return err
				}
				if filter != "" && t.Type != filter {
					continue
				}
				printTarget(out, r, t, t.Name == def.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "", "only list targets of this type (node, browser)")

	return cmd
}

func printTarget(w io.Writer, r *target.Resolver, t target.Target, isDefault bool) {
	marker := "  "
	if isDefault {
		marker = SuccessStyle.Render("* ")
	}

	details := string(t.Type)
	if t.Engine != "" {
		details += ", " + t.Engine
	}
	if t.Framework != "" {
		details += ", " + t.Framework
	}
	if t.Library {
		details += ", library"
	}

	source := t.Paths.Source
	if rel, err := filepath.Rel(r.Settings().Root, source); err == nil {
		source = rel
	}

	fmt.Fprintf(w, "%s%s %s %s\n",
		marker,
		TitleStyle.Render(t.Name),
		SubtitleStyle.Render("("+details+")"),
		PathStyle.Render(source),
	)
}

// newTargetCmd creates the target command.
func newTargetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "target <name>",
		Short: "Show a resolved target",
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
			return a.render(cmd.OutOrStdout(), t)
		},
	}
}

// newDefaultCmd creates the default command.
func newDefaultCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "default [type]",
		Short: "Print the name of the default target",
		Long: `Print the name of the default target.

The default target is the one named like the project package, or the first
one in alphabetical order. Pass a type to choose among node or browser
targets only.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.loadResolver()
			if err != nil {
				return err
			}

			var typ string
			if len(args) == 1 {
				typ = args[0]
			}

			t, err := r.Default(typ)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Name)
			return nil
		},
	}
}

// newWhichCmd creates the which command.
func newWhichCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "which <file>",
		Short: "Print the target whose source directory contains a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.loadResolver()
			if err != nil {
				return err
			}

			t, err := r.ForFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Name)
			return nil
		},
	}
}
