package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/pref"
	"github.com/vango-dev/yui/pkg/theme"
)

func themeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "List, inspect and select themes",
		Long: `Themes are loaded from the theme directory (themes.dir in yui.json).
The selected theme is stored in the preference store and applied by
serve, rpc and repl at startup.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List available themes",
			Args:  cobra.NoArgs,
			RunE: withThemes(a, func(cmd *cobra.Command, m *theme.Manager, _ []string) error {
				for _, name := range m.Names() {
					mark := " "
					if name == m.CurrentName() {
						mark = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, name)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Print a theme as YAML",
			Args:  cobra.ExactArgs(1),
			RunE: withThemes(a, func(cmd *cobra.Command, m *theme.Manager, args []string) error {
				t, ok := m.Get(args[0])
				if !ok {
					return errors.New(errors.CodeThemeNotFound).WithPath(args[0])
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(t); err != nil {
					return err
				}
				return enc.Close()
			}),
		},
		&cobra.Command{
			Use:   "set <name>",
			Short: "Select the current theme",
			Args:  cobra.ExactArgs(1),
			RunE: withThemes(a, func(cmd *cobra.Command, m *theme.Manager, args []string) error {
				if err := m.SetCurrent(args[0]); err != nil {
					return err
				}
				success(cmd, "theme set to %s", args[0])
				return nil
			}),
		},
	)
	return cmd
}

// withThemes opens the preference store and theme manager around fn.
func withThemes(a *app, fn func(*cobra.Command, *theme.Manager, []string) error) func(*cobra.Command, []string) error {
	return withStore(a, func(cmd *cobra.Command, store pref.Store, args []string) error {
		m, err := a.newThemes(store, "")
		if err != nil {
			return err
		}
		return fn(cmd, m, args)
	})
}
