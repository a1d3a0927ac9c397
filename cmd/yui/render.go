package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/engine"
	"github.com/vango-dev/yui/pkg/render"
	"github.com/vango-dev/yui/pkg/tree"
	"github.com/vango-dev/yui/pkg/vdom"
)

// outputOptions select how a live tree is printed.
type outputOptions struct {
	format string
	pretty bool
	theme  string
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "output", "o", "json", "Output format: json, text or html")
	cmd.Flags().BoolVar(&o.pretty, "pretty", false, "Indent HTML output")
	cmd.Flags().StringVar(&o.theme, "theme", "", "Apply the named theme from the theme directory")
}

func renderCmd(a *app) *cobra.Command {
	var (
		container string
		out       outputOptions
	)

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Render a layout document and print the resulting tree",
		Long: `Render a layout document into a fresh engine and print the live tree.

The document may be a file path, an http(s) URL, an s3://bucket/key URI
or "-" for standard input. Files ending in .yaml or .yml are read as
YAML and .jsonc files may contain comments.

Examples:
  yui render menu.json
  yui render -o html --pretty menu.yaml
  yui render --theme dark s3://layouts/menu.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := renderDocument(cmd, a, container, args[0])
			if err != nil {
				return err
			}
			if err := applyTheme(cmd, a, e, out.theme); err != nil {
				return err
			}
			return printTree(cmd.OutOrStdout(), e.Snapshot(), out)
		},
	}

	cmd.Flags().StringVarP(&container, "container", "c", "", "Container id (default: the root)")
	out.register(cmd)
	return cmd
}

// renderDocument renders loc into a new in-memory engine.
func renderDocument(cmd *cobra.Command, a *app, container, loc string) (*engine.Engine, error) {
	doc, err := a.readDocument(cmd.Context(), loc)
	if err != nil {
		return nil, err
	}
	e := a.newEngine(engine.NewMemoryHost())
	if container == "" {
		container = e.RootID()
	}
	status := e.RenderDocument(container, doc.Name, doc.Data)
	if status.OK() {
		return e, nil
	}
	if status == engine.StatusParseError {
		fmt.Fprintln(cmd.ErrOrStderr(), render.PreviewText(doc.Data))
	}
	// Re-parse for the detailed error; the engine only reports a status.
	if _, perr := tree.Parse(doc.Name, doc.Data); perr != nil {
		return nil, perr
	}
	return nil, errors.Newf(errors.CategoryCLI, "render into %q failed: %s (%d)", container, status, int(status))
}

// applyTheme restyles e with the named theme. An empty name is a no-op.
func applyTheme(cmd *cobra.Command, a *app, e *engine.Engine, name string) error {
	if name == "" {
		return nil
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	themes, err := a.newThemes(store, "")
	if err != nil {
		return err
	}
	t, ok := themes.Get(name)
	if !ok {
		return errors.New(errors.CodeThemeNotFound).WithPath(name).
			WithDetail("Theme directory: " + a.cfg.ThemesPath())
	}
	report := e.ApplyUpdate(t.Patches(e.Snapshot())...)
	a.logger.Debug("theme applied", "theme", name, "applied", report.Applied, "skipped", report.Skipped)
	return nil
}

func printTree(w io.Writer, n *vdom.Node, out outputOptions) error {
	switch out.format {
	case "json":
		data, err := tree.Marshal(n)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "text":
		_, err := fmt.Fprintln(w, render.PreviewValue(tree.Encode(n)))
		return err
	case "html":
		r := render.NewRenderer(render.RendererConfig{Pretty: out.pretty})
		if err := r.RenderToWriter(w, n); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	return errors.Newf(errors.CategoryCLI, "unknown output format %q", out.format).
		WithSuggestion("Use json, text or html")
}
