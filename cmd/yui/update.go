package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/yui/pkg/engine"
	"github.com/vango-dev/yui/pkg/protocol"
)

func updateCmd(a *app) *cobra.Command {
	var (
		container string
		inline    []string
		out       outputOptions
	)

	cmd := &cobra.Command{
		Use:   "update <document> [patch-document...]",
		Short: "Render a document, apply patches and print the result",
		Long: `Render a layout document, then apply patches in order and print the
live tree. Each patch document holds one patch or an array of patches:

  {"target": "title", "change": {"text": "Hello", "color": null}}

A null value removes the property.

Examples:
  yui update menu.json patches.json
  yui update menu.json -p '{"target": "ok", "change": {"visible": false}}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := renderDocument(cmd, a, container, args[0])
			if err != nil {
				return err
			}

			var report engine.UpdateReport
			apply := func(input any) {
				patches, errs := protocol.DecodeUpdate(input)
				for _, err := range errs {
					warn(cmd, "%v", err)
				}
				r := e.ApplyUpdate(patches...)
				r.Skipped += len(errs)
				report.Add(r)
			}
			for _, loc := range args[1:] {
				doc, err := a.readDocument(cmd.Context(), loc)
				if err != nil {
					return err
				}
				apply(doc.Data)
			}
			for _, text := range inline {
				apply(text)
			}

			if report.Skipped+report.Failed > 0 {
				warn(cmd, "applied %d, skipped %d, failed %d", report.Applied, report.Skipped, report.Failed)
			} else {
				success(cmd, "applied %d", report.Applied)
			}
			if err := applyTheme(cmd, a, e, out.theme); err != nil {
				return err
			}
			return printTree(cmd.OutOrStdout(), e.Snapshot(), out)
		},
	}

	cmd.Flags().StringVarP(&container, "container", "c", "", "Container id (default: the root)")
	cmd.Flags().StringArrayVarP(&inline, "patch", "p", nil, "Inline patch JSON (repeatable, applied after patch documents)")
	out.register(cmd)
	return cmd
}

