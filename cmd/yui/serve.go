package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/yui/pkg/middleware"
	"github.com/vango-dev/yui/pkg/server"
)

func serveCmd(a *app) *cobra.Command {
	var (
		port      int
		host      string
		document  string
		themeName string
		watching  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the playground server",
		Long: `Start the HTTP and WebSocket server.

Clients render and patch the live tree through /api, watch it at
/preview and receive every change as frames on /ws. Prometheus metrics
are served on /metrics when enabled in yui.json.

Examples:
  yui serve
  yui serve --port=8080 --document=layout.yaml
  yui serve --host=0.0.0.0
  yui serve --document=layout.json --watch
  yui serve --document=layout.json --theme=dark`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				a.cfg.Server.Port = port
			}
			if host != "" {
				a.cfg.Server.Host = host
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var opts []server.Option
			so := stackOptions{document: document, theme: themeName}
			if a.cfg.Metrics.Enabled {
				registry := prometheus.NewRegistry()
				registry.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				m := middleware.NewMetrics(
					middleware.WithNamespace(a.cfg.Metrics.Namespace),
					middleware.WithRegistry(registry),
				)
				so.observer = m
				opts = append(opts, server.WithMetrics(m, registry))
			}
			if a.cfg.Tracing.Enabled {
				so.tracer = middleware.NewTracer(a.cfg.Tracing.TracerName)
				opts = append(opts, server.WithTracing(a.cfg.Tracing.TracerName))
			}

			st, err := a.newStack(ctx, so)
			if err != nil {
				return err
			}
			defer st.Close()

			opts = append(opts, server.WithConfig(&server.ServerConfig{
				Address:      a.cfg.Address(),
				ReadTimeout:  a.cfg.ReadTimeout(),
				WriteTimeout: a.cfg.WriteTimeout(),
			}))
			srv := server.New(st.ctrl, opts...)
			srv.SetLogger(a.logger.With("component", "server"))

			if watching {
				go st.watchProject(ctx, a, document)
			}
			success(cmd, "serving %s (preview at %s/preview)", a.cfg.Address(), a.cfg.URL())
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from yui.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from yui.json)")
	cmd.Flags().StringVarP(&document, "document", "d", "", "Layout document rendered into the root at startup")
	cmd.Flags().StringVar(&themeName, "theme", "", "Theme used for this session instead of the stored choice")
	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "Re-render the document and reload themes when their files change")
	return cmd
}
