package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/yui/pkg/rpc"
)

func rpcCmd(a *app) *cobra.Command {
	var document, themeName string

	cmd := &cobra.Command{
		Use:   "rpc",
		Short: "Serve the engine over JSON-RPC on stdin and stdout",
		Long: `Serve renderFromJson, update, getState, setState, setTheme and
getStatus over JSON-RPC 2.0 with Content-Length framing on stdin and
stdout. Logs go to stderr.

Examples:
  yui rpc
  yui rpc --document=layout.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := a.newStack(ctx, stackOptions{document: document, theme: themeName})
			if err != nil {
				return err
			}
			defer st.Close()

			s := rpc.NewServer(st.ctrl)
			s.SetLogger(a.logger)
			err = s.Serve(ctx, stdrwc{in: a.stdin, out: cmd.OutOrStdout()})
			if err == ctx.Err() {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&document, "document", "d", "", "Layout document rendered into the root at startup")
	cmd.Flags().StringVar(&themeName, "theme", "", "Theme used for this session instead of the stored choice")
	return cmd
}

// stdrwc joins standard input and output into one stream.
type stdrwc struct {
	in  io.Reader
	out io.Writer
}

func (s stdrwc) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s stdrwc) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s stdrwc) Close() error {
	if c, ok := s.in.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
