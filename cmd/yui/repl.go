package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/render"
	"github.com/vango-dev/yui/pkg/server"
	"github.com/vango-dev/yui/pkg/tree"
)

const replHelp = `Commands:
  render [container] <json | @location>   render a tree into a container
  update <json | @location>               apply a patch or an array of patches
  state [text]                            print the live tree
  get <id>                                print one element
  theme [name]                            list themes or switch theme
  status                                  print a summary
  help                                    show this help
  quit                                    leave`

var errQuit = stderrors.New("quit")

func replCmd(a *app) *cobra.Command {
	var document, themeName string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Drive the engine interactively",
		Long: `Start an interactive session on a live engine.

` + replHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.newStack(ctx, stackOptions{document: document, theme: themeName})
			if err != nil {
				return err
			}
			defer st.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "yui> ",
				HistoryFile:     historyFile(),
				InterruptPrompt: "^C",
				EOFPrompt:       "quit",
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			sess := &replSession{app: a, ctrl: st.ctrl}
			fmt.Fprintln(rl.Stdout(), "yui "+version+", type help for commands")
			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					if line == "" {
						return nil
					}
					continue
				}
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				out, err := sess.exec(ctx, line)
				if err == errQuit {
					return nil
				}
				if err != nil {
					errors.Fprint(rl.Stderr(), err)
					continue
				}
				if out != "" {
					fmt.Fprintln(rl.Stdout(), out)
				}
			}
		},
	}

	cmd.Flags().StringVarP(&document, "document", "d", "", "Layout document rendered into the root at startup")
	cmd.Flags().StringVar(&themeName, "theme", "", "Theme used for this session instead of the stored choice")
	return cmd
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "yui")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

// replSession executes one line at a time against a controller.
type replSession struct {
	app  *app
	ctrl *server.Controller
}

func (s *replSession) exec(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "quit", "exit":
		return "", errQuit
	case "help":
		return replHelp, nil

	case "render":
		container := s.ctrl.RootID()
		if rest != "" && !strings.HasPrefix(rest, "{") && !strings.HasPrefix(rest, "@") {
			container, rest, _ = strings.Cut(rest, " ")
			rest = strings.TrimSpace(rest)
		}
		name, data, err := s.payload(ctx, rest)
		if err != nil {
			return "", err
		}
		status, err := s.ctrl.Render(ctx, container, name, data)
		if err != nil {
			return "", err
		}
		if status.OK() {
			return status.String(), nil
		}
		if _, perr := tree.Parse(name, data); perr != nil {
			return "", perr
		}
		return "", errors.Newf(errors.CategoryCLI, "render into %q failed: %s (%d)", container, status, int(status))

	case "update":
		_, data, err := s.payload(ctx, rest)
		if err != nil {
			return "", err
		}
		report, err := s.ctrl.Update(ctx, data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("applied %d, skipped %d, failed %d", report.Applied, report.Skipped, report.Failed), nil

	case "state":
		n, err := s.ctrl.State(ctx)
		if err != nil {
			return "", err
		}
		if rest == "text" {
			return render.PreviewValue(tree.Encode(n)), nil
		}
		data, err := tree.Marshal(n)
		return string(data), err

	case "get":
		if rest == "" {
			return "", usage("get <id>")
		}
		el, ok, err := s.ctrl.Element(ctx, rest)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errors.New(errors.CodeMissingTarget).WithPath(rest)
		}
		data, err := json.MarshalIndent(el, "", "  ")
		return string(data), err

	case "theme":
		themes := s.ctrl.Themes()
		if rest == "" {
			var b strings.Builder
			for _, name := range themes.Names() {
				mark := "  "
				if name == themes.CurrentName() {
					mark = "* "
				}
				b.WriteString(mark + name + "\n")
			}
			return strings.TrimSuffix(b.String(), "\n"), nil
		}
		report, err := s.ctrl.SetTheme(ctx, rest)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("theme %s: %d elements restyled", rest, report.Applied), nil

	case "status":
		st, err := s.ctrl.Status(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("root %s, %d elements, theme %q", st.Root, st.Elements, st.Theme), nil
	}
	return "", errors.Newf(errors.CategoryCLI, "unknown command %q", cmd).
		WithSuggestion("Type help for the list of commands")
}

// payload returns inline JSON or the document at @location.
func (s *replSession) payload(ctx context.Context, arg string) (string, []byte, error) {
	if arg == "" {
		return "", nil, usage("a JSON document or @location")
	}
	if loc, ok := strings.CutPrefix(arg, "@"); ok {
		doc, err := s.app.readDocument(ctx, loc)
		if err != nil {
			return "", nil, err
		}
		return doc.Name, doc.Data, nil
	}
	return "", []byte(arg), nil
}

func usage(what string) error {
	return errors.Newf(errors.CategoryCLI, "expected %s", what)
}
