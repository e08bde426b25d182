package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/gatepad/gatepad/internal/config"
	"github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/ops"
	"github.com/gatepad/gatepad/internal/web"
)

// newCLIApp creates the CLI application with all commands. Every command
// runs against one session; commands that change the workspace save it
// before returning.
func newCLIApp(session *ops.Session, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "gatepad",
		Usage:   "Verilog circuit workspace",
		Version: Version,
		Commands: []*cli.Command{
			classifyCmd(),
			lintCmd(session),
			renderCmd(session, cfg),
			statusCmd(session),
			textCmd(session),
			saveCmd(session),
			projectCmd(session),
			fileCmd(session),
			historyCmd(session),
			prefsCmd(session),
			analyzeCmd(session),
			debugCmd(session),
			optimizeCmd(session),
			simulateCmd(session),
			templatesCmd(session),
			applyTemplateCmd(session),
			chatCmd(session),
			uploadCmd(session),
			serveCmd(session, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// inFlag names a file to read Verilog source from instead of stdin.
func inFlag() cli.Flag {
	return &cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "Read source from file instead of stdin"}
}

// classifyCmd creates the classify command.
func classifyCmd() *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "Classify Verilog source into a circuit category (reads stdin)",
		Flags: []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			code, err := requireSource(c)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(ops.Classify(ops.ClassifyInput{Code: code}))
		},
	}
}

// lintCmd creates the lint command.
func lintCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "lint",
		Usage: "Check assign statements for missing semicolons (reads stdin, default: editor text)",
		Flags: []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			code, err := sourceOrEditor(c, session)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(ops.Lint(ops.LintInput{Code: code}))
		},
	}
}

// renderCmd creates the render command.
func renderCmd(session *ops.Session, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Draw the schematic for Verilog source (reads stdin, default: editor text)",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: ops.FormatPNG, Usage: "Output format: png|svg"},
			&cli.IntFlag{Name: "width", Usage: "Canvas width (default: config canvas_width)"},
			&cli.IntFlag{Name: "height", Usage: "Canvas height (default: config canvas_height)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the image to this path (default: stdout)"},
		},
		Action: func(c *cli.Context) error {
			code, err := sourceOrEditor(c, session)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Render(ops.RenderInput{
				Code:   code,
				Width:  c.Int("width"),
				Height: c.Int("height"),
				Format: c.String("format"),
			}, cfg.CanvasWidth, cfg.CanvasHeight)
			if err != nil {
				return outputError(err)
			}

			path := c.String("out")
			if path == "" {
				_, err := os.Stdout.Write(output.Data)
				return err
			}
			if err := os.WriteFile(path, output.Data, 0o644); err != nil {
				return outputError(errors.NewInternal(fmt.Errorf("write %s: %w", path, err)))
			}
			return outputJSON(struct {
				*ops.RenderOutput
				Path string `json:"path"`
			}{output, path})
		},
	}
}

// statusCmd creates the status command.
func statusCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the active project, file, category and lint findings",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-text", Usage: "Exclude the editor text from output"},
		},
		Action: func(c *cli.Context) error {
			input := ops.StatusInput{}
			if c.Bool("no-text") {
				includeText := false
				input.IncludeText = &includeText
			}
			return outputJSON(session.Status(c.Context, input))
		},
	}
}

// textCmd creates the text command.
func textCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "text",
		Usage: "Replace the editor text (reads stdin) and save",
		Flags: []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			text, _, err := readSource(c)
			if err != nil {
				return outputError(err)
			}
			out := session.SetText(c.Context, ops.SetTextInput{Text: text})
			return saveAndOutput(c.Context, session, out)
		},
	}
}

// saveCmd creates the save command.
func saveCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Persist the workspace",
		Action: func(c *cli.Context) error {
			output, err := session.Save(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// projectCmd creates the project command group.
func projectCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "project",
		Usage: "Manage projects",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a project and make it active",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Project name"},
				},
				Action: func(c *cli.Context) error {
					output, err := session.CreateProject(c.Context, ops.CreateProjectInput{Name: c.String("name")})
					if err != nil {
						return outputError(err)
					}
					return saveAndOutput(c.Context, session, output)
				},
			},
			{
				Name:  "list",
				Usage: "List projects and their files",
				Action: func(c *cli.Context) error {
					return outputJSON(session.ListProjects(c.Context))
				},
			},
			{
				Name:      "select",
				Usage:     "Make a project active and show the selection",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := session.SelectProject(c.Context, ops.SelectProjectInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a project and its files",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return outputError(errors.NewInvalidRequest("project id is required"))
					}
					output, err := session.DeleteProject(c.Context, ops.DeleteProjectInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return saveAndOutput(c.Context, session, output)
				},
			},
		},
	}
}

// projectFlag selects the project a file command addresses.
func projectFlag() cli.Flag {
	return &cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project id (default: active project)"}
}

// fileRef builds a file reference from the --project flag and the first
// argument.
func fileRef(c *cli.Context) ops.FileRef {
	return ops.FileRef{ProjectID: c.String("project"), FileID: c.Args().First()}
}

// fileCmd creates the file command group.
func fileCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "file",
		Usage: "Manage files within a project",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an empty file and make it active",
				Flags: []cli.Flag{
					projectFlag(),
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "File name"},
				},
				Action: func(c *cli.Context) error {
					output, err := session.CreateFile(c.Context, ops.CreateFileInput{
						ProjectID: c.String("project"),
						Name:      c.String("name"),
					})
					if err != nil {
						return outputError(err)
					}
					return saveAndOutput(c.Context, session, output)
				},
			},
			{
				Name:      "show",
				Usage:     "Show a file's content",
				ArgsUsage: "[id]",
				Flags:     []cli.Flag{projectFlag()},
				Action: func(c *cli.Context) error {
					output, err := session.ShowFile(c.Context, fileRef(c))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "select",
				Usage:     "Open a file in the editor and show the selection",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{projectFlag()},
				Action: func(c *cli.Context) error {
					output, err := session.SelectFile(c.Context, fileRef(c))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "update",
				Usage:     "Replace a file's content (reads stdin) and save",
				ArgsUsage: "[id]",
				Flags:     []cli.Flag{projectFlag(), inFlag()},
				Action: func(c *cli.Context) error {
					content, ok, err := readSource(c)
					if err != nil {
						return outputError(err)
					}
					if !ok {
						return outputError(errors.NewInvalidRequest("content must be piped via stdin or given with --in"))
					}
					output, err := session.UpdateFile(c.Context, ops.UpdateFileInput{FileRef: fileRef(c), Content: content})
					if err != nil {
						return outputError(err)
					}
					return saveAndOutput(c.Context, session, output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a file",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{projectFlag()},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return outputError(errors.NewInvalidRequest("file id is required"))
					}
					output, err := session.DeleteFile(c.Context, fileRef(c))
					if err != nil {
						return outputError(err)
					}
					return saveAndOutput(c.Context, session, output)
				},
			},
		},
	}
}

// historyCmd creates the history command group.
func historyCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Manage saved code snapshots",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Snapshot code from stdin (default: editor text)",
				Flags: []cli.Flag{inFlag()},
				Action: func(c *cli.Context) error {
					input := ops.AddHistoryInput{}
					if code, ok, err := readSource(c); err != nil {
						return outputError(err)
					} else if ok {
						input.Code = &code
					}
					output, err := session.AddHistory(c.Context, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List snapshots, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultHistoryLimit, Usage: "Maximum items to return"},
					&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
				},
				Action: func(c *cli.Context) error {
					output, err := session.ListHistory(c.Context, ops.ListHistoryInput{
						Limit:  c.Int("limit"),
						Offset: c.Int("offset"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "show",
				Usage:     "Show one snapshot",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := snapshotID(c)
					if err != nil {
						return outputError(err)
					}
					output, err := session.ShowHistory(c.Context, ops.SnapshotInput{ID: id})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "load",
				Usage:     "Load a snapshot into the editor and save",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := snapshotID(c)
					if err != nil {
						return outputError(err)
					}
					output, err := session.LoadHistory(c.Context, ops.SnapshotInput{ID: id})
					if err != nil {
						return outputError(err)
					}
					return saveAndOutput(c.Context, session, output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete one snapshot",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := snapshotID(c)
					if err != nil {
						return outputError(err)
					}
					output, err := session.DeleteHistory(c.Context, ops.SnapshotInput{ID: id})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "clear",
				Usage: "Delete every snapshot",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm deletion"},
				},
				Action: func(c *cli.Context) error {
					if !c.Bool("yes") {
						return outputError(errors.NewInvalidRequest("clearing history requires --yes"))
					}
					output, err := session.ClearHistory(c.Context)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// prefsCmd creates the prefs command.
func prefsCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Show or change UI preferences",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "theme", Usage: "Color theme: dark|light"},
			&cli.IntFlag{Name: "sidebar-width", Usage: "Sidebar width in pixels (clamped)"},
			&cli.BoolFlag{Name: "sidebar-collapsed", Usage: "Collapse the sidebar"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SetPrefsInput{}
			if c.IsSet("theme") {
				theme := c.String("theme")
				input.Theme = &theme
			}
			if c.IsSet("sidebar-width") {
				width := c.Int("sidebar-width")
				input.SidebarWidth = &width
			}
			if c.IsSet("sidebar-collapsed") {
				collapsed := c.Bool("sidebar-collapsed")
				input.SidebarCollapsed = &collapsed
			}

			if input.Theme == nil && input.SidebarWidth == nil && input.SidebarCollapsed == nil {
				output, err := session.Prefs(c.Context)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}
			output, err := session.SetPrefs(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// analyzeCmd creates the analyze command.
func analyzeCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Ask the backend to review code (reads stdin, default: editor text)",
		Flags: []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			input, err := codeInput(c)
			if err != nil {
				return outputError(err)
			}
			output, err := session.Analyze(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// debugCmd creates the debug command.
func debugCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "debug",
		Usage: "Ask the backend for a fix walkthrough (reads stdin, default: editor text)",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "error", Aliases: []string{"e"}, Usage: "Compiler or simulator error to explain"},
		},
		Action: func(c *cli.Context) error {
			input, err := codeInput(c)
			if err != nil {
				return outputError(err)
			}
			output, err := session.Debug(c.Context, ops.DebugInput{CodeInput: input, ErrorMessage: c.String("error")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// optimizeCmd creates the optimize command.
func optimizeCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Ask the backend for optimizations (reads stdin, default: editor text)",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringSliceFlag{Name: "goal", Aliases: []string{"g"}, Usage: "Optimization goal, repeatable (default: performance, readability)"},
		},
		Action: func(c *cli.Context) error {
			input, err := codeInput(c)
			if err != nil {
				return outputError(err)
			}
			output, err := session.Optimize(c.Context, ops.OptimizeInput{CodeInput: input, Goals: c.StringSlice("goal")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// simulateCmd creates the simulate command.
func simulateCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Run code on the backend simulator (reads stdin, default: editor text)",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "testbench", Aliases: []string{"t"}, Usage: "Testbench file (default: the applied template's testbench)"},
		},
		Action: func(c *cli.Context) error {
			code, err := codeInput(c)
			if err != nil {
				return outputError(err)
			}
			input := ops.SimulateInput{CodeInput: code}
			if path := c.String("testbench"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return outputError(errors.NewInvalidRequest(fmt.Sprintf("read testbench: %v", err)))
				}
				tb := string(data)
				input.Testbench = &tb
			}
			output, err := session.Simulate(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// templatesCmd creates the templates command.
func templatesCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "List the backend's circuit templates",
		Action: func(c *cli.Context) error {
			return outputJSON(session.Templates(c.Context))
		},
	}
}

// applyTemplateCmd creates the apply-template command.
func applyTemplateCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "apply-template",
		Usage:     "Load a template into the editor and save",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			output, err := session.ApplyTemplate(c.Context, ops.ApplyTemplateInput{Key: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return saveAndOutput(c.Context, session, output)
		},
	}
}

// chatCmd creates the chat command.
func chatCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Ask the assistant a question",
		ArgsUsage: "<message...>",
		Action: func(c *cli.Context) error {
			output, err := session.Chat(c.Context, ops.ChatInput{Message: strings.Join(c.Args().Slice(), " ")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// uploadCmd creates the upload command.
func uploadCmd(session *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a file to the backend",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return outputError(errors.NewInvalidRequest("path is required"))
			}
			f, err := os.Open(path)
			if err != nil {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("open %s: %v", path, err)))
			}
			defer f.Close()

			output, err := session.Upload(c.Context, ops.UploadInput{Filename: path, Body: f})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(session *ops.Session, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8787, Usage: "Port to listen on"},
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(session, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if gErr, ok := err.(*errors.GatepadError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", gErr.Code, gErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// saveAndOutput persists the workspace and prints v.
func saveAndOutput(ctx context.Context, session *ops.Session, v any) error {
	if _, err := session.Save(ctx); err != nil {
		return outputError(err)
	}
	return outputJSON(v)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin. Trailing whitespace is dropped;
// leading lines are kept so lint line numbers match the input.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), " \t\r\n"), nil
}

// readSource returns source from --in or piped stdin. ok is false when
// neither supplied any text.
func readSource(c *cli.Context) (string, bool, error) {
	if path := c.String("in"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", false, errors.NewInvalidRequest(fmt.Sprintf("read %s: %v", path, err))
		}
		return string(data), true, nil
	}
	if !stdinHasData() {
		return "", false, nil
	}
	text, err := readStdin()
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	return text, text != "", nil
}

// requireSource is readSource for commands with no editor fallback.
func requireSource(c *cli.Context) (string, error) {
	code, ok, err := readSource(c)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.NewInvalidRequest("code must be piped via stdin or given with --in")
	}
	return code, nil
}

// sourceOrEditor returns piped source, falling back to the editor text.
func sourceOrEditor(c *cli.Context, session *ops.Session) (string, error) {
	code, ok, err := readSource(c)
	if err != nil || ok {
		return code, err
	}
	return session.Status(c.Context, ops.StatusInput{}).Text, nil
}

// codeInput returns a backend code override when source was supplied.
func codeInput(c *cli.Context) (ops.CodeInput, error) {
	code, ok, err := readSource(c)
	if err != nil || !ok {
		return ops.CodeInput{}, err
	}
	return ops.CodeInput{Code: &code}, nil
}

// snapshotID parses the first argument as a snapshot id.
func snapshotID(c *cli.Context) (int64, error) {
	arg := c.Args().First()
	if arg == "" {
		return 0, errors.NewInvalidRequest("snapshot id is required")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid snapshot id %q", arg))
	}
	return id, nil
}
