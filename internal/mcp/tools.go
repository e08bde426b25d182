package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gatepad/gatepad/internal/schematic"
)

// Tool definitions. Workspace mutations stay in memory until
// workspace_save is called.

var classifyToolDef = mcp.NewTool("circuit_classify",
	mcp.WithDescription("Detect which textbook circuit a Verilog snippet implements (gate, adder, mux, flip-flop, counter, FSM...). Returns the category, its display name and the index of the rule that matched."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("code", mcp.Required(), mcp.Description("Verilog source text")),
)

var renderToolDef = mcp.NewTool("circuit_render",
	mcp.WithDescription("Draw the schematic for a Verilog snippet. Without code, renders the live diagram of the editor text. PNG output is returned as an image; SVG as text."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("code", mcp.Description("Verilog source text (default: editor text)")),
	mcp.WithString("format", mcp.Enum("png", "svg"), mcp.DefaultString("png"), mcp.Description("Image format")),
	mcp.WithNumber("width", mcp.Min(0), mcp.Max(schematic.MaxWidth), mcp.Description("Canvas width in pixels (default: configured canvas)")),
	mcp.WithNumber("height", mcp.Min(0), mcp.Max(schematic.MaxHeight), mcp.Description("Canvas height in pixels (default: configured canvas)")),
)

var lintToolDef = mcp.NewTool("verilog_lint",
	mcp.WithDescription("Best-effort check that every continuous assign ends with a semicolon. Not a parser."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("code", mcp.Description("Verilog source text (default: editor text)")),
)

var projectCreateToolDef = mcp.NewTool("project_create",
	mcp.WithDescription("Create an empty project and make it active."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
)

var projectListToolDef = mcp.NewTool("project_list",
	mcp.WithDescription("List projects with their files and the active selection."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var projectSelectToolDef = mcp.NewTool("project_select",
	mcp.WithDescription("Make a project active. The active file is kept if it belongs to the project, otherwise its first file is opened."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
)

var projectDeleteToolDef = mcp.NewTool("project_delete",
	mcp.WithDescription("Delete a project and all its files."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
)

var fileCreateToolDef = mcp.NewTool("file_create",
	mcp.WithDescription("Add an empty file to a project and open it."),
	mcp.WithString("project_id", mcp.Description("Project id (default: active project)")),
	mcp.WithString("name", mcp.Required(), mcp.Description("File name, e.g. top.v")),
)

var fileShowToolDef = mcp.NewTool("file_show",
	mcp.WithDescription("Return a file's content with its circuit category and lint findings."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("project_id", mcp.Description("Project id (default: active project)")),
	mcp.WithString("file_id", mcp.Description("File id (default: active file)")),
)

var fileSelectToolDef = mcp.NewTool("file_select",
	mcp.WithDescription("Open a file in the editor."),
	mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
	mcp.WithString("file_id", mcp.Required(), mcp.Description("File id")),
)

var fileUpdateToolDef = mcp.NewTool("file_update",
	mcp.WithDescription("Replace a file's content. Updating the open file also updates the editor and its diagram."),
	mcp.WithString("project_id", mcp.Description("Project id (default: active project)")),
	mcp.WithString("file_id", mcp.Description("File id (default: active file)")),
	mcp.WithString("content", mcp.Required(), mcp.Description("New Verilog content")),
)

var fileDeleteToolDef = mcp.NewTool("file_delete",
	mcp.WithDescription("Delete a file. Deleting the open file opens the project's first remaining file."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("project_id", mcp.Description("Project id (default: active project)")),
	mcp.WithString("file_id", mcp.Description("File id (default: active file)")),
)

var workspaceStatusToolDef = mcp.NewTool("workspace_status",
	mcp.WithDescription("Show the active project and file, the editor text with its category and lint findings, the unsaved flag and the last analysis and simulation results."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithBoolean("include_text", mcp.Description("Include the editor text (default: true)")),
)

var workspaceSaveToolDef = mcp.NewTool("workspace_save",
	mcp.WithDescription("Persist all projects and clear the unsaved flag."),
)

var historyAddToolDef = mcp.NewTool("history_add",
	mcp.WithDescription("Save a snapshot of the editor text (or of the given code) to the history."),
	mcp.WithString("code", mcp.Description("Code to save (default: editor text)")),
)

var historyListToolDef = mcp.NewTool("history_list",
	mcp.WithDescription("List saved snapshots, newest first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("limit", mcp.Min(1), mcp.Max(100), mcp.DefaultNumber(20), mcp.Description("Page size")),
	mcp.WithNumber("offset", mcp.Min(0), mcp.Description("Items to skip")),
)

var historyLoadToolDef = mcp.NewTool("history_load",
	mcp.WithDescription("Load a snapshot into the editor. The open file receives the code."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Snapshot id")),
)

var historyDeleteToolDef = mcp.NewTool("history_delete",
	mcp.WithDescription("Delete one snapshot."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Snapshot id")),
)

var historyClearToolDef = mcp.NewTool("history_clear",
	mcp.WithDescription("Delete every snapshot. Requires confirm=true."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
)
