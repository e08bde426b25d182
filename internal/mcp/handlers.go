package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gatepad/gatepad/internal/config"
	"github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	session *ops.Session
	cfg     *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(session *ops.Session, cfg *config.Config) *Handlers {
	return &Handlers{session: session, cfg: cfg}
}

// Request types for each tool

// CodeRequest represents the arguments for circuit_classify and verilog_lint.
type CodeRequest struct {
	Code *string `json:"code,omitempty"`
}

// RenderRequest represents the arguments for circuit_render.
type RenderRequest struct {
	Code   *string `json:"code,omitempty"`
	Format string  `json:"format,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
}

// ProjectCreateRequest represents the arguments for project_create.
type ProjectCreateRequest struct {
	Name string `json:"name"`
}

// ProjectRequest represents the arguments for project_select and project_delete.
type ProjectRequest struct {
	ID string `json:"id"`
}

// FileCreateRequest represents the arguments for file_create.
type FileCreateRequest struct {
	ProjectID string `json:"project_id,omitempty"`
	Name      string `json:"name"`
}

// FileRequest represents the arguments for file_show, file_select and file_delete.
type FileRequest struct {
	ProjectID string `json:"project_id,omitempty"`
	FileID    string `json:"file_id,omitempty"`
}

// FileUpdateRequest represents the arguments for file_update.
type FileUpdateRequest struct {
	ProjectID string  `json:"project_id,omitempty"`
	FileID    string  `json:"file_id,omitempty"`
	Content   *string `json:"content"`
}

// StatusRequest represents the arguments for workspace_status.
type StatusRequest struct {
	IncludeText *bool `json:"include_text,omitempty"`
}

// HistoryListRequest represents the arguments for history_list.
type HistoryListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// SnapshotRequest represents the arguments for history_load and history_delete.
type SnapshotRequest struct {
	ID int64 `json:"id"`
}

// ClearRequest represents the arguments for history_clear.
type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// HandleClassify handles the circuit_classify tool call.
func (h *Handlers) HandleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CodeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Code == nil {
		return errorResult(errors.NewInvalidRequest("code is required")), nil
	}

	return successResult(ops.Classify(ops.ClassifyInput{Code: *input.Code}))
}

// HandleRender handles the circuit_render tool call. PNG images are
// returned as image content; SVG documents as text.
func (h *Handlers) HandleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RenderRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var out *ops.RenderOutput
	if input.Code == nil {
		out, err = h.session.Preview(ctx, ops.PreviewInput{
			Format: input.Format,
			Width:  input.Width,
			Height: input.Height,
		})
	} else {
		out, err = ops.Render(ops.RenderInput{
			Code:   *input.Code,
			Format: input.Format,
			Width:  input.Width,
			Height: input.Height,
		}, h.cfg.CanvasWidth, h.cfg.CanvasHeight)
	}
	if err != nil {
		return errorResult(err), nil
	}

	if out.Format == ops.FormatSVG {
		return mcp.NewToolResultText(string(out.Data)), nil
	}
	caption := fmt.Sprintf("%s schematic (%s), %dx%d", out.Category.DisplayName(), out.Category, out.Width, out.Height)
	return mcp.NewToolResultImage(caption, base64.StdEncoding.EncodeToString(out.Data), out.MIMEType), nil
}

// HandleLint handles the verilog_lint tool call.
func (h *Handlers) HandleLint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CodeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	code := h.session.Status(ctx, ops.StatusInput{}).Text
	if input.Code != nil {
		code = *input.Code
	}
	return successResult(ops.Lint(ops.LintInput{Code: code}))
}

// HandleProjectCreate handles the project_create tool call.
func (h *Handlers) HandleProjectCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.CreateProject(ctx, ops.CreateProjectInput{Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleProjectList handles the project_list tool call.
func (h *Handlers) HandleProjectList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.session.ListProjects(ctx))
}

// HandleProjectSelect handles the project_select tool call.
func (h *Handlers) HandleProjectSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.SelectProject(ctx, ops.SelectProjectInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleProjectDelete handles the project_delete tool call.
func (h *Handlers) HandleProjectDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	result, err := h.session.DeleteProject(ctx, ops.DeleteProjectInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFileCreate handles the file_create tool call.
func (h *Handlers) HandleFileCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FileCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.CreateFile(ctx, ops.CreateFileInput{
		ProjectID: input.ProjectID,
		Name:      input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFileShow handles the file_show tool call.
func (h *Handlers) HandleFileShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FileRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.ShowFile(ctx, ops.FileRef{ProjectID: input.ProjectID, FileID: input.FileID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFileSelect handles the file_select tool call.
func (h *Handlers) HandleFileSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FileRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.SelectFile(ctx, ops.FileRef{ProjectID: input.ProjectID, FileID: input.FileID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFileUpdate handles the file_update tool call.
func (h *Handlers) HandleFileUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FileUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Content == nil {
		return errorResult(errors.NewInvalidRequest("content is required")), nil
	}

	result, err := h.session.UpdateFile(ctx, ops.UpdateFileInput{
		FileRef: ops.FileRef{ProjectID: input.ProjectID, FileID: input.FileID},
		Content: *input.Content,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFileDelete handles the file_delete tool call.
func (h *Handlers) HandleFileDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FileRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.DeleteFile(ctx, ops.FileRef{ProjectID: input.ProjectID, FileID: input.FileID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleWorkspaceStatus handles the workspace_status tool call.
func (h *Handlers) HandleWorkspaceStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	return successResult(h.session.Status(ctx, ops.StatusInput{IncludeText: input.IncludeText}))
}

// HandleWorkspaceSave handles the workspace_save tool call.
func (h *Handlers) HandleWorkspaceSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.session.Save(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleHistoryAdd handles the history_add tool call.
func (h *Handlers) HandleHistoryAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CodeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.AddHistory(ctx, ops.AddHistoryInput{Code: input.Code})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleHistoryList handles the history_list tool call.
func (h *Handlers) HandleHistoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.ListHistory(ctx, ops.ListHistoryInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleHistoryLoad handles the history_load tool call.
func (h *Handlers) HandleHistoryLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnapshotRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.LoadHistory(ctx, ops.SnapshotInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleHistoryDelete handles the history_delete tool call.
func (h *Handlers) HandleHistoryDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnapshotRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.DeleteHistory(ctx, ops.SnapshotInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleHistoryClear handles the history_clear tool call.
func (h *Handlers) HandleHistoryClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClearRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if !input.Confirm {
		return errorResult(errors.NewInvalidRequest("history_clear requires confirm=true")), nil
	}

	result, err := h.session.ClearHistory(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult converts an error to an MCP error result with a JSON body.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if gErr := errors.As(err); gErr.Code != errors.ErrInternal {
		errorObj := map[string]any{
			"code":    gErr.Code,
			"message": gErr.Message,
			"status":  gErr.Status,
		}
		if gErr.Details != nil {
			errorObj["details"] = gErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		// Internal messages can carry file paths or driver errors.
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
