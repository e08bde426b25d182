package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gatepad/gatepad/internal/config"
	"github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/kv"
	"github.com/gatepad/gatepad/internal/ops"
)

const toolCount = 19

// testSetup creates an in-memory session and default config for testing.
func testSetup(t *testing.T) (*ops.Session, *config.Config) {
	t.Helper()

	cfg := config.DefaultConfig()
	session, err := ops.NewSession(context.Background(), kv.NewMemory(), cfg)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	t.Cleanup(session.Close)

	return session, cfg
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleClassify(t *testing.T) {
	session, cfg := testSetup(t)
	h := NewHandlers(session, cfg)
	ctx := context.Background()

	t.Run("and gate", func(t *testing.T) {
		result, err := h.HandleClassify(ctx, makeRequest(map[string]any{"code": "assign y = a & b;"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := parseOutput(t, result)
		if output["category"] != "and" {
			t.Errorf("category = %v, want and", output["category"])
		}
		if output["display_name"] != "AND Gate" {
			t.Errorf("display_name = %v, want AND Gate", output["display_name"])
		}
		if output["has_template"] != true {
			t.Error("expected has_template=true")
		}
	})

	t.Run("missing code", func(t *testing.T) {
		result, _ := h.HandleClassify(ctx, makeRequest(map[string]any{}))
		if !result.IsError {
			t.Fatal("expected error result")
		}
		assertErrorCode(t, result, "INVALID_REQUEST")
	})

	t.Run("unknown argument", func(t *testing.T) {
		result, _ := h.HandleClassify(ctx, makeRequest(map[string]any{"source": "assign y = a;"}))
		assertErrorCode(t, result, "INVALID_REQUEST")
	})
}

func TestHandleRender(t *testing.T) {
	session, cfg := testSetup(t)
	h := NewHandlers(session, cfg)
	ctx := context.Background()

	t.Run("png image", func(t *testing.T) {
		result, err := h.HandleRender(ctx, makeRequest(map[string]any{"code": "assign y = a ^ b;"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("expected success, got: %s", extractErrorMessage(result))
		}
		if len(result.Content) != 2 {
			t.Fatalf("content items = %d, want 2", len(result.Content))
		}
		caption := result.Content[0].(mcp.TextContent).Text
		if !strings.Contains(caption, "XOR Gate") || !strings.Contains(caption, "1100x420") {
			t.Errorf("caption = %q", caption)
		}
		img, ok := result.Content[1].(mcp.ImageContent)
		if !ok {
			t.Fatalf("second content is %T, want ImageContent", result.Content[1])
		}
		if img.MIMEType != "image/png" {
			t.Errorf("mime = %q, want image/png", img.MIMEType)
		}
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			t.Fatalf("image data is not base64: %v", err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Error("image data is not a PNG")
		}
	})

	t.Run("svg text", func(t *testing.T) {
		result, _ := h.HandleRender(ctx, makeRequest(map[string]any{
			"code":   "module dff(input d, clk, output reg q); endmodule",
			"format": "svg",
			"width":  float64(800),
		}))
		if result.IsError {
			t.Fatalf("expected success, got: %s", extractErrorMessage(result))
		}
		text := result.Content[0].(mcp.TextContent).Text
		if !strings.Contains(text, "<svg") {
			t.Errorf("expected an SVG document, got %q", text[:min(40, len(text))])
		}
	})

	t.Run("live preview", func(t *testing.T) {
		session.SetText(ctx, ops.SetTextInput{Text: "assign y = ~a;"})
		result, _ := h.HandleRender(ctx, makeRequest(map[string]any{}))
		if result.IsError {
			t.Fatalf("expected success, got: %s", extractErrorMessage(result))
		}
		caption := result.Content[0].(mcp.TextContent).Text
		if !strings.Contains(caption, "(not)") {
			t.Errorf("caption = %q, want the editor's NOT gate", caption)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		result, _ := h.HandleRender(ctx, makeRequest(map[string]any{"code": "x", "format": "gif"}))
		assertErrorCode(t, result, "INVALID_REQUEST")
	})

	t.Run("oversized canvas", func(t *testing.T) {
		result, _ := h.HandleRender(ctx, makeRequest(map[string]any{"code": "x", "width": float64(1 << 20)}))
		assertErrorCode(t, result, "INVALID_REQUEST")

		result, _ = h.HandleRender(ctx, makeRequest(map[string]any{"height": float64(1 << 20)}))
		assertErrorCode(t, result, "INVALID_REQUEST")
	})
}

func TestHandleLint(t *testing.T) {
	session, cfg := testSetup(t)
	h := NewHandlers(session, cfg)
	ctx := context.Background()

	result, _ := h.HandleLint(ctx, makeRequest(map[string]any{"code": "assign y = a\nassign z = b;"}))
	output := parseOutput(t, result)
	if output["clean"] != false {
		t.Error("expected clean=false")
	}
	issues := output["issues"].([]any)
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if line := issues[0].(map[string]any)["line"]; line != float64(1) {
		t.Errorf("line = %v, want 1", line)
	}

	// Without code the editor text is checked.
	session.SetText(ctx, ops.SetTextInput{Text: "assign y = a;"})
	result, _ = h.HandleLint(ctx, makeRequest(nil))
	if output := parseOutput(t, result); output["clean"] != true {
		t.Errorf("editor lint = %v, want clean", output)
	}
}

func TestHandleProjectAndFile(t *testing.T) {
	session, cfg := testSetup(t)
	h := NewHandlers(session, cfg)
	ctx := context.Background()

	result, _ := h.HandleProjectCreate(ctx, makeRequest(map[string]any{"name": "Adders"}))
	project := parseOutput(t, result)
	projectID := project["id"].(string)
	if project["active"] != true {
		t.Error("new project should be active")
	}

	result, _ = h.HandleFileCreate(ctx, makeRequest(map[string]any{"name": "half.v"}))
	file := parseOutput(t, result)
	fileID := file["id"].(string)
	if file["project_id"] != projectID {
		t.Errorf("project_id = %v, want %s", file["project_id"], projectID)
	}

	result, _ = h.HandleFileUpdate(ctx, makeRequest(map[string]any{
		"content": "module half_adder(input a, b, output s, c); endmodule",
	}))
	updated := parseOutput(t, result)
	if updated["category"] != "half_adder" {
		t.Errorf("category = %v, want half_adder", updated["category"])
	}

	result, _ = h.HandleWorkspaceStatus(ctx, makeRequest(map[string]any{"include_text": false}))
	status := parseOutput(t, result)
	if status["active_file_id"] != fileID || status["unsaved"] != true {
		t.Errorf("status = %v", status)
	}
	if _, ok := status["text"]; ok {
		t.Error("include_text=false should omit text")
	}

	result, _ = h.HandleWorkspaceSave(ctx, makeRequest(nil))
	if saved := parseOutput(t, result); saved["saved"] != true || saved["projects"] != float64(1) {
		t.Errorf("save = %v", saved)
	}

	result, _ = h.HandleFileShow(ctx, makeRequest(map[string]any{"project_id": projectID, "file_id": fileID}))
	if shown := parseOutput(t, result); shown["name"] != "half.v" {
		t.Errorf("file_show name = %v", shown["name"])
	}

	result, _ = h.HandleFileSelect(ctx, makeRequest(map[string]any{"project_id": projectID}))
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, _ = h.HandleFileUpdate(ctx, makeRequest(map[string]any{}))
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, _ = h.HandleFileDelete(ctx, makeRequest(map[string]any{"project_id": projectID, "file_id": "missing"}))
	assertErrorCode(t, result, "NOT_FOUND")

	result, _ = h.HandleFileDelete(ctx, makeRequest(map[string]any{}))
	if deleted := parseOutput(t, result); deleted["id"] != fileID {
		t.Errorf("deleted id = %v, want %s", deleted["id"], fileID)
	}

	result, _ = h.HandleFileShow(ctx, makeRequest(nil))
	assertErrorCode(t, result, "NO_ACTIVE_FILE")

	result, _ = h.HandleProjectSelect(ctx, makeRequest(map[string]any{"id": "missing"}))
	assertErrorCode(t, result, "NOT_FOUND")

	result, _ = h.HandleProjectDelete(ctx, makeRequest(map[string]any{}))
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, _ = h.HandleProjectDelete(ctx, makeRequest(map[string]any{"id": projectID}))
	parseOutput(t, result)

	result, _ = h.HandleProjectList(ctx, makeRequest(nil))
	list := parseOutput(t, result)
	if projects := list["projects"].([]any); len(projects) != 0 {
		t.Errorf("projects = %d, want 0", len(projects))
	}
}

func TestHandleHistory(t *testing.T) {
	session, cfg := testSetup(t)
	h := NewHandlers(session, cfg)
	ctx := context.Background()

	session.SetText(ctx, ops.SetTextInput{Text: "assign y = a | b;"})
	result, _ := h.HandleHistoryAdd(ctx, makeRequest(nil))
	first := parseOutput(t, result)
	if first["code"] != "assign y = a | b;" {
		t.Errorf("code = %v, want editor text", first["code"])
	}

	result, _ = h.HandleHistoryAdd(ctx, makeRequest(map[string]any{"code": "assign y = a & b;"}))
	second := parseOutput(t, result)

	result, _ = h.HandleHistoryList(ctx, makeRequest(map[string]any{"limit": float64(1)}))
	page := parseOutput(t, result)
	items := page["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["id"] != second["id"] {
		t.Errorf("items = %v, want newest snapshot first", items)
	}
	if pagination := page["pagination"].(map[string]any); pagination["has_more"] != true {
		t.Errorf("pagination = %v, want has_more", pagination)
	}

	result, _ = h.HandleHistoryLoad(ctx, makeRequest(map[string]any{"id": first["id"]}))
	if loaded := parseOutput(t, result); loaded["category"] != "or" {
		t.Errorf("loaded category = %v, want or", loaded["category"])
	}

	result, _ = h.HandleHistoryDelete(ctx, makeRequest(map[string]any{"id": first["id"]}))
	parseOutput(t, result)
	result, _ = h.HandleHistoryDelete(ctx, makeRequest(map[string]any{"id": first["id"]}))
	assertErrorCode(t, result, "NOT_FOUND")

	result, _ = h.HandleHistoryClear(ctx, makeRequest(map[string]any{}))
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, _ = h.HandleHistoryClear(ctx, makeRequest(map[string]any{"confirm": true}))
	if cleared := parseOutput(t, result); cleared["cleared"] != float64(1) {
		t.Errorf("cleared = %v, want 1", cleared["cleared"])
	}
}

func TestServerRegistration(t *testing.T) {
	session, cfg := testSetup(t)

	s := NewServer(session, cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"circuit_classify",
		"circuit_render",
		"verilog_lint",
		"project_create",
		"project_list",
		"project_select",
		"project_delete",
		"file_create",
		"file_show",
		"file_select",
		"file_update",
		"file_delete",
		"workspace_status",
		"workspace_save",
		"history_add",
		"history_list",
		"history_load",
		"history_delete",
		"history_clear",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	session, cfg := testSetup(t)

	cfg.DisabledTools = []string{"project_delete", "file_delete", "history_clear"}
	s := NewServer(session, cfg, "test")
	tools := s.ListTools()

	if len(tools) != toolCount-3 {
		t.Errorf("registered tool count = %d, want %d", len(tools), toolCount-3)
	}

	for _, name := range []string{"project_delete", "file_delete", "history_clear"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestServerRegistration_WithDisabledTypes(t *testing.T) {
	session, cfg := testSetup(t)

	cfg.DisabledTypes = []string{"history", "workspace"}
	s := NewServer(session, cfg, "test")
	tools := s.ListTools()

	if len(tools) != toolCount-7 {
		t.Errorf("registered tool count = %d, want %d", len(tools), toolCount-7)
	}
	for name := range tools {
		if typ := GetTypeForTool(name); typ == "history" || typ == "workspace" {
			t.Errorf("tool %q of a disabled type should not be registered", name)
		}
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	session, cfg := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	s := NewServer(session, cfg, "test")

	if n := len(s.ListTools()); n != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", n)
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"history_clear", "circuit_render"}, 0},
		{"one unknown", []string{"history_clear", "capsule_store"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	if unknown := ValidateDisabledTypes(KnownTypes); len(unknown) != 0 {
		t.Errorf("KnownTypes reported unknown: %v", unknown)
	}
	if unknown := ValidateDisabledTypes([]string{"history", "capsule"}); len(unknown) != 1 || unknown[0] != "capsule" {
		t.Errorf("unknown = %v, want [capsule]", unknown)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()

	if len(names) != toolCount {
		t.Errorf("AllToolNames() returned %d names, want %d", len(names), toolCount)
	}

	// Every tool belongs to a known type.
	for _, name := range names {
		if unknown := ValidateDisabledTypes([]string{GetTypeForTool(name)}); len(unknown) != 0 {
			t.Errorf("tool %q has unknown type", name)
		}
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
	if strings.Contains(errObj["message"].(string), "secret.db") {
		t.Fatal("expected INTERNAL message to be generic")
	}
}

func TestErrorResult_WrappedError(t *testing.T) {
	r := errorResult(fmt.Errorf("select: %w", errors.NewNotFound("project", "p1")))

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if errObj["status"] != float64(404) {
		t.Errorf("status=%v, want 404", errObj["status"])
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	r := errorResult(fmt.Errorf("boom"))

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Errorf("code=%v, want INTERNAL", errObj["code"])
	}
	if errObj["message"] != "an internal error occurred" {
		t.Errorf("message=%v", errObj["message"])
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	r := errorResult(errors.NewNotFound("snapshot", "42"))

	errObj := errorObject(t, r)
	details, ok := errObj["details"].(map[string]any)
	if !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
	if details["kind"] != "snapshot" || details["id"] != "42" {
		t.Errorf("details = %v", details)
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

// errorObject returns the "error" object of an error result.
func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatal("no error object in payload")
	}
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error %s, got success: %s", expectedCode, extractErrorMessage(result))
		return
	}
	if code := errorObject(t, result)["code"]; code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
