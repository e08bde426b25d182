package web

import (
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gatepad/gatepad/internal/config"
	"github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/ops"
	"github.com/gatepad/gatepad/internal/persist"
)

// maxUploadBytes bounds a waveform or source upload.
const maxUploadBytes = 10 << 20

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	session  *ops.Session
	cfg      *config.Config
	renderer *Renderer

	mu        sync.Mutex
	templates *ops.TemplatesOutput // cached once the backend has answered
}

// HandleWorkspace handles GET /workspace: the editor, sidebar and diagram.
func (h *Handlers) HandleWorkspace(w http.ResponseWriter, r *http.Request) {
	h.renderWorkspace(w, r, nil)
}

// renderWorkspace renders the workspace page; extra fills in one-off
// results (chat reply, upload summary) that are not part of the session.
func (h *Handlers) renderWorkspace(w http.ResponseWriter, r *http.Request, extra func(*WorkspacePageData)) {
	ctx := r.Context()
	status := h.session.Status(ctx, ops.StatusInput{})

	title := "Workspace"
	if status.FileName != "" {
		title = status.FileName
	}
	data := WorkspacePageData{
		PageData:     h.page(r, title, "workspace"),
		Status:       status,
		Projects:     h.session.ListProjects(ctx).Projects,
		Templates:    h.templateList(r),
		AnalysisHTML: renderMarkdown(analysisMarkdown(status.Analysis)),
	}
	if extra != nil {
		extra(&data)
	}
	h.renderer.renderPage(w, r, "workspace", data)
}

// templateList returns the backend templates, retrying the backend until
// it has answered once.
func (h *Handlers) templateList(r *http.Request) *ops.TemplatesOutput {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.templates != nil {
		return h.templates
	}
	list := h.session.Templates(r.Context())
	if !list.Fallback {
		h.templates = list
	}
	return list
}

// HandleCreateProject handles POST /projects.
func (h *Handlers) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	result, err := h.session.CreateProject(r.Context(), ops.CreateProjectInput{Name: r.FormValue("name")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace", result)
}

// HandleSelectProject handles POST /projects/{id}/select.
func (h *Handlers) HandleSelectProject(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.SelectProject(r.Context(), ops.SelectProjectInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace", result)
}

// HandleDeleteProject handles DELETE /projects/{id} and its form fallback.
func (h *Handlers) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.DeleteProject(r.Context(), ops.DeleteProjectInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace", result)
}

// HandleCreateFile handles POST /projects/{id}/files.
func (h *Handlers) HandleCreateFile(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	result, err := h.session.CreateFile(r.Context(), ops.CreateFileInput{
		ProjectID: r.PathValue("id"),
		Name:      r.FormValue("name"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace", result)
}

// HandleSelectFile handles POST /projects/{id}/files/{file}/select.
func (h *Handlers) HandleSelectFile(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.SelectFile(r.Context(), fileRef(r))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace", result)
}

// HandleDeleteFile handles DELETE /projects/{id}/files/{file} and its form fallback.
func (h *Handlers) HandleDeleteFile(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.DeleteFile(r.Context(), fileRef(r))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace", result)
}

// HandleSetText handles POST /editor, replacing the editor content.
func (h *Handlers) HandleSetText(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	result := h.session.SetText(r.Context(), ops.SetTextInput{Text: r.FormValue("text")})
	h.done(w, r, "/workspace", result)
}

// HandleSave handles POST /save.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.Save(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace", result)
}

// HandleAnalyze handles POST /analyze.
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.Analyze(r.Context(), ops.CodeInput{})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace#analysis", result)
}

// HandleDebug handles POST /debug.
func (h *Handlers) HandleDebug(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	result, err := h.session.Debug(r.Context(), ops.DebugInput{ErrorMessage: r.FormValue("error_message")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace#analysis", result)
}

// HandleOptimize handles POST /optimize.
func (h *Handlers) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	result, err := h.session.Optimize(r.Context(), ops.OptimizeInput{Goals: r.Form["goal"]})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace#analysis", result)
}

// HandleSimulate handles POST /simulate.
func (h *Handlers) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.Simulate(r.Context(), ops.SimulateInput{})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace#waveform", result)
}

// HandleApplyTemplate handles POST /templates/{key}.
func (h *Handlers) HandleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.ApplyTemplate(r.Context(), ops.ApplyTemplateInput{Key: r.PathValue("key")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace", result)
}

// HandleChat handles POST /chat. The reply is shown once and not stored.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	question := r.FormValue("message")
	result, err := h.session.Chat(r.Context(), ops.ChatInput{Message: question})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.renderWorkspace(w, r, func(d *WorkspacePageData) {
		d.Chat = result
		d.Question = question
	})
}

// HandleUpload handles POST /upload with a multipart "file" field.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid upload: "+err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("file is required"))
		return
	}
	defer file.Close()

	result, err := h.session.Upload(r.Context(), ops.UploadInput{Filename: header.Filename, Body: file})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.renderWorkspace(w, r, func(d *WorkspacePageData) { d.Upload = result })
}

// HandleDiagram returns a handler for GET /diagram.png or /diagram.svg, the
// live schematic of the editor text. width and height query parameters
// resize it.
func (h *Handlers) HandleDiagram(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.session.Preview(r.Context(), ops.PreviewInput{
			Format: format,
			Width:  parseIntParam(r, "width", 0),
			Height: parseIntParam(r, "height", 0),
		})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", result.MIMEType)
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Circuit-Category", string(result.Category))
		_, _ = w.Write(result.Data)
	}
}

// HandleHistory handles GET /history: saved snapshots, newest first.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.ListHistory(r.Context(), ops.ListHistoryInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultHistoryLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.renderer.renderPage(w, r, "history", HistoryPageData{
		PageData:   h.page(r, "History", "history"),
		Items:      result.Items,
		Pagination: result.Pagination,
		PrevOffset: max(0, result.Pagination.Offset-result.Pagination.Limit),
	})
}

// HandleAddHistory handles POST /history, snapshotting the editor text.
func (h *Handlers) HandleAddHistory(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.AddHistory(r.Context(), ops.AddHistoryInput{})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/history", result)
}

// HandleLoadHistory handles POST /history/{id}/load.
func (h *Handlers) HandleLoadHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.snapshotID(w, r)
	if !ok {
		return
	}
	result, err := h.session.LoadHistory(r.Context(), ops.SnapshotInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/workspace", result)
}

// HandleDeleteHistory handles DELETE /history/{id} and its form fallback.
func (h *Handlers) HandleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.snapshotID(w, r)
	if !ok {
		return
	}
	result, err := h.session.DeleteHistory(r.Context(), ops.SnapshotInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, "/history", result)
}

// HandleClearHistory handles POST /history/clear. It requires confirm=true.
func (h *Handlers) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	result, err := h.session.ClearHistory(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: return HTML fragment
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="clear-result">Cleared ` + strconv.Itoa(result.Cleared) + ` snapshots</div>`))
		return
	}
	h.done(w, r, "/history", result)
}

// HandlePrefs handles POST /prefs: theme and sidebar layout.
func (h *Handlers) HandlePrefs(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	var input ops.SetPrefsInput
	if v := r.FormValue("theme"); v != "" {
		input.Theme = &v
	}
	if v := r.FormValue("sidebar_width"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("sidebar_width must be an integer"))
			return
		}
		input.SidebarWidth = &width
	}
	if v := r.FormValue("sidebar_collapsed"); v != "" {
		collapsed := v == "true" || v == "1"
		input.SidebarCollapsed = &collapsed
	}

	result, err := h.session.SetPrefs(r.Context(), input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, redirectBack(r, "/workspace"), result)
}

// page fills the common page fields. Unreadable prefs fall back to defaults.
func (h *Handlers) page(r *http.Request, title, nav string) PageData {
	data := PageData{
		Title:   title,
		Version: h.renderer.version,
		Nav:     nav,
		Prefs:   persist.DefaultPrefs(),
	}
	if prefs, err := h.session.Prefs(r.Context()); err != nil {
		log.Printf("web: read prefs: %v", err)
	} else {
		data.Prefs = *prefs
	}
	return data
}

// done finishes a mutating request: htmx clients are redirected via
// HX-Redirect, JSON clients get result, browsers follow a 303 to location.
func (h *Handlers) done(w http.ResponseWriter, r *http.Request, location string, result any) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(http.StatusOK)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// parseForm parses the request form, rendering an error on failure.
func (h *Handlers) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return false
	}
	return true
}

// snapshotID parses the {id} path value of a history route.
func (h *Handlers) snapshotID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("snapshot id must be an integer"))
		return 0, false
	}
	return id, true
}

// fileRef builds a file reference from the {id} and {file} path values.
func fileRef(r *http.Request) ops.FileRef {
	return ops.FileRef{ProjectID: r.PathValue("id"), FileID: r.PathValue("file")}
}

// redirectBack returns the same-site page named by the form's "back" field,
// or fallback.
func redirectBack(r *http.Request, fallback string) string {
	switch back := r.FormValue("back"); back {
	case "/workspace", "/history":
		return back
	}
	return fallback
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
