package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/gatepad/gatepad/internal/backend"
	"github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/ops"
	"github.com/gatepad/gatepad/internal/persist"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "workspace", "history"
	Prefs   persist.Prefs
}

// WorkspacePageData is the template data for the workspace page.
type WorkspacePageData struct {
	PageData
	Status       *ops.StatusOutput
	Projects     []ops.ProjectSummary
	Templates    *ops.TemplatesOutput
	AnalysisHTML template.HTML
	Chat         *ops.ChatOutput
	Upload       *ops.UploadOutput
	Question     string
}

// HistoryPageData is the template data for the history page.
type HistoryPageData struct {
	PageData
	Items      []persist.Snapshot
	Pagination ops.Pagination
	PrevOffset int
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"add":         func(a, b int) int { return a + b },
		"formatTime":  formatTime,
		"formatChars": formatChars,
		"deref":       deref,
		"hasValue":    hasValue,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"workspace": "workspace.html",
		"history":   "history.html",
		"error":     "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}
	r.renderBlock(w, status, name, block, data)
}

// renderBlock renders a specific named block from a page template.
func (r *Renderer) renderBlock(w http.ResponseWriter, status int, page, block string, data any) {
	t, ok := r.templates[page]
	if !ok {
		log.Printf("template %q not found", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		log.Printf("template block %q execution error: %v", block, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	gErr := errors.As(err)
	status := gErr.Status
	message := gErr.Message
	if gErr.Code == errors.ErrInternal {
		log.Printf("internal error: %s %s: %v", req.Method, req.URL.Path, err)
		message = "an internal error occurred"
	}

	// HTMX request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(gErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	// Full error page
	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
			Prefs:   persist.DefaultPrefs(),
		},
		StatusCode: status,
		Message:    message,
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// analysisMarkdown lays out an analysis result as a markdown report.
func analysisMarkdown(a *backend.Analysis) string {
	if a == nil {
		return ""
	}
	var b strings.Builder
	if !a.Success {
		fmt.Fprintf(&b, "**%s**\n", a.Error)
		return b.String()
	}
	if a.CodeQualityScore != nil {
		fmt.Fprintf(&b, "**Code quality:** %.0f/100\n\n", *a.CodeQualityScore)
	}
	if a.Explanation != "" {
		fmt.Fprintf(&b, "%s\n\n", a.Explanation)
	}
	writeIssues(&b, "Syntax errors", a.SyntaxErrors)
	writeIssues(&b, "Warnings", a.Warnings)
	if len(a.Fixes) > 0 {
		b.WriteString("### Fixes\n\n")
		for _, f := range a.Fixes {
			fmt.Fprintf(&b, "- **Step %v:** %s\n", f.Step, f.Explanation)
		}
		b.WriteString("\n")
	}
	if len(a.Suggestions) > 0 {
		b.WriteString("### Suggestions\n\n")
		for _, s := range a.Suggestions {
			fmt.Fprintf(&b, "- **%s:** %s\n", s.Title, s.Description)
			if s.EducationalContext != "" {
				fmt.Fprintf(&b, "  _%s_\n", s.EducationalContext)
			}
		}
		b.WriteString("\n")
	}
	if len(a.Optimizations) > 0 {
		b.WriteString("### Optimizations\n\n")
		for _, o := range a.Optimizations {
			fmt.Fprintf(&b, "- **%s:** %s\n", o.Heading(), o.Detail())
		}
		b.WriteString("\n")
	}
	if a.OptimizedCode != "" {
		fmt.Fprintf(&b, "### Optimized code\n\n```verilog\n%s\n```\n\n", a.OptimizedCode)
	}
	if len(a.EducationalNotes) > 0 {
		b.WriteString("### Notes\n\n")
		for _, n := range a.EducationalNotes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return b.String()
}

func writeIssues(b *strings.Builder, heading string, issues []backend.Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, is := range issues {
		if is.Line > 0 {
			fmt.Fprintf(b, "- Line %d: %s\n", is.Line, is.Message)
		} else {
			fmt.Fprintf(b, "- %s\n", is.Message)
		}
	}
	b.WriteString("\n")
}

// formatTime formats an RFC3339 timestamp as "2006-01-02 15:04" UTC.
// Unparseable input is returned unchanged.
func formatTime(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// formatChars formats an integer with comma thousands separators.
func formatChars(n int) string {
	if n < 0 {
		return "-" + formatChars(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// deref dereferences a pointer, returning the zero value if nil.
// Used for the optional analysis score.
func deref(v any) any {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Zero(rv.Type().Elem()).Interface()
		}
		return rv.Elem().Interface()
	}
	return v
}

// hasValue checks if a pointer value is non-nil.
func hasValue(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return !rv.IsNil()
	}
	return true
}
