package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/gatepad/gatepad/internal/config"
	"github.com/gatepad/gatepad/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates and configures the HTTP server for the gatepad web UI.
func NewServer(session *ops.Session, cfg *config.Config, version, bind string, port int) *http.Server {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		log.Fatalf("failed to create template sub-FS: %v", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to create static sub-FS: %v", err)
	}

	h := &Handlers{
		session:  session,
		cfg:      cfg,
		renderer: NewRenderer(templateSub, version),
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           requestLog(securityHeaders(h.routes(staticSub))),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// routes registers every UI route using Go 1.22+ pattern syntax.
func (h *Handlers) routes(static fs.FS) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/workspace", http.StatusFound)
	})
	mux.HandleFunc("GET /workspace", h.HandleWorkspace)
	mux.HandleFunc("GET /diagram.png", h.HandleDiagram("png"))
	mux.HandleFunc("GET /diagram.svg", h.HandleDiagram("svg"))

	mux.HandleFunc("POST /projects", h.HandleCreateProject)
	mux.HandleFunc("POST /projects/{id}/select", h.HandleSelectProject)
	mux.HandleFunc("DELETE /projects/{id}", h.HandleDeleteProject)
	mux.HandleFunc("POST /projects/{id}/delete", h.HandleDeleteProject)
	mux.HandleFunc("POST /projects/{id}/files", h.HandleCreateFile)
	mux.HandleFunc("POST /projects/{id}/files/{file}/select", h.HandleSelectFile)
	mux.HandleFunc("DELETE /projects/{id}/files/{file}", h.HandleDeleteFile)
	mux.HandleFunc("POST /projects/{id}/files/{file}/delete", h.HandleDeleteFile)

	mux.HandleFunc("POST /editor", h.HandleSetText)
	mux.HandleFunc("POST /save", h.HandleSave)
	mux.HandleFunc("POST /prefs", h.HandlePrefs)

	mux.HandleFunc("POST /analyze", h.HandleAnalyze)
	mux.HandleFunc("POST /debug", h.HandleDebug)
	mux.HandleFunc("POST /optimize", h.HandleOptimize)
	mux.HandleFunc("POST /simulate", h.HandleSimulate)
	mux.HandleFunc("POST /templates/{key}", h.HandleApplyTemplate)
	mux.HandleFunc("POST /chat", h.HandleChat)
	mux.HandleFunc("POST /upload", h.HandleUpload)

	mux.HandleFunc("GET /history", h.HandleHistory)
	mux.HandleFunc("POST /history", h.HandleAddHistory)
	mux.HandleFunc("POST /history/clear", h.HandleClearHistory)
	mux.HandleFunc("POST /history/{id}/load", h.HandleLoadHistory)
	mux.HandleFunc("DELETE /history/{id}", h.HandleDeleteHistory)
	mux.HandleFunc("POST /history/{id}/delete", h.HandleDeleteHistory)

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	return mux
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLog tags each request with an X-Request-Id (kept if the client
// sent one) and logs one access line when it completes.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[req] id=%s method=%s path=%s status=%d latency=%s",
			id, r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("gatepad UI running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
