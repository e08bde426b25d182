// Package backend is the HTTP client for the analysis and simulation
// service behind /api.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultGoals are the optimization goals sent when the caller names none.
var DefaultGoals = []string{"performance", "readability"}

// Client talks to the backend service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL. Every request is
// bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Analyze requests a full analysis of code. Any waveform the backend ran
// alongside is returned separately.
func (c *Client) Analyze(ctx context.Context, code string) (*Analysis, *Waveform, error) {
	var resp analyzeResponse
	if err := c.postJSON(ctx, "/api/analyze", map[string]any{"code": code}, &resp); err != nil {
		return nil, nil, err
	}
	a := resp.Analysis
	return &a, resp.waveform(), nil
}

// Debug asks the backend to explain and fix errorMessage in code.
func (c *Client) Debug(ctx context.Context, code, errorMessage string) (*Analysis, error) {
	var resp Analysis
	body := map[string]any{"code": code, "error_message": errorMessage}
	if err := c.postJSON(ctx, "/api/debug", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Optimize asks for optimizations toward goals, or DefaultGoals if empty.
func (c *Client) Optimize(ctx context.Context, code string, goals []string) (*Analysis, error) {
	if len(goals) == 0 {
		goals = DefaultGoals
	}
	var resp Analysis
	if err := c.postJSON(ctx, "/api/optimize", map[string]any{"code": code, "goals": goals}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Simulate runs code against testbench. A simulation that ran but failed is
// a successful call returning a Waveform with Success false.
func (c *Client) Simulate(ctx context.Context, code, testbench string) (*Waveform, error) {
	var resp simulateResponse
	body := map[string]any{"code": code, "testbench": testbench}
	if err := c.postJSON(ctx, "/api/simulate", body, &resp); err != nil {
		return nil, err
	}
	return resp.waveform(), nil
}

// Templates lists the starter circuits keyed by template id.
func (c *Client) Templates(ctx context.Context) (map[string]Template, error) {
	var resp templatesResponse
	if err := c.do(ctx, http.MethodGet, "/api/templates", nil, "", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("/api/templates: %s", firstNonEmpty(resp.Error, "request unsuccessful"))
	}
	if resp.Templates == nil {
		resp.Templates = map[string]Template{}
	}
	return resp.Templates, nil
}

// Chat sends one message to the assistant and returns its trimmed reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var resp chatResponse
	if err := c.postJSON(ctx, "/api/chat", map[string]any{"message": message}, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}

// Upload sends a file as multipart field "file".
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var resp uploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/upload", &body, mw.FormDataContentType(), &resp); err != nil {
		return nil, err
	}

	out := &UploadResult{URL: resp.URL, Analysis: analysisText(resp.Analysis)}
	if resp.hasWaveform() {
		out.Waveform = resp.waveform()
	}
	return out, nil
}

func (w waveformFields) hasWaveform() bool {
	return len(w.WaveformData) > 0 || len(w.Signals) > 0 ||
		w.WaveformURL != "" || w.SimulationLog != "" || w.SimulationError != ""
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(data), "application/json", out)
}

// do issues one request and decodes a JSON reply into out. Non-2xx
// statuses are errors.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	start := time.Now()
	reqID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[backend] id=%s %s %s error=%v", reqID, method, path, err)
		return fmt.Errorf("%s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	log.Printf("[backend] id=%s %s %s status=%d latency=%s", reqID, method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
