package ops

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/gatepad/gatepad/internal/backend"
	"github.com/gatepad/gatepad/internal/errors"
)

// Messages recorded or returned when the backend cannot be reached.
const (
	AnalyzeFailedMessage = "Failed to analyze code. Please check your connection."
	ChatFailedMessage    = "I could not reach the AI service. Check the backend server and API key configuration."
	ChatEmptyMessage     = "I did not receive a reply from the assistant. Please try again in a moment."
)

// fallbackTemplates are offered when the backend's template list is
// unavailable.
var fallbackTemplates = map[string]backend.Template{
	"full_adder": {
		Name:        "Full Adder",
		Description: "Basic combinational circuit",
		Code: `module full_adder(
    input a, b, cin,
    output sum, cout
);
    assign sum = a ^ b ^ cin;
    assign cout = (a & b) | (b & cin) | (a & cin);
endmodule`,
	},
}

// CodeInput selects the source sent to the backend.
type CodeInput struct {
	Code *string // default: the editor text
}

// AnalysisOutput contains the result of Analyze, Debug and Optimize.
type AnalysisOutput struct {
	Analysis *backend.Analysis `json:"analysis"`
	Waveform *backend.Waveform `json:"waveform,omitempty"`
}

// Analyze asks the backend to review the code. The analysis and any
// waveform become the session's results. A backend failure is recorded as a
// failed analysis rather than returned as an error.
func (s *Session) Analyze(ctx context.Context, input CodeInput) (*AnalysisOutput, error) {
	code, err := s.code(input.Code)
	if err != nil {
		return nil, err
	}

	analysis, wave, err := s.backend.Analyze(ctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		log.Printf("Warning: analyze failed: %v", err)
		analysis = &backend.Analysis{Success: false, Error: AnalyzeFailedMessage}
		s.ws.SetAnalysis(analysis)
		return &AnalysisOutput{Analysis: analysis}, nil
	}
	s.ws.SetAnalysis(analysis)
	s.ws.SetWaveform(wave)
	return &AnalysisOutput{Analysis: analysis, Waveform: wave}, nil
}

// DebugInput contains parameters for the Debug operation.
type DebugInput struct {
	CodeInput
	ErrorMessage string
}

// Debug asks the backend for a fix walkthrough.
func (s *Session) Debug(ctx context.Context, input DebugInput) (*AnalysisOutput, error) {
	code, err := s.code(input.Code)
	if err != nil {
		return nil, err
	}

	analysis, err := s.backend.Debug(ctx, code, input.ErrorMessage)
	if err != nil {
		log.Printf("Warning: debug failed: %v", err)
		return nil, errors.NewBackendUnavailable("/api/debug", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.SetAnalysis(analysis)
	return &AnalysisOutput{Analysis: analysis}, nil
}

// OptimizeInput contains parameters for the Optimize operation.
type OptimizeInput struct {
	CodeInput
	Goals []string // default: performance, readability
}

// Optimize asks the backend for optimization proposals.
func (s *Session) Optimize(ctx context.Context, input OptimizeInput) (*AnalysisOutput, error) {
	code, err := s.code(input.Code)
	if err != nil {
		return nil, err
	}

	analysis, err := s.backend.Optimize(ctx, code, input.Goals)
	if err != nil {
		log.Printf("Warning: optimize failed: %v", err)
		return nil, errors.NewBackendUnavailable("/api/optimize", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.SetAnalysis(analysis)
	return &AnalysisOutput{Analysis: analysis}, nil
}

// SimulateInput contains parameters for the Simulate operation.
type SimulateInput struct {
	CodeInput
	Testbench *string // default: the testbench of the last applied template
}

// Simulate runs the code on the backend simulator. The normalized waveform
// becomes the session's waveform result; a backend failure is recorded as
// a failed waveform.
func (s *Session) Simulate(ctx context.Context, input SimulateInput) (*backend.Waveform, error) {
	code, err := s.code(input.Code)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	bench := s.ws.Testbench()
	s.mu.Unlock()
	if input.Testbench != nil {
		bench = *input.Testbench
	}

	wave, err := s.backend.Simulate(ctx, code, bench)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		log.Printf("Warning: simulate failed: %v", err)
		wave = backend.FailedWaveform()
	}
	s.ws.SetWaveform(wave)
	return wave, nil
}

// TemplateItem is one starter template.
type TemplateItem struct {
	Key string `json:"key"`
	backend.Template
}

// TemplatesOutput contains the result of the Templates operation.
type TemplatesOutput struct {
	Templates []TemplateItem `json:"templates"`
	Fallback  bool           `json:"fallback"`
}

// Templates lists the backend's starter templates sorted by key. When the
// backend is unavailable a built-in set is returned with Fallback set.
func (s *Session) Templates(ctx context.Context) *TemplatesOutput {
	templates, err := s.backend.Templates(ctx)
	fallback := false
	if err != nil {
		log.Printf("Warning: templates unavailable, using built-in set: %v", err)
		templates, fallback = fallbackTemplates, true
	}

	items := make([]TemplateItem, 0, len(templates))
	for key, t := range templates {
		items = append(items, TemplateItem{Key: key, Template: t})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return &TemplatesOutput{Templates: items, Fallback: fallback}
}

// ApplyTemplateInput contains parameters for the ApplyTemplate operation.
type ApplyTemplateInput struct {
	Key string
}

// ApplyTemplate loads a template's code into the editor and keeps its
// testbench for Simulate. Results are cleared and an active file receives
// the code.
func (s *Session) ApplyTemplate(ctx context.Context, input ApplyTemplateInput) (*EditorOutput, error) {
	key := strings.TrimSpace(input.Key)
	if key == "" {
		return nil, errors.NewInvalidRequest("template key is required")
	}

	var tmpl *backend.Template
	for _, item := range s.Templates(ctx).Templates {
		if item.Key == key {
			tmpl = &item.Template
			break
		}
	}
	if tmpl == nil {
		return nil, errors.NewNotFound("template", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.ApplyTemplate(tmpl.Code, tmpl.Testbench)
	return s.editor(), nil
}

// ChatInput contains parameters for the Chat operation.
type ChatInput struct {
	Message string
}

// ChatOutput is the assistant's reply. OK is false when the reply is a
// fallback message.
type ChatOutput struct {
	Reply string `json:"reply"`
	OK    bool   `json:"ok"`
}

// Chat sends one message to the assistant.
func (s *Session) Chat(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, errors.NewInvalidRequest("message is empty")
	}

	reply, err := s.backend.Chat(ctx, input.Message)
	if err != nil {
		log.Printf("Warning: chat failed: %v", err)
		return &ChatOutput{Reply: ChatFailedMessage}, nil
	}
	if reply == "" {
		return &ChatOutput{Reply: ChatEmptyMessage}, nil
	}
	return &ChatOutput{Reply: reply, OK: true}, nil
}

// UploadInput contains parameters for the Upload operation.
type UploadInput struct {
	Filename string
	Body     io.Reader
}

// UploadOutput summarizes an upload. A waveform in the reply becomes the
// session's waveform result.
type UploadOutput struct {
	Summary  string            `json:"summary"`
	URL      string            `json:"url,omitempty"`
	Waveform *backend.Waveform `json:"waveform,omitempty"`
	OK       bool              `json:"ok"`
}

// Upload sends a file to the backend.
func (s *Session) Upload(ctx context.Context, input UploadInput) (*UploadOutput, error) {
	name := strings.TrimSpace(input.Filename)
	if name == "" || input.Body == nil {
		return nil, errors.NewInvalidRequest("file is required")
	}

	res, err := s.backend.Upload(ctx, name, input.Body)
	if err != nil {
		log.Printf("Warning: upload failed: %v", err)
		return &UploadOutput{Summary: fmt.Sprintf("I couldn't upload %s. Please try again.", name)}, nil
	}

	out := &UploadOutput{URL: res.URL, Waveform: res.Waveform, OK: true}
	switch {
	case res.Analysis != "":
		out.Summary = res.Analysis
	case res.URL != "":
		out.Summary = fmt.Sprintf("I received %s. You can download it anytime from %s", name, res.URL)
	default:
		out.Summary = fmt.Sprintf("%s uploaded successfully.", name)
	}

	if res.Waveform != nil {
		s.mu.Lock()
		s.ws.SetWaveform(res.Waveform)
		s.mu.Unlock()
	}
	return out, nil
}

// code returns the source for a backend call, rejecting blank text.
func (s *Session) code(override *string) (string, error) {
	s.mu.Lock()
	code := s.ws.Text()
	s.mu.Unlock()
	if override != nil {
		code = *override
	}
	if err := requireCode(code); err != nil {
		return "", err
	}
	return code, nil
}
