package backend

import "encoding/json"

// Issue is a syntax error or warning reported against a source line.
type Issue struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Suggestion is a teaching-oriented improvement hint.
type Suggestion struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	EducationalContext string `json:"educational_context,omitempty"`
}

// Optimization is one proposed optimization. The backend has used two
// field spellings over time, so both are accepted.
type Optimization struct {
	Optimization string `json:"optimization,omitempty"`
	Title        string `json:"title,omitempty"`
	Benefit      string `json:"benefit,omitempty"`
	Description  string `json:"description,omitempty"`
	Explanation  string `json:"explanation,omitempty"`
}

// Heading returns the optimization's name under either spelling.
func (o Optimization) Heading() string {
	if o.Optimization != "" {
		return o.Optimization
	}
	return o.Title
}

// Detail returns the benefit text under either spelling.
func (o Optimization) Detail() string {
	if o.Benefit != "" {
		return o.Benefit
	}
	return o.Description
}

// Fix is one step of a debugging walkthrough. Step is a number or a short
// label depending on the backend's prompt.
type Fix struct {
	Step        any    `json:"step"`
	Explanation string `json:"explanation"`
}

// Analysis is the result of analyze, debug and optimize with any waveform
// payload split off into a Waveform.
type Analysis struct {
	Success          bool           `json:"success"`
	Error            string         `json:"error,omitempty"`
	CodeQualityScore *float64       `json:"code_quality_score,omitempty"`
	SyntaxErrors     []Issue        `json:"syntax_errors,omitempty"`
	Warnings         []Issue        `json:"warnings,omitempty"`
	Suggestions      []Suggestion   `json:"suggestions,omitempty"`
	Optimizations    []Optimization `json:"optimizations,omitempty"`
	EducationalNotes []string       `json:"educational_notes,omitempty"`
	Explanation      string         `json:"explanation,omitempty"`
	Fixes            []Fix          `json:"fixes,omitempty"`
	OptimizedCode    string         `json:"optimized_code,omitempty"`
}

// Signal names one traced signal.
type Signal struct {
	Name      string `json:"name"`
	Direction string `json:"direction,omitempty"`
}

// Sample is one waveform row: a "time" entry plus one value per signal.
type Sample map[string]any

// Waveform is a normalized simulation result.
type Waveform struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Samples []Sample `json:"waveform_data"`
	Signals []Signal `json:"signals"`
	URL     string   `json:"waveform_url,omitempty"`
	Log     string   `json:"simulation_log,omitempty"`
}

// Template is a starter circuit offered by the backend.
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Code        string `json:"code"`
	Testbench   string `json:"testbench,omitempty"`
}

// UploadResult is the backend's reply to a file upload.
type UploadResult struct {
	URL      string    `json:"url,omitempty"`
	Analysis string    `json:"analysis,omitempty"`
	Waveform *Waveform `json:"waveform,omitempty"`
}

// waveformFields is the waveform payload shared by analyze and upload
// responses.
type waveformFields struct {
	WaveformData    []Sample         `json:"waveform_data"`
	Signals         []map[string]any `json:"signals"`
	WaveformURL     string           `json:"waveform_url"`
	SimulationLog   string           `json:"simulation_log"`
	SimulationError string           `json:"simulation_error"`
}

type analyzeResponse struct {
	Analysis
	waveformFields
}

type simulateResponse struct {
	Success       *bool            `json:"success"`
	Error         string           `json:"error"`
	WaveformData  []Sample         `json:"waveform_data"`
	Signals       []map[string]any `json:"signals"`
	WaveformURL   string           `json:"waveform_url"`
	WaveformFile  string           `json:"waveform_file"`
	Log           string           `json:"log"`
	SimulationLog string           `json:"simulation_log"`
}

type templatesResponse struct {
	Success   bool                `json:"success"`
	Error     string              `json:"error"`
	Templates map[string]Template `json:"templates"`
}

type uploadResponse struct {
	URL      string          `json:"url"`
	Analysis json.RawMessage `json:"analysis"`
	waveformFields
}

type chatResponse struct {
	Response string `json:"response"`
}
