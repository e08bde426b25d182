package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultSimulationError is reported when a failed simulation carries no
// message of its own.
const DefaultSimulationError = "Simulation failed. Please check your code."

// normalizeSignals gives every signal a usable name. Entries without a
// non-blank string name become signal_<index>.
func normalizeSignals(raw []map[string]any) []Signal {
	out := make([]Signal, 0, len(raw))
	for i, rec := range raw {
		name, _ := rec["name"].(string)
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("signal_%d", i)
		}
		dir, _ := rec["direction"].(string)
		out = append(out, Signal{Name: name, Direction: dir})
	}
	return out
}

func samplesOrEmpty(s []Sample) []Sample {
	if s == nil {
		return []Sample{}
	}
	return s
}

// waveform converts an analyze or upload payload. A simulation error marks
// the result failed.
func (w waveformFields) waveform() *Waveform {
	return &Waveform{
		Success: w.SimulationError == "",
		Error:   w.SimulationError,
		Samples: samplesOrEmpty(w.WaveformData),
		Signals: normalizeSignals(w.Signals),
		URL:     w.WaveformURL,
		Log:     w.SimulationLog,
	}
}

// waveform converts a simulate response. waveform_file and log are older
// spellings of waveform_url and simulation_log.
func (r simulateResponse) waveform() *Waveform {
	w := &Waveform{
		Success: true,
		Samples: samplesOrEmpty(r.WaveformData),
		Signals: normalizeSignals(r.Signals),
		URL:     firstNonEmpty(r.WaveformURL, r.WaveformFile),
		Log:     firstNonEmpty(r.Log, r.SimulationLog),
	}
	if r.Success != nil && !*r.Success {
		w.Success = false
		w.Error = firstNonEmpty(r.Error, DefaultSimulationError)
		w.Samples = []Sample{}
	}
	return w
}

// FailedWaveform is the result recorded when a simulation request could not
// be completed at all.
func FailedWaveform() *Waveform {
	return &Waveform{
		Success: false,
		Error:   DefaultSimulationError,
		Samples: []Sample{},
		Signals: []Signal{},
	}
}

// analysisText flattens the upload "analysis" field, which is usually a
// string but may be any JSON value.
func analysisText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
