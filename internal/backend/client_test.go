package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBackend serves canned JSON per path and records the last request
// body for each.
type fakeBackend struct {
	replies map[string]string
	status  map[string]int
	bodies  map[string]map[string]any
	headers map[string]http.Header
}

func newFakeBackend(t *testing.T) (*fakeBackend, *Client) {
	t.Helper()
	fb := &fakeBackend{
		replies: map[string]string{},
		status:  map[string]int{},
		bodies:  map[string]map[string]any{},
		headers: map[string]http.Header{},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.headers[r.URL.Path] = r.Header.Clone()
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			fb.bodies[r.URL.Path] = body
		}
		if code, ok := fb.status[r.URL.Path]; ok {
			w.WriteHeader(code)
		}
		_, _ = io.WriteString(w, fb.replies[r.URL.Path])
	}))
	t.Cleanup(srv.Close)
	return fb, NewClient(srv.URL+"/", 5*time.Second)
}

func TestAnalyze_SplitsWaveform(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.replies["/api/analyze"] = `{
		"success": true,
		"code_quality_score": 82,
		"syntax_errors": [{"message": "missing ;", "line": 3}],
		"optimizations": [{"title": "Share adder", "description": "fewer cells"}],
		"educational_notes": ["Use **non-blocking** assignments"],
		"waveform_data": [{"time": 0, "a": "0"}, {"time": 10, "a": "1"}],
		"signals": [{"name": "a", "direction": "input"}, {"direction": "output"}],
		"waveform_url": "/waves/1.vcd"
	}`

	a, w, err := c.Analyze(context.Background(), "module m; endmodule")
	require.NoError(t, err)

	require.True(t, a.Success)
	require.NotNil(t, a.CodeQualityScore)
	require.Equal(t, 82.0, *a.CodeQualityScore)
	require.Equal(t, []Issue{{Message: "missing ;", Line: 3}}, a.SyntaxErrors)
	require.Equal(t, "Share adder", a.Optimizations[0].Heading())
	require.Equal(t, "fewer cells", a.Optimizations[0].Detail())

	require.True(t, w.Success)
	require.Len(t, w.Samples, 2)
	require.Equal(t, []Signal{{Name: "a", Direction: "input"}, {Name: "signal_1", Direction: "output"}}, w.Signals)
	require.Equal(t, "/waves/1.vcd", w.URL)

	require.Equal(t, "module m; endmodule", fb.bodies["/api/analyze"]["code"])
	require.NotEmpty(t, fb.headers["/api/analyze"].Get("X-Request-Id"))
}

func TestAnalyze_SimulationErrorMarksWaveformFailed(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.replies["/api/analyze"] = `{"success": true, "simulation_error": "iverilog: syntax error"}`

	_, w, err := c.Analyze(context.Background(), "x")
	require.NoError(t, err)
	require.False(t, w.Success)
	require.Equal(t, "iverilog: syntax error", w.Error)
	require.Empty(t, w.Samples)
	require.NotNil(t, w.Samples)
}

func TestDebug_SendsErrorMessage(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.replies["/api/debug"] = `{"success": true, "explanation": "a typo", "fixes": [{"step": 1, "explanation": "add ;"}]}`

	a, err := c.Debug(context.Background(), "code", "line 3")
	require.NoError(t, err)
	require.Equal(t, "a typo", a.Explanation)
	require.Len(t, a.Fixes, 1)
	require.Equal(t, "line 3", fb.bodies["/api/debug"]["error_message"])
}

func TestOptimize_DefaultGoals(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.replies["/api/optimize"] = `{"success": true, "optimized_code": "module m2; endmodule"}`

	a, err := c.Optimize(context.Background(), "code", nil)
	require.NoError(t, err)
	require.Equal(t, "module m2; endmodule", a.OptimizedCode)
	require.Equal(t, []any{"performance", "readability"}, fb.bodies["/api/optimize"]["goals"])

	_, err = c.Optimize(context.Background(), "code", []string{"area"})
	require.NoError(t, err)
	require.Equal(t, []any{"area"}, fb.bodies["/api/optimize"]["goals"])
}

func TestSimulate_Normalization(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Waveform
	}{
		{
			name:  "legacy field names",
			reply: `{"success": true, "waveform_data": [{"time": 0}], "signals": [{"name": "  "}], "waveform_file": "w.vcd", "log": "ok"}`,
			want: Waveform{
				Success: true,
				Samples: []Sample{{"time": 0.0}},
				Signals: []Signal{{Name: "signal_0"}},
				URL:     "w.vcd",
				Log:     "ok",
			},
		},
		{
			name:  "failure without message",
			reply: `{"success": false, "waveform_data": [{"time": 0}], "simulation_log": "boom"}`,
			want: Waveform{
				Success: false,
				Error:   DefaultSimulationError,
				Samples: []Sample{},
				Signals: []Signal{},
				Log:     "boom",
			},
		},
		{
			name:  "failure with message",
			reply: `{"success": false, "error": "no testbench"}`,
			want: Waveform{
				Success: false,
				Error:   "no testbench",
				Samples: []Sample{},
				Signals: []Signal{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, c := newFakeBackend(t)
			fb.replies["/api/simulate"] = tt.reply

			w, err := c.Simulate(context.Background(), "code", "tb")
			require.NoError(t, err)
			require.Equal(t, &tt.want, w)
			require.Equal(t, "tb", fb.bodies["/api/simulate"]["testbench"])
		})
	}
}

func TestTemplates(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.replies["/api/templates"] = `{"success": true, "templates": {"and_gate": {"name": "AND Gate", "description": "2-input AND", "code": "module and_gate; endmodule", "testbench": "module tb; endmodule"}}}`

	got, err := c.Templates(context.Background())
	require.NoError(t, err)
	require.Equal(t, "AND Gate", got["and_gate"].Name)
	require.Equal(t, "module tb; endmodule", got["and_gate"].Testbench)

	fb.replies["/api/templates"] = `{"success": false, "error": "templates unavailable"}`
	_, err = c.Templates(context.Background())
	require.ErrorContains(t, err, "templates unavailable")
}

func TestChat_TrimsReply(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.replies["/api/chat"] = `{"response": "  A latch is level sensitive.\n"}`

	got, err := c.Chat(context.Background(), "what is a latch?")
	require.NoError(t, err)
	require.Equal(t, "A latch is level sensitive.", got)
	require.Equal(t, "what is a latch?", fb.bodies["/api/chat"]["message"])
}

func TestUpload(t *testing.T) {
	var gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err == nil {
			gotName = hdr.Filename
			data, _ := io.ReadAll(f)
			gotBody = string(data)
		}
		_, _ = io.WriteString(w, `{"url": "/files/adder.v", "analysis": {"score": 7}, "signals": [{"name": "sum"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	res, err := c.Upload(context.Background(), "adder.v", strings.NewReader("module adder; endmodule"))
	require.NoError(t, err)

	require.Equal(t, "adder.v", gotName)
	require.Equal(t, "module adder; endmodule", gotBody)
	require.Equal(t, "/files/adder.v", res.URL)
	require.Equal(t, `{"score":7}`, res.Analysis)
	require.NotNil(t, res.Waveform)
	require.Equal(t, "sum", res.Waveform.Signals[0].Name)
}

func TestUpload_NoWaveform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"analysis": "looks fine"}`)
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, 5*time.Second).Upload(context.Background(), "x.v", strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, "looks fine", res.Analysis)
	require.Nil(t, res.Waveform)
}

func TestErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		fb, c := newFakeBackend(t)
		fb.status["/api/analyze"] = http.StatusInternalServerError
		fb.replies["/api/analyze"] = `{"error": "model offline"}`

		_, _, err := c.Analyze(context.Background(), "x")
		require.ErrorContains(t, err, "status 500")
	})

	t.Run("malformed body", func(t *testing.T) {
		fb, c := newFakeBackend(t)
		fb.replies["/api/debug"] = `not json`

		_, err := c.Debug(context.Background(), "x", "")
		require.ErrorContains(t, err, "decode /api/debug response")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(url, time.Second).Chat(context.Background(), "hi")
		require.ErrorContains(t, err, "/api/chat request failed")
	})
}

func TestFailedWaveform(t *testing.T) {
	w := FailedWaveform()
	require.False(t, w.Success)
	require.Equal(t, "Simulation failed. Please check your code.", w.Error)
}
