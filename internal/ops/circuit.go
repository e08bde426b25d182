package ops

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gatepad/gatepad/internal/diagram"
	"github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/schematic"
	"github.com/gatepad/gatepad/internal/verilog"
)

// Image formats accepted by Render and Preview.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// ClassifyInput contains parameters for the Classify operation.
type ClassifyInput struct {
	Code string
}

// ClassifyOutput contains the result of the Classify operation.
type ClassifyOutput struct {
	Category    verilog.Category `json:"category"`
	DisplayName string           `json:"display_name"`
	Rule        int              `json:"rule"` // -1 when no rule matched
	HasTemplate bool             `json:"has_template"`
}

// Classify reports the circuit category of a piece of Verilog.
func Classify(input ClassifyInput) *ClassifyOutput {
	cat, rule := verilog.Explain(input.Code)
	return &ClassifyOutput{
		Category:    cat,
		DisplayName: cat.DisplayName(),
		Rule:        rule,
		HasTemplate: schematic.HasTemplate(cat),
	}
}

// LintInput contains parameters for the Lint operation.
type LintInput struct {
	Code string
}

// LintOutput contains the result of the Lint operation.
type LintOutput struct {
	Issues []verilog.LintIssue `json:"issues"`
	Clean  bool                `json:"clean"`
}

// Lint runs the assignment check over code.
func Lint(input LintInput) *LintOutput {
	issues := verilog.Lint(input.Code)
	if issues == nil {
		issues = []verilog.LintIssue{}
	}
	return &LintOutput{Issues: issues, Clean: len(issues) == 0}
}

// RenderInput contains parameters for the Render operation.
type RenderInput struct {
	Code   string
	Width  int    // default: config canvas width
	Height int    // default: config canvas height
	Format string // "png" (default) or "svg"
}

// RenderOutput is an encoded schematic image.
type RenderOutput struct {
	Category verilog.Category `json:"category"`
	Format   string           `json:"format"`
	MIMEType string           `json:"mime_type"`
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	Data     []byte           `json:"-"`
}

// Render classifies code and draws its schematic without touching any
// workspace. Sizes below the drawable minimum are raised to it.
func Render(input RenderInput, defaultWidth, defaultHeight int) (*RenderOutput, error) {
	format, err := parseFormat(input.Format)
	if err != nil {
		return nil, err
	}
	if err := checkSize(input.Width, input.Height); err != nil {
		return nil, err
	}
	width, height := input.Width, input.Height
	if width == 0 {
		width = defaultWidth
	}
	if height == 0 {
		height = defaultHeight
	}
	if err := checkSize(width, height); err != nil {
		return nil, err
	}

	cat, rec := diagram.Draw(input.Code, float64(width), float64(height))
	out, err := encode(rec, format)
	if err != nil {
		return nil, err
	}
	out.Category = cat
	return out, nil
}

// PreviewInput contains parameters for the Preview operation.
type PreviewInput struct {
	Format string
	Width  int // 0 keeps the current preview size
	Height int
}

// Preview encodes the session's live diagram. A new width or height resizes
// the preview, which redraws it.
func (s *Session) Preview(_ context.Context, input PreviewInput) (*RenderOutput, error) {
	format, err := parseFormat(input.Format)
	if err != nil {
		return nil, err
	}
	if err := checkSize(input.Width, input.Height); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Width > 0 || input.Height > 0 {
		w, h := s.preview.Size()
		if input.Width > 0 {
			w = float64(input.Width)
		}
		if input.Height > 0 {
			h = float64(input.Height)
		}
		s.preview.Resize(w, h)
	}

	var buf bytes.Buffer
	if format == FormatSVG {
		err = s.preview.WriteSVG(&buf)
	} else {
		err = s.preview.WritePNG(&buf)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	w, h := s.preview.Size()
	return &RenderOutput{
		Category: s.preview.Category(),
		Format:   format,
		MIMEType: mimeType(format),
		Width:    int(w),
		Height:   int(h),
		Data:     buf.Bytes(),
	}, nil
}

// checkSize rejects negative sizes and sizes above the largest canvas.
// Zero means "use the default" and passes.
func checkSize(width, height int) error {
	if width < 0 || height < 0 {
		return errors.NewInvalidRequest("width and height must not be negative")
	}
	if width > schematic.MaxWidth || height > schematic.MaxHeight {
		return errors.NewInvalidRequest(fmt.Sprintf("width and height must be at most %dx%d",
			schematic.MaxWidth, schematic.MaxHeight))
	}
	return nil
}

func encode(rec *schematic.Recorder, format string) (*RenderOutput, error) {
	var buf bytes.Buffer
	var err error
	if format == FormatSVG {
		err = diagram.EncodeSVG(&buf, rec)
	} else {
		err = diagram.EncodePNG(&buf, rec)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	w, h := rec.Size()
	return &RenderOutput{
		Format:   format,
		MIMEType: mimeType(format),
		Width:    int(w),
		Height:   int(h),
		Data:     buf.Bytes(),
	}, nil
}

func parseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", errors.NewInvalidRequest("format must be png or svg")
}

func mimeType(format string) string {
	if format == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}
