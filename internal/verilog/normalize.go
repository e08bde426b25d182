package verilog

import (
	"regexp"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Forms holds the three views of a source text that classifier rules match
// against. All three are lowercase.
type Forms struct {
	// Lower is the raw text lowercased.
	Lower string
	// Normalized collapses every whitespace run to a single space.
	Normalized string
	// Compact removes whitespace entirely.
	Compact string
}

// Prepare builds the matching forms for code.
func Prepare(code string) Forms {
	lower := strings.ToLower(code)
	return Forms{
		Lower:      lower,
		Normalized: whitespaceRegex.ReplaceAllString(lower, " "),
		Compact:    whitespaceRegex.ReplaceAllString(lower, ""),
	}
}

// Contains reports whether the lowercased text contains any of subs.
func (f Forms) Contains(subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(f.Lower, s) {
			return true
		}
	}
	return false
}

// HasModule reports whether a "module <name>" declaration appears.
func (f Forms) HasModule(name string) bool {
	return strings.Contains(f.Normalized, "module "+name)
}

// HasExpr reports whether expr appears in the whitespace-collapsed text.
func (f Forms) HasExpr(expr string) bool {
	return strings.Contains(f.Normalized, expr)
}

// HasExprCompact reports whether expr, with its whitespace removed, appears
// in the whitespace-free text.
func (f Forms) HasExprCompact(expr string) bool {
	return strings.Contains(f.Compact, whitespaceRegex.ReplaceAllString(expr, ""))
}
