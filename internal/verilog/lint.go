package verilog

import (
	"fmt"
	"strings"
)

// LintIssue is one finding from Lint. Line is 1-based.
type LintIssue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// String renders the issue the way the editor displays it.
func (i LintIssue) String() string {
	return fmt.Sprintf("Line %d: %s", i.Line, i.Message)
}

// skipPrefixes are line starts that never carry a checkable statement.
var skipPrefixes = []string{"//", "/*", "$", "module", "endmodule"}

// Lint runs the best-effort statement check: every continuous assignment
// must end with a semicolon. Trailing // comments are ignored. It is not a
// parser and reports nothing else.
func Lint(code string) []LintIssue {
	var issues []LintIssue
	for i, raw := range strings.Split(code, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || line == "begin" || line == "end" || hasAnyPrefix(line, skipPrefixes) {
			continue
		}
		if !strings.HasPrefix(line, "assign") {
			continue
		}
		stmt := line
		if idx := strings.Index(stmt, "//"); idx >= 0 {
			stmt = stmt[:idx]
		}
		stmt = strings.TrimRight(stmt, " \t\r")
		if !strings.HasSuffix(stmt, ";") {
			issues = append(issues, LintIssue{Line: i + 1, Message: "Missing semicolon after assign"})
		}
	}
	return issues
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
