package diag

import (
	"fmt"
	"strings"

	"glfuzz/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// Format renders d as "path:line:col: SEVERITY CODE: message" followed by
// one indented line per note.
func Format(fs *source.FileSet, d Diagnostic) string {
	var sb strings.Builder
	sb.WriteString(position(fs, d.Primary))
	fmt.Fprintf(&sb, ": %s %s: %s", d.Severity, d.Code, d.Message)
	for _, n := range d.Notes {
		fmt.Fprintf(&sb, "\n    %s: note: %s", position(fs, n.Span), n.Msg)
	}
	return sb.String()
}

func position(fs *source.FileSet, sp source.Span) string {
	if fs == nil {
		return sp.String()
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", fs.Get(sp.File).Path, start.Line, start.Col)
}
