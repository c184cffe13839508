package format

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/dhamidi/lpc/lpc/parser"
)

// Styles renders diagnostics for a terminal.
type Styles struct {
	Error      lipgloss.Style
	Warning    lipgloss.Style
	Info       lipgloss.Style
	FilePath   lipgloss.Style
	Location   lipgloss.Style
	Code       lipgloss.Style
	Message    lipgloss.Style
	SourceLine lipgloss.Style
	Caret      lipgloss.Style
	Success    lipgloss.Style
	Failure    lipgloss.Style
	Dim        lipgloss.Style
}

func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &Styles{
			Error:      plain,
			Warning:    plain,
			Info:       plain,
			FilePath:   plain,
			Location:   plain,
			Code:       plain,
			Message:    plain,
			SourceLine: plain,
			Caret:      plain,
			Success:    plain,
			Failure:    plain,
			Dim:        plain,
		}
	}
	return &Styles{
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Info:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		FilePath:   lipgloss.NewStyle().Bold(true),
		Location:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Code:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Message:    lipgloss.NewStyle(),
		SourceLine: lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Caret:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Success:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Failure:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// IsColorEnabled decides whether to colour output written to writer.
// Mode is "auto", "always" or "never"; auto colours terminals unless
// NO_COLOR is set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

// FormatDiagnostic renders one diagnostic as
//
//	path:line:col  severity  message  (LPCnnnn)
//
// optionally followed by the source line with the span underlined, and
// by any related locations.
func (s *Styles) FormatDiagnostic(path string, lines *LineMap, d parser.Diagnostic, showContext bool) string {
	var b strings.Builder

	pos := lines.Position(d.Start)
	fmt.Fprintf(&b, "  %s%s  %s  %s  %s\n",
		s.FilePath.Render(path),
		s.Location.Render(fmt.Sprintf(":%d:%d", pos.Line, pos.Column)),
		s.FormatCategory(d.Category()),
		s.Message.Render(d.Text()),
		s.Code.Render("("+d.Message.String()+")"),
	)

	if showContext {
		b.WriteString(s.FormatSourceContext(lines, d.Start, d.Length))
	}

	for _, r := range d.Related {
		rpos := lines.Position(r.Start)
		fmt.Fprintf(&b, "    %s %s  %s\n",
			s.Dim.Render("related:"),
			s.Location.Render(fmt.Sprintf("%s:%d:%d", path, rpos.Line, rpos.Column)),
			s.Message.Render(r.Text()),
		)
	}

	return b.String()
}

func (s *Styles) FormatCategory(c parser.Category) string {
	switch c {
	case parser.CategoryError:
		return s.Error.Render("error")
	case parser.CategoryWarning:
		return s.Warning.Render("warning")
	default:
		return s.Info.Render(c.String())
	}
}

// FormatSourceContext prints the line containing start and underlines up to
// length characters of it.
func (s *Styles) FormatSourceContext(lines *LineMap, start, length int) string {
	const indent = "        "

	pos := lines.Position(start)
	line := lines.LineText(pos.Line)
	if strings.TrimSpace(line) == "" {
		return ""
	}

	prefix := expandTabs(line[:min(len(line), byteColumn(line, pos.Column))])
	width := 1
	if length > 0 {
		end := lines.Position(start + length)
		if end.Line == pos.Line {
			width = max(1, end.Column-pos.Column)
		} else {
			width = max(1, utf8.RuneCountInString(line)-pos.Column+1)
		}
	}

	var b strings.Builder
	b.WriteString(indent + s.SourceLine.Render(expandTabs(line)) + "\n")
	b.WriteString(indent + strings.Repeat(" ", utf8.RuneCountInString(prefix)) + s.Caret.Render(strings.Repeat("^", width)) + "\n")
	return b.String()
}

// FormatFileHeader formats a file name with its problem count.
func (s *Styles) FormatFileHeader(path string, count int) string {
	header := s.FilePath.Render(path)
	if count == 1 {
		header += s.Dim.Render(" (1 problem)")
	} else if count > 1 {
		header += s.Dim.Render(fmt.Sprintf(" (%d problems)", count))
	}
	return header
}

// FormatSummary formats the closing line of a check run.
func (s *Styles) FormatSummary(files, errors, warnings int) string {
	text := fmt.Sprintf("%d files checked, %d errors, %d warnings", files, errors, warnings)
	if errors > 0 {
		return s.Failure.Render(text)
	}
	return s.Success.Render(text)
}

// byteColumn converts a 1-based character column to a byte index into line.
func byteColumn(line string, column int) int {
	i := 0
	for n := 1; n < column && i < len(line); n++ {
		_, size := utf8.DecodeRuneInString(line[i:])
		i += size
	}
	return i
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
