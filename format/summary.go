package format

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/dhamidi/lpc/lpc/parser"
)

// SummaryEncoder writes an outline of a file: its inherits, declarations,
// macros, includes and diagnostics.
type SummaryEncoder struct {
	w io.Writer
}

func NewSummaryEncoder(w io.Writer) *SummaryEncoder {
	return &SummaryEncoder{w: w}
}

func (e *SummaryEncoder) Encode(sf *parser.SourceFile) error {
	return write(e.w, e, sf)
}

func (e *SummaryEncoder) MarshalText(sf *parser.SourceFile) ([]byte, error) {
	text, err := json.MarshalIndent(Summarize(sf), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(text, '\n'), nil
}

type Summary struct {
	File        string           `json:"file"`
	Driver      string           `json:"driver"`
	Header      bool             `json:"header,omitempty"`
	Nodes       int              `json:"nodes"`
	Identifiers int              `json:"identifiers"`
	Inherits    []string         `json:"inherits,omitempty"`
	Functions   []SummaryDecl    `json:"functions,omitempty"`
	Variables   []SummaryDecl    `json:"variables,omitempty"`
	Structs     []SummaryDecl    `json:"structs,omitempty"`
	Macros      []SummaryMacro   `json:"macros,omitempty"`
	Includes    []SummaryInclude `json:"includes,omitempty"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
}

type SummaryDecl struct {
	Name string   `json:"name"`
	At   Position `json:"at"`
}

type SummaryMacro struct {
	Name       string    `json:"name"`
	Parameters []string  `json:"parameters,omitempty"`
	Body       string    `json:"body,omitempty"`
	Predefined bool      `json:"predefined,omitempty"`
	At         *Position `json:"at,omitempty"`
}

type SummaryInclude struct {
	Path     string   `json:"path"`
	System   bool     `json:"system,omitempty"`
	Resolved string   `json:"resolved,omitempty"`
	At       Position `json:"at"`
}

// Summarize collects the top-level outline of sf.
func Summarize(sf *parser.SourceFile) *Summary {
	lines := NewLineMap(sf.Text)
	s := &Summary{
		File:        sf.FileName,
		Driver:      sf.LanguageVersion.String(),
		Header:      sf.ScriptKind == parser.ScriptKindHeader,
		Nodes:       sf.NodeCount,
		Identifiers: sf.IdentifierCount,
	}

	decl := func(n *parser.Node) SummaryDecl {
		name := n.FirstChildOfKind(parser.KindIdentifier)
		if name == nil || name.IsMissing() {
			return SummaryDecl{At: lines.Position(n.Start)}
		}
		return SummaryDecl{Name: name.TokenLiteral(), At: lines.Position(name.Start)}
	}

	for _, stmt := range sf.Statements() {
		switch stmt.Kind {
		case parser.KindInheritDeclaration:
			if path := inheritPath(stmt); path != "" {
				s.Inherits = append(s.Inherits, path)
			}
		case parser.KindFunctionDeclaration:
			s.Functions = append(s.Functions, decl(stmt))
		case parser.KindStructDeclaration:
			s.Structs = append(s.Structs, decl(stmt))
		case parser.KindVariableStatement:
			parser.Walk(stmt, func(n *parser.Node) bool {
				if n.Kind != parser.KindVariableDeclaration {
					return true
				}
				s.Variables = append(s.Variables, decl(n))
				return false
			})
		}
	}

	for _, name := range sf.Macros.Names() {
		m, _ := sf.Macros.Lookup(name)
		sm := SummaryMacro{
			Name:       m.Name,
			Parameters: m.Parameters,
			Body:       m.Body,
			Predefined: m.Predefined,
		}
		if m.Node != nil {
			pos := lines.Position(m.Node.Start)
			sm.At = &pos
		}
		s.Macros = append(s.Macros, sm)
	}

	for _, inc := range sf.IncludeFiles {
		s.Includes = append(s.Includes, SummaryInclude{
			Path:     inc.Path,
			System:   inc.System,
			Resolved: inc.Resolved,
			At:       lines.Position(inc.Start),
		})
	}

	for _, d := range sf.Diagnostics {
		switch d.Category() {
		case parser.CategoryError:
			s.Errors++
		case parser.CategoryWarning:
			s.Warnings++
		}
	}

	return s
}

// inheritPath joins the string literals of an inherit declaration.
func inheritPath(n *parser.Node) string {
	var b strings.Builder
	for _, leaf := range parser.Leaves(n) {
		v := leaf.TokenLiteral()
		if leaf.IsMissing() || len(v) < 2 || v[0] != '"' {
			continue
		}
		b.WriteString(v[1 : len(v)-1])
	}
	return b.String()
}
