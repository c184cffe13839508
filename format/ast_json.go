package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/lpc/lpc/parser"
)

type ASTJSONEncoder struct {
	w io.Writer
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(sf *parser.SourceFile) error {
	return write(e.w, e, sf)
}

func (e *ASTJSONEncoder) MarshalText(sf *parser.SourceFile) ([]byte, error) {
	lines := NewLineMap(sf.Text)
	doc := astJSONFile{
		File: sf.FileName,
		Root: nodeToJSON(sf.Root, lines),
	}
	for _, d := range sf.Diagnostics {
		doc.Diagnostics = append(doc.Diagnostics, diagnosticToJSON(d, lines))
	}
	text, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(text, '\n'), nil
}

type astJSONFile struct {
	File        string              `json:"file"`
	Diagnostics []astJSONDiagnostic `json:"diagnostics,omitempty"`
	Root        *astJSONNode        `json:"root"`
}

type astJSONNode struct {
	Kind     string         `json:"kind"`
	Span     astJSONSpan    `json:"span"`
	Token    string         `json:"token,omitempty"`
	Missing  bool           `json:"missing,omitempty"`
	Error    bool           `json:"error,omitempty"`
	Flags    string         `json:"flags,omitempty"`
	Children []*astJSONNode `json:"children,omitempty"`
}

type astJSONSpan struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type astJSONDiagnostic struct {
	Code     string              `json:"code"`
	Category string              `json:"category"`
	Message  string              `json:"message"`
	Span     astJSONSpan         `json:"span"`
	Related  []astJSONDiagnostic `json:"related,omitempty"`
}

func spanToJSON(start, end int, lines *LineMap) astJSONSpan {
	return astJSONSpan{Start: lines.Position(start), End: lines.Position(end)}
}

func nodeToJSON(n *parser.Node, lines *LineMap) *astJSONNode {
	if n == nil {
		return nil
	}

	jn := &astJSONNode{
		Kind:    n.Kind.String(),
		Span:    spanToJSON(n.Start, n.End, lines),
		Missing: n.IsMissing(),
		Error:   n.Has(parser.NodeFlagThisNodeHasError),
		Flags:   (n.Flags &^ (parser.NodeFlagMissing | parser.NodeFlagThisNodeHasError)).String(),
	}

	if n.Token != nil && !n.IsMissing() {
		jn.Token = n.Token.Value
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*astJSONNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = nodeToJSON(child, lines)
		}
	}

	return jn
}

func diagnosticToJSON(d parser.Diagnostic, lines *LineMap) astJSONDiagnostic {
	jd := astJSONDiagnostic{
		Code:     d.Message.String(),
		Category: d.Category().String(),
		Message:  d.Text(),
		Span:     spanToJSON(d.Start, d.End(), lines),
	}
	for _, r := range d.Related {
		jd.Related = append(jd.Related, diagnosticToJSON(r, lines))
	}
	return jd
}
