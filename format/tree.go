package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/lpc/lpc/parser"
)

// TreeEncoder writes one node per line, indented by depth, with
// line:column ranges.
type TreeEncoder struct {
	w io.Writer
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(sf *parser.SourceFile) error {
	return write(e.w, e, sf)
}

func (e *TreeEncoder) MarshalText(sf *parser.SourceFile) ([]byte, error) {
	var b strings.Builder
	lines := NewLineMap(sf.Text)
	if sf.Root != nil {
		writeTree(&b, sf.Root, lines, 0)
	}
	for _, d := range sf.Diagnostics {
		pos := lines.Position(d.Start)
		fmt.Fprintf(&b, "%d:%d: %s %s: %s\n", pos.Line, pos.Column, d.Category(), d.Message, d.Text())
	}
	return []byte(b.String()), nil
}

func writeTree(b *strings.Builder, n *parser.Node, lines *LineMap, depth int) {
	start, end := lines.Position(n.Start), lines.Position(n.End)
	fmt.Fprintf(b, "%s%s %d:%d-%d:%d", strings.Repeat("  ", depth), n.Kind, start.Line, start.Column, end.Line, end.Column)
	switch {
	case n.IsMissing():
		fmt.Fprintf(b, " <missing %s>", n.TokenKind())
	case n.Token != nil:
		fmt.Fprintf(b, " %q", n.Token.Value)
	}
	if n.Has(parser.NodeFlagThisNodeHasError) {
		b.WriteString(" !")
	}
	b.WriteString("\n")

	for _, child := range n.Children {
		writeTree(b, child, lines, depth+1)
	}
}
