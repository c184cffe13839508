package parser

import (
	"fmt"
	"strings"

	"github.com/dhamidi/lpc/lpc/scanner"
)

type NodeFlags uint32

const (
	// Context flags, stamped on every node finished while they are active.
	NodeFlagDisallowIn NodeFlags = 1 << iota
	NodeFlagInDirective

	NodeFlagThisNodeHasError
	NodeFlagContainsError
	NodeFlagMissing
	NodeFlagHasLeadingComment
	NodeFlagDeprecated
	NodeFlagMacroReference
	NodeFlagTrailingComma
	NodeFlagReused

	NodeFlagContextFlags = NodeFlagDisallowIn | NodeFlagInDirective
	NodeFlagErrorMask    = NodeFlagThisNodeHasError | NodeFlagContainsError
)

var nodeFlagNames = []struct {
	flag NodeFlags
	name string
}{
	{NodeFlagDisallowIn, "DisallowIn"},
	{NodeFlagInDirective, "InDirective"},
	{NodeFlagThisNodeHasError, "ThisNodeHasError"},
	{NodeFlagContainsError, "ContainsError"},
	{NodeFlagMissing, "Missing"},
	{NodeFlagHasLeadingComment, "HasLeadingComment"},
	{NodeFlagDeprecated, "Deprecated"},
	{NodeFlagMacroReference, "MacroReference"},
	{NodeFlagTrailingComma, "TrailingComma"},
	{NodeFlagReused, "Reused"},
}

func (f NodeFlags) Has(mask NodeFlags) bool {
	return f&mask != 0
}

func (f NodeFlags) String() string {
	var parts []string
	for _, fn := range nodeFlagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Node is a concrete syntax tree node. Pos is the full start including
// leading trivia, Start the first significant character. Leaves carry their
// token; interior nodes own their children in source order.
type Node struct {
	Kind     NodeKind
	Pos      int
	Start    int
	End      int
	Flags    NodeFlags
	Token    *scanner.Token
	Children []*Node
	Parent   *Node
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

func (n *Node) Has(flag NodeFlags) bool {
	return n.Flags.Has(flag)
}

func (n *Node) IsMissing() bool {
	return n.Flags.Has(NodeFlagMissing)
}

// HasError reports whether the node or any descendant carries a parse error.
func (n *Node) HasError() bool {
	return n.Flags.Has(NodeFlagErrorMask)
}

func (n *Node) Width() int {
	return n.End - n.Start
}

func (n *Node) FullWidth() int {
	return n.End - n.Pos
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

// FirstToken returns the leftmost leaf that is not a missing node.
func (n *Node) FirstToken() *Node {
	if n.Kind.IsLeaf() {
		if n.IsMissing() {
			return nil
		}
		return n
	}
	for _, child := range n.Children {
		if tok := child.FirstToken(); tok != nil {
			return tok
		}
	}
	return nil
}

// TokenKind returns the scanner kind of a leaf, or scanner.Unknown.
func (n *Node) TokenKind() scanner.Kind {
	if n.Token != nil {
		return n.Token.Kind
	}
	return scanner.Unknown
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Value
	}
	return ""
}

// Text returns the node's source text without leading trivia.
func (n *Node) Text(source string) string {
	if n.Start > len(source) || n.End > len(source) || n.Start > n.End {
		return ""
	}
	return source[n.Start:n.End]
}

// List returns the SyntaxList child at index i of n's SyntaxList children.
func (n *Node) List(i int) *Node {
	for _, child := range n.Children {
		if child.Kind == KindSyntaxList {
			if i == 0 {
				return child
			}
			i--
		}
	}
	return nil
}

// clone deep-copies n, shifting every position by delta.
func (n *Node) clone(delta int) *Node {
	c := &Node{
		Kind:  n.Kind,
		Pos:   n.Pos + delta,
		Start: n.Start + delta,
		End:   n.End + delta,
		Flags: n.Flags,
	}
	if n.Token != nil {
		tok := *n.Token
		tok.FullStart += delta
		tok.Start += delta
		tok.End += delta
		c.Token = &tok
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.clone(delta)
		}
	}
	return c
}

func (n *Node) String() string {
	var b strings.Builder
	n.writeIndent(&b, 0, false)
	return b.String()
}

func (n *Node) StringWithPositions() string {
	var b strings.Builder
	n.writeIndent(&b, 0, true)
	return b.String()
}

func (n *Node) writeIndent(b *strings.Builder, indent int, showPositions bool) {
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString(n.Kind.String())
	if showPositions {
		fmt.Fprintf(b, " [%d,%d-%d]", n.Pos, n.Start, n.End)
	}
	if n.Token != nil {
		if n.IsMissing() {
			b.WriteString(" <missing " + n.Token.Kind.String() + ">")
		} else {
			b.WriteString(" " + n.Token.Value)
		}
	}
	if n.Has(NodeFlagThisNodeHasError) {
		b.WriteString(" !")
	}
	b.WriteString("\n")

	for _, child := range n.Children {
		child.writeIndent(b, indent+1, showPositions)
	}
}
