package parser

import (
	"github.com/dhamidi/lpc/lpc/scanner"
)

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// finishNode computes the node's extent from its children and applies the
// context flags and any pending error.
func (p *Parser) finishNode(n *Node) *Node {
	if len(n.Children) == 0 {
		n.Pos = p.tok.FullStart
		n.Start = n.Pos
		n.End = n.Pos
	} else {
		first := n.Children[0]
		n.Pos = first.Pos
		n.Start = first.Pos
		for _, child := range n.Children {
			if child.End > child.Pos || child.Start > child.Pos {
				n.Start = child.Start
				break
			}
		}
		n.End = n.Children[len(n.Children)-1].End
		for _, child := range n.Children {
			if child.HasError() {
				n.Flags |= NodeFlagContainsError
				break
			}
		}
		if n.Kind.IsDeclaration() {
			if tok := n.FirstToken(); tok != nil && tok.Has(NodeFlagHasLeadingComment) {
				n.Flags |= NodeFlagHasLeadingComment
			}
		}
	}
	return p.finishFlags(n)
}

func (p *Parser) finishFlags(n *Node) *Node {
	n.Flags |= p.contextFlags
	if p.parseErrorBeforeNextFinishedNode {
		p.parseErrorBeforeNextFinishedNode = false
		n.Flags |= NodeFlagThisNodeHasError
	}
	return n
}

func leafKind(k scanner.Kind) NodeKind {
	switch k {
	case scanner.Identifier:
		return KindIdentifier
	case scanner.IntLiteral:
		return KindIntLiteral
	case scanner.FloatLiteral:
		return KindFloatLiteral
	case scanner.StringLiteral:
		return KindStringLiteral
	case scanner.CharLiteral:
		return KindCharLiteral
	}
	return KindToken
}

// consumeToken turns the current token into a leaf and advances.
func (p *Parser) consumeToken() *Node {
	n := p.currentLeaf()
	p.nextToken()
	return n
}

// currentLeaf turns the current token into a leaf without advancing.
func (p *Parser) currentLeaf() *Node {
	tok := p.tok
	n := &Node{
		Kind:  leafKind(tok.Kind),
		Pos:   tok.FullStart,
		Start: tok.Start,
		End:   tok.End,
		Token: &tok,
	}
	if tok.Has(scanner.PrecedingDocComment) {
		n.Flags |= NodeFlagHasLeadingComment
	}
	if tok.Has(scanner.MacroName) {
		n.Flags |= NodeFlagMacroReference
	}
	return p.finishFlags(n)
}

// createMissingNode synthesizes a zero-width leaf at the current token's full
// start. When m is non-nil the diagnostic is reported at the current token,
// or at the missing position when reportAtCurrentPosition is set.
func (p *Parser) createMissingNode(kind NodeKind, tokKind scanner.Kind, reportAtCurrentPosition bool, m *Message, args ...string) *Node {
	if m != nil {
		if reportAtCurrentPosition {
			p.parseErrorAt(p.tok.FullStart, p.tok.FullStart, m, args...)
		} else {
			p.parseErrorAtCurrentToken(m, args...)
		}
	}
	pos := p.tok.FullStart
	n := &Node{
		Kind:  kind,
		Pos:   pos,
		Start: pos,
		End:   pos,
		Flags: NodeFlagMissing,
		Token: &scanner.Token{Kind: tokKind, FullStart: pos, Start: pos, End: pos},
	}
	return p.finishFlags(n)
}
