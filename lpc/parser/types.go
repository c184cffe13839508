package parser

import (
	"github.com/dhamidi/lpc/lpc/scanner"
)

func isPrimitiveTypeKeyword(k scanner.Kind) bool {
	switch k {
	case scanner.KeywordInt, scanner.KeywordFloat, scanner.KeywordString, scanner.KeywordObject,
		scanner.KeywordMapping, scanner.KeywordMixed, scanner.KeywordVoid, scanner.KeywordStatus,
		scanner.KeywordClosure, scanner.KeywordSymbol, scanner.KeywordBytes, scanner.KeywordBuffer,
		scanner.KeywordFunction, scanner.KeywordUnknown:
		return true
	}
	return false
}

func (p *Parser) isStartOfTypeKeyword() bool {
	return isPrimitiveTypeKeyword(p.tok.Kind) || p.tok.Kind == scanner.KeywordStruct || p.tok.Kind == scanner.KeywordClass
}

func (p *Parser) isStartOfType() bool {
	switch p.tok.Kind {
	case scanner.OpenBrace, scanner.Identifier, scanner.LessThan,
		scanner.IntLiteral, scanner.FloatLiteral, scanner.StringLiteral, scanner.CharLiteral:
		return true
	}
	return p.isStartOfTypeKeyword()
}

// parseType parses a full type: members separated by '|', each optionally
// followed by '*' for array-of.
func (p *Parser) parseType() *Node {
	t := p.parsePostfixType()
	if p.tok.Kind != scanner.Bar {
		return t
	}
	n := p.startNode(KindUnionType)
	n.AddChild(t)
	for p.tok.Kind == scanner.Bar {
		n.AddChild(p.consumeToken())
		n.AddChild(p.parsePostfixType())
	}
	return p.finishNode(n)
}

func (p *Parser) parsePostfixType() *Node {
	t := p.parsePrimaryType()
	for p.tok.Kind == scanner.Asterisk {
		n := p.startNode(KindArrayType)
		n.AddChild(t)
		n.AddChild(p.consumeToken())
		t = p.finishNode(n)
	}
	return t
}

func (p *Parser) parsePrimaryType() *Node {
	switch p.tok.Kind {
	case scanner.KeywordStruct, scanner.KeywordClass:
		n := p.startNode(KindStructType)
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseIdentifier(nil))
		return p.finishNode(n)
	case scanner.OpenBrace:
		return p.parseTypeLiteral(PCTypeMembers)
	case scanner.LessThan:
		return p.parseGroupedType()
	case scanner.Identifier:
		n := p.startNode(KindTypeReference)
		n.AddChild(p.consumeToken())
		return p.finishNode(n)
	case scanner.IntLiteral, scanner.FloatLiteral, scanner.StringLiteral, scanner.CharLiteral:
		n := p.startNode(KindLiteralType)
		n.AddChild(p.consumeToken())
		return p.finishNode(n)
	}
	if isPrimitiveTypeKeyword(p.tok.Kind) {
		n := p.startNode(KindPrimitiveType)
		n.AddChild(p.consumeToken())
		return p.finishNode(n)
	}
	n := p.startNode(KindTypeReference)
	n.AddChild(p.createMissingNode(KindIdentifier, scanner.Identifier, false, MsgTypeExpected))
	return p.finishNode(n)
}

// parseGroupedType parses <a|b>, the explicit union form.
func (p *Parser) parseGroupedType() *Node {
	n := p.startNode(KindGroupedType)
	openPos := p.tok.Start
	n.AddChild(p.consumeToken())
	n.AddChild(p.parseDelimitedList(PCUnionTypeMembers, p.parsePostfixType, false))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.LessThan, scanner.GreaterThan, true, openPos))
	return p.finishNode(n)
}

// parseTypeLiteral parses a braced member list. ctx is PCStructMembers for
// struct bodies and PCTypeMembers for inline type literals.
func (p *Parser) parseTypeLiteral(ctx ParsingContext) *Node {
	n := p.startNode(KindTypeLiteral)
	openPos := p.tok.Start
	open := p.parseExpected(scanner.OpenBrace)
	n.AddChild(open)
	n.AddChild(p.parseList(ctx, p.parseTypeMember))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenBrace, scanner.CloseBrace, !open.IsMissing(), openPos))
	return p.finishNode(n)
}
