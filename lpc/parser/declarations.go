package parser

import (
	"github.com/dhamidi/lpc/lpc/scanner"
)

// isStartOfDeclaration checks tokens that may begin either a declaration or
// an expression statement and settles the question by lookahead.
func (p *Parser) isStartOfDeclaration() bool {
	switch {
	case isModifier(p.tok.Kind), p.isStartOfTypeKeyword(),
		p.tok.Kind == scanner.KeywordInherit, p.tok.Kind == scanner.Identifier,
		p.tok.Kind == scanner.LessThan:
		return p.lookAhead(p.isDeclaration)
	}
	return false
}

// isDeclaration runs inside a lookahead and may consume tokens freely.
func (p *Parser) isDeclaration() bool {
	for isModifier(p.tok.Kind) {
		p.nextToken()
	}

	switch p.tok.Kind {
	case scanner.KeywordInherit:
		return true
	case scanner.KeywordStruct, scanner.KeywordClass:
		if p.nextToken() != scanner.Identifier {
			return false
		}
		switch p.nextToken() {
		case scanner.Identifier, scanner.Asterisk, scanner.OpenBrace, scanner.OpenParen:
			return true
		}
		return false
	case scanner.KeywordFunction:
		next := p.nextToken()
		return next == scanner.Identifier || next == scanner.Asterisk
	case scanner.LessThan:
		p.parseType()
		for p.tok.Kind == scanner.Asterisk {
			p.nextToken()
		}
		return p.tok.Kind == scanner.Identifier
	case scanner.Identifier:
		macro := p.tok.Has(scanner.MacroName)
		switch p.nextToken() {
		case scanner.OpenParen:
			// An untyped function definition is only possible at the top
			// level; anywhere else this is a call.
			return p.parsingContexts == 1<<PCSourceElements
		case scanner.Identifier:
			return macro
		}
		return false
	}
	return isPrimitiveTypeKeyword(p.tok.Kind)
}

// isStructDefinition recognises struct Name { and struct Name ( at the
// current token.
func (p *Parser) isStructDefinition() bool {
	if p.tok.Kind != scanner.KeywordStruct && p.tok.Kind != scanner.KeywordClass {
		return false
	}
	return p.lookAhead(func() bool {
		if p.nextToken() != scanner.Identifier {
			return false
		}
		next := p.nextToken()
		return next == scanner.OpenBrace || next == scanner.OpenParen
	})
}

func (p *Parser) parseModifiers() *Node {
	if !isModifier(p.tok.Kind) {
		return nil
	}
	n := p.startNode(KindModifierList)
	for isModifier(p.tok.Kind) {
		if p.tok.Kind == scanner.KeywordDeprecated {
			n.Flags |= NodeFlagDeprecated
		}
		n.AddChild(p.consumeToken())
	}
	return p.finishNode(n)
}

func inheritModifierFlags(n, mods *Node) {
	if mods != nil && mods.Has(NodeFlagDeprecated) {
		n.Flags |= NodeFlagDeprecated
	}
}

func (p *Parser) parseDeclaration() *Node {
	mods := p.parseModifiers()

	switch p.tok.Kind {
	case scanner.KeywordInherit:
		return p.parseInheritDeclaration(mods)
	case scanner.KeywordStruct, scanner.KeywordClass:
		if p.isStructDefinition() {
			return p.parseStructDeclaration(mods)
		}
	case scanner.Identifier:
		if p.nextTokenIs(scanner.OpenParen) {
			return p.parseFunctionDeclaration(mods, nil)
		}
	}

	typ := p.parseDeclarationType()
	if p.lookAhead(p.isFunctionDeclarator) {
		for p.tok.Kind == scanner.Asterisk {
			arr := p.startNode(KindArrayType)
			arr.AddChild(typ)
			arr.AddChild(p.consumeToken())
			typ = p.finishNode(arr)
		}
		return p.parseFunctionDeclaration(mods, typ)
	}

	n := p.startNode(KindVariableStatement)
	inheritModifierFlags(n, mods)
	n.AddChild(mods)
	n.AddChild(typ)
	n.AddChild(p.parseVariableDeclarationList())
	n.AddChild(p.parseExpected(scanner.Semicolon))
	return p.finishNode(n)
}

// parseDeclarationType parses the type in front of a declarator list. Stars
// are left for the declarators, so int *a, b declares an array and an int.
func (p *Parser) parseDeclarationType() *Node {
	t := p.parsePrimaryType()
	if p.tok.Kind != scanner.Bar {
		return t
	}
	n := p.startNode(KindUnionType)
	n.AddChild(t)
	for p.tok.Kind == scanner.Bar {
		n.AddChild(p.consumeToken())
		n.AddChild(p.parsePrimaryType())
	}
	return p.finishNode(n)
}

func (p *Parser) isFunctionDeclarator() bool {
	for p.tok.Kind == scanner.Asterisk {
		p.nextToken()
	}
	if p.tok.Kind != scanner.Identifier {
		return false
	}
	return p.nextToken() == scanner.OpenParen
}

func (p *Parser) parseVariableDeclarationList() *Node {
	list := p.parseDelimitedList(PCVariableDeclarations, p.parseVariableDeclaration, false)
	if len(list.Children) == 0 || list.Has(NodeFlagTrailingComma) {
		p.parseErrorAtCurrentToken(MsgVariableDeclarationExpected)
	}
	return list
}

func (p *Parser) parseVariableDeclaration() *Node {
	n := p.startNode(KindVariableDeclaration)
	for p.tok.Kind == scanner.Asterisk {
		n.AddChild(p.consumeToken())
	}
	n.AddChild(p.parseIdentifier(nil))
	if p.tok.Kind == scanner.Equals {
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseAssignmentExpressionOrHigher())
	}
	return p.finishNode(n)
}

// parseFunctionDeclaration parses the rest of a function after its return
// type. typ is nil for old-style untyped definitions.
func (p *Parser) parseFunctionDeclaration(mods, typ *Node) *Node {
	n := p.startNode(KindFunctionDeclaration)
	inheritModifierFlags(n, mods)
	n.AddChild(mods)
	n.AddChild(typ)
	n.AddChild(p.parseIdentifier(nil))

	openPos := p.tok.Start
	open := p.parseExpected(scanner.OpenParen)
	n.AddChild(open)
	n.AddChild(p.parseDelimitedList(PCParameters, p.parseParameter, false))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, !open.IsMissing(), openPos))

	if p.tok.Kind == scanner.OpenBrace {
		n.AddChild(p.parseBlock())
	} else {
		n.AddChild(p.parseExpected(scanner.Semicolon))
	}
	return p.finishNode(n)
}

func (p *Parser) isStartOfParameter() bool {
	switch p.tok.Kind {
	case scanner.KeywordVarargs, scanner.Identifier, scanner.Ampersand, scanner.DotDotDot, scanner.LessThan:
		return true
	}
	return p.isStartOfTypeKeyword()
}

// identifierIsTypeName reports whether the identifier at the current token is
// used as a type, i.e. it is followed by a name, '*' or '&'.
func (p *Parser) identifierIsTypeName() bool {
	return p.lookAhead(func() bool {
		switch p.nextToken() {
		case scanner.Identifier, scanner.Asterisk:
			return true
		case scanner.Ampersand:
			return p.nextToken() == scanner.Identifier
		}
		return false
	})
}

// parseParameter parses one formal parameter:
//
//	[varargs] [type] [&] [name] [...] [= default | : default]
func (p *Parser) parseParameter() *Node {
	n := p.startNode(KindParameter)
	if p.tok.Kind == scanner.KeywordVarargs {
		n.AddChild(p.consumeToken())
	}
	if p.isStartOfTypeKeyword() || p.tok.Kind == scanner.LessThan ||
		p.tok.Kind == scanner.Identifier && p.identifierIsTypeName() {
		n.AddChild(p.parseType())
	}
	if p.tok.Kind == scanner.Ampersand {
		n.AddChild(p.consumeToken())
	}
	if p.tok.Kind == scanner.Identifier {
		n.AddChild(p.consumeToken())
	}
	if p.tok.Kind == scanner.DotDotDot {
		n.AddChild(p.consumeToken())
	}
	if p.tok.Kind == scanner.Equals || p.tok.Kind == scanner.Colon {
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseAssignmentExpressionOrHigher())
	}
	return p.finishNode(n)
}

func (p *Parser) parseInheritDeclaration(mods *Node) *Node {
	n := p.startNode(KindInheritDeclaration)
	inheritModifierFlags(n, mods)
	n.AddChild(mods)
	n.AddChild(p.consumeToken())
	list := p.parseList(PCInheritStrings, p.consumeToken)
	if len(list.Children) == 0 {
		p.parseErrorAtCurrentToken(MsgStringLiteralExpected)
	}
	n.AddChild(list)
	n.AddChild(p.parseExpected(scanner.Semicolon))
	return p.finishNode(n)
}

// parseStructDeclaration parses a struct or class definition:
//
//	struct Name [( Base )] { members } [;]
func (p *Parser) parseStructDeclaration(mods *Node) *Node {
	n := p.startNode(KindStructDeclaration)
	inheritModifierFlags(n, mods)
	n.AddChild(mods)
	n.AddChild(p.consumeToken())
	n.AddChild(p.parseIdentifier(nil))

	if p.tok.Kind == scanner.OpenParen {
		base := p.startNode(KindStructBase)
		openPos := p.tok.Start
		base.AddChild(p.consumeToken())
		base.AddChild(p.parseIdentifier(nil))
		base.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, true, openPos))
		n.AddChild(p.finishNode(base))
	}

	n.AddChild(p.parseTypeLiteral(PCStructMembers))
	if p.tok.Kind == scanner.Semicolon {
		n.AddChild(p.consumeToken())
	}
	return p.finishNode(n)
}

// isTypeMemberStart runs inside a lookahead.
func (p *Parser) isTypeMemberStart() bool {
	for isModifier(p.tok.Kind) {
		p.nextToken()
	}
	if p.isStartOfTypeKeyword() || p.tok.Kind == scanner.LessThan {
		return true
	}
	if p.tok.Kind == scanner.Identifier {
		next := p.nextToken()
		return next == scanner.Identifier || next == scanner.Asterisk
	}
	return false
}

func (p *Parser) parseTypeMember() *Node {
	if p.tok.Kind.IsDirective() {
		return p.parseDirective()
	}
	if p.tok.Kind == scanner.Semicolon {
		return p.parseEmptyStatement()
	}
	n := p.startNode(KindPropertySignature)
	mods := p.parseModifiers()
	inheritModifierFlags(n, mods)
	n.AddChild(mods)
	n.AddChild(p.parseDeclarationType())
	n.AddChild(p.parseVariableDeclarationList())
	n.AddChild(p.parseExpected(scanner.Semicolon))
	return p.finishNode(n)
}
