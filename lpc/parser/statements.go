package parser

import (
	"github.com/dhamidi/lpc/lpc/scanner"
)

func isModifier(k scanner.Kind) bool {
	switch k {
	case scanner.KeywordPrivate, scanner.KeywordProtected, scanner.KeywordPublic,
		scanner.KeywordStatic, scanner.KeywordNomask, scanner.KeywordVarargs,
		scanner.KeywordNosave, scanner.KeywordDeprecated, scanner.KeywordVisible:
		return true
	}
	return false
}

func (p *Parser) isStartOfStatement() bool {
	switch p.tok.Kind {
	case scanner.Semicolon, scanner.OpenBrace,
		scanner.KeywordInherit, scanner.KeywordIf, scanner.KeywordDo, scanner.KeywordWhile,
		scanner.KeywordFor, scanner.KeywordForeach, scanner.KeywordBreak, scanner.KeywordContinue,
		scanner.KeywordReturn, scanner.KeywordSwitch, scanner.KeywordStruct, scanner.KeywordClass:
		return true
	}
	if isModifier(p.tok.Kind) || p.tok.Kind.IsDirective() || p.isStartOfTypeKeyword() {
		return true
	}
	if p.tok.Kind == scanner.LessThan {
		return p.lookAhead(p.isDeclaration)
	}
	return p.isStartOfExpression()
}

func (p *Parser) parseStatement() *Node {
	if p.tok.Kind.IsDirective() {
		return p.parseDirective()
	}

	switch p.tok.Kind {
	case scanner.Semicolon:
		return p.parseEmptyStatement()
	case scanner.OpenBrace:
		return p.parseBlock()
	case scanner.KeywordInherit:
		return p.parseInheritDeclaration(nil)
	case scanner.KeywordIf:
		return p.parseIfStatement()
	case scanner.KeywordDo:
		return p.parseDoStatement()
	case scanner.KeywordWhile:
		return p.parseWhileStatement()
	case scanner.KeywordFor:
		return p.parseForStatement()
	case scanner.KeywordForeach:
		return p.parseForEachStatement()
	case scanner.KeywordBreak:
		return p.parseBreakOrContinueStatement(KindBreakStatement)
	case scanner.KeywordContinue:
		return p.parseBreakOrContinueStatement(KindContinueStatement)
	case scanner.KeywordReturn:
		return p.parseReturnStatement()
	case scanner.KeywordSwitch:
		return p.parseSwitchStatement()
	case scanner.KeywordStruct, scanner.KeywordClass:
		if p.isStructDefinition() {
			return p.parseStructDeclaration(nil)
		}
		if p.isStartOfDeclaration() {
			return p.parseDeclaration()
		}
	default:
		if p.isStartOfDeclaration() {
			return p.parseDeclaration()
		}
	}
	return p.parseExpressionOrLabeledStatement()
}

func (p *Parser) parseEmptyStatement() *Node {
	n := p.startNode(KindEmptyStatement)
	n.AddChild(p.consumeToken())
	return p.finishNode(n)
}

func (p *Parser) parseBlock() *Node {
	n := p.startNode(KindBlock)
	openPos := p.tok.Start
	open := p.parseExpected(scanner.OpenBrace)
	n.AddChild(open)
	n.AddChild(p.parseList(PCBlockStatements, p.parseStatement))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenBrace, scanner.CloseBrace, !open.IsMissing(), openPos))
	return p.finishNode(n)
}

// parseParenthesizedCondition parses "( expression )" into n.
func (p *Parser) parseParenthesizedCondition(n *Node) {
	openPos := p.tok.Start
	open := p.parseExpected(scanner.OpenParen)
	n.AddChild(open)
	n.AddChild(p.allowInAnd(p.parseExpression))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, !open.IsMissing(), openPos))
}

func (p *Parser) parseIfStatement() *Node {
	n := p.startNode(KindIfStatement)
	n.AddChild(p.consumeToken())
	p.parseParenthesizedCondition(n)
	n.AddChild(p.parseStatement())
	if p.tok.Kind == scanner.KeywordElse {
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseStatement())
	}
	return p.finishNode(n)
}

func (p *Parser) parseDoStatement() *Node {
	n := p.startNode(KindDoStatement)
	n.AddChild(p.consumeToken())
	n.AddChild(p.parseStatement())
	n.AddChild(p.parseExpected(scanner.KeywordWhile))
	p.parseParenthesizedCondition(n)
	n.AddChild(p.parseExpected(scanner.Semicolon))
	return p.finishNode(n)
}

func (p *Parser) parseWhileStatement() *Node {
	n := p.startNode(KindWhileStatement)
	n.AddChild(p.consumeToken())
	p.parseParenthesizedCondition(n)
	n.AddChild(p.parseStatement())
	return p.finishNode(n)
}

// parseForStatement parses for (init; condition; increment) statement. Each
// clause may be empty.
func (p *Parser) parseForStatement() *Node {
	n := p.startNode(KindForStatement)
	n.AddChild(p.consumeToken())
	openPos := p.tok.Start
	open := p.parseExpected(scanner.OpenParen)
	n.AddChild(open)

	if p.tok.Kind != scanner.Semicolon {
		if p.isStartOfDeclaration() {
			n.AddChild(p.disallowInAnd(p.parseForInitializerDeclaration))
		} else {
			n.AddChild(p.disallowInAnd(p.parseExpression))
		}
	}
	n.AddChild(p.parseExpected(scanner.Semicolon))
	if p.tok.Kind != scanner.Semicolon {
		n.AddChild(p.allowInAnd(p.parseExpression))
	}
	n.AddChild(p.parseExpected(scanner.Semicolon))
	if p.tok.Kind != scanner.CloseParen {
		n.AddChild(p.allowInAnd(p.parseExpression))
	}
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, !open.IsMissing(), openPos))
	n.AddChild(p.parseStatement())
	return p.finishNode(n)
}

func (p *Parser) parseForInitializerDeclaration() *Node {
	n := p.startNode(KindVariableStatement)
	n.AddChild(p.parseDeclarationType())
	n.AddChild(p.parseVariableDeclarationList())
	return p.finishNode(n)
}

// parseForEachStatement handles the three loop forms:
//
//	foreach (x in expr)
//	foreach (k, v : expr)
//	foreach (int i in 0..10)
func (p *Parser) parseForEachStatement() *Node {
	n := p.startNode(KindForEachStatement)
	n.AddChild(p.consumeToken())
	openPos := p.tok.Start
	open := p.parseExpected(scanner.OpenParen)
	n.AddChild(open)

	n.AddChild(p.disallowInAnd(func() *Node {
		return p.parseDelimitedList(PCForeachBindings, p.parseForEachBinding, false)
	}))

	if p.tok.Kind == scanner.Colon {
		n.AddChild(p.consumeToken())
	} else {
		n.AddChild(p.parseExpected(scanner.KeywordIn))
	}
	n.AddChild(p.allowInAnd(p.parseForEachIterable))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, !open.IsMissing(), openPos))
	n.AddChild(p.parseStatement())
	return p.finishNode(n)
}

// parseForEachBinding parses a loop variable, with an optional type and
// reference marker.
func (p *Parser) parseForEachBinding() *Node {
	n := p.startNode(KindVariableDeclaration)
	if p.isStartOfTypeKeyword() || p.tok.Kind == scanner.Identifier && p.identifierIsTypeName() {
		n.AddChild(p.parseType())
	}
	if p.tok.Kind == scanner.Ampersand {
		n.AddChild(p.consumeToken())
	}
	n.AddChild(p.parseIdentifier(nil))
	return p.finishNode(n)
}

func (p *Parser) parseForEachIterable() *Node {
	expr := p.parseAssignmentExpressionOrHigher()
	if p.tok.Kind != scanner.DotDot {
		return expr
	}
	n := p.startNode(KindRangeExpression)
	n.AddChild(expr)
	n.AddChild(p.consumeToken())
	n.AddChild(p.parseAssignmentExpressionOrHigher())
	return p.finishNode(n)
}

func (p *Parser) parseBreakOrContinueStatement(kind NodeKind) *Node {
	n := p.startNode(kind)
	n.AddChild(p.consumeToken())
	n.AddChild(p.parseExpected(scanner.Semicolon))
	return p.finishNode(n)
}

func (p *Parser) parseReturnStatement() *Node {
	n := p.startNode(KindReturnStatement)
	n.AddChild(p.consumeToken())
	if p.tok.Kind != scanner.Semicolon && p.isStartOfExpression() {
		n.AddChild(p.allowInAnd(p.parseExpression))
	}
	n.AddChild(p.parseExpected(scanner.Semicolon))
	return p.finishNode(n)
}

func (p *Parser) parseSwitchStatement() *Node {
	n := p.startNode(KindSwitchStatement)
	n.AddChild(p.consumeToken())
	p.parseParenthesizedCondition(n)

	block := p.startNode(KindCaseBlock)
	openPos := p.tok.Start
	open := p.parseExpected(scanner.OpenBrace)
	block.AddChild(open)
	block.AddChild(p.parseList(PCSwitchClauses, p.parseCaseOrDefaultClause))
	block.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenBrace, scanner.CloseBrace, !open.IsMissing(), openPos))
	n.AddChild(p.finishNode(block))
	return p.finishNode(n)
}

func (p *Parser) parseCaseOrDefaultClause() *Node {
	var n *Node
	if p.tok.Kind == scanner.KeywordCase {
		n = p.startNode(KindCaseClause)
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseCaseLabel())
	} else {
		n = p.startNode(KindDefaultClause)
		n.AddChild(p.consumeToken())
	}
	n.AddChild(p.parseExpected(scanner.Colon))
	n.AddChild(p.parseList(PCSwitchClauseStatements, p.parseStatement))
	return p.finishNode(n)
}

// parseCaseLabel parses a case value or a case range such as 'a'..'z'.
func (p *Parser) parseCaseLabel() *Node {
	var lo *Node
	if p.tok.Kind != scanner.DotDot {
		lo = p.parseAssignmentExpressionOrHigher()
	}
	if p.tok.Kind != scanner.DotDot {
		return lo
	}
	n := p.startNode(KindRangeExpression)
	n.AddChild(lo)
	n.AddChild(p.consumeToken())
	if p.tok.Kind != scanner.Colon {
		n.AddChild(p.parseAssignmentExpressionOrHigher())
	}
	return p.finishNode(n)
}

func (p *Parser) parseExpressionOrLabeledStatement() *Node {
	if p.tok.Kind == scanner.Identifier && p.nextTokenIs(scanner.Colon) {
		n := p.startNode(KindLabeledStatement)
		n.AddChild(p.consumeToken())
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseStatement())
		return p.finishNode(n)
	}

	n := p.startNode(KindExpressionStatement)
	expr := p.allowInAnd(p.parseExpression)
	n.AddChild(expr)
	n.AddChild(p.parseExpectedSemicolonAfter(expr))
	return p.finishNode(n)
}

// parseExpectedSemicolonAfter requires a ';' after an expression statement,
// refining the diagnostic when the expression is a lone identifier.
func (p *Parser) parseExpectedSemicolonAfter(expr *Node) *Node {
	if p.tok.Kind == scanner.Semicolon {
		return p.consumeToken()
	}
	p.parseErrorForMissingSemicolonAfter(expr)
	return p.createMissingNode(KindToken, scanner.Semicolon, false, nil)
}
