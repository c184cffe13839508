package parser

import (
	"github.com/dhamidi/lpc/lpc/scanner"
)

func (p *Parser) isStartOfExpression() bool {
	switch p.tok.Kind {
	case scanner.Identifier, scanner.IntLiteral, scanner.FloatLiteral, scanner.CharLiteral, scanner.StringLiteral,
		scanner.OpenParen, scanner.OpenParenBrace, scanner.OpenParenBracket, scanner.OpenParenColon,
		scanner.HashQuote, scanner.ColonColon, scanner.KeywordCatch, scanner.KeywordFunction,
		scanner.Exclamation, scanner.Tilde, scanner.Minus, scanner.Plus, scanner.PlusPlus, scanner.MinusMinus,
		scanner.Ampersand:
		return true
	}
	return false
}

// binaryOperatorPrecedence returns 0 for tokens that are not binary
// operators.
func binaryOperatorPrecedence(k scanner.Kind) int {
	switch k {
	case scanner.BarBar:
		return 1
	case scanner.AmpersandAmpersand:
		return 2
	case scanner.Bar:
		return 3
	case scanner.Caret:
		return 4
	case scanner.Ampersand:
		return 5
	case scanner.EqualsEquals, scanner.ExclamationEquals:
		return 6
	case scanner.LessThan, scanner.GreaterThan, scanner.LessThanEquals, scanner.GreaterThanEquals:
		return 7
	case scanner.LessLess, scanner.GreaterGreater, scanner.GreaterGreaterGreater:
		return 8
	case scanner.Plus, scanner.Minus:
		return 9
	case scanner.Asterisk, scanner.Slash, scanner.Percent:
		return 10
	}
	return 0
}

// isRightAssociative is false for every LPC binary operator; it is kept so
// the climbing loop states its associativity rule in one place.
func isRightAssociative(k scanner.Kind) bool {
	return false
}

func isAssignmentOperator(k scanner.Kind) bool {
	switch k {
	case scanner.Equals, scanner.PlusEquals, scanner.MinusEquals, scanner.AsteriskEquals,
		scanner.SlashEquals, scanner.PercentEquals, scanner.AmpersandEquals, scanner.BarEquals,
		scanner.CaretEquals, scanner.LessLessEquals, scanner.GreaterGreaterEquals,
		scanner.GreaterGreaterGreaterEquals, scanner.AmpersandAmpersandEquals, scanner.BarBarEquals:
		return true
	}
	return false
}

func isLeftHandSideExpression(n *Node) bool {
	switch n.Kind {
	case KindIdentifier, KindPropertyAccessExpression, KindElementAccessExpression,
		KindParenthesizedExpression, KindScopeAccess:
		return true
	}
	return false
}

// parseExpression parses a comma expression.
func (p *Parser) parseExpression() *Node {
	expr := p.parseAssignmentExpressionOrHigher()
	for p.tok.Kind == scanner.Comma {
		n := p.startNode(KindBinaryExpression)
		n.AddChild(expr)
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseAssignmentExpressionOrHigher())
		expr = p.finishNode(n)
	}
	return expr
}

// parseAssignmentExpressionOrHigher parses a binary expression first and
// only then decides whether it is the target of an assignment.
func (p *Parser) parseAssignmentExpressionOrHigher() *Node {
	expr := p.parseBinaryExpressionOrHigher(0)
	p.reScanGreaterToken()
	if isLeftHandSideExpression(expr) && isAssignmentOperator(p.tok.Kind) {
		n := p.startNode(KindBinaryExpression)
		n.AddChild(expr)
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseAssignmentExpressionOrHigher())
		return p.finishNode(n)
	}
	return p.parseConditionalExpressionRest(expr)
}

func (p *Parser) parseConditionalExpressionRest(cond *Node) *Node {
	if p.tok.Kind != scanner.Question {
		return cond
	}
	n := p.startNode(KindConditionalExpression)
	n.AddChild(cond)
	n.AddChild(p.consumeToken())
	n.AddChild(p.allowInAnd(p.parseAssignmentExpressionOrHigher))
	n.AddChild(p.parseExpected(scanner.Colon))
	n.AddChild(p.parseAssignmentExpressionOrHigher())
	return p.finishNode(n)
}

func (p *Parser) parseBinaryExpressionOrHigher(precedence int) *Node {
	left := p.parseUnaryExpressionOrHigher()
	return p.parseBinaryExpressionRest(precedence, left)
}

func (p *Parser) parseBinaryExpressionRest(precedence int, left *Node) *Node {
	for {
		p.reScanGreaterToken()
		newPrecedence := binaryOperatorPrecedence(p.tok.Kind)
		var consume bool
		if isRightAssociative(p.tok.Kind) {
			consume = newPrecedence >= precedence
		} else {
			consume = newPrecedence > precedence
		}
		if newPrecedence == 0 || !consume {
			return left
		}
		n := p.startNode(KindBinaryExpression)
		n.AddChild(left)
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseBinaryExpressionOrHigher(newPrecedence))
		left = p.finishNode(n)
	}
}

func (p *Parser) parseUnaryExpressionOrHigher() *Node {
	switch p.tok.Kind {
	case scanner.Exclamation, scanner.Tilde, scanner.Minus, scanner.Plus,
		scanner.PlusPlus, scanner.MinusMinus, scanner.Ampersand:
		n := p.startNode(KindPrefixUnaryExpression)
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseUnaryExpressionOrHigher())
		return p.finishNode(n)
	case scanner.OpenParen:
		if p.lookAhead(p.isCastExpression) {
			return p.parseCastExpression()
		}
	case scanner.OpenParenBrace:
		if p.lookAhead(p.isTypeAssertion) {
			return p.parseTypeAssertion()
		}
	}

	expr := p.parseLeftHandSideExpressionOrHigher()
	for p.tok.Kind == scanner.PlusPlus || p.tok.Kind == scanner.MinusMinus {
		n := p.startNode(KindPostfixUnaryExpression)
		n.AddChild(expr)
		n.AddChild(p.consumeToken())
		expr = p.finishNode(n)
	}
	return expr
}

// isCastExpression recognises (type) where type starts with a type keyword
// and parses without errors.
func (p *Parser) isCastExpression() bool {
	p.nextToken()
	if !p.isStartOfTypeKeyword() {
		return false
	}
	before := p.diagnostics.len()
	p.parseType()
	return p.diagnostics.len() == before && p.tok.Kind == scanner.CloseParen
}

func (p *Parser) parseCastExpression() *Node {
	n := p.startNode(KindCastExpression)
	openPos := p.tok.Start
	n.AddChild(p.consumeToken())
	n.AddChild(p.parseType())
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, true, openPos))
	n.AddChild(p.parseUnaryExpressionOrHigher())
	return p.finishNode(n)
}

// isTypeAssertion recognises ({type}).
func (p *Parser) isTypeAssertion() bool {
	p.nextToken()
	if !p.isStartOfTypeKeyword() {
		return false
	}
	before := p.diagnostics.len()
	p.parseType()
	if p.diagnostics.len() != before || p.tok.Kind != scanner.CloseBrace {
		return false
	}
	return p.nextToken() == scanner.CloseParen
}

func (p *Parser) parseTypeAssertion() *Node {
	n := p.startNode(KindTypeAssertionExpression)
	openPos := p.tok.Start
	n.AddChild(p.consumeToken())
	n.AddChild(p.parseType())
	n.AddChild(p.parseExpected(scanner.CloseBrace))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParenBrace, scanner.CloseParen, true, openPos))
	n.AddChild(p.parseUnaryExpressionOrHigher())
	return p.finishNode(n)
}

func (p *Parser) parseLeftHandSideExpressionOrHigher() *Node {
	return p.parseCallExpressionRest(p.parsePrimaryExpression())
}

// parseCallExpressionRest applies member access, indexing and call suffixes
// until none matches.
func (p *Parser) parseCallExpressionRest(expr *Node) *Node {
	for {
		switch p.tok.Kind {
		case scanner.Dot, scanner.Arrow:
			n := p.startNode(KindPropertyAccessExpression)
			n.AddChild(expr)
			n.AddChild(p.consumeToken())
			n.AddChild(p.parseIdentifier(nil))
			expr = p.finishNode(n)
		case scanner.OpenParen:
			n := p.startNode(KindCallExpression)
			n.AddChild(expr)
			p.parseArguments(n)
			expr = p.finishNode(n)
		case scanner.OpenBracket:
			n := p.startNode(KindElementAccessExpression)
			n.AddChild(expr)
			openPos := p.tok.Start
			n.AddChild(p.consumeToken())
			n.AddChild(p.allowInAnd(p.parseIndexOrRange))
			n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenBracket, scanner.CloseBracket, true, openPos))
			expr = p.finishNode(n)
		default:
			return expr
		}
	}
}

func (p *Parser) parseArguments(n *Node) {
	openPos := p.tok.Start
	n.AddChild(p.consumeToken())
	n.AddChild(p.parseDelimitedList(PCArgumentExpressions, p.parseArgumentOrSpread, false))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, true, openPos))
}

// parseArgumentOrSpread parses an element of an argument or array list,
// which may be followed by '...' to spread it.
func (p *Parser) parseArgumentOrSpread() *Node {
	expr := p.parseAssignmentExpressionOrHigher()
	if p.tok.Kind != scanner.DotDotDot {
		return expr
	}
	n := p.startNode(KindSpreadElement)
	n.AddChild(expr)
	n.AddChild(p.consumeToken())
	return p.finishNode(n)
}

// parseIndexOrRange parses the inside of [...]: an index, a range with
// either bound optional, or a comma list for multi-valued mappings. '<'
// counts from the end.
func (p *Parser) parseIndexOrRange() *Node {
	var lo *Node
	if p.tok.Kind != scanner.DotDot {
		lo = p.parseIndexOperand()
	}
	expr := lo
	if p.tok.Kind == scanner.DotDot {
		n := p.startNode(KindRangeExpression)
		n.AddChild(lo)
		n.AddChild(p.consumeToken())
		if p.tok.Kind != scanner.CloseBracket {
			n.AddChild(p.parseIndexOperand())
		}
		expr = p.finishNode(n)
	}
	for p.tok.Kind == scanner.Comma {
		n := p.startNode(KindBinaryExpression)
		n.AddChild(expr)
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseIndexOperand())
		expr = p.finishNode(n)
	}
	return expr
}

func (p *Parser) parseIndexOperand() *Node {
	if p.tok.Kind != scanner.LessThan {
		return p.parseAssignmentExpressionOrHigher()
	}
	n := p.startNode(KindFromEndExpression)
	n.AddChild(p.consumeToken())
	n.AddChild(p.parseAssignmentExpressionOrHigher())
	return p.finishNode(n)
}

func (p *Parser) parsePrimaryExpression() *Node {
	switch p.tok.Kind {
	case scanner.Identifier:
		if p.tok.Has(scanner.MacroName) && p.nextTokenIs(scanner.StringLiteral) {
			return p.parseStringConcatenation()
		}
		if p.nextTokenIs(scanner.ColonColon) {
			n := p.startNode(KindScopeAccess)
			n.AddChild(p.consumeToken())
			n.AddChild(p.consumeToken())
			n.AddChild(p.parseIdentifier(nil))
			return p.finishNode(n)
		}
		return p.consumeToken()
	case scanner.ColonColon:
		n := p.startNode(KindScopeAccess)
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseIdentifier(nil))
		return p.finishNode(n)
	case scanner.IntLiteral, scanner.FloatLiteral, scanner.CharLiteral:
		return p.consumeToken()
	case scanner.StringLiteral:
		return p.parseStringConcatenation()
	case scanner.OpenParen:
		if p.isStructLiteralStart() {
			return p.parseStructLiteral()
		}
		return p.parseParenthesizedExpression()
	case scanner.OpenParenBrace:
		return p.parseArrayLiteral()
	case scanner.OpenParenBracket:
		return p.parseMappingLiteral()
	case scanner.OpenParenColon:
		return p.parseClosureExpression()
	case scanner.HashQuote:
		return p.parseLambdaExpression()
	case scanner.KeywordCatch:
		return p.parseCatchExpression()
	case scanner.KeywordFunction:
		return p.parseInlineClosure()
	}
	return p.createMissingNode(KindIdentifier, scanner.Identifier, false, MsgExpressionExpected)
}

// parseStringConcatenation joins adjacent string literals and macro names
// that sit between them, as in "a" DIR "b".
func (p *Parser) parseStringConcatenation() *Node {
	first := p.consumeToken()
	if !p.isConcatenationPart() {
		return first
	}
	n := p.startNode(KindStringConcatenation)
	n.AddChild(first)
	for p.isConcatenationPart() {
		n.AddChild(p.consumeToken())
	}
	return p.finishNode(n)
}

func (p *Parser) isConcatenationPart() bool {
	return p.tok.Kind == scanner.StringLiteral || p.tok.Kind == scanner.Identifier && p.tok.Has(scanner.MacroName)
}

func (p *Parser) parseParenthesizedExpression() *Node {
	n := p.startNode(KindParenthesizedExpression)
	openPos := p.tok.Start
	n.AddChild(p.consumeToken())
	n.AddChild(p.allowInAnd(p.parseExpression))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, true, openPos))
	return p.finishNode(n)
}

// isStructLiteralStart recognises (<Name>.
func (p *Parser) isStructLiteralStart() bool {
	return p.lookAhead(func() bool {
		return p.nextToken() == scanner.LessThan &&
			p.nextToken() == scanner.Identifier &&
			p.nextToken() == scanner.GreaterThan
	})
}

func (p *Parser) parseStructLiteral() *Node {
	n := p.startNode(KindStructLiteral)
	openPos := p.tok.Start
	n.AddChild(p.consumeToken())
	n.AddChild(p.consumeToken())
	n.AddChild(p.consumeToken())
	n.AddChild(p.consumeToken())
	n.AddChild(p.parseDelimitedList(PCStructInitializerMembers, p.parseStructMember, false))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, true, openPos))
	return p.finishNode(n)
}

func (p *Parser) parseStructMember() *Node {
	if p.tok.Kind == scanner.Identifier && p.nextTokenIs(scanner.Colon) {
		n := p.startNode(KindStructMember)
		n.AddChild(p.consumeToken())
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseAssignmentExpressionOrHigher())
		return p.finishNode(n)
	}
	return p.parseAssignmentExpressionOrHigher()
}

func (p *Parser) parseArrayLiteral() *Node {
	n := p.startNode(KindArrayLiteral)
	openPos := p.tok.Start
	n.AddChild(p.consumeToken())
	n.AddChild(p.allowInAnd(func() *Node {
		return p.parseDelimitedList(PCArrayLiteralMembers, p.parseArgumentOrSpread, false)
	}))
	n.AddChild(p.parseExpected(scanner.CloseBrace))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParenBrace, scanner.CloseParen, true, openPos))
	return p.finishNode(n)
}

// parseMappingLiteral parses ([ key: value; value2, ... ]) and the sized
// empty form ([:n]).
func (p *Parser) parseMappingLiteral() *Node {
	n := p.startNode(KindMappingLiteral)
	openPos := p.tok.Start
	n.AddChild(p.consumeToken())
	if p.tok.Kind == scanner.Colon {
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseAssignmentExpressionOrHigher())
	} else {
		n.AddChild(p.allowInAnd(func() *Node {
			return p.parseDelimitedList(PCMappingLiteralMembers, p.parseMappingEntry, false)
		}))
	}
	n.AddChild(p.parseExpected(scanner.CloseBracket))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParenBracket, scanner.CloseParen, true, openPos))
	return p.finishNode(n)
}

func (p *Parser) parseMappingEntry() *Node {
	n := p.startNode(KindMappingEntry)
	n.AddChild(p.parseAssignmentExpressionOrHigher())
	if p.tok.Kind == scanner.Colon {
		n.AddChild(p.consumeToken())
		n.AddChild(p.parseAssignmentExpressionOrHigher())
		for p.tok.Kind == scanner.Semicolon {
			n.AddChild(p.consumeToken())
			n.AddChild(p.parseAssignmentExpressionOrHigher())
		}
	}
	return p.finishNode(n)
}

func (p *Parser) parseClosureExpression() *Node {
	n := p.startNode(KindClosureExpression)
	openPos := p.tok.Start
	n.AddChild(p.consumeToken())
	if p.tok.Kind != scanner.Colon {
		n.AddChild(p.allowInAnd(p.parseExpression))
	}
	n.AddChild(p.parseExpected(scanner.Colon))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParenColon, scanner.CloseParen, true, openPos))
	return p.finishNode(n)
}

func isLambdaOperand(k scanner.Kind) bool {
	if k.IsIdentifierOrKeyword() || k >= scanner.Equals && k <= scanner.Exclamation {
		return true
	}
	switch k {
	case scanner.OpenBracket, scanner.OpenParenBrace, scanner.OpenParenBracket, scanner.Comma, scanner.Question:
		return true
	}
	return false
}

// parseLambdaExpression parses #'name and operator closures such as #'+.
func (p *Parser) parseLambdaExpression() *Node {
	n := p.startNode(KindLambdaExpression)
	n.AddChild(p.consumeToken())
	p.reScanGreaterToken()
	if isLambdaOperand(p.tok.Kind) {
		n.AddChild(p.consumeToken())
	} else {
		n.AddChild(p.createMissingNode(KindIdentifier, scanner.Identifier, false, MsgIdentifierExpected))
	}
	return p.finishNode(n)
}

// parseCatchExpression parses catch(expr), catch(expr; nolog; reserve 5)
// and catch { ... }.
func (p *Parser) parseCatchExpression() *Node {
	n := p.startNode(KindCatchExpression)
	n.AddChild(p.consumeToken())
	if p.tok.Kind == scanner.OpenBrace {
		n.AddChild(p.parseBlock())
		return p.finishNode(n)
	}

	openPos := p.tok.Start
	open := p.parseExpected(scanner.OpenParen)
	n.AddChild(open)
	n.AddChild(p.allowInAnd(p.parseExpression))
	for p.tok.Kind == scanner.Semicolon || p.tok.Kind != scanner.CloseParen && p.isStartOfExpression() {
		if p.tok.Kind == scanner.Semicolon {
			n.AddChild(p.consumeToken())
			continue
		}
		n.AddChild(p.parseAssignmentExpressionOrHigher())
	}
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, !open.IsMissing(), openPos))
	return p.finishNode(n)
}

// parseInlineClosure parses function [type] (parameters) { body }.
func (p *Parser) parseInlineClosure() *Node {
	n := p.startNode(KindInlineClosure)
	n.AddChild(p.consumeToken())
	if p.tok.Kind != scanner.OpenParen {
		n.AddChild(p.parseType())
	}
	openPos := p.tok.Start
	open := p.parseExpected(scanner.OpenParen)
	n.AddChild(open)
	n.AddChild(p.parseDelimitedList(PCParameters, p.parseParameter, false))
	n.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, !open.IsMissing(), openPos))
	n.AddChild(p.parseBlock())
	return p.finishNode(n)
}
