package parser

import (
	"github.com/dhamidi/lpc/lpc/scanner"
)

// ParsingContext identifies a kind of list being parsed. Active contexts form
// a bitset so error recovery can ask whether an enclosing list would accept
// the current token.
type ParsingContext int

const (
	PCSourceElements ParsingContext = iota
	PCBlockStatements
	PCSwitchClauses
	PCSwitchClauseStatements
	PCStructMembers
	PCTypeMembers
	PCVariableDeclarations
	PCParameters
	PCArgumentExpressions
	PCArrayLiteralMembers
	PCMappingLiteralMembers
	PCStructInitializerMembers
	PCMacroParameters
	PCInheritStrings
	PCForeachBindings
	PCUnionTypeMembers
	pcCount
)

var parsingContextNames = [...]string{
	"SourceElements",
	"BlockStatements",
	"SwitchClauses",
	"SwitchClauseStatements",
	"StructMembers",
	"TypeMembers",
	"VariableDeclarations",
	"Parameters",
	"ArgumentExpressions",
	"ArrayLiteralMembers",
	"MappingLiteralMembers",
	"StructInitializerMembers",
	"MacroParameters",
	"InheritStrings",
	"ForeachBindings",
	"UnionTypeMembers",
}

func (c ParsingContext) String() string {
	if c >= 0 && c < pcCount {
		return parsingContextNames[c]
	}
	return "Unknown"
}

type contexts uint32

func (c contexts) has(ctx ParsingContext) bool {
	return c&(1<<ctx) != 0
}

func (c contexts) with(ctx ParsingContext) contexts {
	return c | 1<<ctx
}

// isReusableContext lists contexts whose elements are self-delimiting, so a
// node from the previous tree can be spliced in without re-scanning.
func isReusableContext(ctx ParsingContext) bool {
	switch ctx {
	case PCSourceElements, PCBlockStatements, PCSwitchClauses, PCSwitchClauseStatements,
		PCStructMembers, PCTypeMembers, PCVariableDeclarations, PCParameters:
		return true
	}
	return false
}

func (p *Parser) isListElement(ctx ParsingContext, inErrorRecovery bool) bool {
	if p.atDirectiveEnd() {
		return false
	}
	switch ctx {
	case PCSourceElements, PCBlockStatements, PCSwitchClauseStatements:
		return !(p.tok.Kind == scanner.Semicolon && inErrorRecovery) && p.isStartOfStatement()
	case PCSwitchClauses:
		return p.tok.Kind == scanner.KeywordCase || p.tok.Kind == scanner.KeywordDefault
	case PCStructMembers, PCTypeMembers:
		if p.tok.Kind == scanner.Semicolon {
			return !inErrorRecovery
		}
		return p.tok.Kind.IsDirective() || p.lookAhead(p.isTypeMemberStart)
	case PCVariableDeclarations:
		return p.tok.Kind == scanner.Identifier || p.tok.Kind == scanner.Asterisk
	case PCParameters:
		return p.isStartOfParameter()
	case PCArgumentExpressions, PCArrayLiteralMembers:
		return p.tok.Kind == scanner.DotDotDot || p.isStartOfExpression()
	case PCMappingLiteralMembers, PCStructInitializerMembers:
		return p.isStartOfExpression()
	case PCMacroParameters:
		return p.tok.Kind == scanner.Identifier || p.tok.Kind == scanner.DotDotDot
	case PCInheritStrings:
		return p.tok.Kind == scanner.StringLiteral || p.tok.Kind == scanner.Identifier
	case PCForeachBindings:
		return p.tok.Kind == scanner.Identifier || p.tok.Kind == scanner.Ampersand || p.isStartOfTypeKeyword()
	case PCUnionTypeMembers:
		return p.isStartOfType()
	}
	p.assert(false, "unknown parsing context %d", ctx)
	return false
}

func (p *Parser) isListTerminator(ctx ParsingContext) bool {
	if p.tok.Kind == scanner.EOF {
		return true
	}
	if p.inDirective() && p.tok.Kind == scanner.NewLine {
		return true
	}
	switch ctx {
	case PCSourceElements:
		return false
	case PCBlockStatements, PCSwitchClauses, PCStructMembers, PCTypeMembers, PCArrayLiteralMembers:
		return p.tok.Kind == scanner.CloseBrace
	case PCSwitchClauseStatements:
		switch p.tok.Kind {
		case scanner.CloseBrace, scanner.KeywordCase, scanner.KeywordDefault:
			return true
		}
		return false
	case PCVariableDeclarations:
		// Declarators are only continued by a comma; anything else ends the
		// list and is left to the enclosing statement.
		return p.tok.Kind != scanner.Comma
	case PCParameters:
		return p.tok.Kind == scanner.CloseParen || p.tok.Kind == scanner.OpenBrace || p.tok.Kind == scanner.Semicolon
	case PCArgumentExpressions:
		return p.tok.Kind == scanner.CloseParen || p.tok.Kind == scanner.Semicolon
	case PCMappingLiteralMembers:
		return p.tok.Kind == scanner.CloseBracket || p.tok.Kind == scanner.CloseParen
	case PCStructInitializerMembers:
		return p.tok.Kind == scanner.CloseParen || p.tok.Kind == scanner.Semicolon
	case PCMacroParameters:
		return p.tok.Kind == scanner.CloseParen || p.tok.Kind == scanner.NewLine
	case PCInheritStrings:
		return p.tok.Kind == scanner.Semicolon
	case PCForeachBindings:
		switch p.tok.Kind {
		case scanner.KeywordIn, scanner.Colon, scanner.CloseParen:
			return true
		}
		return false
	case PCUnionTypeMembers:
		return p.tok.Kind == scanner.GreaterThan || p.tok.Kind == scanner.CloseParen
	}
	p.assert(false, "unknown parsing context %d", ctx)
	return false
}

// isInSomeParsingContext reports whether any active list would accept the
// current token as an element or terminator.
func (p *Parser) isInSomeParsingContext() bool {
	for ctx := ParsingContext(0); ctx < pcCount; ctx++ {
		if p.parsingContexts.has(ctx) {
			if p.isListElement(ctx, true) || p.isListTerminator(ctx) {
				return true
			}
		}
	}
	return false
}

func (p *Parser) parsingContextErrors(ctx ParsingContext) {
	if p.tok.Kind == scanner.Unknown {
		// Already reported by the scanner.
		p.parseErrorBeforeNextFinishedNode = true
		return
	}
	switch ctx {
	case PCSourceElements, PCBlockStatements, PCSwitchClauseStatements:
		p.parseErrorAtCurrentToken(MsgDeclarationOrStatementExpected)
	case PCSwitchClauses:
		p.parseErrorAtCurrentToken(MsgCaseOrDefaultExpected)
	case PCStructMembers, PCTypeMembers:
		p.parseErrorAtCurrentToken(MsgPropertyOrSignatureExpected)
	case PCVariableDeclarations:
		p.parseErrorAtCurrentToken(MsgVariableDeclarationExpected)
	case PCParameters:
		p.parseErrorAtCurrentToken(MsgParameterDeclarationExpected)
	case PCArgumentExpressions:
		p.parseErrorAtCurrentToken(MsgArgumentExpressionExpected)
	case PCArrayLiteralMembers:
		p.parseErrorAtCurrentToken(MsgExpressionOrCommaExpected)
	case PCMappingLiteralMembers:
		p.parseErrorAtCurrentToken(MsgMappingEntryExpected)
	case PCStructInitializerMembers:
		p.parseErrorAtCurrentToken(MsgPropertyAssignmentExpected)
	case PCMacroParameters:
		p.parseErrorAtCurrentToken(MsgMacroParameterExpected)
	case PCInheritStrings:
		p.parseErrorAtCurrentToken(MsgStringLiteralExpected)
	case PCForeachBindings:
		p.parseErrorAtCurrentToken(MsgForeachBindingExpected)
	case PCUnionTypeMembers:
		p.parseErrorAtCurrentToken(MsgUnionMemberExpected)
	}
}

// abortParsingListOrMoveToNextToken reports the unexpected token. It returns
// true when an enclosing list can handle the token; otherwise it consumes the
// token as skipped text and returns false.
func (p *Parser) abortParsingListOrMoveToNextToken(ctx ParsingContext, list *Node) bool {
	p.parsingContextErrors(ctx)
	if p.isInSomeParsingContext() {
		return true
	}
	p.skipToken(list)
	return false
}

// skipToken consumes the current token into a SkippedTokens node at the end
// of list, merging with a directly preceding run of skipped tokens.
func (p *Parser) skipToken(list *Node) {
	leaf := p.consumeToken()
	if n := len(list.Children); n > 0 && list.Children[n-1].Kind == KindSkippedTokens {
		run := list.Children[n-1]
		run.Children = append(run.Children, leaf)
		run.End = leaf.End
		if leaf.HasError() {
			run.Flags |= NodeFlagContainsError
		}
		return
	}
	run := p.startNode(KindSkippedTokens)
	run.AddChild(leaf)
	list.AddChild(p.finishNode(run))
}

func (p *Parser) parseList(ctx ParsingContext, parseElement func() *Node) *Node {
	saved := p.parsingContexts
	p.parsingContexts = p.parsingContexts.with(ctx)
	list := p.startNode(KindSyntaxList)

	for !p.isListTerminator(ctx) {
		if p.isListElement(ctx, false) {
			start := p.tok.FullStart
			list.AddChild(p.parseListElement(ctx, parseElement))
			if p.tok.FullStart == start && p.tok.Kind != scanner.EOF {
				p.skipToken(list)
			}
			continue
		}
		if p.abortParsingListOrMoveToNextToken(ctx, list) {
			break
		}
	}

	p.parsingContexts = saved
	return p.finishNode(list)
}

func delimiterFor(ctx ParsingContext) scanner.Kind {
	if ctx == PCUnionTypeMembers {
		return scanner.Bar
	}
	return scanner.Comma
}

// parseDelimitedList parses elements separated by the context's delimiter.
// Delimiter tokens are kept as children of the list; a trailing delimiter
// sets NodeFlagTrailingComma.
func (p *Parser) parseDelimitedList(ctx ParsingContext, parseElement func() *Node, considerSemicolonAsDelimiter bool) *Node {
	saved := p.parsingContexts
	p.parsingContexts = p.parsingContexts.with(ctx)
	list := p.startNode(KindSyntaxList)
	delimiter := delimiterFor(ctx)
	trailing := false

	for {
		p.parseDirectivesInList(ctx, list)
		if p.isListElement(ctx, false) {
			start := p.tok.FullStart
			list.AddChild(p.parseListElement(ctx, parseElement))
			trailing = false

			p.parseDirectivesInList(ctx, list)
			if p.tok.Kind == delimiter {
				list.AddChild(p.consumeToken())
				trailing = true
				continue
			}
			if p.isListTerminator(ctx) {
				break
			}

			p.parseErrorAtCurrentToken(MsgXExpected, delimiter.String())
			if considerSemicolonAsDelimiter && p.tok.Kind == scanner.Semicolon && !p.hasPrecedingLineBreak() {
				list.AddChild(p.consumeToken())
			}
			if start == p.tok.FullStart {
				p.skipToken(list)
			}
			continue
		}

		if p.isListTerminator(ctx) {
			break
		}
		if p.abortParsingListOrMoveToNextToken(ctx, list) {
			break
		}
	}

	p.parsingContexts = saved
	if trailing {
		list.Flags |= NodeFlagTrailingComma
	}
	return p.finishNode(list)
}

// parseDirectivesInList parses directive lines that sit between the
// elements of an argument, array or mapping list, as in
//
//	({ 1,
//	#ifdef EXTRA
//	   2,
//	#endif
//	   3 })
func (p *Parser) parseDirectivesInList(ctx ParsingContext, list *Node) {
	switch ctx {
	case PCArgumentExpressions, PCArrayLiteralMembers, PCMappingLiteralMembers:
	default:
		return
	}
	for p.tok.Kind.IsDirective() {
		list.AddChild(p.parseDirective())
	}
}

// parseListElement reuses a node from the previous tree when possible.
func (p *Parser) parseListElement(ctx ParsingContext, parseElement func() *Node) *Node {
	if node := p.currentNode(ctx); node != nil {
		if reused, ok := tryParse(p, func() (*Node, bool) {
			n := p.consumeNode(node)
			return n, !p.parseErrorBeforeNextFinishedNode
		}); ok {
			return reused
		}
	}
	return parseElement()
}

func (p *Parser) currentNode(ctx ParsingContext) *Node {
	if p.cursor == nil || !isReusableContext(ctx) || p.parseErrorBeforeNextFinishedNode {
		return nil
	}
	for _, node := range p.cursor.candidates(p.tok.FullStart) {
		if node.HasError() || node.IsMissing() {
			continue
		}
		want := p.contextFlags
		if node.Kind.IsDirective() {
			want |= NodeFlagInDirective
		}
		if node.Flags&NodeFlagContextFlags != want {
			continue
		}
		if canReuseNode(node, ctx) {
			return node
		}
	}
	return nil
}

// consumeNode splices a clone of an old node into the new tree and moves the
// scanner past it.
func (p *Parser) consumeNode(old *Node) *Node {
	delta := p.tok.FullStart - old.Pos
	n := old.clone(delta)
	n.Flags |= NodeFlagReused
	Walk(n, func(d *Node) bool {
		if d.Kind.IsDirective() {
			p.applyDirective(d)
		}
		return true
	})
	p.reusedNodes++
	p.scanner.ResetTokenState(n.End)
	p.nextToken()
	return n
}

func canReuseNode(n *Node, ctx ParsingContext) bool {
	switch ctx {
	case PCSourceElements:
		return n.Kind.IsDeclaration() || n.Kind.IsDirective() || n.Kind == KindEmptyStatement
	case PCBlockStatements, PCSwitchClauseStatements:
		switch n.Kind {
		case KindBlock, KindEmptyStatement, KindExpressionStatement, KindIfStatement,
			KindDoStatement, KindWhileStatement, KindForStatement, KindForEachStatement,
			KindBreakStatement, KindContinueStatement, KindReturnStatement, KindSwitchStatement,
			KindVariableStatement:
			return true
		}
		return n.Kind.IsDirective()
	case PCSwitchClauses:
		return n.Kind == KindCaseClause || n.Kind == KindDefaultClause
	case PCStructMembers, PCTypeMembers:
		return n.Kind == KindPropertySignature
	case PCVariableDeclarations:
		return n.Kind == KindVariableDeclaration
	case PCParameters:
		return n.Kind == KindParameter
	}
	return false
}
