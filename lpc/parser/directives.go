package parser

import (
	"strings"

	"github.com/dhamidi/lpc/lpc/scanner"
)

func directiveNodeKind(k scanner.Kind) NodeKind {
	switch k {
	case scanner.HashInclude:
		return KindIncludeDirective
	case scanner.HashDefine:
		return KindDefineDirective
	case scanner.HashUndef:
		return KindUndefDirective
	case scanner.HashIf:
		return KindIfDirective
	case scanner.HashIfdef, scanner.HashIfndef:
		return KindIfdefDirective
	case scanner.HashElif, scanner.HashElse:
		return KindElseDirective
	case scanner.HashEndif:
		return KindEndifDirective
	case scanner.HashPragma:
		return KindPragmaDirective
	}
	return KindLineDirective
}

// parseDirective parses one preprocessor line. Newlines are significant
// until the end of the line, after which the previous scanner mode returns.
func (p *Parser) parseDirective() *Node {
	return p.doInContext(NodeFlagInDirective, true, func() *Node {
		prev := p.scanner.SetReportLineBreaks(true)
		n := p.startNode(directiveNodeKind(p.tok.Kind))
		keyword := p.tok.Kind

		switch keyword {
		case scanner.HashInclude:
			n.AddChild(p.consumeToken())
			p.parseIncludeTarget(n)
		case scanner.HashDefine:
			n.AddChild(p.consumeToken())
			p.parseDefineRest(n)
		case scanner.HashUndef, scanner.HashIfdef, scanner.HashIfndef:
			n.AddChild(p.consumeToken())
			n.AddChild(p.parseIdentifier(nil))
		case scanner.HashIf, scanner.HashElif:
			n.AddChild(p.consumeToken())
			n.AddChild(p.parseExpression())
		case scanner.HashElse, scanner.HashEndif:
			n.AddChild(p.consumeToken())
		default:
			if keyword == scanner.HashUnknown {
				p.parseErrorAtCurrentToken(MsgUnknownDirective, p.tok.Value)
			}
			p.parseDirectiveText(n)
		}

		p.parseDirectiveEnd(n)
		var newline *Node
		if p.tok.Kind == scanner.NewLine {
			newline = p.currentLeaf()
			n.AddChild(newline)
		}
		p.finishNode(n)
		p.applyDirective(n)

		p.scanner.SetReportLineBreaks(prev)
		if newline != nil {
			p.nextToken()
		}
		return n
	})
}

// parseDirectiveText adds the directive keyword and the raw remainder of the
// line as a DirectiveBody.
func (p *Parser) parseDirectiveText(n *Node) {
	n.AddChild(p.currentLeaf())
	p.scanner.ScanRestOfLine()
	p.tok = p.scanner.Token()
	if p.tok.Start == p.tok.End {
		p.nextToken()
		return
	}
	body := p.startNode(KindDirectiveBody)
	body.AddChild(p.consumeToken())
	n.AddChild(p.finishNode(body))
}

func (p *Parser) parseDirectiveEnd(n *Node) {
	if p.atDirectiveEnd() {
		return
	}
	p.parseErrorAtCurrentToken(MsgUnexpectedTokensAfterDirective)
	run := p.startNode(KindSkippedTokens)
	for !p.atDirectiveEnd() {
		run.AddChild(p.consumeToken())
	}
	n.AddChild(p.finishNode(run))
}

func (p *Parser) parseIncludeTarget(n *Node) {
	switch p.tok.Kind {
	case scanner.StringLiteral, scanner.Identifier:
		n.AddChild(p.consumeToken())
	case scanner.LessThan:
		p.reScanIncludePath()
		n.AddChild(p.consumeToken())
	default:
		n.AddChild(p.createMissingNode(KindStringLiteral, scanner.StringLiteral, false, MsgIncludePathExpected))
	}
}

// parseDefineRest parses the macro name, an optional parameter list that
// must touch the name, and the body tokens up to the end of the line.
func (p *Parser) parseDefineRest(n *Node) {
	name := p.parseIdentifier(nil)
	n.AddChild(name)

	if p.tok.Kind == scanner.OpenParen && !name.IsMissing() && p.tok.FullStart == name.End && p.tok.Start == name.End {
		params := p.startNode(KindMacroParameters)
		openPos := p.tok.Start
		params.AddChild(p.consumeToken())
		params.AddChild(p.parseDelimitedList(PCMacroParameters, p.parseMacroParameter, false))
		params.AddChild(p.parseExpectedMatchingBrackets(scanner.OpenParen, scanner.CloseParen, true, openPos))
		n.AddChild(p.finishNode(params))
	}

	if p.atDirectiveEnd() {
		return
	}
	body := p.startNode(KindMacroBody)
	for !p.atDirectiveEnd() {
		body.AddChild(p.consumeToken())
	}
	n.AddChild(p.finishNode(body))
}

func (p *Parser) parseMacroParameter() *Node {
	if p.tok.Kind == scanner.DotDotDot {
		return p.consumeToken()
	}
	return p.parseIdentifier(MsgMacroParameterExpected)
}

// applyDirective records the effect of a finished directive: macro
// definitions, include references and conditional nesting. It runs for fresh
// and reused directives alike.
func (p *Parser) applyDirective(n *Node) {
	switch n.Kind {
	case KindDefineDirective:
		p.defineMacro(n)
	case KindUndefDirective:
		if name := n.FirstChildOfKind(KindIdentifier); name != nil && !name.IsMissing() {
			p.macros.Undefine(name.TokenLiteral())
		}
	case KindIncludeDirective:
		p.recordInclude(n)
	case KindIfDirective, KindIfdefDirective:
		p.conditionalDepth++
	case KindElseDirective, KindEndifDirective:
		if p.conditionalDepth == 0 {
			kw := n.Children[0]
			p.addDiagnostic(kw.Start, kw.Width(), MsgEndifWithoutIf, kw.TokenKind().String())
			return
		}
		if n.Kind == KindEndifDirective {
			p.conditionalDepth--
		}
	}
}

func (p *Parser) defineMacro(n *Node) {
	name := n.FirstChildOfKind(KindIdentifier)
	if name == nil || name.IsMissing() {
		return
	}
	m := &Macro{Name: name.TokenLiteral(), Node: n}
	if params := n.FirstChildOfKind(KindMacroParameters); params != nil {
		m.Parameters = []string{}
		if list := params.List(0); list != nil {
			for _, param := range list.Children {
				if param.Token != nil && !param.IsMissing() && param.TokenKind() != scanner.Comma {
					m.Parameters = append(m.Parameters, param.TokenLiteral())
				}
			}
		}
	}
	if body := n.FirstChildOfKind(KindMacroBody); body != nil {
		m.Body = body.Text(p.text)
	}
	if !p.macros.Define(m) {
		p.addDiagnostic(name.Start, name.Width(), MsgMacroAlreadyDefined, m.Name)
	}
}

func (p *Parser) recordInclude(n *Node) {
	if len(n.Children) < 2 {
		return
	}
	target := n.Children[1]
	if target.IsMissing() || target.Token == nil {
		return
	}
	ref := IncludeReference{Start: target.Start, End: target.End}
	switch target.TokenKind() {
	case scanner.IncludePath:
		ref.Path = strings.TrimSuffix(strings.TrimPrefix(target.TokenLiteral(), "<"), ">")
		ref.System = true
	case scanner.StringLiteral:
		ref.Path = unquote(target.TokenLiteral())
	case scanner.Identifier:
		m, ok := p.macros.Lookup(target.TokenLiteral())
		if !ok {
			return
		}
		body := strings.TrimSpace(m.Body)
		switch {
		case strings.HasPrefix(body, "\""):
			ref.Path = unquote(body)
		case strings.HasPrefix(body, "<"):
			ref.Path = strings.TrimSuffix(strings.TrimPrefix(body, "<"), ">")
			ref.System = true
		default:
			return
		}
	}

	if p.fileHandler != nil {
		resolved, ok := p.fileHandler.ResolveInclude(p.fileName, ref.Path, ref.System)
		if ok {
			ref.Resolved = resolved
		} else {
			p.addDiagnostic(target.Start, target.Width(), MsgCannotResolveInclude, ref.Path)
		}
	}
	p.includes = append(p.includes, ref)
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return strings.TrimPrefix(s, "\"")
}
