package parser

import (
	"fmt"

	"github.com/dhamidi/lpc/lpc/scanner"
)

type speculationKind int

const (
	// speculationTryParse keeps the result when the callback succeeds.
	speculationTryParse speculationKind = iota
	// speculationLookahead always rewinds.
	speculationLookahead
	// speculationReparse rewinds the position but keeps diagnostics.
	speculationReparse
)

// InvariantError is raised by panic when the parser detects a bug in itself.
// It is never produced by malformed input.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "lpc parser invariant violated: " + e.Message
}

func (p *Parser) assert(cond bool, format string, args ...any) {
	if !cond {
		panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
	}
}

type parserState struct {
	scan             scanner.State
	tok              scanner.Token
	diagnostics      int
	parseError       bool
	contextFlags     NodeFlags
	macros           int
	includes         int
	conditionalDepth int
	reusedNodes      int
}

func (p *Parser) saveState() parserState {
	return parserState{
		scan:             p.scanner.Save(),
		tok:              p.tok,
		diagnostics:      p.diagnostics.len(),
		parseError:       p.parseErrorBeforeNextFinishedNode,
		contextFlags:     p.contextFlags,
		macros:           p.macros.mark(),
		includes:         len(p.includes),
		conditionalDepth: p.conditionalDepth,
		reusedNodes:      p.reusedNodes,
	}
}

func (p *Parser) restoreState(s parserState, keepDiagnostics bool) {
	p.scanner.Restore(s.scan)
	p.tok = s.tok
	if !keepDiagnostics {
		p.diagnostics.truncate(s.diagnostics)
	}
	p.parseErrorBeforeNextFinishedNode = s.parseError
	p.macros.rollback(s.macros)
	p.includes = p.includes[:s.includes]
	p.conditionalDepth = s.conditionalDepth
	p.reusedNodes = s.reusedNodes
}

// speculationHelper runs callback and rewinds the session when it fails or
// when kind is not a try-parse. Callbacks must leave the context flags as they
// found them.
func (p *Parser) speculationHelper(callback func() bool, kind speculationKind) bool {
	saved := p.saveState()

	p.speculating++
	result := callback()
	p.speculating--

	p.assert(p.contextFlags == saved.contextFlags,
		"context flags changed during speculation: %s -> %s", saved.contextFlags, p.contextFlags)

	if !result || kind != speculationTryParse {
		p.restoreState(saved, kind == speculationReparse)
	}
	return result
}

func (p *Parser) lookAhead(callback func() bool) bool {
	return p.speculationHelper(callback, speculationLookahead)
}

func (p *Parser) reparse(callback func() bool) bool {
	return p.speculationHelper(callback, speculationReparse)
}

// tryParse commits to fn's result when it reports success and rewinds
// otherwise.
func tryParse[T any](p *Parser, fn func() (T, bool)) (T, bool) {
	var out T
	ok := p.speculationHelper(func() bool {
		v, ok := fn()
		if ok {
			out = v
		}
		return ok
	}, speculationTryParse)
	return out, ok
}

// nextTokenIs reports whether the token after the current one has kind k.
func (p *Parser) nextTokenIs(k scanner.Kind) bool {
	return p.lookAhead(func() bool {
		return p.nextToken() == k
	})
}

func (p *Parser) nextTokenIsAdjacent(k scanner.Kind) bool {
	end := p.tok.End
	return p.lookAhead(func() bool {
		return p.nextToken() == k && p.tok.FullStart == end && p.tok.Start == end
	})
}
