package parser

import (
	"math"
	"strings"

	"github.com/dhamidi/lpc/lpc/scanner"
)

// parseErrorForMissingSemicolonAfter reports a missing ';' after an
// expression statement. A lone identifier is usually a misspelt keyword, so
// it gets a more specific message.
func (p *Parser) parseErrorForMissingSemicolonAfter(expr *Node) {
	if expr.Kind != KindIdentifier || expr.IsMissing() || !scanner.IsIdentifierText(expr.TokenLiteral()) {
		p.parseErrorAtCurrentToken(MsgXExpected, scanner.Semicolon.String())
		return
	}

	name := expr.TokenLiteral()
	switch name {
	case "const", "let", "var", "declare":
		p.parseErrorAtNode(expr, MsgDeclarationNotAllowedHere, name)
		return
	}

	suggestion := spellingSuggestion(name, viableKeywordSuggestions())
	if suggestion == "" {
		suggestion = spaceSuggestion(name)
	}
	if suggestion != "" {
		p.parseErrorAtNode(expr, MsgUnknownKeywordDidYouMean, suggestion)
		return
	}
	if p.tok.Kind == scanner.Unknown {
		return
	}
	p.parseErrorAtNode(expr, MsgUnexpectedKeywordOrIdentifier)
}

func viableKeywordSuggestions() []string {
	var out []string
	for _, kw := range scanner.Keywords() {
		if len(kw) > 2 {
			out = append(out, kw)
		}
	}
	return out
}

// spaceSuggestion handles a keyword glued to the following identifier, as
// in "ifx" for "if x". The longest matching keyword wins.
func spaceSuggestion(name string) string {
	best := ""
	for _, kw := range scanner.Keywords() {
		if len(kw) < 2 || len(kw) <= len(best) || !strings.HasPrefix(name, kw) {
			continue
		}
		if rest := name[len(kw):]; rest != "" && scanner.IsIdentifierText(rest) {
			best = kw
		}
	}
	if best == "" {
		return ""
	}
	return best + " " + name[len(best):]
}

// spellingSuggestion returns the candidate closest to name, or "" when none
// is close enough. Substitutions cost 2, insertions and deletions 1, and a
// change of case alone 0.1.
func spellingSuggestion(name string, candidates []string) string {
	maxLengthDifference := max(2, int(math.Floor(float64(len(name))*0.34)))
	bestDistance := math.Floor(float64(len(name))*0.4) + 1
	best := ""
	for _, candidate := range candidates {
		if candidate == name {
			continue
		}
		diff := len(candidate) - len(name)
		if diff < 0 {
			diff = -diff
		}
		if diff > maxLengthDifference {
			continue
		}
		if len(candidate) < 3 && !strings.EqualFold(candidate, name) {
			continue
		}
		distance, ok := levenshteinWithMax(name, candidate, bestDistance-0.1)
		if !ok {
			continue
		}
		bestDistance = distance
		best = candidate
	}
	return best
}

func levenshteinWithMax(s1, s2 string, limit float64) (float64, bool) {
	previous := make([]float64, len(s2)+1)
	current := make([]float64, len(s2)+1)
	for j := range previous {
		previous[j] = float64(j)
	}

	for i := 1; i <= len(s1); i++ {
		c1 := s1[i-1]
		current[0] = float64(i)
		colMin := current[0]
		for j := 1; j <= len(s2); j++ {
			c2 := s2[j-1]
			substitution := previous[j-1]
			switch {
			case c1 == c2:
			case lowerASCII(c1) == lowerASCII(c2):
				substitution += 0.1
			default:
				substitution += 2
			}
			dist := min(previous[j]+1, current[j-1]+1, substitution)
			current[j] = dist
			colMin = min(colMin, dist)
		}
		if colMin > limit {
			return 0, false
		}
		previous, current = current, previous
	}

	result := previous[len(s2)]
	if result > limit {
		return 0, false
	}
	return result, true
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
