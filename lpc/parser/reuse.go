package parser

import (
	"strings"
	"sync"
)

// TextChangeRange describes one edit: OldLength bytes at Start were replaced
// by NewLength bytes.
type TextChangeRange struct {
	Start     int
	OldLength int
	NewLength int
}

func (c TextChangeRange) OldEnd() int {
	return c.Start + c.OldLength
}

func (c TextChangeRange) NewEnd() int {
	return c.Start + c.NewLength
}

func (c TextChangeRange) Delta() int {
	return c.NewLength - c.OldLength
}

// TextChangeBetween returns the smallest single change turning oldText into
// newText.
func TextChangeBetween(oldText, newText string) TextChangeRange {
	prefix := 0
	for prefix < len(oldText) && prefix < len(newText) && oldText[prefix] == newText[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(oldText)-prefix && suffix < len(newText)-prefix &&
		oldText[len(oldText)-1-suffix] == newText[len(newText)-1-suffix] {
		suffix++
	}
	return TextChangeRange{
		Start:     prefix,
		OldLength: len(oldText) - prefix - suffix,
		NewLength: len(newText) - prefix - suffix,
	}
}

// SyntaxCursor hands out nodes of a previous tree that lie outside an edit,
// keyed by their position in the new text.
type SyntaxCursor struct {
	change   TextChangeRange
	extStart int
	nodes    map[int][]*Node
}

// NewSyntaxCursor indexes the list elements of old that the change cannot
// have affected. The first token the edit touches is the one containing the
// change start or ending right at it. A node ending with the token before
// that one saw the touched token as its lookahead, so the change is widened
// to the start of that earlier token.
func NewSyntaxCursor(old *SourceFile, change TextChangeRange) *SyntaxCursor {
	c := &SyntaxCursor{change: change, nodes: make(map[int][]*Node)}
	if old == nil || old.Root == nil {
		return c
	}
	for _, leaf := range Leaves(old.Root) {
		if leaf.IsMissing() {
			continue
		}
		if leaf.End >= change.Start {
			break
		}
		c.extStart = leaf.Start
	}

	Walk(old.Root, func(n *Node) bool {
		if n.Kind != KindSyntaxList {
			return true
		}
		for _, elem := range n.Children {
			if !c.intersects(elem) {
				c.nodes[elem.Pos] = append(c.nodes[elem.Pos], elem)
			}
		}
		return true
	})
	return c
}

func (c *SyntaxCursor) intersects(n *Node) bool {
	return n.Pos <= c.change.OldEnd() && n.End >= c.extStart
}

// candidates returns old nodes starting at newPos, outermost first.
func (c *SyntaxCursor) candidates(newPos int) []*Node {
	if c == nil {
		return nil
	}
	oldPos := newPos
	switch {
	case newPos < c.change.Start:
	case newPos >= c.change.NewEnd():
		oldPos = newPos - c.change.Delta()
	default:
		return nil
	}
	return c.nodes[oldPos]
}

// Len returns the number of reusable nodes.
func (c *SyntaxCursor) Len() int {
	n := 0
	for _, nodes := range c.nodes {
		n += len(nodes)
	}
	return n
}

const (
	ReparseModeIncremental = "incremental"
	ReparseModeFull        = "full"
)

// ReparseEvent reports how UpdateSourceFile produced its result.
type ReparseEvent struct {
	Mode               string
	ProvidedOldTree    bool
	ReusedNodes        int
	VerificationRun    bool
	VerificationFailed bool
	FallbackReason     string
}

var (
	reparseObserverMu sync.RWMutex
	reparseObserver   func(ReparseEvent)
)

// SetReparseObserverForTesting installs an observer for reparse events and
// returns a function restoring the previous one.
func SetReparseObserverForTesting(fn func(ReparseEvent)) func() {
	reparseObserverMu.Lock()
	prev := reparseObserver
	reparseObserver = fn
	reparseObserverMu.Unlock()
	return func() {
		reparseObserverMu.Lock()
		reparseObserver = prev
		reparseObserverMu.Unlock()
	}
}

func emitReparseEvent(ev ReparseEvent) {
	reparseObserverMu.RLock()
	observer := reparseObserver
	reparseObserverMu.RUnlock()
	if observer != nil {
		observer(ev)
	}
}

// UpdateSourceFile reparses newText reusing nodes of old outside change.
// Edits that touch preprocessor directives fall back to a full parse, since
// they can change how the rest of the file scans. The old tree is not
// modified and stays usable.
func UpdateSourceFile(old *SourceFile, newText string, change TextChangeRange, opts ...Option) *SourceFile {
	ev := ReparseEvent{ProvidedOldTree: old != nil}
	fileName := ""
	if old != nil {
		fileName = old.FileName
	}

	if reason := incrementalFallbackReason(old, newText, change); reason != "" {
		log.Debugf("%s: full reparse: %s", fileName, reason)
		sf := ParseSourceFile(fileName, newText, opts...)
		ev.Mode = ReparseModeFull
		ev.FallbackReason = reason
		emitReparseEvent(ev)
		return sf
	}

	var settings Parser
	for _, opt := range opts {
		opt(&settings)
	}

	cursor := NewSyntaxCursor(old, change)
	withCursor := append(append([]Option(nil), opts...), WithSyntaxCursor(cursor))
	sf := ParseSourceFile(fileName, newText, withCursor...)
	ev.Mode = ReparseModeIncremental
	ev.ReusedNodes = sf.reusedNodes

	if settings.verify {
		ev.VerificationRun = true
		full := ParseSourceFile(fileName, newText, opts...)
		if !equivalentTrees(sf, full) {
			log.Warningf("%s: incremental parse differs from full parse, using full parse", fileName)
			ev.VerificationFailed = true
			ev.FallbackReason = "verification failed"
			sf = full
		}
	}
	emitReparseEvent(ev)
	return sf
}

func incrementalFallbackReason(old *SourceFile, newText string, change TextChangeRange) string {
	if old == nil || old.Root == nil {
		return "no previous tree"
	}
	if change.Start < 0 || change.OldLength < 0 || change.NewLength < 0 ||
		change.OldEnd() > len(old.Text) || change.NewEnd() > len(newText) ||
		len(newText) != len(old.Text)+change.Delta() {
		return "invalid change range"
	}
	if strings.Contains(newText[change.Start:change.NewEnd()], "#") ||
		strings.Contains(old.Text[change.Start:change.OldEnd()], "#") {
		return "edit touches a preprocessor directive"
	}
	if touchesCommentDelimiter(old.Text, change.Start, change.OldEnd()) ||
		touchesCommentDelimiter(newText, change.Start, change.NewEnd()) {
		return "edit opens or closes a comment"
	}
	touchesDirective := false
	Walk(old.Root, func(n *Node) bool {
		if touchesDirective || n.Pos > change.OldEnd() || n.End < change.Start {
			return false
		}
		if n.Kind.IsDirective() {
			touchesDirective = true
			return false
		}
		return true
	})
	if touchesDirective {
		return "edit touches a preprocessor directive"
	}
	return ""
}

// touchesCommentDelimiter reports whether text[start:end], widened by one
// byte on each side, holds "/*" or "*/". Such an edit can hide or reveal
// directive lines far from the change.
func touchesCommentDelimiter(text string, start, end int) bool {
	window := text[max(0, start-1):min(len(text), end+1)]
	return strings.Contains(window, "/*") || strings.Contains(window, "*/")
}

// equivalentTrees compares two parses of the same text, ignoring which
// nodes were reused.
func equivalentTrees(a, b *SourceFile) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Text != b.Text || !equivalentNodes(a.Root, b.Root) {
		return false
	}
	if len(a.Diagnostics) != len(b.Diagnostics) || len(a.IncludeFiles) != len(b.IncludeFiles) {
		return false
	}
	for i := range a.Diagnostics {
		ad, bd := a.Diagnostics[i], b.Diagnostics[i]
		if ad.Message != bd.Message || ad.Start != bd.Start || ad.Length != bd.Length || ad.Text() != bd.Text() {
			return false
		}
	}
	for i := range a.IncludeFiles {
		if a.IncludeFiles[i] != b.IncludeFiles[i] {
			return false
		}
	}
	an, bn := a.Macros.Names(), b.Macros.Names()
	if len(an) != len(bn) {
		return false
	}
	for i := range an {
		if an[i] != bn[i] {
			return false
		}
	}
	return true
}

func equivalentNodes(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Pos != b.Pos || a.Start != b.Start || a.End != b.End ||
		a.Flags&^NodeFlagReused != b.Flags&^NodeFlagReused {
		return false
	}
	if (a.Token == nil) != (b.Token == nil) {
		return false
	}
	if a.Token != nil && (a.Token.Kind != b.Token.Kind || a.Token.Value != b.Token.Value || a.Token.Flags != b.Token.Flags) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !equivalentNodes(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
