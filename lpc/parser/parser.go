package parser

import (
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/lpc/lpc/scanner"
)

var log = commonlog.GetLogger("lpc.parser")

// LanguageVersion selects the driver dialect a file is written for. The
// parser accepts the union of both grammars; the version is recorded for
// consumers.
type LanguageVersion int

const (
	LanguageLDMud LanguageVersion = iota
	LanguageFluffOS
)

func (v LanguageVersion) String() string {
	if v == LanguageFluffOS {
		return "fluffos"
	}
	return "ldmud"
}

type ScriptKind int

const (
	ScriptKindLPC ScriptKind = iota
	ScriptKindHeader
)

// FileHandler resolves include targets. The parser records include paths and
// asks the handler whether they exist; it never reads files itself.
type FileHandler interface {
	ResolveInclude(from, path string, system bool) (string, bool)
}

type IncludeReference struct {
	Path     string
	System   bool
	Start    int
	End      int
	Resolved string
}

type SourceFile struct {
	FileName        string
	Text            string
	Root            *Node
	NodeCount       int
	IdentifierCount int
	Identifiers     map[string]string
	IncludeFiles    []IncludeReference
	Macros          *MacroTable
	Diagnostics     []Diagnostic
	IsModule        bool
	LanguageVersion LanguageVersion
	ScriptKind      ScriptKind

	reusedNodes int
}

// Statements returns the top-level statement nodes.
func (sf *SourceFile) Statements() []*Node {
	if sf.Root == nil {
		return nil
	}
	if list := sf.Root.List(0); list != nil {
		return list.Children
	}
	return nil
}

type Option func(*Parser)

// WithConfig passes an opaque configuration value through to the file handler.
func WithConfig(config any) Option {
	return func(p *Parser) {
		p.config = config
	}
}

func WithFileHandler(fh FileHandler) Option {
	return func(p *Parser) {
		p.fileHandler = fh
	}
}

func WithLanguageVersion(v LanguageVersion) Option {
	return func(p *Parser) {
		p.languageVersion = v
	}
}

func WithScriptKind(k ScriptKind) Option {
	return func(p *Parser) {
		p.scriptKind = k
	}
}

func WithParentNodes() Option {
	return func(p *Parser) {
		p.setParentNodes = true
	}
}

func WithSyntaxCursor(c *SyntaxCursor) Option {
	return func(p *Parser) {
		p.cursor = c
	}
}

func WithExternalModuleIndicator(fn func(*SourceFile) bool) Option {
	return func(p *Parser) {
		p.externalModuleIndicator = fn
	}
}

// WithPredefinedMacros seeds the macro table before parsing, as a driver
// does for __VERSION__ and friends.
func WithPredefinedMacros(macros map[string]string) Option {
	return func(p *Parser) {
		p.predefined = macros
	}
}

// WithIncrementalVerification makes UpdateSourceFile compare its result with
// a full parse and fall back to the full parse on mismatch.
func WithIncrementalVerification() Option {
	return func(p *Parser) {
		p.verify = true
	}
}

// Parser is a parse session. One session parses one file at a time; sessions
// are pooled and reset between files.
type Parser struct {
	scanner *scanner.Scanner

	fileName    string
	text        string
	tok         scanner.Token
	diagnostics diagnosticLog

	contextFlags                     NodeFlags
	parseErrorBeforeNextFinishedNode bool
	parsingContexts                  contexts
	speculating                      int

	macros           *MacroTable
	includes         []IncludeReference
	conditionalDepth int
	reusedNodes      int

	config                  any
	fileHandler             FileHandler
	languageVersion         LanguageVersion
	scriptKind              ScriptKind
	setParentNodes          bool
	cursor                  *SyntaxCursor
	externalModuleIndicator func(*SourceFile) bool
	predefined              map[string]string
	verify                  bool
}

func newParser() *Parser {
	return &Parser{scanner: scanner.New("")}
}

var parserPool = sync.Pool{
	New: func() any {
		return newParser()
	},
}

// ParseSourceFile parses text into a syntax tree. It never fails: malformed
// input produces diagnostics and missing nodes.
func ParseSourceFile(fileName, text string, opts ...Option) *SourceFile {
	p := parserPool.Get().(*Parser)
	defer parserPool.Put(p)
	defer p.reset()

	p.initialize(fileName, text, opts)
	return p.parseSourceFileWorker()
}

func (p *Parser) initialize(fileName, text string, opts []Option) {
	p.reset()
	p.fileName = fileName
	p.text = text
	for _, opt := range opts {
		opt(p)
	}

	p.macros = NewMacroTable()
	for name, body := range p.predefined {
		p.macros.Define(&Macro{Name: name, Body: body, Predefined: true})
	}
	p.macros.commit()

	p.scanner.SetText(text)
	p.scanner.SetOnError(p.scanError)
	p.scanner.SetMacroTable(p.macros)
}

// reset returns the session to a clean state. The scanner is kept but holds
// no text, callbacks or macro table afterwards.
func (p *Parser) reset() {
	p.scanner.ClearState()
	p.fileName = ""
	p.text = ""
	p.tok = scanner.Token{}
	p.diagnostics.reset()
	p.contextFlags = 0
	p.parseErrorBeforeNextFinishedNode = false
	p.parsingContexts = 0
	p.speculating = 0
	p.macros = nil
	p.includes = nil
	p.conditionalDepth = 0
	p.reusedNodes = 0
	p.config = nil
	p.fileHandler = nil
	p.languageVersion = LanguageLDMud
	p.scriptKind = ScriptKindLPC
	p.setParentNodes = false
	p.cursor = nil
	p.externalModuleIndicator = nil
	p.predefined = nil
	p.verify = false
}

func (p *Parser) parseSourceFileWorker() *SourceFile {
	p.nextToken()

	root := p.startNode(KindSourceFile)
	root.AddChild(p.parseList(PCSourceElements, p.parseStatement))
	eofPos := p.tok.Start
	root.AddChild(p.parseExpected(scanner.EOF))
	if p.conditionalDepth > 0 {
		p.addDiagnostic(eofPos, 0, MsgEndifExpected)
	}
	p.finishNode(root)

	sf := &SourceFile{
		FileName:        p.fileName,
		Text:            p.text,
		Root:            root,
		IncludeFiles:    p.includes,
		Macros:          p.macros,
		Diagnostics:     attachDiagnostics(p.fileName, p.diagnostics.items),
		LanguageVersion: p.languageVersion,
		ScriptKind:      p.scriptKind,
		reusedNodes:     p.reusedNodes,
	}
	sf.NodeCount, sf.IdentifierCount, sf.Identifiers = collectStats(root)
	if p.setParentNodes {
		setParentPointers(root)
	}
	if p.externalModuleIndicator != nil {
		sf.IsModule = p.externalModuleIndicator(sf)
	} else {
		sf.IsModule = isProgramFile(sf)
	}
	if p.cursor != nil {
		log.Debugf("%s: reused %d nodes", p.fileName, p.reusedNodes)
	}
	return sf
}

// isProgramFile reports whether the file defines anything beyond
// preprocessor directives, i.e. whether it compiles to an object program.
func isProgramFile(sf *SourceFile) bool {
	for _, stmt := range sf.Statements() {
		if !stmt.Kind.IsDirective() {
			return true
		}
	}
	return false
}

func collectStats(root *Node) (nodes, identifiers int, table map[string]string) {
	table = make(map[string]string)
	Walk(root, func(n *Node) bool {
		nodes++
		if n.Kind == KindIdentifier && !n.IsMissing() {
			identifiers++
			name := n.TokenLiteral()
			if _, ok := table[name]; !ok {
				table[name] = name
			}
		}
		return true
	})
	return nodes, identifiers, table
}

func setParentPointers(n *Node) {
	for _, child := range n.Children {
		child.Parent = n
		setParentPointers(child)
	}
}

// Token access

func (p *Parser) token() scanner.Kind {
	return p.tok.Kind
}

func (p *Parser) nextToken() scanner.Kind {
	p.scanner.Scan()
	p.tok = p.scanner.Token()
	return p.tok.Kind
}

func (p *Parser) reScanGreaterToken() scanner.Kind {
	p.scanner.ReScanGreaterToken()
	p.tok = p.scanner.Token()
	return p.tok.Kind
}

func (p *Parser) reScanIncludePath() scanner.Kind {
	p.scanner.ReScanIncludePath()
	p.tok = p.scanner.Token()
	return p.tok.Kind
}

func (p *Parser) hasPrecedingLineBreak() bool {
	return p.tok.Has(scanner.PrecedingLineBreak)
}

func (p *Parser) inDirective() bool {
	return p.contextFlags.Has(NodeFlagInDirective)
}

// atDirectiveEnd reports whether the current token ends a directive line.
func (p *Parser) atDirectiveEnd() bool {
	return p.inDirective() && (p.tok.Kind == scanner.NewLine || p.tok.Kind == scanner.EOF)
}

// Diagnostics

func (p *Parser) scanError(code scanner.ErrorCode, start, length int) {
	p.parseErrorAt(start, start+length, scanErrorMessage(code))
}

func scanErrorMessage(code scanner.ErrorCode) *Message {
	switch code {
	case scanner.ErrUnterminatedString:
		return MsgUnterminatedStringLiteral
	case scanner.ErrUnterminatedChar:
		return MsgUnterminatedCharacterLiteral
	case scanner.ErrUnterminatedComment:
		return MsgAsteriskSlashExpected
	case scanner.ErrUnterminatedIncludePath:
		return MsgUnterminatedIncludePath
	case scanner.ErrDigitExpected:
		return MsgDigitExpected
	case scanner.ErrHexDigitExpected:
		return MsgHexadecimalDigitExpected
	}
	return MsgInvalidCharacter
}

// parseErrorAt records a diagnostic and marks the next finished node as
// erroneous. The returned pointer is nil when the diagnostic was deduplicated.
func (p *Parser) parseErrorAt(start, end int, m *Message, args ...string) *Diagnostic {
	var result *Diagnostic
	if p.diagnostics.add(Diagnostic{Message: m, Args: args, Start: start, Length: end - start}) {
		result = p.diagnostics.last()
	}
	p.parseErrorBeforeNextFinishedNode = true
	return result
}

func (p *Parser) parseErrorAtCurrentToken(m *Message, args ...string) *Diagnostic {
	return p.parseErrorAt(p.tok.Start, p.tok.End, m, args...)
}

func (p *Parser) parseErrorAtNode(n *Node, m *Message, args ...string) *Diagnostic {
	return p.parseErrorAt(n.Start, n.End, m, args...)
}

// addDiagnostic records a diagnostic that does not mark any node as
// erroneous, used for preprocessor bookkeeping problems.
func (p *Parser) addDiagnostic(start, length int, m *Message, args ...string) {
	p.diagnostics.add(Diagnostic{Message: m, Args: args, Start: start, Length: length})
}

func (p *Parser) parseExpected(kind scanner.Kind) *Node {
	if p.tok.Kind == kind {
		return p.consumeToken()
	}
	return p.createMissingNode(leafKind(kind), kind, false, MsgXExpected, kind.String())
}

func (p *Parser) parseExpectedWithMessage(kind scanner.Kind, m *Message, args ...string) *Node {
	if p.tok.Kind == kind {
		return p.consumeToken()
	}
	return p.createMissingNode(leafKind(kind), kind, false, m, args...)
}

func (p *Parser) parseOptional(kind scanner.Kind) *Node {
	if p.tok.Kind == kind {
		return p.consumeToken()
	}
	return nil
}

// parseExpectedMatchingBrackets expects the closing bracket of a pair. When
// the opener was present, the diagnostic points back at it.
func (p *Parser) parseExpectedMatchingBrackets(open, close scanner.Kind, openParsed bool, openPos int) *Node {
	if p.tok.Kind == close {
		return p.consumeToken()
	}
	d := p.parseErrorAtCurrentToken(MsgXExpected, close.String())
	if openParsed && d != nil {
		d.Related = append(d.Related, Diagnostic{
			Message: MsgMatchingBracket,
			Args:    []string{open.String(), close.String()},
			Start:   openPos,
			Length:  len(open.String()),
		})
	}
	return p.createMissingNode(KindToken, close, false, nil)
}

func (p *Parser) parseIdentifier(m *Message) *Node {
	if p.tok.Kind == scanner.Identifier {
		return p.consumeToken()
	}
	if m == nil {
		m = MsgIdentifierExpected
	}
	return p.createMissingNode(KindIdentifier, scanner.Identifier, false, m)
}

// Context flags

func (p *Parser) setContextFlag(on bool, flag NodeFlags) {
	if on {
		p.contextFlags |= flag
	} else {
		p.contextFlags &^= flag
	}
}

func (p *Parser) doInContext(flag NodeFlags, on bool, fn func() *Node) *Node {
	saved := p.contextFlags
	p.setContextFlag(on, flag)
	n := fn()
	p.contextFlags = saved
	return n
}

func (p *Parser) disallowInAnd(fn func() *Node) *Node {
	return p.doInContext(NodeFlagDisallowIn, true, fn)
}

func (p *Parser) allowInAnd(fn func() *Node) *Node {
	return p.doInContext(NodeFlagDisallowIn, false, fn)
}
