package scanner

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrorCode identifies a lexical error reported through the error callback.
type ErrorCode int

const (
	ErrUnterminatedString ErrorCode = iota + 1
	ErrUnterminatedChar
	ErrUnterminatedComment
	ErrUnterminatedIncludePath
	ErrInvalidCharacter
	ErrDigitExpected
	ErrHexDigitExpected
)

// ErrorFunc receives lexical errors. start and length are byte offsets into
// the scanned text.
type ErrorFunc func(code ErrorCode, start, length int)

// MacroLookup reports whether an identifier names a preprocessor macro.
type MacroLookup interface {
	IsDefined(name string) bool
}

// State is an opaque scanner position used for speculative scanning.
type State struct {
	pos int
	tok Token
}

// Scanner produces tokens on demand. It never fails: malformed input yields
// Unknown or flagged tokens and a callback to the error function.
type Scanner struct {
	text             string
	pos              int
	tok              Token
	reportLineBreaks bool
	onError          ErrorFunc
	macros           MacroLookup
}

func New(text string) *Scanner {
	s := &Scanner{}
	s.SetText(text)
	return s
}

func (s *Scanner) SetText(text string) {
	s.text = text
	s.pos = 0
	s.tok = Token{}
}

func (s *Scanner) Text() string {
	return s.text
}

func (s *Scanner) SetOnError(fn ErrorFunc) {
	s.onError = fn
}

func (s *Scanner) SetMacroTable(m MacroLookup) {
	s.macros = m
}

// SetReportLineBreaks toggles line mode, in which newlines become NewLine
// tokens instead of trivia. It returns the previous setting.
func (s *Scanner) SetReportLineBreaks(report bool) bool {
	prev := s.reportLineBreaks
	s.reportLineBreaks = report
	return prev
}

// ClearState drops the text and callbacks so the scanner holds no references.
func (s *Scanner) ClearState() {
	s.text = ""
	s.pos = 0
	s.tok = Token{}
	s.reportLineBreaks = false
	s.onError = nil
	s.macros = nil
}

func (s *Scanner) Token() Token {
	return s.tok
}

func (s *Scanner) Pos() int {
	return s.pos
}

func (s *Scanner) Save() State {
	return State{pos: s.pos, tok: s.tok}
}

func (s *Scanner) Restore(st State) {
	s.pos = st.pos
	s.tok = st.tok
}

// LookAhead runs fn and rewinds the scanner regardless of its result.
func (s *Scanner) LookAhead(fn func() bool) bool {
	st := s.Save()
	defer s.Restore(st)
	return fn()
}

// TryScan runs fn and rewinds the scanner only when fn reports false.
func (s *Scanner) TryScan(fn func() bool) bool {
	st := s.Save()
	ok := fn()
	if !ok {
		s.Restore(st)
	}
	return ok
}

// ResetTokenState moves the scanner to pos; the next Scan starts there.
func (s *Scanner) ResetTokenState(pos int) {
	if pos > len(s.text) {
		pos = len(s.text)
	}
	s.pos = pos
	s.tok = Token{Kind: Unknown, FullStart: pos, Start: pos, End: pos}
}

func (s *Scanner) error(code ErrorCode, start, length int) {
	if s.onError != nil {
		s.onError(code, start, length)
	}
}

func (s *Scanner) peek() byte {
	if s.pos >= len(s.text) {
		return 0
	}
	return s.text[s.pos]
}

func (s *Scanner) peekN(n int) byte {
	if s.pos+n >= len(s.text) {
		return 0
	}
	return s.text[s.pos+n]
}

// Scan advances to the next token and returns its kind.
func (s *Scanner) Scan() Kind {
	fullStart := s.pos
	flags, newline := s.skipTrivia()
	if newline {
		return NewLine
	}
	start := s.pos
	if s.pos >= len(s.text) {
		s.tok = Token{Kind: EOF, FullStart: fullStart, Start: start, End: start, Flags: flags}
		return EOF
	}

	kind, extra := s.scanToken()
	s.tok = Token{
		Kind:      kind,
		FullStart: fullStart,
		Start:     start,
		End:       s.pos,
		Value:     s.text[start:s.pos],
		Flags:     flags | extra,
	}
	return kind
}

// skipTrivia consumes whitespace and comments. In line mode a newline stops
// the scan and becomes the current token.
func (s *Scanner) skipTrivia() (TokenFlags, bool) {
	var flags TokenFlags
	fullStart := s.pos
	for s.pos < len(s.text) {
		ch := s.text[s.pos]
		switch {
		case ch == '\n':
			if s.reportLineBreaks {
				start := s.pos
				s.pos++
				s.tok = Token{Kind: NewLine, FullStart: fullStart, Start: start, End: s.pos, Value: "\n", Flags: flags}
				return flags, true
			}
			flags |= PrecedingLineBreak
			s.pos++
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v':
			s.pos++
		case ch == '\\' && s.peekN(1) == '\n':
			s.pos += 2
		case ch == '\\' && s.peekN(1) == '\r' && s.peekN(2) == '\n':
			s.pos += 3
		case ch == '/' && s.peekN(1) == '/':
			for s.pos < len(s.text) && s.text[s.pos] != '\n' {
				s.pos++
			}
		case ch == '/' && s.peekN(1) == '*':
			start := s.pos
			if s.peekN(2) == '*' && s.peekN(3) != '/' {
				flags |= PrecedingDocComment
			}
			end := strings.Index(s.text[s.pos+2:], "*/")
			if end < 0 {
				s.pos = len(s.text)
				s.error(ErrUnterminatedComment, start, s.pos-start)
			} else {
				s.pos += end + 4
			}
			if strings.IndexByte(s.text[start:s.pos], '\n') >= 0 && !s.reportLineBreaks {
				flags |= PrecedingLineBreak
			}
		default:
			return flags, false
		}
	}
	return flags, false
}

func (s *Scanner) scanToken() (Kind, TokenFlags) {
	ch := s.peek()

	switch {
	case isIdentStart(s.text[s.pos:]):
		return s.scanIdentOrKeyword()
	case isDigit(ch):
		return s.scanNumber(), 0
	case ch == '$' && isDigit(s.peekN(1)):
		s.pos++
		for isDigit(s.peek()) {
			s.pos++
		}
		return Identifier, 0
	case ch == '"':
		return s.scanString()
	case ch == '\'':
		return s.scanChar()
	case ch == '#':
		return s.scanHash(), 0
	}
	return s.scanOperator(), 0
}

func (s *Scanner) scanIdentOrKeyword() (Kind, TokenFlags) {
	start := s.pos
	for s.pos < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[s.pos:])
		if !isIdentPart(r) {
			break
		}
		s.pos += size
	}
	word := s.text[start:s.pos]
	kind := LookupKeyword(word)
	if kind == Identifier && s.macros != nil && s.macros.IsDefined(word) {
		return kind, MacroName
	}
	return kind, 0
}

func (s *Scanner) scanNumber() Kind {
	start := s.pos
	if s.peek() == '0' && (s.peekN(1) == 'x' || s.peekN(1) == 'X') {
		s.pos += 2
		digits := s.pos
		for isHexDigit(s.peek()) || s.peek() == '_' {
			s.pos++
		}
		if s.pos == digits {
			s.error(ErrHexDigitExpected, start, s.pos-start)
		}
		return IntLiteral
	}
	if s.peek() == '0' && (s.peekN(1) == 'b' || s.peekN(1) == 'B') && isBinaryDigit(s.peekN(2)) {
		s.pos += 2
		for isBinaryDigit(s.peek()) || s.peek() == '_' {
			s.pos++
		}
		return IntLiteral
	}
	if s.peek() == '0' && (s.peekN(1) == 'o' || s.peekN(1) == 'O') && isOctalDigit(s.peekN(2)) {
		s.pos += 2
		for isOctalDigit(s.peek()) || s.peek() == '_' {
			s.pos++
		}
		return IntLiteral
	}

	kind := IntLiteral
	for isDigit(s.peek()) || s.peek() == '_' {
		s.pos++
	}
	if s.peek() == '.' && isDigit(s.peekN(1)) {
		kind = FloatLiteral
		s.pos++
		for isDigit(s.peek()) || s.peek() == '_' {
			s.pos++
		}
	}
	if s.peek() == 'e' || s.peek() == 'E' {
		n := 1
		if s.peekN(1) == '+' || s.peekN(1) == '-' {
			n = 2
		}
		if isDigit(s.peekN(n)) {
			kind = FloatLiteral
			s.pos += n
			for isDigit(s.peek()) {
				s.pos++
			}
		}
	}
	return kind
}

func (s *Scanner) scanEscape() TokenFlags {
	// s.pos is on the backslash
	s.pos++
	switch s.peek() {
	case 0:
		return 0
	case '\r':
		s.pos++
		if s.peek() == '\n' {
			s.pos++
		}
		return 0
	case 'u':
		s.pos++
		if s.peek() == '{' {
			for s.pos < len(s.text) && s.text[s.pos] != '}' && s.text[s.pos] != '\n' && s.text[s.pos] != '"' {
				s.pos++
			}
			if s.peek() == '}' {
				s.pos++
			}
			return ExtendedUnicodeEscape
		}
		for i := 0; i < 4 && isHexDigit(s.peek()); i++ {
			s.pos++
		}
		return UnicodeEscape
	}
	_, size := utf8.DecodeRuneInString(s.text[s.pos:])
	s.pos += size
	return 0
}

func (s *Scanner) scanString() (Kind, TokenFlags) {
	start := s.pos
	s.pos++
	var flags TokenFlags
	for {
		ch := s.peek()
		if s.pos >= len(s.text) || ch == '\n' {
			s.error(ErrUnterminatedString, start, s.pos-start)
			return StringLiteral, flags | Unterminated
		}
		if ch == '"' {
			s.pos++
			return StringLiteral, flags
		}
		if ch == '\\' {
			flags |= s.scanEscape()
			continue
		}
		s.pos++
	}
}

func (s *Scanner) scanChar() (Kind, TokenFlags) {
	start := s.pos
	s.pos++
	var flags TokenFlags
	switch ch := s.peek(); {
	case s.pos >= len(s.text) || ch == '\n':
		s.error(ErrUnterminatedChar, start, s.pos-start)
		return CharLiteral, Unterminated
	case ch == '\\':
		flags |= s.scanEscape()
	default:
		_, size := utf8.DecodeRuneInString(s.text[s.pos:])
		s.pos += size
	}
	if s.peek() != '\'' {
		s.error(ErrUnterminatedChar, start, s.pos-start)
		return CharLiteral, flags | Unterminated
	}
	s.pos++
	return CharLiteral, flags
}

// scanHash handles '#', "#'" and, at the start of a line, directive keywords.
func (s *Scanner) scanHash() Kind {
	if s.peekN(1) == '\'' {
		s.pos += 2
		return HashQuote
	}
	if !s.atLineStart(s.pos) {
		s.pos++
		return Hash
	}
	i := s.pos + 1
	for i < len(s.text) && (s.text[i] == ' ' || s.text[i] == '\t') {
		i++
	}
	wordStart := i
	for i < len(s.text) && isASCIILetter(s.text[i]) {
		i++
	}
	if i == wordStart {
		s.pos++
		return Hash
	}
	s.pos = i
	if kind, ok := directives[s.text[wordStart:i]]; ok {
		return kind
	}
	return HashUnknown
}

func (s *Scanner) atLineStart(pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch s.text[i] {
		case ' ', '\t':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func (s *Scanner) scanOperator() Kind {
	ch := s.peek()
	next := s.peekN(1)

	single := func(k Kind) Kind {
		s.pos++
		return k
	}
	double := func(k Kind) Kind {
		s.pos += 2
		return k
	}
	triple := func(k Kind) Kind {
		s.pos += 3
		return k
	}

	switch ch {
	case '(':
		switch next {
		case '{':
			return double(OpenParenBrace)
		case '[':
			return double(OpenParenBracket)
		case ':':
			if s.peekN(2) != ':' {
				return double(OpenParenColon)
			}
		}
		return single(OpenParen)
	case ')':
		return single(CloseParen)
	case '{':
		return single(OpenBrace)
	case '}':
		return single(CloseBrace)
	case '[':
		return single(OpenBracket)
	case ']':
		return single(CloseBracket)
	case ';':
		return single(Semicolon)
	case ',':
		return single(Comma)
	case '?':
		return single(Question)
	case '~':
		return single(Tilde)
	case '.':
		if next == '.' {
			if s.peekN(2) == '.' {
				return triple(DotDotDot)
			}
			return double(DotDot)
		}
		return single(Dot)
	case ':':
		if next == ':' {
			return double(ColonColon)
		}
		return single(Colon)
	case '=':
		if next == '=' {
			return double(EqualsEquals)
		}
		return single(Equals)
	case '!':
		if next == '=' {
			return double(ExclamationEquals)
		}
		return single(Exclamation)
	case '<':
		if next == '<' {
			if s.peekN(2) == '=' {
				return triple(LessLessEquals)
			}
			return double(LessLess)
		}
		if next == '=' {
			return double(LessThanEquals)
		}
		return single(LessThan)
	case '>':
		// Compound forms are produced on demand by ReScanGreaterToken.
		return single(GreaterThan)
	case '+':
		switch next {
		case '+':
			return double(PlusPlus)
		case '=':
			return double(PlusEquals)
		}
		return single(Plus)
	case '-':
		switch next {
		case '-':
			return double(MinusMinus)
		case '=':
			return double(MinusEquals)
		case '>':
			return double(Arrow)
		}
		return single(Minus)
	case '*':
		if next == '=' {
			return double(AsteriskEquals)
		}
		return single(Asterisk)
	case '/':
		if next == '=' {
			return double(SlashEquals)
		}
		return single(Slash)
	case '%':
		if next == '=' {
			return double(PercentEquals)
		}
		return single(Percent)
	case '^':
		if next == '=' {
			return double(CaretEquals)
		}
		return single(Caret)
	case '&':
		if next == '&' {
			if s.peekN(2) == '=' {
				return triple(AmpersandAmpersandEquals)
			}
			return double(AmpersandAmpersand)
		}
		if next == '=' {
			return double(AmpersandEquals)
		}
		return single(Ampersand)
	case '|':
		if next == '|' {
			if s.peekN(2) == '=' {
				return triple(BarBarEquals)
			}
			return double(BarBar)
		}
		if next == '=' {
			return double(BarEquals)
		}
		return single(Bar)
	}

	start := s.pos
	_, size := utf8.DecodeRuneInString(s.text[s.pos:])
	s.pos += size
	s.error(ErrInvalidCharacter, start, size)
	return Unknown
}

// ReScanGreaterToken extends a '>' token into '>=', '>>', '>>=', '>>>' or
// '>>>='. It is a no-op for any other token.
func (s *Scanner) ReScanGreaterToken() Kind {
	if s.tok.Kind != GreaterThan {
		return s.tok.Kind
	}
	pos := s.tok.End
	kind := GreaterThan
	switch {
	case strings.HasPrefix(s.text[pos:], ">>="):
		kind, pos = GreaterGreaterGreaterEquals, pos+3
	case strings.HasPrefix(s.text[pos:], ">>"):
		kind, pos = GreaterGreaterGreater, pos+2
	case strings.HasPrefix(s.text[pos:], ">="):
		kind, pos = GreaterGreaterEquals, pos+2
	case strings.HasPrefix(s.text[pos:], ">"):
		kind, pos = GreaterGreater, pos+1
	case strings.HasPrefix(s.text[pos:], "="):
		kind, pos = GreaterThanEquals, pos+1
	}
	s.pos = pos
	s.tok.Kind = kind
	s.tok.End = pos
	s.tok.Value = s.text[s.tok.Start:pos]
	return kind
}

// ReScanIncludePath turns a '<' token into a single IncludePath token covering
// "<path>". The path may not span lines.
func (s *Scanner) ReScanIncludePath() Kind {
	if s.tok.Kind != LessThan {
		return s.tok.Kind
	}
	pos := s.tok.Start + 1
	for pos < len(s.text) && s.text[pos] != '>' && s.text[pos] != '\n' {
		pos++
	}
	if pos < len(s.text) && s.text[pos] == '>' {
		pos++
	} else {
		s.tok.Flags |= Unterminated
		s.error(ErrUnterminatedIncludePath, s.tok.Start, pos-s.tok.Start)
	}
	s.pos = pos
	s.tok.Kind = IncludePath
	s.tok.End = pos
	s.tok.Value = s.text[s.tok.Start:pos]
	return IncludePath
}

// ScanRestOfLine turns the raw text after the current token, up to but not
// including the next unescaped newline, into a DirectiveText token. Leading
// blanks are trivia. When the rest of the line is blank the scanner stays put
// and the token is empty.
func (s *Scanner) ScanRestOfLine() Kind {
	fullStart := s.tok.End
	pos := fullStart
	for pos < len(s.text) && (s.text[pos] == ' ' || s.text[pos] == '\t') {
		pos++
	}
	start := pos
	for pos < len(s.text) {
		if s.text[pos] == '\n' {
			break
		}
		if s.text[pos] == '\\' && pos+1 < len(s.text) && s.text[pos+1] == '\n' {
			pos += 2
			continue
		}
		pos++
	}
	body := strings.TrimRight(s.text[start:pos], " \t\r")
	if body == "" {
		s.tok = Token{Kind: DirectiveText, FullStart: fullStart, Start: fullStart, End: fullStart}
		s.pos = fullStart
		return DirectiveText
	}
	s.pos = start + len(body)
	s.tok = Token{Kind: DirectiveText, FullStart: fullStart, Start: start, End: s.pos, Value: body}
	return DirectiveText
}

// Tokens scans text to EOF, returning every token including the EOF token.
func Tokens(text string) []Token {
	s := New(text)
	var out []Token
	for {
		kind := s.Scan()
		out = append(out, s.Token())
		if kind == EOF {
			return out
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isBinaryDigit(ch byte) bool {
	return ch == '0' || ch == '1'
}

func isOctalDigit(ch byte) bool {
	return ch >= '0' && ch <= '7'
}

func isASCIILetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentStart(rest string) bool {
	if rest == "" {
		return false
	}
	if rest[0] < utf8.RuneSelf {
		return isASCIILetter(rest[0])
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	if r < utf8.RuneSelf {
		return isASCIILetter(byte(r)) || isDigit(byte(r))
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsIdentifierText reports whether s would scan as a single identifier.
func IsIdentifierText(s string) bool {
	if !isIdentStart(s) {
		return false
	}
	for _, r := range s {
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}
