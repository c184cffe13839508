package scanner

import (
	"testing"
)

func kinds(text string) []Kind {
	var out []Kind
	for _, tok := range Tokens(text) {
		out = append(out, tok.Kind)
	}
	return out
}

func equalKinds(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScannerKeywords(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{"int", KeywordInt},
		{"mapping", KeywordMapping},
		{"mixed", KeywordMixed},
		{"inherit", KeywordInherit},
		{"foreach", KeywordForeach},
		{"nomask", KeywordNomask},
		{"varargs", KeywordVarargs},
		{"struct", KeywordStruct},
		{"closure", KeywordClosure},
		{"catch", KeywordCatch},
		{"foo", Identifier},
		{"_bar2", Identifier},
		{"$1", Identifier},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input)
			if got := s.Scan(); got != tt.kind {
				t.Errorf("Scan() = %v, want %v", got, tt.kind)
			}
			if s.Token().Value != tt.input {
				t.Errorf("Value = %q, want %q", s.Token().Value, tt.input)
			}
		})
	}
}

func TestScannerOperators(t *testing.T) {
	tests := []struct {
		input string
		want  []Kind
	}{
		{"({ 1 })", []Kind{OpenParenBrace, IntLiteral, CloseBrace, CloseParen, EOF}},
		{"([ ])", []Kind{OpenParenBracket, CloseBracket, CloseParen, EOF}},
		{"(: :)", []Kind{OpenParenColon, Colon, CloseParen, EOF}},
		{"(::f)", []Kind{OpenParen, ColonColon, Identifier, CloseParen, EOF}},
		{"a->b", []Kind{Identifier, Arrow, Identifier, EOF}},
		{"0..10", []Kind{IntLiteral, DotDot, IntLiteral, EOF}},
		{"f(a...)", []Kind{Identifier, OpenParen, Identifier, DotDotDot, CloseParen, EOF}},
		{"#'foo", []Kind{HashQuote, Identifier, EOF}},
		{"a >>= b", []Kind{Identifier, GreaterThan, GreaterThan, Equals, Identifier, EOF}},
		{"a <<= b", []Kind{Identifier, LessLessEquals, Identifier, EOF}},
		{"x &&= y", []Kind{Identifier, AmpersandAmpersandEquals, Identifier, EOF}},
		{"x ||= y", []Kind{Identifier, BarBarEquals, Identifier, EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := kinds(tt.input)
			if !equalKinds(got, tt.want) {
				t.Errorf("kinds(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestScannerNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{"42", IntLiteral},
		{"0x1F", IntLiteral},
		{"0b101", IntLiteral},
		{"1_000", IntLiteral},
		{"3.14", FloatLiteral},
		{"1e10", FloatLiteral},
		{"2.5e-3", FloatLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input)
			if got := s.Scan(); got != tt.kind {
				t.Errorf("Scan() = %v, want %v", got, tt.kind)
			}
			if s.Token().End != len(tt.input) {
				t.Errorf("End = %d, want %d", s.Token().End, len(tt.input))
			}
		})
	}
}

func TestScannerDirectives(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{"#include", HashInclude},
		{"  #define", HashDefine},
		{"# ifdef", HashIfdef},
		{"#endif", HashEndif},
		{"#pragma", HashPragma},
		{"#frobnicate", HashUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input)
			if got := s.Scan(); got != tt.kind {
				t.Errorf("Scan() = %v, want %v", got, tt.kind)
			}
		})
	}

	// Not at line start: a plain hash.
	got := kinds("x #define")
	want := []Kind{Identifier, Hash, Identifier, EOF}
	if !equalKinds(got, want) {
		t.Errorf("kinds = %v, want %v", got, want)
	}
}

func TestScannerTrivia(t *testing.T) {
	text := "/** doc */\n  foo // tail\n bar"
	s := New(text)

	s.Scan()
	tok := s.Token()
	if tok.Kind != Identifier || tok.Value != "foo" {
		t.Fatalf("first token = %v %q", tok.Kind, tok.Value)
	}
	if tok.FullStart != 0 {
		t.Errorf("FullStart = %d, want 0", tok.FullStart)
	}
	if !tok.Has(PrecedingDocComment) || !tok.Has(PrecedingLineBreak) {
		t.Errorf("Flags = %b, want doc comment and line break", tok.Flags)
	}

	s.Scan()
	tok = s.Token()
	if tok.Value != "bar" || !tok.Has(PrecedingLineBreak) {
		t.Errorf("second token = %q flags %b", tok.Value, tok.Flags)
	}
	if text[tok.FullStart:tok.Start] != " // tail\n " {
		t.Errorf("trivia = %q", text[tok.FullStart:tok.Start])
	}
}

func TestScannerLineMode(t *testing.T) {
	s := New("#define X 1 \\\n + 2\nint")
	s.SetReportLineBreaks(true)

	var got []Kind
	for {
		k := s.Scan()
		got = append(got, k)
		if k == NewLine || k == EOF {
			break
		}
	}
	want := []Kind{HashDefine, Identifier, IntLiteral, Plus, IntLiteral, NewLine}
	if !equalKinds(got, want) {
		t.Fatalf("line tokens = %v, want %v", got, want)
	}

	if prev := s.SetReportLineBreaks(false); !prev {
		t.Errorf("SetReportLineBreaks returned %v, want true", prev)
	}
	if k := s.Scan(); k != KeywordInt {
		t.Errorf("after line = %v, want int", k)
	}
}

func TestScannerReScanGreaterToken(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		end   int
	}{
		{">", GreaterThan, 1},
		{">=", GreaterThanEquals, 2},
		{">>", GreaterGreater, 2},
		{">>=", GreaterGreaterEquals, 3},
		{">>>", GreaterGreaterGreater, 3},
		{">>>=", GreaterGreaterGreaterEquals, 4},
		{"> >", GreaterThan, 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input)
			s.Scan()
			if got := s.ReScanGreaterToken(); got != tt.kind {
				t.Errorf("ReScanGreaterToken() = %v, want %v", got, tt.kind)
			}
			if s.Token().End != tt.end {
				t.Errorf("End = %d, want %d", s.Token().End, tt.end)
			}
		})
	}
}

func TestScannerReScanIncludePath(t *testing.T) {
	s := New("#include <sys/types.h>\n")
	s.SetReportLineBreaks(true)
	s.Scan()
	s.Scan()
	if got := s.ReScanIncludePath(); got != IncludePath {
		t.Fatalf("ReScanIncludePath() = %v", got)
	}
	if v := s.Token().Value; v != "<sys/types.h>" {
		t.Errorf("Value = %q", v)
	}
	if k := s.Scan(); k != NewLine {
		t.Errorf("next = %v, want NewLine", k)
	}
}

func TestScannerSaveRestore(t *testing.T) {
	s := New("a b c")
	s.Scan()
	got := s.LookAhead(func() bool {
		s.Scan()
		s.Scan()
		return s.Token().Value == "c"
	})
	if !got {
		t.Errorf("LookAhead result = false")
	}
	if s.Token().Value != "a" {
		t.Errorf("LookAhead did not restore, token = %q", s.Token().Value)
	}

	s.TryScan(func() bool {
		s.Scan()
		return false
	})
	if s.Token().Value != "a" {
		t.Errorf("failed TryScan did not restore, token = %q", s.Token().Value)
	}

	s.TryScan(func() bool {
		s.Scan()
		return true
	})
	if s.Token().Value != "b" {
		t.Errorf("successful TryScan rewound, token = %q", s.Token().Value)
	}
}

type macroSet map[string]bool

func (m macroSet) IsDefined(name string) bool { return m[name] }

func TestScannerMacroNames(t *testing.T) {
	s := New("FOO bar")
	s.SetMacroTable(macroSet{"FOO": true})
	s.Scan()
	if !s.Token().Has(MacroName) {
		t.Errorf("FOO not flagged as macro")
	}
	s.Scan()
	if s.Token().Has(MacroName) {
		t.Errorf("bar flagged as macro")
	}
}

func TestScannerErrors(t *testing.T) {
	tests := []struct {
		input string
		code  ErrorCode
	}{
		{`"abc`, ErrUnterminatedString},
		{"'a", ErrUnterminatedChar},
		{"/* open", ErrUnterminatedComment},
		{"@", ErrInvalidCharacter},
		{"0x", ErrHexDigitExpected},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var codes []ErrorCode
			s := New(tt.input)
			s.SetOnError(func(code ErrorCode, start, length int) {
				codes = append(codes, code)
			})
			for s.Scan() != EOF {
			}
			if len(codes) != 1 || codes[0] != tt.code {
				t.Errorf("errors = %v, want [%v]", codes, tt.code)
			}
		})
	}
}

func TestTokensCoverText(t *testing.T) {
	text := "int x = 5; // c\n/* d */ string s = \"hi\";\n"
	var rebuilt string
	prevEnd := 0
	for _, tok := range Tokens(text) {
		if tok.FullStart != prevEnd {
			t.Fatalf("gap before %v: FullStart %d, previous End %d", tok.Kind, tok.FullStart, prevEnd)
		}
		rebuilt += text[tok.FullStart:tok.End]
		prevEnd = tok.End
	}
	if rebuilt != text {
		t.Errorf("rebuilt = %q, want %q", rebuilt, text)
	}
}

func TestScannerScanRestOfLine(t *testing.T) {
	tests := []struct {
		input     string
		value     string
		fullStart int
		start     int
		end       int
	}{
		{"#error oops  \nint", "oops", 6, 7, 11},
		{"#else\n", "", 5, 5, 5},
		{"#pragma", "", 7, 7, 7},
		{"#echo a \\\n b\nx", "a \\\n b", 5, 6, 12},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input)
			s.SetReportLineBreaks(true)
			s.Scan()
			if k := s.ScanRestOfLine(); k != DirectiveText {
				t.Fatalf("ScanRestOfLine() = %v", k)
			}
			tok := s.Token()
			if tok.Value != tt.value {
				t.Errorf("Value = %q, want %q", tok.Value, tt.value)
			}
			if tok.FullStart != tt.fullStart || tok.Start != tt.start || tok.End != tt.end {
				t.Errorf("span = [%d,%d-%d], want [%d,%d-%d]", tok.FullStart, tok.Start, tok.End, tt.fullStart, tt.start, tt.end)
			}
			if s.Pos() != tt.end {
				t.Errorf("Pos = %d, want %d", s.Pos(), tt.end)
			}
			if next := s.Scan(); next != NewLine && next != EOF {
				t.Errorf("next = %v, want end of line", next)
			}
		})
	}
}
