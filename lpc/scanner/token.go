package scanner

import "sort"

// Kind identifies the lexical category of a token.
type Kind int

const (
	Unknown Kind = iota
	EOF
	NewLine

	// Literals
	Identifier
	IntLiteral
	FloatLiteral
	CharLiteral
	StringLiteral
	IncludePath
	DirectiveText

	// Punctuation
	OpenParen
	CloseParen
	OpenBrace
	CloseBrace
	OpenBracket
	CloseBracket
	OpenParenBrace
	OpenParenBracket
	OpenParenColon
	Semicolon
	Comma
	Dot
	DotDot
	DotDotDot
	Arrow
	ColonColon
	Colon
	Question
	Hash
	HashQuote

	// Operators
	Equals
	EqualsEquals
	ExclamationEquals
	LessThan
	LessThanEquals
	LessLess
	LessLessEquals
	GreaterThan
	GreaterThanEquals
	GreaterGreater
	GreaterGreaterEquals
	GreaterGreaterGreater
	GreaterGreaterGreaterEquals
	Plus
	PlusPlus
	PlusEquals
	Minus
	MinusMinus
	MinusEquals
	Asterisk
	AsteriskEquals
	Slash
	SlashEquals
	Percent
	PercentEquals
	Ampersand
	AmpersandAmpersand
	AmpersandEquals
	AmpersandAmpersandEquals
	Bar
	BarBar
	BarEquals
	BarBarEquals
	Caret
	CaretEquals
	Tilde
	Exclamation

	// Preprocessor directives
	HashInclude
	HashDefine
	HashUndef
	HashIf
	HashIfdef
	HashIfndef
	HashElif
	HashElse
	HashEndif
	HashPragma
	HashError
	HashWarning
	HashEcho
	HashLine
	HashUnknown

	// Keywords
	KeywordBreak
	KeywordBuffer
	KeywordBytes
	KeywordCase
	KeywordCatch
	KeywordClass
	KeywordClosure
	KeywordContinue
	KeywordDefault
	KeywordDeprecated
	KeywordDo
	KeywordElse
	KeywordFloat
	KeywordFor
	KeywordForeach
	KeywordFunction
	KeywordIf
	KeywordIn
	KeywordInherit
	KeywordInt
	KeywordMapping
	KeywordMixed
	KeywordNomask
	KeywordNosave
	KeywordObject
	KeywordPrivate
	KeywordProtected
	KeywordPublic
	KeywordReturn
	KeywordStatic
	KeywordStatus
	KeywordString
	KeywordStruct
	KeywordSwitch
	KeywordSymbol
	KeywordUnknown
	KeywordVarargs
	KeywordVisible
	KeywordVoid
	KeywordWhile

	firstKeyword = KeywordBreak
	lastKeyword  = KeywordWhile
)

var kindNames = map[Kind]string{
	Unknown:                     "Unknown",
	EOF:                         "EOF",
	NewLine:                     "NewLine",
	Identifier:                  "Identifier",
	IntLiteral:                  "IntLiteral",
	FloatLiteral:                "FloatLiteral",
	CharLiteral:                 "CharLiteral",
	StringLiteral:               "StringLiteral",
	IncludePath:                 "IncludePath",
	DirectiveText:               "DirectiveText",
	OpenParen:                   "(",
	CloseParen:                  ")",
	OpenBrace:                   "{",
	CloseBrace:                  "}",
	OpenBracket:                 "[",
	CloseBracket:                "]",
	OpenParenBrace:              "({",
	OpenParenBracket:            "([",
	OpenParenColon:              "(:",
	Semicolon:                   ";",
	Comma:                       ",",
	Dot:                         ".",
	DotDot:                      "..",
	DotDotDot:                   "...",
	Arrow:                       "->",
	ColonColon:                  "::",
	Colon:                       ":",
	Question:                    "?",
	Hash:                        "#",
	HashQuote:                   "#'",
	Equals:                      "=",
	EqualsEquals:                "==",
	ExclamationEquals:           "!=",
	LessThan:                    "<",
	LessThanEquals:              "<=",
	LessLess:                    "<<",
	LessLessEquals:              "<<=",
	GreaterThan:                 ">",
	GreaterThanEquals:           ">=",
	GreaterGreater:              ">>",
	GreaterGreaterEquals:        ">>=",
	GreaterGreaterGreater:       ">>>",
	GreaterGreaterGreaterEquals: ">>>=",
	Plus:                        "+",
	PlusPlus:                    "++",
	PlusEquals:                  "+=",
	Minus:                       "-",
	MinusMinus:                  "--",
	MinusEquals:                 "-=",
	Asterisk:                    "*",
	AsteriskEquals:              "*=",
	Slash:                       "/",
	SlashEquals:                 "/=",
	Percent:                     "%",
	PercentEquals:               "%=",
	Ampersand:                   "&",
	AmpersandAmpersand:          "&&",
	AmpersandEquals:             "&=",
	AmpersandAmpersandEquals:    "&&=",
	Bar:                         "|",
	BarBar:                      "||",
	BarEquals:                   "|=",
	BarBarEquals:                "||=",
	Caret:                       "^",
	CaretEquals:                 "^=",
	Tilde:                       "~",
	Exclamation:                 "!",
	HashInclude:                 "#include",
	HashDefine:                  "#define",
	HashUndef:                   "#undef",
	HashIf:                      "#if",
	HashIfdef:                   "#ifdef",
	HashIfndef:                  "#ifndef",
	HashElif:                    "#elif",
	HashElse:                    "#else",
	HashEndif:                   "#endif",
	HashPragma:                  "#pragma",
	HashError:                   "#error",
	HashWarning:                 "#warning",
	HashEcho:                    "#echo",
	HashLine:                    "#line",
	HashUnknown:                 "#<directive>",
	KeywordBreak:                "break",
	KeywordBuffer:               "buffer",
	KeywordBytes:                "bytes",
	KeywordCase:                 "case",
	KeywordCatch:                "catch",
	KeywordClass:                "class",
	KeywordClosure:              "closure",
	KeywordContinue:             "continue",
	KeywordDefault:              "default",
	KeywordDeprecated:           "deprecated",
	KeywordDo:                   "do",
	KeywordElse:                 "else",
	KeywordFloat:                "float",
	KeywordFor:                  "for",
	KeywordForeach:              "foreach",
	KeywordFunction:             "function",
	KeywordIf:                   "if",
	KeywordIn:                   "in",
	KeywordInherit:              "inherit",
	KeywordInt:                  "int",
	KeywordMapping:              "mapping",
	KeywordMixed:                "mixed",
	KeywordNomask:               "nomask",
	KeywordNosave:               "nosave",
	KeywordObject:               "object",
	KeywordPrivate:              "private",
	KeywordProtected:            "protected",
	KeywordPublic:               "public",
	KeywordReturn:               "return",
	KeywordStatic:               "static",
	KeywordStatus:               "status",
	KeywordString:               "string",
	KeywordStruct:               "struct",
	KeywordSwitch:               "switch",
	KeywordSymbol:               "symbol",
	KeywordUnknown:              "unknown",
	KeywordVarargs:              "varargs",
	KeywordVisible:              "visible",
	KeywordVoid:                 "void",
	KeywordWhile:                "while",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= firstKeyword && k <= lastKeyword
}

// IsDirective reports whether k starts a preprocessor directive line.
func (k Kind) IsDirective() bool {
	return k >= HashInclude && k <= HashUnknown
}

// IsIdentifierOrKeyword reports whether the token text is word-shaped.
func (k Kind) IsIdentifierOrKeyword() bool {
	return k == Identifier || k.IsKeyword()
}

// TokenFlags carry trivia and escape information for a token.
type TokenFlags uint8

const (
	PrecedingLineBreak TokenFlags = 1 << iota
	UnicodeEscape
	ExtendedUnicodeEscape
	Unterminated
	MacroName
	PrecedingDocComment
)

// Token is one lexical unit. FullStart includes leading trivia; Start..End is
// the token text itself.
type Token struct {
	Kind      Kind
	FullStart int
	Start     int
	End       int
	Value     string
	Flags     TokenFlags
}

func (t Token) Has(flag TokenFlags) bool {
	return t.Flags&flag != 0
}

var keywords = map[string]Kind{
	"break":      KeywordBreak,
	"buffer":     KeywordBuffer,
	"bytes":      KeywordBytes,
	"case":       KeywordCase,
	"catch":      KeywordCatch,
	"class":      KeywordClass,
	"closure":    KeywordClosure,
	"continue":   KeywordContinue,
	"default":    KeywordDefault,
	"deprecated": KeywordDeprecated,
	"do":         KeywordDo,
	"else":       KeywordElse,
	"float":      KeywordFloat,
	"for":        KeywordFor,
	"foreach":    KeywordForeach,
	"function":   KeywordFunction,
	"if":         KeywordIf,
	"in":         KeywordIn,
	"inherit":    KeywordInherit,
	"int":        KeywordInt,
	"mapping":    KeywordMapping,
	"mixed":      KeywordMixed,
	"nomask":     KeywordNomask,
	"nosave":     KeywordNosave,
	"object":     KeywordObject,
	"private":    KeywordPrivate,
	"protected":  KeywordProtected,
	"public":     KeywordPublic,
	"return":     KeywordReturn,
	"static":     KeywordStatic,
	"status":     KeywordStatus,
	"string":     KeywordString,
	"struct":     KeywordStruct,
	"switch":     KeywordSwitch,
	"symbol":     KeywordSymbol,
	"unknown":    KeywordUnknown,
	"varargs":    KeywordVarargs,
	"visible":    KeywordVisible,
	"void":       KeywordVoid,
	"while":      KeywordWhile,
}

var directives = map[string]Kind{
	"include": HashInclude,
	"define":  HashDefine,
	"undef":   HashUndef,
	"if":      HashIf,
	"ifdef":   HashIfdef,
	"ifndef":  HashIfndef,
	"elif":    HashElif,
	"else":    HashElse,
	"endif":   HashEndif,
	"pragma":  HashPragma,
	"error":   HashError,
	"warning": HashWarning,
	"echo":    HashEcho,
	"line":    HashLine,
}

func LookupKeyword(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return Identifier
}

// Keywords returns every reserved word, for spelling suggestions.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
