package parser

import (
	"reflect"
	"strings"
	"testing"
)

type includeMap map[string]string

func (m includeMap) ResolveInclude(from, path string, system bool) (string, bool) {
	resolved, ok := m[path]
	return resolved, ok
}

func TestParseDirectives(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"#include \"std.h\"\n", KindIncludeDirective},
		{"#include <std.h>\n", KindIncludeDirective},
		{"#include INC\n", KindIncludeDirective},
		{"#define FOO\n", KindDefineDirective},
		{"#define FOO 1\n", KindDefineDirective},
		{"#define MAX(a, b) ((a) > (b) ? (a) : (b))\n", KindDefineDirective},
		{"#undef FOO\n", KindUndefDirective},
		{"#if defined(FOO) && BAR > 1\n#endif\n", KindIfDirective},
		{"#ifdef FOO\n#endif\n", KindIfdefDirective},
		{"#ifndef FOO\n#endif\n", KindIfdefDirective},
		{"#pragma strict_types\n", KindPragmaDirective},
		{"#pragma\n", KindPragmaDirective},
		{"#error this is not supported\n", KindLineDirective},
		{"#warning careful\n", KindLineDirective},
		{"#echo hello\n", KindLineDirective},
		{"#line 10\n", KindLineDirective},
		{"  #define INDENTED 1\n", KindDefineDirective},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sf := parse(t, tt.input)
			requireNoDiagnostics(t, sf)
			stmts := sf.Statements()
			if len(stmts) == 0 {
				t.Fatalf("no statements:\n%s", sf.Root)
			}
			if stmts[0].Kind != tt.kind {
				t.Errorf("got %v, want %v", stmts[0].Kind, tt.kind)
			}
			if !stmts[0].Has(NodeFlagInDirective) {
				t.Errorf("directive not flagged InDirective")
			}
			if sf.IsModule {
				t.Errorf("file of directives reported as a program")
			}
		})
	}
}

func TestDefineRecordsMacros(t *testing.T) {
	sf := parse(t, "#define FOO 1 + 2\n#define MAX(a, b) ((a) > (b) ? (a) : (b))\n#define CALL (x)\nint y = FOO;\n")
	requireNoDiagnostics(t, sf)

	foo, ok := sf.Macros.Lookup("FOO")
	if !ok {
		t.Fatalf("FOO not defined")
	}
	if foo.Body != "1 + 2" {
		t.Errorf("FOO body = %q", foo.Body)
	}
	if foo.IsFunctionLike() {
		t.Errorf("FOO reported as function-like")
	}

	maxMacro, ok := sf.Macros.Lookup("MAX")
	if !ok {
		t.Fatalf("MAX not defined")
	}
	if !maxMacro.IsFunctionLike() {
		t.Errorf("MAX not function-like")
	}
	if !reflect.DeepEqual(maxMacro.Parameters, []string{"a", "b"}) {
		t.Errorf("MAX parameters = %v", maxMacro.Parameters)
	}
	if maxMacro.Body != "((a) > (b) ? (a) : (b))" {
		t.Errorf("MAX body = %q", maxMacro.Body)
	}
	if maxMacro.Node == nil || maxMacro.Node.Kind != KindDefineDirective {
		t.Errorf("MAX has no defining node")
	}

	call, ok := sf.Macros.Lookup("CALL")
	if !ok {
		t.Fatalf("CALL not defined")
	}
	if call.IsFunctionLike() {
		t.Errorf("CALL with a separated '(' is function-like")
	}
	if call.Body != "(x)" {
		t.Errorf("CALL body = %q", call.Body)
	}

	if got := sf.Macros.Names(); !reflect.DeepEqual(got, []string{"CALL", "FOO", "MAX"}) {
		t.Errorf("Names() = %v", got)
	}

	use := findNode(sf.Statements()[3], KindVariableDeclaration)
	if init := use.Children[len(use.Children)-1]; !init.Has(NodeFlagMacroReference) {
		t.Errorf("use of FOO not flagged as macro reference")
	}
}

func TestMacroRedefinitionKeepsFirst(t *testing.T) {
	sf := parse(t, "#define A 1\n#define A 2\n")
	if len(sf.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(sf.Diagnostics), sf.Diagnostics)
	}
	d := sf.Diagnostics[0]
	if d.Text() != "Macro 'A' is already defined." {
		t.Errorf("message = %q", d.Text())
	}
	if d.Start != strings.LastIndex(sf.Text, "A") {
		t.Errorf("reported at %d, want the second name", d.Start)
	}
	m, _ := sf.Macros.Lookup("A")
	if m.Body != "1" {
		t.Errorf("body = %q, want the first definition", m.Body)
	}
}

func TestUndefRemovesMacro(t *testing.T) {
	sf := parse(t, "#define A 1\n#undef A\n#undef B\nint x = A;\n")
	requireNoDiagnostics(t, sf)
	if sf.Macros.IsDefined("A") {
		t.Errorf("A still defined")
	}
	decl := findNode(sf.Statements()[3], KindVariableDeclaration)
	if init := decl.Children[len(decl.Children)-1]; init.Has(NodeFlagMacroReference) {
		t.Errorf("A flagged as macro after #undef")
	}
}

func TestPredefinedMacros(t *testing.T) {
	sf := parse(t, "#define __LDMUD__ 2\nint v = __LDMUD__;\n", WithPredefinedMacros(map[string]string{"__LDMUD__": "1"}))
	m, ok := sf.Macros.Lookup("__LDMUD__")
	if !ok || !m.Predefined || m.Body != "1" {
		t.Fatalf("predefined macro lost: %+v", m)
	}
	if m.Node != nil || m.IsFunctionLike() {
		t.Errorf("predefined macro has a defining node")
	}
	if len(sf.Diagnostics) != 1 || sf.Diagnostics[0].Message != MsgMacroAlreadyDefined {
		t.Errorf("redefinition of a predefined macro not reported: %v", sf.Diagnostics)
	}
}

func TestMacrosDoNotLeakBetweenFiles(t *testing.T) {
	first := parse(t, "#define FOO 1\n")
	second := parse(t, "int x = FOO;\n")

	if !first.Macros.IsDefined("FOO") {
		t.Errorf("first file lost its macro")
	}
	if second.Macros.IsDefined("FOO") || second.Macros.Len() != 0 {
		t.Errorf("macro leaked into the second file: %v", second.Macros.Names())
	}
	decl := findNode(second.Root, KindVariableDeclaration)
	if init := decl.Children[len(decl.Children)-1]; init.Has(NodeFlagMacroReference) {
		t.Errorf("FOO flagged as macro in the second file")
	}
}

func TestIncludeReferences(t *testing.T) {
	files := includeMap{"std.h": "/inc/std.h", "sys/types.h": "/sys/types.h", "config.h": "/inc/config.h"}
	text := "#include \"std.h\"\n#include <sys/types.h>\n#include \"missing.h\"\n#define CFG \"config.h\"\n#include CFG\n"
	sf := parse(t, text, WithFileHandler(files))

	want := []IncludeReference{
		{Path: "std.h", Resolved: "/inc/std.h"},
		{Path: "sys/types.h", System: true, Resolved: "/sys/types.h"},
		{Path: "missing.h"},
		{Path: "config.h", Resolved: "/inc/config.h"},
	}
	if len(sf.IncludeFiles) != len(want) {
		t.Fatalf("got %d includes, want %d: %+v", len(sf.IncludeFiles), len(want), sf.IncludeFiles)
	}
	for i, w := range want {
		got := sf.IncludeFiles[i]
		if got.Path != w.Path || got.System != w.System || got.Resolved != w.Resolved {
			t.Errorf("include %d = %+v, want %+v", i, got, w)
		}
		if got.End <= got.Start {
			t.Errorf("include %d has empty span", i)
		}
	}

	if len(sf.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(sf.Diagnostics), sf.Diagnostics)
	}
	d := sf.Diagnostics[0]
	if d.Message != MsgCannotResolveInclude || d.Category() != CategoryWarning {
		t.Errorf("unexpected diagnostic %s", d)
	}
	if d.Start != strings.Index(text, "\"missing.h\"") {
		t.Errorf("reported at %d", d.Start)
	}
}

func TestIncludeWithoutHandler(t *testing.T) {
	sf := parse(t, "#include \"a.h\"\n")
	requireNoDiagnostics(t, sf)
	if len(sf.IncludeFiles) != 1 || sf.IncludeFiles[0].Resolved != "" {
		t.Errorf("includes = %+v", sf.IncludeFiles)
	}
}

func TestDirectiveErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   *Message
		at    string
	}{
		{"#include\n", MsgIncludePathExpected, "\n"},
		{"#undef A B\n", MsgUnexpectedTokensAfterDirective, "B"},
		{"#endif\n", MsgEndifWithoutIf, "#endif"},
		{"#else\n", MsgEndifWithoutIf, "#else"},
		{"#frobnicate now\n", MsgUnknownDirective, "#frobnicate"},
		{"#define\n", MsgIdentifierExpected, "\n"},
		{"#define F(a,,b)\n", MsgMacroParameterExpected, ",b"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sf := parse(t, tt.input)
			if len(sf.Diagnostics) == 0 {
				t.Fatalf("no diagnostics:\n%s", sf.Root)
			}
			d := sf.Diagnostics[0]
			if d.Message != tt.msg {
				t.Errorf("got %q, want %q", d.Text(), tt.msg.Text)
			}
			if want := strings.Index(tt.input, tt.at); d.Start != want {
				t.Errorf("reported at %d, want %d", d.Start, want)
			}
		})
	}
}

func TestEndifWithoutIfMessage(t *testing.T) {
	sf := parse(t, "#endif\n")
	if got := sf.Diagnostics[0].Text(); got != "'#endif' without matching '#if'." {
		t.Errorf("message = %q", got)
	}
}

func TestConditionalNesting(t *testing.T) {
	sf := parse(t, "#ifdef A\nint x;\n#else\nint y;\n#endif\n")
	requireNoDiagnostics(t, sf)

	var kinds []NodeKind
	for _, stmt := range sf.Statements() {
		kinds = append(kinds, stmt.Kind)
	}
	want := []NodeKind{KindIfdefDirective, KindVariableStatement, KindElseDirective, KindVariableStatement, KindEndifDirective}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("got %v, want %v", kinds, want)
	}
}

func TestUnterminatedConditional(t *testing.T) {
	text := "#if 1\nint x;\n"
	sf := parse(t, text)
	if len(sf.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(sf.Diagnostics), sf.Diagnostics)
	}
	d := sf.Diagnostics[0]
	if d.Message != MsgEndifExpected {
		t.Errorf("message = %q", d.Text())
	}
	if d.Start != len(text) {
		t.Errorf("reported at %d, want end of file %d", d.Start, len(text))
	}
}

func TestDirectiveTextBody(t *testing.T) {
	text := "#error don't do this  \nint x;\n"
	sf := parse(t, text)
	requireNoDiagnostics(t, sf)

	stmts := sf.Statements()
	if len(stmts) != 2 {
		t.Fatalf("got %d statements:\n%s", len(stmts), sf.Root)
	}
	body := stmts[0].FirstChildOfKind(KindDirectiveBody)
	if body == nil {
		t.Fatalf("no directive body:\n%s", sf.Root)
	}
	if got := body.Text(text); got != "don't do this" {
		t.Errorf("body = %q", got)
	}
	if stmts[1].Kind != KindVariableStatement {
		t.Errorf("directive swallowed the next line")
	}
}

func TestDirectiveInsideFunction(t *testing.T) {
	sf := parse(t, "void f() {\n#ifdef DEBUG\n  write(1);\n#endif\n}\n")
	requireNoDiagnostics(t, sf)

	block := findNode(sf.Root, KindBlock)
	stmts := block.List(0).Children
	if len(stmts) != 3 {
		t.Fatalf("got %d block statements:\n%s", len(stmts), sf.Root)
	}
	if stmts[0].Kind != KindIfdefDirective || stmts[2].Kind != KindEndifDirective {
		t.Errorf("directives not kept in place:\n%s", sf.Root)
	}
}

func TestDirectiveInsideStruct(t *testing.T) {
	sf := parse(t, "struct S {\n  int a;\n#ifdef B\n  int b;\n#endif\n}\n")
	requireNoDiagnostics(t, sf)
	members := findNode(sf.Root, KindTypeLiteral).List(0).Children
	if len(members) != 4 {
		t.Errorf("got %d members:\n%s", len(members), sf.Root)
	}
}

func TestDirectivesInsideExpressionLists(t *testing.T) {
	tests := []string{
		"int *a = ({ 1,\n#ifdef X\n  2,\n#endif\n  3 });\n",
		"int *a = ({ 1\n#ifdef X\n  , 2\n#endif\n});\n",
		"mapping m = ([ \"a\": 1,\n#ifdef X\n  \"b\": 2,\n#endif\n]);\n",
		"void f() { g(1,\n#ifdef X\n  2,\n#endif\n  3); }\n",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			sf := parse(t, input)
			requireNoDiagnostics(t, sf)

			directives := 0
			Walk(sf.Root, func(n *Node) bool {
				if n.Kind.IsDirective() {
					directives++
				}
				return true
			})
			if directives != 2 {
				t.Errorf("got %d directives, want 2:\n%s", directives, sf.Root)
			}
		})
	}
}
