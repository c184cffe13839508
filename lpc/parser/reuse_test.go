package parser

import (
	"strings"
	"testing"
)

func recordReparses(t *testing.T) *[]ReparseEvent {
	t.Helper()
	var events []ReparseEvent
	restore := SetReparseObserverForTesting(func(ev ReparseEvent) {
		events = append(events, ev)
	})
	t.Cleanup(restore)
	return &events
}

func lastEvent(t *testing.T, events *[]ReparseEvent) ReparseEvent {
	t.Helper()
	if len(*events) == 0 {
		t.Fatalf("no reparse event")
	}
	return (*events)[len(*events)-1]
}

func TestTextChangeBetween(t *testing.T) {
	tests := []struct {
		old, new string
		want     TextChangeRange
	}{
		{"hello world", "hello there world", TextChangeRange{6, 0, 6}},
		{"abc", "", TextChangeRange{0, 3, 0}},
		{"", "abc", TextChangeRange{0, 0, 3}},
		{"abc", "abc", TextChangeRange{3, 0, 0}},
		{"aXc", "aYc", TextChangeRange{1, 1, 1}},
		{"aaa", "aa", TextChangeRange{2, 1, 0}},
		{"int a;\nint b;\nint c;\n", "int a;\nint c;\n", TextChangeRange{11, 7, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.old+"->"+tt.new, func(t *testing.T) {
			got := TextChangeBetween(tt.old, tt.new)
			if got != tt.want {
				t.Errorf("TextChangeBetween() = %+v, want %+v", got, tt.want)
			}
			if rebuilt := tt.old[:got.Start] + tt.new[got.Start:got.NewEnd()] + tt.old[got.OldEnd():]; rebuilt != tt.new {
				t.Errorf("applying change gives %q", rebuilt)
			}
		})
	}
}

func TestUpdateSourceFileReusesUnchangedStatements(t *testing.T) {
	events := recordReparses(t)
	oldText := "int a;\nint b;\nint c;\n"
	newText := "int a;\nint bb;\nint c;\n"
	old := parse(t, oldText)
	before := old.Root.StringWithPositions()

	change := TextChangeBetween(oldText, newText)
	if change != (TextChangeRange{12, 0, 1}) {
		t.Fatalf("change = %+v", change)
	}
	updated := UpdateSourceFile(old, newText, change)

	if !equivalentTrees(updated, parse(t, newText)) {
		t.Errorf("incremental tree differs from full parse:\n%s", updated.Root.StringWithPositions())
	}
	stmts := updated.Statements()
	if len(stmts) != 3 {
		t.Fatalf("got %d statements", len(stmts))
	}
	if !stmts[0].Has(NodeFlagReused) || !stmts[2].Has(NodeFlagReused) {
		t.Errorf("unchanged statements not reused:\n%s", updated.Root)
	}
	if stmts[1].Has(NodeFlagReused) {
		t.Errorf("edited statement reused")
	}
	if got := stmts[2].Start; got != strings.LastIndex(newText, "int") {
		t.Errorf("reused statement at %d, want it shifted", got)
	}

	ev := lastEvent(t, events)
	if ev.Mode != ReparseModeIncremental || !ev.ProvidedOldTree || ev.ReusedNodes < 2 || ev.FallbackReason != "" {
		t.Errorf("event = %+v", ev)
	}

	if old.Root.StringWithPositions() != before || old.Text != oldText {
		t.Errorf("old tree modified")
	}
	for _, stmt := range old.Statements() {
		if stmt.Has(NodeFlagReused) {
			t.Errorf("old statement marked reused")
		}
	}
}

func TestUpdateSourceFileMatchesFullParse(t *testing.T) {
	tests := []struct {
		old, new string
	}{
		{"int a;\nint b;\nint c;\n", "int a;\nint c;\n"},
		{"int a;\nint c;\n", "int a;\nint b;\nint c;\n"},
		{"void f() {\n  x = 1;\n  y = 2;\n}\n", "void f() {\n  x = 10;\n  y = 2;\n}\n"},
		{"void f() {\n  x = 1;\n}\nvoid g() {}\n", "void f() {\n  x = 1\n}\nvoid g() {}\n"},
		{"int a = 1 + 2;\n", "int a = 1 + 2 * 3;\n"},
		{"mapping m = ([ \"a\": 1 ]);\n", "mapping m = ([ \"a\": 1, \"b\": 2 ]);\n"},
		{"int f(int a) { return a; }\n", "int f(int a, int b) { return a; }\n"},
		{"struct S { int a; }\nint x;\n", "struct S { int a; int b; }\nint x;\n"},
		{"int a;\n", "/* c */ int a;\n"},
		{"int a; /* x */\nint b;\n", "int a; /* x\nint b;\n"},
	}

	for _, tt := range tests {
		t.Run(tt.new, func(t *testing.T) {
			old := parse(t, tt.old)
			updated := UpdateSourceFile(old, tt.new, TextChangeBetween(tt.old, tt.new))
			full := parse(t, tt.new)
			if !equivalentTrees(updated, full) {
				t.Errorf("incremental:\n%sfull:\n%s", updated.Root.StringWithPositions(), full.Root.StringWithPositions())
			}
		})
	}
}

func TestUpdateSourceFileRescansListTerminator(t *testing.T) {
	oldText := "void f(int c) {\n  switch (c) { case 1: break; default: return; }\n}\n"
	at := strings.Index(oldText, "default") + len("def")
	newText := oldText[:at] + "unction f" + oldText[at:]
	if !strings.Contains(newText, "defunction fault:") {
		t.Fatalf("bad edit: %q", newText)
	}

	old := parse(t, oldText)
	updated := UpdateSourceFile(old, newText, TextChangeBetween(oldText, newText))
	full := parse(t, newText)
	if !equivalentTrees(updated, full) {
		t.Errorf("incremental:\n%s%v\nfull:\n%s%v",
			updated.Root.StringWithPositions(), updated.Diagnostics,
			full.Root.StringWithPositions(), full.Diagnostics)
	}
}

const editSweepSource = `inherit "/std/room";

int count, *list = ({ 1, 2 });

void create() {
    int i;
    switch (count) {
    case 1: break;
    case 2: i = 2; break;
    default: return;
    }
    if (i) { count++; } else { count--; }
    foreach (int x in list) i += x;
}

int add(int a, int b) { return a + b; }
`

func TestUpdateSourceFileEditSweep(t *testing.T) {
	old := parse(t, editSweepSource)
	failures := 0

	check := func(newText string) {
		t.Helper()
		updated := UpdateSourceFile(old, newText, TextChangeBetween(editSweepSource, newText))
		full := ParseSourceFile("test.c", newText)
		if equivalentTrees(updated, full) {
			return
		}
		failures++
		t.Errorf("incremental parse of %q differs from full parse:\nincremental:\n%s%v\nfull:\n%s%v",
			newText, updated.Root.StringWithPositions(), updated.Diagnostics,
			full.Root.StringWithPositions(), full.Diagnostics)
		if failures >= 5 {
			t.FailNow()
		}
	}

	for i := 0; i <= len(editSweepSource); i++ {
		for _, insert := range []string{"x", " ", ";", "}"} {
			check(editSweepSource[:i] + insert + editSweepSource[i:])
		}
		if i < len(editSweepSource) {
			check(editSweepSource[:i] + editSweepSource[i+1:])
		}
	}
}

func TestUpdateSourceFileFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		old     *SourceFile
		newText string
		change  TextChangeRange
		reason  string
	}{
		{
			name:    "no previous tree",
			newText: "int x;\n",
			change:  TextChangeRange{0, 0, 7},
			reason:  "no previous tree",
		},
		{
			name:    "invalid range",
			old:     ParseSourceFile("test.c", "int a;\n"),
			newText: "int b;\n",
			change:  TextChangeRange{0, 100, 1},
			reason:  "invalid change range",
		},
		{
			name:    "negative start",
			old:     ParseSourceFile("test.c", "int a;\n"),
			newText: "int a;\n",
			change:  TextChangeRange{-1, 0, 0},
			reason:  "invalid change range",
		},
		{
			name:    "edit inside directive",
			old:     ParseSourceFile("test.c", "#define X 1\nint a;\n"),
			newText: "#define X 2\nint a;\n",
			change:  TextChangeRange{10, 1, 1},
			reason:  "edit touches a preprocessor directive",
		},
		{
			name:    "edit opens a comment",
			old:     ParseSourceFile("test.c", "int a;\nint b;\n"),
			newText: "int a;\n/*int b;\n",
			change:  TextChangeRange{7, 0, 2},
			reason:  "edit opens or closes a comment",
		},
		{
			name:    "edit inserts directive",
			old:     ParseSourceFile("test.c", "int a;\n"),
			newText: "int a;\n#define Y\n",
			change:  TextChangeRange{7, 0, 10},
			reason:  "edit touches a preprocessor directive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := recordReparses(t)
			sf := UpdateSourceFile(tt.old, tt.newText, tt.change)
			if !equivalentTrees(sf, parse(t, tt.newText)) {
				t.Errorf("fallback result differs from full parse")
			}
			if sf.Text != tt.newText {
				t.Errorf("Text = %q", sf.Text)
			}
			ev := lastEvent(t, events)
			if ev.Mode != ReparseModeFull || ev.FallbackReason != tt.reason {
				t.Errorf("event = %+v, want full parse because %q", ev, tt.reason)
			}
			if ev.ProvidedOldTree != (tt.old != nil) {
				t.Errorf("ProvidedOldTree = %v", ev.ProvidedOldTree)
			}
		})
	}
}

func TestUpdateSourceFileReplaysReusedDirectives(t *testing.T) {
	oldText := "#define X 1\nint a;\nint b;\n"
	newText := "#define X 1\nint a;\nint bc;\n"
	old := parse(t, oldText)
	updated := UpdateSourceFile(old, newText, TextChangeBetween(oldText, newText))

	stmts := updated.Statements()
	if !stmts[0].Has(NodeFlagReused) {
		t.Errorf("directive not reused:\n%s", updated.Root)
	}
	m, ok := updated.Macros.Lookup("X")
	if !ok || m.Body != "1" {
		t.Fatalf("macro X lost after reuse: %+v", m)
	}
	if m.Node != stmts[0] {
		t.Errorf("macro points at a node outside the new tree")
	}
	if updated.Macros == old.Macros {
		t.Errorf("macro table shared between trees")
	}
	if !equivalentTrees(updated, parse(t, newText)) {
		t.Errorf("incremental tree differs from full parse")
	}
}

func TestUpdateSourceFileVerification(t *testing.T) {
	events := recordReparses(t)
	oldText := "int a;\nvoid f() { a = 1; }\n"
	newText := "int a;\nvoid f() { a = 2; }\n"
	old := parse(t, oldText)

	updated := UpdateSourceFile(old, newText, TextChangeBetween(oldText, newText), WithIncrementalVerification())
	if updated.Text != newText {
		t.Errorf("Text = %q", updated.Text)
	}
	ev := lastEvent(t, events)
	if !ev.VerificationRun || ev.VerificationFailed || ev.Mode != ReparseModeIncremental {
		t.Errorf("event = %+v", ev)
	}
}

func TestUpdateSourceFileKeepsFileName(t *testing.T) {
	old := ParseSourceFile("room.c", "int a;\n")
	updated := UpdateSourceFile(old, "int ab;\n", TextChangeRange{5, 0, 1})
	if updated.FileName != "room.c" {
		t.Errorf("FileName = %q", updated.FileName)
	}
}

func TestSyntaxCursorSkipsEditedNodes(t *testing.T) {
	old := parse(t, "int a;\nint b;\nint c;\n")
	cursor := NewSyntaxCursor(old, TextChangeRange{12, 0, 1})
	if cursor.Len() == 0 {
		t.Fatalf("no reusable nodes")
	}
	if got := cursor.candidates(12); got != nil {
		t.Errorf("candidates inside the edit = %v", got)
	}
	if got := cursor.candidates(0); len(got) == 0 || got[0].Kind != KindVariableStatement {
		t.Errorf("candidates(0) = %v", got)
	}
	if got := cursor.candidates(14); len(got) == 0 || got[0].Start != 14 {
		t.Errorf("candidates after the edit = %v", got)
	}

	var nilCursor *SyntaxCursor
	if nilCursor.candidates(0) != nil {
		t.Errorf("nil cursor returned candidates")
	}
}
