package codebase

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/lpc/lpc/parser"
	"github.com/dhamidi/lpc/project"
)

func newTestCodebase(t *testing.T, files map[string]string) (*Codebase, string) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := project.DefaultConfig()
	cfg.IncludeDirs = []string{"sys"}
	return New(&project.Project{RootDir: root, Config: cfg}), root
}

func labels(items []CompletionItem) []string {
	var out []string
	for _, item := range items {
		out = append(out, item.Label)
	}
	return out
}

func TestScanAll(t *testing.T) {
	c, root := newTestCodebase(t, map[string]string{
		"room.c":      "int x;\n",
		"sys/std.h":   "#define STD 1\n",
		"notes.txt":   "not lpc",
		".hidden/a.c": "int y;\n",
	})
	if err := c.ScanAll(); err != nil {
		t.Fatal(err)
	}

	want := []string{filepath.Join(root, "room.c"), filepath.Join(root, "sys", "std.h")}
	if got := c.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
	f := c.GetFile(filepath.Join(root, "sys", "std.h"))
	if f == nil || f.Tree.ScriptKind != parser.ScriptKindHeader {
		t.Errorf("header not parsed as header: %+v", f)
	}
}

func TestUpdateFileReparsesIncrementally(t *testing.T) {
	var events []parser.ReparseEvent
	t.Cleanup(parser.SetReparseObserverForTesting(func(ev parser.ReparseEvent) {
		events = append(events, ev)
	}))

	c, root := newTestCodebase(t, nil)
	path := filepath.Join(root, "room.c")

	first := c.UpdateFile(path, "int a;\nint b;\nint c;\n")
	if len(first.Tree.Diagnostics) != 0 {
		t.Fatalf("diagnostics: %v", first.Tree.Diagnostics)
	}
	if len(events) != 0 {
		t.Fatalf("first parse went through UpdateSourceFile")
	}

	second := c.UpdateFile(path, "int a;\nint bb;\nint c;\n")
	if len(events) != 1 || events[0].Mode != parser.ReparseModeIncremental {
		t.Fatalf("events = %+v", events)
	}
	if second.Tree.Text != second.Content || second.Tree.FileName != path {
		t.Errorf("tree out of sync with content")
	}
	if len(second.Tree.Statements()) != 3 {
		t.Errorf("got %d statements", len(second.Tree.Statements()))
	}

	if again := c.UpdateFile(path, second.Content); again != second {
		t.Errorf("unchanged content reparsed")
	}
}

func TestApplyEdit(t *testing.T) {
	c, root := newTestCodebase(t, nil)
	path := filepath.Join(root, "room.c")

	if _, err := c.ApplyEdit(path, 0, 0, "x"); err == nil {
		t.Errorf("edit of unknown file succeeded")
	}

	c.UpdateFile(path, "int a;\nint b;\n")
	f, err := c.ApplyEdit(path, 7, 10, "mixed")
	if err != nil {
		t.Fatal(err)
	}
	if f.Content != "int a;\nmixed b;\n" {
		t.Errorf("content = %q", f.Content)
	}
	if len(f.Tree.Diagnostics) != 0 {
		t.Errorf("diagnostics: %v", f.Tree.Diagnostics)
	}

	for _, r := range [][2]int{{-1, 0}, {5, 2}, {0, 100}} {
		if _, err := c.ApplyEdit(path, r[0], r[1], ""); err == nil {
			t.Errorf("ApplyEdit(%d, %d) succeeded", r[0], r[1])
		}
	}
}

func TestOpenFilesKeepFlagAcrossUpdates(t *testing.T) {
	c, root := newTestCodebase(t, nil)
	path := filepath.Join(root, "room.c")

	c.UpdateFile(path, "int a;\n")
	c.SetOpen(path, true)
	c.UpdateFile(path, "int b;\n")
	if !c.IsOpen(path) {
		t.Errorf("open flag lost on update")
	}
	c.SetOpen(path, false)
	if c.IsOpen(path) {
		t.Errorf("file still open")
	}
	c.RemoveFile(path)
	if c.GetFile(path) != nil || c.IsOpen(path) {
		t.Errorf("file not removed")
	}
}

func TestCompletionsAtPoint(t *testing.T) {
	c, root := newTestCodebase(t, map[string]string{
		"sys/std.h":  "#define STD_ROOM \"/std/room\"\n#include \"more.h\"\n",
		"sys/more.h": "#define STR(x) x + 1\n",
	})
	if err := c.ScanAll(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(root, "room.c")
	content := "#include <std.h>\n#define SIZE 10\nint size, *sizes;\nvoid setup() {}\nvoid f() { s }\n"
	c.UpdateFile(path, content)

	offset := len("#include <std.h>\n#define SIZE 10\nint size, *sizes;\nvoid setup() {}\nvoid f() { s")
	got := labels(c.CompletionsAtPoint(path, offset))
	var filtered []string
	for _, label := range got {
		if label != "" && label[0] == 's' {
			filtered = append(filtered, label)
		}
	}
	if len(filtered) != len(got) {
		t.Errorf("completions not filtered by prefix: %v", got)
	}
	for _, w := range []string{"setup", "size", "sizes"} {
		if !contains(got, w) {
			t.Errorf("completions %v missing %q", got, w)
		}
	}

	upper := labels(c.CompletionsAtPoint(path, len("#include <std.h>\n#define SIZE 10\nint size, *sizes;\nvoid setup() {}\nvoid f() { ")))
	for _, w := range []string{"SIZE", "STD_ROOM", "STR", "f", "setup"} {
		if !contains(upper, w) {
			t.Errorf("completions %v missing %q", upper, w)
		}
	}
	if contains(upper, "while") {
		t.Errorf("keywords offered without a prefix")
	}

	if items := c.CompletionsAtPoint(filepath.Join(root, "missing.c"), 0); items != nil {
		t.Errorf("completions for unknown file: %v", items)
	}
}

func TestCompletionDetails(t *testing.T) {
	c, root := newTestCodebase(t, nil)
	path := filepath.Join(root, "room.c")
	c.UpdateFile(path, "#define MAX(a, b) ((a) > (b) ? (a) : (b))\nint query_max(int a,\n  int b) { return MAX(a, b); }\n")

	items := c.CompletionsAtPoint(path, 0)
	byLabel := make(map[string]CompletionItem)
	for _, item := range items {
		byLabel[item.Label] = item
	}

	if m := byLabel["MAX"]; m.Kind != CompletionKindMacro || m.Detail != "MAX(a, b) ((a) > (b) ? (a) : (b))" || m.InsertText != "MAX(" {
		t.Errorf("MAX = %+v", m)
	}
	if fn := byLabel["query_max"]; fn.Kind != CompletionKindFunction || fn.Detail != "int query_max(int a, int b)" {
		t.Errorf("query_max = %+v", fn)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestIncludedMacrosFollowsIncludes(t *testing.T) {
	c, root := newTestCodebase(t, map[string]string{
		"sys/a.h": "#include \"b.h\"\n#define A 1\n",
		"sys/b.h": "#include \"a.h\"\n#define B 2\n",
		"room.c":  "#include <a.h>\n",
	})
	if err := c.ScanAll(); err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, m := range c.IncludedMacros(filepath.Join(root, "room.c")) {
		names = append(names, m.Name)
	}
	if !reflect.DeepEqual(names, []string{"A", "B"}) {
		t.Errorf("included macros = %v", names)
	}
}

func TestApplyContentChange(t *testing.T) {
	c, root := newTestCodebase(t, nil)
	path := filepath.Join(root, "room.c")
	c.UpdateFile(path, "string s = \"😀\"; int a;\n")

	// "a" sits after the emoji, which is two UTF-16 code units.
	err := applyContentChange(c, path, protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{
			Start: protocol.Position{Line: 0, Character: 21},
			End:   protocol.Position{Line: 0, Character: 22},
		},
		Text: "count",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.GetFile(path).Content; got != "string s = \"😀\"; int count;\n" {
		t.Errorf("content = %q", got)
	}

	if err := applyContentChange(c, path, protocol.TextDocumentContentChangeEventWhole{Text: "int z;\n"}); err != nil {
		t.Fatal(err)
	}
	if got := c.GetFile(path).Content; got != "int z;\n" {
		t.Errorf("content = %q", got)
	}

	if err := applyContentChange(c, path, "bogus"); err == nil {
		t.Errorf("unsupported change accepted")
	}
}

func TestToProtocolDiagnostics(t *testing.T) {
	c, root := newTestCodebase(t, nil)
	path := filepath.Join(root, "room.c")
	f := c.UpdateFile(path, "void f() {\n  if (x { y; }\n}\n")

	diags := toProtocolDiagnostics(f)
	if len(diags) == 0 {
		t.Fatalf("no diagnostics")
	}

	var found bool
	for _, d := range diags {
		if d.Source == nil || *d.Source != "lpc" {
			t.Errorf("source = %v", d.Source)
		}
		if len(d.RelatedInformation) == 0 {
			continue
		}
		found = true
		if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
			t.Errorf("severity = %v", d.Severity)
		}
		rel := d.RelatedInformation[0]
		if rel.Location.URI != pathToURI(path) {
			t.Errorf("related uri = %q", rel.Location.URI)
		}
		if rel.Location.Range.Start != (protocol.Position{Line: 1, Character: 5}) {
			t.Errorf("related start = %+v", rel.Location.Range.Start)
		}
	}
	if !found {
		t.Errorf("no diagnostic points back at the open paren")
	}

	clean := c.UpdateFile(filepath.Join(root, "ok.c"), "int x;\n")
	if got := toProtocolDiagnostics(clean); got == nil || len(got) != 0 {
		t.Errorf("clean file diagnostics = %#v", got)
	}
}

func TestURIConversion(t *testing.T) {
	path := filepath.Join(string(filepath.Separator), "mud", "lib", "room.c")
	uri := pathToURI(path)
	if uri != "file:///mud/lib/room.c" {
		t.Errorf("pathToURI = %q", uri)
	}
	back, err := uriToPath(uri)
	if err != nil || back != path {
		t.Errorf("uriToPath = %q, %v", back, err)
	}
	if got, _ := uriToPath("untitled:1"); got != "untitled:1" {
		t.Errorf("uriToPath(untitled) = %q", got)
	}
}

func TestFileWatcherScan(t *testing.T) {
	c, root := newTestCodebase(t, map[string]string{
		"room.c": "int a;\n",
		"obj.c":  "int b;\n",
	})
	var changed []string
	w := NewFileWatcher(c, func(path string) {
		changed = append(changed, path)
	})

	room := filepath.Join(root, "room.c")
	obj := filepath.Join(root, "obj.c")

	w.scan()
	if len(changed) != 2 || c.GetFile(room) == nil || c.GetFile(obj) == nil {
		t.Fatalf("initial scan: changed %v", changed)
	}

	changed = nil
	w.scan()
	if len(changed) != 0 {
		t.Errorf("unchanged files reloaded: %v", changed)
	}

	future := time.Now().Add(time.Hour)
	if err := os.WriteFile(room, []byte("int aa;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(room, future, future); err != nil {
		t.Fatal(err)
	}
	w.scan()
	if !reflect.DeepEqual(changed, []string{room}) || c.GetFile(room).Content != "int aa;\n" {
		t.Errorf("modified file: changed %v", changed)
	}

	changed = nil
	c.SetOpen(obj, true)
	if err := os.Remove(obj); err != nil {
		t.Fatal(err)
	}
	w.scan()
	if len(changed) != 0 || c.GetFile(obj) == nil {
		t.Errorf("open file removed by watcher")
	}

	c.SetOpen(obj, false)
	if err := os.Remove(room); err != nil {
		t.Fatal(err)
	}
	w.scan()
	if !reflect.DeepEqual(changed, []string{room}) || c.GetFile(room) != nil {
		t.Errorf("deleted file: changed %v", changed)
	}

	w.Stop()
	w.Stop()
}
