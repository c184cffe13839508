package format_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/lpc/format"
	"github.com/dhamidi/lpc/lpc/parser"
)

func TestLineMapPosition(t *testing.T) {
	t.Parallel()

	lines := format.NewLineMap("ab\ncd\n\néf")
	assert.Equal(t, 4, lines.LineCount())

	tests := []struct {
		offset int
		want   format.Position
	}{
		{0, format.Position{Line: 1, Column: 1}},
		{2, format.Position{Line: 1, Column: 3}},
		{3, format.Position{Line: 2, Column: 1}},
		{6, format.Position{Line: 3, Column: 1}},
		{7, format.Position{Line: 4, Column: 1}},
		{9, format.Position{Line: 4, Column: 2}},
		{10, format.Position{Line: 4, Column: 3}},
		{100, format.Position{Line: 4, Column: 3}},
		{-5, format.Position{Line: 1, Column: 1}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lines.Position(tt.offset), "offset %d", tt.offset)
	}
}

func TestLineMapUTF16(t *testing.T) {
	t.Parallel()

	lines := format.NewLineMap("a😀b\nc")

	line, char := lines.UTF16(5)
	assert.Equal(t, 0, line)
	assert.Equal(t, 3, char)

	line, char = lines.UTF16(7)
	assert.Equal(t, 1, line)
	assert.Equal(t, 0, char)

	assert.Equal(t, 5, lines.Offset(0, 3))
	assert.Equal(t, 1, lines.Offset(0, 1))
	assert.Equal(t, 6, lines.Offset(0, 99))
	assert.Equal(t, 7, lines.Offset(1, 0))
	assert.Equal(t, 8, lines.Offset(5, 0))
	assert.Equal(t, 0, lines.Offset(-1, 0))
}

func TestLineMapOffsetCRLF(t *testing.T) {
	t.Parallel()

	lines := format.NewLineMap("ab\r\ncd\r\n")
	assert.Equal(t, 2, lines.Offset(0, 2))
	assert.Equal(t, 2, lines.Offset(0, 99))
	assert.Equal(t, 4, lines.Offset(1, 0))
	assert.Equal(t, 6, lines.Offset(1, 5))
	assert.Equal(t, 8, lines.Offset(2, 0))
}

func TestLineMapLineText(t *testing.T) {
	t.Parallel()

	lines := format.NewLineMap("x\r\ny")
	assert.Equal(t, "x", lines.LineText(1))
	assert.Equal(t, "y", lines.LineText(2))
	assert.Equal(t, "", lines.LineText(3))
	assert.Equal(t, "", lines.LineText(0))
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, name := range format.Names {
		enc, err := format.New(name, &bytes.Buffer{})
		require.NoError(t, err, name)
		assert.NotNil(t, enc)
	}

	_, err := format.New("xml", &bytes.Buffer{})
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestASTJSONEncoder(t *testing.T) {
	t.Parallel()

	sf := parser.ParseSourceFile("room.c", "int x")

	var buf bytes.Buffer
	require.NoError(t, format.NewASTJSONEncoder(&buf).Encode(sf))

	var doc struct {
		File        string `json:"file"`
		Diagnostics []struct {
			Code     string `json:"code"`
			Category string `json:"category"`
			Message  string `json:"message"`
			Span     struct {
				Start format.Position `json:"start"`
			} `json:"span"`
		} `json:"diagnostics"`
		Root struct {
			Kind     string `json:"kind"`
			Children []json.RawMessage
		} `json:"root"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "room.c", doc.File)
	assert.Equal(t, "SourceFile", doc.Root.Kind)
	assert.Len(t, doc.Root.Children, 2)
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, "LPC1005", doc.Diagnostics[0].Code)
	assert.Equal(t, "error", doc.Diagnostics[0].Category)
	assert.Equal(t, "';' expected.", doc.Diagnostics[0].Message)
	assert.Equal(t, format.Position{Line: 1, Column: 6}, doc.Diagnostics[0].Span.Start)
	assert.Contains(t, buf.String(), `"missing": true`)
	assert.Contains(t, buf.String(), `"token": "x"`)
}

func TestTreeEncoder(t *testing.T) {
	t.Parallel()

	sf := parser.ParseSourceFile("room.c", "int x;\nint y")
	text, err := format.NewTreeEncoder(nil).MarshalText(sf)
	require.NoError(t, err)

	out := string(text)
	assert.True(t, strings.HasPrefix(out, "SourceFile 1:1-2:6\n"), out)
	assert.Contains(t, out, `Identifier 1:5-1:6 "x"`)
	assert.Contains(t, out, `Identifier 2:5-2:6 "y"`)
	assert.Contains(t, out, "<missing")
	assert.Contains(t, out, "2:6: error LPC1005: ';' expected.\n")
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		`inherit "/std/" "room";`,
		`#define MAX(a, b) ((a) > (b) ? (a) : (b))`,
		`#include "missing.h"`,
		`int x, *y = ({});`,
		`static void create() {}`,
		`struct Point { int x; int y; }`,
	}, "\n")
	sf := parser.ParseSourceFile("room.c", text, parser.WithPredefinedMacros(map[string]string{"__HOST__": `"mud"`}))
	require.Empty(t, sf.Diagnostics)

	s := format.Summarize(sf)
	assert.Equal(t, "room.c", s.File)
	assert.Equal(t, "ldmud", s.Driver)
	assert.Equal(t, []string{"/std/room"}, s.Inherits)
	assert.Equal(t, []format.SummaryDecl{{Name: "create", At: format.Position{Line: 5, Column: 13}}}, s.Functions)
	require.Len(t, s.Variables, 2)
	assert.Equal(t, "x", s.Variables[0].Name)
	assert.Equal(t, "y", s.Variables[1].Name)
	require.Len(t, s.Structs, 1)
	assert.Equal(t, "Point", s.Structs[0].Name)

	require.Len(t, s.Macros, 2)
	assert.Equal(t, "MAX", s.Macros[0].Name)
	assert.Equal(t, []string{"a", "b"}, s.Macros[0].Parameters)
	assert.Equal(t, &format.Position{Line: 2, Column: 1}, s.Macros[0].At)
	assert.Equal(t, "__HOST__", s.Macros[1].Name)
	assert.True(t, s.Macros[1].Predefined)
	assert.Nil(t, s.Macros[1].At)

	require.Len(t, s.Includes, 1)
	assert.Equal(t, "missing.h", s.Includes[0].Path)
	assert.Equal(t, format.Position{Line: 3, Column: 10}, s.Includes[0].At)
	assert.Zero(t, s.Errors)
	assert.Positive(t, s.Nodes)
}

func TestSummaryEncoder(t *testing.T) {
	t.Parallel()

	sf := parser.ParseSourceFile("broken.c", "int x = ;")
	var buf bytes.Buffer
	require.NoError(t, format.NewSummaryEncoder(&buf).Encode(sf))

	var s format.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &s))
	assert.Equal(t, "broken.c", s.File)
	assert.Positive(t, s.Errors)
}
