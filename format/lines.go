package format

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Position is a 1-based line and column. Columns count characters, not
// bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// LineMap converts byte offsets in a source text to line and column
// positions.
type LineMap struct {
	text   string
	starts []int
}

func NewLineMap(text string) *LineMap {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineMap{text: text, starts: starts}
}

func (m *LineMap) LineCount() int {
	return len(m.starts)
}

// line returns the 0-based line containing offset, which is clamped to the
// text.
func (m *LineMap) line(offset int) (int, int) {
	offset = max(0, min(offset, len(m.text)))
	i := sort.Search(len(m.starts), func(i int) bool {
		return m.starts[i] > offset
	}) - 1
	return i, offset
}

// Position returns the 1-based position of offset.
func (m *LineMap) Position(offset int) Position {
	line, offset := m.line(offset)
	col := utf8.RuneCountInString(m.text[m.starts[line]:offset])
	return Position{Line: line + 1, Column: col + 1}
}

// UTF16 returns the 0-based line and UTF-16 code unit column of offset, the
// coordinates used by the language server protocol.
func (m *LineMap) UTF16(offset int) (line, character int) {
	line, offset = m.line(offset)
	for _, r := range m.text[m.starts[line]:offset] {
		if r >= 0x10000 {
			character += 2
		} else {
			character++
		}
	}
	return line, character
}

// Offset is the inverse of UTF16. Positions past the end of a line clamp to
// the end of its content, before any "\r\n", and lines past the end of the
// text clamp to its length.
func (m *LineMap) Offset(line, character int) int {
	if line < 0 {
		return 0
	}
	if line >= len(m.starts) {
		return len(m.text)
	}

	start := m.starts[line]
	end := len(m.text)
	if line+1 < len(m.starts) {
		end = m.starts[line+1] - 1
		if end > start && m.text[end-1] == '\r' {
			end--
		}
	}

	units := 0
	for i, r := range m.text[start:end] {
		if units >= character {
			return start + i
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
	}
	return end
}

// LineText returns the 1-based line without its line terminator.
func (m *LineMap) LineText(line int) string {
	if line < 1 || line > len(m.starts) {
		return ""
	}
	start := m.starts[line-1]
	end := len(m.text)
	if line < len(m.starts) {
		end = m.starts[line] - 1
	}
	return strings.TrimSuffix(m.text[start:end], "\r")
}
