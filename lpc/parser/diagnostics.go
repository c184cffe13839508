package parser

import (
	"fmt"
	"sort"
)

// Diagnostic is a positioned parse problem. File is empty until the
// diagnostic is attached to a source file.
type Diagnostic struct {
	Message *Message
	Args    []string
	File    string
	Start   int
	Length  int
	Related []Diagnostic
}

func (d Diagnostic) Text() string {
	return d.Message.Format(d.Args...)
}

func (d Diagnostic) Category() Category {
	return d.Message.Category
}

func (d Diagnostic) End() int {
	return d.Start + d.Length
}

func (d Diagnostic) String() string {
	if d.File != "" {
		return fmt.Sprintf("%s:%d: %s %s: %s", d.File, d.Start, d.Message.Category, d.Message, d.Text())
	}
	return fmt.Sprintf("%d: %s %s: %s", d.Start, d.Message.Category, d.Message, d.Text())
}

// diagnosticLog is append-only during a parse except for truncation on
// speculation rollback.
type diagnosticLog struct {
	items []Diagnostic
}

func (l *diagnosticLog) len() int {
	return len(l.items)
}

func (l *diagnosticLog) truncate(n int) {
	l.items = l.items[:n]
}

// add appends d unless the previous diagnostic starts at the same offset.
func (l *diagnosticLog) add(d Diagnostic) bool {
	if n := len(l.items); n > 0 && l.items[n-1].Start == d.Start {
		return false
	}
	l.items = append(l.items, d)
	return true
}

func (l *diagnosticLog) last() *Diagnostic {
	if len(l.items) == 0 {
		return nil
	}
	return &l.items[len(l.items)-1]
}

func (l *diagnosticLog) reset() {
	l.items = nil
}

// attachDiagnostics stamps detached diagnostics with the file name and
// returns them sorted by position. Some diagnostics are reported against an
// earlier node after later ones were logged, so the same-start rule is
// applied again once sorted; the first one reported wins.
func attachDiagnostics(fileName string, diags []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, len(diags))
	for i, d := range diags {
		d.File = fileName
		if len(d.Related) > 0 {
			related := make([]Diagnostic, len(d.Related))
			for j, r := range d.Related {
				r.File = fileName
				related[j] = r
			}
			d.Related = related
		}
		out[i] = d
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})

	deduped := out[:0]
	for _, d := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Start == d.Start {
			continue
		}
		deduped = append(deduped, d)
	}
	return deduped
}
