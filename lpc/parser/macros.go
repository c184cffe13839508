package parser

import (
	"sort"
)

// Macro is a #define entry. Node is the defining directive and is nil for
// predefined macros.
type Macro struct {
	Name       string
	Node       *Node
	Parameters []string
	Body       string
	Predefined bool
}

// IsFunctionLike reports whether the macro was defined with a parameter list.
func (m *Macro) IsFunctionLike() bool {
	return m.Node != nil && m.Node.FirstChildOfKind(KindMacroParameters) != nil
}

type macroChange struct {
	name string
	prev *Macro
}

// MacroTable maps names to definitions. Changes are journaled so that a
// speculative parse can roll them back.
type MacroTable struct {
	macros  map[string]*Macro
	journal []macroChange
}

func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]*Macro)}
}

// IsDefined is safe to call on a nil table.
func (t *MacroTable) IsDefined(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.macros[name]
	return ok
}

func (t *MacroTable) Lookup(name string) (*Macro, bool) {
	if t == nil {
		return nil, false
	}
	m, ok := t.macros[name]
	return m, ok
}

// Define adds m unless a macro of the same name exists. The first definition
// wins; the return value reports whether m was added.
func (t *MacroTable) Define(m *Macro) bool {
	if _, ok := t.macros[m.Name]; ok {
		return false
	}
	t.journal = append(t.journal, macroChange{name: m.Name})
	t.macros[m.Name] = m
	return true
}

func (t *MacroTable) Undefine(name string) bool {
	prev, ok := t.macros[name]
	if !ok {
		return false
	}
	t.journal = append(t.journal, macroChange{name: name, prev: prev})
	delete(t.macros, name)
	return true
}

func (t *MacroTable) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.macros))
	for name := range t.macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *MacroTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.macros)
}

func (t *MacroTable) mark() int {
	return len(t.journal)
}

// rollback undoes every change made since mark returned n.
func (t *MacroTable) rollback(n int) {
	for i := len(t.journal) - 1; i >= n; i-- {
		c := t.journal[i]
		if c.prev != nil {
			t.macros[c.name] = c.prev
		} else {
			delete(t.macros, c.name)
		}
	}
	t.journal = t.journal[:n]
}

// commit forgets the journal. It must not be called while speculating.
func (t *MacroTable) commit() {
	t.journal = t.journal[:0]
}
