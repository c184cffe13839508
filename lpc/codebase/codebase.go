package codebase

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/lpc/format"
	"github.com/dhamidi/lpc/lpc/parser"
	"github.com/dhamidi/lpc/lpc/scanner"
	"github.com/dhamidi/lpc/project"
)

var log = commonlog.GetLogger("lpc.codebase")

// Codebase holds the parsed state of every source file in a project. Files
// are reparsed incrementally when their content changes.
type Codebase struct {
	mu      sync.RWMutex
	project *project.Project
	files   map[string]*FileInfo
}

type FileInfo struct {
	Path    string
	Content string
	Tree    *parser.SourceFile
	Lines   *format.LineMap

	// Open is set while an editor owns the file's content.
	Open bool
}

func New(p *project.Project) *Codebase {
	return &Codebase{
		project: p,
		files:   make(map[string]*FileInfo),
	}
}

func (c *Codebase) RootDir() string {
	return c.project.RootDir
}

func (c *Codebase) Project() *project.Project {
	return c.project
}

// ScanAll parses every source file in the project. Files that cannot be
// read are logged and skipped.
func (c *Codebase) ScanAll() error {
	paths, err := c.project.SourceFiles()
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := c.ScanFile(path); err != nil {
			log.Warningf("%s", err)
		}
	}
	log.Infof("scanned %d files in %s", len(paths), c.project.RootDir)
	return nil
}

// ScanFile reads path from disk and updates the codebase with it.
func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	c.UpdateFile(path, string(content))
	return nil
}

// UpdateFile replaces the content of path. A file seen before is reparsed
// incrementally against its previous tree.
func (c *Codebase) UpdateFile(path, content string) *FileInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.files[path]
	if prev != nil && prev.Content == content {
		return prev
	}

	var change parser.TextChangeRange
	if prev != nil {
		change = parser.TextChangeBetween(prev.Content, content)
	}
	return c.updateLocked(path, prev, content, change)
}

// ApplyEdit replaces the bytes [start, end) of path with text.
func (c *Codebase) ApplyEdit(path string, start, end int, text string) (*FileInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.files[path]
	if prev == nil {
		return nil, fmt.Errorf("edit %s: file not loaded", path)
	}
	if start < 0 || start > end || end > len(prev.Content) {
		return nil, fmt.Errorf("edit %s: range %d-%d outside content of length %d", path, start, end, len(prev.Content))
	}

	content := prev.Content[:start] + text + prev.Content[end:]
	change := parser.TextChangeRange{Start: start, OldLength: end - start, NewLength: len(text)}
	return c.updateLocked(path, prev, content, change), nil
}

func (c *Codebase) updateLocked(path string, prev *FileInfo, content string, change parser.TextChangeRange) *FileInfo {
	opts := c.project.ParseOptions(path)

	var tree *parser.SourceFile
	if prev != nil && prev.Tree != nil {
		tree = parser.UpdateSourceFile(prev.Tree, content, change, opts...)
	} else {
		tree = parser.ParseSourceFile(path, content, opts...)
	}

	info := &FileInfo{
		Path:    path,
		Content: content,
		Tree:    tree,
		Lines:   format.NewLineMap(content),
	}
	if prev != nil {
		info.Open = prev.Open
	}
	c.files[path] = info
	return info
}

// SetOpen marks whether an editor owns path.
func (c *Codebase) SetOpen(path string, open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f := c.files[path]; f != nil {
		f.Open = open
	}
}

func (c *Codebase) IsOpen(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f := c.files[path]
	return f != nil && f.Open
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Paths returns the loaded file paths in sorted order.
func (c *Codebase) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// IncludedMacros returns the macros defined by files that path includes,
// following includes transitively through loaded files.
func (c *Codebase) IncludedMacros(path string) []*parser.Macro {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var macros []*parser.Macro
	seen := map[string]bool{path: true}
	var visit func(string)
	visit = func(p string) {
		f := c.files[p]
		if f == nil || f.Tree == nil {
			return
		}
		for _, inc := range f.Tree.IncludeFiles {
			if inc.Resolved == "" || seen[inc.Resolved] {
				continue
			}
			seen[inc.Resolved] = true
			if h := c.files[inc.Resolved]; h != nil && h.Tree != nil {
				for _, name := range h.Tree.Macros.Names() {
					m, _ := h.Tree.Macros.Lookup(name)
					if !m.Predefined {
						macros = append(macros, m)
					}
				}
			}
			visit(inc.Resolved)
		}
	}
	visit(path)
	return macros
}

type CompletionKind int

const (
	CompletionKindMacro CompletionKind = iota
	CompletionKindFunction
	CompletionKindVariable
	CompletionKindKeyword
)

type CompletionItem struct {
	Label      string
	Kind       CompletionKind
	Detail     string
	InsertText string
}

// CompletionsAtPoint offers the macros, top-level declarations and keywords
// that start with the identifier ending at offset.
func (c *Codebase) CompletionsAtPoint(path string, offset int) []CompletionItem {
	f := c.GetFile(path)
	if f == nil || f.Tree == nil {
		return nil
	}
	offset = max(0, min(offset, len(f.Content)))
	prefix := identifierBefore(f.Content, offset)

	seen := make(map[string]bool)
	var items []CompletionItem
	add := func(item CompletionItem) {
		if seen[item.Label] || !strings.HasPrefix(item.Label, prefix) || item.Label == prefix {
			return
		}
		seen[item.Label] = true
		items = append(items, item)
	}

	for _, name := range f.Tree.Macros.Names() {
		m, _ := f.Tree.Macros.Lookup(name)
		add(macroCompletion(m))
	}
	for _, m := range c.IncludedMacros(path) {
		add(macroCompletion(m))
	}

	for _, stmt := range f.Tree.Statements() {
		switch stmt.Kind {
		case parser.KindFunctionDeclaration:
			if name := stmt.FirstChildOfKind(parser.KindIdentifier); name != nil && !name.IsMissing() {
				add(CompletionItem{
					Label:      name.TokenLiteral(),
					Kind:       CompletionKindFunction,
					Detail:     signature(f.Content, stmt),
					InsertText: name.TokenLiteral() + "(",
				})
			}
		case parser.KindVariableStatement:
			parser.Walk(stmt, func(n *parser.Node) bool {
				if n.Kind != parser.KindVariableDeclaration {
					return true
				}
				if name := n.FirstChildOfKind(parser.KindIdentifier); name != nil && !name.IsMissing() {
					add(CompletionItem{Label: name.TokenLiteral(), Kind: CompletionKindVariable, InsertText: name.TokenLiteral()})
				}
				return false
			})
		}
	}

	if prefix != "" {
		for _, kw := range scanner.Keywords() {
			add(CompletionItem{Label: kw, Kind: CompletionKindKeyword, InsertText: kw})
		}
	}

	return items
}

func macroCompletion(m *parser.Macro) CompletionItem {
	item := CompletionItem{Label: m.Name, Kind: CompletionKindMacro, Detail: m.Body, InsertText: m.Name}
	if len(m.Parameters) > 0 {
		item.Detail = m.Name + "(" + strings.Join(m.Parameters, ", ") + ") " + m.Body
		item.InsertText = m.Name + "("
	}
	return item
}

// signature returns a function's declaration text up to its body.
func signature(content string, fn *parser.Node) string {
	end := fn.End
	if body := fn.FirstChildOfKind(parser.KindBlock); body != nil {
		end = body.Pos
	}
	if fn.Start > end || end > len(content) {
		return ""
	}
	return strings.Join(strings.Fields(content[fn.Start:end]), " ")
}

func identifierBefore(content string, offset int) string {
	start := offset
	for start > 0 && isIdentByte(content[start-1]) {
		start--
	}
	return content[start:offset]
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
