package codebase

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/lpc/lpc/parser"
	"github.com/dhamidi/lpc/project"
)

const lsName = "lpc"

type LSPServer struct {
	codebase *Codebase
	handler  protocol.Handler
	server   *server.Server
	version  string
	watcher  *FileWatcher

	mu     sync.Mutex
	notify glsp.NotifyFunc
}

func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	p, err := project.LoadFrom(rootDir)
	if err != nil {
		log.Errorf("load project: %s", err)
		p = &project.Project{RootDir: rootDir, Config: project.DefaultConfig()}
	}
	ls.codebase = New(p)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"#"},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	ls.notify = ctx.Notify
	ls.mu.Unlock()

	if err := ls.codebase.ScanAll(); err != nil {
		log.Errorf("%s", err)
	}
	ls.watcher = NewFileWatcher(ls.codebase, ls.publish)
	ls.watcher.Start()
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.codebase.UpdateFile(path, params.TextDocument.Text)
	ls.codebase.SetOpen(path, true)
	ls.publishWith(ctx.Notify, path)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	for _, change := range params.ContentChanges {
		if err := applyContentChange(ls.codebase, path, change); err != nil {
			log.Warningf("%s", err)
		}
	}
	ls.publishWith(ctx.Notify, path)
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.codebase.SetOpen(path, false)
	if err := ls.codebase.ScanFile(path); err != nil {
		ls.codebase.RemoveFile(path)
	}
	ls.publishWith(ctx.Notify, path)
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.codebase.UpdateFile(path, *params.Text)
	} else if !ls.codebase.IsOpen(path) {
		ls.codebase.ScanFile(path)
	}
	ls.publishWith(ctx.Notify, path)
	return nil
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}

	file := ls.codebase.GetFile(path)
	if file == nil {
		return nil, nil
	}

	offset := file.Lines.Offset(int(params.Position.Line), int(params.Position.Character))
	completions := ls.codebase.CompletionsAtPoint(path, offset)
	if len(completions) == 0 {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, c := range completions {
		kind := toProtocolKind(c.Kind)
		detail := c.Detail
		insertText := c.InsertText

		items = append(items, protocol.CompletionItem{
			Label:      c.Label,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &insertText,
		})
	}

	return items, nil
}

// applyContentChange applies one didChange event. Ranged events are edits
// in UTF-16 line/character coordinates; the others replace the whole text.
func applyContentChange(c *Codebase, path string, change any) error {
	switch ch := change.(type) {
	case protocol.TextDocumentContentChangeEvent:
		if ch.Range == nil {
			c.UpdateFile(path, ch.Text)
			return nil
		}
		f := c.GetFile(path)
		if f == nil {
			c.UpdateFile(path, ch.Text)
			return nil
		}
		start := f.Lines.Offset(int(ch.Range.Start.Line), int(ch.Range.Start.Character))
		end := f.Lines.Offset(int(ch.Range.End.Line), int(ch.Range.End.Character))
		_, err := c.ApplyEdit(path, start, end, ch.Text)
		return err
	case protocol.TextDocumentContentChangeEventWhole:
		c.UpdateFile(path, ch.Text)
		return nil
	default:
		return fmt.Errorf("%s: unsupported content change %T", path, change)
	}
}

func (ls *LSPServer) publish(path string) {
	ls.mu.Lock()
	notify := ls.notify
	ls.mu.Unlock()
	ls.publishWith(notify, path)
}

func (ls *LSPServer) publishWith(notify glsp.NotifyFunc, path string) {
	if notify == nil {
		return
	}
	diagnostics := []protocol.Diagnostic{}
	if f := ls.codebase.GetFile(path); f != nil {
		diagnostics = toProtocolDiagnostics(f)
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         pathToURI(path),
		Diagnostics: diagnostics,
	})
}

func toProtocolDiagnostics(f *FileInfo) []protocol.Diagnostic {
	source := lsName
	uri := pathToURI(f.Path)
	out := []protocol.Diagnostic{}
	for _, d := range f.Tree.Diagnostics {
		severity := toProtocolSeverity(d.Category())
		pd := protocol.Diagnostic{
			Range:    toProtocolRange(f, d.Start, d.End()),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: d.Message.String()},
			Source:   &source,
			Message:  d.Text(),
		}
		for _, r := range d.Related {
			pd.RelatedInformation = append(pd.RelatedInformation, protocol.DiagnosticRelatedInformation{
				Location: protocol.Location{URI: uri, Range: toProtocolRange(f, r.Start, r.End())},
				Message:  r.Text(),
			})
		}
		out = append(out, pd)
	}
	return out
}

func toProtocolRange(f *FileInfo, start, end int) protocol.Range {
	sl, sc := f.Lines.UTF16(start)
	el, ec := f.Lines.UTF16(end)
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(sl), Character: protocol.UInteger(sc)},
		End:   protocol.Position{Line: protocol.UInteger(el), Character: protocol.UInteger(ec)},
	}
}

func toProtocolSeverity(c parser.Category) protocol.DiagnosticSeverity {
	switch c {
	case parser.CategoryError:
		return protocol.DiagnosticSeverityError
	case parser.CategoryWarning:
		return protocol.DiagnosticSeverityWarning
	case parser.CategorySuggestion:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

func toProtocolKind(kind CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case CompletionKindMacro:
		return protocol.CompletionItemKindConstant
	case CompletionKindFunction:
		return protocol.CompletionItemKindFunction
	case CompletionKindVariable:
		return protocol.CompletionItemKindVariable
	case CompletionKindKeyword:
		return protocol.CompletionItemKindKeyword
	default:
		return protocol.CompletionItemKindText
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
