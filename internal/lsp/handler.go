// Package lsp implements a diagnostics-only NAUX language server:
// lex/parse errors reported live as the editor opens and edits a file,
// grounded on the teacher's internal/lsp.KansoHandler but pared down to
// the single capability NAUX's spec actually asks for.
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"naux/internal/lexer"
	"naux/internal/parser"
)

// Handler implements the glsp protocol.Handler callbacks NAUX's server
// wires up: lifecycle plus the three text-sync notifications needed to
// keep diagnostics current.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

// NewHandler creates an empty Handler.
func NewHandler() *Handler {
	return &Handler{content: map[string]string{}}
}

// Initialize advertises NAUX's only capability: full-document sync, so
// the server can re-lex/re-parse on every edit.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("naux-lsp: initialize")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

// Initialized is a no-op past logging; NAUX needs no post-handshake setup.
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("naux-lsp: initialized")
	return nil
}

// Shutdown is a no-op; the handler holds no resources to release.
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("naux-lsp: shutdown")
	return nil
}

// TextDocumentDidOpen stores the document and publishes its diagnostics.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.refresh(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange re-runs diagnostics against the new full text.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change, ok := params.ContentChanges[len(params.ContentChanges)-1].(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}
	return h.refresh(ctx, params.TextDocument.URI, change.Text)
}

// TextDocumentDidClose drops the cached content for a closed document.
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

func (h *Handler) refresh(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("invalid URI %s: %w", uri, err)
	}
	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()

	diags := diagnose(text)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
	return nil
}

// diagnose lexes and parses text, converting the first lex or parse
// failure (both short-circuit, so there is at most one) into an LSP
// diagnostic; a clean parse yields an empty, clearing, diagnostic list.
func diagnose(text string) []protocol.Diagnostic {
	toks, lexErr := lexer.Lex(text)
	if lexErr != nil {
		if e, ok := lexErr.(*lexer.Error); ok {
			return []protocol.Diagnostic{toDiagnostic(e.Kind, e.Message, e.Pos.Line, e.Pos.Column)}
		}
		return []protocol.Diagnostic{toDiagnostic("lex/error", lexErr.Error(), 1, 1)}
	}
	if _, parseErr := parser.Parse(toks); parseErr != nil {
		if e, ok := parseErr.(*parser.Error); ok {
			return []protocol.Diagnostic{toDiagnostic(e.Kind, e.Message, e.Pos.Line, e.Pos.Column)}
		}
		return []protocol.Diagnostic{toDiagnostic("parse/error", parseErr.Error(), 1, 1)}
	}
	return []protocol.Diagnostic{}
}

func toDiagnostic(kind, message string, line, col int) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line - 1), Character: uint32(col - 1)},
			End:   protocol.Position{Line: uint32(line - 1), Character: uint32(col + 3)},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("naux"),
		Message:  fmt.Sprintf("%s: %s", kind, message),
	}
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool                                             { return &b }
func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity    { return &s }
func ptrString(s string) *string                                       { return &s }
