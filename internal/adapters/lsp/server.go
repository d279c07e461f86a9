// Package lsp implements the editor transport. It translates protocol
// requests into engine operations and publishes diagnostics back over the
// live connection.
package lsp

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/core/ports"
	"github.com/QuarticCat/tinymist/internal/engine/query"
)

// Session is the engine surface the transport drives. The application layer
// implements it; tests substitute a fake.
type Session interface {
	// Initialize pins the workspace root reported by the client.
	Initialize(rootPath string) error

	// OpenDocument registers a document with the engine.
	OpenDocument(uri domain.InternedString, languageID, text string, version int32)

	// EditDocument applies content changes at a new version.
	EditDocument(uri domain.InternedString, changes []domain.ContentChange, version int32) error

	// CloseDocument removes a document from the engine.
	CloseDocument(uri domain.InternedString) error

	// FocusDocument marks the document the user is looking at.
	FocusDocument(uri domain.InternedString)

	// Query runs one interactive request to completion.
	Query(ctx context.Context, req query.Request) (*query.Response, error)

	// Shutdown stops background work.
	Shutdown()
}

// Server wires protocol handlers to a Session.
type Server struct {
	session Session
	client  *Client
	logger  ports.Logger
	name    string
	version string

	handler *protocol.Handler
}

// NewServer creates the protocol server. The returned server speaks the
// protocol over stdio via RunStdio.
func NewServer(session Session, client *Client, logger ports.Logger, name, version string) *server.Server {
	s := &Server{
		session: session,
		client:  client,
		logger:  logger,
		name:    name,
		version: version,
	}

	s.handler = &protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidSave:    s.textDocumentDidSave,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentRename:     s.textDocumentRename,
		TextDocumentFormatting: s.textDocumentFormatting,
	}

	return server.NewServer(s.handler, name, false)
}
