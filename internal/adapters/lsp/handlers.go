package lsp

import (
	"context"
	"errors"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/engine/query"
)

func (s *Server) initialize(glspCtx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.client.Bind(glspCtx)

	if root := rootPath(params); root != "" {
		if err := s.session.Initialize(root); err != nil {
			return nil, err
		}
	}

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindIncremental

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    s.name,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(glspCtx *glsp.Context, _ *protocol.InitializedParams) error {
	s.client.Bind(glspCtx)
	s.logger.Info("language server initialized")
	return nil
}

func (s *Server) shutdown(*glsp.Context) error {
	s.session.Shutdown()
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(glspCtx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.client.Bind(glspCtx)

	doc := params.TextDocument
	s.session.OpenDocument(domain.NewInternedString(doc.URI), doc.LanguageID, doc.Text, doc.Version)
	return nil
}

func (s *Server) textDocumentDidChange(glspCtx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.client.Bind(glspCtx)

	uri := domain.NewInternedString(params.TextDocument.URI)
	err := s.session.EditDocument(uri, toDomainChanges(params.ContentChanges), params.TextDocument.Version)
	if err != nil {
		// A stale edit means the client and server disagree on versions;
		// log it and keep serving from the state we trust.
		s.logger.Error(err)
	}
	return nil
}

func (s *Server) textDocumentDidSave(glspCtx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.client.Bind(glspCtx)
	s.session.FocusDocument(domain.NewInternedString(params.TextDocument.URI))
	return nil
}

func (s *Server) textDocumentDidClose(glspCtx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.client.Bind(glspCtx)
	return s.session.CloseDocument(domain.NewInternedString(params.TextDocument.URI))
}

func (s *Server) textDocumentHover(glspCtx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.client.Bind(glspCtx)

	resp, err := s.query(glspCtx, query.Request{
		Kind: domain.KindHover,
		URI:  domain.NewInternedString(params.TextDocument.URI),
		Pos:  toDomainPosition(params.Position),
	})
	if err != nil || resp.Hover == nil {
		return nil, err
	}

	hoverRange := fromDomainRange(resp.Hover.Range)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: resp.Hover.Contents,
		},
		Range: &hoverRange,
	}, nil
}

func (s *Server) textDocumentCompletion(glspCtx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	s.client.Bind(glspCtx)

	resp, err := s.query(glspCtx, query.Request{
		Kind: domain.KindCompletion,
		URI:  domain.NewInternedString(params.TextDocument.URI),
		Pos:  toDomainPosition(params.Position),
	})
	if err != nil {
		return nil, err
	}
	return fromCompletionItems(resp.Completions), nil
}

func (s *Server) textDocumentDefinition(glspCtx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	s.client.Bind(glspCtx)

	resp, err := s.query(glspCtx, query.Request{
		Kind: domain.KindDefinition,
		URI:  domain.NewInternedString(params.TextDocument.URI),
		Pos:  toDomainPosition(params.Position),
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoSymbol) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Locations) == 0 {
		return nil, nil
	}
	return fromLocations(resp.Locations), nil
}

func (s *Server) textDocumentRename(glspCtx *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	s.client.Bind(glspCtx)

	resp, err := s.query(glspCtx, query.Request{
		Kind:    domain.KindRename,
		URI:     domain.NewInternedString(params.TextDocument.URI),
		Pos:     toDomainPosition(params.Position),
		NewName: params.NewName,
	})
	if err != nil {
		return nil, err
	}
	return fromWorkspaceEdits(resp.Rename), nil
}

func (s *Server) textDocumentFormatting(glspCtx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	s.client.Bind(glspCtx)

	resp, err := s.query(glspCtx, query.Request{
		Kind: domain.KindFormatting,
		URI:  domain.NewInternedString(params.TextDocument.URI),
	})
	if err != nil {
		return nil, err
	}
	return fromDomainEdits(resp.Formatting), nil
}

// query runs one interactive request on the session, using the transport's
// request context when it carries one.
func (s *Server) query(glspCtx *glsp.Context, req query.Request) (*query.Response, error) {
	ctx := context.Background()
	if glspCtx != nil && glspCtx.Context != nil {
		ctx = glspCtx.Context
	}
	return s.session.Query(ctx, req)
}

// rootPath extracts the workspace root from initialize params, preferring
// the URI form.
func rootPath(params *protocol.InitializeParams) string {
	if params.RootURI != nil && *params.RootURI != "" {
		return uriToPath(*params.RootURI)
	}
	if params.RootPath != nil {
		return *params.RootPath
	}
	return ""
}
