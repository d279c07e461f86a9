package lsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/mock/gomock"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/core/ports/mocks"
	"github.com/QuarticCat/tinymist/internal/engine/query"
)

type sessionCall struct {
	name string
	uri  domain.InternedString
}

// fakeSession records calls and answers queries from a canned response.
type fakeSession struct {
	calls    []sessionCall
	root     string
	changes  []domain.ContentChange
	version  int32
	lastReq  query.Request
	resp     *query.Response
	editErr  error
	queryErr error
}

func (f *fakeSession) Initialize(rootPath string) error {
	f.root = rootPath
	f.calls = append(f.calls, sessionCall{name: "initialize"})
	return nil
}

func (f *fakeSession) OpenDocument(uri domain.InternedString, _, _ string, version int32) {
	f.version = version
	f.calls = append(f.calls, sessionCall{name: "open", uri: uri})
}

func (f *fakeSession) EditDocument(uri domain.InternedString, changes []domain.ContentChange, version int32) error {
	f.changes = changes
	f.version = version
	f.calls = append(f.calls, sessionCall{name: "edit", uri: uri})
	return f.editErr
}

func (f *fakeSession) CloseDocument(uri domain.InternedString) error {
	f.calls = append(f.calls, sessionCall{name: "close", uri: uri})
	return nil
}

func (f *fakeSession) FocusDocument(uri domain.InternedString) {
	f.calls = append(f.calls, sessionCall{name: "focus", uri: uri})
}

func (f *fakeSession) Query(_ context.Context, req query.Request) (*query.Response, error) {
	f.lastReq = req
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &query.Response{}, nil
}

func (f *fakeSession) Shutdown() {
	f.calls = append(f.calls, sessionCall{name: "shutdown"})
}

func newTestServer(t *testing.T, session *fakeSession) *Server {
	t.Helper()

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	s := &Server{
		session: session,
		client:  NewClient(),
		logger:  logger,
		name:    "tinymist",
		version: "test",
	}
	s.handler = &protocol.Handler{
		Initialize:             s.initialize,
		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentRename:     s.textDocumentRename,
		TextDocumentFormatting: s.textDocumentFormatting,
	}
	return s
}

func TestInitialize(t *testing.T) {
	session := &fakeSession{}
	s := newTestServer(t, session)

	rootURI := "file:///ws/book"
	result, err := s.initialize(&glsp.Context{}, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)

	assert.Equal(t, "/ws/book", session.root)

	initResult, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, protocol.TextDocumentSyncKindIncremental, initResult.Capabilities.TextDocumentSync)
	assert.Equal(t, "tinymist", initResult.ServerInfo.Name)
}

func TestDidOpenForwardsDocument(t *testing.T) {
	session := &fakeSession{}
	s := newTestServer(t, session)

	err := s.textDocumentDidOpen(&glsp.Context{}, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        "file:///ws/main.typ",
			LanguageID: "typst",
			Version:    1,
			Text:       "= Intro\n",
		},
	})
	require.NoError(t, err)

	require.Len(t, session.calls, 1)
	assert.Equal(t, "open", session.calls[0].name)
	assert.Equal(t, "file:///ws/main.typ", session.calls[0].uri.String())
	assert.Equal(t, int32(1), session.version)
}

func TestDidChangeConvertsIncrementalEdit(t *testing.T) {
	session := &fakeSession{}
	s := newTestServer(t, session)

	r := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 2},
		End:   protocol.Position{Line: 0, Character: 7},
	}
	err := s.textDocumentDidChange(&glsp.Context{}, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///ws/main.typ"},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{Range: &r, Text: "Title"},
		},
	})
	require.NoError(t, err)

	require.Len(t, session.changes, 1)
	require.NotNil(t, session.changes[0].Range)
	assert.Equal(t, "Title", session.changes[0].Text)
	assert.Equal(t, int32(2), session.version)
}

func TestDidChangeStaleEditDoesNotFailRequest(t *testing.T) {
	session := &fakeSession{editErr: domain.ErrStaleEdit}
	s := newTestServer(t, session)

	err := s.textDocumentDidChange(&glsp.Context{}, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///ws/main.typ"},
			Version:                1,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "x"}},
	})
	assert.NoError(t, err)
}

func TestHover(t *testing.T) {
	session := &fakeSession{
		resp: &query.Response{
			Hover: &query.HoverResult{
				Contents: "**intro** label",
				Range:    domain.Range{End: domain.Position{Character: 7}},
			},
		},
	}
	s := newTestServer(t, session)

	hover, err := s.textDocumentHover(&glsp.Context{}, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///ws/main.typ"},
			Position:     protocol.Position{Line: 0, Character: 3},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, hover)

	assert.Equal(t, domain.KindHover, session.lastReq.Kind)
	content, ok := hover.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, "**intro** label", content.Value)
	require.NotNil(t, hover.Range)
	assert.Equal(t, protocol.UInteger(7), hover.Range.End.Character)
}

func TestHover_NoResult(t *testing.T) {
	session := &fakeSession{}
	s := newTestServer(t, session)

	hover, err := s.textDocumentHover(&glsp.Context{}, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///ws/main.typ"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, hover)
}

func TestDefinition_NoSymbolIsNotAnError(t *testing.T) {
	session := &fakeSession{queryErr: domain.ErrNoSymbol}
	s := newTestServer(t, session)

	result, err := s.textDocumentDefinition(&glsp.Context{}, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///ws/main.typ"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRename(t *testing.T) {
	uri := domain.NewInternedString("file:///ws/main.typ")
	session := &fakeSession{
		resp: &query.Response{
			Rename: &domain.WorkspaceEdits{
				Changes: map[domain.InternedString]domain.DocumentEdits{
					uri: {URI: uri, Version: 3, Edits: []domain.TextEdit{{NewText: "fresh"}}},
				},
			},
		},
	}
	s := newTestServer(t, session)

	edit, err := s.textDocumentRename(&glsp.Context{}, &protocol.RenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///ws/main.typ"},
			Position:     protocol.Position{Line: 0, Character: 1},
		},
		NewName: "fresh",
	})
	require.NoError(t, err)
	require.NotNil(t, edit)

	assert.Equal(t, domain.KindRename, session.lastReq.Kind)
	assert.Equal(t, "fresh", session.lastReq.NewName)
	assert.Len(t, edit.DocumentChanges, 1)
}

func TestFormatting(t *testing.T) {
	session := &fakeSession{
		resp: &query.Response{
			Formatting: []domain.TextEdit{{NewText: "= Intro\n"}},
		},
	}
	s := newTestServer(t, session)

	edits, err := s.textDocumentFormatting(&glsp.Context{}, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///ws/main.typ"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.KindFormatting, session.lastReq.Kind)
	require.Len(t, edits, 1)
	assert.Equal(t, "= Intro\n", edits[0].NewText)
}

func TestDidCloseForwards(t *testing.T) {
	session := &fakeSession{}
	s := newTestServer(t, session)

	err := s.textDocumentDidClose(&glsp.Context{}, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///ws/main.typ"},
	})
	require.NoError(t, err)

	require.Len(t, session.calls, 1)
	assert.Equal(t, "close", session.calls[0].name)
}

func TestClient_PublishDiagnostics(t *testing.T) {
	var gotMethod string
	var gotParams any

	client := NewClient()
	client.Bind(&glsp.Context{Notify: func(method string, params any) {
		gotMethod = method
		gotParams = params
	}})

	client.PublishDiagnostics(domain.DiagnosticSet{
		URI:     domain.NewInternedString("file:///ws/main.typ"),
		Version: 4,
		Items: []domain.Diagnostic{
			{Severity: domain.SeverityError, Message: "unclosed delimiter"},
		},
	})

	assert.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, gotMethod)

	params, ok := gotParams.(protocol.PublishDiagnosticsParams)
	require.True(t, ok)
	assert.Equal(t, "file:///ws/main.typ", string(params.URI))
	require.NotNil(t, params.Version)
	assert.Equal(t, protocol.UInteger(4), *params.Version)
	require.Len(t, params.Diagnostics, 1)
	assert.Equal(t, "unclosed delimiter", params.Diagnostics[0].Message)
}

func TestClient_UnboundIsNoop(t *testing.T) {
	client := NewClient()
	assert.NotPanics(t, func() {
		client.PublishDiagnostics(domain.DiagnosticSet{})
	})
}
