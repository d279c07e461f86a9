package lsp

import (
	"sync/atomic"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/core/ports"
)

var _ ports.Client = (*Client)(nil)

// Client implements ports.Client over the live editor connection. The
// connection context only exists while a request is being handled, so the
// server rebinds the most recent one here; diagnostics published from
// background tasks ride on it.
type Client struct {
	conn atomic.Pointer[glsp.Context]
}

// NewClient creates an unbound client. PublishDiagnostics is a no-op until
// the first bind.
func NewClient() *Client {
	return &Client{}
}

// Bind attaches the current connection context.
func (c *Client) Bind(ctx *glsp.Context) {
	c.conn.Store(ctx)
}

// PublishDiagnostics pushes the full diagnostic set for one document.
func (c *Client) PublishDiagnostics(set domain.DiagnosticSet) {
	conn := c.conn.Load()
	if conn == nil {
		return
	}

	version := protocol.UInteger(set.Version) //nolint:gosec // versions start at 0
	conn.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         set.URI.String(),
		Version:     &version,
		Diagnostics: fromDomainDiagnostics(set.Items),
	})
}
