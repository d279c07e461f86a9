package lsp

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/QuarticCat/tinymist/internal/core/ports"
)

// ClientNodeID is the unique identifier for the editor client Graft node.
const ClientNodeID graft.ID = "adapter.lsp.client"

func init() {
	graft.Register(graft.Node[ports.Client]{
		ID:        ClientNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Client, error) {
			return NewClient(), nil
		},
	})
}
