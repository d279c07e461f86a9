package app

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/QuarticCat/tinymist/internal/adapters/config"
	"github.com/QuarticCat/tinymist/internal/adapters/logger"
	"github.com/QuarticCat/tinymist/internal/adapters/lsp"
	"github.com/QuarticCat/tinymist/internal/adapters/telemetry"
	"github.com/QuarticCat/tinymist/internal/adapters/typst"
	"github.com/QuarticCat/tinymist/internal/adapters/watcher"
	"github.com/QuarticCat/tinymist/internal/core/ports"
)

// Components bundles the assembled application with the adapters the entry
// point needs directly.
type Components struct {
	App    *App
	Logger ports.Logger
}

// NodeID is the unique identifier for the application components Graft node.
const NodeID graft.ID = "app.components"

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			typst.EngineNodeID,
			typst.FormatterNodeID,
			lsp.ClientNodeID,
			watcher.NodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			compiler, err := graft.Dep[ports.CompileEngine](ctx)
			if err != nil {
				return nil, err
			}
			formatter, err := graft.Dep[ports.Formatter](ctx)
			if err != nil {
				return nil, err
			}
			client, err := graft.Dep[ports.Client](ctx)
			if err != nil {
				return nil, err
			}
			watch, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			a, err := New(loader, compiler, formatter, client, watch, log, tracer)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}
