package typst

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/QuarticCat/tinymist/internal/adapters/telemetry"
	"github.com/QuarticCat/tinymist/internal/core/ports"
)

const (
	// EngineNodeID is the unique identifier for the compile engine Graft node.
	EngineNodeID graft.ID = "adapter.typst.engine"
	// FormatterNodeID is the unique identifier for the formatter Graft node.
	FormatterNodeID graft.ID = "adapter.typst.formatter"
)

func init() {
	graft.Register(graft.Node[ports.CompileEngine]{
		ID:        EngineNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{telemetry.NodeID},
		Run: func(ctx context.Context) (ports.CompileEngine, error) {
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return NewEngine(tracer), nil
		},
	})

	graft.Register(graft.Node[ports.Formatter]{
		ID:        FormatterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Formatter, error) {
			return NewFormatter(), nil
		},
	})
}
