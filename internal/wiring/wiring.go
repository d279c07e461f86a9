// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/QuarticCat/tinymist/internal/adapters/config"
	_ "github.com/QuarticCat/tinymist/internal/adapters/logger"
	_ "github.com/QuarticCat/tinymist/internal/adapters/lsp"
	_ "github.com/QuarticCat/tinymist/internal/adapters/telemetry"
	_ "github.com/QuarticCat/tinymist/internal/adapters/typst"
	_ "github.com/QuarticCat/tinymist/internal/adapters/watcher"
	// Register application nodes.
	_ "github.com/QuarticCat/tinymist/internal/app"
)
