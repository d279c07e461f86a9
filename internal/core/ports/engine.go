// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"github.com/QuarticCat/tinymist/internal/core/domain"
)

// CompileEngine is the underlying document compiler. Both methods must be
// pure: for a fixed snapshot fingerprint (or document text) the output is
// byte-identical across calls, which is what makes results cacheable.
//
//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks
type CompileEngine interface {
	// Compile builds the world rooted at main and returns the artifact plus
	// the per-document diagnostics.
	Compile(ctx context.Context, snap *domain.Snapshot, main domain.InternedString) (*domain.Artifact, map[domain.InternedString][]domain.Diagnostic, error)

	// AnalyzeDocument extracts the definition/use index of a single document
	// from its text alone.
	AnalyzeDocument(ctx context.Context, uri domain.InternedString, text string) (*domain.DocumentIndex, error)
}

// Formatter rewrites document text into canonical form. Must be pure.
type Formatter interface {
	Format(ctx context.Context, text string, width int) (string, error)
}
