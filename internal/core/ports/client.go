package ports

import "github.com/QuarticCat/tinymist/internal/core/domain"

// Client is the transport-facing sink for server-initiated notifications.
// The LSP adapter implements it over the live connection; tests mock it.
//
//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks
type Client interface {
	// PublishDiagnostics pushes the full diagnostic set for one document.
	// The set supersedes any previously published set for that document.
	PublishDiagnostics(set domain.DiagnosticSet)
}
