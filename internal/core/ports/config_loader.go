package ports

import "github.com/QuarticCat/tinymist/internal/core/domain"

// ConfigLoader defines the interface for loading the engine configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration starting from the given working directory.
	// A missing config file yields defaults, not an error.
	Load(cwd string) (*domain.Config, error)

	// DiscoverRoot walks up from cwd to find the workspace root: the
	// directory containing tinymist.yaml, or cwd itself.
	DiscoverRoot(cwd string) (string, error)
}
