// Package config provides the YAML configuration loader.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a tinymist.yaml file found by
// walking up from the working directory.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration for cwd. A missing file yields the defaults;
// a present but malformed file is an error.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	cfg := defaults()

	configPath, found := l.findConfiguration(cwd)
	if !found {
		cfg.Root = cwd
		return cfg, nil
	}
	cfg.Root = filepath.Dir(configPath)

	var file File
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, err
	}
	if err := apply(cfg, &file, configPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DiscoverRoot returns the directory containing tinymist.yaml, or cwd when
// no configuration exists.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	if configPath, found := l.findConfiguration(cwd); found {
		return filepath.Dir(configPath), nil
	}
	return cwd, nil
}

func (l *Loader) findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

func defaults() *domain.Config {
	return &domain.Config{
		DiagnosticsDebounce: domain.DefaultDiagnosticsDebounce,
		CacheBudget:         domain.DefaultCacheBudget,
		FormatWidth:         domain.DefaultFormatWidth,
	}
}

func apply(cfg *domain.Config, file *File, configPath string) error {
	if file.Root != "" {
		if filepath.IsAbs(file.Root) {
			cfg.Root = file.Root
		} else {
			cfg.Root = filepath.Join(filepath.Dir(configPath), file.Root)
		}
	}
	if file.DiagnosticsDebounceMS != nil {
		if *file.DiagnosticsDebounceMS < 0 {
			return domain.Detail(domain.ErrInvalidConfig, "field", "diagnosticsDebounceMs")
		}
		cfg.DiagnosticsDebounce = time.Duration(*file.DiagnosticsDebounceMS) * time.Millisecond
	}
	if file.CacheBudget != nil {
		if *file.CacheBudget < 0 {
			return domain.Detail(domain.ErrInvalidConfig, "field", "cacheBudget")
		}
		cfg.CacheBudget = *file.CacheBudget
	}
	if file.Workers != nil {
		if *file.Workers < 0 {
			return domain.Detail(domain.ErrInvalidConfig, "field", "workers")
		}
		cfg.Workers = *file.Workers
	}
	if file.FormatWidth != nil {
		if *file.FormatWidth <= 0 {
			return domain.Detail(domain.ErrInvalidConfig, "field", "formatWidth")
		}
		cfg.FormatWidth = *file.FormatWidth
	}
	return nil
}

func readAndUnmarshalYAML(path string, out any) error {
	// #nosec G304 -- path comes from the upward config search
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "path", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return zerr.With(errors.Join(domain.ErrConfigParseFailed, err), "path", path)
	}
	return nil
}
