package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/preference-engine/internal/config"
)

// Factory creates ComparisonSource implementations based on configuration
type Factory struct {
	logger     *logrus.Logger
	httpClient *RateLimitedHTTPClient
}

// NewFactory creates a new comparison source factory
func NewFactory(httpClient *RateLimitedHTTPClient, logger *logrus.Logger) *Factory {
	return &Factory{
		logger:     logger,
		httpClient: httpClient,
	}
}

// NewSource creates a ComparisonSource from a source configuration
func (f *Factory) NewSource(cfg config.DataSourceConfig) (ComparisonSource, error) {
	switch cfg.Type {
	case "csv":
		if cfg.Path == "" {
			return nil, fmt.Errorf("csv source %q requires a path", cfg.Name)
		}
		return NewCSVSource(cfg.Name, cfg.Dataset, cfg.Path, cfg.Enabled, f.logger), nil

	case "http":
		if cfg.URL == "" {
			return nil, fmt.Errorf("http source %q requires a url", cfg.Name)
		}
		if f.httpClient == nil {
			return nil, fmt.Errorf("HTTP client is required for http source %q", cfg.Name)
		}
		return NewHTTPSource(f.httpClient, cfg.Name, cfg.Dataset, cfg.URL, cfg.APIKey, cfg.Enabled, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown source type: %s", cfg.Type)
	}
}
