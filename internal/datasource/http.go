package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPSource fetches comparison records from a JSON export endpoint. The
// endpoint must answer GET <url>?from=<RFC3339>&to=<RFC3339> with a body of
// the form {"comparisons": [{"option_a", "option_b", "chosen", "observed_at"}]}.
type HTTPSource struct {
	httpClient *RateLimitedHTTPClient
	name       string
	dataset    string
	url        string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// comparisonExport is the wire format of the export endpoint
type comparisonExport struct {
	Comparisons []ComparisonRecord `json:"comparisons"`
}

// NewHTTPSource creates a new HTTP comparison source
func NewHTTPSource(httpClient *RateLimitedHTTPClient, name, dataset, url, apiKey string, enabled bool, logger *logrus.Logger) *HTTPSource {
	return &HTTPSource{
		httpClient: httpClient,
		name:       name,
		dataset:    dataset,
		url:        url,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the source name
func (s *HTTPSource) Name() string { return s.name }

// Dataset returns the dataset the records belong to
func (s *HTTPSource) Dataset() string { return s.dataset }

// IsEnabled returns whether the source is enabled
func (s *HTTPSource) IsEnabled() bool { return s.enabled }

// FetchComparisons retrieves comparison records observed within the date range
func (s *HTTPSource) FetchComparisons(ctx context.Context, startDate, endDate time.Time) ([]ComparisonRecord, error) {
	if !s.enabled {
		return nil, NewDataSourceError(s.name, ErrCodeDisabled, "source is disabled", nil)
	}

	url := fmt.Sprintf("%s?from=%s&to=%s",
		s.url, startDate.UTC().Format(time.RFC3339), endDate.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError(s.name, ErrCodeNetworkError, "failed to build request", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(s.name, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewDataSourceError(s.name, ErrCodeNetworkError,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var export comparisonExport
	if err := json.NewDecoder(resp.Body).Decode(&export); err != nil {
		return nil, NewDataSourceError(s.name, ErrCodeParseError, "failed to decode response", err)
	}

	s.logger.WithFields(logrus.Fields{
		"source":  s.name,
		"records": len(export.Comparisons),
	}).Debug("Fetched comparison records over HTTP")

	return export.Comparisons, nil
}
