package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CSVSource reads comparison records from a local CSV file with columns
// option_a, option_b, chosen and an optional observed_at (RFC 3339). A
// header row is detected by column names and skipped.
type CSVSource struct {
	name    string
	dataset string
	path    string
	enabled bool
	logger  *logrus.Logger
}

// NewCSVSource creates a new CSV file source
func NewCSVSource(name, dataset, path string, enabled bool, logger *logrus.Logger) *CSVSource {
	return &CSVSource{
		name:    name,
		dataset: dataset,
		path:    path,
		enabled: enabled,
		logger:  logger,
	}
}

// Name returns the source name
func (s *CSVSource) Name() string { return s.name }

// Dataset returns the dataset the records belong to
func (s *CSVSource) Dataset() string { return s.dataset }

// IsEnabled returns whether the source is enabled
func (s *CSVSource) IsEnabled() bool { return s.enabled }

// FetchComparisons reads and parses the CSV file, keeping records whose
// observation time falls within [startDate, endDate]. Records without a
// timestamp column are stamped with the read time and always included.
func (s *CSVSource) FetchComparisons(ctx context.Context, startDate, endDate time.Time) ([]ComparisonRecord, error) {
	if !s.enabled {
		return nil, NewDataSourceError(s.name, ErrCodeDisabled, "source is disabled", nil)
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, NewDataSourceError(s.name, ErrCodeParseError, "failed to open file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []ComparisonRecord
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewDataSourceError(s.name, ErrCodeParseError, fmt.Sprintf("line %d", line+1), err)
		}
		line++

		if line == 1 && isHeaderRow(row) {
			continue
		}

		record, hasTimestamp, err := parseCSVRow(row)
		if err != nil {
			return nil, NewDataSourceError(s.name, ErrCodeParseError, fmt.Sprintf("line %d", line), err)
		}

		if hasTimestamp && (record.ObservedAt.Before(startDate) || record.ObservedAt.After(endDate)) {
			continue
		}
		records = append(records, record)
	}

	s.logger.WithFields(logrus.Fields{
		"source":  s.name,
		"path":    s.path,
		"records": len(records),
	}).Debug("Read comparison records from CSV")

	return records, nil
}

func isHeaderRow(row []string) bool {
	return len(row) >= 3 && strings.EqualFold(strings.TrimSpace(row[0]), "option_a")
}

func parseCSVRow(row []string) (ComparisonRecord, bool, error) {
	if len(row) < 3 {
		return ComparisonRecord{}, false, fmt.Errorf("expected at least 3 columns, got %d", len(row))
	}

	record := ComparisonRecord{
		OptionA:    strings.TrimSpace(row[0]),
		OptionB:    strings.TrimSpace(row[1]),
		Chosen:     strings.TrimSpace(row[2]),
		ObservedAt: time.Now().UTC(),
	}

	if record.OptionA == "" || record.OptionB == "" || record.Chosen == "" {
		return ComparisonRecord{}, false, fmt.Errorf("empty option or chosen column")
	}

	if len(row) >= 4 && strings.TrimSpace(row[3]) != "" {
		observed, err := time.Parse(time.RFC3339, strings.TrimSpace(row[3]))
		if err != nil {
			return ComparisonRecord{}, false, fmt.Errorf("invalid observed_at: %w", err)
		}
		record.ObservedAt = observed
		return record, true, nil
	}

	return record, false, nil
}
