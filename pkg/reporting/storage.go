package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Storage handles persistence of run reports
type Storage struct {
	outputDir string
	keepLastN int
	logger    *Logger
}

// NewStorage creates a new storage instance
func NewStorage(outputDir string, keepLastN int, logger *Logger) (*Storage, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Storage{
		outputDir: outputDir,
		keepLastN: keepLastN,
		logger:    logger,
	}, nil
}

// NewRunID returns an identifier derived from the run's start time, to the
// millisecond
func NewRunID(start time.Time) string {
	return fmt.Sprintf("run-%s-%03d", start.Format("20060102-150405"), start.Nanosecond()/int(time.Millisecond))
}

// PathFor returns the path of a report rendering with the given extension
func (s *Storage) PathFor(report *RunReport, ext string) string {
	return filepath.Join(s.outputDir, report.RunID+"."+strings.TrimPrefix(ext, "."))
}

// SaveReport saves a run report to a JSON file. If a report with the same
// RunID is already stored, a numeric suffix is appended to report.RunID.
func (s *Storage) SaveReport(report *RunReport) (string, error) {
	s.claimRunID(report)
	path := s.PathFor(report, "json")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	s.logger.Info("Run report saved", "path", path)

	if s.keepLastN > 0 {
		if err := s.cleanupOldReports(); err != nil {
			s.logger.Warn("Failed to cleanup old reports", "error", err)
		}
	}

	return path, nil
}

func (s *Storage) claimRunID(report *RunReport) {
	base := report.RunID
	for n := 2; ; n++ {
		if _, err := os.Stat(s.PathFor(report, "json")); os.IsNotExist(err) {
			return
		}
		report.RunID = fmt.Sprintf("%s-%d", base, n)
	}
}

// LoadReport loads a run report from a JSON file
func (s *Storage) LoadReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}

// ListReports lists all run reports, newest first
func (s *Storage) ListReports() ([]ReportSummary, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	summaries := make([]ReportSummary, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(s.outputDir, entry.Name())
		report, err := s.LoadReport(path)
		if err != nil {
			s.logger.Warn("Failed to load report", "path", path, "error", err)
			continue
		}

		summaries = append(summaries, ReportSummary{
			RunID:     report.RunID,
			Test:      report.Test,
			StartTime: report.StartTime,
			Duration:  report.Duration,
			Status:    report.Status,
			Passed:    report.PassedCount(),
			Total:     len(report.Results),
			Filepath:  path,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})

	return summaries, nil
}

// cleanupOldReports removes old reports and their renderings, keeping only the last N
func (s *Storage) cleanupOldReports() error {
	summaries, err := s.ListReports()
	if err != nil {
		return err
	}

	if len(summaries) <= s.keepLastN {
		return nil
	}

	for _, summary := range summaries[s.keepLastN:] {
		base := strings.TrimSuffix(summary.Filepath, ".json")
		for _, path := range []string{summary.Filepath, base + ".txt", base + ".html"} {
			if err := os.Remove(path); err != nil {
				if !os.IsNotExist(err) {
					s.logger.Warn("Failed to delete old report", "path", path, "error", err)
				}
				continue
			}
			s.logger.Debug("Deleted old report", "path", path)
		}
	}

	return nil
}

// OutputDir returns the output directory path
func (s *Storage) OutputDir() string {
	return s.outputDir
}

// ReportSummary contains a summary of a run report
type ReportSummary struct {
	RunID     string    `json:"run_id"`
	Test      string    `json:"test"`
	StartTime time.Time `json:"start_time"`
	Duration  string    `json:"duration"`
	Status    RunStatus `json:"status"`
	Passed    int       `json:"passed"`
	Total     int       `json:"total"`
	Filepath  string    `json:"filepath"`
}
