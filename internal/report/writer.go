// Package report persists the artifacts of one export run: a JSON file
// per policy, the aggregate summary in JSON and CSV, and a DOT graph of
// policy-to-target assignments.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cfphilippson/intune-export/internal/intune"
)

const (
	summaryJSONName = "export-summary.json"
	summaryCSVName  = "export-summary.csv"
	graphDOTName    = "assignments.dot"
)

// Writer owns one run's output directory.
type Writer struct {
	dir  string
	used map[string]bool
}

// NewWriter creates the run directory under root, named with the run
// timestamp.
func NewWriter(root string, startedAt time.Time) (*Writer, error) {
	dir := filepath.Join(root, "intune-export-"+startedAt.Format("20060102-150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Writer{dir: dir, used: make(map[string]bool)}, nil
}

func (w *Writer) Dir() string { return w.dir }

// WritePolicy writes one policy document. The filename is the sanitized
// policy name; when two policies sanitize to the same name, later ones
// get the policy id appended so every policy keeps its own file.
func (w *Writer) WritePolicy(p intune.Policy) (string, error) {
	name := SanitizeFilename(p.DisplayName)
	if name == "" {
		name = p.ID
	}
	if w.used[name] {
		name = name + "_" + SanitizeFilename(p.ID)
	}
	w.used[name] = true

	path := filepath.Join(w.dir, name+".json")
	if err := writeJSON(path, p); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSummaryJSON writes the aggregate summary document.
func (w *Writer) WriteSummaryJSON(doc any) error {
	return writeJSON(filepath.Join(w.dir, summaryJSONName), doc)
}

// WriteSummaryCSV writes one row per policy in the given order.
func (w *Writer) WriteSummaryCSV(rows []intune.SummaryRow) error {
	path := filepath.Join(w.dir, summaryCSVName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Type", "PolicyId", "PolicyName", "Version", "IsActive", "AssignmentCount", "AssignedTargets"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		rec := []string{
			string(row.Type),
			row.PolicyID,
			row.PolicyName,
			strconv.Itoa(row.Version),
			strconv.FormatBool(row.IsActive),
			strconv.Itoa(row.AssignmentCount),
			row.AssignedTargets,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row for %s: %w", row.PolicyID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// SanitizeFilename replaces path-unsafe characters with underscores.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
