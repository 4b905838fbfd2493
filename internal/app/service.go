// Package app wires the export run: list each policy category, resolve
// every policy's assignments, and hand the results to the report writer.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cfphilippson/intune-export/internal/graph"
	"github.com/cfphilippson/intune-export/internal/intune"
)

type PolicyLister interface {
	ListPolicies(ctx context.Context, category intune.Category) ([]graph.PolicyRecord, error)
}

type Collector interface {
	Collect(ctx context.Context, policyID string) []intune.Assignment
}

type ReportWriter interface {
	Dir() string
	WritePolicy(p intune.Policy) (string, error)
	WriteSummaryJSON(doc any) error
	WriteSummaryCSV(rows []intune.SummaryRow) error
	WriteGraphDOT(policies []intune.Policy) error
}

type Selector interface {
	Match(row intune.SummaryRow, platform string) (bool, error)
}

// RunSummary is the aggregate document of one export run.
type RunSummary struct {
	RunID       string              `json:"runId"`
	StartedAt   time.Time           `json:"startedAt"`
	OutputDir   string              `json:"outputDir"`
	PolicyCount int                 `json:"policyCount"`
	Policies    []intune.SummaryRow `json:"policies"`
	Errors      []string            `json:"errors,omitempty"`
}

type Service struct {
	lister     PolicyLister
	collectors map[intune.Category]Collector
	writer     ReportWriter
	selector   Selector
	log        *zap.Logger
	now        func() time.Time
}

type ServiceOption func(*Service)

// WithSelector restricts the run to policies matching the selection
// expression. Without it every policy is exported.
func WithSelector(sel Selector) ServiceOption {
	return func(s *Service) { s.selector = sel }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(lister PolicyLister, collectors map[intune.Category]Collector, writer ReportWriter, log *zap.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		lister:     lister,
		collectors: collectors,
		writer:     writer,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export runs one full export. Categories are processed in fixed order
// and policies in listing order, sequentially. A category listing failure
// aborts the run; everything below that level degrades per policy and is
// reported in the summary instead.
func (s *Service) Export(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: s.now().UTC(),
		OutputDir: s.writer.Dir(),
		Policies:  []intune.SummaryRow{},
	}

	var exported []intune.Policy

	for _, category := range intune.Categories() {
		records, err := s.lister.ListPolicies(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("list %s policies: %w", category, err)
		}
		s.log.Info("listed policies",
			zap.String("category", string(category)),
			zap.Int("count", len(records)),
		)

		collector, ok := s.collectors[category]
		if !ok {
			return nil, fmt.Errorf("no collector for category %s", category)
		}

		for _, rec := range records {
			assignments := collector.Collect(ctx, rec.ID)
			policy := buildPolicy(category, rec, assignments)
			row := summaryRow(policy)

			if s.selector != nil {
				match, err := s.selector.Match(row, platformOf(rec))
				if err != nil {
					return nil, err
				}
				if !match {
					s.log.Debug("policy skipped by selection",
						zap.String("category", string(category)),
						zap.String("policyId", policy.ID),
					)
					continue
				}
			}

			if _, err := s.writer.WritePolicy(policy); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("write policy %s: %v", policy.ID, err))
				s.log.Warn("policy file write failed",
					zap.String("policyId", policy.ID),
					zap.Error(err),
				)
			}

			exported = append(exported, policy)
			summary.Policies = append(summary.Policies, row)
			s.log.Debug("policy exported",
				zap.String("category", string(category)),
				zap.String("policyId", policy.ID),
				zap.Int("assignments", len(assignments)),
				zap.Bool("isActive", policy.IsActive),
			)
		}
	}

	summary.PolicyCount = len(summary.Policies)

	if err := s.writer.WriteSummaryJSON(summary); err != nil {
		return nil, err
	}
	if err := s.writer.WriteSummaryCSV(summary.Policies); err != nil {
		return nil, err
	}
	if err := s.writer.WriteGraphDOT(exported); err != nil {
		return nil, err
	}

	s.log.Info("export complete",
		zap.String("runId", summary.RunID),
		zap.Int("policies", summary.PolicyCount),
		zap.String("outputDir", summary.OutputDir),
	)
	return summary, nil
}

func buildPolicy(category intune.Category, rec graph.PolicyRecord, assignments []intune.Assignment) intune.Policy {
	return intune.Policy{
		Category:             category,
		ID:                   rec.ID,
		DisplayName:          rec.Title(),
		Description:          rec.Description,
		Version:              rec.Version,
		CreatedDateTime:      rec.CreatedDateTime,
		LastModifiedDateTime: rec.LastModifiedDateTime,
		ODataType:            rec.ODataType,
		Technologies:         rec.Technologies,
		Platforms:            rec.Platforms,
		Assignments:          assignments,
		IsActive:             intune.IsActive(assignments),
	}
}

func summaryRow(p intune.Policy) intune.SummaryRow {
	labels := make([]string, 0, len(p.Assignments))
	for _, a := range p.Assignments {
		labels = append(labels, a.TargetResolved)
	}
	return intune.SummaryRow{
		Type:            p.Category,
		PolicyID:        p.ID,
		PolicyName:      p.DisplayName,
		Version:         p.Version,
		IsActive:        p.IsActive,
		AssignmentCount: len(p.Assignments),
		AssignedTargets: strings.Join(labels, "; "),
	}
}

// platformOf picks the category-specific discriminator a selection
// expression sees as Platform.
func platformOf(rec graph.PolicyRecord) string {
	if rec.Platforms != "" {
		return rec.Platforms
	}
	if rec.Technologies != "" {
		return rec.Technologies
	}
	return rec.ODataType
}
