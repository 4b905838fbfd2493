package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cfphilippson/intune-export/internal/config"
	"github.com/cfphilippson/intune-export/internal/graph"
	"github.com/cfphilippson/intune-export/internal/intune"
	"github.com/cfphilippson/intune-export/internal/intune/selectexpr"
	"github.com/cfphilippson/intune-export/internal/report"
)

// BuildService assembles a ready-to-run export service from
// configuration. The returned cleanup flushes the async request observer
// and must be called after the run.
func BuildService(ctx context.Context, cfg config.Config, log *zap.Logger) (*Service, func(), error) {
	observer := graph.NewAsyncRequestObserver(graph.NewZapRequestObserver(log), cfg.ObsBuffer)

	client, err := graph.NewClient(ctx, graph.Config{
		TenantID:     cfg.TenantID,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		BaseURL:      cfg.GraphBaseURL,
		Observer:     observer,
	})
	if err != nil {
		observer.Close()
		return nil, nil, fmt.Errorf("build graph client: %w", err)
	}

	describer := intune.NewDescriber(client)
	collectors := make(map[intune.Category]Collector, len(intune.Categories()))
	for _, category := range intune.Categories() {
		collectors[category] = intune.NewCollector(category, assignmentFetch(client, category), describer, log)
	}

	writer, err := report.NewWriter(cfg.OutputDir, time.Now())
	if err != nil {
		observer.Close()
		return nil, nil, err
	}

	opts := []ServiceOption{}
	if cfg.Select != "" {
		sel, err := selectexpr.Compile(cfg.Select)
		if err != nil {
			observer.Close()
			return nil, nil, err
		}
		opts = append(opts, WithSelector(sel))
	}

	svc := NewService(client, collectors, writer, log, opts...)
	return svc, observer.Close, nil
}

func assignmentFetch(client *graph.Client, category intune.Category) intune.FetchFunc {
	return func(ctx context.Context, policyID string) ([]intune.RawAssignment, error) {
		return client.ListAssignments(ctx, category, policyID)
	}
}
