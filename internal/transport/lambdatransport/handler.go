// Package lambdatransport runs one export per scheduled Lambda
// invocation, returning the run summary as the function result.
package lambdatransport

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/cfphilippson/intune-export/internal/app"
)

// ExportRunner is one configured export run.
type ExportRunner interface {
	Export(ctx context.Context) (*app.RunSummary, error)
}

// RunnerFactory builds a fresh runner per invocation, so every run gets
// its own timestamped output directory. The returned func releases the
// runner's resources.
type RunnerFactory func(ctx context.Context) (ExportRunner, func(), error)

type Handler struct {
	factory RunnerFactory
	log     *zap.Logger
}

func NewHandler(factory RunnerFactory, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{factory: factory, log: log}
}

// Run handles one scheduled event. The event payload is ignored; the
// schedule only decides when the export fires.
func (h *Handler) Run(ctx context.Context, ev events.CloudWatchEvent) (*app.RunSummary, error) {
	h.log.Info("scheduled export triggered",
		zap.String("eventId", ev.ID),
		zap.String("source", ev.Source),
	)

	runner, cleanup, err := h.factory(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return runner.Export(ctx)
}
