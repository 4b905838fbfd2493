package intune

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// RawAssignment is one assignment record as listed by the service, with
// the polymorphic target left undecoded until ParseTarget.
type RawAssignment struct {
	ID     string          `json:"id"`
	Target json.RawMessage `json:"target"`
}

// FetchFunc lists raw assignments for one policy id within a single
// category's API surface.
type FetchFunc func(ctx context.Context, policyID string) ([]RawAssignment, error)

// Collector fetches and resolves the assignments of one policy category.
// The three categories share this implementation and differ only in the
// fetch call and the category tag used in warnings.
type Collector struct {
	category Category
	fetch    FetchFunc
	desc     *Describer
	log      *zap.Logger
}

func NewCollector(category Category, fetch FetchFunc, desc *Describer, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{category: category, fetch: fetch, desc: desc, log: log}
}

// Collect returns the resolved assignments for policyID in listing order.
// A listing failure is logged and yields an empty slice: one policy's
// fetch failure never aborts the batch.
func (c *Collector) Collect(ctx context.Context, policyID string) []Assignment {
	raws, err := c.fetch(ctx, policyID)
	if err != nil {
		c.log.Warn("assignment listing failed",
			zap.String("category", string(c.category)),
			zap.String("policyId", policyID),
			zap.Error(err),
		)
		return []Assignment{}
	}

	out := make([]Assignment, 0, len(raws))
	for _, raw := range raws {
		t := ParseTarget(raw.Target)
		out = append(out, Assignment{
			AssignmentID:    raw.ID,
			TargetODataType: t.RawType,
			TargetGroupID:   t.GroupID,
			TargetResolved:  c.desc.Describe(ctx, t),
		})
	}
	return out
}
