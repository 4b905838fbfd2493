package intune

import (
	"context"
	"fmt"

	"github.com/cfphilippson/intune-export/internal/intune/cache"
)

// DirectoryClient is the remote lookup surface the Describer needs:
// group and assignment-filter display names by id.
type DirectoryClient interface {
	GetGroup(ctx context.Context, id string) (string, error)
	GetAssignmentFilter(ctx context.Context, id string) (string, error)
}

// Describer turns parsed targets into display labels. Group and filter
// lookups go through per-run caches, so each id hits the directory at
// most once; failed lookups fall back to the raw id and are remembered.
type Describer struct {
	dir     DirectoryClient
	groups  *cache.Names
	filters *cache.Names
}

func NewDescriber(dir DirectoryClient) *Describer {
	return &Describer{
		dir:     dir,
		groups:  cache.NewNames(),
		filters: cache.NewNames(),
	}
}

// Describe composes the human-readable label for a target. It never
// fails: lookup errors degrade to raw identifiers.
func (d *Describer) Describe(ctx context.Context, t Target) string {
	var label string

	switch t.Kind {
	case TargetAllDevices:
		label = "All Devices"
	case TargetAllUsers:
		label = "All Users"
	case TargetGroup:
		label = "Group: " + d.GroupName(ctx, t.GroupID)
	default:
		if t.RawType != "" {
			label = t.RawType
		} else {
			label = "Unknown Target"
		}
	}

	if t.Filter != nil {
		name := d.filters.Resolve(t.Filter.ID, func() (string, error) {
			return d.dir.GetAssignmentFilter(ctx, t.Filter.ID)
		})
		label += fmt.Sprintf(" [Filter: %s (%s)]", name, t.Filter.Type)
	}

	return label
}

// GroupName resolves a group id to its display name through the run
// cache. Empty ids resolve to "" without a remote call.
func (d *Describer) GroupName(ctx context.Context, id string) string {
	return d.groups.Resolve(id, func() (string, error) {
		return d.dir.GetGroup(ctx, id)
	})
}

// CachedGroups reports how many distinct group ids have been resolved.
func (d *Describer) CachedGroups() int {
	return d.groups.Len()
}
