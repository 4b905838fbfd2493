package intune

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func rawTargetJSON(t *testing.T, fields map[string]any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(fields)
	require.NoError(t, err)
	return data
}

func TestCollector_MapsAssignmentsInOrder(t *testing.T) {
	dir := &fakeDirectory{groups: map[string]string{"g1": "Engineering"}}
	desc := NewDescriber(dir)

	fetch := func(ctx context.Context, policyID string) ([]RawAssignment, error) {
		return []RawAssignment{
			{ID: "a1", Target: rawTargetJSON(t, map[string]any{
				"@odata.type": "#microsoft.graph.allLicensedUsersAssignmentTarget",
			})},
			{ID: "a2", Target: rawTargetJSON(t, map[string]any{
				"@odata.type": "#microsoft.graph.groupAssignmentTarget",
				"groupId":     "g1",
			})},
		}, nil
	}

	c := NewCollector(CategoryCompliance, fetch, desc, zap.NewNop())
	got := c.Collect(context.Background(), "p1")

	require.Len(t, got, 2)
	assert.Equal(t, Assignment{
		AssignmentID:    "a1",
		TargetODataType: "#microsoft.graph.allLicensedUsersAssignmentTarget",
		TargetResolved:  "All Users",
	}, got[0])
	assert.Equal(t, Assignment{
		AssignmentID:    "a2",
		TargetODataType: "#microsoft.graph.groupAssignmentTarget",
		TargetGroupID:   "g1",
		TargetResolved:  "Group: Engineering",
	}, got[1])
}

func TestCollector_FetchFailureYieldsEmptyAndWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	desc := NewDescriber(&fakeDirectory{})

	fetch := func(ctx context.Context, policyID string) ([]RawAssignment, error) {
		return nil, errors.New("503 service unavailable")
	}

	c := NewCollector(CategoryDeviceConfiguration, fetch, desc, zap.New(core))
	got := c.Collect(context.Background(), "p-broken")

	assert.NotNil(t, got)
	assert.Empty(t, got)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "assignment listing failed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, string(CategoryDeviceConfiguration), fields["category"])
	assert.Equal(t, "p-broken", fields["policyId"])
}

func TestCollector_NoAssignments(t *testing.T) {
	desc := NewDescriber(&fakeDirectory{})
	fetch := func(ctx context.Context, policyID string) ([]RawAssignment, error) {
		return nil, nil
	}

	c := NewCollector(CategorySettingsCatalog, fetch, desc, nil)
	got := c.Collect(context.Background(), "p1")
	assert.Empty(t, got)
}
