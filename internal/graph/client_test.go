package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfphilippson/intune-export/internal/intune"
)

func newTestClient(t *testing.T, handler http.Handler, observer RequestObserver) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Observer:   observer,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresCredentialsWithoutInjectedHTTPClient(t *testing.T) {
	_, err := NewClient(context.Background(), Config{TenantID: "t"})
	assert.Error(t, err)
}

func TestListDeviceConfigurations_FollowsNextLink(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/deviceManagement/deviceConfigurations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"value":[{"id":"dc-2","displayName":"Second"}]}`)
			return
		}
		fmt.Fprintf(w, `{"value":[{"id":"dc-1","displayName":"First"}],"@odata.nextLink":%q}`,
			srvURL+"/deviceManagement/deviceConfigurations?page=2")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	c, err := NewClient(context.Background(), Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)

	got, err := c.ListDeviceConfigurations(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "dc-1", got[0].ID)
	assert.Equal(t, "dc-2", got[1].ID)
}

func TestListPolicies_DispatchesByCategory(t *testing.T) {
	paths := make([]string, 0, 3)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[]}`)
	})
	c := newTestClient(t, mux, nil)

	for _, category := range intune.Categories() {
		_, err := c.ListPolicies(context.Background(), category)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{
		"/deviceManagement/deviceConfigurations",
		"/deviceManagement/configurationPolicies",
		"/deviceManagement/deviceCompliancePolicies",
	}, paths)

	_, err := c.ListPolicies(context.Background(), intune.Category("Bogus"))
	assert.Error(t, err)
}

func TestListAssignments_DecodesRawTargets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/deviceManagement/deviceCompliancePolicies/cp-1/assignments", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[
			{"id":"a1","target":{"@odata.type":"#microsoft.graph.allDevicesAssignmentTarget"}},
			{"id":"a2","target":{"@odata.type":"#microsoft.graph.groupAssignmentTarget","groupId":"g1"}}
		]}`)
	})
	c := newTestClient(t, mux, nil)

	got, err := c.ListAssignments(context.Background(), intune.CategoryCompliance, "cp-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)

	target := intune.ParseTarget(got[1].Target)
	assert.Equal(t, intune.TargetGroup, target.Kind)
	assert.Equal(t, "g1", target.GroupID)
}

func TestGetGroup(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/groups/g1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "displayName", r.URL.Query().Get("$select"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"displayName": "Engineering"})
	})
	c := newTestClient(t, mux, nil)

	name, err := c.GetGroup(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", name)
}

func TestGetGroup_NotFoundIsStatusError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"Request_ResourceNotFound"}}`, http.StatusNotFound)
	})
	c := newTestClient(t, mux, nil)

	_, err := c.GetGroup(context.Background(), "missing")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
}

func TestGetAssignmentFilter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/deviceManagement/assignmentFilters/f1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"displayName": "Corporate Windows"})
	})
	c := newTestClient(t, mux, nil)

	name, err := c.GetAssignmentFilter(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "Corporate Windows", name)
}

type spyRequestObserver struct {
	mu         sync.Mutex
	operations []string
	statuses   []int
}

func (s *spyRequestObserver) ObserveRequest(operation string, status int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operations = append(s.operations, operation)
	s.statuses = append(s.statuses, status)
}

func TestClient_ObserverSeesEveryRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[]}`)
	})
	spy := &spyRequestObserver{}
	c := newTestClient(t, mux, spy)

	_, err := c.ListCompliancePolicies(context.Background())
	require.NoError(t, err)
	_, err = c.GetGroup(context.Background(), "g1")
	require.NoError(t, err)

	assert.Equal(t, []string{"listCompliancePolicies", "getGroup"}, spy.operations)
	assert.Equal(t, []int{200, 200}, spy.statuses)
}
