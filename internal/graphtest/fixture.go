// Package graphtest serves a canned Graph tenant over HTTP. The
// integration tests and the mockgraph binary share it: point the client
// at Fixture.Handler via an httptest or net/http server and the export
// runs against fixture data instead of a live tenant.
package graphtest

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/cfphilippson/intune-export/internal/graph"
	"github.com/cfphilippson/intune-export/internal/intune"
)

type Fixture struct {
	mu sync.Mutex

	policies    map[intune.Category][]graph.PolicyRecord
	assignments map[string][]intune.RawAssignment
	groups      map[string]string
	filters     map[string]string

	// policy ids whose assignment listing answers 500
	failAssignments map[string]bool

	groupLookups map[string]int
}

func New() *Fixture {
	return &Fixture{
		policies:        make(map[intune.Category][]graph.PolicyRecord),
		assignments:     make(map[string][]intune.RawAssignment),
		groups:          make(map[string]string),
		filters:         make(map[string]string),
		failAssignments: make(map[string]bool),
		groupLookups:    make(map[string]int),
	}
}

func (f *Fixture) AddPolicy(category intune.Category, rec graph.PolicyRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policies[category] = append(f.policies[category], rec)
}

func (f *Fixture) SetAssignments(policyID string, raws ...intune.RawAssignment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments[policyID] = raws
}

func (f *Fixture) AddGroup(id, displayName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[id] = displayName
}

func (f *Fixture) AddFilter(id, displayName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters[id] = displayName
}

// FailAssignmentsFor makes the assignment listing for policyID answer
// with a server error.
func (f *Fixture) FailAssignmentsFor(policyID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAssignments[policyID] = true
}

// GroupLookupCount reports how many times the group endpoint was hit for
// one id.
func (f *Fixture) GroupLookupCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groupLookups[id]
}

// Handler routes the subset of Graph this exporter reads.
func (f *Fixture) Handler() http.Handler {
	mux := http.NewServeMux()

	surfaces := map[string]intune.Category{
		"deviceConfigurations":     intune.CategoryDeviceConfiguration,
		"configurationPolicies":    intune.CategorySettingsCatalog,
		"deviceCompliancePolicies": intune.CategoryCompliance,
	}

	for surface, category := range surfaces {
		mux.HandleFunc("GET /deviceManagement/"+surface, func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			records := f.policies[category]
			f.mu.Unlock()
			writeCollection(w, records)
		})
		mux.HandleFunc("GET /deviceManagement/"+surface+"/{id}/assignments", func(w http.ResponseWriter, r *http.Request) {
			id := r.PathValue("id")
			f.mu.Lock()
			fail := f.failAssignments[id]
			raws := f.assignments[id]
			f.mu.Unlock()
			if fail {
				http.Error(w, `{"error":{"message":"internal"}}`, http.StatusInternalServerError)
				return
			}
			writeCollection(w, raws)
		})
	}

	mux.HandleFunc("GET /groups/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		f.mu.Lock()
		f.groupLookups[id]++
		name, ok := f.groups[id]
		f.mu.Unlock()
		if !ok {
			http.Error(w, `{"error":{"code":"Request_ResourceNotFound"}}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]string{"displayName": name})
	})

	mux.HandleFunc("GET /deviceManagement/assignmentFilters/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		f.mu.Lock()
		name, ok := f.filters[id]
		f.mu.Unlock()
		if !ok {
			http.Error(w, `{"error":{"code":"NotFound"}}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]string{"displayName": name})
	})

	return mux
}

func writeCollection(w http.ResponseWriter, value any) {
	if value == nil {
		value = []any{}
	}
	writeJSON(w, map[string]any{"value": value})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
