// mockgraph serves a small fake Graph tenant so an export can be
// dry-run locally without credentials:
//
//	mockgraph -addr :9000 &
//	intune-export --graph-url http://localhost:9000 --tenant-id x --client-id x --client-secret x
//
// The client still requires credential flags but never sends them here.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cfphilippson/intune-export/internal/graph"
	"github.com/cfphilippson/intune-export/internal/graphtest"
	"github.com/cfphilippson/intune-export/internal/intune"
)

func main() {
	addr := flag.String("addr", ":9000", "listen address")
	flag.Parse()

	fixture := graphtest.New()
	seed(fixture)

	fmt.Printf("mock Graph tenant listening on %s\n", *addr)
	if err := http.ListenAndServe(*addr, fixture.Handler()); err != nil {
		fmt.Fprintf(os.Stderr, "mockgraph: %v\n", err)
		os.Exit(1)
	}
}

func seed(f *graphtest.Fixture) {
	created := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)

	f.AddGroup("11111111-aaaa-4bbb-8ccc-000000000001", "Engineering")
	f.AddGroup("11111111-aaaa-4bbb-8ccc-000000000002", "Sales Devices")
	f.AddFilter("22222222-aaaa-4bbb-8ccc-000000000001", "Corporate Windows")

	f.AddPolicy(intune.CategoryDeviceConfiguration, graph.PolicyRecord{
		ID:                   "dc-001",
		DisplayName:          "Baseline Wi-Fi Profile",
		Description:          "Corporate wireless settings",
		Version:              3,
		CreatedDateTime:      created,
		LastModifiedDateTime: created.AddDate(0, 2, 0),
		ODataType:            "#microsoft.graph.windowsWifiConfiguration",
	})
	f.SetAssignments("dc-001",
		rawAssignment("dc-001-a1", map[string]any{
			"@odata.type": "#microsoft.graph.allDevicesAssignmentTarget",
		}),
		rawAssignment("dc-001-a2", map[string]any{
			"@odata.type": "#microsoft.graph.groupAssignmentTarget",
			"groupId":     "11111111-aaaa-4bbb-8ccc-000000000001",
		}),
	)

	f.AddPolicy(intune.CategorySettingsCatalog, graph.PolicyRecord{
		ID:                   "sc-001",
		Name:                 "Defender Hardening",
		Version:              1,
		CreatedDateTime:      created,
		LastModifiedDateTime: created,
		Technologies:         "mdm",
		Platforms:            "windows10",
	})
	f.SetAssignments("sc-001",
		rawAssignment("sc-001-a1", map[string]any{
			"@odata.type": "#microsoft.graph.allLicensedUsersAssignmentTarget",
			"deviceAndAppManagementAssignmentFilterId":   "22222222-aaaa-4bbb-8ccc-000000000001",
			"deviceAndAppManagementAssignmentFilterType": "include",
		}),
	)

	f.AddPolicy(intune.CategoryCompliance, graph.PolicyRecord{
		ID:                   "cp-001",
		DisplayName:          "Windows Compliance",
		Version:              2,
		CreatedDateTime:      created,
		LastModifiedDateTime: created,
		ODataType:            "#microsoft.graph.windows10CompliancePolicy",
	})
	f.SetAssignments("cp-001",
		rawAssignment("cp-001-a1", map[string]any{
			"@odata.type": "#microsoft.graph.exclusionGroupAssignmentTarget",
			"groupId":     "11111111-aaaa-4bbb-8ccc-000000000002",
		}),
	)
}

func rawAssignment(id string, target map[string]any) intune.RawAssignment {
	data, _ := json.Marshal(target)
	return intune.RawAssignment{ID: id, Target: data}
}
