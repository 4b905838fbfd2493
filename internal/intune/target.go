package intune

import (
	"encoding/json"
	"strings"
)

// TargetKind enumerates the assignment target variants the export
// understands. Anything else stays TargetUnknown and carries its raw
// discriminator for display.
type TargetKind int

const (
	TargetUnknown TargetKind = iota
	TargetAllDevices
	TargetAllUsers
	TargetGroup
)

// FilterRef is an optional assignment-filter reference on a target.
type FilterRef struct {
	ID   string
	Type string
}

// Target is the parsed form of a raw Graph assignment target. Raw records
// arrive either with typed fields or as a loose properties bag; ParseTarget
// normalizes both into this variant once, at the boundary.
type Target struct {
	Kind    TargetKind
	GroupID string
	RawType string
	Filter  *FilterRef
}

const (
	bagKeyODataType  = "@odata.type"
	bagKeyGroupID    = "groupId"
	bagKeyFilterID   = "deviceAndAppManagementAssignmentFilterId"
	bagKeyFilterType = "deviceAndAppManagementAssignmentFilterType"
)

type rawTarget struct {
	ODataType  string `json:"@odata.type"`
	GroupID    string `json:"groupId"`
	FilterID   string `json:"deviceAndAppManagementAssignmentFilterId"`
	FilterType string `json:"deviceAndAppManagementAssignmentFilterType"`

	bag map[string]any
}

func (r *rawTarget) UnmarshalJSON(data []byte) error {
	type alias rawTarget
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = rawTarget(a)
	// keep the bag for fields the typed decode missed
	_ = json.Unmarshal(data, &r.bag)
	return nil
}

// field returns the typed value when set, otherwise the bag value for the
// same key. Typed wins; first non-empty value is final.
func (r *rawTarget) field(typed, bagKey string) string {
	if typed != "" {
		return typed
	}
	if v, ok := r.bag[bagKey].(string); ok {
		return v
	}
	return ""
}

// ParseTarget decodes a raw assignment target into its variant form.
// Malformed input degrades to TargetUnknown with no raw type.
func ParseTarget(data []byte) Target {
	var raw rawTarget
	if len(data) == 0 || json.Unmarshal(data, &raw) != nil {
		return Target{Kind: TargetUnknown}
	}

	t := Target{
		RawType: raw.field(raw.ODataType, bagKeyODataType),
	}

	switch normalizeODataType(t.RawType) {
	case "alldevicesassignmenttarget":
		t.Kind = TargetAllDevices
	case "alllicensedusersassignmenttarget":
		t.Kind = TargetAllUsers
	case "groupassignmenttarget":
		t.Kind = TargetGroup
		t.GroupID = raw.field(raw.GroupID, bagKeyGroupID)
	default:
		t.Kind = TargetUnknown
	}

	if id := raw.field(raw.FilterID, bagKeyFilterID); id != "" {
		t.Filter = &FilterRef{
			ID:   id,
			Type: raw.field(raw.FilterType, bagKeyFilterType),
		}
	}

	return t
}

// normalizeODataType strips the "#microsoft.graph." envelope so variants
// compare by bare type name. Exclusion targets keep their own name and do
// not collapse into groupassignmenttarget.
func normalizeODataType(odataType string) string {
	s := strings.TrimPrefix(odataType, "#")
	s = strings.TrimPrefix(strings.ToLower(s), "microsoft.graph.")
	return s
}
