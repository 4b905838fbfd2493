// Package intune holds the domain model for exported policy configurations:
// the three policy categories, resolved assignments, and the summary rows
// emitted into the aggregate artifacts.
package intune

import "time"

// Category is one of the three Intune policy surfaces this tool exports.
type Category string

const (
	CategoryDeviceConfiguration Category = "DeviceConfiguration"
	CategorySettingsCatalog     Category = "SettingsCatalog"
	CategoryCompliance          Category = "Compliance"
)

// Categories in export order. Summary rows follow this order, then
// discovery order within a category.
func Categories() []Category {
	return []Category{
		CategoryDeviceConfiguration,
		CategorySettingsCatalog,
		CategoryCompliance,
	}
}

// Policy is one exported policy record. Built once per remote record,
// never mutated after construction.
type Policy struct {
	Category             Category     `json:"category"`
	ID                   string       `json:"id"`
	DisplayName          string       `json:"displayName"`
	Description          string       `json:"description,omitempty"`
	Version              int          `json:"version"`
	CreatedDateTime      time.Time    `json:"createdDateTime"`
	LastModifiedDateTime time.Time    `json:"lastModifiedDateTime"`
	ODataType            string       `json:"@odata.type,omitempty"`
	Technologies         string       `json:"technologies,omitempty"`
	Platforms            string       `json:"platforms,omitempty"`
	Assignments          []Assignment `json:"assignments"`
	IsActive             bool         `json:"isActive"`
}

// Assignment is one resolved assignment row under a Policy.
// TargetODataType keeps the raw discriminator: classification decisions
// branch on it, never on the resolved label.
type Assignment struct {
	AssignmentID    string `json:"assignmentId"`
	TargetODataType string `json:"targetODataType"`
	TargetGroupID   string `json:"targetGroupId,omitempty"`
	TargetResolved  string `json:"targetResolved"`
}

// SummaryRow is one aggregate row per policy across all categories.
type SummaryRow struct {
	Type            Category `json:"type"`
	PolicyID        string   `json:"policyId"`
	PolicyName      string   `json:"policyName"`
	Version         int      `json:"version"`
	IsActive        bool     `json:"isActive"`
	AssignmentCount int      `json:"assignmentCount"`
	AssignedTargets string   `json:"assignedTargets"`
}
