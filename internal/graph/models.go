package graph

import "time"

// PolicyRecord is the shared shape of a policy as listed by the three
// device-management endpoints. Settings-catalog policies report "name"
// instead of "displayName" and carry technologies/platforms instead of
// an @odata.type; Title() papers over the first difference.
type PolicyRecord struct {
	ID                   string    `json:"id"`
	DisplayName          string    `json:"displayName"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Version              int       `json:"version"`
	CreatedDateTime      time.Time `json:"createdDateTime"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
	ODataType            string    `json:"@odata.type"`
	Technologies         string    `json:"technologies"`
	Platforms            string    `json:"platforms"`
}

// Title returns the record's display name regardless of which field the
// endpoint populated.
func (r PolicyRecord) Title() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Name
}

type group struct {
	DisplayName string `json:"displayName"`
}

type assignmentFilter struct {
	DisplayName string `json:"displayName"`
}
