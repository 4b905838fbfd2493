// Package graph is a thin read-only client for the Microsoft Graph
// device-management surface: category listings with nextLink pagination,
// per-policy assignment listings, and group/assignment-filter lookups.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/cfphilippson/intune-export/internal/intune"
)

const (
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	pathDeviceConfigurations  = "/deviceManagement/deviceConfigurations"
	pathConfigurationPolicies = "/deviceManagement/configurationPolicies"
	pathCompliancePolicies    = "/deviceManagement/deviceCompliancePolicies"
	pathAssignmentFilters     = "/deviceManagement/assignmentFilters"
)

// Config carries everything needed to talk to Graph. HTTPClient, when
// set, bypasses the client-credentials flow; tests and the mock server
// use that.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	BaseURL      string
	HTTPClient   *http.Client
	Observer     RequestObserver
}

// StatusError is a non-2xx Graph response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graph returned status %d: %s", e.Status, e.Body)
}

type Client struct {
	http     *http.Client
	base     string
	observer RequestObserver
}

// NewClient builds a client. Without an injected HTTP client the
// client-credentials token flow against the tenant's Entra endpoint is
// used; tokens refresh automatically via the oauth2 transport.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	hc := cfg.HTTPClient
	if hc == nil {
		if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, fmt.Errorf("tenant id, client id and client secret are required")
		}
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", url.PathEscape(cfg.TenantID)),
			Scopes:       []string{"https://graph.microsoft.com/.default"},
		}
		hc = cc.Client(ctx)
	}

	return &Client{http: hc, base: base, observer: cfg.Observer}, nil
}

// ListPolicies dispatches to the category's listing endpoint.
func (c *Client) ListPolicies(ctx context.Context, category intune.Category) ([]PolicyRecord, error) {
	switch category {
	case intune.CategoryDeviceConfiguration:
		return c.ListDeviceConfigurations(ctx)
	case intune.CategorySettingsCatalog:
		return c.ListSettingsCatalogPolicies(ctx)
	case intune.CategoryCompliance:
		return c.ListCompliancePolicies(ctx)
	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}
}

// ListDeviceConfigurations lists device configuration profiles.
func (c *Client) ListDeviceConfigurations(ctx context.Context) ([]PolicyRecord, error) {
	return c.listPolicies(ctx, "listDeviceConfigurations", pathDeviceConfigurations)
}

// ListSettingsCatalogPolicies lists settings-catalog configuration policies.
func (c *Client) ListSettingsCatalogPolicies(ctx context.Context) ([]PolicyRecord, error) {
	return c.listPolicies(ctx, "listSettingsCatalogPolicies", pathConfigurationPolicies)
}

// ListCompliancePolicies lists device compliance policies.
func (c *Client) ListCompliancePolicies(ctx context.Context) ([]PolicyRecord, error) {
	return c.listPolicies(ctx, "listCompliancePolicies", pathCompliancePolicies)
}

func (c *Client) listPolicies(ctx context.Context, op, path string) ([]PolicyRecord, error) {
	var out []PolicyRecord
	err := c.getPaged(ctx, op, c.base+path, func(value json.RawMessage) error {
		var page []PolicyRecord
		if err := json.Unmarshal(value, &page); err != nil {
			return err
		}
		out = append(out, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAssignments lists the raw assignments of one policy within the
// given category's API surface, in service order.
func (c *Client) ListAssignments(ctx context.Context, category intune.Category, policyID string) ([]intune.RawAssignment, error) {
	var path string
	switch category {
	case intune.CategoryDeviceConfiguration:
		path = pathDeviceConfigurations
	case intune.CategorySettingsCatalog:
		path = pathConfigurationPolicies
	case intune.CategoryCompliance:
		path = pathCompliancePolicies
	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}

	var out []intune.RawAssignment
	u := fmt.Sprintf("%s%s/%s/assignments", c.base, path, url.PathEscape(policyID))
	err := c.getPaged(ctx, "listAssignments", u, func(value json.RawMessage) error {
		var page []intune.RawAssignment
		if err := json.Unmarshal(value, &page); err != nil {
			return err
		}
		out = append(out, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetGroup returns the display name of a directory group.
func (c *Client) GetGroup(ctx context.Context, id string) (string, error) {
	var g group
	u := fmt.Sprintf("%s/groups/%s?$select=displayName", c.base, url.PathEscape(id))
	if err := c.getJSON(ctx, "getGroup", u, &g); err != nil {
		return "", err
	}
	return g.DisplayName, nil
}

// GetAssignmentFilter returns the display name of an assignment filter.
func (c *Client) GetAssignmentFilter(ctx context.Context, id string) (string, error) {
	var f assignmentFilter
	u := fmt.Sprintf("%s%s/%s", c.base, pathAssignmentFilters, url.PathEscape(id))
	if err := c.getJSON(ctx, "getAssignmentFilter", u, &f); err != nil {
		return "", err
	}
	return f.DisplayName, nil
}

// getPaged follows @odata.nextLink until the collection is exhausted,
// handing each page's value array to collect.
func (c *Client) getPaged(ctx context.Context, op, u string, collect func(value json.RawMessage) error) error {
	for u != "" {
		var page struct {
			Value    json.RawMessage `json:"value"`
			NextLink string          `json:"@odata.nextLink"`
		}
		if err := c.getJSON(ctx, op, u, &page); err != nil {
			return err
		}
		if len(page.Value) > 0 {
			if err := collect(page.Value); err != nil {
				return fmt.Errorf("decode %s page: %w", op, err)
			}
		}
		u = page.NextLink
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, 0, time.Since(start))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	c.observe(op, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) observe(op string, status int, d time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveRequest(op, status, d)
}
