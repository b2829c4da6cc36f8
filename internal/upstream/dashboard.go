package upstream

import (
	"context"
	"net/http"
	"net/url"
)

// DefaultCategory is the dashboard category the legacy single-URL backend shape is folded into
const DefaultCategory = "default"

// DashboardRecord represents the dashboard record the backend resolved for a county
type DashboardRecord struct {
	CountyName string            `json:"county_name"`
	Dashboards map[string]string `json:"dashboards"`

	// LegacyURL carries the single-URL backend shape; URL folds it into DefaultCategory
	LegacyURL string `json:"dashboard_url"`
}

// URL returns the dashboard URL configured for the given category, or an empty
// string if the category is not configured
func (record *DashboardRecord) URL(category string) string {
	if len(record.Dashboards) > 0 {
		return record.Dashboards[category]
	}
	if category == DefaultCategory {
		return record.LegacyURL
	}
	return ""
}

// GetDashboard fetches the dashboard record for the given county.
// An empty countyID lets the backend resolve the county bound to the session token.
func (client *Client) GetDashboard(ctx context.Context, countyID string) (*DashboardRecord, error) {
	query := url.Values{}
	if countyID != "" {
		query.Set("county_id", countyID)
	}

	record := new(DashboardRecord)
	if err := client.call(ctx, http.MethodGet, "get_dashboard", query, nil, record, true); err != nil {
		return nil, err
	}
	return record, nil
}
