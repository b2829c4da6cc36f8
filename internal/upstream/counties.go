package upstream

import (
	"context"
	"github.com/countyhealth/portal/internal/county"
	"net/http"
	"net/url"
	"strconv"
)

type countyListPayload struct {
	Counties   []*county.County `json:"counties"`
	TotalPages int              `json:"total_pages"`
}

// GetAllCounties fetches one page of the backend's county listing.
// The search term and the paging parameters are optional (zero values are omitted).
func (client *Client) GetAllCounties(ctx context.Context, search string, page, pageSize int) (*county.List, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}

	payload := new(countyListPayload)
	if err := client.call(ctx, http.MethodGet, "get_all_counties", query, nil, payload, true); err != nil {
		return nil, err
	}

	list := &county.List{
		Counties:   payload.Counties,
		Search:     search,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: payload.TotalPages,
	}
	if list.Page < 1 {
		list.Page = 1
	}
	if list.TotalPages < 1 {
		list.TotalPages = 1
	}
	return list, nil
}

// GetCountyDetails fetches the full record of a single county, used to prefill edit forms.
// Records are memoized for the current session until the county is written to.
func (client *Client) GetCountyDetails(ctx context.Context, id string) (*county.County, error) {
	if cached, ok := client.details.Lookup(id); ok {
		return cached, nil
	}

	query := url.Values{}
	query.Set("county_id", id)

	obj := new(county.County)
	if err := client.call(ctx, http.MethodGet, "get_county_details", query, nil, obj, true); err != nil {
		return nil, err
	}
	if obj.ID == "" {
		obj.ID = id
	}
	client.details.Set(id, obj)
	return obj, nil
}

type createCountyPayload struct {
	Name          string `json:"name"`
	CountyName    string `json:"county_name"`
	LoginUsername string `json:"login_username"`
	LoginPassword string `json:"login_password"`
	DashboardURL  string `json:"dashboard_url"`
}

// CreateCounty creates a new county record at the backend
func (client *Client) CreateCounty(ctx context.Context, create *county.Create) (*county.County, error) {
	obj := new(county.County)
	err := client.call(ctx, http.MethodPost, "create_county", nil, &createCountyPayload{
		Name:          create.ID,
		CountyName:    create.Name,
		LoginUsername: create.LoginUsername,
		LoginPassword: create.LoginPassword,
		DashboardURL:  create.DashboardURL,
	}, obj, true)
	if err != nil {
		return nil, err
	}
	client.details.Unset(create.ID)
	return obj, nil
}

// UpdateCounty updates an existing county record at the backend.
// Nil update fields are omitted from the request and stay untouched.
func (client *Client) UpdateCounty(ctx context.Context, id string, update *county.Update) (*county.County, error) {
	payload := map[string]any{
		"county_id": id,
	}
	if update.Name != nil {
		payload["county_name"] = *update.Name
	}
	if update.LoginUsername != nil {
		payload["login_username"] = *update.LoginUsername
	}
	if update.LoginPassword != nil {
		payload["login_password"] = *update.LoginPassword
	}
	if update.DashboardURL != nil {
		payload["dashboard_url"] = *update.DashboardURL
	}

	obj := new(county.County)
	if err := client.call(ctx, http.MethodPost, "update_county", nil, payload, obj, true); err != nil {
		return nil, err
	}
	client.details.Unset(id)
	return obj, nil
}

// DeleteCounty deletes a county record at the backend
func (client *Client) DeleteCounty(ctx context.Context, id string) error {
	payload := map[string]any{
		"county_id": id,
	}
	if err := client.call(ctx, http.MethodPost, "delete_county", nil, payload, nil, true); err != nil {
		return err
	}
	client.details.Unset(id)
	return nil
}
