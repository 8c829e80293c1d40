package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"campus-gms/catalog"
	"campus-gms/types"
)

// Categories fetches the category definitions the server validates against.
func (c *Client) Categories(ctx context.Context) (*catalog.Catalog, error) {
	var cats []catalog.Category
	if err := c.doJSON(ctx, http.MethodGet, "/categories", nil, nil, &cats); err != nil {
		return nil, err
	}
	return catalog.FromCategories(cats)
}

// SubmitIssue posts a report. The whole response data is returned so the
// confirmation view can show whatever the server sent.
func (c *Client) SubmitIssue(ctx context.Context, sub types.IssueSubmission) (map[string]any, error) {
	var out map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/issues", nil, sub, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SimilarIssues lists open issues at a location for one action item.
func (c *Client) SimilarIssues(ctx context.Context, q types.SimilarQuery) ([]types.IssueView, error) {
	v := url.Values{}
	v.Set("action_item", q.ActionItem)
	v.Set("block", q.Block)
	if q.Floor != "" {
		v.Set("floor", q.Floor)
	}
	var out []types.IssueView
	if err := c.doJSON(ctx, http.MethodGet, "/issues/similar", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyIssues lists the signed-in student's reports, newest first.
func (c *Client) MyIssues(ctx context.Context, status string) ([]types.IssueView, error) {
	var v url.Values
	if status != "" {
		v = url.Values{"status": {status}}
	}
	var out []types.IssueView
	if err := c.doJSON(ctx, http.MethodGet, "/issues/mine", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Issue fetches one issue by id or ticket code.
func (c *Client) Issue(ctx context.Context, ref string) (*types.IssueView, error) {
	var out types.IssueView
	if err := c.doJSON(ctx, http.MethodGet, "/issues/"+url.PathEscape(ref), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateIssueStatus moves an issue along its workflow. Responders only.
func (c *Client) UpdateIssueStatus(ctx context.Context, id uint, upd types.StatusUpdate) (*types.IssueView, error) {
	var out types.IssueView
	path := fmt.Sprintf("/issues/%d/status", id)
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LostFound lists lost-and-found entries. Empty filters match everything.
func (c *Client) LostFound(ctx context.Context, kind, status string) ([]types.LostFoundView, error) {
	v := url.Values{}
	if kind != "" {
		v.Set("kind", kind)
	}
	if status != "" {
		v.Set("status", status)
	}
	var out []types.LostFoundView
	if err := c.doJSON(ctx, http.MethodGet, "/lost-found", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateLostFound posts a lost or found item.
func (c *Client) CreateLostFound(ctx context.Context, in types.LostFoundCreate) (*types.LostFoundView, error) {
	var out types.LostFoundView
	if err := c.doJSON(ctx, http.MethodPost, "/lost-found", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClaimLostFound marks an item as claimed by the signed-in student.
func (c *Client) ClaimLostFound(ctx context.Context, id uint) (*types.LostFoundView, error) {
	var out types.LostFoundView
	path := "/lost-found/" + strconv.FormatUint(uint64(id), 10) + "/claim"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
