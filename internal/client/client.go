// Package client is the HTTP client for the tour service API. It doubles
// as the navigator's asset resolver: a missing asset is reported as
// still-pending, a transport failure as an error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/demointeriors/tour-service/internal/hierarchy"
	"github.com/demointeriors/tour-service/internal/models"
)

// ErrNotFound is returned when the service reports a missing resource.
var ErrNotFound = errors.New("client: not found")

// Client talks to one tour service instance.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the service at baseURL. An empty token leaves
// requests unauthenticated, which is enough for public viewer endpoints.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// PublicProject resolves a public viewer link.
func (c *Client) PublicProject(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	if err := c.get(ctx, "/api/v1/public/projects/"+slug, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Project fetches one project by ID or slug (authenticated).
func (c *Client) Project(ctx context.Context, key string) (*models.Project, error) {
	var project models.Project
	if err := c.get(ctx, "/api/v1/projects/"+key, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Hierarchy fetches the denormalized tree for one project.
func (c *Client) Hierarchy(ctx context.Context, projectID string) (*hierarchy.ProjectHierarchy, error) {
	var tree hierarchy.ProjectHierarchy
	if err := c.get(ctx, "/api/v1/projects/"+projectID+"/hierarchy", &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// InitialSelection fetches the deterministic starting selection.
func (c *Client) InitialSelection(ctx context.Context, projectID string) (hierarchy.Selection, error) {
	var sel hierarchy.Selection
	err := c.get(ctx, "/api/v1/projects/"+projectID+"/initial-selection", &sel)
	return sel, err
}

// Analytics fetches the viewer activity counters of one project.
func (c *Client) Analytics(ctx context.Context, projectID string) (*models.ProjectAnalytics, error) {
	var analytics models.ProjectAnalytics
	if err := c.get(ctx, "/api/v1/projects/"+projectID+"/analytics", &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}

// ResolveAsset implements navigator.AssetResolver. A 404 yields
// (nil, nil): the asset is treated as still pending rather than broken.
// Transport and server failures pass through as errors.
func (c *Client) ResolveAsset(ctx context.Context, assetID string) (*models.Asset, error) {
	var asset models.Asset
	err := c.get(ctx, "/api/v1/assets/"+assetID, &asset)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// RecordSnapshot reports a captured frame for analytics.
func (c *Client) RecordSnapshot(ctx context.Context, projectID, viewID string) error {
	body, err := json.Marshal(map[string]string{"view_id": viewID})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/projects/"+projectID+"/snapshots", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(resp)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", resp.Request.URL.Path, ErrNotFound)
	case resp.StatusCode >= 400:
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s: %s (status %d)", resp.Request.URL.Path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s: unexpected status %d", resp.Request.URL.Path, resp.StatusCode)
	}
	return nil
}
