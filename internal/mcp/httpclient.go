package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/conflict"
	"github.com/meltforce/slotcheck/internal/models"
)

// HTTPClient implements DataSource by calling the SlotCheck REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	scope      models.Scope
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL,
// authenticating with apiKey and scoping every request to scope.
func NewHTTPClient(baseURL, apiKey string, scope models.Scope) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		scope:      scope,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-Tenant-ID", c.scope.TenantID.String())
	req.Header.Set("X-Academy-ID", c.scope.AcademyID.String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s %s: status %d: %s", method, path, resp.StatusCode, data)
	}
	return data, nil
}

func (c *HTTPClient) CheckBooking(ctx context.Context, _ models.Scope, req conflict.BookingRequest) (models.BookingCheck, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/v1/bookings/check", nil, req)
	if err != nil {
		return models.BookingCheck{}, err
	}

	var resp struct {
		AthleteConflict *models.Conflict `json:"athlete_conflict"`
		CoachConflict   *models.Conflict `json:"coach_conflict"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.BookingCheck{}, fmt.Errorf("httpclient: decode check response: %w", err)
	}
	return models.BookingCheck{
		AthleteConflict: resp.AthleteConflict,
		CoachConflict:   resp.CoachConflict,
	}, nil
}

func (c *HTTPClient) ValidateTemplate(ctx context.Context, _ models.Scope, v conflict.TemplateValidation) ([]models.SubjectConflict, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/v1/templates/validate", nil, v)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Conflicts []models.SubjectConflict `json:"conflicts"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode validate response: %w", err)
	}
	return resp.Conflicts, nil
}

func (c *HTTPClient) SubjectSchedule(ctx context.Context, _ models.Scope, subjectID uuid.UUID, role models.SubjectRole) (conflict.Bindings, error) {
	params := url.Values{"role": {string(role)}}
	data, err := c.do(ctx, http.MethodGet, "/api/v1/subjects/"+subjectID.String()+"/schedule", params, nil)
	if err != nil {
		return conflict.Bindings{}, err
	}

	var resp struct {
		Templates []models.RecurringTemplate `json:"templates"`
		Sessions  []models.ScheduledSession  `json:"sessions"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return conflict.Bindings{}, fmt.Errorf("httpclient: decode schedule response: %w", err)
	}
	return conflict.Bindings{Templates: resp.Templates, Sessions: resp.Sessions}, nil
}

func (c *HTTPClient) ListTemplates(ctx context.Context, _ models.Scope) ([]models.RecurringTemplate, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/templates", nil, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Templates []models.RecurringTemplate `json:"templates"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode templates response: %w", err)
	}
	return resp.Templates, nil
}
