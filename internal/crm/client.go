// Package crm implements the client for the CRM InCloud REST API.
// The workflow engine mirrors activities and opportunities into the CRM
// on a best-effort basis; callers treat failures as non-fatal.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/enduser-digital/intelligence-api/internal/config"
	"go.uber.org/zap"
)

// ActivityPayload is the request body for creating a remote activity
type ActivityPayload struct {
	Subject         string `json:"subject"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ActivityDate    string `json:"activityDate"`
	ActivityEndDate string `json:"activityEndDate"`
	AllDay          bool   `json:"allDay"`
	Classification  int    `json:"classification"`
	Commercial      bool   `json:"commercial"`
	CompanyID       int64  `json:"companyId"`
	CreatedByID     int64  `json:"createdById"`
	Duration        int    `json:"duration"`
	OpportunityID   int64  `json:"opportunityId,omitempty"`
	OwnerID         int64  `json:"ownerId"`
	Priority        int    `json:"priority"`
	State           int    `json:"state"`
	ToDo            int    `json:"toDo"`
	Type            int    `json:"type"`
	SubTypeID       int    `json:"subTypeId"`
	CompanionID     int64  `json:"idCompanion,omitempty"`
}

// OpportunityPayload is the request body for creating a remote opportunity
type OpportunityPayload struct {
	Title        string  `json:"title"`
	Code         string  `json:"code"`
	CrossID      int64   `json:"crossId"`
	OwnerID      int64   `json:"ownerId"`
	SalesPersons []int64 `json:"salesPersons"`
	Description  string  `json:"description"`
	Phase        int     `json:"phase"`
	Category     int     `json:"category"`
	Status       int     `json:"status"`
	Budget       float64 `json:"budget"`
	Amount       float64 `json:"amount"`
	CloseDate    string  `json:"closeDate"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// Client calls the CRM InCloud API. Tokens are cached until shortly
// before expiry and refreshed on demand.
type Client struct {
	httpClient *http.Client
	cfg        *config.CRMConfig
	logger     *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a new CRM InCloud client
func NewClient(cfg *config.CRMConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeoutDuration(),
		},
		cfg:    cfg,
		logger: logger,
	}
}

// CreateActivity mirrors an activity into the CRM and returns its remote id
func (c *Client) CreateActivity(ctx context.Context, payload *ActivityPayload) (int64, error) {
	return c.createObject(ctx, "/api/v1/Activity", payload)
}

// CreateOpportunity mirrors an opportunity into the CRM and returns its remote id
func (c *Client) CreateOpportunity(ctx context.Context, payload *OpportunityPayload) (int64, error) {
	return c.createObject(ctx, "/api/v1/Opportunity", payload)
}

func (c *Client) createObject(ctx context.Context, path string, payload interface{}) (int64, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to authenticate with CRM: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode CRM payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create CRM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("WebApiKey", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("CRM call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err == nil && errorResp.Message != "" {
			return 0, fmt.Errorf("CRM call failed (%d): %s", resp.StatusCode, errorResp.Message)
		}
		return 0, fmt.Errorf("CRM call failed with status %d", resp.StatusCode)
	}

	// The CRM returns the created object's numeric id as the response body
	var remoteID int64
	if err := json.NewDecoder(resp.Body).Decode(&remoteID); err != nil {
		return 0, fmt.Errorf("failed to decode CRM response: %w", err)
	}
	if remoteID <= 0 {
		return 0, fmt.Errorf("CRM returned invalid object id %d", remoteID)
	}

	return remoteID, nil
}

// getToken returns a cached token or requests a fresh one
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"userName": c.cfg.Username,
		"apiKey":   c.cfg.ApiKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/v1/Auth/Login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.Token == "" {
		return "", fmt.Errorf("token response contained no token")
	}

	c.token = tokenResp.Token
	// Refresh one minute early to avoid using a token at the edge of expiry
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)

	c.logger.Debug("CRM token refreshed",
		zap.Time("expires_at", c.tokenExpiry))

	return c.token, nil
}
