package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"leadflow.backend/pkg/logger"
)

// DefaultBaseURL is the production Graph API endpoint, including version.
const DefaultBaseURL = "https://graph.facebook.com/v23.0"

const (
	maxSendAttempts = 3
	retryBaseDelay  = 500 * time.Millisecond
)

// ErrNoAccessToken is returned when neither a system user token nor a
// fallback token is configured for the requested operation.
var ErrNoAccessToken = errors.New("no facebook access token configured")

// APIError is a non-2xx Graph API response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("facebook api error: status %d: %s", e.StatusCode, e.Body)
}

// Config holds Graph API credentials and options.
type Config struct {
	// BaseURL overrides DefaultBaseURL, mainly for tests.
	BaseURL          string
	AppSecret        string
	VerifyToken      string
	PageToken        string
	SystemUserToken  string
	ConversionsToken string
	PixelID          string
	TestEventCode    string
	// DefaultAdAccountID is probed directly when /me/adaccounts comes back
	// empty, which happens for system users scoped to a single account.
	DefaultAdAccountID string
}

// Client talks to the Facebook Graph API.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a Graph API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// accessToken picks the read token: system user token first, page token as
// fallback.
func (c *Client) accessToken() (string, error) {
	if c.cfg.SystemUserToken != "" {
		return c.cfg.SystemUserToken, nil
	}
	if c.cfg.PageToken != "" {
		return c.cfg.PageToken, nil
	}
	return "", ErrNoAccessToken
}

// conversionsAccessToken picks the token for Conversions API sends.
func (c *Client) conversionsAccessToken() (string, error) {
	if c.cfg.SystemUserToken != "" {
		return c.cfg.SystemUserToken, nil
	}
	if c.cfg.ConversionsToken != "" {
		return c.cfg.ConversionsToken, nil
	}
	return "", ErrNoAccessToken
}

// VerifyToken returns the webhook subscription verify token.
func (c *Client) VerifyToken() string {
	return c.cfg.VerifyToken
}

// VerifyPayload checks a webhook body signature against the app secret.
func (c *Client) VerifyPayload(body []byte, signatureHeader string) bool {
	return VerifySignature(c.cfg.AppSecret, body, signatureHeader)
}

// FetchLead retrieves the submitted form answers for a leadgen id.
func (c *Client) FetchLead(ctx context.Context, leadgenID string) (*LeadDetails, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}

	var details LeadDetails
	endpoint := fmt.Sprintf("%s/%s?access_token=%s", c.cfg.BaseURL, url.PathEscape(leadgenID), url.QueryEscape(token))
	if err := c.getJSON(ctx, endpoint, &details); err != nil {
		return nil, fmt.Errorf("failed to fetch lead %s: %w", leadgenID, err)
	}

	logger.Debug(ctx, "fetched lead details", zap.String("leadgen_id", leadgenID), zap.Int("fields", len(details.FieldData)))
	return &details, nil
}

// SendConversionEvent pushes one event to the Conversions API. Transient
// failures (network errors and 5xx responses) are retried with backoff; 4xx
// responses are not.
func (c *Client) SendConversionEvent(ctx context.Context, event *ConversionEvent) error {
	token, err := c.conversionsAccessToken()
	if err != nil {
		return err
	}
	if c.cfg.PixelID == "" {
		return errors.New("no facebook pixel id configured")
	}

	payload := struct {
		Data          []*ConversionEvent `json:"data"`
		TestEventCode string             `json:"test_event_code,omitempty"`
	}{
		Data:          []*ConversionEvent{event},
		TestEventCode: c.cfg.TestEventCode,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode conversion payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/events?access_token=%s", c.cfg.BaseURL, url.PathEscape(c.cfg.PixelID), url.QueryEscape(token))

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBaseDelay * time.Duration(1<<(attempt-2))):
			}
		}

		lastErr = c.postJSON(ctx, endpoint, body)
		if lastErr == nil {
			logger.Info(ctx, "conversion event sent", zap.String("event_name", event.EventName))
			return nil
		}

		var apiErr *APIError
		if errors.As(lastErr, &apiErr) && apiErr.StatusCode < 500 {
			return lastErr
		}
		logger.Warn(ctx, "conversion send failed, retrying",
			zap.String("event_name", event.EventName),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
	}
	return lastErr
}

// FetchAdAccounts lists ad accounts visible to the token. When the listing
// comes back empty and a default account is configured, that account is
// probed directly.
func (c *Client) FetchAdAccounts(ctx context.Context) ([]AdAccount, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}

	var listing struct {
		Data []AdAccount `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/me/adaccounts?fields=id,name,account_status&access_token=%s", c.cfg.BaseURL, url.QueryEscape(token))
	if err := c.getJSON(ctx, endpoint, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch ad accounts: %w", err)
	}

	if len(listing.Data) == 0 && c.cfg.DefaultAdAccountID != "" {
		var account AdAccount
		direct := fmt.Sprintf("%s/%s?fields=id,name,account_status&access_token=%s", c.cfg.BaseURL, url.PathEscape(c.cfg.DefaultAdAccountID), url.QueryEscape(token))
		if err := c.getJSON(ctx, direct, &account); err != nil {
			logger.Warn(ctx, "direct ad account probe failed", zap.String("account_id", c.cfg.DefaultAdAccountID), zap.Error(err))
			return []AdAccount{}, nil
		}
		if account.ID != "" {
			return []AdAccount{account}, nil
		}
	}
	return listing.Data, nil
}

// FetchAdInsights retrieves aggregated campaign metrics for a date range and
// enriches each row with the account currency. Currency lookup is
// best-effort; insights are returned even when it fails.
func (c *Client) FetchAdInsights(ctx context.Context, accountID, since, until string) ([]AdInsight, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}

	fields := "impressions,clicks,spend,cpc,cost_per_lead,date_start,date_stop,account_name"
	timeRange := url.QueryEscape(fmt.Sprintf("{'since':'%s','until':'%s'}", since, until))

	var listing struct {
		Data []AdInsight `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/%s/insights?fields=%s&time_range=%s&access_token=%s",
		c.cfg.BaseURL, url.PathEscape(accountID), fields, timeRange, url.QueryEscape(token))
	if err := c.getJSON(ctx, endpoint, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch ad insights: %w", err)
	}

	var account struct {
		Currency string `json:"currency"`
	}
	currencyEndpoint := fmt.Sprintf("%s/%s?fields=currency&access_token=%s", c.cfg.BaseURL, url.PathEscape(accountID), url.QueryEscape(token))
	if err := c.getJSON(ctx, currencyEndpoint, &account); err != nil {
		logger.Warn(ctx, "could not fetch account currency", zap.String("account_id", accountID), zap.Error(err))
	} else {
		for i := range listing.Data {
			listing.Data[i].AccountCurrency = account.Currency
		}
	}

	return listing.Data, nil
}

// FetchPages lists pages visible to the token.
func (c *Client) FetchPages(ctx context.Context) ([]Page, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}

	var listing struct {
		Data []Page `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/me/accounts?fields=id,name,category&access_token=%s", c.cfg.BaseURL, url.QueryEscape(token))
	if err := c.getJSON(ctx, endpoint, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch pages: %w", err)
	}
	return listing.Data, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}
