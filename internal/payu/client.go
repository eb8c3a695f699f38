package payu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// The gateway signals "order accepted" with a 3xx response carrying a JSON
// body, so the client must read that response instead of following it.
var (
	ErrNotRedirect = errors.New("gateway returned non-redirect status")
	ErrBadResponse = errors.New("gateway returned malformed body")
)

type Client struct {
	httpClient   *http.Client
	authURL      string
	orderURL     string
	clientID     string
	clientSecret string
}

func NewClient(authURL, orderURL, clientID, clientSecret string) *Client {
	return &Client{
		authURL:      authURL,
		orderURL:     orderURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type authTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type OrderRequest struct {
	ContinueURL   string `json:"continueUrl"`
	CustomerIP    string `json:"customerIp"`
	MerchantPosID string `json:"merchantPosId"`
	Description   string `json:"description"`
	CurrencyCode  string `json:"currencyCode"`
	TotalAmount   string `json:"totalAmount"`
}

type orderCreateResponse struct {
	RedirectURI string `json:"redirectUri"`
}

// GetToken exchanges the configured client credentials for a bearer token.
// Every call hits the gateway; nothing is cached.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "client_credentials")
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed with status: %d", resp.StatusCode)
	}

	var result authTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	return result.AccessToken, nil
}

// CreateOrder submits the order and returns the URL the customer must be
// redirected to. Success requires exactly the 3xx path.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (string, error) {
	token, err := c.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}

	body, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.orderURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: %d", ErrNotRedirect, resp.StatusCode)
	}

	var result orderCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	return result.RedirectURI, nil
}
