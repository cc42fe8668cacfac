package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrTokenMissing reports a verification attempt with no token at all,
// distinct from a token the issuer rejected.
var ErrTokenMissing = errors.New("identity token missing")

// Verifier resolves a bearer identity token to the external user id it was
// issued for. Implementations talk to the external issuer; tests inject
// fakes.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}

// Client verifies identity tokens against the external issuer's introspection
// endpoint.
type Client struct {
	BaseURL    string
	ClientID   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// VerifyResponse represents the issuer's introspection result.
type VerifyResponse struct {
	Active   bool   `json:"active"`
	Sub      string `json:"sub"`
	ClientID string `json:"client_id,omitempty"`
	Exp      int64  `json:"exp,omitempty"`
}

// ErrorResponse represents an issuer error response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// NewClient creates a new issuer client instance.
func NewClient(baseURL, clientID string, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ClientID:   clientID,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Logger:     logger,
	}
}

// Verify performs token introspection. The issuer receives the token and this
// service's client identifier; any issuer-reported error surfaces with the
// issuer's message. One bounded request, no retries.
func (c *Client) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", ErrTokenMissing
	}

	data := url.Values{}
	data.Set("id_token", idToken)
	data.Set("client_id", c.ClientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/oauth2/verify", strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("Token verification request failed", zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Logger.Error("Failed to read token verification response", zap.Error(err))
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			c.Logger.Error("Failed to parse issuer error response",
				zap.Int("status_code", resp.StatusCode),
				zap.String("response", string(body)))
			return "", fmt.Errorf("error verifying token: %d %s", resp.StatusCode, string(body))
		}
		c.Logger.Warn("Token verification rejected",
			zap.String("error", errorResp.Error),
			zap.String("description", errorResp.ErrorDescription))
		return "", fmt.Errorf("error verifying token: %s - %s", errorResp.Error, errorResp.ErrorDescription)
	}

	var verifyResp VerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		c.Logger.Error("Failed to parse verification response", zap.Error(err))
		return "", err
	}
	if !verifyResp.Active || verifyResp.Sub == "" {
		c.Logger.Warn("Token is inactive or carries no subject")
		return "", errors.New("token is inactive or expired")
	}

	c.Logger.Info("Token verified",
		zap.String("sub", verifyResp.Sub),
		zap.String("client_id", verifyResp.ClientID))
	return verifyResp.Sub, nil
}
