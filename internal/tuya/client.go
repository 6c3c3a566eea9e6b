package tuya

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	derrors "hauntedlights/pkg/domain-errors"
)

const (
	authTimeout    = 10 * time.Second
	commandTimeout = 3 * time.Second
)

// Categories Tuya assigns to lights, dimmers, strips, sockets and power strips.
var lightingCategories = map[string]bool{
	"dj": true, "dd": true, "dg": true, "cz": true, "pc": true,
}

var lightingKeywords = []string{"light", "bulb", "lamp", "plug"}

// Client performs the signed vendor calls: credential/code exchange, per-user
// device listing and per-device command submission.
type Client struct {
	baseURL    string
	cloud      Credentials
	app        Credentials
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, cloud, app Credentials, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cloud:      cloud,
		app:        app,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Result  json.RawMessage `json:"result"`
}

type tokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UID          string `json:"uid"`
	ExpireTime   int64  `json:"expire_time"`
}

// LoginPassword exchanges username/password for vendor tokens, signed with the
// cloud project keys. The password goes over as lowercase SHA-256 hex; email
// logins must not carry a country code.
func (c *Client) LoginPassword(ctx context.Context, username, password, countryCode, schema string) (Token, error) {
	passwordHash := sha256.Sum256([]byte(password))

	body := map[string]string{
		"username": username,
		"password": hex.EncodeToString(passwordHash[:]),
		"schema":   schema,
	}
	if !strings.Contains(username, "@") {
		body["country_code"] = countryCode
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Token{}, derrors.Wrap(err, derrors.CodeInternal, "encoding login request")
	}

	raw, err := c.do(ctx, c.cloud, http.MethodPost, "/v1.0/iot-03/users/login", payload, "", authTimeout)
	if err != nil {
		return Token{}, wrapVendorErr(err, derrors.CodeAuthFailed, "login failed")
	}
	return parseToken(raw)
}

// AuthorizeURL builds the vendor OAuth authorize URL for the Smart Life H5
// login flow, carrying the CSRF state token through the round trip.
func (c *Client) AuthorizeURL(redirectURI, state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.app.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	return c.baseURL + "/login/authorize?" + q.Encode()
}

// ExchangeCode trades an OAuth authorization code for vendor tokens. This is
// the only call signed with the app keys.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Token, error) {
	path := "/v1.0/token?code=" + url.QueryEscape(code) + "&grant_type=2"
	raw, err := c.do(ctx, c.app, http.MethodGet, path, nil, "", authTimeout)
	if err != nil {
		return Token{}, wrapVendorErr(err, derrors.CodeAuthFailed, "code exchange failed")
	}
	return parseToken(raw)
}

func parseToken(raw json.RawMessage) (Token, error) {
	var res tokenResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return Token{}, derrors.Wrap(err, derrors.CodeAuthFailed, "parsing token response")
	}
	return Token{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		UID:          res.UID,
		ExpiresAt:    time.Now().Add(time.Duration(res.ExpireTime) * time.Second),
	}, nil
}

// ListDevices fetches the user's device list and filters it to lighting-capable
// devices. Result order follows the vendor response order.
func (c *Client) ListDevices(ctx context.Context, token Token) ([]Device, error) {
	if token.AccessToken == "" {
		return nil, derrors.New(derrors.CodeUnauthenticated, "not authenticated")
	}

	path := "/v1.0/users/" + url.PathEscape(token.UID) + "/devices"
	raw, err := c.do(ctx, c.cloud, http.MethodGet, path, nil, token.AccessToken, authTimeout)
	if err != nil {
		return nil, wrapVendorErr(err, derrors.CodeDiscoveryFailed, "device listing failed")
	}

	var rows []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ProductName string `json:"product_name"`
		Category    string `json:"category"`
		Online      bool   `json:"online"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeDiscoveryFailed, "parsing device listing")
	}

	devices := make([]Device, 0, len(rows))
	for _, d := range rows {
		if !isLightingDevice(d.Category, d.ProductName) {
			continue
		}
		name := d.Name
		if name == "" {
			name = d.ProductName
		}
		devices = append(devices, Device{
			ID:       d.ID,
			Name:     name,
			Category: d.Category,
			Online:   d.Online,
		})
	}
	return devices, nil
}

func isLightingDevice(category, productName string) bool {
	if lightingCategories[category] {
		return true
	}
	lower := strings.ToLower(productName)
	for _, kw := range lightingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// SendCommands posts one command batch to one device. The short timeout keeps
// a hung device from delaying its siblings in a broadcast.
func (c *Client) SendCommands(ctx context.Context, accessToken, deviceID string, commands []Command) error {
	payload, err := json.Marshal(map[string][]Command{"commands": commands})
	if err != nil {
		return fmt.Errorf("encoding command batch: %w", err)
	}

	path := "/v1.0/devices/" + url.PathEscape(deviceID) + "/commands"
	if _, err := c.do(ctx, c.cloud, http.MethodPost, path, payload, accessToken, commandTimeout); err != nil {
		return fmt.Errorf("device %s: %w", deviceID, err)
	}
	return nil
}

// do performs one signed request and unwraps the vendor envelope. The signed
// path includes the query string; the body bytes handed to the signer are the
// same bytes sent on the wire.
func (c *Client) do(ctx context.Context, creds Credentials, method, pathWithQuery string, body []byte, accessToken string, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+pathWithQuery, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = SignedHeaders(creds, method, pathWithQuery, body, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("parsing response (status %d): %w", resp.StatusCode, err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("vendor error: %s", envelope.Msg)
	}
	return envelope.Result, nil
}

func wrapVendorErr(err error, code derrors.Code, message string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return derrors.Wrap(err, derrors.CodeTimeout, message)
	}
	return derrors.Wrap(err, code, message)
}
