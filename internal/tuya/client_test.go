package tuya_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hauntedlights/internal/tuya"
	derrors "hauntedlights/pkg/domain-errors"
)

var (
	cloudCreds = tuya.Credentials{ClientID: "cloud-id", Secret: "cloud-secret"}
	appCreds   = tuya.Credentials{ClientID: "app-id", Secret: "app-secret"}
)

func newTestClient(baseURL string) *tuya.Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tuya.NewClient(baseURL, cloudCreds, appCreds, logger)
}

func okToken(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"result": map[string]any{
			"access_token":  "test-token",
			"refresh_token": "test-refresh",
			"uid":           "test-uid",
			"expire_time":   7200,
		},
	})
}

func TestClient_LoginPassword(t *testing.T) {
	var received struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		Schema      string `json:"schema"`
		CountryCode string `json:"country_code"`
	}
	var headers http.Header
	var rawBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1.0/iot-03/users/login", r.URL.Path)
		headers = r.Header.Clone()
		rawBody, _ = io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(rawBody, &received))
		okToken(w)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	token, err := client.LoginPassword(context.Background(), "+4915112345678", "hunter2", "49", "smartlife")
	require.NoError(t, err)

	assert.Equal(t, "test-token", token.AccessToken)
	assert.Equal(t, "test-uid", token.UID)
	assert.WithinDuration(t, time.Now().Add(7200*time.Second), token.ExpiresAt, 5*time.Second)

	// Password travels as lowercase SHA-256 hex, never in the clear.
	assert.Equal(t, "f52fbd32b2b3b86ff88ef6c490628285f482af15ddcb29541f94bcf526a3f6c7", received.Password)
	assert.Equal(t, "49", received.CountryCode, "phone logins carry a country code")
	assert.Equal(t, "smartlife", received.Schema)

	// The signature must verify against the exact body bytes and the cloud keys.
	expected := tuya.Sign(cloudCreds, "POST", "/v1.0/iot-03/users/login", rawBody, "",
		headers.Get("t"), headers.Get("nonce"))
	assert.Equal(t, expected, headers.Get("sign"))
	assert.Equal(t, "cloud-id", headers.Get("client_id"))
}

func TestClient_LoginPassword_EmailOmitsCountryCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasCountry := body["country_code"]
		assert.False(t, hasCountry, "email logins must not send country_code")
		okToken(w)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).LoginPassword(context.Background(), "ghost@example.com", "pw", "49", "smartlife")
	require.NoError(t, err)
}

func TestClient_LoginPassword_VendorFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "msg": "invalid credentials"})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).LoginPassword(context.Background(), "u", "pw", "49", "smartlife")
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeAuthFailed))
}

func TestClient_ExchangeCode_UsesAppKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1.0/token", r.URL.Path)
		require.Equal(t, "abc123", r.URL.Query().Get("code"))
		require.Equal(t, "2", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "app-id", r.Header.Get("client_id"))

		expected := tuya.Sign(appCreds, "GET", r.URL.Path+"?"+r.URL.RawQuery, nil, "",
			r.Header.Get("t"), r.Header.Get("nonce"))
		assert.Equal(t, expected, r.Header.Get("sign"))
		okToken(w)
	}))
	defer server.Close()

	token, err := newTestClient(server.URL).ExchangeCode(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "test-token", token.AccessToken)
}

func TestClient_ListDevices_FiltersToLighting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1.0/users/test-uid/devices", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("access_token"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result": []map[string]any{
				{"id": "d1", "name": "Porch", "product_name": "RGB Bulb", "category": "dj", "online": true},
				{"id": "d2", "name": "Heater", "product_name": "Space Heater", "category": "qn", "online": true},
				{"id": "d3", "name": "", "product_name": "Corner LAMP", "category": "xx", "online": false},
				{"id": "d4", "name": "Socket", "product_name": "Outlet", "category": "cz", "online": true},
			},
		})
	}))
	defer server.Close()

	token := tuya.Token{AccessToken: "test-token", UID: "test-uid"}
	devices, err := newTestClient(server.URL).ListDevices(context.Background(), token)
	require.NoError(t, err)

	// d2 is dropped (heater); order follows the vendor response.
	require.Len(t, devices, 3)
	assert.Equal(t, "d1", devices[0].ID)
	assert.Equal(t, "d3", devices[1].ID)
	assert.Equal(t, "Corner LAMP", devices[1].Name, "falls back to product name")
	assert.False(t, devices[1].Online)
	assert.Equal(t, "d4", devices[2].ID)
}

func TestClient_ListDevices_Unauthenticated(t *testing.T) {
	_, err := newTestClient("http://vendor.invalid").ListDevices(context.Background(), tuya.Token{})
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeUnauthenticated))
}

func TestClient_SendCommands(t *testing.T) {
	var got struct {
		Commands []tuya.Command `json:"commands"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1.0/devices/dev1/commands", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer server.Close()

	cmds := []tuya.Command{{Code: "switch_led", Value: false}}
	err := newTestClient(server.URL).SendCommands(context.Background(), "test-token", "dev1", cmds)
	require.NoError(t, err)

	require.Len(t, got.Commands, 1)
	assert.Equal(t, "switch_led", got.Commands[0].Code)
}

func TestClient_SendCommands_VendorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "msg": "device offline"})
	}))
	defer server.Close()

	err := newTestClient(server.URL).SendCommands(context.Background(), "t", "dev1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device offline")
}
