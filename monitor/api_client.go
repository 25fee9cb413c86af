package monitor

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
)

// APIClient posts monitoring and backtest payloads to the remote analysis
// endpoint. Every request carries an HMAC-SHA256 signature over a fresh
// nonce and timestamp.
type APIClient struct {
	endpoint   string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

func NewAPIClient() *APIClient {
	return &APIClient{
		endpoint:  os.Getenv("monitorAPIEndpoint"),
		apiKey:    os.Getenv("monitorAPIKey"),
		apiSecret: os.Getenv("monitorAPISecret"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether every credential needed for uploads is present.
func (c *APIClient) Configured() bool {
	return c.endpoint != "" && c.apiKey != "" && c.apiSecret != ""
}

func signRequest(secret string, nonce string, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(nonce + ":" + timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

// Call posts payload as JSON to {endpoint}/{method}. Non-200 responses are
// returned as errors with the response body included.
func (c *APIClient) Call(ctx context.Context, method string, payload interface{}) error {
	if !c.Configured() {
		return fmt.Errorf("api endpoint, key or secret missing in the config")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	nonce := helpers.GUID()
	timestamp := strconv.FormatInt(helpers.NowTS(), 10)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-API-Key", c.apiKey)
	request.Header.Set("X-Nonce", nonce)
	request.Header.Set("X-Timestamp", timestamp)
	request.Header.Set("X-Signature", signRequest(c.apiSecret, nonce, timestamp))

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return fmt.Errorf("error: %d - %s", response.StatusCode, string(responseBody))
	}
	return nil
}
