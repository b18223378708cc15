package cardknox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the two Cardknox surfaces: the legacy form gateway and the
// JSON recurring-schedule API. It never retries; a submission is a single
// best-effort attempt and the caller decides what to do with a failure.
type Client struct {
	gatewayURL   string
	recurringURL string

	gatewayClient   *http.Client
	recurringClient *http.Client
}

func NewClient() *Client {
	return NewClientWithEndpoints(GatewayEndpoint, RecurringEndpoint)
}

// NewClientWithEndpoints exists so tests can point the client at a local
// server. Production callers use NewClient.
func NewClientWithEndpoints(gatewayURL, recurringURL string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		gatewayURL:   gatewayURL,
		recurringURL: recurringURL,
		gatewayClient: &http.Client{
			Timeout:   GatewayTimeout,
			Transport: transport,
		},
		recurringClient: &http.Client{
			Timeout:   RecurringTimeout,
			Transport: transport,
		},
	}
}

// postForm submits a URL-encoded request to the form gateway and decodes the
// dual-format response. Transport faults come back as errors; everything the
// gateway actually said comes back as Fields.
func (c *Client) postForm(ctx context.Context, fields url.Values) (Fields, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, GatewayTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, "POST", c.gatewayURL,
		strings.NewReader(fields.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating gateway request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.gatewayClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making gateway request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading gateway response: %v", err)
	}

	log.Printf("Gateway response received in %v (HTTP %d)", time.Since(start), resp.StatusCode)

	parsed, err := ParseGatewayResponse(respBody)
	if err != nil {
		log.Printf("Unparseable gateway response (HTTP %d, %d bytes)", resp.StatusCode, len(respBody))
		return nil, err
	}
	return parsed, nil
}

// postRecurring submits a JSON request to the recurring-schedule API. The raw
// xKey rides in the Authorization header along with the API version header.
func (c *Client) postRecurring(ctx context.Context, apiKey, path string, payload interface{}) ([]byte, int, error) {
	start := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("error marshaling recurring request: %v", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, RecurringTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, "POST",
		c.recurringURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, 0, fmt.Errorf("error creating recurring request: %v", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", apiKey)
	httpReq.Header.Set(RecurringAPIVersionHeader, RecurringAPIVersion)

	resp, err := c.recurringClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("error making recurring request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading recurring response: %v", err)
	}

	log.Printf("Recurring API response received in %v (HTTP %d)", time.Since(start), resp.StatusCode)

	// Strip the BOM some gateway responses carry.
	respBody = bytes.TrimPrefix(respBody, []byte("\ufeff"))
	return respBody, resp.StatusCode, nil
}

// baseFields returns the identity fields every form-gateway request carries.
func baseFields(apiKey string) url.Values {
	fields := url.Values{}
	fields.Set("xKey", apiKey)
	fields.Set("xVersion", GatewayVersion)
	fields.Set("xSoftwareName", SoftwareName)
	fields.Set("xSoftwareVersion", SoftwareVersion)
	return fields
}
