package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"
)

const (
	defaultTimeout                 = 10 * time.Second
	responseBodyReadLimit    int64 = 1024
	headerShopifyAccessToken       = "X-Shopify-Access-Token"
)

// httpConnector carries the shared HTTP plumbing for platform clients.
type httpConnector struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures optional connector behavior.
type Option func(*httpConnector)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *httpConnector) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout. Ignored when a custom
// HTTP client is supplied.
func WithTimeout(timeout time.Duration) Option {
	return func(c *httpConnector) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

func newHTTPConnector(baseURL, token string, opts ...Option) (httpConnector, error) {
	trimmedURL := strings.TrimSpace(baseURL)
	if trimmedURL == "" {
		return httpConnector{}, pkgerrors.New(pkgerrors.CodeDependency, "connector base url is required")
	}
	trimmedToken := strings.TrimSpace(token)
	if trimmedToken == "" {
		return httpConnector{}, pkgerrors.New(pkgerrors.CodeDependency, "connector token is required")
	}

	conn := httpConnector{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    trimmedURL,
		token:      trimmedToken,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&conn)
		}
	}
	return conn, nil
}

func (c *httpConnector) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"))
}

// doJSON executes one request and decodes the response body into out (if
// non-nil). Non-2xx statuses come back as coded errors with a bounded body
// excerpt.
func (c *httpConnector) doJSON(ctx context.Context, method, path string, headers map[string]string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"request failed",
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	return nil
}

func bearerHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func validateRef(ref ListingRef) error {
	if strings.TrimSpace(ref.PlatformID) == "" && strings.TrimSpace(ref.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing reference is required")
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	return nil
}
