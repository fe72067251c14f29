package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/metadata"
)

const ipfsScheme = "ipfs://"

// Client resolves token URIs to metadata. Inline data URIs are decoded
// locally; ipfs:// and http(s) URIs are fetched over HTTP.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	apiKey       string
	headers      map[string]string
	maxBodyBytes int64
}

var _ metadata.Source = (*Client)(nil)

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway base URL: %w", err)
	}
	if parsedBaseURL.Scheme != "http" && parsedBaseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid gateway base URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsedBaseURL.Host) == "" {
		return nil, fmt.Errorf("invalid gateway base URL: host is required")
	}
	baseURL = strings.TrimRight(parsedBaseURL.String(), "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := map[string]string{}
	for key, value := range config.Headers {
		headers[key] = value
	}

	maxBodyBytes := config.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	return &Client{
		baseURL:      baseURL,
		httpClient:   httpClient,
		apiKey:       strings.TrimSpace(config.APIKey),
		headers:      headers,
		maxBodyBytes: maxBodyBytes,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Resolve returns the metadata document that uri points at.
func (c *Client) Resolve(ctx context.Context, uri string) (metadata.Metadata, error) {
	trimmed := strings.TrimSpace(uri)
	if strings.HasPrefix(trimmed, "data:") {
		return metadata.Decode(trimmed)
	}

	requestURL, err := c.ResolveURL(trimmed)
	if err != nil {
		return metadata.Metadata{}, &metadata.DecodeError{Reason: "unsupported token URI", Err: err}
	}
	document, err := c.get(ctx, requestURL)
	if err != nil {
		return metadata.Metadata{}, &metadata.DecodeError{Reason: "metadata fetch failed", Err: err}
	}
	return metadata.Parse(document)
}

// ResolveURL maps a token URI onto the HTTP URL it is served from.
func (c *Client) ResolveURL(uri string) (string, error) {
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return uri, nil
	case strings.HasPrefix(uri, ipfsScheme):
		path := strings.TrimPrefix(uri, ipfsScheme)
		path = strings.TrimPrefix(path, "ipfs/")
		if strings.Trim(path, "/") == "" {
			return "", fmt.Errorf("ipfs URI %q has no content identifier", uri)
		}
		return c.baseURL + "/ipfs/" + path, nil
	case uri == "":
		return "", fmt.Errorf("token URI is empty")
	default:
		return "", fmt.Errorf("unsupported token URI scheme in %q", uri)
	}
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"gateway request failed with status %d: %s",
			response.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, fmt.Errorf("gateway response exceeds %d bytes", c.maxBodyBytes)
	}

	return body, nil
}
