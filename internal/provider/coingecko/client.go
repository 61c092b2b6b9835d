package coingecko

import (
	"net/http"
	"net/url"
)

// defaultBaseURL is the CoinGecko simple-price endpoint.
// https://docs.coingecko.com/
const defaultBaseURL = "https://api.coingecko.com/api/v3/simple/price"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=coingecko_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches Bitcoin quotes from the CoinGecko simple-price API.
type Client struct {
	// baseURL is the full URL of the simple-price endpoint.
	baseURL string
	// httpClient performs the requests.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
}

// ClientOption is a configuration option for the CoinGecko client.
type ClientOption func(*Client)

// WithBaseURL overrides the simple-price endpoint URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a new CoinGecko client. key is optional; when set it is
// sent as the x-cg-pro-api-key header (works for free and pro keys).
func NewClient(key string, options ...ClientOption) *Client {
	var client = &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	if key != "" {
		client.header.Set("x-cg-pro-api-key", key)
	}
	for _, option := range options {
		option(client)
	}
	return client
}
