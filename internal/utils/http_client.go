package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HashHeader carries the hex HMAC-SHA256 of a request body.
const HashHeader = "HashSHA256"

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly and adds
// signing of JSON request bodies.
type HTTPClient struct {
	*resty.Client

	hasher *Hasher
}

// NewHTTPClient creates a client with a default-configured resty.Client.
// Each call returns an independent client with its own connection pool.
//
// Example usage:
//
//	client := utils.NewHTTPClient().
//	    SetBaseURL("http://192.168.129.201:8080").
//	    SetTimeout(10 * time.Second)
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: resty.New()}
}

// SetBaseURL sets the base URL of every request.
func (c *HTTPClient) SetBaseURL(baseURL string) *HTTPClient {
	c.Client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	return c
}

// SetTimeout bounds a single request. Non-positive values leave the client
// without a bound.
func (c *HTTPClient) SetTimeout(timeout time.Duration) *HTTPClient {
	if timeout > 0 {
		c.Client.SetTimeout(timeout)
	}
	return c
}

// SetHashKey enables the HashHeader on requests built by JSONRequest. An
// empty key disables it.
func (c *HTTPClient) SetHashKey(hashKey string) *HTTPClient {
	c.hasher = nil
	if hashKey != "" {
		c.hasher = NewHasher(hashKey)
	}
	return c
}

// Request returns a request bound to ctx.
func (c *HTTPClient) Request(ctx context.Context) *resty.Request {
	return c.R().SetContext(ctx)
}

// JSONRequest marshals body and returns a request bound to ctx that sends
// it as application/json, signed when a hash key is set. A []byte body is
// sent as is.
func (c *HTTPClient) JSONRequest(ctx context.Context, body any) (*resty.Request, error) {
	var payload []byte
	switch b := body.(type) {
	case []byte:
		payload = b
	default:
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	req := c.Request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	if c.hasher != nil {
		req.SetHeader(HashHeader, c.hasher.SumHex(payload))
	}
	return req, nil
}
