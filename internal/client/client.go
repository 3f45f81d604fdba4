package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ws-tools/internal/tools"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

const maxResponseBytes = 32 << 20

// Client invokes tools on a running ws-tools server.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// New constructs a client for baseURL. Only transport failures and gateway
// errors are retried; tool failures are returned as-is.
func New(baseURL string, retryMax int) *Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.Logger = nil
	client.CheckRetry = checkRetry
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: client}
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

type wireEnvelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// Catalog fetches the remote tool catalog.
func (c *Client) Catalog(ctx context.Context) ([]tools.Descriptor, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tools", nil)
	if err != nil {
		return nil, err
	}
	status, env, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !env.OK {
		return nil, fmt.Errorf("catalog request failed (%d): %s", status, env.Error)
	}
	var catalog []tools.Descriptor
	if err := json.Unmarshal(env.Data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return catalog, nil
}

// Invoke runs a tool remotely. Transport failures are returned as errors;
// tool failures come back as failure envelopes with their kind restored
// from the HTTP status.
func (c *Client) Invoke(ctx context.Context, name string, input map[string]any) (tools.Envelope, error) {
	if input == nil {
		input = map[string]any{}
	}
	body, err := json.Marshal(input)
	if err != nil {
		return tools.Envelope{}, fmt.Errorf("encode input: %w", err)
	}
	endpoint := c.baseURL + "/api/tools/" + url.PathEscape(name)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return tools.Envelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	status, env, err := c.do(req)
	if err != nil {
		return tools.Envelope{}, err
	}
	if env.OK {
		var data any
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				return tools.Envelope{}, fmt.Errorf("decode result: %w", err)
			}
		}
		return tools.Success(data), nil
	}
	message := env.Error
	if message == "" {
		message = http.StatusText(status)
	}
	return tools.Envelope{OK: false, Error: message, Kind: kindForStatus(status)}, nil
}

func (c *Client) do(req *retryablehttp.Request) (int, wireEnvelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, wireEnvelope{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, wireEnvelope{}, fmt.Errorf("read response: %w", err)
	}
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return resp.StatusCode, wireEnvelope{}, errors.Join(fmt.Errorf("unexpected response (%d)", resp.StatusCode), err)
	}
	return resp.StatusCode, env, nil
}

func kindForStatus(status int) tools.Kind {
	switch status {
	case http.StatusBadRequest:
		return tools.KindInvalidInput
	case http.StatusNotFound:
		return tools.KindNotFound
	default:
		return tools.KindInternal
	}
}
