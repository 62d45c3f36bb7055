// Package rest provides core functions for
// network requests to edgeX API endpoints
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/banky/go-edgex/constants"
	"github.com/go-resty/resty/v2"
	"github.com/samber/mo"
)

// Authenticator returns the headers that authorize a private request. It
// receives the method, the path and the serialized body or query string.
type Authenticator func(method, path string, payload []byte) (map[string]string, error)

type Client struct {
	baseUrl string
	timeout mo.Option[uint]
	auth    mo.Option[Authenticator]
	r       *resty.Client
}

// ClientInterface defines the contract for REST API calls
type ClientInterface interface {
	Get(ctx context.Context, path string, query map[string]string, result any) error
	Post(ctx context.Context, path string, body any, result any) error
}

var _ ClientInterface = (*Client)(nil)

type Config struct {
	// BaseUrl is the base URL for the edgeX API
	// If none is provided, the mainnet url will be used
	BaseUrl string
	// Timeout is the timeout for network requests in seconds
	// If none is provided, no timeout will be enforced
	Timeout uint
	// Auth signs private requests. Public endpoints work without it
	Auth Authenticator
}

// New creates a new client instance with the
// provided configuration.
func New(c Config) *Client {
	var baseUrl string = c.BaseUrl
	var timeout mo.Option[uint]
	var auth mo.Option[Authenticator]

	if c.BaseUrl == "" {
		baseUrl = constants.MAINNET_API_URL
	}
	if c.Timeout != 0 {
		timeout = mo.Some(c.Timeout)
	}
	if c.Auth != nil {
		auth = mo.Some(c.Auth)
	}

	r := resty.
		New().
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &Client{
		baseUrl: baseUrl,
		timeout: timeout,
		auth:    auth,
		r:       r,
	}
}

// Get sends a GET request to the specified path with the provided query
// parameters.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query map[string]string,
	result any,
) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req := c.r.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(result)

	if err := c.authorize(req, "GET", path, []byte(req.QueryParam.Encode())); err != nil {
		return err
	}

	resp, err := req.Get(c.baseUrl + path)
	if err != nil {
		return err
	}

	return statusError(resp)
}

// Post sends a POST request to the specified path with the provided body.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body any,
	result any,
) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req := c.r.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(result)

	if err := c.authorize(req, "POST", path, payload); err != nil {
		return err
	}

	resp, err := req.Post(c.baseUrl + path)
	if err != nil {
		return err
	}

	return statusError(resp)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout, ok := c.timeout.Get(); ok {
		return context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	}
	return ctx, func() {}
}

func (c *Client) authorize(req *resty.Request, method, path string, payload []byte) error {
	auth, ok := c.auth.Get()
	if !ok {
		return nil
	}

	headers, err := auth(method, path, payload)
	if err != nil {
		return fmt.Errorf("failed to authorize request: %w", err)
	}
	req.SetHeaders(headers)

	return nil
}
