package swish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	TestBaseURL       = "https://mss.cpc.getswish.net/swish-cpcapi/api/v1"
	ProductionBaseURL = "https://cpc.getswish.net/swish-cpcapi/api/v1"

	defaultTimeout = 30 * time.Second

	// Response bodies are small JSON documents; anything larger is not Swish.
	maxResponseSize = 1 << 20

	headerPaymentRequestToken = "PaymentRequestToken"
)

type Config struct {
	MerchantAlias string
	CertPath      string
	KeyPath       string
	Passphrase    string
	RootCertPath  string
	BaseURL       string
	Timeout       time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the mutual TLS client built from Config. The
// certificate fields of Config are ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client calls the Swish API. It holds no mutable state and can be shared
// between goroutines.
type Client struct {
	merchantAlias string
	baseURL       string
	httpClient    *http.Client
	logger        *slog.Logger
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.MerchantAlias == "" {
		return nil, &ValidationError{Field: "merchantAlias", Reason: "is required"}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = TestBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, &ValidationError{Field: "baseURL", Reason: fmt.Sprintf("is invalid: %v", err)}
	}

	c := &Client{
		merchantAlias: cfg.MerchantAlias,
		baseURL:       strings.TrimRight(baseURL, "/"),
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		tlsCfg, err := NewTLSConfig(cfg)
		if err != nil {
			return nil, err
		}

		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsCfg
		c.httpClient = &http.Client{
			Transport: transport,
			Timeout:   timeout,
		}
	}

	return c, nil
}

func (c *Client) MerchantAlias() string {
	return c.merchantAlias
}

// CreatePayment sends a payment request. An empty PayeeAlias is replaced by the
// merchant alias.
func (c *Client) CreatePayment(ctx context.Context, params PaymentParams) (*CreatedPayment, error) {
	if params.PayeeAlias == "" {
		params.PayeeAlias = c.merchantAlias
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	_, header, err := c.post(ctx, "paymentrequests", params)
	if err != nil {
		return nil, err
	}

	location, id, err := locationID(header)
	if err != nil {
		return nil, err
	}

	return &CreatedPayment{
		ID:           id,
		Location:     location,
		RequestToken: header.Get(headerPaymentRequestToken),
	}, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "is required"}
	}

	var payment Payment
	if err := c.get(ctx, "paymentrequests/"+url.PathEscape(id), &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CreateRefund refunds a paid payment. An empty PayerAlias is replaced by the
// merchant alias.
func (c *Client) CreateRefund(ctx context.Context, params RefundParams) (*CreatedRefund, error) {
	if params.PayerAlias == "" {
		params.PayerAlias = c.merchantAlias
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	_, header, err := c.post(ctx, "refunds", params)
	if err != nil {
		return nil, err
	}

	location, id, err := locationID(header)
	if err != nil {
		return nil, err
	}

	return &CreatedRefund{ID: id, Location: location}, nil
}

func (c *Client) GetRefund(ctx context.Context, id string) (*Refund, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "is required"}
	}

	var refund Refund
	if err := c.get(ctx, "refunds/"+url.PathEscape(id), &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

func (c *Client) post(ctx context.Context, resource string, params any) ([]byte, http.Header, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, nil, fmt.Errorf("swish: encode %s params: %w", resource, err)
	}
	return c.do(ctx, http.MethodPost, resource, body)
}

func (c *Client) get(ctx context.Context, resource string, out any) error {
	body, _, err := c.do(ctx, http.MethodGet, resource, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Body: string(body), Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, resource string, payload []byte) ([]byte, http.Header, error) {
	target := c.baseURL + "/" + resource

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("swish: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "swish request failed", "method", method, "resource", resource, "error", err)
		return nil, nil, &TransportError{Method: method, URL: target, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, &TransportError{Method: method, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.DebugContext(ctx, "swish request done",
		"method", method,
		"resource", resource,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode/100 != 2 {
		return nil, nil, newRequestError(resp.StatusCode, body)
	}

	return body, resp.Header, nil
}

func locationID(header http.Header) (string, string, error) {
	location := header.Get("Location")
	if location == "" {
		return "", "", &DecodeError{Err: errors.New("missing Location header")}
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", "", &DecodeError{Err: fmt.Errorf("parse Location header: %w", err)}
	}

	id := path.Base(strings.TrimRight(u.Path, "/"))
	if id == "" || id == "." || id == "/" {
		return "", "", &DecodeError{Err: fmt.Errorf("no id in Location header %q", location)}
	}
	return location, id, nil
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
