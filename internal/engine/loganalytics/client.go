// Package loganalytics submits log records to an Azure Log Analytics HTTP
// Data Collector endpoint, authenticating each request with a SharedKey
// HMAC-SHA256 signature.
package loganalytics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultURLSuffix  = "ods.opinsights.azure.com"
	defaultAPIVersion = "2016-04-01"

	contentType = "application/json"
	resource    = "/api/logs"
)

// Header names of the data collector wire contract. Exported so the
// verification sink can speak the same protocol.
const (
	HeaderLogType            = "Log-Type"
	HeaderXMSDate            = "x-ms-date"
	HeaderTimeGeneratedField = "time-generated-field"
)

// Doer is the transport a Client sends through. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client sends signed log records to a single workspace. It holds no
// mutable state after construction, so concurrent Send calls are safe as
// long as the transport is.
type Client struct {
	workspaceID  string
	workspaceKey string
	url          string
	httpClient   Doer
	owned        bool
	now          func() time.Time
}

type options struct {
	urlSuffix  string
	apiVersion string
	now        func() time.Time
}

type Option func(*options)

// WithURLSuffix overrides the default ingestion host suffix
// (ods.opinsights.azure.com).
func WithURLSuffix(suffix string) Option {
	return func(o *options) { o.urlSuffix = suffix }
}

// WithAPIVersion overrides the default api-version query parameter
// (2016-04-01).
func WithAPIVersion(version string) Option {
	return func(o *options) { o.apiVersion = version }
}

func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds a Client that sends through httpClient. The transport is
// borrowed: the caller controls its lifetime and Close never touches it.
func New(workspaceID, workspaceKey string, httpClient Doer, opts ...Option) (*Client, error) {
	if httpClient == nil {
		return nil, &ArgumentError{Name: "httpClient", Reason: "cannot be nil"}
	}
	return newClient(workspaceID, workspaceKey, httpClient, false, opts)
}

// NewDefault builds a Client with its own pooled transport. Response
// compression and cookies are disabled; requests carry their own signature
// and need neither. Close releases the transport's idle connections.
func NewDefault(workspaceID, workspaceKey string, opts ...Option) (*Client, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  true,
		},
	}
	return newClient(workspaceID, workspaceKey, httpClient, true, opts)
}

func newClient(workspaceID, workspaceKey string, httpClient Doer, owned bool, opts []Option) (*Client, error) {
	o := options{
		urlSuffix:  defaultURLSuffix,
		apiVersion: defaultAPIVersion,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if isBlank(workspaceID) {
		return nil, &ArgumentError{Name: "workspaceID", Reason: "cannot be empty or only whitespace"}
	}
	if isBlank(workspaceKey) {
		return nil, &ArgumentError{Name: "workspaceKey", Reason: "cannot be empty or only whitespace"}
	}
	if isBlank(o.urlSuffix) {
		return nil, &ArgumentError{Name: "urlSuffix", Reason: "cannot be empty or only whitespace"}
	}
	if isBlank(o.apiVersion) {
		return nil, &ArgumentError{Name: "apiVersion", Reason: "cannot be empty or only whitespace"}
	}

	return &Client{
		workspaceID:  workspaceID,
		workspaceKey: workspaceKey,
		url:          fmt.Sprintf("https://%s.%s%s?api-version=%s", workspaceID, o.urlSuffix, resource, o.apiVersion),
		httpClient:   httpClient,
		owned:        owned,
		now:          o.now,
	}, nil
}

// URL returns the fixed ingestion URL the client posts to.
func (c *Client) URL() string {
	return c.url
}

// Send submits one serialized log record. logType names the receiver-side
// table; timestampField names the body field the receiver should treat as
// the event timestamp, or "" to let the receiver use ingestion time.
//
// The timestamp and signature are recomputed on every call. All failures,
// including argument validation, come back wrapped in a single
// "send to log analytics" error; the cause stays reachable through
// errors.As and errors.Is.
func (c *Client) Send(ctx context.Context, body, logType, timestampField string) error {
	if err := c.send(ctx, body, logType, timestampField); err != nil {
		return fmt.Errorf("send to log analytics: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, body, logType, timestampField string) error {
	if isBlank(body) {
		return &ArgumentError{Name: "body", Reason: "cannot be empty or only whitespace"}
	}
	if isBlank(logType) {
		return &ArgumentError{Name: "logType", Reason: "cannot be empty or only whitespace"}
	}

	// http.TimeFormat is RFC 1123 with the literal GMT zone the receiver
	// expects when it recomputes the canonical string.
	xmsDate := c.now().UTC().Format(http.TimeFormat)

	signature, err := Signature(c.workspaceKey, xmsDate, len(body))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(HeaderLogType, logType)
	req.Header.Set(HeaderXMSDate, xmsDate)
	req.Header.Set("Authorization", SharedKeyHeader(c.workspaceID, signature))
	if timestampField != "" {
		req.Header.Set(HeaderTimeGeneratedField, timestampField)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// Close releases idle connections on a transport the client constructed
// itself (NewDefault). A caller-supplied transport is left alone.
func (c *Client) Close() {
	if !c.owned {
		return
	}
	if closer, ok := c.httpClient.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
