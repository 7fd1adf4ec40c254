// Package webhook posts parse reports to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ccollicutt/logframe/pkg/output"
)

const (
	// DefaultTimeout bounds a single delivery attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultRetryWait is the pause between attempts.
	DefaultRetryWait = time.Second

	// EventParsed names the event carried by every notification.
	EventParsed = "logframe.parsed"

	maxResponseBody = 1 << 20
)

// Trigger decides which runs are delivered.
type Trigger string

const (
	TriggerAlways   Trigger = "always"
	TriggerWarnings Trigger = "warnings"
	TriggerNever    Trigger = "never"
)

// ParseTrigger accepts always, warnings or never.
func ParseTrigger(s string) (Trigger, error) {
	switch t := Trigger(s); t {
	case TriggerAlways, TriggerWarnings, TriggerNever:
		return t, nil
	}
	return "", fmt.Errorf("unknown trigger %q (must be always, warnings or never)", s)
}

// Fires reports whether a run with this report should be delivered.
func (t Trigger) Fires(report *output.Report) bool {
	switch t {
	case TriggerAlways:
		return true
	case TriggerWarnings:
		return report.HasWarnings()
	}
	return false
}

// Notification is the JSON body posted to the endpoint.
type Notification struct {
	Event       string         `json:"event"`
	SentAt      time.Time      `json:"sent_at"`
	HasWarnings bool           `json:"has_warnings"`
	Report      *output.Report `json:"report"`
}

// Client delivers notifications.
type Client struct {
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a client using a default http.Client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
		now:        time.Now,
	}
}

// SendOptions configures a delivery.
type SendOptions struct {
	URL   string
	Token string // Bearer token (optional)

	// Timeout bounds each attempt (DefaultTimeout if zero).
	Timeout time.Duration

	// Retries is the number of extra attempts after a connection error or
	// a 5xx status. 4xx statuses are not retried.
	Retries int

	// RetryWait is the pause between attempts (DefaultRetryWait if zero).
	RetryWait time.Duration
}

// Response contains the result of a delivery.
type Response struct {
	StatusCode int
	Body       string
	Attempts   int
	Duration   time.Duration
	Error      error
}

// Success returns true if the last attempt got a 2xx status.
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts report to opts.URL, retrying transient failures.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}
	defer func() { resp.Duration = time.Since(start) }()

	payload, err := json.Marshal(Notification{
		Event:       EventParsed,
		SentAt:      c.now().UTC(),
		HasWarnings: report.HasWarnings(),
		Report:      report,
	})
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal report: %w", err)
		return resp
	}

	wait := opts.RetryWait
	if wait <= 0 {
		wait = DefaultRetryWait
	}
	// The first token is available immediately; later attempts are paced.
	limiter := rate.NewLimiter(rate.Every(wait), 1)

	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			if resp.Error == nil {
				resp.Error = fmt.Errorf("waiting to retry: %w", err)
			}
			return resp
		}
		resp.Attempts++

		retry := c.attempt(ctx, payload, opts, resp)
		if !retry {
			break
		}
	}
	return resp
}

// attempt performs one POST and records its outcome in resp. It returns
// true when the failure is worth retrying.
func (c *Client) attempt(ctx context.Context, payload []byte, opts SendOptions, resp *Response) bool {
	resp.StatusCode = 0
	resp.Body = ""
	resp.Error = nil

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		resp.Error = fmt.Errorf("failed to create request: %w", err)
		return false
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "logframe-webhook")
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		return true
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		resp.Error = fmt.Errorf("failed to read response: %w", err)
		return true
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
		return resp.StatusCode >= 500
	}
	return false
}
