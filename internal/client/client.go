// Package client talks to the goal API over HTTP and the realtime
// websocket. It never computes goal progress itself.
package client

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
	"strings"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/fitfuel/fitfuel/internal/realtime"
	"github.com/fitfuel/fitfuel/internal/render"
	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	dialer  *websocket.Dialer
	token   string
}

// New returns a client whose requests time out after timeout.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url scheme %q", u.Scheme)
	}

	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		dialer:  &websocket.Dialer{HandshakeTimeout: timeout},
	}, nil
}

func (c *Client) SetToken(token string) {
	c.token = token
}

// Login exchanges credentials for a session token and keeps it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// Goals lists goals; the server refreshes them first.
func (c *Client) Goals(ctx context.Context) (*model.GoalList, error) {
	var list model.GoalList
	if err := c.do(ctx, http.MethodGet, "/api/goals", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) ForceReset(ctx context.Context) (*model.RefreshResult, error) {
	var result model.RefreshResult
	if err := c.do(ctx, http.MethodPost, "/api/goals/force-reset", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb render.ErrorBody
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
			apiErr.Field = eb.Field
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) eventsURL() string {
	u := *c.baseURL
	u.Scheme = "ws"
	if c.baseURL.Scheme == "https" {
		u.Scheme = "wss"
	}
	u.Path += "/api/events"
	return u.String()
}

// Subscribe reads realtime events into handle until ctx is done. Dropped
// connections are re-established with capped exponential backoff; an
// authentication failure ends the loop.
func (c *Client) Subscribe(ctx context.Context, handle func(realtime.Event)) error {
	backoff := retry.WithJitterPercent(20, retry.WithCappedDuration(30*time.Second, retry.NewExponential(500*time.Millisecond)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.listen(ctx, handle)
		if err == nil || ctx.Err() != nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return err
		}
		slog.Warn("realtime connection lost, reconnecting", "error", err)
		return retry.RetryableError(err)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *Client) listen(ctx context.Context, handle func(realtime.Event)) error {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.eventsURL(), header)
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Message: "websocket handshake rejected"}
		}
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		var ev realtime.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		handle(ev)
	}
}
