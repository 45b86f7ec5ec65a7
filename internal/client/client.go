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
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/wordmap/internal/core/model"
)

const RequestIDHeader = "X-Request-ID"

type Kind int

const (
	KindTransport Kind = iota
	KindRemote
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRemote:
		return "remote"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// FetchError is returned by Request for every failed attempt.
type FetchError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a FetchError of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}

// Client talks to the embedding endpoint. It never retries.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	logger   *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout bounds a whole request. Zero leaves the HTTP client's own
// timeout. It applies to a client given with WithHTTPClient too.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// Request posts the words and central query and returns the embedded points.
// requestID is sent as X-Request-ID; an empty id gets a fresh uuid.
func (c *Client) Request(ctx context.Context, requestID string, words []string, centralQuery string) ([]model.EmbeddingPoint, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	if words == nil {
		words = []string{}
	}

	body, err := json.Marshal(model.EmbeddingRequest{Words: words, CentralWord: centralQuery})
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("embedding request failed", "request_id", requestID, "error", err)
		return nil, &FetchError{Kind: KindTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	c.logger.Debug("embedding response",
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("HTTP error! Status: %d", resp.StatusCode)
		var remote model.ErrorResponse
		if json.Unmarshal(data, &remote) == nil && remote.Error != "" {
			msg += " (" + remote.Error + ")"
		}
		return nil, &FetchError{Kind: KindTransport, Status: resp.StatusCode, Message: msg}
	}

	return decode(data, resp.StatusCode)
}

func decode(data []byte, status int) ([]model.EmbeddingPoint, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &FetchError{Kind: KindMalformed, Status: status, Message: "empty response body"}
	}

	switch trimmed[0] {
	case '[':
		var points []model.EmbeddingPoint
		if err := json.Unmarshal(trimmed, &points); err != nil {
			return nil, &FetchError{Kind: KindMalformed, Status: status, Message: "invalid point list", Err: err}
		}
		return points, nil
	case '{':
		var remote model.ErrorResponse
		if err := json.Unmarshal(trimmed, &remote); err != nil {
			return nil, &FetchError{Kind: KindMalformed, Status: status, Message: "invalid error object", Err: err}
		}
		if remote.Error == "" {
			return nil, &FetchError{Kind: KindMalformed, Status: status, Message: "object response without error field"}
		}
		return nil, &FetchError{Kind: KindRemote, Status: status, Message: remote.Error}
	default:
		return nil, &FetchError{Kind: KindMalformed, Status: status, Message: "unexpected response body"}
	}
}
