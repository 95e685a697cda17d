// Package apiclient talks to the bookshelf HTTP API. It implements the remote
// collections the record store client needs, plus login and cover storage.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookshelf/internal/recordstore"

	"golang.org/x/time/rate"
)

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests. rps <= 0 disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent: "bookshelf-cli",
		baseURL:   strings.TrimRight(baseURL, "/"),
		limiter:   rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope matches the API's success and error bodies.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        bool
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, auth bool, out any) error {
	req := request{method: method, path: path, auth: auth}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.body = bytes.NewReader(b)
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.auth {
		id, ok := recordstore.IdentityFrom(ctx)
		if !ok {
			return recordstore.ErrUnauthenticated
		}
		req.Header.Set("Authorization", "Bearer "+id.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &recordstore.RemoteError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &recordstore.RemoteError{Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remoteError(resp.StatusCode, env, decodeErr)
	}
	if decodeErr != nil {
		return &recordstore.RemoteError{Status: resp.StatusCode, Message: "malformed response", Err: decodeErr}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &recordstore.RemoteError{Status: resp.StatusCode, Message: "malformed response data", Err: err}
	}
	return nil
}

func remoteError(status int, env envelope, decodeErr error) error {
	re := &recordstore.RemoteError{Status: status, Message: http.StatusText(status)}
	if decodeErr != nil || env.Error == nil {
		return re
	}
	re.Code = env.Error.Code
	if env.Error.Message != "" {
		re.Message = env.Error.Message
	}
	if len(env.Error.Details) > 0 {
		parts := make([]string, 0, len(env.Error.Details))
		for _, d := range env.Error.Details {
			parts = append(parts, d.Message)
		}
		re.Message += ": " + strings.Join(parts, "; ")
	}
	return re
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var re *recordstore.RemoteError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

func idPath(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}

func multipartFile(fileName string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
