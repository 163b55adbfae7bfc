package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/query"
	"github.com/cncideas/storefront/pkg/httpclient"
)

// DefaultBaseURL is the fallback when no backend URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// Client talks to the remote CNC catalog backend. All entity collections and
// the order/contact intake go through it; it is the only component that knows
// the backend's wire shapes.
type Client struct {
	http    *httpclient.Client
	baseURL string
	logger  *slog.Logger
}

// New creates a backend client. An empty baseURL falls back to the localhost
// default.
func New(http *httpclient.Client, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// listEnvelope is the backend's collection response shape.
type listEnvelope[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// entityEnvelope is the backend's single-entity response shape.
type entityEnvelope[T any] struct {
	Data T `json:"data"`
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// listQuery converts pagination and filters into the backend's query string.
func listQuery(params query.ListParams) url.Values {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	f := params.Filters
	if s := strings.TrimSpace(f.Query); s != "" {
		q.Set("q", s)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.MachineType != "" {
		q.Set("machine_type", f.MachineType)
	}
	if f.MinPrice != nil {
		q.Set("min_price", strconv.FormatInt(*f.MinPrice, 10))
	}
	if f.MaxPrice != nil {
		q.Set("max_price", strconv.FormatInt(*f.MaxPrice, 10))
	}
	return q
}

// getJSON performs a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.url(path)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return fmt.Errorf("backend GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response for %s: %w", path, err)
	}
	return nil
}

// sendJSON performs a method with a JSON body and optionally decodes the
// response into out.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode backend payload for %s: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("create backend request for %s: %w", path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode backend response for %s: %w", path, err)
		}
	}
	return nil
}

// sendMultipart performs a method with a multipart body built from scalar
// fields and binary attachments, decoding the response into out.
func (c *Client) sendMultipart(ctx context.Context, method, path string, fields map[string]string, attachments []*domain.Attachment, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("write multipart field %s: %w", name, err)
		}
	}
	for _, att := range attachments {
		if att == nil {
			continue
		}
		part, err := w.CreateFormFile(att.FieldName, att.FileName)
		if err != nil {
			return fmt.Errorf("create multipart part %s: %w", att.FieldName, err)
		}
		if _, err := part.Write(att.Content); err != nil {
			return fmt.Errorf("write multipart part %s: %w", att.FieldName, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("create backend request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode backend response for %s: %w", path, err)
		}
	}
	return nil
}

// delete performs a DELETE against the given path.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

func toPageResult[T any](env listEnvelope[T]) *query.PageResult[T] {
	return &query.PageResult[T]{
		Items: env.Data,
		Pagination: query.Pagination{
			Page:       env.Page,
			TotalPages: env.TotalPages,
			TotalItems: env.TotalItems,
		},
	}
}
