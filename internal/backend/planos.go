package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/query"
	"github.com/cncideas/storefront/pkg/httpclient"
)

// previewSizeLimit caps how much preview data is read from the backend.
const previewSizeLimit = 32 << 20 // 32 MiB

// PlanosAPI exposes the backend's plano collection as a query backend plus
// the preview endpoint.
type PlanosAPI struct {
	client *Client
}

// Planos returns the plano collection API.
func (c *Client) Planos() *PlanosAPI {
	return &PlanosAPI{client: c}
}

// List fetches one page of the default plano listing. Plano pagination
// counters are authoritative server-side.
func (a *PlanosAPI) List(ctx context.Context, params query.ListParams) (*query.PageResult[domain.Plano], error) {
	var env listEnvelope[domain.Plano]
	if err := a.client.getJSON(ctx, "/planos", listQuery(params), &env); err != nil {
		return nil, err
	}
	return toPageResult(env), nil
}

// Search fetches one page of filtered planos.
func (a *PlanosAPI) Search(ctx context.Context, params query.ListParams) (*query.PageResult[domain.Plano], error) {
	var env listEnvelope[domain.Plano]
	if err := a.client.getJSON(ctx, "/planos/search", listQuery(params), &env); err != nil {
		return nil, err
	}
	return toPageResult(env), nil
}

// Get fetches a single plano by ID.
func (a *PlanosAPI) Get(ctx context.Context, id string) (*domain.Plano, error) {
	var env entityEnvelope[domain.Plano]
	if err := a.client.getJSON(ctx, "/planos/"+id, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Create creates a plano. The drawing file and optional cover image go up as
// multipart parts.
func (a *PlanosAPI) Create(ctx context.Context, input domain.CreatePlanoInput) (*domain.Plano, error) {
	var env entityEnvelope[domain.Plano]

	if input.Drawing != nil || input.Image != nil {
		fields := map[string]string{
			"name":        input.Name,
			"description": input.Description,
			"price":       strconv.FormatInt(input.Price, 10),
			"page_count":  strconv.Itoa(input.PageCount),
		}
		if input.MachineType != "" {
			fields["machine_type"] = input.MachineType
		}
		err := a.client.sendMultipart(ctx, http.MethodPost, "/planos", fields,
			[]*domain.Attachment{input.Drawing, input.Image}, &env)
		if err != nil {
			return nil, err
		}
	} else {
		if err := a.client.sendJSON(ctx, http.MethodPost, "/planos", input, &env); err != nil {
			return nil, err
		}
	}
	return &env.Data, nil
}

// Update updates a plano, multipart when new files are attached.
func (a *PlanosAPI) Update(ctx context.Context, id string, input domain.UpdatePlanoInput) (*domain.Plano, error) {
	var env entityEnvelope[domain.Plano]

	if input.Drawing != nil || input.Image != nil {
		fields := map[string]string{}
		if input.Name != nil {
			fields["name"] = *input.Name
		}
		if input.Description != nil {
			fields["description"] = *input.Description
		}
		if input.Price != nil {
			fields["price"] = strconv.FormatInt(*input.Price, 10)
		}
		if input.PageCount != nil {
			fields["page_count"] = strconv.Itoa(*input.PageCount)
		}
		if input.MachineType != nil {
			fields["machine_type"] = *input.MachineType
		}
		err := a.client.sendMultipart(ctx, http.MethodPut, "/planos/"+id, fields,
			[]*domain.Attachment{input.Drawing, input.Image}, &env)
		if err != nil {
			return nil, err
		}
	} else {
		if err := a.client.sendJSON(ctx, http.MethodPut, "/planos/"+id, input, &env); err != nil {
			return nil, err
		}
	}
	return &env.Data, nil
}

// Delete removes a plano.
func (a *PlanosAPI) Delete(ctx context.Context, id string) error {
	return a.client.delete(ctx, "/planos/"+id)
}

// Preview holds one fetched plano preview document.
type Preview struct {
	Content     []byte
	ContentType string
	PageCount   int
}

// previewPointer is the JSON shape the backend may return instead of the
// document itself.
type previewPointer struct {
	URL       string `json:"url"`
	PageCount int    `json:"page_count"`
}

// FetchPreview retrieves the preview document for a plano. The endpoint
// answers with either the binary document or a JSON pointer to one; in the
// pointer case the referenced document is fetched in a second request.
func (a *PlanosAPI) FetchPreview(ctx context.Context, id string) (*Preview, error) {
	resp, err := a.client.http.Get(ctx, a.client.url("/planos/"+id+"/preview"))
	if err != nil {
		return nil, fmt.Errorf("fetch plano preview %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var ptr previewPointer
		if err := json.NewDecoder(io.LimitReader(resp.Body, previewSizeLimit)).Decode(&ptr); err != nil {
			return nil, fmt.Errorf("decode preview pointer for %s: %w", id, err)
		}
		if ptr.URL == "" {
			return nil, fmt.Errorf("preview pointer for %s has no url", id)
		}
		return a.fetchPreviewDocument(ctx, id, ptr)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, previewSizeLimit))
	if err != nil {
		return nil, fmt.Errorf("read plano preview %s: %w", id, err)
	}
	return &Preview{Content: content, ContentType: contentType}, nil
}

func (a *PlanosAPI) fetchPreviewDocument(ctx context.Context, id string, ptr previewPointer) (*Preview, error) {
	resp, err := a.client.http.Get(ctx, ptr.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch referenced preview for %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, previewSizeLimit))
	if err != nil {
		return nil, fmt.Errorf("read referenced preview for %s: %w", id, err)
	}
	return &Preview{
		Content:     content,
		ContentType: resp.Header.Get("Content-Type"),
		PageCount:   ptr.PageCount,
	}, nil
}
