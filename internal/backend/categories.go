package backend

import (
	"context"
	"net/http"

	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/query"
)

// CategoriesAPI exposes the backend's category collection as a query backend.
type CategoriesAPI struct {
	client *Client
}

// Categories returns the category collection API.
func (c *Client) Categories() *CategoriesAPI {
	return &CategoriesAPI{client: c}
}

// List fetches one page of the default category listing.
func (a *CategoriesAPI) List(ctx context.Context, params query.ListParams) (*query.PageResult[domain.Category], error) {
	var env listEnvelope[domain.Category]
	if err := a.client.getJSON(ctx, "/categories", listQuery(params), &env); err != nil {
		return nil, err
	}
	return toPageResult(env), nil
}

// Search fetches one page of filtered categories.
func (a *CategoriesAPI) Search(ctx context.Context, params query.ListParams) (*query.PageResult[domain.Category], error) {
	var env listEnvelope[domain.Category]
	if err := a.client.getJSON(ctx, "/categories/search", listQuery(params), &env); err != nil {
		return nil, err
	}
	return toPageResult(env), nil
}

// Get fetches a single category by ID.
func (a *CategoriesAPI) Get(ctx context.Context, id string) (*domain.Category, error) {
	var env entityEnvelope[domain.Category]
	if err := a.client.getJSON(ctx, "/categories/"+id, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Create creates a category, multipart when an image is attached.
func (a *CategoriesAPI) Create(ctx context.Context, input domain.CreateCategoryInput) (*domain.Category, error) {
	var env entityEnvelope[domain.Category]

	if input.Image != nil {
		fields := map[string]string{"name": input.Name}
		if input.Description != nil {
			fields["description"] = *input.Description
		}
		err := a.client.sendMultipart(ctx, http.MethodPost, "/categories", fields,
			[]*domain.Attachment{input.Image}, &env)
		if err != nil {
			return nil, err
		}
	} else {
		if err := a.client.sendJSON(ctx, http.MethodPost, "/categories", input, &env); err != nil {
			return nil, err
		}
	}
	return &env.Data, nil
}

// Update updates a category, multipart when a new image is attached.
func (a *CategoriesAPI) Update(ctx context.Context, id string, input domain.UpdateCategoryInput) (*domain.Category, error) {
	var env entityEnvelope[domain.Category]

	if input.Image != nil {
		fields := map[string]string{}
		if input.Name != nil {
			fields["name"] = *input.Name
		}
		if input.Description != nil {
			fields["description"] = *input.Description
		}
		err := a.client.sendMultipart(ctx, http.MethodPut, "/categories/"+id, fields,
			[]*domain.Attachment{input.Image}, &env)
		if err != nil {
			return nil, err
		}
	} else {
		if err := a.client.sendJSON(ctx, http.MethodPut, "/categories/"+id, input, &env); err != nil {
			return nil, err
		}
	}
	return &env.Data, nil
}

// Delete removes a category.
func (a *CategoriesAPI) Delete(ctx context.Context, id string) error {
	return a.client.delete(ctx, "/categories/"+id)
}
