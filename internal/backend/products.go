package backend

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/query"
)

// ProductsAPI exposes the backend's product collection as a query backend.
type ProductsAPI struct {
	client *Client
}

// Products returns the product collection API.
func (c *Client) Products() *ProductsAPI {
	return &ProductsAPI{client: c}
}

// wireProduct is the backend's product shape; characteristics may arrive in
// any of the stringified encodings NormalizeCharacteristics accepts.
type wireProduct struct {
	domain.Product
	RawCharacteristics any `json:"characteristics"`
}

func (w wireProduct) toDomain() domain.Product {
	p := w.Product
	p.Characteristics = domain.NormalizeCharacteristics(w.RawCharacteristics)
	return p
}

func productsFromWire(wire []wireProduct) []domain.Product {
	out := make([]domain.Product, len(wire))
	for i, w := range wire {
		out[i] = w.toDomain()
	}
	return out
}

// List fetches one page of the default product listing.
func (a *ProductsAPI) List(ctx context.Context, params query.ListParams) (*query.PageResult[domain.Product], error) {
	var env listEnvelope[wireProduct]
	if err := a.client.getJSON(ctx, "/products", listQuery(params), &env); err != nil {
		return nil, err
	}
	result := toPageResult(env)
	return &query.PageResult[domain.Product]{
		Items:      productsFromWire(env.Data),
		Pagination: result.Pagination,
	}, nil
}

// Search fetches one page of filtered products.
func (a *ProductsAPI) Search(ctx context.Context, params query.ListParams) (*query.PageResult[domain.Product], error) {
	var env listEnvelope[wireProduct]
	if err := a.client.getJSON(ctx, "/products/search", listQuery(params), &env); err != nil {
		return nil, err
	}
	result := toPageResult(env)
	return &query.PageResult[domain.Product]{
		Items:      productsFromWire(env.Data),
		Pagination: result.Pagination,
	}, nil
}

// Get fetches a single product by ID.
func (a *ProductsAPI) Get(ctx context.Context, id string) (*domain.Product, error) {
	var env entityEnvelope[wireProduct]
	if err := a.client.getJSON(ctx, "/products/"+id, nil, &env); err != nil {
		return nil, err
	}
	p := env.Data.toDomain()
	return &p, nil
}

// Create creates a product. With an image attached the payload goes up as
// multipart, otherwise as JSON.
func (a *ProductsAPI) Create(ctx context.Context, input domain.CreateProductInput) (*domain.Product, error) {
	var env entityEnvelope[wireProduct]

	if input.Image != nil {
		fields := map[string]string{
			"name":        input.Name,
			"description": input.Description,
			"price":       strconv.FormatInt(input.Price, 10),
			"stock":       strconv.Itoa(input.Stock),
		}
		if input.CategoryID != nil {
			fields["category_id"] = *input.CategoryID
		}
		if len(input.Characteristics) > 0 {
			fields["characteristics"] = strings.Join(input.Characteristics, "\n")
		}
		err := a.client.sendMultipart(ctx, http.MethodPost, "/products", fields,
			[]*domain.Attachment{input.Image}, &env)
		if err != nil {
			return nil, err
		}
	} else {
		if err := a.client.sendJSON(ctx, http.MethodPost, "/products", input, &env); err != nil {
			return nil, err
		}
	}

	p := env.Data.toDomain()
	return &p, nil
}

// Update updates a product, multipart when a new image is attached.
func (a *ProductsAPI) Update(ctx context.Context, id string, input domain.UpdateProductInput) (*domain.Product, error) {
	var env entityEnvelope[wireProduct]

	if input.Image != nil {
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
		if input.Stock != nil {
			fields["stock"] = strconv.Itoa(*input.Stock)
		}
		if input.CategoryID != nil {
			fields["category_id"] = *input.CategoryID
		}
		if len(input.Characteristics) > 0 {
			fields["characteristics"] = strings.Join(input.Characteristics, "\n")
		}
		err := a.client.sendMultipart(ctx, http.MethodPut, "/products/"+id, fields,
			[]*domain.Attachment{input.Image}, &env)
		if err != nil {
			return nil, err
		}
	} else {
		if err := a.client.sendJSON(ctx, http.MethodPut, "/products/"+id, input, &env); err != nil {
			return nil, err
		}
	}

	p := env.Data.toDomain()
	return &p, nil
}

// Delete removes a product.
func (a *ProductsAPI) Delete(ctx context.Context, id string) error {
	return a.client.delete(ctx, "/products/"+id)
}
