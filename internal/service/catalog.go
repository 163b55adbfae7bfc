package service

import (
	"context"
	"log/slog"

	"github.com/cncideas/storefront/internal/backend"
	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/preview"
	"github.com/cncideas/storefront/internal/query"
	"github.com/cncideas/storefront/pkg/validator"
)

// CatalogService owns the three catalog query stores and the plano preview
// cache. The stores cache the last confirmed backend state per collection;
// the service adds preview handling and the contact relay on top.
type CatalogService struct {
	Products   *query.Store[domain.Product, domain.CreateProductInput, domain.UpdateProductInput]
	Categories *query.Store[domain.Category, domain.CreateCategoryInput, domain.UpdateCategoryInput]
	Planos     *query.Store[domain.Plano, domain.CreatePlanoInput, domain.UpdatePlanoInput]

	client   *backend.Client
	planos   *backend.PlanosAPI
	previews *preview.Cache
	logger   *slog.Logger
}

// NewCatalogService builds the catalog stores on top of the backend client.
// Deleting a plano evicts its cached preview so the file is removed together
// with the listing entry.
func NewCatalogService(client *backend.Client, previews *preview.Cache, logger *slog.Logger) *CatalogService {
	planosAPI := client.Planos()

	return &CatalogService{
		Products: query.NewStore[domain.Product, domain.CreateProductInput, domain.UpdateProductInput](
			client.Products(),
			func(p domain.Product) string { return p.ID },
		),
		Categories: query.NewStore[domain.Category, domain.CreateCategoryInput, domain.UpdateCategoryInput](
			client.Categories(),
			func(c domain.Category) string { return c.ID },
		),
		Planos: query.NewStore[domain.Plano, domain.CreatePlanoInput, domain.UpdatePlanoInput](
			planosAPI,
			func(p domain.Plano) string { return p.ID },
			query.WithDeleteHook[domain.Plano, domain.CreatePlanoInput, domain.UpdatePlanoInput](previews.Evict),
		),
		client:   client,
		planos:   planosAPI,
		previews: previews,
		logger:   logger,
	}
}

// GetPlanoPreview returns a handle to the preview document for a plano,
// fetching and caching it on first access. Subsequent calls for the same
// plano reuse the cached file until it is evicted.
func (s *CatalogService) GetPlanoPreview(ctx context.Context, planoID string) (*preview.Handle, error) {
	if handle, ok := s.previews.Get(planoID); ok {
		return handle, nil
	}

	doc, err := s.planos.FetchPreview(ctx, planoID)
	if err != nil {
		return nil, err
	}

	handle, err := s.previews.Put(planoID, doc.Content, doc.PageCount)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "plano preview cached",
		slog.String("plano_id", planoID),
		slog.Int("page_count", handle.PageCount),
		slog.Int("bytes", len(doc.Content)),
	)

	return handle, nil
}

// GetPlanoPreviewCached returns the cached preview handle without fetching.
func (s *CatalogService) GetPlanoPreviewCached(planoID string) (*preview.Handle, bool) {
	return s.previews.Get(planoID)
}

// EvictPlanoPreview drops the cached preview for a plano, releasing its file.
func (s *CatalogService) EvictPlanoPreview(planoID string) {
	s.previews.Evict(planoID)
}

// SendContact validates and relays a contact message to the backend.
func (s *CatalogService) SendContact(ctx context.Context, msg domain.ContactMessage) error {
	if err := validator.Validate(msg); err != nil {
		return err
	}

	if err := s.client.SendContact(ctx, msg); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "contact message relayed",
		slog.String("email", msg.Email),
	)

	return nil
}

// Close releases every cached preview file.
func (s *CatalogService) Close() {
	s.previews.Clear()
}
