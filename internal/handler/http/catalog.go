package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/query"
	"github.com/cncideas/storefront/internal/service"
	"github.com/cncideas/storefront/pkg/httputil"
	"github.com/cncideas/storefront/pkg/pagination"
	"github.com/cncideas/storefront/pkg/validator"
)

// maxUploadSize bounds multipart catalog writes (drawing files included).
const maxUploadSize = 64 << 20

// CatalogHandler handles HTTP requests for the catalog collections and the
// plano preview endpoint.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// listResponse is the collection response shape: the visible page plus its
// counters.
type listResponse struct {
	Items      any              `json:"items"`
	Pagination query.Pagination `json:"pagination"`
	Filtered   bool             `json:"filtered"`
}

// listParams assembles pagination and filters from the request query string.
func listParams(r *http.Request) query.ListParams {
	p := pagination.FromRequest(r)
	q := r.URL.Query()

	filters := query.Filters{
		Query:       q.Get("q"),
		Category:    q.Get("category"),
		MachineType: q.Get("machine_type"),
	}
	if v := q.Get("min_price"); v != "" {
		if cents, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.MinPrice = &cents
		}
	}
	if v := q.Get("max_price"); v != "" {
		if cents, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.MaxPrice = &cents
		}
	}

	return query.ListParams{Page: p.Page, Limit: p.PerPage, Filters: filters}
}

// list runs the fetch-or-search flow shared by the three collections.
func list[T, C, U any](w http.ResponseWriter, r *http.Request, store *query.Store[T, C, U], logger *slog.Logger) {
	params := listParams(r)

	var err error
	if params.Filters.Empty() {
		err = store.FetchList(r.Context(), params)
	} else {
		err = store.SetFilters(r.Context(), params.Filters, params.Limit)
	}
	if err != nil {
		// Stale-but-available: serve the previous page when one exists.
		items, p := store.View()
		if len(items) > 0 {
			httputil.WriteJSON(w, http.StatusOK, httputil.Response{
				Data: listResponse{Items: items, Pagination: p, Filtered: !store.ActiveFilters().Empty()},
			})
			return
		}
		httputil.WriteError(w, r, err, logger)
		return
	}

	items, p := store.View()
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: listResponse{Items: items, Pagination: p, Filtered: !store.ActiveFilters().Empty()},
	})
}

// getOne runs the FetchOne flow shared by the three collections.
func getOne[T, C, U any](w http.ResponseWriter, r *http.Request, store *query.Store[T, C, U], logger *slog.Logger) {
	id := chi.URLParam(r, "id")

	entity, err := store.FetchOne(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: entity})
}

// --- Products ---

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.catalog.Products, h.logger)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	getOne(w, r, h.catalog.Products, h.logger)
}

// CreateProduct handles POST /api/v1/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateProductInput
	if isMultipart(r) {
		if err := h.decodeProductForm(r, &input); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.Products.Create(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/v1/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input domain.UpdateProductInput
	if isMultipart(r) {
		if err := h.decodeProductUpdateForm(r, &input); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.Products.Update(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}

// --- Categories ---

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.catalog.Categories, h.logger)
}

// GetCategory handles GET /api/v1/categories/{id}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	getOne(w, r, h.catalog.Categories, h.logger)
}

// CreateCategory handles POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateCategoryInput
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
		input.Name = r.FormValue("name")
		if v := r.FormValue("description"); v != "" {
			input.Description = &v
		}
		input.Image = formAttachment(r, "image")
	} else if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	category, err := h.catalog.Categories.Create(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: category})
}

// UpdateCategory handles PUT /api/v1/categories/{id}
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input domain.UpdateCategoryInput
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
		if v := r.FormValue("name"); v != "" {
			input.Name = &v
		}
		if v := r.FormValue("description"); v != "" {
			input.Description = &v
		}
		input.Image = formAttachment(r, "image")
	} else if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	category, err := h.catalog.Categories.Update(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}

// --- Planos ---

// ListPlanos handles GET /api/v1/planos
func (h *CatalogHandler) ListPlanos(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.catalog.Planos, h.logger)
}

// GetPlano handles GET /api/v1/planos/{id}
func (h *CatalogHandler) GetPlano(w http.ResponseWriter, r *http.Request) {
	getOne(w, r, h.catalog.Planos, h.logger)
}

// CreatePlano handles POST /api/v1/planos
func (h *CatalogHandler) CreatePlano(w http.ResponseWriter, r *http.Request) {
	var input domain.CreatePlanoInput
	if isMultipart(r) {
		if err := h.decodePlanoForm(r, &input); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	plano, err := h.catalog.Planos.Create(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: plano})
}

// UpdatePlano handles PUT /api/v1/planos/{id}
func (h *CatalogHandler) UpdatePlano(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input domain.UpdatePlanoInput
	if isMultipart(r) {
		if err := h.decodePlanoUpdateForm(r, &input); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	plano, err := h.catalog.Planos.Update(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: plano})
}

// DeletePlano handles DELETE /api/v1/planos/{id}
func (h *CatalogHandler) DeletePlano(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Planos.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}

// GetPlanoPreview handles GET /api/v1/planos/{id}/preview. It serves the
// cached preview document, fetching it from the backend on first access.
func (h *CatalogHandler) GetPlanoPreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	handle, err := h.catalog.GetPlanoPreview(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	if handle.PageCount > 0 {
		w.Header().Set("X-Page-Count", strconv.Itoa(handle.PageCount))
	}
	http.ServeFile(w, r, handle.Path)
}

// --- Multipart form decoding ---

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formAttachment extracts one uploaded file as an attachment, nil when absent.
func formAttachment(r *http.Request, field string) *domain.Attachment {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil
	}
	return &domain.Attachment{FieldName: field, FileName: header.Filename, Content: content}
}

func (h *CatalogHandler) decodeProductForm(r *http.Request, input *domain.CreateProductInput) error {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return err
	}
	input.Name = r.FormValue("name")
	input.Description = r.FormValue("description")
	if v := r.FormValue("price"); v != "" {
		cents, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		input.Price = cents
	}
	if v := r.FormValue("stock"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		input.Stock = n
	}
	if v := r.FormValue("category_id"); v != "" {
		input.CategoryID = &v
	}
	if v := r.FormValue("characteristics"); v != "" {
		input.Characteristics = splitLines(v)
	}
	input.Image = formAttachment(r, "image")
	return nil
}

func (h *CatalogHandler) decodeProductUpdateForm(r *http.Request, input *domain.UpdateProductInput) error {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return err
	}
	if v := r.FormValue("name"); v != "" {
		input.Name = &v
	}
	if v := r.FormValue("description"); v != "" {
		input.Description = &v
	}
	if v := r.FormValue("price"); v != "" {
		cents, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		input.Price = &cents
	}
	if v := r.FormValue("stock"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		input.Stock = &n
	}
	if v := r.FormValue("category_id"); v != "" {
		input.CategoryID = &v
	}
	if v := r.FormValue("characteristics"); v != "" {
		input.Characteristics = splitLines(v)
	}
	input.Image = formAttachment(r, "image")
	return nil
}

// splitLines turns a newline-separated form field into a clean string list.
func splitLines(v string) []string {
	var out []string
	for _, line := range strings.Split(v, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func (h *CatalogHandler) decodePlanoForm(r *http.Request, input *domain.CreatePlanoInput) error {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return err
	}
	input.Name = r.FormValue("name")
	input.Description = r.FormValue("description")
	input.MachineType = r.FormValue("machine_type")
	if v := r.FormValue("price"); v != "" {
		cents, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		input.Price = cents
	}
	if v := r.FormValue("page_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		input.PageCount = n
	}
	input.Drawing = formAttachment(r, "drawing")
	input.Image = formAttachment(r, "image")
	return nil
}

func (h *CatalogHandler) decodePlanoUpdateForm(r *http.Request, input *domain.UpdatePlanoInput) error {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return err
	}
	if v := r.FormValue("name"); v != "" {
		input.Name = &v
	}
	if v := r.FormValue("description"); v != "" {
		input.Description = &v
	}
	if v := r.FormValue("machine_type"); v != "" {
		input.MachineType = &v
	}
	if v := r.FormValue("price"); v != "" {
		cents, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		input.Price = &cents
	}
	if v := r.FormValue("page_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		input.PageCount = &n
	}
	input.Drawing = formAttachment(r, "drawing")
	input.Image = formAttachment(r, "image")
	return nil
}
