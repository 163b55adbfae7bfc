package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/query"
	apperrors "github.com/cncideas/storefront/pkg/errors"
	"github.com/cncideas/storefront/pkg/httpclient"
	"github.com/cncideas/storefront/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	return New(httpclient.New(cfg), srv.URL, logger.New("error")), srv
}

func TestNew_EmptyBaseURLFallsBackToLocalhost(t *testing.T) {
	c := New(httpclient.New(httpclient.DefaultConfig()), "", logger.New("error"))
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}

// ============================================================================
// Products
// ============================================================================

func TestProductsList_DecodesEnvelopeAndNormalizesCharacteristics(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("limit"))

		fmt.Fprint(w, `{
			"data": [
				{"id":"p-1","name":"Fresa","price":1500,"characteristics":["[\"acero\",\"6mm\"]","cnc"]}
			],
			"page": 2, "total_pages": 5, "total_items": 50
		}`)
	}))

	result, err := c.Products().List(context.Background(), query.ListParams{Page: 2, Limit: 12})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "p-1", result.Items[0].ID)
	assert.Equal(t, []string{"acero", "6mm", "cnc"}, result.Items[0].Characteristics)
	assert.Equal(t, query.Pagination{Page: 2, TotalPages: 5, TotalItems: 50}, result.Pagination)
}

func TestProductsSearch_SendsFilters(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/search", r.URL.Path)
		assert.Equal(t, "fresa", r.URL.Query().Get("q"))
		assert.Equal(t, "herramientas", r.URL.Query().Get("category"))
		assert.Equal(t, "100", r.URL.Query().Get("min_price"))
		fmt.Fprint(w, `{"data":[],"page":1,"total_pages":0,"total_items":0}`)
	}))

	minPrice := int64(100)
	_, err := c.Products().Search(context.Background(), query.ListParams{
		Page: 1,
		Filters: query.Filters{
			Query:    "fresa",
			Category: "herramientas",
			MinPrice: &minPrice,
		},
	})
	require.NoError(t, err)
}

func TestProductsGet_NotFoundMapsToAppError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"product not found"}`)
	}))

	_, err := c.Products().Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProductsCreate_JSONWithoutAttachment(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var input domain.CreateProductInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "Broca", input.Name)

		fmt.Fprint(w, `{"data":{"id":"p-9","name":"Broca","price":500}}`)
	}))

	created, err := c.Products().Create(context.Background(), domain.CreateProductInput{
		Name:  "Broca",
		Price: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "p-9", created.ID)
}

func TestProductsCreate_MultipartWithImage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Broca", r.FormValue("name"))
		assert.Equal(t, "500", r.FormValue("price"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "broca.png", header.Filename)

		fmt.Fprint(w, `{"data":{"id":"p-9","name":"Broca"}}`)
	}))

	created, err := c.Products().Create(context.Background(), domain.CreateProductInput{
		Name:  "Broca",
		Price: 500,
		Image: &domain.Attachment{
			FieldName: "image",
			FileName:  "broca.png",
			Content:   []byte("png-bytes"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "p-9", created.ID)
}

func TestProductsDelete(t *testing.T) {
	var deleted string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deleted = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.Products().Delete(context.Background(), "p-1"))
	assert.Equal(t, "/products/p-1", deleted)
}

// ============================================================================
// Plano previews
// ============================================================================

func TestPlanosFetchPreview_BinaryResponse(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/planos/pl-1/preview", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 preview"))
	}))

	preview, err := c.Planos().FetchPreview(context.Background(), "pl-1")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", preview.ContentType)
	assert.Equal(t, []byte("%PDF-1.4 preview"), preview.Content)
}

func TestPlanosFetchPreview_JSONPointer(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/planos/pl-1/preview", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"url":"%s/files/preview.pdf","page_count":7}`, srvURL)
	})
	mux.HandleFunc("/files/preview.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("pointed-pdf"))
	})

	c, srv := newTestClient(t, mux)
	srvURL = srv.URL

	preview, err := c.Planos().FetchPreview(context.Background(), "pl-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("pointed-pdf"), preview.Content)
	assert.Equal(t, 7, preview.PageCount)
}

func TestPlanosFetchPreview_PointerWithoutURL(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"page_count":7}`)
	}))

	_, err := c.Planos().FetchPreview(context.Background(), "pl-1")
	assert.Error(t, err)
}

// ============================================================================
// Orders and contact
// ============================================================================

func TestSubmitOrder_ReturnsBackendOrderID(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)

		var order domain.Order
		require.NoError(t, json.NewDecoder(r.Body).Decode(&order))
		assert.Equal(t, int64(300), order.Total)

		fmt.Fprint(w, `{"data":{"order_id":"ord-55","status":"received"}}`)
	}))

	order := &domain.Order{ID: "local-1", Total: 300}
	orderID, err := c.SubmitOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, "ord-55", orderID)
}

func TestSubmitOrder_BackendFailureSurfacesMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"out of stock"}`)
	}))

	_, err := c.SubmitOrder(context.Background(), &domain.Order{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBackend))
	assert.Contains(t, err.Error(), "out of stock")
}

func TestSendContact(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/contact", r.URL.Path)
		var msg domain.ContactMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		assert.Equal(t, "ana@example.com", msg.Email)
		w.WriteHeader(http.StatusAccepted)
	}))

	err := c.SendContact(context.Background(), domain.ContactMessage{
		Name:    "Ana",
		Email:   "ana@example.com",
		Subject: "hi",
		Message: "hello",
	})
	require.NoError(t, err)
}
