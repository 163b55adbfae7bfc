package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/service"
	"github.com/cncideas/storefront/pkg/httputil"
)

// ContactHandler relays contact messages to the backend.
type ContactHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewContactHandler creates a new contact HTTP handler.
func NewContactHandler(catalog *service.CatalogService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// SendContact handles POST /api/v1/contact
func (h *ContactHandler) SendContact(w http.ResponseWriter, r *http.Request) {
	var msg domain.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := h.catalog.SendContact(r.Context(), msg); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "sent"}})
}
