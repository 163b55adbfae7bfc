package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/service"
	"github.com/cncideas/storefront/pkg/httputil"
)

// CheckoutHandler handles HTTP requests for the checkout wizard.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// StepRequest is the JSON request body for moving the wizard to another step.
type StepRequest struct {
	Step string `json:"step" validate:"required"`
}

// NotesRequest is the JSON request body for the review-step order notes.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// --- Handlers ---

// StartCheckout handles POST /api/v1/checkout
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	shopperID, _ := shopperIDFromContext(r.Context())

	session, err := h.service.StartCheckout(r.Context(), shopperID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// GetSession handles GET /api/v1/checkout/{sessionId}
func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// SaveBilling handles PUT /api/v1/checkout/{sessionId}/billing
func (h *CheckoutHandler) SaveBilling(w http.ResponseWriter, r *http.Request) {
	var billing domain.BillingDetails
	if err := json.NewDecoder(r.Body).Decode(&billing); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	session, err := h.service.SaveBilling(r.Context(), chi.URLParam(r, "sessionId"), billing)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// SaveShipping handles PUT /api/v1/checkout/{sessionId}/shipping
func (h *CheckoutHandler) SaveShipping(w http.ResponseWriter, r *http.Request) {
	var shipping domain.ShippingDetails
	if err := json.NewDecoder(r.Body).Decode(&shipping); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	session, err := h.service.SaveShipping(r.Context(), chi.URLParam(r, "sessionId"), shipping)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// SavePayment handles PUT /api/v1/checkout/{sessionId}/payment
func (h *CheckoutHandler) SavePayment(w http.ResponseWriter, r *http.Request) {
	var payment domain.PaymentDetails
	if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	session, err := h.service.SavePayment(r.Context(), chi.URLParam(r, "sessionId"), payment)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// SetNotes handles PUT /api/v1/checkout/{sessionId}/notes
func (h *CheckoutHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	session, err := h.service.SetNotes(r.Context(), chi.URLParam(r, "sessionId"), req.Notes)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// GoToStep handles PUT /api/v1/checkout/{sessionId}/step
func (h *CheckoutHandler) GoToStep(w http.ResponseWriter, r *http.Request) {
	var req StepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	session, err := h.service.GoToStep(r.Context(), chi.URLParam(r, "sessionId"), req.Step)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// GetTotals handles GET /api/v1/checkout/totals
func (h *CheckoutHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	shopperID, _ := shopperIDFromContext(r.Context())

	totals, err := h.service.Totals(r.Context(), shopperID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: totals})
}

// SubmitOrder handles POST /api/v1/checkout/{sessionId}/submit
func (h *CheckoutHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.SubmitOrder(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}
