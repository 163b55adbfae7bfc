package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/cncideas/storefront/pkg/httputil"
	"github.com/cncideas/storefront/pkg/logger"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// shopperIDKey is the context key for the shopper identity.
const shopperIDKey contextKey = "shopper_id"

// ShopperIDFromHeader is middleware that reads the X-Shopper-ID header (the
// anonymous session identity minted by the web client) and stores it in the
// request context. If the header is absent the request is rejected.
func ShopperIDFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get("X-Shopper-ID")
		if sid == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-Shopper-ID header is required"},
			})
			return
		}
		ctx := context.WithValue(r.Context(), shopperIDKey, sid)
		ctx = logger.WithShopperID(ctx, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// shopperIDFromContext extracts the shopper ID from the request context.
func shopperIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(shopperIDKey).(string)
	return sid, ok && sid != ""
}

// ContentTypeJSON enforces that requests with a body have Content-Type:
// application/json. Multipart catalog writes bypass this by registering
// outside the group.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
