package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/cncideas/storefront/pkg/errors"
)

// backendErrorBody mirrors the error payload shape returned by the catalog
// backend: a top-level message field, sometimes nested under "error".
type backendErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. When the body carries a message field it is preserved;
// otherwise a generic message with the raw body is used.
//
// The caller should only invoke this when resp.StatusCode indicates an error.
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.Backend(resp.StatusCode,
			fmt.Sprintf("backend returned status %d (failed to read body: %v)", resp.StatusCode, err))
	}

	var body backendErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil {
		if msg := firstNonEmpty(body.Message, body.Error); msg != "" {
			return mapBackendError(resp.StatusCode, msg)
		}
	}

	raw := strings.TrimSpace(string(bodyBytes))
	if raw == "" {
		return mapBackendError(resp.StatusCode, "")
	}
	return mapBackendError(resp.StatusCode, fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, raw))
}

// mapBackendError translates the backend's HTTP status into the storefront
// error taxonomy while preserving the message.
func mapBackendError(status int, message string) error {
	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: firstNonEmpty(message, "resource not found"),
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(firstNonEmpty(message, "backend is temporarily unavailable"))
	case status >= 500:
		return apperrors.Backend(http.StatusBadGateway, message)
	default:
		return apperrors.Backend(status, message)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
