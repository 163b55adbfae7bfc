package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cncideas/storefront/pkg/errors"
)

func fakeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_MessageField(t *testing.T) {
	err := ParseResponseError(fakeResponse(http.StatusBadRequest, `{"message":"price out of range"}`))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "price out of range", appErr.Message)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.True(t, errors.Is(err, apperrors.ErrBackend))
}

func TestParseResponseError_NotFound(t *testing.T) {
	err := ParseResponseError(fakeResponse(http.StatusNotFound, `{"message":"plano not found"}`))

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Contains(t, err.Error(), "plano not found")
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	err := ParseResponseError(fakeResponse(http.StatusBadRequest, "plain text failure"))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "plain text failure")
	assert.Contains(t, appErr.Message, "400")
}

func TestParseResponseError_EmptyBodyFallback(t *testing.T) {
	err := ParseResponseError(fakeResponse(http.StatusBadGateway, ""))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "the catalog backend returned an error", appErr.Message)
}

func TestParseResponseError_ServerErrorMapsToBadGateway(t *testing.T) {
	err := ParseResponseError(fakeResponse(http.StatusInternalServerError, `{"message":"db down"}`))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Contains(t, appErr.Message, "db down")
}

func TestParseResponseError_ServiceUnavailable(t *testing.T) {
	err := ParseResponseError(fakeResponse(http.StatusServiceUnavailable, `{"error":"maintenance"}`))

	assert.True(t, errors.Is(err, apperrors.ErrUnavailable))
	assert.Contains(t, err.Error(), "maintenance")
}
