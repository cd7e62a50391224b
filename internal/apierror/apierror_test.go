package apierror

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrLogUnavailable, http.StatusBadGateway},
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrExternalSource, http.StatusBadGateway},
		{ErrEncryptionFailure, http.StatusInternalServerError},
		{ErrInternalServer, http.StatusInternalServerError},
	}
	for _, c := range cases {
		err := NewAPIError(c.code, "boom", nil)
		if got := MapErrorToHTTPStatus(err); got != c.want {
			t.Errorf("code %s: expected %d, got %d", c.code, c.want, got)
		}
	}

	if got := MapErrorToHTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("plain error: expected 500, got %d", got)
	}
}

func TestMapWrappedError(t *testing.T) {
	// Errors wrapped for context must still map through their code.
	inner := NewAPIError(ErrLogUnavailable, "chain node unreachable", nil)
	wrapped := errors.Wrap(inner, "appending order record")

	if got := MapErrorToHTTPStatus(wrapped); got != http.StatusBadGateway {
		t.Errorf("expected 502 for wrapped LOG_UNAVAILABLE, got %d", got)
	}
	if !Is(wrapped, ErrLogUnavailable) {
		t.Error("Is should see through wrapping")
	}
	if Is(wrapped, ErrNotFound) {
		t.Error("Is matched the wrong code")
	}
}
