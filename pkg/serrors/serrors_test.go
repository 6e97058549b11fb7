package serrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"domainintel/pkg/serrors"

	"github.com/stretchr/testify/require"
)

type upstreamError struct{ host string }

func (e upstreamError) Error() string { return "bad answer from " + e.host }

func TestKindsDistinct(t *testing.T) {
	kinds := []serrors.Kind{
		serrors.ErrNotFound,
		serrors.ErrUnauthorized,
		serrors.ErrBadRequest,
		serrors.ErrInternal,
		serrors.ErrTimeout,
		serrors.ErrUnavailable,
		serrors.ErrRateLimited,
		serrors.ErrUpstream,
	}
	seen := map[serrors.Kind]bool{}
	for i, k := range kinds {
		require.NotNil(t, k, "kind at index %d is nil", i)
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("connection reset")

	e1 := serrors.With(serrors.ErrBadRequest, "invalid domain %q", "exa mple")
	require.Equal(t, `invalid domain "exa mple"`, e1.Error())

	e2 := serrors.Wrap(serrors.ErrUpstream, cause, "rdap lookup")
	require.Equal(t, "rdap lookup: connection reset", e2.Error())

	e3 := serrors.KindOnly(serrors.ErrNotFound)
	require.Equal(t, "NOT_FOUND", e3.Error())
}

func TestIsAndAs(t *testing.T) {
	cause := &upstreamError{host: "rdap.org"}
	err := fmt.Errorf("lookup failed: %w", serrors.Wrap(serrors.ErrUpstream, cause, "rdap"))

	require.ErrorIs(t, err, serrors.ErrUpstream)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, serrors.ErrNotFound)

	var k serrors.Kind
	require.ErrorAs(t, err, &k)
	require.Equal(t, serrors.ErrUpstream, k)

	var ue *upstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "rdap.org", ue.host)
}

func TestAccessors(t *testing.T) {
	cause := errors.New("boom")
	e := serrors.Wrap(serrors.ErrTimeout, cause, "whois")
	require.Equal(t, serrors.ErrTimeout, e.Kind())
	require.Equal(t, "whois", e.Message())
	require.Equal(t, cause, e.Cause())
}

func TestKindOf(t *testing.T) {
	require.Nil(t, serrors.KindOf(errors.New("plain")))
	require.Equal(t, serrors.ErrRateLimited,
		serrors.KindOf(fmt.Errorf("wrapped: %w", serrors.KindOnly(serrors.ErrRateLimited))))
}

func TestMessage(t *testing.T) {
	require.Equal(t, "URL is required",
		serrors.Message(serrors.Wrap(serrors.ErrBadRequest, errors.New("empty"), "URL is required"), "fallback"))
	require.Equal(t, "fallback", serrors.Message(errors.New("plain"), "fallback"))
	require.Equal(t, "fallback", serrors.Message(serrors.KindOnly(serrors.ErrInternal), "fallback"))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{serrors.With(serrors.ErrBadRequest, "x"), http.StatusBadRequest},
		{serrors.KindOnly(serrors.ErrUnauthorized), http.StatusUnauthorized},
		{serrors.KindOnly(serrors.ErrNotFound), http.StatusNotFound},
		{serrors.KindOnly(serrors.ErrRateLimited), http.StatusTooManyRequests},
		{serrors.KindOnly(serrors.ErrTimeout), http.StatusGatewayTimeout},
		{serrors.KindOnly(serrors.ErrUnavailable), http.StatusServiceUnavailable},
		{serrors.KindOnly(serrors.ErrUpstream), http.StatusBadGateway},
		{serrors.KindOnly(serrors.ErrInternal), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, serrors.HTTPStatus(tt.err))
		})
	}
}
