package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := &Client{baseURL: srv.URL, apiKey: "test-key", httpClient: &http.Client{Timeout: time.Second}}
	return c, srv.Close
}

func TestResolveReturnsFirstMatch(t *testing.T) {
	c, closeFn := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":-6.2,"lng":106.8}}}]}`))
	})
	defer closeFn()

	coords, err := c.Resolve(context.Background(), "Jl. Sudirman No. 1")

	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.Equal(t, -6.2, coords.Lat)
	assert.Equal(t, 106.8, coords.Lng)
}

func TestResolveReturnsNilOnZeroResults(t *testing.T) {
	c, closeFn := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})
	defer closeFn()

	coords, err := c.Resolve(context.Background(), "nowhere")

	require.NoError(t, err)
	assert.Nil(t, coords)
}

func TestResolveSkipsLookupWhenAPIKeyEmpty(t *testing.T) {
	c := New("")

	coords, err := c.Resolve(context.Background(), "Jl. Sudirman No. 1")

	require.NoError(t, err)
	assert.Nil(t, coords)
}

func TestResolveSkipsLookupWhenAddressEmpty(t *testing.T) {
	c := New("some-key")

	coords, err := c.Resolve(context.Background(), "")

	require.NoError(t, err)
	assert.Nil(t, coords)
}
