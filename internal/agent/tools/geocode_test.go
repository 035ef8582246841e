package tools_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/agent/tools"
)

type fakeResolver struct {
	lat, lng float64
	found    bool
	err      error
}

func (f fakeResolver) Resolve(ctx context.Context, address string) (float64, float64, bool, error) {
	return f.lat, f.lng, f.found, f.err
}

func geocodeSpec(t *testing.T, resolver tools.AddressResolver) tools.Spec {
	t.Helper()
	specs := tools.GeocodeSpecs(resolver)
	require.Len(t, specs, 1)
	require.Equal(t, "resolve_shipping_address", specs[0].Name)
	return specs[0]
}

func TestGeocodeSpecReturnsCoordinatesWhenFound(t *testing.T) {
	spec := geocodeSpec(t, fakeResolver{lat: -6.2, lng: 106.8, found: true})

	out, err := spec.Run(context.Background(), map[string]interface{}{"address": "Jl. Sudirman No. 1"})

	require.NoError(t, err)
	assert.Equal(t, true, out["found"])
	assert.Equal(t, -6.2, out["lat"])
	assert.Equal(t, 106.8, out["lng"])
}

func TestGeocodeSpecReportsNotFoundWithoutError(t *testing.T) {
	spec := geocodeSpec(t, fakeResolver{found: false})

	out, err := spec.Run(context.Background(), map[string]interface{}{"address": "nowhere in particular"})

	require.NoError(t, err)
	assert.Equal(t, false, out["found"])
}

func TestGeocodeSpecSwallowsResolverErrorAsNotFound(t *testing.T) {
	spec := geocodeSpec(t, fakeResolver{err: errors.New("upstream geocoder unavailable")})

	out, err := spec.Run(context.Background(), map[string]interface{}{"address": "Jl. Thamrin"})

	require.NoError(t, err)
	assert.Equal(t, false, out["found"])
}

func TestGeocodeSpecRejectsMissingAddress(t *testing.T) {
	spec := geocodeSpec(t, fakeResolver{found: true})

	_, err := spec.Run(context.Background(), map[string]interface{}{})

	assert.Error(t, err)
}
