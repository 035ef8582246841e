package tools

import "context"

// AddressResolver looks up coordinates for a free-text shipping address.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) (lat, lng float64, found bool, err error)
}

// GeocodeSpecs builds the resolve_shipping_address tool spec. Geocoding is
// best-effort enrichment, not a core ordering step, so a lookup failure or
// miss never blocks the tool call: the executor reports found=false instead
// of returning an error.
func GeocodeSpecs(resolver AddressResolver) []Spec {
	return []Spec{
		{
			Name:        "resolve_shipping_address",
			Description: "Resolve a free-text shipping address to coordinates, to confirm a delivery location with the customer.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"address": map[string]interface{}{"type": "string"},
				},
				"required": []string{"address"},
			},
			Run: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				address, err := stringArg(args, "address")
				if err != nil {
					return nil, err
				}
				lat, lng, found, err := resolver.Resolve(ctx, address)
				if err != nil {
					return map[string]interface{}{"found": false}, nil
				}
				if !found {
					return map[string]interface{}{"found": false}, nil
				}
				return map[string]interface{}{"found": true, "lat": lat, "lng": lng}, nil
			},
		},
	}
}
