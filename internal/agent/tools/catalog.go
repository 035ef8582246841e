package tools

import (
	"context"
)

// CatalogSpecs builds the get_customer_profile, search_products,
// get_product_details, and check_stock tool specs over the given stores.
func CatalogSpecs(customers CustomerStore, products ProductStore) []Spec {
	return []Spec{
		{
			Name:        "get_customer_profile",
			Description: "Fetch the current customer's profile, order history summary, and VIP status.",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
			Run: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				tenantID, err := stringArg(args, "tenant_id")
				if err != nil {
					return nil, err
				}
				customerID, err := stringArg(args, "customer_id")
				if err != nil {
					return nil, err
				}
				customer, err := customers.GetByID(ctx, tenantID, customerID)
				if err != nil {
					return nil, err
				}
				totalOrders, totalSpent, isVIP, err := customers.ListOrderHistory(ctx, tenantID, customerID)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"name":         customer.DisplayName,
					"total_orders": totalOrders,
					"total_spent":  totalSpent,
					"is_vip":       isVIP,
				}, nil
			},
		},
		{
			Name:        "search_products",
			Description: "Search the tenant's product catalog by free-text query.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{"type": "string"},
				},
				"required": []string{"query"},
			},
			Run: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				tenantID, err := stringArg(args, "tenant_id")
				if err != nil {
					return nil, err
				}
				query, err := stringArg(args, "query")
				if err != nil {
					return nil, err
				}
				results, err := products.Search(ctx, tenantID, query)
				if err != nil {
					return nil, err
				}
				items := make([]map[string]interface{}, 0, len(results))
				for _, p := range results {
					items = append(items, map[string]interface{}{
						"product_id": p.ID,
						"name":       p.Name,
						"price":      p.BasePrice.Amount,
						"currency":   p.BasePrice.Currency,
					})
				}
				return map[string]interface{}{"products": items}, nil
			},
		},
		{
			Name:        "get_product_details",
			Description: "Fetch full details for one product by id.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"product_id": map[string]interface{}{"type": "string"},
				},
				"required": []string{"product_id"},
			},
			Run: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				tenantID, err := stringArg(args, "tenant_id")
				if err != nil {
					return nil, err
				}
				productID, err := stringArg(args, "product_id")
				if err != nil {
					return nil, err
				}
				p, err := products.GetByID(ctx, tenantID, productID)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"product_id":  p.ID,
					"name":        p.Name,
					"description": p.Description,
					"price":       p.BasePrice.Amount,
					"currency":    p.BasePrice.Currency,
					"stock":       p.Stock,
					"variants":    p.VariantSKUs,
				}, nil
			},
		},
		{
			Name:        "check_stock",
			Description: "Check remaining stock for a product, optionally for a specific variant SKU.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"product_id":  map[string]interface{}{"type": "string"},
					"variant_sku": map[string]interface{}{"type": "string"},
				},
				"required": []string{"product_id"},
			},
			Run: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				tenantID, err := stringArg(args, "tenant_id")
				if err != nil {
					return nil, err
				}
				productID, err := stringArg(args, "product_id")
				if err != nil {
					return nil, err
				}
				variantSKU := optionalStringArg(args, "variant_sku")
				stock, err := products.Stock(ctx, tenantID, productID, variantSKU)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"product_id": productID, "in_stock": stock}, nil
			},
		},
	}
}
