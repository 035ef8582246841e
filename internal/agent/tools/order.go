package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tokowa/commerce-agent/internal/domain"
)

// OrderSpecs builds the order-lifecycle tool specs: create_order,
// add_to_order, get_order_status, get_customer_orders, cancel_order, and
// confirm_order.
func OrderSpecs(orders OrderStore, products ProductStore, currency string) []Spec {
	return []Spec{
		{
			Name:        "create_order",
			Description: "Create a new, empty PENDING order for the current customer.",
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
				order := domain.NewOrder(uuid.NewString(), tenantID, customerID, currency)
				if err := orders.Create(ctx, order); err != nil {
					return nil, err
				}
				return map[string]interface{}{"order_id": order.ID, "status": string(order.Status)}, nil
			},
		},
		{
			Name:        "add_to_order",
			Description: "Add a quantity of a product (and optional variant) to an existing PENDING order, coalescing duplicate lines by summing quantities.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"order_id":    map[string]interface{}{"type": "string"},
					"product_id":  map[string]interface{}{"type": "string"},
					"variant_sku": map[string]interface{}{"type": "string"},
					"quantity":    map[string]interface{}{"type": "integer"},
				},
				"required": []string{"order_id", "product_id", "quantity"},
			},
			Run: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				tenantID, err := stringArg(args, "tenant_id")
				if err != nil {
					return nil, err
				}
				orderID, err := stringArg(args, "order_id")
				if err != nil {
					return nil, err
				}
				productID, err := stringArg(args, "product_id")
				if err != nil {
					return nil, err
				}
				quantity, err := intArg(args, "quantity")
				if err != nil {
					return nil, err
				}
				variantSKU := optionalStringArg(args, "variant_sku")

				order, err := orders.GetByID(ctx, tenantID, orderID)
				if err != nil {
					return nil, err
				}
				product, err := products.GetByID(ctx, tenantID, productID)
				if err != nil {
					return nil, err
				}
				if err := order.AddItem(productID, variantSKU, quantity, product.BasePrice); err != nil {
					return nil, err
				}
				if err := orders.Update(ctx, order); err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"order_id":      order.ID,
					"status":        string(order.Status),
					"item_count":    len(order.Items),
					"subtotal":      order.Subtotal.Amount,
					"total":         order.Total.Amount,
				}, nil
			},
		},
		{
			Name:        "get_order_status",
			Description: "Fetch the current status and totals of an order by id.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"order_id": map[string]interface{}{"type": "string"},
				},
				"required": []string{"order_id"},
			},
			Run: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				tenantID, err := stringArg(args, "tenant_id")
				if err != nil {
					return nil, err
				}
				orderID, err := stringArg(args, "order_id")
				if err != nil {
					return nil, err
				}
				order, err := orders.GetByID(ctx, tenantID, orderID)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"order_id": order.ID,
					"status":   string(order.Status),
					"total":    order.Total.Amount,
					"currency": order.Total.Currency,
				}, nil
			},
		},
		{
			Name:        "get_customer_orders",
			Description: "List the current customer's orders.",
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
				list, err := orders.ListByCustomer(ctx, tenantID, customerID)
				if err != nil {
					return nil, err
				}
				items := make([]map[string]interface{}, 0, len(list))
				for _, o := range list {
					items = append(items, map[string]interface{}{
						"order_id": o.ID,
						"status":   string(o.Status),
						"total":    o.Total.Amount,
					})
				}
				return map[string]interface{}{"orders": items}, nil
			},
		},
		{
			Name:        "cancel_order",
			Description: "Cancel an order currently in PENDING, CONFIRMED, or PROCESSING status.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"order_id": map[string]interface{}{"type": "string"},
				},
				"required": []string{"order_id"},
			},
			Run: transitionOrderTool(orders, domain.OrderCancelled),
		},
		{
			Name:        "confirm_order",
			Description: "Confirm a PENDING order, moving it to CONFIRMED.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"order_id": map[string]interface{}{"type": "string"},
				},
				"required": []string{"order_id"},
			},
			Run: transitionOrderTool(orders, domain.OrderConfirmed),
		},
	}
}

func transitionOrderTool(orders OrderStore, to domain.OrderStatus) Executor {
	return func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		tenantID, err := stringArg(args, "tenant_id")
		if err != nil {
			return nil, err
		}
		orderID, err := stringArg(args, "order_id")
		if err != nil {
			return nil, err
		}
		order, err := orders.GetByID(ctx, tenantID, orderID)
		if err != nil {
			return nil, err
		}
		if err := order.TransitionTo(to); err != nil {
			return nil, fmt.Errorf("cannot transition order %s: %w", orderID, err)
		}
		if err := orders.Update(ctx, order); err != nil {
			return nil, err
		}
		return map[string]interface{}{"order_id": order.ID, "status": string(order.Status)}, nil
	}
}
