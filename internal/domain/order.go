package domain

import (
	"fmt"
	"time"
)

// OrderStatus enumerates the lifecycle states of an Order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// orderTransitions is the explicit adjacency map for Order.TransitionTo,
// mirroring the closed transition tables the teacher uses for message
// status (see models.Message.isValidStatusTransition).
var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderPending: {
		OrderConfirmed: true,
		OrderCancelled: true,
	},
	OrderConfirmed: {
		OrderProcessing: true,
		OrderCancelled:  true,
	},
	OrderProcessing: {
		OrderShipped:   true,
		OrderCancelled: true,
	},
	OrderShipped: {
		OrderDelivered: true,
	},
	OrderDelivered: {},
	OrderCancelled: {},
}

// IsOrderTransitionValid reports whether from -> to is an adjacent, allowed Order transition.
func IsOrderTransitionValid(from, to OrderStatus) bool {
	edges, ok := orderTransitions[from]
	if !ok {
		return false
	}
	return edges[to]
}

// OrderItem is one line item of an Order.
type OrderItem struct {
	ProductID  string `json:"product_id"`
	VariantSKU string `json:"variant_sku,omitempty"`
	Quantity   int    `json:"quantity"`
	UnitPrice  Money  `json:"unit_price"`
	Subtotal   Money  `json:"subtotal"`
}

// Order is the core aggregate mutated by the order-related tool executors.
type Order struct {
	ID         string      `json:"id"`
	TenantID   string      `json:"tenant_id"`
	CustomerID string      `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
	Subtotal   Money       `json:"subtotal"`
	Total      Money       `json:"total"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewOrder creates an empty PENDING order for a tenant/customer pair.
func NewOrder(id, tenantID, customerID, currency string) *Order {
	now := time.Now()
	zero := Money{Amount: 0, Currency: currency}
	return &Order{
		ID:         id,
		TenantID:   tenantID,
		CustomerID: customerID,
		Status:     OrderPending,
		Items:      nil,
		Subtotal:   zero,
		Total:      zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AddItem adds quantity of a (product, variant) line to the order, coalescing
// with any existing line for the same (product_id, variant_sku) pair by
// summing quantities, then recomputes subtotal/total. Refuses to mutate
// orders that are not PENDING.
func (o *Order) AddItem(productID, variantSKU string, quantity int, unitPrice Money) error {
	if o.Status != OrderPending {
		return fmt.Errorf("cannot add items to order %s: status is %s, not PENDING", o.ID, o.Status)
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	for i := range o.Items {
		item := &o.Items[i]
		if item.ProductID == productID && item.VariantSKU == variantSKU {
			item.Quantity += quantity
			subtotal, err := item.UnitPrice.MultiplyByQuantity(item.Quantity)
			if err != nil {
				return err
			}
			item.Subtotal = subtotal
			return o.recompute()
		}
	}

	subtotal, err := unitPrice.MultiplyByQuantity(quantity)
	if err != nil {
		return err
	}
	o.Items = append(o.Items, OrderItem{
		ProductID:  productID,
		VariantSKU: variantSKU,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		Subtotal:   subtotal,
	})
	return o.recompute()
}

func (o *Order) recompute() error {
	total := Money{Amount: 0, Currency: o.Total.Currency}
	for _, item := range o.Items {
		sum, err := total.Add(item.Subtotal)
		if err != nil {
			return err
		}
		total = sum
	}
	o.Subtotal = total
	o.Total = total
	o.UpdatedAt = time.Now()
	return nil
}

// TransitionTo applies an Order status transition, rejecting non-adjacent moves without mutation.
func (o *Order) TransitionTo(to OrderStatus) error {
	if !IsOrderTransitionValid(o.Status, to) {
		return fmt.Errorf("invalid order transition: %s -> %s", o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return nil
}

// IsTerminal reports whether the order has reached a state with no further outgoing edges.
func (o *Order) IsTerminal() bool {
	return len(orderTransitions[o.Status]) == 0
}
