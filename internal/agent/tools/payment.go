package tools

import (
	"context"

	"github.com/google/uuid"

	"github.com/tokowa/commerce-agent/internal/domain"
)

// PaymentSpecs builds the initiate_payment and check_payment_status tool specs.
func PaymentSpecs(orders OrderStore, payments PaymentStore, gateway PaymentGateway) []Spec {
	return []Spec{
		{
			Name:        "initiate_payment",
			Description: "Start a payment transaction for a CONFIRMED order against the configured gateway.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"order_id": map[string]interface{}{"type": "string"},
					"gateway":  map[string]interface{}{"type": "string"},
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
				gatewayName := optionalStringArg(args, "gateway")
				if gatewayName == "" {
					gatewayName = "midtrans"
				}

				order, err := orders.GetByID(ctx, tenantID, orderID)
				if err != nil {
					return nil, err
				}

				payment := domain.NewPayment(uuid.NewString(), tenantID, order.ID, gatewayName, order.Total)
				if err := payment.TransitionTo(domain.PaymentPendingPayment); err != nil {
					return nil, err
				}

				externalID, err := gateway.CreateTransaction(ctx, payment)
				if err != nil {
					return nil, err
				}
				payment.ExternalID = externalID

				if err := payments.Create(ctx, payment); err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"payment_id":  payment.ID,
					"status":      string(payment.Status),
					"external_id": payment.ExternalID,
				}, nil
			},
		},
		{
			Name:        "check_payment_status",
			Description: "Check the current status of a payment by id.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"payment_id": map[string]interface{}{"type": "string"},
				},
				"required": []string{"payment_id"},
			},
			Run: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				tenantID, err := stringArg(args, "tenant_id")
				if err != nil {
					return nil, err
				}
				paymentID, err := stringArg(args, "payment_id")
				if err != nil {
					return nil, err
				}
				payment, err := payments.GetByID(ctx, tenantID, paymentID)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"payment_id": payment.ID,
					"status":     string(payment.Status),
				}, nil
			},
		},
	}
}
