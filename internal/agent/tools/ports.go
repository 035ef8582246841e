package tools

import (
	"context"

	"github.com/tokowa/commerce-agent/internal/domain"
)

// CustomerStore is the subset of customer persistence the tool executors need.
type CustomerStore interface {
	GetByID(ctx context.Context, tenantID, customerID string) (*domain.Customer, error)
	ListOrderHistory(ctx context.Context, tenantID, customerID string) (totalOrders int, totalSpent int64, isVIP bool, err error)
}

// ProductSummary is the read shape search/details/stock tools return.
type ProductSummary struct {
	ID          string
	Name        string
	Description string
	BasePrice   domain.Money
	Stock       int
	VariantSKUs []string
}

// ProductStore is the subset of product persistence the tool executors need.
type ProductStore interface {
	Search(ctx context.Context, tenantID, query string) ([]ProductSummary, error)
	GetByID(ctx context.Context, tenantID, productID string) (*ProductSummary, error)
	Stock(ctx context.Context, tenantID, productID, variantSKU string) (int, error)
}

// OrderStore is the subset of order persistence the tool executors need.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, tenantID, orderID string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	ListByCustomer(ctx context.Context, tenantID, customerID string) ([]*domain.Order, error)
}

// PaymentStore is the subset of payment persistence the tool executors need.
type PaymentStore interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, tenantID, paymentID string) (*domain.Payment, error)
}

// PaymentGateway initiates a payment transaction with an external provider.
type PaymentGateway interface {
	CreateTransaction(ctx context.Context, payment *domain.Payment) (externalID string, err error)
}

// LabelStore is the subset of label/conversation-labeling persistence the
// tool executors need.
type LabelStore interface {
	ListAvailable(ctx context.Context, tenantID string) ([]domain.Label, error)
	ApplyToConversation(ctx context.Context, tenantID, conversationID, labelName string) error
}
