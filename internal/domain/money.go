package domain

import "fmt"

// Money is an immutable amount expressed in the smallest currency unit
// (e.g. sen for IDR, cents for USD) to avoid floating point drift.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney constructs a Money value, defaulting currency to IDR.
func NewMoney(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, fmt.Errorf("money amount cannot be negative")
	}
	if currency == "" {
		currency = "IDR"
	}
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("currency must be a 3-letter ISO code, got %q", currency)
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Add returns the sum of two Money values of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("cannot add different currencies: %s and %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// MultiplyByQuantity returns the Money scaled by a non-negative integer quantity.
func (m Money) MultiplyByQuantity(quantity int) (Money, error) {
	if quantity < 0 {
		return Money{}, fmt.Errorf("quantity cannot be negative")
	}
	return Money{Amount: m.Amount * int64(quantity), Currency: m.Currency}, nil
}

// String renders the amount in major units with a currency symbol.
func (m Money) String() string {
	return fmt.Sprintf("%s%.2f", currencySymbol(m.Currency), float64(m.Amount)/100.0)
}

func currencySymbol(currency string) string {
	switch currency {
	case "IDR":
		return "Rp"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "SGD":
		return "S$"
	case "MYR":
		return "RM"
	default:
		return currency + " "
	}
}
