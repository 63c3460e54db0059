package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// ValidOrderStatus reports whether s is one of the four defined states.
// Transitions between states are unrestricted; admins may set any status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

type Order struct {
	ID        int64
	AccountID int64
	Total     decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
}

// OrderLine records one product of an order. UnitPrice is the catalog price
// at the moment of checkout and never changes afterwards, regardless of later
// product price edits.
type OrderLine struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	Quantity    int
	UnitPrice   decimal.Decimal
	ProductName string
}

// Subtotal is UnitPrice multiplied by Quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
