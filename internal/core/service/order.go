package service

import (
	"context"

	"github.com/anle/storefront/internal/core/domain"
	"github.com/anle/storefront/internal/port"
)

// OrderDetail is an order together with its lines, as shown in the admin view.
type OrderDetail struct {
	Order domain.Order
	Lines []domain.OrderLine
}

type OrderService interface {
	// Checkout converts the caller's cart into an order. The whole sequence
	// runs as one atomic unit in the store: on any failure no order exists,
	// no stock is decremented and the cart is untouched. An empty cart fails
	// with domain.ErrEmptyCart; a stock shortage discovered at this point
	// fails with domain.ErrInsufficientStock. Successful orders are created
	// with status "paid"; there is no payment step in this system.
	Checkout(ctx context.Context, caller domain.Caller) (*domain.Order, error)

	ListForAccount(ctx context.Context, caller domain.Caller) ([]domain.Order, error)

	// Get fetches one order, failing with domain.ErrForbidden when the caller
	// neither owns it nor is an admin.
	Get(ctx context.Context, caller domain.Caller, id int64) (*domain.Order, error)

	// ListAll, Detail and UpdateStatus require the admin capability.
	ListAll(ctx context.Context, caller domain.Caller) ([]domain.Order, error)
	Detail(ctx context.Context, caller domain.Caller, id int64) (*OrderDetail, error)
	UpdateStatus(ctx context.Context, caller domain.Caller, id int64, status domain.OrderStatus) error
}

func NewOrderService(orders port.OrderRepository) OrderService {
	return &orderService{orders: orders}
}

type orderService struct {
	orders port.OrderRepository
}

func (s *orderService) Checkout(ctx context.Context, caller domain.Caller) (*domain.Order, error) {
	return s.orders.CreateFromCart(ctx, caller.AccountID)
}

func (s *orderService) ListForAccount(ctx context.Context, caller domain.Caller) ([]domain.Order, error) {
	return s.orders.ListForAccount(ctx, caller.AccountID)
}

func (s *orderService) Get(ctx context.Context, caller domain.Caller, id int64) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.AccountID != caller.AccountID && !caller.Admin {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *orderService) ListAll(ctx context.Context, caller domain.Caller) ([]domain.Order, error) {
	if !caller.Admin {
		return nil, domain.ErrForbidden
	}
	return s.orders.ListAll(ctx)
}

func (s *orderService) Detail(ctx context.Context, caller domain.Caller, id int64) (*OrderDetail, error) {
	if !caller.Admin {
		return nil, domain.ErrForbidden
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.orders.Lines(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *order, Lines: lines}, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, caller domain.Caller, id int64, status domain.OrderStatus) error {
	if !caller.Admin {
		return domain.ErrForbidden
	}
	// Any state may be set from any other; no transition graph is enforced.
	if !domain.ValidOrderStatus(status) {
		return domain.ErrInvalidInput
	}
	return s.orders.UpdateStatus(ctx, id, status)
}
