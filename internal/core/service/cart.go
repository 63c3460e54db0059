package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/anle/storefront/internal/core/domain"
	"github.com/anle/storefront/internal/port"
)

type CartService interface {
	// Add puts quantity units of a product into the caller's cart, merging
	// into an existing line for the same product. The requested quantity is
	// checked against current stock first; exceeding it fails with
	// domain.ErrInsufficientStock. The authoritative stock check still
	// happens at checkout.
	Add(ctx context.Context, caller domain.Caller, productID int64, quantity int) error

	Lines(ctx context.Context, caller domain.Caller) ([]domain.CartLine, error)
	Total(ctx context.Context, caller domain.Caller) (decimal.Decimal, error)

	// Remove deletes one cart line. Absent lines fail with domain.ErrNotFound,
	// lines owned by another account with domain.ErrForbidden.
	Remove(ctx context.Context, caller domain.Caller, itemID int64) error
}

func NewCartService(carts port.CartRepository, products port.ProductRepository) CartService {
	return &cartService{carts: carts, products: products}
}

type cartService struct {
	carts    port.CartRepository
	products port.ProductRepository
}

func (s *cartService) Add(ctx context.Context, caller domain.Caller, productID int64, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.Quantity < quantity {
		return domain.ErrInsufficientStock
	}

	return s.carts.Upsert(ctx, &domain.CartItem{
		AccountID: caller.AccountID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

func (s *cartService) Lines(ctx context.Context, caller domain.Caller) ([]domain.CartLine, error) {
	return s.carts.LinesForAccount(ctx, caller.AccountID)
}

func (s *cartService) Total(ctx context.Context, caller domain.Caller) (decimal.Decimal, error) {
	lines, err := s.carts.LinesForAccount(ctx, caller.AccountID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total, nil
}

func (s *cartService) Remove(ctx context.Context, caller domain.Caller, itemID int64) error {
	item, err := s.carts.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.AccountID != caller.AccountID {
		return domain.ErrForbidden
	}
	return s.carts.Delete(ctx, itemID)
}
