package port

import (
	"context"

	"github.com/anle/storefront/internal/core/domain"
)

type AccountRepository interface {
	// Create persists a new account, failing with domain.ErrConflict if the
	// username or email is already taken.
	Create(ctx context.Context, account *domain.Account) error

	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}

type ProductRepository interface {
	// List returns one page of products ordered by id plus the total number
	// of products in the catalog.
	List(ctx context.Context, offset, limit int) ([]domain.Product, int, error)

	// ListAll returns the whole catalog, as shown on the admin dashboard.
	ListAll(ctx context.Context) ([]domain.Product, error)

	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes the product together with its cart items and order
	// lines, all inside one transaction.
	Delete(ctx context.Context, id int64) error
}

type CartRepository interface {
	// Upsert inserts a cart item or, when the account already has one for the
	// same product, adds the quantity onto it.
	Upsert(ctx context.Context, item *domain.CartItem) error

	FindByID(ctx context.Context, id int64) (*domain.CartItem, error)
	LinesForAccount(ctx context.Context, accountID int64) ([]domain.CartLine, error)
	Delete(ctx context.Context, id int64) error
	DeleteForAccount(ctx context.Context, accountID int64) error
}

type OrderRepository interface {
	// CreateFromCart converts the account's cart into an order as one atomic
	// unit: snapshot cart lines, insert the order and its lines at current
	// prices, decrement each product's stock guarded by the current quantity,
	// delete the cart rows, commit. Any failure rolls everything back.
	// Fails with domain.ErrEmptyCart when the cart has no rows and
	// domain.ErrInsufficientStock when a guarded decrement matches nothing.
	CreateFromCart(ctx context.Context, accountID int64) (*domain.Order, error)

	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	ListForAccount(ctx context.Context, accountID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Lines(ctx context.Context, orderID int64) ([]domain.OrderLine, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}
