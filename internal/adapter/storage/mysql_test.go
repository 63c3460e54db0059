package storage

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/anle/storefront/internal/core/domain"
)

func getMySQL(t *testing.T) *sqlx.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true&multiStatements=true"
	}

	db, err := Connect(context.Background(), dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func newTestAccount(t *testing.T, db *sqlx.DB) int64 {
	t.Helper()
	name := "t-" + uuid.NewString()[:8]
	account := domain.Account{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
	}
	if err := NewAccountStore(db).Create(context.Background(), &account); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account.ID
}

func newTestProduct(t *testing.T, db *sqlx.DB, price string, stock int) int64 {
	t.Helper()
	product := domain.Product{
		Name:     "t-" + uuid.NewString()[:8],
		Price:    decimal.RequireFromString(price),
		Quantity: stock,
	}
	if err := NewProductStore(db).Create(context.Background(), &product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product.ID
}

func TestCheckoutTransaction(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()
	ctx := context.Background()

	accountID := newTestAccount(t, db)
	productID := newTestProduct(t, db, "19.90", 5)

	carts := NewCartStore(db)
	if err := carts.Upsert(ctx, &domain.CartItem{AccountID: accountID, ProductID: productID, Quantity: 2}); err != nil {
		t.Fatalf("cart upsert: %v", err)
	}

	orders := NewOrderStore(db)
	order, err := orders.CreateFromCart(ctx, accountID)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if order.Status != domain.OrderStatusPaid {
		t.Errorf("expected status paid, got %s", order.Status)
	}
	if want := decimal.RequireFromString("39.80"); !order.Total.Equal(want) {
		t.Errorf("expected total 39.80, got %s", order.Total)
	}

	lines, err := orders.Lines(ctx, order.ID)
	if err != nil {
		t.Fatalf("order lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
	if !lines[0].UnitPrice.Equal(decimal.RequireFromString("19.90")) {
		t.Errorf("expected snapshot price 19.90, got %s", lines[0].UnitPrice)
	}

	product, err := NewProductStore(db).FindByID(ctx, productID)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if product.Quantity != 3 {
		t.Errorf("expected stock 3, got %d", product.Quantity)
	}

	cartLines, err := carts.LinesForAccount(ctx, accountID)
	if err != nil {
		t.Fatalf("cart lines: %v", err)
	}
	if len(cartLines) != 0 {
		t.Errorf("expected empty cart after checkout, got %d lines", len(cartLines))
	}
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()
	ctx := context.Background()

	accountID := newTestAccount(t, db)
	okProduct := newTestProduct(t, db, "10.00", 5)
	scarce := newTestProduct(t, db, "10.00", 1)

	carts := NewCartStore(db)
	carts.Upsert(ctx, &domain.CartItem{AccountID: accountID, ProductID: okProduct, Quantity: 1})
	carts.Upsert(ctx, &domain.CartItem{AccountID: accountID, ProductID: scarce, Quantity: 2})

	_, err := NewOrderStore(db).CreateFromCart(ctx, accountID)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// The first line's decrement must have been rolled back with the rest.
	product, _ := NewProductStore(db).FindByID(ctx, okProduct)
	if product.Quantity != 5 {
		t.Errorf("expected stock 5 after rollback, got %d", product.Quantity)
	}

	cartLines, _ := carts.LinesForAccount(ctx, accountID)
	if len(cartLines) != 2 {
		t.Errorf("expected cart untouched, got %d lines", len(cartLines))
	}

	all, _ := NewOrderStore(db).ListForAccount(ctx, accountID)
	if len(all) != 0 {
		t.Errorf("expected no order, got %d", len(all))
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()

	accountID := newTestAccount(t, db)
	_, err := NewOrderStore(db).CreateFromCart(context.Background(), accountID)
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutConcurrent(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()
	ctx := context.Background()

	const stock = 5
	const shoppers = 20
	productID := newTestProduct(t, db, "10.00", stock)

	carts := NewCartStore(db)
	accountIDs := make([]int64, shoppers)
	for i := range accountIDs {
		accountIDs[i] = newTestAccount(t, db)
		if err := carts.Upsert(ctx, &domain.CartItem{AccountID: accountIDs[i], ProductID: productID, Quantity: 1}); err != nil {
			t.Fatalf("cart upsert: %v", err)
		}
	}

	orders := NewOrderStore(db)
	var successCount, stockFailCount atomic.Int32
	var wg sync.WaitGroup
	for _, accountID := range accountIDs {
		wg.Add(1)
		go func(accountID int64) {
			defer wg.Done()
			_, err := orders.CreateFromCart(ctx, accountID)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				stockFailCount.Add(1)
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		}(accountID)
	}
	wg.Wait()

	if successCount.Load() != stock {
		t.Errorf("expected exactly %d successes, got %d", stock, successCount.Load())
	}
	if stockFailCount.Load() != shoppers-stock {
		t.Errorf("expected %d stock failures, got %d", shoppers-stock, stockFailCount.Load())
	}

	product, err := NewProductStore(db).FindByID(ctx, productID)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if product.Quantity != 0 {
		t.Errorf("expected stock 0, got %d", product.Quantity)
	}
}

func TestCartUpsertMerges(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()
	ctx := context.Background()

	accountID := newTestAccount(t, db)
	productID := newTestProduct(t, db, "10.00", 10)

	carts := NewCartStore(db)
	carts.Upsert(ctx, &domain.CartItem{AccountID: accountID, ProductID: productID, Quantity: 2})
	carts.Upsert(ctx, &domain.CartItem{AccountID: accountID, ProductID: productID, Quantity: 3})

	lines, err := carts.LinesForAccount(ctx, accountID)
	if err != nil {
		t.Fatalf("cart lines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", lines[0].Quantity)
	}
	if lines[0].Product.ID != productID {
		t.Errorf("joined product mismatch: %+v", lines[0].Product)
	}
}

func TestAccountDuplicateUsername(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()
	ctx := context.Background()

	accounts := NewAccountStore(db)
	name := "t-" + uuid.NewString()[:8]
	first := domain.Account{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	if err := accounts.Create(ctx, &first); err != nil {
		t.Fatalf("create: %v", err)
	}

	second := domain.Account{Username: name, Email: name + "@elsewhere.example", PasswordHash: "x"}
	if err := accounts.Create(ctx, &second); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestProductDeleteCascades(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()
	ctx := context.Background()

	accountID := newTestAccount(t, db)
	productID := newTestProduct(t, db, "10.00", 10)

	// Reference the product from an order line and a second cart.
	carts := NewCartStore(db)
	carts.Upsert(ctx, &domain.CartItem{AccountID: accountID, ProductID: productID, Quantity: 1})
	orders := NewOrderStore(db)
	order, err := orders.CreateFromCart(ctx, accountID)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	otherAccount := newTestAccount(t, db)
	carts.Upsert(ctx, &domain.CartItem{AccountID: otherAccount, ProductID: productID, Quantity: 1})

	if err := NewProductStore(db).Delete(ctx, productID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := NewProductStore(db).FindByID(ctx, productID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	lines, _ := orders.Lines(ctx, order.ID)
	if len(lines) != 0 {
		t.Errorf("expected order lines removed, got %d", len(lines))
	}
	cartLines, _ := carts.LinesForAccount(ctx, otherAccount)
	if len(cartLines) != 0 {
		t.Errorf("expected cart rows removed, got %d", len(cartLines))
	}
}

func TestOrderStatusUpdateAbsent(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()

	err := NewOrderStore(db).UpdateStatus(context.Background(), -1, domain.OrderStatusShipped)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
