package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/anle/storefront/internal/adapter/storage"
	"github.com/anle/storefront/internal/config"
	"github.com/anle/storefront/internal/core/domain"
)

// Drives N concurrent checkouts against one product with limited stock and
// checks that exactly stock-many succeed and the rest fail with
// InsufficientStock. Needs a reachable MySQL (MYSQL_DSN).

const (
	initialStock   = 20
	totalCheckouts = 50
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("parse config: %v", err)
	}

	ctx := context.Background()
	db, err := storage.Connect(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("connect mysql: %v", err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	accounts := storage.NewAccountStore(db)
	products := storage.NewProductStore(db)
	carts := storage.NewCartStore(db)
	orders := storage.NewOrderStore(db)

	product := &domain.Product{
		Name:     "bench-item-" + uuid.NewString()[:8],
		Price:    decimal.NewFromInt(10),
		Quantity: initialStock,
	}
	if err := products.Create(ctx, product); err != nil {
		log.Fatalf("create product: %v", err)
	}

	// One account with a one-unit cart per checkout attempt.
	accountIDs := make([]int64, totalCheckouts)
	for i := range accountIDs {
		account := &domain.Account{
			Username:     "bench-" + uuid.NewString()[:12],
			Email:        uuid.NewString()[:12] + "@bench.local",
			PasswordHash: "-",
		}
		if err := accounts.Create(ctx, account); err != nil {
			log.Fatalf("create account: %v", err)
		}
		item := &domain.CartItem{AccountID: account.ID, ProductID: product.ID, Quantity: 1}
		if err := carts.Upsert(ctx, item); err != nil {
			log.Fatalf("fill cart: %v", err)
		}
		accountIDs[i] = account.ID
	}

	var successCount, stockFailCount, otherFailCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

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
				otherFailCount.Add(1)
				log.Printf("checkout error: %v", err)
			}
		}(accountID)
	}

	wg.Wait()
	elapsed := time.Since(start)

	final, err := products.FindByID(ctx, product.ID)
	if err != nil {
		log.Fatalf("read final stock: %v", err)
	}

	fmt.Println("========== CHECKOUT BENCH RESULTS ==========")
	fmt.Printf("Initial Stock:      %d\n", initialStock)
	fmt.Printf("Checkout Attempts:  %d\n", totalCheckouts)
	fmt.Printf("Succeeded:          %d\n", successCount.Load())
	fmt.Printf("Out of Stock:       %d\n", stockFailCount.Load())
	fmt.Printf("Other Failures:     %d\n", otherFailCount.Load())
	fmt.Printf("Final Stock:        %d\n", final.Quantity)
	fmt.Printf("Duration:           %v\n", elapsed)
	fmt.Println("============================================")

	if successCount.Load() == initialStock && final.Quantity == 0 && otherFailCount.Load() == 0 {
		fmt.Println("PASS: stock depleted exactly once per unit")
	} else {
		fmt.Println("FAIL: stock accounting is off")
	}
}
