package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/anle/storefront/internal/adapter/handler"
	"github.com/anle/storefront/internal/adapter/hash"
	"github.com/anle/storefront/internal/adapter/storage"
	"github.com/anle/storefront/internal/config"
	"github.com/anle/storefront/internal/core/domain"
	"github.com/anle/storefront/internal/core/service"
	"github.com/anle/storefront/internal/port"
)

func main() {
	app := &cli.App{
		Name:   "storefront",
		Usage:  "e-commerce storefront server",
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run(c *cli.Context) error {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.Connect(ctx, cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		return err
	}
	log.Info("connected to mysql")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}
	defer rdb.Close()
	log.Info("connected to redis")

	accounts := storage.NewAccountStore(db)
	products := storage.NewProductStore(db)
	carts := storage.NewCartStore(db)
	orders := storage.NewOrderStore(db)
	sessions := storage.NewRedisSessionStore(rdb, cfg.SessionTTL)

	accountService := service.NewAccountService(accounts, hash.NewBcryptHasher())
	catalogService := service.NewCatalogService(products, cfg.PageSize)
	cartService := service.NewCartService(carts, products)
	orderService := service.NewOrderService(orders)

	if err := accountService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}
	if cfg.SeedCatalog {
		if err := seedCatalog(ctx, log, products); err != nil {
			return err
		}
	}

	h := handler.New(accountService, catalogService, cartService, orderService, sessions, log)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: h.Router(),
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("http server listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown")
	}
	log.Info("http server stopped")
	return nil
}

// seedCatalog inserts a few sample products into an empty catalog so a fresh
// deployment has something to show.
func seedCatalog(ctx context.Context, log *logrus.Logger, products port.ProductRepository) error {
	_, total, err := products.List(ctx, 0, 1)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	samples := []domain.Product{
		{Name: "Laptop 15\"", Description: "High-performance laptop", Price: decimal.NewFromInt(1200), Quantity: 10, ImageURL: "/static/laptop.jpg"},
		{Name: "Smartphone", Description: "Flagship smartphone", Price: decimal.NewFromInt(900), Quantity: 15, ImageURL: "/static/phone.jpg"},
		{Name: "Wireless Earbuds", Description: "Noise-cancelling earbuds", Price: decimal.NewFromInt(180), Quantity: 20, ImageURL: "/static/earbuds.jpg"},
		{Name: "Tablet", Description: "10-inch tablet", Price: decimal.NewFromInt(450), Quantity: 8, ImageURL: "/static/tablet.jpg"},
		{Name: "Smartwatch", Description: "Fitness smartwatch", Price: decimal.NewFromInt(250), Quantity: 12, ImageURL: "/static/watch.jpg"},
	}
	for i := range samples {
		if err := products.Create(ctx, &samples[i]); err != nil {
			return err
		}
	}
	log.WithField("count", len(samples)).Info("seeded catalog")
	return nil
}
