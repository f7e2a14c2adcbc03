package main

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"NepKart/internal/cart"
	"NepKart/internal/catalog"
	"NepKart/internal/checkout"
	"NepKart/internal/config"
	"NepKart/internal/storefront"
	"NepKart/pkg/kit"
)

func main() {
	service := "storefront"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	if cfg.KhaltiSecretKey == "" && cfg.Environment != "development" {
		log.Fatal("KHALTI_SECRET_KEY is required outside development")
	}

	catalogStore := newCatalogStore(cfg, log)
	slot := newCartSlot(cfg, log)

	cartStore := cart.NewStore(slot, log)
	defer cartStore.Close()

	catalogSrv := &catalog.Server{Store: catalogStore, Log: log}
	cartSrv := &cart.Server{Store: cartStore, Catalog: catalogStore, Log: log}
	checkoutSrv := &checkout.Server{
		Cart:    cartStore,
		Khalti:  checkout.NewKhaltiClient(cfg.KhaltiBaseURL, cfg.KhaltiSecretKey),
		SiteURL: cfg.SiteURL,
		Log:     log,
	}

	h := storefront.NewHandler(catalogSrv, cartSrv, checkoutSrv, storefront.HTTPDeps{
		Log:                log,
		Service:            service,
		Registry:           prometheus.NewRegistry(),
		MetricsEnabled:     cfg.MetricsEnabled,
		MetricsToken:       cfg.MetricsToken,
		CheckoutRateLimit:  cfg.CheckoutRateLimit,
		CheckoutRateWindow: cfg.CheckoutRateWindowSeconds,
	})

	if err := kit.RunHTTPServer(":"+strconv.Itoa(cfg.Port), h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func newCatalogStore(cfg *config.Config, log *zap.Logger) catalog.Store {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory catalog")
		return catalog.NewMemStore()
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open database failed", zap.Error(err))
	}

	store := catalog.NewPostgresStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		log.Fatal("database unreachable", zap.Error(err))
	}

	log.Info("using postgres catalog")
	return store
}

func newCartSlot(cfg *config.Config, log *zap.Logger) cart.Slot {
	if cfg.RedisAddr == "" {
		log.Info("using in-memory cart slot")
		return cart.NewMemSlot()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("redis unreachable", zap.Error(err))
	}

	log.Info("using redis cart slot", zap.String("addr", cfg.RedisAddr))
	return cart.NewRedisSlot(client)
}
