package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-market-checkout/internal/auth"
	"github.com/ariefcatur/go-market-checkout/internal/cart"
	"github.com/ariefcatur/go-market-checkout/internal/catalog"
	"github.com/ariefcatur/go-market-checkout/internal/checkout"
	"github.com/ariefcatur/go-market-checkout/internal/config"
	"github.com/ariefcatur/go-market-checkout/internal/events"
	"github.com/ariefcatur/go-market-checkout/internal/httpx"
	kafkax "github.com/ariefcatur/go-market-checkout/internal/kafka"
	"github.com/ariefcatur/go-market-checkout/internal/notifications"
	"github.com/ariefcatur/go-market-checkout/internal/orders"
	"github.com/ariefcatur/go-market-checkout/internal/payment"
	"github.com/ariefcatur/go-market-checkout/internal/postgres"
	"github.com/ariefcatur/go-market-checkout/internal/redisx"
	"github.com/ariefcatur/go-market-checkout/internal/users"
	"github.com/ariefcatur/go-market-checkout/internal/webhook"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := &redisx.Cache{Client: rdb}

	// Kafka producer (event lifecycle order)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)
	sink := &events.Kafka{Producer: prod, Service: cfg.ServiceName}

	// Repos
	userRepo := &users.Repo{DB: db}
	productRepo := &catalog.Repo{DB: db}
	cartRepo := &cart.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	notifRepo := &notifications.Repo{DB: db}

	// Orchestrator client + services
	orchestrator := payment.NewClient(cfg.OrchestratorURL, cfg.PaymentServerKey, cfg.ProviderTimeout)
	issuer := auth.NewIssuer(cfg.JWTSecret, 24*time.Hour)

	checkoutSvc := &checkout.Service{
		Products: productRepo,
		Orders:   orderRepo,
		Fees:     orchestrator,
		Payments: orchestrator,
		Notifs:   notifRepo,
		Events:   sink,
	}
	reconciler := &webhook.Reconciler{
		Orders: orderRepo,
		Notifs: notifRepo,
		Events: sink,
		Dedup:  &webhook.RedisDedup{Client: rdb},
		Status: cache,
	}

	// Router + handlers
	router := httpx.NewRouter()
	(&httpx.AuthHandler{Users: userRepo, Issuer: issuer}).Register(router)
	(&httpx.ProductsHandler{Repo: productRepo, Issuer: issuer}).Register(router)
	(&httpx.CartHandler{Repo: cartRepo, Issuer: issuer}).Register(router)
	(&httpx.OrdersHandler{Service: checkoutSvc, Repo: orderRepo, Cache: cache, Issuer: issuer}).Register(router)
	(&httpx.PaymentHandler{Fees: orchestrator, Issuer: issuer}).Register(router)
	(&httpx.NotificationsHandler{Repo: notifRepo, Issuer: issuer}).Register(router)
	(&httpx.WebhookHandler{Reconciler: reconciler, Secret: cfg.WebhookSecret}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s (orchestrator: %s)", cfg.HTTPAddr, cfg.OrchestratorURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
