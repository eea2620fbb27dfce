package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-market-checkout/internal/config"
	"github.com/ariefcatur/go-market-checkout/internal/events"
	"github.com/ariefcatur/go-market-checkout/internal/expiry"
	kafkax "github.com/ariefcatur/go-market-checkout/internal/kafka"
	"github.com/ariefcatur/go-market-checkout/internal/notifications"
	"github.com/ariefcatur/go-market-checkout/internal/orders"
	"github.com/ariefcatur/go-market-checkout/internal/postgres"
	"github.com/ariefcatur/go-market-checkout/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, 256)
	prod.Start(ctx)

	sweeper := &expiry.Sweeper{
		Orders:   &orders.Repo{DB: db},
		Notifs:   &notifications.Repo{DB: db},
		Events:   &events.Kafka{Producer: prod, Service: cfg.ServiceName + "-sweeper"},
		Status:   &redisx.Cache{Client: rdb},
		TTL:      cfg.OrderTTL,
		Interval: cfg.SweepInterval,
	}

	go func() {
		log.Printf("sweeper started: ttl=%s interval=%s", cfg.OrderTTL, cfg.SweepInterval)
		sweeper.Run(ctx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down sweeper...")
	prod.Close()
	cancel()
	prod.WaitClosed()
}
