package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"foodstall/internal/auth"
	"foodstall/internal/cart"
	"foodstall/internal/catalog"
	"foodstall/internal/config"
	"foodstall/internal/database"
	"foodstall/internal/database/migrations"
	"foodstall/internal/livequery"
	"foodstall/internal/logger"
	"foodstall/internal/messaging"
	"foodstall/internal/orders"
	"foodstall/internal/server"
	"foodstall/internal/services/dashboard"
	"foodstall/internal/services/storefront"
)

const cartSweepInterval = time.Minute

// foodstall serve: migrate, seed if empty, then serve HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.New("foodstall")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		requestID := logger.GenerateRequestID()
		if err := runServe(ctx, cfg, log); err != nil {
			log.Error("service_failed", "Storefront failed", requestID, err, nil)
			return err
		}
		log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
		return nil
	},
}

func runServe(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	backend := database.NewStore(db)

	broker := livequery.NewBroker()
	changes, err := openChanges(ctx, cfg, broker, log)
	if err != nil {
		return err
	}
	defer changes.Close()

	revocations, closeRevocations, err := openRevocations(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRevocations()

	authService, err := auth.NewService(cfg.Auth, revocations, log)
	if err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}

	cat := catalog.New(backend, broker, changes.announcer, log)
	if _, err := cat.Initialize(ctx); err != nil {
		log.Warn("menu_seed_skipped", "Could not seed menu, serving defaults until the store recovers", requestID, map[string]interface{}{
			"error": err.Error(),
		})
	}

	orderStore := orders.NewStore(backend, broker, changes.announcer, log)
	if changes.publisher != nil {
		orderStore.WithNotifications(changes.publisher)
	}

	carts := cart.NewRegistry(orderStore, cfg.Server.CartIdleTTL)
	go carts.Run(ctx, cartSweepInterval)

	router := server.NewRouter(server.Routes{
		Storefront: storefront.NewHandler(cat, carts, orderStore, cfg.Server.CartIdleTTL, log),
		Dashboard:  dashboard.NewHandler(authService, orderStore, orders.NewLifecycle(orderStore, log), cat, log),
		Health:     backend,
	}, log)

	return server.New(cfg.Server, router, log).Run(ctx)
}

// changes is where writes announce themselves: the in-process broker alone,
// or the broker plus the RabbitMQ fanout when one is configured.
type changes struct {
	announcer livequery.Announcer
	publisher *messaging.Publisher
	conn      *messaging.Connection
}

func (c *changes) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

func openChanges(ctx context.Context, cfg *config.Config, broker *livequery.Broker, log *logger.Logger) (*changes, error) {
	if !cfg.BrokerEnabled() {
		log.Info("change_feed_local", "RabbitMQ not configured, change events stay in process", "startup", nil)
		return &changes{announcer: broker}, nil
	}

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize messaging: %w", err)
	}
	publisher := messaging.NewPublisher(conn, log)
	feed := messaging.NewChangeFeed(conn, publisher, broker, log)

	go func() {
		if err := feed.Listen(ctx); err != nil && ctx.Err() == nil {
			log.Error("change_feed_failed", "Change feed stopped, remote changes will not be seen", "", err, nil)
		}
	}()
	return &changes{announcer: feed, publisher: publisher, conn: conn}, nil
}

func openRevocations(ctx context.Context, cfg *config.Config, log *logger.Logger) (auth.Revocations, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Info("revocations_local", "Redis not configured, session revocations kept in memory", "startup", nil)
		return auth.NewMemoryRevocations(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("redis_connected", "Connected to Redis", "startup", map[string]interface{}{
		"addr": cfg.Redis.Addr,
	})
	return auth.NewRedisRevocations(client), func() { client.Close() }, nil
}
