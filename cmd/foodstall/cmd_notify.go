package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"foodstall/internal/logger"
	"foodstall/internal/messaging"
	"foodstall/internal/services/notification"
)

var notifyPrefetch int

// foodstall notify: print order status changes as they happen.
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Print order notifications from RabbitMQ",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.BrokerEnabled() {
			return fmt.Errorf("notify needs rabbitmq.host to be set")
		}
		log := logger.New("notification-subscriber")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		defer conn.Close()

		hostname, _ := os.Hostname()
		consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notify-"+hostname, notifyPrefetch)
		return notification.NewSubscriber(consumer, cmd.OutOrStdout(), log).Start(ctx)
	},
}

func init() {
	notifyCmd.Flags().IntVar(&notifyPrefetch, "prefetch", 1, "RabbitMQ prefetch count")
}
