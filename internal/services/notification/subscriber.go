package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"foodstall/internal/logger"
	"foodstall/internal/messaging"
	"foodstall/internal/models"
	"foodstall/internal/views"
)

// Source delivers notification message bodies until ctx is done
type Source interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints order status notifications for the counter
type Subscriber struct {
	source Source
	out    io.Writer
	logger *logger.Logger
}

// NewSubscriber creates a new notification subscriber
func NewSubscriber(source Source, out io.Writer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		source: source,
		out:    out,
		logger: log,
	}
}

// Start consumes notifications until ctx is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.source.StartConsuming(ctx, s.handleNotification)

	s.logger.Info("graceful_shutdown", "Stopping notification subscriber", requestID, nil)
	if closeErr := s.source.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close notification consumer", requestID, closeErr, nil)
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("notification consumer failed: %w", err)
	}
	return nil
}

// handleNotification processes incoming status update notifications
func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var statusUpdate models.StatusUpdateMessage
	if err := json.Unmarshal(body, &statusUpdate); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return fmt.Errorf("failed to parse notification: %w", err)
	}

	s.logger.Debug("notification_received", "Received status update notification", requestID, map[string]interface{}{
		"order_id":   statusUpdate.OrderID,
		"new_status": statusUpdate.NewStatus,
		"changed_by": statusUpdate.ChangedBy,
	})

	if _, err := fmt.Fprintln(s.out, FormatNotification(&statusUpdate)); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed", requestID, map[string]interface{}{
		"order_id":   statusUpdate.OrderID,
		"old_status": statusUpdate.OldStatus,
		"new_status": statusUpdate.NewStatus,
	})
	return nil
}

// FormatNotification renders one status change as a console line
func FormatNotification(m *models.StatusUpdateMessage) string {
	timestamp := m.Timestamp.Format("2006-01-02 15:04:05")
	ref := orderRef(m)

	switch models.OrderStatus(m.NewStatus) {
	case models.StatusPending:
		return fmt.Sprintf("🧾 [%s] New order %s placed, total %s.", timestamp, ref, views.FormatPrice(m.Total))
	case models.StatusPreparing:
		return fmt.Sprintf("🍳 [%s] Order %s is being prepared.", timestamp, ref)
	case models.StatusReady:
		return fmt.Sprintf("✅ [%s] Order %s is ready for pickup!", timestamp, ref)
	case models.StatusCompleted:
		if m.ChangedBy != "" {
			return fmt.Sprintf("🎉 [%s] Order %s completed by %s.", timestamp, ref, m.ChangedBy)
		}
		return fmt.Sprintf("🎉 [%s] Order %s completed.", timestamp, ref)
	default:
		return fmt.Sprintf("📋 [%s] Order %s status changed from '%s' to '%s' by %s.",
			timestamp, ref, m.OldStatus, m.NewStatus, m.ChangedBy)
	}
}

// orderRef prefers the display number; completion messages only carry the id
func orderRef(m *models.StatusUpdateMessage) string {
	if m.OrderNumber > 0 {
		return fmt.Sprintf("#%d", m.OrderNumber)
	}
	return m.OrderID
}
