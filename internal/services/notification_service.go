package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"friendly/internal/models"
	"friendly/internal/storage"
	"friendly/internal/websocket"
)

// NotificationService persists match notifications and pushes them to
// connected clients.
type NotificationService interface {
	// HandleMatchEvent is the Kafka handler for the match-event topic.
	HandleMatchEvent(ctx context.Context, msg *ckafka.Message) error
	List(ctx context.Context, username string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, username string, id uint) error
}

type notificationService struct {
	notificationRepo storage.NotificationRepository
	hub              *websocket.Hub
}

// NewNotificationService creates a new NotificationService instance.
func NewNotificationService(notificationRepo storage.NotificationRepository, hub *websocket.Hub) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		hub:              hub,
	}
}

// HandleMatchEvent stores a notification row for each side of the match
// and pushes to whichever of them is connected.
func (s *notificationService) HandleMatchEvent(ctx context.Context, msg *ckafka.Message) error {
	var event MatchEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to decode match event: %w", err)
	}
	if event.UserA == "" || event.UserB == "" {
		return fmt.Errorf("match event missing usernames: %s", string(msg.Value))
	}

	for _, pair := range [][2]string{{event.UserA, event.UserB}, {event.UserB, event.UserA}} {
		recipient, actor := pair[0], pair[1]
		notification := &models.Notification{
			Username: recipient,
			Actor:    actor,
			Kind:     models.NotificationKindMatch,
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			return fmt.Errorf("failed to store notification for %s: %w", recipient, err)
		}
		s.hub.Deliver(&websocket.Notification{
			Kind:      string(models.NotificationKindMatch),
			Username:  recipient,
			Actor:     actor,
			Message:   fmt.Sprintf("You matched with %s!", actor),
			CreatedAt: notification.CreatedAt.Format(time.RFC3339),
		})
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, username string, limit int) ([]models.Notification, error) {
	return s.notificationRepo.ListForUser(ctx, username, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, username string, id uint) error {
	return s.notificationRepo.MarkRead(ctx, username, id)
}
