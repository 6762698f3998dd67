package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendly/internal/models"
	"friendly/internal/websocket"
)

func matchEventMessage(t *testing.T, userA, userB string) *ckafka.Message {
	t.Helper()
	payload, err := json.Marshal(MatchEvent{UserA: userA, UserB: userB, OccurredAt: time.Now().UTC()})
	require.NoError(t, err)
	topic := "match-events"
	return &ckafka.Message{
		TopicPartition: ckafka.TopicPartition{Topic: &topic},
		Value:          payload,
	}
}

func TestHandleMatchEventStoresBothSides(t *testing.T) {
	ctx := context.Background()
	repo := &memNotificationRepo{}
	svc := NewNotificationService(repo, websocket.NewHub())

	require.NoError(t, svc.HandleMatchEvent(ctx, matchEventMessage(t, "alice", "bob")))

	require.Len(t, repo.rows, 2)
	assert.Equal(t, "alice", repo.rows[0].Username)
	assert.Equal(t, "bob", repo.rows[0].Actor)
	assert.Equal(t, "bob", repo.rows[1].Username)
	assert.Equal(t, "alice", repo.rows[1].Actor)
	for _, row := range repo.rows {
		assert.Equal(t, models.NotificationKindMatch, row.Kind)
		assert.False(t, row.Read)
	}
}

func TestHandleMatchEventRejectsBadPayloads(t *testing.T) {
	ctx := context.Background()
	svc := NewNotificationService(&memNotificationRepo{}, websocket.NewHub())

	topic := "match-events"
	garbage := &ckafka.Message{
		TopicPartition: ckafka.TopicPartition{Topic: &topic},
		Value:          []byte("not json"),
	}
	assert.Error(t, svc.HandleMatchEvent(ctx, garbage))

	assert.Error(t, svc.HandleMatchEvent(ctx, matchEventMessage(t, "", "bob")))
}

func TestNotificationList(t *testing.T) {
	ctx := context.Background()
	repo := &memNotificationRepo{}
	svc := NewNotificationService(repo, websocket.NewHub())

	require.NoError(t, svc.HandleMatchEvent(ctx, matchEventMessage(t, "alice", "bob")))
	require.NoError(t, svc.HandleMatchEvent(ctx, matchEventMessage(t, "alice", "carol")))

	rows, err := svc.List(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = svc.List(ctx, "bob", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
