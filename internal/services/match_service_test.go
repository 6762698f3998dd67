package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendly/internal/config"
	"friendly/internal/models"
)

func matchUser(username, zipcode string, radius int) *models.User {
	return &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    username,
		LastName:     "Test",
		Zipcode:      zipcode,
		FriendRadius: radius,
	}
}

func newTestMatchService(userRepo *memUserRepo, interestRepo *memInterestRepo, producer *memProducer, nearby staticProximity, limit int) MatchService {
	return NewMatchService(
		userRepo,
		interestRepo,
		nearby,
		producer,
		config.KafkaConfig{MatchEventTopic: "match-events"},
		config.MatchingConfig{CandidateLimit: limit},
	)
}

func TestCandidateFeed(t *testing.T) {
	ctx := context.Background()
	userRepo := newMemUserRepo(
		matchUser("alice", "10001", 5),
		matchUser("bob", "10002", 5),
		matchUser("carol", "10001", 5),
		matchUser("dave", "99999", 5),
	)
	svc := newTestMatchService(userRepo, &memInterestRepo{}, &memProducer{}, staticProximity{"10002": {}}, 10)

	cards, err := svc.CandidateFeed(ctx, "alice")
	require.NoError(t, err)

	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.Username)
	}
	// bob by proximity, carol by sharing alice's own zip; dave is out of
	// range and alice never sees herself.
	assert.ElementsMatch(t, []string{"bob", "carol"}, names)
}

func TestCandidateFeedHonorsLimit(t *testing.T) {
	ctx := context.Background()
	users := []*models.User{matchUser("alice", "10001", 5)}
	for _, name := range []string{"b", "c", "d", "e"} {
		users = append(users, matchUser(name, "10001", 5))
	}
	svc := newTestMatchService(newMemUserRepo(users...), &memInterestRepo{}, &memProducer{}, staticProximity{}, 2)

	cards, err := svc.CandidateFeed(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestCandidateFeedRequiresZipcode(t *testing.T) {
	ctx := context.Background()
	userRepo := newMemUserRepo(matchUser("alice", "", 5))
	svc := newTestMatchService(userRepo, &memInterestRepo{}, &memProducer{}, staticProximity{}, 10)

	_, err := svc.CandidateFeed(ctx, "alice")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCandidateFeedUnknownUser(t *testing.T) {
	svc := newTestMatchService(newMemUserRepo(), &memInterestRepo{}, &memProducer{}, staticProximity{}, 10)
	_, err := svc.CandidateFeed(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRecordInterestRejectsSelfAndUnknownTarget(t *testing.T) {
	ctx := context.Background()
	userRepo := newMemUserRepo(matchUser("alice", "10001", 5))
	svc := newTestMatchService(userRepo, &memInterestRepo{}, &memProducer{}, staticProximity{}, 10)

	_, err := svc.RecordInterest(ctx, "alice", "alice", true)
	assert.ErrorIs(t, err, ErrSelfMatch)

	_, err = svc.RecordInterest(ctx, "alice", "ghost", true)
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestRecordInterestMutualMatch(t *testing.T) {
	ctx := context.Background()
	userRepo := newMemUserRepo(matchUser("alice", "10001", 5), matchUser("bob", "10001", 5))
	producer := &memProducer{}
	svc := newTestMatchService(userRepo, &memInterestRepo{}, producer, staticProximity{}, 10)

	mutual, err := svc.RecordInterest(ctx, "alice", "bob", true)
	require.NoError(t, err)
	assert.False(t, mutual, "one-sided interest is not a match")
	assert.Empty(t, producer.payloads)

	mutual, err = svc.RecordInterest(ctx, "bob", "alice", true)
	require.NoError(t, err)
	assert.True(t, mutual)
	require.Len(t, producer.payloads, 1)
	assert.Equal(t, "match-events", producer.topics[0])

	var event MatchEvent
	require.NoError(t, json.Unmarshal(producer.payloads[0], &event))
	assert.Equal(t, "bob", event.UserA)
	assert.Equal(t, "alice", event.UserB)
}

func TestRecordInterestIdempotent(t *testing.T) {
	ctx := context.Background()
	userRepo := newMemUserRepo(matchUser("alice", "10001", 5), matchUser("bob", "10001", 5))
	producer := &memProducer{}
	interestRepo := &memInterestRepo{}
	svc := newTestMatchService(userRepo, interestRepo, producer, staticProximity{}, 10)

	_, err := svc.RecordInterest(ctx, "alice", "bob", true)
	require.NoError(t, err)
	_, err = svc.RecordInterest(ctx, "bob", "alice", true)
	require.NoError(t, err)

	// Re-recording reports the existing mutual match but publishes nothing.
	mutual, err := svc.RecordInterest(ctx, "bob", "alice", true)
	require.NoError(t, err)
	assert.True(t, mutual)
	assert.Len(t, producer.payloads, 1)
	assert.Len(t, interestRepo.records, 2)

	// A later attempt to flip the decision is ignored.
	mutual, err = svc.RecordInterest(ctx, "bob", "alice", false)
	require.NoError(t, err)
	assert.True(t, mutual, "stored positive decision wins over the replay")
}

func TestRecordInterestDeclineNeverMatches(t *testing.T) {
	ctx := context.Background()
	userRepo := newMemUserRepo(matchUser("alice", "10001", 5), matchUser("bob", "10001", 5))
	producer := &memProducer{}
	svc := newTestMatchService(userRepo, &memInterestRepo{}, producer, staticProximity{}, 10)

	mutual, err := svc.RecordInterest(ctx, "alice", "bob", true)
	require.NoError(t, err)
	assert.False(t, mutual)

	mutual, err = svc.RecordInterest(ctx, "bob", "alice", false)
	require.NoError(t, err)
	assert.False(t, mutual)
	assert.Empty(t, producer.payloads)
}

func TestPotentialAndConfirmedMatches(t *testing.T) {
	ctx := context.Background()
	userRepo := newMemUserRepo(
		matchUser("alice", "10001", 5),
		matchUser("bob", "10001", 5),
		matchUser("carol", "10001", 5),
	)
	svc := newTestMatchService(userRepo, &memInterestRepo{}, &memProducer{}, staticProximity{}, 10)

	// bob and carol both like alice; alice likes carol back.
	_, err := svc.RecordInterest(ctx, "bob", "alice", true)
	require.NoError(t, err)
	_, err = svc.RecordInterest(ctx, "carol", "alice", true)
	require.NoError(t, err)
	_, err = svc.RecordInterest(ctx, "alice", "carol", true)
	require.NoError(t, err)

	potential, err := svc.PotentialMatches(ctx, "alice", "alice")
	require.NoError(t, err)
	require.Len(t, potential, 1)
	assert.Equal(t, "bob", potential[0].Username)

	confirmed, err := svc.ConfirmedMatches(ctx, "alice", "alice")
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "carol", confirmed[0].Username)
}

func TestMatchListsRequireOwnSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestMatchService(newMemUserRepo(), &memInterestRepo{}, &memProducer{}, staticProximity{}, 10)

	_, err := svc.PotentialMatches(ctx, "alice", "bob")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = svc.ConfirmedMatches(ctx, "alice", "bob")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}
