package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"

	"friendly/internal/config"
	"friendly/internal/kafka"
	"friendly/internal/matching"
	"friendly/internal/models"
	"friendly/internal/storage"
)

// MatchEvent is the payload published to Kafka when two users become a
// mutual match.
type MatchEvent struct {
	UserA      string    `json:"userA"`
	UserB      string    `json:"userB"`
	OccurredAt time.Time `json:"occurredAt"`
}

// MatchService defines the interface for the candidate feed and match
// decisions.
type MatchService interface {
	// CandidateFeed returns up to the configured number of users inside
	// the session user's friend radius.
	CandidateFeed(ctx context.Context, username string) ([]models.UserCard, error)
	// RecordInterest stores a directional match decision. It reports
	// whether this decision completed a mutual match.
	RecordInterest(ctx context.Context, username, target string, interested bool) (mutual bool, err error)
	// PotentialMatches lists users who liked the session user and whose
	// pair is still unresolved in both directions.
	PotentialMatches(ctx context.Context, sessionUser, username string) ([]models.UserCard, error)
	// ConfirmedMatches lists users the session user has mutually matched
	// with.
	ConfirmedMatches(ctx context.Context, sessionUser, username string) ([]models.UserCard, error)
}

type matchService struct {
	userRepo     storage.UserRepository
	interestRepo storage.InterestRepository
	proximity    matching.ZipProximity
	producer     kafka.MessageProducer // nil when Kafka is unavailable
	kafkaCfg     config.KafkaConfig
	limit        int
}

// NewMatchService creates a new MatchService instance. producer may be
// nil; mutual matches are then recorded without an event.
func NewMatchService(userRepo storage.UserRepository, interestRepo storage.InterestRepository, proximity matching.ZipProximity, producer kafka.MessageProducer, kafkaCfg config.KafkaConfig, matchingCfg config.MatchingConfig) MatchService {
	return &matchService{
		userRepo:     userRepo,
		interestRepo: interestRepo,
		proximity:    proximity,
		producer:     producer,
		kafkaCfg:     kafkaCfg,
		limit:        matchingCfg.CandidateLimit,
	}
}

func (s *matchService) CandidateFeed(ctx context.Context, username string) ([]models.UserCard, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}

	eligible, err := matching.EligibleZipcodes(ctx, s.proximity, user)
	if errors.Is(err, matching.ErrNoZipcode) {
		return nil, fmt.Errorf("%w: profile has no zipcode", ErrInvalidInput)
	} else if err != nil {
		return nil, fmt.Errorf("failed to resolve nearby zipcodes: %w", err)
	}

	zipcodes := make([]string, 0, len(eligible))
	for zip := range eligible {
		zipcodes = append(zipcodes, zip)
	}
	sort.Strings(zipcodes)

	population, err := s.userRepo.ListByZipcodes(ctx, zipcodes, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	candidates := matching.Candidates(username, population, eligible)
	if s.limit > 0 && len(candidates) > s.limit {
		candidates = candidates[:s.limit]
	}

	cards := make([]models.UserCard, 0, len(candidates))
	for i := range candidates {
		cards = append(cards, candidates[i].Card())
	}
	return cards, nil
}

func (s *matchService) RecordInterest(ctx context.Context, username, target string, interested bool) (bool, error) {
	if username == target {
		return false, ErrSelfMatch
	}
	if _, err := s.userRepo.GetByUsername(ctx, target); errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrTargetNotFound
	} else if err != nil {
		return false, fmt.Errorf("failed to look up target %s: %w", target, err)
	}

	record := &models.Interest{
		UserMatching:     username,
		UserBeingMatched: target,
		Interest:         interested,
	}
	created, err := s.interestRepo.Upsert(ctx, record)
	if err != nil {
		return false, fmt.Errorf("failed to record decision: %w", err)
	}
	if !created {
		// The pair was already decided in this direction; decisions never
		// flip, so only the stored record counts.
		stored, err := s.interestRepo.GetPair(ctx, username, target)
		if err != nil {
			return false, fmt.Errorf("failed to read stored decision: %w", err)
		}
		if stored == nil || !stored.Interest {
			return false, nil
		}
		interested = stored.Interest
	}

	if !interested {
		return false, nil
	}

	reciprocal, err := s.interestRepo.GetPair(ctx, target, username)
	if err != nil {
		return false, fmt.Errorf("failed to check reciprocal decision: %w", err)
	}
	if reciprocal == nil || !reciprocal.Interest {
		return false, nil
	}

	// Mutual match. The event only feeds notifications; failing to publish
	// never rolls back the decision.
	if created {
		s.publishMatchEvent(ctx, username, target)
	}
	return true, nil
}

func (s *matchService) publishMatchEvent(ctx context.Context, userA, userB string) {
	if s.producer == nil {
		return
	}
	event := MatchEvent{UserA: userA, UserB: userB, OccurredAt: time.Now().UTC()}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal match event for %s/%s: %v", userA, userB, err)
		return
	}
	key := []byte(userA + ":" + userB)
	if err := s.producer.SendMessage(ctx, s.kafkaCfg.MatchEventTopic, key, payload); err != nil {
		log.Printf("Failed to publish match event for %s/%s: %v", userA, userB, err)
	}
}

func (s *matchService) PotentialMatches(ctx context.Context, sessionUser, username string) ([]models.UserCard, error) {
	if sessionUser != username {
		return nil, ErrNotAuthorized
	}
	interests, err := s.interestRepo.ListInvolving(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load match records: %w", err)
	}
	return s.cardsFor(ctx, matching.PotentialMatches(username, interests))
}

func (s *matchService) ConfirmedMatches(ctx context.Context, sessionUser, username string) ([]models.UserCard, error) {
	if sessionUser != username {
		return nil, ErrNotAuthorized
	}
	interests, err := s.interestRepo.ListInvolving(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load match records: %w", err)
	}
	return s.cardsFor(ctx, matching.ConfirmedMatches(username, interests))
}

func (s *matchService) cardsFor(ctx context.Context, names map[string]struct{}) ([]models.UserCard, error) {
	if len(names) == 0 {
		return []models.UserCard{}, nil
	}
	usernames := make([]string, 0, len(names))
	for name := range names {
		usernames = append(usernames, name)
	}
	sort.Strings(usernames)

	users, err := s.userRepo.GetManyByUsernames(ctx, usernames)
	if err != nil {
		return nil, fmt.Errorf("failed to load matched users: %w", err)
	}
	cards := make([]models.UserCard, 0, len(users))
	for i := range users {
		cards = append(cards, users[i].Card())
	}
	return cards, nil
}
