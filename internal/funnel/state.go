package funnel

import (
	"context"
	"fmt"
	"time"

	"wildcabins/internal/catalog"
	"wildcabins/pkg/redis"
)

// FUNNEL SESSION STATE IN REDIS

// Funnel steps, in order. A session only moves forward through these,
// except that earlier selections may be revised before reserving.
const (
	StepCabinSelection  = "cabin_selection"
	StepExtrasSelection = "extras_selection"
	StepPaymentMethod   = "payment_method"
	StepContactDetails  = "contact_details"
	StepReview          = "review"
	StepReserved        = "reserved"
)

// Contact holds the buyer details collected near the end of the funnel.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// State is the per-session funnel context. It holds raw inputs only;
// every derived figure (ROI, schedule) is recomputed from these on
// demand and never stored.
type State struct {
	SessionID        string            `json:"session_id"`
	Step             string            `json:"step"`
	CabinType        catalog.CabinType `json:"cabin_type,omitempty"`
	OccupancyPercent float64           `json:"occupancy_percent,omitempty"`
	NightlyRate      float64           `json:"nightly_rate,omitempty"`
	ExtraIDs         []string          `json:"extra_ids,omitempty"`
	PaymentMethod    PaymentMethod     `json:"payment_method,omitempty"`
	AccountBalance   float64           `json:"account_balance,omitempty"`
	InvestorID       string            `json:"investor_id,omitempty"`
	Contact          Contact           `json:"contact,omitempty"`
}

// StateStorage persists funnel sessions in Redis with a TTL.
type StateStorage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStateStorage(redisClient *redis.Client, ttl time.Duration) *StateStorage {
	return &StateStorage{
		redis: redisClient,
		ttl:   ttl,
	}
}

func (s *StateStorage) Save(ctx context.Context, state State) error {
	if err := s.redis.SaveJSON(ctx, sessionKey(state.SessionID), state, s.ttl); err != nil {
		return fmt.Errorf("failed to save funnel state: %w", err)
	}
	return nil
}

func (s *StateStorage) Get(ctx context.Context, sessionID string) (State, error) {
	var state State
	if err := s.redis.GetJSON(ctx, sessionKey(sessionID), &state); err != nil {
		return State{}, fmt.Errorf("failed to get funnel state: %w", err)
	}
	return state, nil
}

func (s *StateStorage) Clear(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, sessionKey(sessionID)); err != nil {
		return fmt.Errorf("failed to clear funnel state: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("funnel:%s", sessionID)
}
