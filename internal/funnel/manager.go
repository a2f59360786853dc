package funnel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wildcabins/internal/catalog"
	"wildcabins/internal/roi"
	"wildcabins/internal/storage"
)

// ErrStepOrder is returned when a funnel action is attempted before the
// session has reached the step that unlocks it.
var ErrStepOrder = errors.New("funnel: action not allowed at current step")

var stepRank = map[string]int{
	StepCabinSelection:  0,
	StepExtrasSelection: 1,
	StepPaymentMethod:   2,
	StepContactDetails:  3,
	StepReview:          4,
	StepReserved:        5,
}

// ReservationStore persists completed reservations.
type ReservationStore interface {
	SaveReservation(ctx context.Context, r storage.Reservation) error
}

// Quote is the review-screen projection: the current ROI result and the
// milestone schedule derived from it. Recomputed from session inputs on
// every call.
type Quote struct {
	ROI      roi.Result `json:"roi"`
	Schedule Schedule   `json:"schedule"`
}

// Manager drives a session through the reservation funnel.
type Manager struct {
	states *StateStorage
	cat    *catalog.Catalog
	store  ReservationStore
	logger *zap.Logger
}

func NewManager(states *StateStorage, cat *catalog.Catalog, store ReservationStore, logger *zap.Logger) *Manager {
	return &Manager{
		states: states,
		cat:    cat,
		store:  store,
		logger: logger,
	}
}

// Start opens a new funnel session at the cabin-selection step.
func (m *Manager) Start(ctx context.Context) (State, error) {
	state := State{
		SessionID: uuid.NewString(),
		Step:      StepCabinSelection,
	}
	if err := m.states.Save(ctx, state); err != nil {
		return State{}, fmt.Errorf("funnel.Start: %w", err)
	}
	m.logger.Info("Funnel session started", zap.String("session_id", state.SessionID))
	return state, nil
}

// Get returns the current session state.
func (m *Manager) Get(ctx context.Context, sessionID string) (State, error) {
	return m.states.Get(ctx, sessionID)
}

// SelectCabin records the cabin choice and the calculator assumptions.
// A zero nightlyRate falls back to the catalog default at compute time.
func (m *Manager) SelectCabin(ctx context.Context, sessionID string, t catalog.CabinType, occupancyPercent, nightlyRate float64) (State, error) {
	const operation = "funnel.SelectCabin"

	state, err := m.states.Get(ctx, sessionID)
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", operation, err)
	}
	if state.Step == StepReserved {
		return State{}, fmt.Errorf("%s: session already reserved: %w", operation, ErrStepOrder)
	}

	// Run the engine once so invalid inputs are rejected before they are
	// stored in the session.
	if _, err := roi.Compute(m.cat, roi.Inputs{
		CabinType:        t,
		OccupancyPercent: occupancyPercent,
		NightlyRate:      nightlyRate,
	}); err != nil {
		return State{}, fmt.Errorf("%s: %w", operation, err)
	}

	state.CabinType = t
	state.OccupancyPercent = occupancyPercent
	state.NightlyRate = nightlyRate
	// Changing the cabin resets the extras, which are priced per cabin.
	state.ExtraIDs = nil
	state.Step = StepExtrasSelection

	if err := m.states.Save(ctx, state); err != nil {
		return State{}, fmt.Errorf("%s: %w", operation, err)
	}
	return state, nil
}

// SelectExtras replaces the set of selected extras.
func (m *Manager) SelectExtras(ctx context.Context, sessionID string, extraIDs []string) (State, error) {
	const operation = "funnel.SelectExtras"

	state, err := m.requireStep(ctx, sessionID, StepExtrasSelection)
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", operation, err)
	}

	for _, id := range extraIDs {
		if _, err := m.cat.Extra(state.CabinType, id); err != nil {
			return State{}, fmt.Errorf("%s: %w", operation, err)
		}
	}

	state.ExtraIDs = extraIDs
	state.Step = StepPaymentMethod

	if err := m.states.Save(ctx, state); err != nil {
		return State{}, fmt.Errorf("%s: %w", operation, err)
	}
	return state, nil
}

// SetPaymentMethod records the funding choice. accountBalance is the
// externally computed retained-earnings balance; it is only consulted
// when method is "account".
func (m *Manager) SetPaymentMethod(ctx context.Context, sessionID string, method PaymentMethod, accountBalance float64) (State, error) {
	const operation = "funnel.SetPaymentMethod"

	state, err := m.requireStep(ctx, sessionID, StepPaymentMethod)
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", operation, err)
	}

	if method != PaymentExternal && method != PaymentAccount {
		return State{}, &catalog.ValidationError{
			Field:  "payment_method",
			Reason: "must be \"external\" or \"account\", got \"" + string(method) + "\"",
		}
	}
	if accountBalance < 0 {
		return State{}, &catalog.ValidationError{
			Field:  "account_balance",
			Reason: fmt.Sprintf("must not be negative, got %v", accountBalance),
		}
	}

	state.PaymentMethod = method
	state.AccountBalance = accountBalance
	state.Step = StepContactDetails

	if err := m.states.Save(ctx, state); err != nil {
		return State{}, fmt.Errorf("%s: %w", operation, err)
	}
	return state, nil
}

// SetContact records buyer details and moves the session to review.
func (m *Manager) SetContact(ctx context.Context, sessionID string, investorID string, contact Contact) (State, error) {
	const operation = "funnel.SetContact"

	state, err := m.requireStep(ctx, sessionID, StepContactDetails)
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", operation, err)
	}

	if !IsValidEmail(contact.Email) {
		return State{}, &catalog.ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if contact.Phone != "" {
		if !IsValidPhoneNumber(contact.Phone) {
			return State{}, &catalog.ValidationError{Field: "phone", Reason: "must be a dialable phone number"}
		}
		contact.Phone = NormalizePhoneNumber(contact.Phone)
	}

	state.InvestorID = investorID
	state.Contact = contact
	state.Step = StepReview

	if err := m.states.Save(ctx, state); err != nil {
		return State{}, fmt.Errorf("%s: %w", operation, err)
	}
	return state, nil
}

// CurrentQuote recomputes the ROI projection and payment schedule from
// the session's current inputs.
func (m *Manager) CurrentQuote(ctx context.Context, sessionID string) (Quote, error) {
	const operation = "funnel.CurrentQuote"

	state, err := m.requireStep(ctx, sessionID, StepExtrasSelection)
	if err != nil {
		return Quote{}, fmt.Errorf("%s: %w", operation, err)
	}
	return m.quote(state)
}

func (m *Manager) quote(state State) (Quote, error) {
	result, err := roi.Compute(m.cat, roi.Inputs{
		CabinType:        state.CabinType,
		OccupancyPercent: state.OccupancyPercent,
		NightlyRate:      state.NightlyRate,
		ExtraIDs:         state.ExtraIDs,
	})
	if err != nil {
		return Quote{}, err
	}

	method := state.PaymentMethod
	if method == "" {
		method = PaymentExternal
	}
	schedule, err := ComputeSchedule(result.TotalInvestment, state.AccountBalance, method)
	if err != nil {
		return Quote{}, err
	}

	return Quote{ROI: result, Schedule: schedule}, nil
}

// Reserve finalizes the session: the quote is recomputed from current
// inputs one last time and persisted as a reservation.
func (m *Manager) Reserve(ctx context.Context, sessionID string) (storage.Reservation, error) {
	const operation = "funnel.Reserve"

	state, err := m.requireStep(ctx, sessionID, StepReview)
	if err != nil {
		return storage.Reservation{}, fmt.Errorf("%s: %w", operation, err)
	}

	quote, err := m.quote(state)
	if err != nil {
		return storage.Reservation{}, fmt.Errorf("%s: %w", operation, err)
	}

	reservation := storage.Reservation{
		ID:              uuid.NewString(),
		SessionID:       state.SessionID,
		InvestorID:      state.InvestorID,
		CabinType:       string(state.CabinType),
		ExtraIDs:        state.ExtraIDs,
		OccupancyPct:    state.OccupancyPercent,
		NightlyRate:     state.NightlyRate,
		ContactName:     state.Contact.Name,
		ContactEmail:    state.Contact.Email,
		ContactPhone:    state.Contact.Phone,
		PaymentMethod:   string(state.PaymentMethod),
		TotalInvestment: quote.ROI.TotalInvestment,
		ExtrasCost:      quote.ROI.ExtrasCost,
		CreditApplied:   quote.Schedule.CreditApplied,
		HoldingDeposit:  quote.Schedule.HoldingDeposit,
		DepositDue:      quote.Schedule.DepositDueAtSigning,
		ProgressDue:     quote.Schedule.ProgressPayment,
		FinalDue:        quote.Schedule.FinalPayment,
		AmountDueToday:  quote.Schedule.AmountDueToday,
		Status:          storage.StatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	if err := m.store.SaveReservation(ctx, reservation); err != nil {
		return storage.Reservation{}, fmt.Errorf("%s: %w", operation, err)
	}

	state.Step = StepReserved
	if err := m.states.Save(ctx, state); err != nil {
		return storage.Reservation{}, fmt.Errorf("%s: %w", operation, err)
	}

	m.logger.Info("Reservation created",
		zap.String("reservation_id", reservation.ID),
		zap.String("session_id", state.SessionID),
		zap.String("cabin_type", reservation.CabinType),
		zap.Float64("amount_due_today", reservation.AmountDueToday))

	return reservation, nil
}

// requireStep loads the session and checks it has reached min. Sessions
// that are already reserved are frozen.
func (m *Manager) requireStep(ctx context.Context, sessionID, min string) (State, error) {
	state, err := m.states.Get(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	if state.Step == StepReserved {
		return State{}, fmt.Errorf("session already reserved: %w", ErrStepOrder)
	}
	if stepRank[state.Step] < stepRank[min] {
		return State{}, fmt.Errorf("step %q has not been reached from %q: %w", min, state.Step, ErrStepOrder)
	}
	return state, nil
}
