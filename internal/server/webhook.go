package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"wildcabins/internal/storage"
)

// PAYMENT PROVIDER WEBHOOK

type paymentEvent struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

type paymentEventData struct {
	ReservationID string `json:"reservation_id"`
	Milestone     string `json:"milestone"`
}

// Milestone names the provider reports against a reservation.
const (
	milestoneHolding  = "holding_deposit"
	milestoneDeposit  = "deposit"
	milestoneProgress = "progress"
	milestoneFinal    = "final"
)

// handlePaymentWebhook advances reservation status as the provider
// confirms milestone payments. Charges are captured by the provider;
// this endpoint only records the outcome.
func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var event paymentEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var data paymentEventData
	if err := json.Unmarshal(event.Data, &data); err != nil || data.ReservationID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var status string
	switch event.EventType {
	case "payment_succeeded":
		switch data.Milestone {
		case milestoneHolding:
			status = storage.StatusDepositPaid
		case milestoneDeposit, milestoneProgress:
			status = storage.StatusUnderContract
		case milestoneFinal:
			status = storage.StatusSettled
		}
	case "charge_refunded":
		status = storage.StatusCancelled
	case "payment_failed":
		s.logger.Warn("Payment failed",
			zap.String("reservation_id", data.ReservationID),
			zap.String("milestone", data.Milestone))
	}

	if status == "" {
		// Unknown events are acknowledged so the provider stops retrying.
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.store.UpdateReservationStatus(r.Context(), data.ReservationID, status); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.Info("Payment event processed",
		zap.String("event_type", event.EventType),
		zap.String("reservation_id", data.ReservationID),
		zap.String("status", status))

	w.WriteHeader(http.StatusOK)
}
