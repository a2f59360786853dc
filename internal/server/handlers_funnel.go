package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wildcabins/internal/catalog"
	"wildcabins/internal/funnel"
)

func (s *Server) handleFunnelStart(w http.ResponseWriter, r *http.Request) {
	state, err := s.funnel.Start(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, state)
}

func (s *Server) handleFunnelGet(w http.ResponseWriter, r *http.Request) {
	state, err := s.funnel.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

type funnelCabinRequest struct {
	CabinType        catalog.CabinType `json:"cabin_type"`
	OccupancyPercent float64           `json:"occupancy_percent"`
	NightlyRate      float64           `json:"nightly_rate"`
}

func (s *Server) handleFunnelCabin(w http.ResponseWriter, r *http.Request) {
	var req funnelCabinRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	state, err := s.funnel.SelectCabin(r.Context(), chi.URLParam(r, "id"),
		req.CabinType, req.OccupancyPercent, req.NightlyRate)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

type funnelExtrasRequest struct {
	ExtraIDs []string `json:"extra_ids"`
}

func (s *Server) handleFunnelExtras(w http.ResponseWriter, r *http.Request) {
	var req funnelExtrasRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	state, err := s.funnel.SelectExtras(r.Context(), chi.URLParam(r, "id"), req.ExtraIDs)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

type funnelPaymentRequest struct {
	PaymentMethod  funnel.PaymentMethod `json:"payment_method"`
	AccountBalance float64              `json:"account_balance"`
}

func (s *Server) handleFunnelPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req funnelPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	state, err := s.funnel.SetPaymentMethod(r.Context(), chi.URLParam(r, "id"),
		req.PaymentMethod, req.AccountBalance)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

type funnelContactRequest struct {
	InvestorID string         `json:"investor_id"`
	Contact    funnel.Contact `json:"contact"`
}

func (s *Server) handleFunnelContact(w http.ResponseWriter, r *http.Request) {
	var req funnelContactRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	state, err := s.funnel.SetContact(r.Context(), chi.URLParam(r, "id"),
		req.InvestorID, req.Contact)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleFunnelQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := s.funnel.CurrentQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, quote)
}

func (s *Server) handleFunnelReserve(w http.ResponseWriter, r *http.Request) {
	reservation, err := s.funnel.Reserve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, reservation)
}
