package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wildcabins/internal/catalog"
	"wildcabins/internal/roi"
	"wildcabins/internal/storage"
	"wildcabins/pkg/ledger"
)

// INVESTOR PORTAL

type portalReservation struct {
	storage.Reservation
	// Current projection recomputed from the reservation's inputs; never
	// read from a stored snapshot.
	Projection *roi.Result `json:"projection,omitempty"`
}

type portalSummary struct {
	Income       ledger.Income       `json:"income"`
	Reservations []portalReservation `json:"reservations"`
	Display      portalDisplay       `json:"display"`
}

type portalDisplay struct {
	LifetimeIncome string `json:"lifetime_income"`
	AccountBalance string `json:"account_balance"`
}

func (s *Server) handlePortal(w http.ResponseWriter, r *http.Request) {
	investorID := chi.URLParam(r, "investorID")

	income, err := s.ledger.InvestorIncome(r.Context(), investorID)
	if err != nil {
		s.respondError(w, fmt.Errorf("fetch investor income: %w", err))
		return
	}

	reservations, err := s.store.ReservationsForInvestor(r.Context(), investorID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]portalReservation, 0, len(reservations))
	for _, res := range reservations {
		pr := portalReservation{Reservation: res}
		projection, err := roi.Compute(s.cat, roi.Inputs{
			CabinType:        catalog.CabinType(res.CabinType),
			OccupancyPercent: res.OccupancyPct,
			NightlyRate:      res.NightlyRate,
			ExtraIDs:         res.ExtraIDs,
		})
		if err != nil {
			// A reservation that no longer resolves against the catalog is
			// shown without a projection rather than failing the page.
			s.logger.Warn("Failed to recompute reservation projection",
				zap.String("reservation_id", res.ID),
				zap.Error(err))
		} else {
			pr.Projection = &projection
		}
		out = append(out, pr)
	}

	s.respondJSON(w, http.StatusOK, portalSummary{
		Income:       income,
		Reservations: out,
		Display: portalDisplay{
			LifetimeIncome: formatDollars(income.LifetimeIncome),
			AccountBalance: formatDollars(income.AccountBalance),
		},
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("reservations_%s", time.Now().UTC().Format("20060102_1504"))

	path, err := s.store.ExportReservationsToExcel(r.Context(), filename)
	if err != nil {
		s.respondError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", filename))
	http.ServeFile(w, r, path)
}
