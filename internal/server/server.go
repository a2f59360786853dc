package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wildcabins/internal/catalog"
	"wildcabins/internal/config"
	"wildcabins/internal/funnel"
	"wildcabins/internal/storage"
	"wildcabins/pkg/ledger"
	"wildcabins/pkg/redis"
)

// Store is the slice of reservation storage the HTTP layer needs.
type Store interface {
	GetReservation(ctx context.Context, id string) (*storage.Reservation, error)
	ReservationsForInvestor(ctx context.Context, investorID string) ([]storage.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id, status string) error
	ExportReservationsToExcel(ctx context.Context, filename string) (string, error)
}

// LedgerClient fetches investor accounting figures from the external
// accounting backend.
type LedgerClient interface {
	InvestorIncome(ctx context.Context, investorID string) (ledger.Income, error)
}

type Server struct {
	cfg    config.HTTP
	cat    *catalog.Catalog
	funnel *funnel.Manager
	store  Store
	ledger LedgerClient
	logger *zap.Logger
}

func New(cfg config.HTTP, cat *catalog.Catalog, fm *funnel.Manager, store Store, ledgerClient LedgerClient, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		cat:    cat,
		funnel: fm,
		store:  store,
		ledger: ledgerClient,
		logger: logger,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/api/cabins", s.handleCabins)
	r.Get("/api/cabins/{type}/extras", s.handleExtras)
	r.Post("/api/roi", s.handleROI)
	r.Post("/api/roi/extra-impact", s.handleExtraImpact)
	r.Post("/api/schedule", s.handleSchedule)

	r.Post("/api/funnel", s.handleFunnelStart)
	r.Get("/api/funnel/{id}", s.handleFunnelGet)
	r.Post("/api/funnel/{id}/cabin", s.handleFunnelCabin)
	r.Post("/api/funnel/{id}/extras", s.handleFunnelExtras)
	r.Post("/api/funnel/{id}/payment-method", s.handleFunnelPaymentMethod)
	r.Post("/api/funnel/{id}/contact", s.handleFunnelContact)
	r.Get("/api/funnel/{id}/quote", s.handleFunnelQuote)
	r.Post("/api/funnel/{id}/reserve", s.handleFunnelReserve)

	r.Get("/api/portal/{investorID}", s.handlePortal)
	r.Get("/api/reservations/export", s.handleExport)

	r.Post("/webhooks/payments", s.handlePaymentWebhook)

	return r
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP statuses: validation → 400,
// missing sessions/rows → 404, step-order violations → 409.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case catalog.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, redis.Nil), errors.Is(err, sql.ErrNoRows):
		status = http.StatusNotFound
	case errors.Is(err, funnel.ErrStepOrder):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
		s.respondJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	s.respondJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &catalog.ValidationError{Field: "body", Reason: "invalid JSON: " + err.Error()}
	}
	return nil
}
