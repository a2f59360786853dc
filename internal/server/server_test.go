package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wildcabins/internal/catalog"
	"wildcabins/internal/config"
	"wildcabins/internal/funnel"
	"wildcabins/internal/storage"
	"wildcabins/pkg/ledger"
	"wildcabins/pkg/redis"
)

var errNoRows = sql.ErrNoRows

type fakeStore struct {
	reservations map[string]*storage.Reservation
	statuses     map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reservations: make(map[string]*storage.Reservation),
		statuses:     make(map[string]string),
	}
}

func (f *fakeStore) SaveReservation(ctx context.Context, r storage.Reservation) error {
	f.reservations[r.ID] = &r
	return nil
}

func (f *fakeStore) GetReservation(ctx context.Context, id string) (*storage.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation not found: %w", errNoRows)
	}
	return r, nil
}

func (f *fakeStore) ReservationsForInvestor(ctx context.Context, investorID string) ([]storage.Reservation, error) {
	var out []storage.Reservation
	for _, r := range f.reservations {
		if r.InvestorID == investorID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateReservationStatus(ctx context.Context, id, status string) error {
	if _, ok := f.reservations[id]; !ok {
		return fmt.Errorf("reservation not found: %w", errNoRows)
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeStore) ExportReservationsToExcel(ctx context.Context, filename string) (string, error) {
	return "", fmt.Errorf("not supported in tests")
}

type fakeLedger struct {
	income ledger.Income
}

func (f *fakeLedger) InvestorIncome(ctx context.Context, investorID string) (ledger.Income, error) {
	income := f.income
	income.InvestorID = investorID
	return income, nil
}

func newTestServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.New(mr.Addr(), "", 0, time.Hour)
	t.Cleanup(redisClient.Close)

	cat := catalog.Default()
	store := newFakeStore()
	states := funnel.NewStateStorage(redisClient, time.Hour)
	manager := funnel.NewManager(states, cat, store, zap.NewNop())
	ledgerClient := &fakeLedger{income: ledger.Income{LifetimeIncome: 40000, AccountBalance: 12000}}

	return New(config.HTTP{Addr: ":0"}, cat, manager, store, ledgerClient, zap.NewNop()), store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleCabins(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/cabins", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cabins []catalog.Cabin
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cabins))
	assert.Len(t, cabins, 3)
}

func TestHandleExtras_SolarTier(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/cabins/3BR/extras", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var extras []catalog.Extra
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &extras))

	var solarPrice float64
	for _, ex := range extras {
		if ex.ID == catalog.ExtraSolar {
			solarPrice = ex.Price
		}
	}
	assert.Equal(t, 40000.0, solarPrice)
}

func TestHandleExtras_UnknownCabin(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/cabins/9BR/extras", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleROI(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/roi", map[string]any{
		"cabin_type":        "1BR",
		"occupancy_percent": 66,
		"nightly_rate":      160,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp roiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 38544, resp.GrossRevenue, 0.01)
	assert.InDelta(t, 20817.20, resp.NetIncome, 0.01)
	assert.Equal(t, "$38,544", resp.Display.GrossRevenue)
	assert.Equal(t, "$20,817", resp.Display.NetIncome)
	assert.Equal(t, "18.9%", resp.Display.ROI)
}

func TestHandleROI_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/roi", map[string]any{
		"cabin_type":        "1BR",
		"occupancy_percent": -5,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "occupancy_percent")
}

func TestHandleSchedule(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/schedule", map[string]any{
		"total_investment": 110000,
		"account_balance":  5000,
		"payment_method":   "account",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp scheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 31500, resp.DepositDueAtSigning, 1e-9)
	assert.InDelta(t, 42000, resp.FinalPayment, 1e-9)
	assert.Zero(t, resp.AmountDueToday)
	assert.Equal(t, "$31,500", resp.Display.DepositDueAtSigning)
}

func TestFunnelEndToEnd(t *testing.T) {
	srv, store := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/funnel", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var state funnel.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	id := state.SessionID
	require.NotEmpty(t, id)

	rec = doJSON(t, router, http.MethodPost, "/api/funnel/"+id+"/cabin", map[string]any{
		"cabin_type":        "1BR",
		"occupancy_percent": 66,
		"nightly_rate":      160,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/funnel/"+id+"/extras", map[string]any{
		"extra_ids": []string{"solar"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/funnel/"+id+"/payment-method", map[string]any{
		"payment_method":  "external",
		"account_balance": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/funnel/"+id+"/contact", map[string]any{
		"investor_id": "inv-7",
		"contact":     map[string]any{"name": "Sam", "email": "sam@example.com"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/funnel/"+id+"/quote", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var quote funnel.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 130000.0, quote.ROI.TotalInvestment)
	assert.Equal(t, 100.0, quote.Schedule.AmountDueToday)

	rec = doJSON(t, router, http.MethodPost, "/api/funnel/"+id+"/reserve", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var reservation storage.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reservation))
	assert.Len(t, store.reservations, 1)

	// Reserving twice conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/funnel/"+id+"/reserve", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFunnelUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/funnel/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePortal(t *testing.T) {
	srv, store := newTestServer(t)

	require.NoError(t, store.SaveReservation(context.Background(), storage.Reservation{
		ID:              "res-1",
		InvestorID:      "inv-7",
		CabinType:       "1BR",
		ExtraIDs:        []string{"solar"},
		OccupancyPct:    66,
		NightlyRate:     160,
		TotalInvestment: 130000,
		Status:          storage.StatusPending,
	}))

	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/portal/inv-7", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary portalSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 12000.0, summary.Income.AccountBalance)
	assert.Equal(t, "$12,000", summary.Display.AccountBalance)
	require.Len(t, summary.Reservations, 1)
	require.NotNil(t, summary.Reservations[0].Projection)
	assert.Greater(t, summary.Reservations[0].Projection.NetIncome, 0.0)
}

func TestPaymentWebhook(t *testing.T) {
	srv, store := newTestServer(t)
	router := srv.Router()

	require.NoError(t, store.SaveReservation(context.Background(), storage.Reservation{
		ID: "res-9", InvestorID: "inv-7", Status: storage.StatusPending,
	}))

	rec := doJSON(t, router, http.MethodPost, "/webhooks/payments", map[string]any{
		"event_type": "payment_succeeded",
		"data":       map[string]any{"reservation_id": "res-9", "milestone": "holding_deposit"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, storage.StatusDepositPaid, store.statuses["res-9"])

	rec = doJSON(t, router, http.MethodPost, "/webhooks/payments", map[string]any{
		"event_type": "payment_succeeded",
		"data":       map[string]any{"reservation_id": "res-9", "milestone": "final"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, storage.StatusSettled, store.statuses["res-9"])

	// Unknown events are acknowledged without a status change.
	rec = doJSON(t, router, http.MethodPost, "/webhooks/payments", map[string]any{
		"event_type": "invoice_created",
		"data":       map[string]any{"reservation_id": "res-9"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Missing reservation surfaces as 404.
	rec = doJSON(t, router, http.MethodPost, "/webhooks/payments", map[string]any{
		"event_type": "charge_refunded",
		"data":       map[string]any{"reservation_id": "ghost"},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
