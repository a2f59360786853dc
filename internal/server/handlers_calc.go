package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wildcabins/internal/catalog"
	"wildcabins/internal/funnel"
	"wildcabins/internal/roi"
)

func (s *Server) handleCabins(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.cat.Cabins())
}

func (s *Server) handleExtras(w http.ResponseWriter, r *http.Request) {
	t := catalog.CabinType(chi.URLParam(r, "type"))
	extras, err := s.cat.ExtrasFor(t)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, extras)
}

type roiResponse struct {
	roi.Result
	Display displayFigures `json:"display"`
}

type displayFigures struct {
	DynamicNightlyRate string `json:"dynamic_nightly_rate"`
	GrossRevenue       string `json:"gross_revenue"`
	NetIncome          string `json:"net_income"`
	TotalInvestment    string `json:"total_investment"`
	ROI                string `json:"roi"`
}

// Raw engine outputs stay unrounded; the display block is where currency
// rounding happens, and nowhere earlier.
func displayFor(result roi.Result) displayFigures {
	return displayFigures{
		DynamicNightlyRate: formatDollars(result.DynamicNightlyRate),
		GrossRevenue:       formatDollars(result.GrossRevenue),
		NetIncome:          formatDollars(result.NetIncome),
		TotalInvestment:    formatDollars(result.TotalInvestment),
		ROI:                formatPercent(result.ROI),
	}
}

func (s *Server) handleROI(w http.ResponseWriter, r *http.Request) {
	var in roi.Inputs
	if err := decodeBody(r, &in); err != nil {
		s.respondError(w, err)
		return
	}

	result, err := roi.Compute(s.cat, in)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, roiResponse{Result: result, Display: displayFor(result)})
}

type extraImpactRequest struct {
	roi.Inputs
	ExtraID string `json:"extra_id"`
}

func (s *Server) handleExtraImpact(w http.ResponseWriter, r *http.Request) {
	var req extraImpactRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	delta, err := roi.ExtraImpact(s.cat, req.Inputs, req.ExtraID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, delta)
}

type scheduleRequest struct {
	TotalInvestment float64              `json:"total_investment"`
	AccountBalance  float64              `json:"account_balance"`
	PaymentMethod   funnel.PaymentMethod `json:"payment_method"`
}

type scheduleResponse struct {
	funnel.Schedule
	Display scheduleDisplay `json:"display"`
}

type scheduleDisplay struct {
	HoldingDeposit      string `json:"holding_deposit"`
	DepositDueAtSigning string `json:"deposit_due_at_signing"`
	ProgressPayment     string `json:"progress_payment"`
	FinalPayment        string `json:"final_payment"`
	AmountDueToday      string `json:"amount_due_today"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	schedule, err := funnel.ComputeSchedule(req.TotalInvestment, req.AccountBalance, req.PaymentMethod)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, scheduleResponse{
		Schedule: schedule,
		Display: scheduleDisplay{
			HoldingDeposit:      formatDollars(schedule.HoldingDeposit),
			DepositDueAtSigning: formatDollars(schedule.DepositDueAtSigning),
			ProgressPayment:     formatDollars(schedule.ProgressPayment),
			FinalPayment:        formatDollars(schedule.FinalPayment),
			AmountDueToday:      formatDollars(schedule.AmountDueToday),
		},
	})
}
