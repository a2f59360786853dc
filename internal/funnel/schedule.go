package funnel

import (
	"fmt"
	"math"

	"wildcabins/internal/catalog"
)

// PaymentMethod selects how the buyer funds the purchase.
type PaymentMethod string

const (
	// PaymentExternal is a card or bank transfer through the payment provider.
	PaymentExternal PaymentMethod = "external"
	// PaymentAccount draws on the buyer's retained-earnings account balance.
	PaymentAccount PaymentMethod = "account"
)

// HoldingDeposit is the flat amount due immediately to reserve a cabin.
// It is not part of the percentage milestone schedule.
const HoldingDeposit = 100.0

const (
	depositRate  = 0.30
	progressRate = 0.30
)

// Schedule is the milestone payment breakdown for one purchase.
// All values are raw, unrounded dollars.
type Schedule struct {
	HoldingDeposit      float64 `json:"holding_deposit"`
	DepositDueAtSigning float64 `json:"deposit_due_at_signing"`
	ProgressPayment     float64 `json:"progress_payment"`
	FinalPayment        float64 `json:"final_payment"`
	AmountDueToday      float64 `json:"amount_due_today"`
	CreditApplied       float64 `json:"credit_applied"`
	AdjustedBase        float64 `json:"adjusted_base"`
}

// ComputeSchedule derives the milestone payments for a purchase of
// totalInvestment (cabin price plus extras; extras are not milestoned
// separately). When paying from the account, the balance is applied to
// the purchase price exactly once, and the 30/30/40 split is taken over
// the reduced base. Pure and deterministic.
func ComputeSchedule(totalInvestment, accountBalance float64, method PaymentMethod) (Schedule, error) {
	if totalInvestment < 0 {
		return Schedule{}, &catalog.ValidationError{
			Field:  "total_investment",
			Reason: fmt.Sprintf("must not be negative, got %v", totalInvestment),
		}
	}
	if accountBalance < 0 {
		return Schedule{}, &catalog.ValidationError{
			Field:  "account_balance",
			Reason: fmt.Sprintf("must not be negative, got %v", accountBalance),
		}
	}
	if method != PaymentExternal && method != PaymentAccount {
		return Schedule{}, &catalog.ValidationError{
			Field:  "payment_method",
			Reason: "must be \"external\" or \"account\", got \"" + string(method) + "\"",
		}
	}

	adjustedBase := totalInvestment
	var credit float64
	if method == PaymentAccount {
		credit = math.Min(accountBalance, totalInvestment)
		adjustedBase = totalInvestment - credit
	}

	deposit := adjustedBase * depositRate
	progress := adjustedBase * progressRate
	// The final milestone is the remainder, so the three milestones sum
	// to adjustedBase exactly rather than accumulating rounding drift.
	final := adjustedBase - deposit - progress

	dueToday := HoldingDeposit
	if method == PaymentAccount {
		dueToday = HoldingDeposit - math.Min(accountBalance, HoldingDeposit)
	}

	return Schedule{
		HoldingDeposit:      HoldingDeposit,
		DepositDueAtSigning: deposit,
		ProgressPayment:     progress,
		FinalPayment:        final,
		AmountDueToday:      dueToday,
		CreditApplied:       credit,
		AdjustedBase:        adjustedBase,
	}, nil
}
