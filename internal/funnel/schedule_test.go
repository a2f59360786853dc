package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildcabins/internal/catalog"
)

func TestComputeSchedule_External(t *testing.T) {
	schedule, err := ComputeSchedule(110000, 0, PaymentExternal)
	require.NoError(t, err)

	assert.Equal(t, 100.0, schedule.HoldingDeposit)
	assert.Equal(t, 100.0, schedule.AmountDueToday)
	assert.InDelta(t, 33000, schedule.DepositDueAtSigning, 1e-9)
	assert.InDelta(t, 33000, schedule.ProgressPayment, 1e-9)
	assert.InDelta(t, 44000, schedule.FinalPayment, 1e-9)
	assert.Zero(t, schedule.CreditApplied)
	assert.Equal(t, 110000.0, schedule.AdjustedBase)
}

func TestComputeSchedule_ExternalIgnoresBalance(t *testing.T) {
	// The account balance only participates when paying from the account.
	schedule, err := ComputeSchedule(110000, 50000, PaymentExternal)
	require.NoError(t, err)

	assert.Equal(t, 100.0, schedule.AmountDueToday)
	assert.Equal(t, 110000.0, schedule.AdjustedBase)
	assert.Zero(t, schedule.CreditApplied)
}

func TestComputeSchedule_AccountCreditExample(t *testing.T) {
	schedule, err := ComputeSchedule(110000, 5000, PaymentAccount)
	require.NoError(t, err)

	// The 5,000 is subtracted from the base exactly once; covering the
	// holding deposit does not consume it a second time.
	assert.Equal(t, 105000.0, schedule.AdjustedBase)
	assert.Equal(t, 5000.0, schedule.CreditApplied)
	assert.InDelta(t, 31500, schedule.DepositDueAtSigning, 1e-9)
	assert.InDelta(t, 31500, schedule.ProgressPayment, 1e-9)
	assert.InDelta(t, 42000, schedule.FinalPayment, 1e-9)
	assert.Equal(t, 0.0, schedule.AmountDueToday)
}

func TestComputeSchedule_AccountPartialDepositCover(t *testing.T) {
	schedule, err := ComputeSchedule(110000, 60, PaymentAccount)
	require.NoError(t, err)

	assert.Equal(t, 40.0, schedule.AmountDueToday)
	assert.Equal(t, 109940.0, schedule.AdjustedBase)
}

func TestComputeSchedule_BalanceExceedsPrice(t *testing.T) {
	schedule, err := ComputeSchedule(110000, 200000, PaymentAccount)
	require.NoError(t, err)

	assert.Zero(t, schedule.AdjustedBase)
	assert.Equal(t, 110000.0, schedule.CreditApplied)
	assert.Zero(t, schedule.DepositDueAtSigning)
	assert.Zero(t, schedule.ProgressPayment)
	assert.Zero(t, schedule.FinalPayment)
	assert.Zero(t, schedule.AmountDueToday)
}

func TestComputeSchedule_MilestonesSumToAdjustedBase(t *testing.T) {
	totals := []float64{0, 100, 1234.56, 50000, 110000, 131500, 225000, 999999.99}
	balances := []float64{0, 50, 100, 5000, 110000, 500000}

	for _, total := range totals {
		for _, balance := range balances {
			for _, method := range []PaymentMethod{PaymentExternal, PaymentAccount} {
				schedule, err := ComputeSchedule(total, balance, method)
				require.NoError(t, err)

				sum := schedule.DepositDueAtSigning + schedule.ProgressPayment + schedule.FinalPayment
				assert.InDelta(t, schedule.AdjustedBase, sum, 1e-9,
					"total=%v balance=%v method=%s", total, balance, method)
				assert.GreaterOrEqual(t, schedule.DepositDueAtSigning, 0.0)
				assert.GreaterOrEqual(t, schedule.ProgressPayment, 0.0)
				assert.GreaterOrEqual(t, schedule.FinalPayment, 0.0)
				assert.GreaterOrEqual(t, schedule.AmountDueToday, 0.0)
			}
		}
	}
}

func TestComputeSchedule_Validation(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		balance float64
		method  PaymentMethod
	}{
		{"negative total", -1, 0, PaymentExternal},
		{"negative balance", 100000, -1, PaymentAccount},
		{"unknown method", 100000, 0, "crypto"},
		{"empty method", 100000, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSchedule(tt.total, tt.balance, tt.method)
			require.Error(t, err)
			assert.True(t, catalog.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestComputeSchedule_Idempotent(t *testing.T) {
	first, err := ComputeSchedule(131500, 12345.67, PaymentAccount)
	require.NoError(t, err)
	second, err := ComputeSchedule(131500, 12345.67, PaymentAccount)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
