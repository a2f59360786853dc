package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInvestorIncome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/investors/inv-42/income", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(Income{
			InvestorID:     "inv-42",
			LifetimeIncome: 41634.40,
			AccountBalance: 12490.32,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", 5*time.Second, zap.NewNop())

	income, err := client.InvestorIncome(context.Background(), "inv-42")
	require.NoError(t, err)
	assert.Equal(t, "inv-42", income.InvestorID)
	assert.InDelta(t, 41634.40, income.LifetimeIncome, 1e-9)
	assert.InDelta(t, 12490.32, income.AccountBalance, 1e-9)
}

func TestInvestorIncome_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", 5*time.Second, zap.NewNop())

	_, err := client.InvestorIncome(context.Background(), "inv-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status: 502")
}
