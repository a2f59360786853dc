package ledger

// ACCOUNTING BACKEND CLIENT

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client is a thin HTTP client to the external accounting backend that
// tracks rental income per investor. The backend owns the account-balance
// rule (30% of lifetime income); this client just fetches the numbers.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Income is an investor's accounting snapshot.
type Income struct {
	InvestorID     string  `json:"investor_id"`
	LifetimeIncome float64 `json:"lifetime_income"`
	AccountBalance float64 `json:"account_balance"`
}

func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// InvestorIncome fetches the lifetime income and available account
// balance for one investor.
func (c *Client) InvestorIncome(ctx context.Context, investorID string) (Income, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET",
		fmt.Sprintf("%s/api/investors/%s/income", c.baseURL, investorID),
		nil,
	)
	if err != nil {
		return Income{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Income{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Income{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var income Income
	if err := json.NewDecoder(resp.Body).Decode(&income); err != nil {
		return Income{}, fmt.Errorf("decode response: %w", err)
	}

	return income, nil
}
