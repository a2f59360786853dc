package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"wildcabins/internal/config"
	"wildcabins/pkg/redis"
)

// Reservation statuses, in funnel order. Cancellation can happen from
// any non-settled status.
const (
	StatusPending       = "pending"
	StatusDepositPaid   = "deposit_paid"
	StatusUnderContract = "under_contract"
	StatusSettled       = "settled"
	StatusCancelled     = "cancelled"
)

// Reservation is a completed funnel session persisted for the back
// office and the investor portal. Monetary fields mirror the payment
// schedule at the time of reservation.
type Reservation struct {
	ID              string    `db:"id" json:"id"`
	SessionID       string    `db:"session_id" json:"session_id"`
	InvestorID      string    `db:"investor_id" json:"investor_id"`
	CabinType       string    `db:"cabin_type" json:"cabin_type"`
	ExtraIDs        []string  `db:"-" json:"extra_ids"`
	OccupancyPct    float64   `db:"occupancy_pct" json:"occupancy_pct"`
	NightlyRate     float64   `db:"nightly_rate" json:"nightly_rate"`
	ContactName     string    `db:"contact_name" json:"contact_name"`
	ContactEmail    string    `db:"contact_email" json:"contact_email"`
	ContactPhone    string    `db:"contact_phone" json:"contact_phone"`
	PaymentMethod   string    `db:"payment_method" json:"payment_method"`
	TotalInvestment float64   `db:"total_investment" json:"total_investment"`
	ExtrasCost      float64   `db:"extras_cost" json:"extras_cost"`
	CreditApplied   float64   `db:"credit_applied" json:"credit_applied"`
	HoldingDeposit  float64   `db:"holding_deposit" json:"holding_deposit"`
	DepositDue      float64   `db:"deposit_due" json:"deposit_due"`
	ProgressDue     float64   `db:"progress_due" json:"progress_due"`
	FinalDue        float64   `db:"final_due" json:"final_due"`
	AmountDueToday  float64   `db:"amount_due_today" json:"amount_due_today"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type PostgresStorage struct {
	db     *sqlx.DB
	redis  *redis.Client
	logger *zap.Logger
}

func NewPostgresStorage(ctx context.Context, cfg config.Database, redisClient *redis.Client, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		retryPolicy,
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}, nil
}

// DB exposes the underlying connection, e.g. for migrations.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

// NewWithDB wraps an existing connection; used by tests.
func NewWithDB(db *sqlx.DB, redisClient *redis.Client, logger *zap.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, redis: redisClient, logger: logger}
}

func (s *PostgresStorage) SaveReservation(ctx context.Context, r Reservation) error {
	const query = `
        INSERT INTO reservations (
            id, session_id, investor_id, cabin_type, extra_ids,
            occupancy_pct, nightly_rate, contact_name, contact_email,
            contact_phone, payment_method, total_investment, extras_cost,
            credit_applied, holding_deposit, deposit_due, progress_due,
            final_due, amount_due_today, status, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
                  $14, $15, $16, $17, $18, $19, $20, $21)
    `

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.SessionID,
		r.InvestorID,
		r.CabinType,
		pq.Array(r.ExtraIDs),
		r.OccupancyPct,
		r.NightlyRate,
		r.ContactName,
		r.ContactEmail,
		r.ContactPhone,
		r.PaymentMethod,
		r.TotalInvestment,
		r.ExtrasCost,
		r.CreditApplied,
		r.HoldingDeposit,
		r.DepositDue,
		r.ProgressDue,
		r.FinalDue,
		r.AmountDueToday,
		r.Status,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}

	s.invalidateInvestor(ctx, r.InvestorID)
	return nil
}

func (s *PostgresStorage) GetReservation(ctx context.Context, id string) (*Reservation, error) {
	const query = reservationColumns + ` WHERE id = $1`

	row := s.db.QueryRowxContext(ctx, query, id)
	r, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

// ReservationsForInvestor returns an investor's reservations, newest
// first. Results are cached in Redis and invalidated on writes.
func (s *PostgresStorage) ReservationsForInvestor(ctx context.Context, investorID string) ([]Reservation, error) {
	cacheKey := investorCacheKey(investorID)

	// Try Redis first
	if cached, err := s.redis.Get(ctx, cacheKey); err == nil {
		var reservations []Reservation
		if err := json.Unmarshal(cached, &reservations); err == nil {
			return reservations, nil
		}
	}

	const query = reservationColumns + ` WHERE investor_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryxContext(ctx, query, investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservations: %w", err)
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reservations: %w", err)
	}

	// Cache the result
	if data, err := json.Marshal(reservations); err == nil {
		_ = s.redis.Set(ctx, cacheKey, data, time.Hour)
	}

	return reservations, nil
}

func (s *PostgresStorage) ListReservations(ctx context.Context) ([]Reservation, error) {
	const query = reservationColumns + ` ORDER BY created_at DESC`

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reservations: %w", err)
	}
	return reservations, nil
}

func (s *PostgresStorage) UpdateReservationStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE reservations SET status = $2 WHERE id = $1 RETURNING investor_id`

	var investorID string
	err := s.db.QueryRowContext(ctx, query, id, status).Scan(&investorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("reservation not found: %w", err)
		}
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	s.logger.Info("Reservation status updated",
		zap.String("reservation_id", id),
		zap.String("status", status))

	s.invalidateInvestor(ctx, investorID)
	return nil
}

func (s *PostgresStorage) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *PostgresStorage) invalidateInvestor(ctx context.Context, investorID string) {
	if investorID == "" {
		return
	}
	if err := s.redis.Del(ctx, investorCacheKey(investorID)); err != nil {
		s.logger.Warn("Failed to invalidate investor cache",
			zap.String("investor_id", investorID),
			zap.Error(err))
	}
}

func investorCacheKey(investorID string) string {
	return fmt.Sprintf("portal:%s", investorID)
}

const reservationColumns = `
        SELECT id, session_id, investor_id, cabin_type, extra_ids,
               occupancy_pct, nightly_rate, contact_name, contact_email,
               contact_phone, payment_method, total_investment, extras_cost,
               credit_applied, holding_deposit, deposit_due, progress_due,
               final_due, amount_due_today, status, created_at
        FROM reservations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*Reservation, error) {
	var r Reservation
	var extras pq.StringArray
	err := row.Scan(
		&r.ID,
		&r.SessionID,
		&r.InvestorID,
		&r.CabinType,
		&extras,
		&r.OccupancyPct,
		&r.NightlyRate,
		&r.ContactName,
		&r.ContactEmail,
		&r.ContactPhone,
		&r.PaymentMethod,
		&r.TotalInvestment,
		&r.ExtrasCost,
		&r.CreditApplied,
		&r.HoldingDeposit,
		&r.DepositDue,
		&r.ProgressDue,
		&r.FinalDue,
		&r.AmountDueToday,
		&r.Status,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ExtraIDs = extras
	return &r, nil
}
