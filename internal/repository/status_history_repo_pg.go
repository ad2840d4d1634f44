package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusHistoryRepository is the read model of resolved status requests. It is
// fed from the flight.status topic and never consulted by the consensus core.
type StatusHistoryRepository interface {
	EnsureSchema(ctx context.Context) error
	Record(ctx context.Context, res domain.StatusResolution) error
	ListByFlight(ctx context.Context, key domain.FlightKey) ([]domain.StatusResolution, error)
}

type PGStatusHistoryRepository struct {
	db *pgxpool.Pool
}

func NewStatusHistoryRepository(db *pgxpool.Pool) StatusHistoryRepository {
	return &PGStatusHistoryRepository{db: db}
}

const statusHistorySchema = `
CREATE TABLE IF NOT EXISTS flight_status_history (
    event_id     TEXT PRIMARY KEY,
    airline      TEXT        NOT NULL,
    flight_code  TEXT        NOT NULL,
    departure_ts BIGINT      NOT NULL,
    oracle_index SMALLINT    NOT NULL,
    status_code  SMALLINT    NOT NULL,
    reporters    INTEGER     NOT NULL,
    resolved_at  TIMESTAMPTZ NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS flight_status_history_flight_idx
    ON flight_status_history (airline, flight_code, departure_ts);
`

func (r *PGStatusHistoryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, statusHistorySchema); err != nil {
		return fmt.Errorf("create flight_status_history: %w", err)
	}
	return nil
}

// Record is idempotent on EventID so redelivered events are harmless.
func (r *PGStatusHistoryRepository) Record(ctx context.Context, res domain.StatusResolution) error {
	_, err := r.db.Exec(ctx, `INSERT INTO flight_status_history
		(event_id, airline, flight_code, departure_ts, oracle_index, status_code, reporters, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING`,
		res.EventID, res.Flight.Airline, res.Flight.Code, res.Flight.Timestamp,
		int16(res.Index), int16(res.Outcome), res.Reporters, res.ResolvedAt)
	if err != nil {
		return fmt.Errorf("record status resolution %s: %w", res.EventID, err)
	}
	return nil
}

func (r *PGStatusHistoryRepository) ListByFlight(ctx context.Context, key domain.FlightKey) ([]domain.StatusResolution, error) {
	rows, err := r.db.Query(ctx, `SELECT event_id, oracle_index, status_code, reporters, resolved_at
		FROM flight_status_history
		WHERE airline=$1 AND flight_code=$2 AND departure_ts=$3
		ORDER BY resolved_at`, key.Airline, key.Code, key.Timestamp)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]domain.StatusResolution, 0)
	for rows.Next() {
		var (
			res           domain.StatusResolution
			index, status int16
		)
		if err := rows.Scan(&res.EventID, &index, &status, &res.Reporters, &res.ResolvedAt); err != nil {
			return nil, err
		}
		res.Index = uint8(index)
		res.Outcome = domain.FlightStatus(status)
		res.Flight = key
		history = append(history, res)
	}
	return history, rows.Err()
}

var _ StatusHistoryRepository = (*PGStatusHistoryRepository)(nil)
