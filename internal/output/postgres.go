package output

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

// PostgresOutput appends events to a single log table of
// (topic, event_time, payload) rows so analytics can query runs after
// the fact.
type PostgresOutput struct {
	pool *pgxpool.Pool
}

func NewPostgresOutput(config *models.Config) (*PostgresOutput, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, config.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	p := &PostgresOutput{pool: pool}
	if err := p.ensureTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresOutput) ensureTables(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS simulation_events (
			id         BIGSERIAL PRIMARY KEY,
			topic      TEXT        NOT NULL,
			event_time TIMESTAMPTZ NOT NULL,
			payload    JSONB       NOT NULL
		);
		CREATE INDEX IF NOT EXISTS simulation_events_topic_time_idx
			ON simulation_events (topic, event_time);`
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}
	return nil
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	var envelope struct {
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		return err
	}
	eventTime, err := time.Parse(time.RFC3339, envelope.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = p.pool.Exec(ctx,
		`INSERT INTO simulation_events (topic, event_time, payload) VALUES ($1, $2, $3)`,
		topic, eventTime, msg)
	if err != nil {
		return fmt.Errorf("failed to insert %s event: %w", topic, err)
	}
	return nil
}

func (p *PostgresOutput) Close() error {
	p.pool.Close()
	return nil
}
