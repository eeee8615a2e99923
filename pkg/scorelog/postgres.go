package scorelog

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/menta2k/photo-coach/pkg/types"
)

// PostgresLog stores rows in the photo_scores table
type PostgresLog struct {
	mu   sync.Mutex
	conn *pgx.Conn
}

// OpenPostgres connects and makes sure the table exists
func OpenPostgres(ctx context.Context, connString string) (*PostgresLog, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to score database: %w", err)
	}

	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &PostgresLog{conn: conn}, nil
}

func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS photo_scores (
			id BIGSERIAL PRIMARY KEY,
			image TEXT NOT NULL,
			final_score DOUBLE PRECISION NOT NULL,
			position DOUBLE PRECISION NOT NULL,
			angle DOUBLE PRECISION NOT NULL,
			lighting DOUBLE PRECISION NOT NULL,
			focus DOUBLE PRECISION NOT NULL,
			feedback TEXT[] NOT NULL,
			suggestions TEXT[] NOT NULL,
			scored_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS photo_scores_image_idx ON photo_scores (image);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Append inserts one row
func (p *PostgresLog) Append(ctx context.Context, imageID string, r types.ScoreReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return ErrClosed
	}

	_, err := p.conn.Exec(ctx, `
		INSERT INTO photo_scores (image, final_score, position, angle, lighting, focus, feedback, suggestions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, imageID, r.FinalScore, r.Position, r.Angle, r.Lighting, r.Focus, nonNil(r.Feedback), nonNil(r.Suggestions))
	if err != nil {
		return fmt.Errorf("failed to insert score for %s: %w", imageID, err)
	}
	return nil
}

// Recent returns the latest n rows, newest first
func (p *PostgresLog) Recent(ctx context.Context, n int) ([]Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil, ErrClosed
	}

	rows, err := p.conn.Query(ctx, `
		SELECT image, final_score, position, angle, lighting, focus, feedback, suggestions
		FROM photo_scores ORDER BY id DESC LIMIT $1
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		r := &e.Report
		if err := rows.Scan(&e.ImageID, &r.FinalScore, &r.Position, &r.Angle, &r.Lighting, &r.Focus, &r.Feedback, &r.Suggestions); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close terminates the database connection
func (p *PostgresLog) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close(context.Background())
	p.conn = nil
	return err
}

// Entry is a stored row
type Entry struct {
	ImageID string            `json:"image_id"`
	Report  types.ScoreReport `json:"report"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
