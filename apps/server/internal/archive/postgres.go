package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgresService expects the career_archive table to exist already; the
// schema is owned by migrations, not by the server.
type PostgresService struct {
	db          *sql.DB
	recentLimit int
}

func NewPostgresService(dsn string, recentLimit int) (*PostgresService, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	var schemaReady bool
	if err := db.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1
    FROM information_schema.tables
    WHERE table_schema = 'public'
      AND table_name = 'career_archive'
)`).Scan(&schemaReady); err != nil {
		_ = db.Close()
		return nil, err
	}
	if !schemaReady {
		_ = db.Close()
		return nil, fmt.Errorf("archive schema not initialized: missing table career_archive")
	}

	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	return &PostgresService{db: db, recentLimit: recentLimit}, nil
}

func (s *PostgresService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresService) Record(ctx context.Context, rec Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO career_archive (
    career_id, player_name, team, ruleset, final_year, final_quarter,
    popularity, center_count, rank_label, cp_count, is_kenmin, end_reason, ended_at_ms
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (career_id) DO UPDATE SET
    player_name = EXCLUDED.player_name,
    team = EXCLUDED.team,
    ruleset = EXCLUDED.ruleset,
    final_year = EXCLUDED.final_year,
    final_quarter = EXCLUDED.final_quarter,
    popularity = EXCLUDED.popularity,
    center_count = EXCLUDED.center_count,
    rank_label = EXCLUDED.rank_label,
    cp_count = EXCLUDED.cp_count,
    is_kenmin = EXCLUDED.is_kenmin,
    end_reason = EXCLUDED.end_reason,
    ended_at_ms = EXCLUDED.ended_at_ms
`, rec.CareerID, rec.PlayerName, rec.Team, rec.Ruleset, rec.FinalYear, rec.FinalQuarter,
		rec.Popularity, rec.CenterCount, rec.Rank, rec.CPCount, boolToInt(rec.IsKenmin), rec.EndReason,
		rec.EndedAt.UTC().UnixMilli())
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
DELETE FROM career_archive
WHERE career_id NOT IN (
    SELECT career_id FROM career_archive
    ORDER BY ended_at_ms DESC, career_id DESC
    LIMIT $1
)`, s.recentLimit)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("[Archive] trimmed %d old careers (limit=%d)", n, s.recentLimit)
	}
	return tx.Commit()
}

func (s *PostgresService) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT career_id, player_name, team, ruleset, final_year, final_quarter,
       popularity, center_count, rank_label, cp_count, is_kenmin, end_reason, ended_at_ms
FROM career_archive
ORDER BY ended_at_ms DESC, career_id DESC
LIMIT $1`, clampLimit(limit, maxListLimit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (s *PostgresService) Get(ctx context.Context, careerID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT career_id, player_name, team, ruleset, final_year, final_quarter,
       popularity, center_count, rank_label, cp_count, is_kenmin, end_reason, ended_at_ms
FROM career_archive
WHERE career_id = $1`, strings.TrimSpace(careerID))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}
