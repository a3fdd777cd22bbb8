package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultLocalDBName = "idol_career.db"

type SQLiteService struct {
	db          *sql.DB
	recentLimit int
}

func NewSQLiteService(dbPath string, recentLimit int) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// :memory: 每个连接是独立的库，必须保持单连接
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteArchiveSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	return &SQLiteService{db: db, recentLimit: recentLimit}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) Record(ctx context.Context, rec Record) error {
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
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (career_id) DO UPDATE SET
    player_name = excluded.player_name,
    team = excluded.team,
    ruleset = excluded.ruleset,
    final_year = excluded.final_year,
    final_quarter = excluded.final_quarter,
    popularity = excluded.popularity,
    center_count = excluded.center_count,
    rank_label = excluded.rank_label,
    cp_count = excluded.cp_count,
    is_kenmin = excluded.is_kenmin,
    end_reason = excluded.end_reason,
    ended_at_ms = excluded.ended_at_ms
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
    LIMIT ?
)`, s.recentLimit)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("[Archive] trimmed %d old careers (limit=%d)", n, s.recentLimit)
	}
	return tx.Commit()
}

func (s *SQLiteService) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT career_id, player_name, team, ruleset, final_year, final_quarter,
       popularity, center_count, rank_label, cp_count, is_kenmin, end_reason, ended_at_ms
FROM career_archive
ORDER BY ended_at_ms DESC, career_id DESC
LIMIT ?`, clampLimit(limit, maxListLimit))
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

func (s *SQLiteService) Get(ctx context.Context, careerID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT career_id, player_name, team, ruleset, final_year, final_quarter,
       popularity, center_count, rank_label, cp_count, is_kenmin, end_reason, ended_at_ms
FROM career_archive
WHERE career_id = ?`, strings.TrimSpace(careerID))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec       Record
		kenmin    int64
		endedAtMs int64
	)
	if err := row.Scan(
		&rec.CareerID, &rec.PlayerName, &rec.Team, &rec.Ruleset, &rec.FinalYear, &rec.FinalQuarter,
		&rec.Popularity, &rec.CenterCount, &rec.Rank, &rec.CPCount, &kenmin, &rec.EndReason, &endedAtMs,
	); err != nil {
		return Record{}, err
	}
	rec.IsKenmin = kenmin != 0
	rec.EndedAt = time.UnixMilli(endedAtMs).UTC()
	return rec, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func ensureSQLiteArchiveSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS career_archive (
    career_id TEXT PRIMARY KEY,
    player_name TEXT NOT NULL,
    team TEXT NOT NULL DEFAULT '',
    ruleset TEXT NOT NULL,
    final_year INTEGER NOT NULL,
    final_quarter INTEGER NOT NULL,
    popularity INTEGER NOT NULL,
    center_count INTEGER NOT NULL DEFAULT 0,
    rank_label TEXT NOT NULL DEFAULT '',
    cp_count INTEGER NOT NULL DEFAULT 0,
    is_kenmin INTEGER NOT NULL DEFAULT 0,
    end_reason TEXT NOT NULL,
    ended_at_ms INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_career_archive_recent ON career_archive(ended_at_ms DESC, career_id DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func defaultSQLitePath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "IdolCareer", defaultLocalDBName), nil
}
