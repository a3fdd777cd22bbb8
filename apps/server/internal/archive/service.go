// Package archive records finished careers for later browsing. It stores
// results only; in-progress games are never persisted.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"idol-career/apps/server/internal/config"
	"idol-career/career"
)

const (
	defaultRecentLimit = 200
	defaultListLimit   = 20
	maxListLimit       = 100
)

var ErrNotFound = errors.New("not found")

// Record 一段生涯的结算摘要
type Record struct {
	CareerID     string    `json:"career_id"`
	PlayerName   string    `json:"player_name"`
	Team         string    `json:"team"`
	Ruleset      string    `json:"ruleset"`
	FinalYear    int       `json:"final_year"`
	FinalQuarter int       `json:"final_quarter"`
	Popularity   int       `json:"popularity"`
	CenterCount  int       `json:"center_count"`
	Rank         string    `json:"rank"`
	CPCount      int       `json:"cp_count"`
	IsKenmin     bool      `json:"is_kenmin"`
	EndReason    string    `json:"end_reason"`
	EndedAt      time.Time `json:"ended_at"`
}

type Service interface {
	Close() error
	Record(ctx context.Context, rec Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	Get(ctx context.Context, careerID string) (Record, error)
}

// RecordFromSnapshot builds the archive row for an ended career. A fresh
// career id is assigned when careerID is empty.
func RecordFromSnapshot(careerID string, snap career.Snapshot, endedAt time.Time) (Record, error) {
	if !snap.Ended {
		return Record{}, career.ErrNotEnded
	}
	if strings.TrimSpace(careerID) == "" {
		careerID = uuid.NewString()
	}
	return Record{
		CareerID:     careerID,
		PlayerName:   snap.Player.Name,
		Team:         snap.Player.Team,
		Ruleset:      snap.Ruleset,
		FinalYear:    snap.Year,
		FinalQuarter: snap.Quarter,
		Popularity:   snap.Player.Stats.Popularity,
		CenterCount:  snap.Player.CenterCount,
		Rank:         snap.Player.Rank.String(),
		CPCount:      snap.CPCount(),
		IsKenmin:     snap.Player.IsKenmin,
		EndReason:    snap.EndReason.String(),
		EndedAt:      endedAt.UTC(),
	}, nil
}

// NewService opens the archive backend selected by cfg.ArchiveMode.
func NewService(cfg config.Server) (Service, string, error) {
	limit := cfg.RecentLimit
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	switch cfg.ArchiveMode {
	case config.ArchiveModeMemory:
		return NewMemoryService(limit), "memory", nil
	case config.ArchiveModeSQLite:
		path := cfg.SQLitePath
		if strings.TrimSpace(path) == "" {
			p, err := defaultSQLitePath()
			if err != nil {
				return nil, "", err
			}
			path = p
		}
		svc, err := NewSQLiteService(path, limit)
		if err != nil {
			return nil, "", err
		}
		return svc, "sqlite", nil
	case config.ArchiveModePostgres:
		svc, err := NewPostgresService(cfg.DatabaseDSN, limit)
		if err != nil {
			return nil, "", err
		}
		return svc, "postgres", nil
	default:
		return nil, "", fmt.Errorf("unsupported archive mode %q", cfg.ArchiveMode)
	}
}

func validateRecord(rec Record) error {
	if strings.TrimSpace(rec.CareerID) == "" {
		return fmt.Errorf("archive: empty career id")
	}
	if rec.EndedAt.IsZero() {
		return fmt.Errorf("archive: missing ended_at for %s", rec.CareerID)
	}
	return nil
}

func clampLimit(limit, ceiling int) int {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if ceiling > 0 && limit > ceiling {
		limit = ceiling
	}
	return limit
}
