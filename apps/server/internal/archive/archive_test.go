package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"idol-career/apps/server/internal/config"
	"idol-career/career"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleRecord(id string, offset time.Duration) Record {
	return Record{
		CareerID:     id,
		PlayerName:   "新人成员",
		Team:         "Team A",
		Ruleset:      "classic",
		FinalYear:    8,
		FinalQuarter: 1,
		Popularity:   5200,
		CenterCount:  2,
		Rank:         "#3",
		CPCount:      1,
		IsKenmin:     true,
		EndReason:    "graduated",
		EndedAt:      baseTime.Add(offset),
	}
}

func backends(t *testing.T, limit int) map[string]Service {
	t.Helper()
	lite, err := NewSQLiteService(":memory:", limit)
	if err != nil {
		t.Fatalf("NewSQLiteService err: %v", err)
	}
	t.Cleanup(func() { _ = lite.Close() })
	out := map[string]Service{
		"memory": NewMemoryService(limit),
		"sqlite": lite,
	}
	if dsn := os.Getenv("ARCHIVE_TEST_POSTGRES_DSN"); dsn != "" {
		pg, err := NewPostgresService(dsn, limit)
		if err != nil {
			t.Fatalf("NewPostgresService err: %v", err)
		}
		if _, err := pg.db.Exec(`DELETE FROM career_archive`); err != nil {
			t.Fatalf("reset postgres archive: %v", err)
		}
		t.Cleanup(func() { _ = pg.Close() })
		out["postgres"] = pg
	}
	return out
}

func TestService_RecordAndGet(t *testing.T) {
	for name, svc := range backends(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sampleRecord("c-1", 0)
			if err := svc.Record(ctx, want); err != nil {
				t.Fatalf("Record err: %v", err)
			}
			got, err := svc.Get(ctx, "c-1")
			if err != nil {
				t.Fatalf("Get err: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("record mismatch (-want +got):\n%s", diff)
			}
			if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestService_UpsertKeepsOneRow(t *testing.T) {
	for name, svc := range backends(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := sampleRecord("c-1", 0)
			second := first
			second.Popularity = 9000
			second.EndReason = "burnout"
			if err := svc.Record(ctx, first); err != nil {
				t.Fatal(err)
			}
			if err := svc.Record(ctx, second); err != nil {
				t.Fatal(err)
			}
			items, err := svc.ListRecent(ctx, 10)
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != 1 || items[0].Popularity != 9000 || items[0].EndReason != "burnout" {
				t.Fatalf("expected single updated row, got %+v", items)
			}
		})
	}
}

func TestService_ListRecentNewestFirstAndTrim(t *testing.T) {
	for name, svc := range backends(t, 3) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				rec := sampleRecord(fmt.Sprintf("c-%d", i), time.Duration(i)*time.Minute)
				if err := svc.Record(ctx, rec); err != nil {
					t.Fatalf("Record %d err: %v", i, err)
				}
			}
			items, err := svc.ListRecent(ctx, 50)
			if err != nil {
				t.Fatal(err)
			}
			var ids []string
			for _, it := range items {
				ids = append(ids, it.CareerID)
			}
			if diff := cmp.Diff([]string{"c-4", "c-3", "c-2"}, ids); diff != "" {
				t.Fatalf("recent order mismatch (-want +got):\n%s", diff)
			}
			if _, err := svc.Get(ctx, "c-0"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected oldest career trimmed, got %v", err)
			}

			items, err = svc.ListRecent(ctx, 2)
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != 2 {
				t.Fatalf("expected limit 2, got %d", len(items))
			}
		})
	}
}

func TestService_RejectsIncompleteRecord(t *testing.T) {
	for name, svc := range backends(t, 10) {
		t.Run(name, func(t *testing.T) {
			rec := sampleRecord("", 0)
			if err := svc.Record(context.Background(), rec); err == nil {
				t.Fatalf("expected error for empty id")
			}
			rec = sampleRecord("c-1", 0)
			rec.EndedAt = time.Time{}
			if err := svc.Record(context.Background(), rec); err == nil {
				t.Fatalf("expected error for zero ended_at")
			}
		})
	}
}

func TestRecordFromSnapshot(t *testing.T) {
	snap := career.Snapshot{
		Ruleset:   "extended",
		Phase:     career.PhaseEnded,
		Ended:     true,
		EndReason: career.EndBurnout,
		Year:      3,
		Quarter:   2,
		Player: career.PlayerSnapshot{
			Name:        "测试",
			Team:        "SKE48",
			Stats:       career.Stats{Popularity: 1234},
			Rank:        career.BucketRank(career.BucketKami),
			CenterCount: 1,
			IsKenmin:    false,
		},
		Members: []career.MemberSnapshot{
			{Name: "a", Bond: 90, IsCP: true},
			{Name: "b", Bond: 10},
			{Name: "c", Bond: 85, IsCP: true},
		},
	}
	rec, err := RecordFromSnapshot("career-x", snap, baseTime)
	if err != nil {
		t.Fatalf("RecordFromSnapshot err: %v", err)
	}
	want := Record{
		CareerID:     "career-x",
		PlayerName:   "测试",
		Team:         "SKE48",
		Ruleset:      "extended",
		FinalYear:    3,
		FinalQuarter: 2,
		Popularity:   1234,
		CenterCount:  1,
		Rank:         "神7",
		CPCount:      2,
		EndReason:    "burnout",
		EndedAt:      baseTime,
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	rec, err = RecordFromSnapshot("", snap, baseTime)
	if err != nil || rec.CareerID == "" {
		t.Fatalf("expected generated career id, got %q err=%v", rec.CareerID, err)
	}

	snap.Ended = false
	if _, err := RecordFromSnapshot("x", snap, baseTime); !errors.Is(err, career.ErrNotEnded) {
		t.Fatalf("expected ErrNotEnded, got %v", err)
	}
}

func TestNewService_Modes(t *testing.T) {
	svc, kind, err := NewService(config.Server{ArchiveMode: config.ArchiveModeMemory})
	if err != nil || kind != "memory" {
		t.Fatalf("memory mode: kind=%s err=%v", kind, err)
	}
	_ = svc.Close()

	svc, kind, err = NewService(config.Server{ArchiveMode: config.ArchiveModeSQLite, SQLitePath: ":memory:"})
	if err != nil || kind != "sqlite" {
		t.Fatalf("sqlite mode: kind=%s err=%v", kind, err)
	}
	_ = svc.Close()

	if _, _, err := NewService(config.Server{ArchiveMode: "redis"}); err == nil {
		t.Fatalf("expected unsupported mode error")
	}
}

func TestHTTPHandler(t *testing.T) {
	svc := NewMemoryService(10)
	for i := 0; i < 3; i++ {
		if err := svc.Record(context.Background(), sampleRecord(fmt.Sprintf("c-%d", i), time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}
	mux := http.NewServeMux()
	NewHTTPHandler(svc).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/archive/recent?limit=2")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Items []Record `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || len(body.Items) != 2 || body.Items[0].CareerID != "c-2" {
		t.Fatalf("unexpected recent response: status=%d items=%+v", resp.StatusCode, body.Items)
	}

	resp, err = http.Get(srv.URL + "/api/archive/careers/c-1")
	if err != nil {
		t.Fatal(err)
	}
	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if rec.CareerID != "c-1" || rec.Rank != "#3" {
		t.Fatalf("unexpected career response: %+v", rec)
	}

	resp, err = http.Get(srv.URL + "/api/archive/careers/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/archive/recent", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestParseLimit(t *testing.T) {
	cases := map[string]int{"": 20, "abc": 20, "-1": 20, "5": 5, "1000": 100}
	for raw, want := range cases {
		if got := parseLimit(raw); got != want {
			t.Fatalf("parseLimit(%q) = %d, want %d", raw, got, want)
		}
	}
}
