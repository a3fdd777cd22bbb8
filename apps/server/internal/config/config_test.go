package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"idol-career/narrative"
	"idol-career/roster"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Ruleset != "classic" || cfg.ArchiveMode != ArchiveModeMemory {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.NarrativeTimeout != 20*time.Second {
		t.Fatalf("unexpected narrative timeout %s", cfg.NarrativeTimeout)
	}
	if _, kind := cfg.Narrator(); kind != "static" {
		t.Fatalf("expected static narrator without key, got %s", kind)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RULESET", "extended")
	t.Setenv("ARCHIVE_MODE", "local")
	t.Setenv("NARRATIVE_TIMEOUT", "3s")
	t.Setenv("GEMINI_API_KEY", "k")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.ArchiveMode != ArchiveModeSQLite {
		t.Fatalf("expected sqlite alias to normalise, got %s", cfg.ArchiveMode)
	}
	cc, err := cfg.CareerConfig(mustTables(t, cfg))
	if err != nil {
		t.Fatal(err)
	}
	if cc.Rules.Name != "extended" || cc.NarrativeTimeout != 3*time.Second {
		t.Fatalf("unexpected career config: %s %s", cc.Rules.Name, cc.NarrativeTimeout)
	}
	n, kind := cfg.Narrator()
	if kind != "gemini" {
		t.Fatalf("expected gemini narrator, got %s", kind)
	}
	if _, ok := n.(*narrative.Gemini); !ok {
		t.Fatalf("expected *narrative.Gemini, got %T", n)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"ARCHIVE_MODE":      "redis",
		"RULESET":           "hybrid",
		"NARRATIVE_TIMEOUT": "soon",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestTables_RosterFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "roster.json")
	if err := os.WriteFile(good, []byte(`{"names":["甲","乙","丙","丁"],"teams":["Team 8"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ROSTER_FILE", good)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	tables := mustTables(t, cfg)
	if len(tables.Names) != 4 || tables.Teams[0] != "Team 8" {
		t.Fatalf("roster override not applied: %+v", tables)
	}

	small := filepath.Join(dir, "small.json")
	if err := os.WriteFile(small, []byte(`{"names":["甲","乙"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.RosterFile = small
	if _, err := cfg.Tables(); err == nil || !strings.Contains(err.Error(), "name pool too small") {
		t.Fatalf("expected pool size error, got %v", err)
	}
}

func mustTables(t *testing.T, cfg Server) roster.Tables {
	t.Helper()
	tables, err := cfg.Tables()
	if err != nil {
		t.Fatalf("Tables err: %v", err)
	}
	return tables
}
