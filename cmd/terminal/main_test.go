package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"idol-career/career"
	"idol-career/narrative"
)

func newTerminalGame(t *testing.T) *career.Game {
	t.Helper()
	cfg := career.DefaultConfig()
	cfg.Seed = 5
	cfg.Rules.CareerYears = 1
	cfg.Rules.ScandalChance = 0
	g, err := career.NewGame(cfg, narrative.Static{})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	return g
}

func TestRun_PlaysToGraduation(t *testing.T) {
	g := newTerminalGame(t)
	script := strings.Repeat("5\nrest\n5\nn\n", career.QuartersPerYear) + "q\n"
	var out bytes.Buffer
	if err := run(context.Background(), g, strings.NewReader(script), &out); err != nil {
		t.Fatalf("run err: %v", err)
	}
	snap := g.Snapshot()
	if !snap.Ended || snap.EndReason != career.EndGraduated {
		t.Fatalf("expected graduation, got ended=%v reason=%s", snap.Ended, snap.EndReason)
	}
	if !strings.Contains(out.String(), "圆满毕业") {
		t.Fatalf("final screen missing from output")
	}
}

func TestDispatch_RejectionsKeepState(t *testing.T) {
	g := newTerminalGame(t)
	if err := g.Start(); err != nil {
		t.Fatal(err)
	}
	before := g.Snapshot()

	_, msg := dispatch(context.Background(), g, "n")
	if !strings.Contains(msg, "还有剩余行动次数") {
		t.Fatalf("expected actions remaining message, got %q", msg)
	}
	_, msg = dispatch(context.Background(), g, "dance")
	if !strings.Contains(msg, "未知指令") {
		t.Fatalf("expected unknown command message, got %q", msg)
	}
	if after := g.Snapshot(); after.ActionsRemaining != before.ActionsRemaining || len(after.Logs) != len(before.Logs) {
		t.Fatalf("rejected commands must not change state")
	}

	quit, _ := dispatch(context.Background(), g, "quit")
	if !quit {
		t.Fatalf("expected quit")
	}
}

func TestRenderBoard_ShowsRoster(t *testing.T) {
	g := newTerminalGame(t)
	if err := g.Start(); err != nil {
		t.Fatal(err)
	}
	snap := g.Snapshot()
	board := renderBoard(snap)
	for _, m := range snap.Members {
		if !strings.Contains(board, m.Name) {
			t.Fatalf("board missing member %s", m.Name)
		}
	}
	if !strings.Contains(board, snap.Player.Name) {
		t.Fatalf("board missing player name")
	}
}

func TestRun_WelcomesOnStartAndRestart(t *testing.T) {
	g := newTerminalGame(t)
	script := strings.Repeat("5\n5\n5\nn\n", career.QuartersPerYear) + "r\nq\n"
	var out bytes.Buffer
	if err := run(context.Background(), g, strings.NewReader(script), &out); err != nil {
		t.Fatalf("run err: %v", err)
	}
	if n := strings.Count(out.String(), "欢迎加入AKB48 Group"); n != 2 {
		t.Fatalf("expected welcome on start and restart, got %d", n)
	}
	if !strings.Contains(out.String(), g.Snapshot().Player.Team) {
		t.Fatalf("welcome should name the assigned team")
	}
	if logs := g.Snapshot().Logs; len(logs) != 0 {
		t.Fatalf("welcome must not enter the career log, got %d entries", len(logs))
	}
}
