package lobby

import (
	"context"
	"errors"
	"testing"
	"time"

	"idol-career/apps/server/internal/archive"
	"idol-career/apps/server/internal/session"
	"idol-career/career"
	"idol-career/narrative"
)

func shortCareer() (career.Config, error) {
	cfg := career.DefaultConfig()
	cfg.Seed = 11
	cfg.Rules.CareerYears = 1
	cfg.Rules.ScandalChance = 0
	return cfg, nil
}

func TestLobby_CreateGetRemove(t *testing.T) {
	l := New(Options{NewConfig: shortCareer, Narrator: narrative.Static{}})
	defer l.Close()

	a, err := l.Create()
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	b, err := l.Create()
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("expected unique session ids")
	}
	if l.Get(a.ID) != a || l.Get("missing") != nil {
		t.Fatalf("Get returned unexpected session")
	}
	if len(l.List()) != 2 {
		t.Fatalf("expected 2 sessions, got %v", l.List())
	}

	l.Remove(a.ID)
	if l.Get(a.ID) != nil || !a.IsClosed() {
		t.Fatalf("expected removed session to be stopped and forgotten")
	}
}

func TestLobby_CreateRejectsBadConfig(t *testing.T) {
	l := New(Options{NewConfig: func() (career.Config, error) {
		return career.Config{}, errors.New("boom")
	}})
	if _, err := l.Create(); err == nil {
		t.Fatalf("expected config error")
	}
	l = New(Options{NewConfig: func() (career.Config, error) {
		cfg := career.DefaultConfig()
		cfg.Rules.RosterSize = 0
		return cfg, nil
	}})
	if _, err := l.Create(); err == nil {
		t.Fatalf("expected invalid config error")
	}
}

func TestLobby_ReapIdle(t *testing.T) {
	l := New(Options{NewConfig: shortCareer, IdleTTL: time.Millisecond})
	defer l.Close()

	live, err := l.Create()
	if err != nil {
		t.Fatal(err)
	}
	live.Attach(func([]byte) {})
	detached, err := l.Create()
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(5 * time.Millisecond)
	if n := l.ReapIdle(); n != 1 {
		t.Fatalf("expected 1 reaped session, got %d", n)
	}
	if l.Get(detached.ID) != nil || !detached.IsClosed() {
		t.Fatalf("detached session should be reaped")
	}
	if l.Get(live.ID) == nil {
		t.Fatalf("attached playing session must survive")
	}
}

func TestLobby_ArchivesFinishedCareer(t *testing.T) {
	store := archive.NewMemoryService(10)
	l := New(Options{NewConfig: shortCareer, Narrator: narrative.Static{}, Archive: store})
	defer l.Close()

	s, err := l.Create()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitEvent(session.Event{Type: session.EventStart}); err != nil {
		t.Fatal(err)
	}
	careerID := s.CareerID()
	for q := 0; q < career.QuartersPerYear; q++ {
		for i := 0; i < career.MaxActionsPerQuarter; i++ {
			if err := s.SubmitEvent(session.Event{Type: session.EventAction, Action: career.ActionRest}); err != nil {
				t.Fatalf("rest err: %v", err)
			}
		}
		if err := s.SubmitEvent(session.Event{Type: session.EventAdvance}); err != nil {
			t.Fatalf("advance err: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec, err := store.Get(context.Background(), careerID)
		if err == nil {
			if rec.EndReason != "graduated" || rec.Ruleset != career.RulesetClassic || rec.FinalYear != 2 {
				t.Fatalf("unexpected archived record: %+v", rec)
			}
			return
		}
		if !errors.Is(err, archive.ErrNotFound) {
			t.Fatalf("Get err: %v", err)
		}
		if time.Now().After(deadline) {
			t.Fatalf("career %s never archived", careerID)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLobby_RunReaperStopsOnCancel(t *testing.T) {
	l := New(Options{NewConfig: shortCareer, IdleTTL: time.Millisecond})
	defer l.Close()
	if _, err := l.Create(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.RunReaper(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(l.List()) > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("reaper never removed idle session")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("RunReaper did not return after cancel")
	}
}
