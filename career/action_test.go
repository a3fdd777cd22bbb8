package career

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewState_FollowsStartRules(t *testing.T) {
	for _, rules := range []Ruleset{ClassicRules(), ExtendedRules()} {
		r := testResolver(rules, &scriptedRand{ints: []int{2, 5, 3, 1, 7, 4, 9, 11, 13, 6, 8}})
		s := r.NewState("测试成员")

		if s.Phase != PhasePlaying {
			t.Fatalf("%s: expected playing, got %v", rules.Name, s.Phase)
		}
		if s.Time != (GameTime{Year: 1, Quarter: 1}) {
			t.Fatalf("%s: expected (1,1), got %+v", rules.Name, s.Time)
		}
		if s.ActionsRemaining != MaxActionsPerQuarter {
			t.Fatalf("%s: expected %d actions, got %d", rules.Name, MaxActionsPerQuarter, s.ActionsRemaining)
		}
		if len(s.Logs) != 0 {
			t.Fatalf("%s: expected empty logs, got %d", rules.Name, len(s.Logs))
		}
		if len(s.Members) != rules.RosterSize {
			t.Fatalf("%s: expected roster %d, got %d", rules.Name, rules.RosterSize, len(s.Members))
		}
		seen := map[string]bool{}
		for _, m := range s.Members {
			if seen[m.Name] {
				t.Fatalf("%s: duplicate member %s", rules.Name, m.Name)
			}
			seen[m.Name] = true
			if m.Bond < rules.StartBond.Min || m.Bond > rules.StartBond.Max {
				t.Fatalf("%s: bond %d out of range", rules.Name, m.Bond)
			}
			if m.IsCP {
				t.Fatalf("%s: CP flag set at start", rules.Name)
			}
		}
		st := s.Player.Stats
		if st.Visual < rules.StartVisual.Min || st.Visual > rules.StartVisual.Max {
			t.Fatalf("%s: visual %d out of range", rules.Name, st.Visual)
		}
		if st.Popularity < rules.StartPopularity.Min || st.Popularity > rules.StartPopularity.Max {
			t.Fatalf("%s: popularity %d out of range", rules.Name, st.Popularity)
		}
		if st.Stamina != 100 || st.Mood != 100 {
			t.Fatalf("%s: expected stamina/mood 100/100, got %d/%d", rules.Name, st.Stamina, st.Mood)
		}
		if s.Player.CurrentRank != rules.InitialRank() {
			t.Fatalf("%s: unexpected initial rank %v", rules.Name, s.Player.CurrentRank)
		}
	}
}

// 体力 100，每次 lesson 消耗 20：体力 20 时仍可执行并降到 0，之后被拒绝。
func TestLesson_StaminaBoundary(t *testing.T) {
	r := testResolver(ClassicRules(), &scriptedRand{})
	s := freshState(r)

	var err error
	for i := 0; i < 3; i++ {
		if s, err = r.ApplyAction(s, ActionLesson); err != nil {
			t.Fatalf("lesson %d err: %v", i+1, err)
		}
	}
	if s.Player.Stats.Stamina != 40 || s.ActionsRemaining != 0 {
		t.Fatalf("expected stamina 40 and 0 actions, got %d/%d", s.Player.Stats.Stamina, s.ActionsRemaining)
	}
	if _, err := r.ApplyAction(s, ActionLesson); !errors.Is(err, ErrNoActionsLeft) {
		t.Fatalf("expected ErrNoActionsLeft, got %v", err)
	}

	if s, _, err = r.ResolveQuarter(s, EventDaily); err != nil {
		t.Fatalf("ResolveQuarter err: %v", err)
	}
	for i := 0; i < 2; i++ {
		if s, err = r.ApplyAction(s, ActionLesson); err != nil {
			t.Fatalf("lesson %d err: %v", i+4, err)
		}
	}
	if s.Player.Stats.Stamina != 0 {
		t.Fatalf("expected stamina 0, got %d", s.Player.Stats.Stamina)
	}
	if s.Player.Stats.Performance != 40+5*6 {
		t.Fatalf("expected performance %d, got %d", 40+5*6, s.Player.Stats.Performance)
	}
	if s.Player.Stats.Popularity != 250+5*100 {
		t.Fatalf("expected popularity %d, got %d", 250+5*100, s.Player.Stats.Popularity)
	}

	out, err := r.ApplyAction(s, ActionLesson)
	if !errors.Is(err, ErrInsufficientStamina) {
		t.Fatalf("expected ErrInsufficientStamina, got %v", err)
	}
	if diff := cmp.Diff(s, out); diff != "" {
		t.Fatalf("rejected action mutated state (-want +got):\n%s", diff)
	}
	if out.ActionsRemaining != 1 {
		t.Fatalf("rejected action consumed budget: %d", out.ActionsRemaining)
	}
}

func TestLesson_ExtendedAllowsOverdraft(t *testing.T) {
	r := testResolver(ExtendedRules(), &scriptedRand{})
	s := freshState(r)
	s.Player.Stats.Stamina = 0

	s, err := r.ApplyAction(s, ActionLesson)
	if err != nil {
		t.Fatalf("expected overdraft lesson to succeed, got %v", err)
	}
	if s.Player.Stats.Stamina != -20 {
		t.Fatalf("expected stamina -20, got %d", s.Player.Stats.Stamina)
	}
	if _, err := r.ApplyAction(s, ActionVariety); !errors.Is(err, ErrInsufficientStamina) {
		t.Fatalf("expected ErrInsufficientStamina past overdraft, got %v", err)
	}
}

func TestStaminaCost_Kenmin(t *testing.T) {
	rules := ClassicRules()
	cases := []struct {
		action ActionType
		plain  int
		kenmin int
	}{
		{ActionLesson, 20, 30},
		{ActionVariety, 15, 23},
		{ActionWork, 20, 30},
		{ActionBond, 0, 0},
		{ActionRest, 0, 0},
	}
	for _, tc := range cases {
		if got := rules.StaminaCost(tc.action, false); got != tc.plain {
			t.Fatalf("%s: expected cost %d, got %d", tc.action, tc.plain, got)
		}
		if got := rules.StaminaCost(tc.action, true); got != tc.kenmin {
			t.Fatalf("%s kenmin: expected cost %d, got %d", tc.action, tc.kenmin, got)
		}
	}

	r := testResolver(rules, &scriptedRand{})
	s := freshState(r)
	s.Player.IsKenmin = true
	s, err := r.ApplyAction(s, ActionVariety)
	if err != nil {
		t.Fatalf("variety err: %v", err)
	}
	if s.Player.Stats.Stamina != 77 {
		t.Fatalf("expected stamina 77, got %d", s.Player.Stats.Stamina)
	}
}

func TestActions_Effects(t *testing.T) {
	r := testResolver(ExtendedRules(), &scriptedRand{ints: []int{80, 30, 3}})
	s := freshState(r)

	s, err := r.ApplyAction(s, ActionLesson) // popularity 100 + 80
	if err != nil {
		t.Fatal(err)
	}
	s, err = r.ApplyAction(s, ActionWork) // popularity 150 + 30, exposure 12 + 3
	if err != nil {
		t.Fatal(err)
	}
	s, err = r.ApplyAction(s, ActionVariety)
	if err != nil {
		t.Fatal(err)
	}

	want := Stats{
		Visual:      50,
		Performance: 46,
		Variety:     42,
		Popularity:  250 + 180 + 180,
		Stamina:     100 - 20 - 20 - 15,
		Mood:        100,
		Love:        24,
		Exposure:    65,
	}
	if diff := cmp.Diff(want, s.Player.Stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	if len(s.Logs) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(s.Logs))
	}
	if s.Logs[0].Tag != "综艺" || s.Logs[2].Tag != "剧场" {
		t.Fatalf("logs not newest first: %q ... %q", s.Logs[0].Tag, s.Logs[2].Tag)
	}
}

func TestRest_Clamps(t *testing.T) {
	r := testResolver(ClassicRules(), &scriptedRand{})
	s := freshState(r)
	s.Player.Stats.Stamina = 90
	s.Player.Stats.Mood = 95

	s, err := r.ApplyAction(s, ActionRest)
	if err != nil {
		t.Fatal(err)
	}
	if s.Player.Stats.Stamina != 100 || s.Player.Stats.Mood != 100 {
		t.Fatalf("expected clamp to 100/100, got %d/%d", s.Player.Stats.Stamina, s.Player.Stats.Mood)
	}
	if s.Player.Stats.Popularity != 230 {
		t.Fatalf("expected classic rest penalty to 230, got %d", s.Player.Stats.Popularity)
	}

	// 已经高于上限的值不会被拉回 100
	s.Player.Stats.Stamina = 130
	s, err = r.ApplyAction(s, ActionRest)
	if err != nil {
		t.Fatal(err)
	}
	if s.Player.Stats.Stamina != 130 {
		t.Fatalf("expected stamina 130 untouched, got %d", s.Player.Stats.Stamina)
	}

	s.Player.Stats.Popularity = 5
	s, err = r.ApplyAction(s, ActionRest)
	if err != nil {
		t.Fatal(err)
	}
	if s.Player.Stats.Popularity != 0 {
		t.Fatalf("expected popularity floored at 0, got %d", s.Player.Stats.Popularity)
	}
}

// 单人名单反复 bond：CP 只成立一次，人气奖励只发一次。
func TestBond_CPFlipsOnce(t *testing.T) {
	r := testResolver(ClassicRules(), &scriptedRand{})
	s := freshState(r)
	s.Members = []Member{{Name: "宫脇咲良", Bond: 20}}
	startPop := s.Player.Stats.Popularity

	flips := 0
	for i := 0; i < 8; i++ {
		s.ActionsRemaining = MaxActionsPerQuarter
		before := s.Members[0].IsCP
		var err error
		s, err = r.ApplyAction(s, ActionBond)
		if err != nil {
			t.Fatalf("bond %d err: %v", i+1, err)
		}
		if !before && s.Members[0].IsCP {
			flips++
			if s.Members[0].Bond != 80 {
				t.Fatalf("expected CP at bond 80, got %d", s.Members[0].Bond)
			}
		}
		if before && !s.Members[0].IsCP {
			t.Fatalf("CP flag reverted at bond %d", s.Members[0].Bond)
		}
	}
	if flips != 1 {
		t.Fatalf("expected exactly one CP flip, got %d", flips)
	}
	if got := s.Player.Stats.Popularity - startPop; got != 300 {
		t.Fatalf("expected popularity +300 once, got +%d", got)
	}
	if s.Members[0].Bond != 20+8*15 {
		t.Fatalf("expected bond %d, got %d", 20+8*15, s.Members[0].Bond)
	}
	if s.Logs[4].Color != ColorPurple {
		t.Fatalf("expected CP log entry, got %+v", s.Logs[4])
	}
}

func TestBond_PicksScriptedMember(t *testing.T) {
	r := testResolver(ClassicRules(), &scriptedRand{ints: []int{2}})
	s := freshState(r)
	s.Members = []Member{{Name: "a", Bond: 10}, {Name: "b", Bond: 10}, {Name: "c", Bond: 10}}

	s, err := r.ApplyAction(s, ActionBond)
	if err != nil {
		t.Fatal(err)
	}
	if s.Members[2].Bond != 25 || s.Members[0].Bond != 10 || s.Members[1].Bond != 10 {
		t.Fatalf("unexpected bonds: %+v", s.Members)
	}
}

func TestApplyAction_RejectionIsIdempotent(t *testing.T) {
	r := testResolver(ClassicRules(), &scriptedRand{})
	base := freshState(r)

	noBudget := base.Clone()
	noBudget.ActionsRemaining = 0

	over := base.Clone()
	over.IsGameOver = true
	over.Phase = PhaseEnded

	notStarted := State{Phase: PhaseStart}

	cases := []struct {
		name   string
		state  State
		action ActionType
		want   error
	}{
		{"no budget", noBudget, ActionRest, ErrNoActionsLeft},
		{"game over", over, ActionBond, ErrNotPlaying},
		{"not started", notStarted, ActionLesson, ErrNotPlaying},
		{"unknown action", base, ActionNone, ErrUnknownAction},
	}
	for _, tc := range cases {
		out, err := r.ApplyAction(tc.state, tc.action)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if diff := cmp.Diff(tc.state, out); diff != "" {
			t.Fatalf("%s: state changed (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestApplyAction_DoesNotAliasInput(t *testing.T) {
	r := testResolver(ClassicRules(), &scriptedRand{})
	s := freshState(r)
	s.Members = []Member{{Name: "a", Bond: 70}}
	before := s.Clone()

	if _, err := r.ApplyAction(s, ActionBond); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, s); diff != "" {
		t.Fatalf("input state mutated (-want +got):\n%s", diff)
	}
}

func TestLogs_RetainNewestFifty(t *testing.T) {
	r := testResolver(ClassicRules(), &scriptedRand{})
	s := freshState(r)
	for i := 0; i < 60; i++ {
		s.ActionsRemaining = MaxActionsPerQuarter
		var err error
		if s, err = r.ApplyAction(s, ActionRest); err != nil {
			t.Fatal(err)
		}
	}
	if len(s.Logs) != MaxLogEntries {
		t.Fatalf("expected %d logs, got %d", MaxLogEntries, len(s.Logs))
	}
	if s.Logs[0].ID != "log-60" || s.Logs[MaxLogEntries-1].ID != "log-11" {
		t.Fatalf("unexpected retention window: %s .. %s", s.Logs[0].ID, s.Logs[MaxLogEntries-1].ID)
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range AllActions {
		got, ok := ParseAction(a.String())
		if !ok || got != a {
			t.Fatalf("ParseAction(%q) = %v, %v", a.String(), got, ok)
		}
	}
	if _, ok := ParseAction("none"); ok {
		t.Fatalf("none must not parse")
	}
	if _, ok := ParseAction("dance"); ok {
		t.Fatalf("unknown name must not parse")
	}
}
