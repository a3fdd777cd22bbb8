package career

import (
	"math/rand"
	"testing"

	"pgregory.net/rapid"
)

// 任意行动与推进序列下：行动力在 [0,3]，季度在 [1,4]，体力心态不超过 100，
// centerCount 不减，兼任与CP只会单向翻转。
func TestProperty_CareerInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rules := rapid.SampledFrom([]Ruleset{ClassicRules(), ExtendedRules()}).Draw(t, "rules")
		seed := rapid.Int64().Draw(t, "seed")
		r := testResolver(rules, rand.New(rand.NewSource(seed)))
		s := r.NewState("测试成员")

		// 0 表示推进季度，其余为 ActionType
		cmds := rapid.SliceOfN(rapid.IntRange(0, int(ActionRest)), 1, 200).Draw(t, "cmds")
		for i, c := range cmds {
			prev := s
			var err error
			if c == 0 {
				if s.ActionsRemaining > 0 {
					continue
				}
				s, _, err = r.ResolveQuarter(s, r.ClassifyEvent(s.Time))
			} else {
				s, err = r.ApplyAction(s, ActionType(c))
			}
			if err != nil {
				s = prev
			}

			if s.ActionsRemaining < 0 || s.ActionsRemaining > MaxActionsPerQuarter {
				t.Fatalf("step %d: actionsRemaining %d out of range", i, s.ActionsRemaining)
			}
			if s.Time.Quarter < 1 || s.Time.Quarter > QuartersPerYear {
				t.Fatalf("step %d: quarter %d out of range", i, s.Time.Quarter)
			}
			if s.Player.Stats.Stamina > StatSoftCap || s.Player.Stats.Mood > StatSoftCap {
				t.Fatalf("step %d: stamina/mood above cap: %d/%d", i, s.Player.Stats.Stamina, s.Player.Stats.Mood)
			}
			if s.Player.Stats.Popularity < 0 {
				t.Fatalf("step %d: negative popularity %d", i, s.Player.Stats.Popularity)
			}
			if s.Player.CenterCount < prev.Player.CenterCount {
				t.Fatalf("step %d: centerCount decreased %d -> %d", i, prev.Player.CenterCount, s.Player.CenterCount)
			}
			if prev.Player.IsKenmin && !s.Player.IsKenmin {
				t.Fatalf("step %d: kenmin reverted", i)
			}
			if len(s.Members) != len(prev.Members) {
				t.Fatalf("step %d: roster size changed", i)
			}
			for j := range s.Members {
				if prev.Members[j].IsCP && !s.Members[j].IsCP {
					t.Fatalf("step %d: CP with %s reverted", i, s.Members[j].Name)
				}
			}
			if prev.IsGameOver && !s.IsGameOver {
				t.Fatalf("step %d: game over reverted", i)
			}
			if len(s.Logs) > MaxLogEntries {
				t.Fatalf("step %d: %d logs retained", i, len(s.Logs))
			}
			if s.IsGameOver {
				return
			}
		}
	})
}
