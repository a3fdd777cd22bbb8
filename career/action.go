package career

import (
	"fmt"
	"math"
)

// StaminaCost 计算行动体力消耗，兼任成员每次行动多付 KenminCostFactor 倍（向上取整）。
func (r Ruleset) StaminaCost(a ActionType, kenmin bool) int {
	var base int
	switch a {
	case ActionLesson:
		base = r.LessonStamina
	case ActionVariety:
		base = r.VarietyStamina
	case ActionWork:
		base = r.WorkStamina
	default:
		return 0
	}
	if !kenmin {
		return base
	}
	return int(math.Ceil(float64(base) * r.KenminCostFactor))
}

// CanAfford reports whether the player may spend cost stamina, honouring the
// ruleset's overdraft allowance.
func (r Ruleset) CanAfford(stamina, cost int) bool {
	if cost == 0 {
		return true
	}
	return stamina-cost >= -r.StaminaOverdraft
}

// ApplyAction 执行一次行动。被拒绝时返回原 state 与错误，不消耗行动力。
func (r Resolver) ApplyAction(s State, a ActionType) (State, error) {
	if s.Phase != PhasePlaying {
		return s, ErrNotPlaying
	}
	if s.IsGameOver {
		return s, ErrGameOver
	}
	if s.ActionsRemaining <= 0 {
		return s, ErrNoActionsLeft
	}
	if _, ok := ActionTypeDictionary[a]; !ok || a == ActionNone {
		return s, ErrUnknownAction
	}

	rs := r.Rules
	cost := rs.StaminaCost(a, s.Player.IsKenmin)
	if !rs.CanAfford(s.Player.Stats.Stamina, cost) {
		return s, fmt.Errorf("%w: need %d, have %d", ErrInsufficientStamina, cost, s.Player.Stats.Stamina)
	}

	next := s.Clone()
	st := &next.Player.Stats
	rnd := r.Env.Rand
	var entry LogEntry

	switch a {
	case ActionLesson:
		st.Performance += rs.LessonPerformance
		st.Popularity += roll(rnd, rs.LessonPopularity)
		st.Stamina -= cost
		entry = r.Env.entry("剧场", "努力成为剧场女神，汗水打湿了练习室的地面。", ColorPink)
	case ActionVariety:
		st.Variety += rs.VarietyVariety
		st.Love += rs.VarietyLove
		st.Stamina -= cost
		entry = r.Env.entry("综艺", "录制《AKBINGO!》，你的综艺感让工作人员印象深刻。", ColorPink)
	case ActionWork:
		st.Popularity += roll(rnd, rs.WorkPopularity)
		st.Exposure += roll(rnd, rs.WorkExposure)
		st.Stamina -= cost
		entry = r.Env.entry("外务", "全国握手会爆满，你极佳的对应能力圈粉无数。", ColorPink)
	case ActionBond:
		st.Mood = raiseCapped(st.Mood, rs.BondMood, StatSoftCap)
		entry = r.bond(&next)
	case ActionRest:
		st.Stamina = raiseCapped(st.Stamina, roll(rnd, rs.RestStamina), StatSoftCap)
		st.Mood = raiseCapped(st.Mood, roll(rnd, rs.RestMood), StatSoftCap)
		if rs.RestPopularityPenalty > 0 {
			st.Popularity = lowerFloored(st.Popularity, rs.RestPopularityPenalty)
		}
		entry = r.Env.entry("假期", "在家中彻底放松，充好了电。", ColorPink)
	}

	next.ActionsRemaining--
	next.Logs = pushLog(next.Logs, entry)
	return next, nil
}

// bond 随机选一名战友，羁绊 +BondGain；首次越过阈值时成立官方CP并获得一次性人气奖励。
func (r Resolver) bond(s *State) LogEntry {
	if len(s.Members) == 0 {
		return r.Env.entry("社交", "今天没有约到任何人，一个人在剧场附近散步。", ColorPink)
	}
	rs := r.Rules
	idx := r.Env.Rand.Intn(len(s.Members))
	m := &s.Members[idx]
	m.Bond += rs.BondGain
	if m.Bond >= rs.CPThreshold && !m.IsCP {
		m.IsCP = true
		s.Player.Stats.Popularity += roll(r.Env.Rand, rs.CPBonus)
		return r.Env.entry("社交", fmt.Sprintf("你与 %s 正式组成了官方CP，引发了粉丝热烈讨论！", m.Name), ColorPurple)
	}
	return r.Env.entry("社交", fmt.Sprintf("和 %s 一起去吃了下午茶，心情变好了。", m.Name), ColorPink)
}
