package career

import "fmt"

// ClassifyEvent 决定本季度结算的事件类型：先掷文春，未命中再按日历。
// 总是消耗一次 Float64。
func (r Resolver) ClassifyEvent(t GameTime) EventType {
	if chance(r.Env.Rand, r.Rules.ScandalChance) {
		return EventScandal
	}
	return r.Rules.CalendarEvent(t)
}

// CalendarEvent 不含随机覆盖的日历事件
func (r Ruleset) CalendarEvent(t GameTime) EventType {
	q := t.Quarter
	if q < 1 || q > QuartersPerYear {
		return EventDaily
	}
	if t.Year%2 == 1 {
		return r.OddYearCalendar[q-1]
	}
	return r.EvenYearCalendar[q-1]
}

// ResolveQuarter 对 ev 计算数值后果、推进时间、重置行动力并判定结束。
// 返回新 state 以及按发生顺序排列的摘要文本。
func (r Resolver) ResolveQuarter(s State, ev EventType) (State, []string, error) {
	if s.Phase != PhasePlaying {
		return s, nil, ErrNotPlaying
	}
	if s.IsGameOver {
		return s, nil, ErrGameOver
	}
	if s.ActionsRemaining > 0 {
		return s, nil, ErrActionsRemaining
	}

	next := s.Clone()
	var summary []string
	emit := func(tag, msg string, color LogColor) {
		next.Logs = pushLog(next.Logs, r.Env.entry(tag, msg, color))
		summary = append(summary, msg)
	}

	switch ev {
	case EventScandal:
		r.scandal(&next, emit)
	case EventElection:
		r.election(&next, emit)
	case EventSingle:
		r.single(&next, emit)
	case EventJanken:
		r.janken(&next, emit)
	case EventYearEnd:
		r.yearEnd(&next, emit)
	case EventDaily, EventTeamShuffle:
		// 仅剧情
	default:
		return s, nil, ErrInvalidState(fmt.Sprintf("unknown event type %d", ev))
	}

	next.Time = next.Time.next()
	next.ActionsRemaining = MaxActionsPerQuarter

	if reason := r.Rules.endReason(next); reason != EndNone {
		next.IsGameOver = true
		next.Phase = PhaseEnded
		next.EndReason = reason
		emit("毕业", farewell(reason, next.Player.Name), ColorGray)
	}
	return next, summary, nil
}

type emitFunc func(tag, msg string, color LogColor)

func (r Resolver) scandal(s *State, emit emitFunc) {
	st := &s.Player.Stats
	st.Popularity = lowerFloored(st.Popularity, r.Rules.ScandalPopularityLoss)
	st.Love = 0
	st.Mood -= r.Rules.ScandalMoodLoss // 不设下限，由结束判定处理
	emit("文春", "文春炮来袭！人气大跌，运营爱清零，心态受到重创。", ColorRed)
}

func (r Resolver) election(s *State, emit emitFunc) {
	rank := r.Rules.RankFor(s.Player.Stats.Popularity)
	s.Player.CurrentRank = rank
	if rank.IsTop() {
		s.Player.CenterCount++
		emit("总选举", fmt.Sprintf("总选举开票结果：%s！你登上了神殿的最高处！", rank), ColorGold)
		return
	}
	emit("总选举", fmt.Sprintf("总选举开票结果：%s。", rank), ColorBlue)
}

// SingleScore 单曲选拔的综合评分
func (r Ruleset) SingleScore(st Stats) float64 {
	return float64(st.Popularity)/r.SinglePopularityDivisor +
		float64(st.Love)*r.SingleLoveWeight +
		float64(st.Performance)*r.SinglePerformanceWeight
}

func (r Resolver) single(s *State, emit emitFunc) {
	score := r.Rules.SingleScore(s.Player.Stats)
	switch {
	case score >= r.Rules.SingleCenterScore:
		s.Player.SingleStatus = SingleCenter
		s.Player.CenterCount++
		emit("单曲", "新单曲选拔发表：你被选为 Center！", ColorGold)
	case score >= r.Rules.SingleSenbatsuScore:
		s.Player.SingleStatus = SingleSenbatsu
		emit("单曲", "新单曲选拔发表：你进入了选拔阵容。", ColorBlue)
	default:
		s.Player.SingleStatus = SingleNone
		emit("单曲", "新单曲选拔发表：这次没有你的名字，继续在剧场努力吧。", ColorGray)
	}
}

// JankenQuality 猜拳胜出后的表现评分
func (r Ruleset) JankenQuality(st Stats) float64 {
	return float64(st.Visual+st.Performance+st.Popularity/r.JankenQualityPopScale) / 3
}

func (r Resolver) janken(s *State, emit emitFunc) {
	if !chance(r.Env.Rand, r.Rules.JankenWinChance) {
		emit("猜拳", "猜拳大会早早出局，下次再来。", ColorGray)
		return
	}
	p := &s.Player
	p.CenterCount++
	p.SingleStatus = SingleCenter
	if r.Rules.JankenQuality(p.Stats) >= r.Rules.JankenQualityMin {
		p.Stats.Popularity += r.Rules.JankenWinPopularity
		emit("猜拳", "猜拳大会优胜！作为 Center 的表现征服了所有人。", ColorGold)
		return
	}
	p.Stats.Popularity = lowerFloored(p.Stats.Popularity, r.Rules.JankenFlopPopularity)
	emit("猜拳", "猜拳大会优胜，但实力不足以撑起 Center，舆论一片哗然。", ColorRed)
}

// yearEnd 三个子事件互相独立，全部判定。
func (r Resolver) yearEnd(s *State, emit emitFunc) {
	rs := r.Rules
	p := &s.Player

	if p.Stats.Popularity >= rs.YearEndRankingThreshold {
		p.Stats.Popularity += rs.YearEndRankingBonus
		emit("年度排名", "年度人气排名名列前茅，获得额外曝光。", ColorGold)
	}

	if chance(r.Env.Rand, rs.PromotionChance) {
		if p.Stats.Performance >= rs.KenminPerformanceMin && p.Stats.Love >= rs.KenminLoveMin && !p.IsKenmin {
			p.IsKenmin = true
			emit("兼任", "运营宣布你将兼任姐妹团，行程将更加繁忙。", ColorPurple)
		} else if groups := r.Tables.SisterGroups; len(groups) > 0 {
			p.Team = groups[r.Env.Rand.Intn(len(groups))]
			emit("移籍", fmt.Sprintf("组阁祭上宣布你将移籍至 %s。", p.Team), ColorPurple)
		}
	}

	if p.Stats.Love >= rs.TVLoveMin || p.Stats.Popularity >= rs.TVPopularityMin {
		p.Stats.Exposure += rs.TVExposureGain
		p.Stats.Popularity += rs.TVPopularityGain
		emit("红白", "入选红白歌会出演成员，全国观众都记住了你。", ColorGold)
	}
}

// endReason 按 年限 > 体力 > 心态 的顺序给出第一个满足的结束条件
func (r Ruleset) endReason(s State) EndReason {
	switch {
	case s.Time.Year > r.CareerYears:
		return EndGraduated
	case s.Player.Stats.Stamina <= r.StaminaFloor:
		return EndBurnout
	case s.Player.Stats.Mood <= r.MoodFloor:
		return EndBreakdown
	}
	return EndNone
}

func farewell(reason EndReason, name string) string {
	switch reason {
	case EndGraduated:
		return fmt.Sprintf("%s 迎来了毕业公演，偶像生涯圆满落幕。", name)
	case EndBurnout:
		return fmt.Sprintf("%s 因体力透支宣布暂停活动，生涯就此结束。", name)
	default:
		return fmt.Sprintf("%s 的心态彻底崩溃，宣布退出组合。", name)
	}
}
