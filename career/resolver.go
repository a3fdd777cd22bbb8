package career

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"idol-career/roster"
)

// Env 转换函数的外部依赖。Rand 必填；Now/NewID 为空时使用 time.Now / uuid。
type Env struct {
	Rand  Source
	Now   func() time.Time
	NewID func() string
}

func (e Env) entry(tag, msg string, color LogColor) LogEntry {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	newID := uuid.NewString
	if e.NewID != nil {
		newID = e.NewID
	}
	return LogEntry{
		ID:        newID(),
		Tag:       tag,
		Message:   msg,
		Color:     color,
		Timestamp: now(),
	}
}

// Resolver 持有规则、参考数据与随机源，提供 (state, command) -> state' 的纯转换。
// 除了消耗 Env.Rand 外不产生任何副作用。
type Resolver struct {
	Rules  Ruleset
	Tables roster.Tables
	Env    Env
}

const defaultRole = "正式成员"

// NewState startGame：随机队伍、随机初始属性、无放回抽取战友名单。
func (r Resolver) NewState(name string) State {
	rnd := r.Env.Rand
	rs := r.Rules
	base := r.Tables.Baseline

	team := r.Tables.Teams[rnd.Intn(len(r.Tables.Teams))]
	names := draw(rnd, r.Tables.Names, rs.RosterSize)
	members := make([]Member, 0, len(names))
	for _, n := range names {
		members = append(members, Member{Name: n, Bond: roll(rnd, rs.StartBond)})
	}

	stats := Stats{
		Visual:      roll(rnd, rs.StartVisual),
		Performance: roll(rnd, rs.StartPerformance),
		Variety:     base.Variety,
		Popularity:  roll(rnd, rs.StartPopularity),
		Stamina:     base.Stamina,
		Mood:        base.Mood,
		Love:        base.Love,
		Exposure:    base.Exposure,
	}

	return State{
		Player: Player{
			Name:        name,
			Team:        team,
			Role:        defaultRole,
			Stats:       stats,
			CurrentRank: rs.InitialRank(),
		},
		Members:          members,
		Time:             GameTime{Year: 1, Quarter: 1},
		ActionsRemaining: MaxActionsPerQuarter,
		Logs:             []LogEntry{},
		Phase:            PhasePlaying,
	}
}

// WelcomeMessage 开局提示文案
func WelcomeMessage(team roster.Team) string {
	return fmt.Sprintf("欢迎加入AKB48 Group！你被分配到了 %s。努力开启你的偶像生涯吧！", team)
}
