package career

import (
	"time"

	"idol-career/roster"
)

type Stats struct {
	Visual      int
	Performance int
	Variety     int
	Popularity  int
	Stamina     int
	Mood        int
	Love        int // 运营爱
	Exposure    int
}

// Member 剧场战友。名单在开局确定，之后只有 Bond/IsCP 会变化。
type Member struct {
	Name string
	Bond int
	IsCP bool
}

type Player struct {
	Name         string
	Team         roster.Team
	Role         string
	Stats        Stats
	CurrentRank  Rank
	CenterCount  int
	IsKenmin     bool // 兼任
	SingleStatus SingleStatus
	HasScandal   bool // reserved
}

// GameTime 第 Year 年第 Quarter 季度
type GameTime struct {
	Year    int
	Quarter int
}

// next 季度 +1，超过 4 回到 1 并进入下一年
func (t GameTime) next() GameTime {
	t.Quarter++
	if t.Quarter > QuartersPerYear {
		t.Quarter = 1
		t.Year++
	}
	return t
}

type LogEntry struct {
	ID        string
	Tag       string
	Message   string
	Color     LogColor
	Timestamp time.Time
}

// State 一局游戏的完整快照。转换函数总是返回新的 State，不修改入参。
type State struct {
	Player           Player
	Members          []Member
	Time             GameTime
	ActionsRemaining int
	Logs             []LogEntry // newest first
	IsGameOver       bool
	Phase            Phase
	EndReason        EndReason
}

// Clone 深拷贝
func (s State) Clone() State {
	out := s
	if s.Members != nil {
		out.Members = append(make([]Member, 0, len(s.Members)), s.Members...)
	}
	if s.Logs != nil {
		out.Logs = append(make([]LogEntry, 0, len(s.Logs)), s.Logs...)
	}
	return out
}

// CPCount 已成立官方CP的人数
func (s State) CPCount() int {
	n := 0
	for _, m := range s.Members {
		if m.IsCP {
			n++
		}
	}
	return n
}

// pushLog 头插并截断到 MaxLogEntries
func pushLog(logs []LogEntry, e LogEntry) []LogEntry {
	keep := len(logs)
	if keep > MaxLogEntries-1 {
		keep = MaxLogEntries - 1
	}
	out := make([]LogEntry, 0, keep+1)
	out = append(out, e)
	return append(out, logs[:keep]...)
}

// raiseCapped 增加属性并在软上限处截断；已经高于上限的值不会被拉低。
func raiseCapped(v, delta, cap int) int {
	n := v + delta
	if n > cap {
		if v > cap {
			return v
		}
		return cap
	}
	return n
}

// lowerFloored 扣减并保持不低于 0
func lowerFloored(v, delta int) int {
	n := v - delta
	if n < 0 {
		return 0
	}
	return n
}
