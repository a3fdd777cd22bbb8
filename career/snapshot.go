package career

type MemberSnapshot struct {
	Name string
	Bond int
	IsCP bool
}

type PlayerSnapshot struct {
	Name         string
	Team         string
	Role         string
	Stats        Stats
	Rank         Rank
	CenterCount  int
	IsKenmin     bool
	SingleStatus SingleStatus
}

// Snapshot 只读投影，可以安全地跨 goroutine 传递。
type Snapshot struct {
	Ruleset string
	Phase   Phase
	Ended   bool

	EndReason EndReason
	Advancing bool

	Year             int
	Quarter          int
	ActionsRemaining int

	Player  PlayerSnapshot
	Members []MemberSnapshot
	Logs    []LogEntry
}

// SnapshotOf projects s without touching any live game.
func SnapshotOf(s State, ruleset string) Snapshot {
	p := s.Player
	snap := Snapshot{
		Ruleset:          ruleset,
		Phase:            s.Phase,
		Ended:            s.IsGameOver,
		EndReason:        s.EndReason,
		Year:             s.Time.Year,
		Quarter:          s.Time.Quarter,
		ActionsRemaining: s.ActionsRemaining,
		Player: PlayerSnapshot{
			Name:         p.Name,
			Team:         string(p.Team),
			Role:         p.Role,
			Stats:        p.Stats,
			Rank:         p.CurrentRank,
			CenterCount:  p.CenterCount,
			IsKenmin:     p.IsKenmin,
			SingleStatus: p.SingleStatus,
		},
		Members: make([]MemberSnapshot, 0, len(s.Members)),
		Logs:    append([]LogEntry{}, s.Logs...),
	}
	for _, m := range s.Members {
		snap.Members = append(snap.Members, MemberSnapshot{Name: m.Name, Bond: m.Bond, IsCP: m.IsCP})
	}
	return snap
}

// CPCount 已成立的官方CP数量
func (s Snapshot) CPCount() int {
	n := 0
	for _, m := range s.Members {
		if m.IsCP {
			n++
		}
	}
	return n
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	snap := SnapshotOf(g.state, g.cfg.Rules.Name)
	snap.Advancing = g.advancing
	return snap
}
