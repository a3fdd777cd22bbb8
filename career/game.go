package career

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

// QuarterReport 一次季度推进的展示结果
type QuarterReport struct {
	Event     EventType
	Label     string
	Narrative Narrative
	Fallback  bool     // 剧情服务失败，使用了固定文本
	Summary   []string // 数值结算产生的日志文本，按发生顺序

	Time      GameTime // 推进后的时间
	Ended     bool
	EndReason EndReason
}

// Text 合并剧情与结算摘要
func (r *QuarterReport) Text() string {
	var b strings.Builder
	b.WriteString(r.Narrative.Title)
	b.WriteString("\n")
	b.WriteString(r.Narrative.Description)
	for _, line := range r.Summary {
		b.WriteString("\n· ")
		b.WriteString(line)
	}
	return b.String()
}

// Game 持有当前 State 并分发命令的有状态适配器。
// 所有数值变化都委托给 Resolver；Game 只负责阶段门控与互斥。
type Game struct {
	cfg      Config
	resolver Resolver
	narrator Narrator

	mu sync.Mutex

	state     State
	advancing bool // 季度推进进行中，期间拒绝任何命令

	lastReport *QuarterReport
}

// NewGame creates a game in the start phase. narrator may be nil, in which
// case every quarter uses FallbackNarrative.
func NewGame(cfg Config, narrator Narrator) (*Game, error) {
	if cfg.PlayerName == "" {
		cfg.PlayerName = DefaultPlayerName
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Game{
		cfg:      cfg,
		resolver: cfg.resolver(),
		narrator: narrator,
		state:    State{Phase: PhaseStart},
	}, nil
}

func (g *Game) Rules() Ruleset { return g.cfg.Rules }

// Start start -> playing
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Phase != PhaseStart {
		return ErrAlreadyStarted
	}
	g.state = g.resolver.NewState(g.cfg.PlayerName)
	g.lastReport = nil
	return nil
}

// Restart ended -> start，不保留任何状态。
func (g *Game) Restart() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.advancing {
		return ErrQuarterInFlight
	}
	if g.state.Phase != PhaseEnded {
		return ErrNotEnded
	}
	g.state = State{Phase: PhaseStart}
	g.lastReport = nil
	return nil
}

// Act applies one action and returns the log entry it produced.
func (g *Game) Act(a ActionType) (LogEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.advancing {
		return LogEntry{}, ErrQuarterInFlight
	}
	next, err := g.resolver.ApplyAction(g.state, a)
	if err != nil {
		return LogEntry{}, err
	}
	g.state = next
	return next.Logs[0], nil
}

// AdvanceQuarter 结算本季度。剧情请求是唯一的挂起点，期间不持锁，但 advancing
// 标记会拒绝其他命令。ctx 取消时返回 ErrQuarterAbandoned，状态保持不变。
func (g *Game) AdvanceQuarter(ctx context.Context) (*QuarterReport, error) {
	g.mu.Lock()
	if g.advancing {
		g.mu.Unlock()
		return nil, ErrQuarterInFlight
	}
	if err := g.checkAdvanceLocked(); err != nil {
		g.mu.Unlock()
		return nil, err
	}
	ev := g.resolver.ClassifyEvent(g.state.Time)
	g.advancing = true
	snap := g.snapshotLocked()
	g.mu.Unlock()

	narrative, fallback, err := g.narrate(ctx, snap, ev)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.advancing = false
	if err != nil {
		return nil, err
	}

	next, summary, err := g.resolver.ResolveQuarter(g.state, ev)
	if err != nil {
		return nil, err
	}
	g.state = next
	g.lastReport = &QuarterReport{
		Event:     ev,
		Label:     ev.String(),
		Narrative: narrative,
		Fallback:  fallback,
		Summary:   summary,
		Time:      next.Time,
		Ended:     next.IsGameOver,
		EndReason: next.EndReason,
	}
	return g.lastReport, nil
}

func (g *Game) checkAdvanceLocked() error {
	if g.state.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	if g.state.IsGameOver {
		return ErrGameOver
	}
	if g.state.ActionsRemaining > 0 {
		return ErrActionsRemaining
	}
	return nil
}

type narrateResult struct {
	n   Narrative
	err error
}

// narrate 调用剧情服务。失败、panic、字段缺失、超时都替换为 FallbackNarrative；
// 只有调用方放弃（ctx 取消）才返回错误。
func (g *Game) narrate(ctx context.Context, snap Snapshot, ev EventType) (Narrative, bool, error) {
	if err := ctx.Err(); err != nil {
		return Narrative{}, false, fmt.Errorf("%w: %v", ErrQuarterAbandoned, err)
	}
	if g.narrator == nil {
		return FallbackNarrative, true, nil
	}

	nctx, cancel := ctx, context.CancelFunc(func() {})
	if g.cfg.NarrativeTimeout > 0 {
		nctx, cancel = context.WithTimeout(ctx, g.cfg.NarrativeTimeout)
	}
	defer cancel()

	ch := make(chan narrateResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- narrateResult{err: fmt.Errorf("narrator panic: %v", r)}
			}
		}()
		n, err := g.narrator.Narrate(nctx, snap, ev)
		ch <- narrateResult{n: n, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			if ctx.Err() != nil {
				return Narrative{}, false, fmt.Errorf("%w: %v", ErrQuarterAbandoned, ctx.Err())
			}
			log.Printf("[Career] narrative for %s failed, using fallback: %v", ev, res.err)
			return FallbackNarrative, true, nil
		}
		if !res.n.Complete() {
			log.Printf("[Career] narrative for %s incomplete, using fallback", ev)
			return FallbackNarrative, true, nil
		}
		return res.n, false, nil
	case <-nctx.Done():
		if ctx.Err() != nil {
			return Narrative{}, false, fmt.Errorf("%w: %v", ErrQuarterAbandoned, ctx.Err())
		}
		log.Printf("[Career] narrative for %s timed out after %s, using fallback", ev, g.cfg.NarrativeTimeout)
		return FallbackNarrative, true, nil
	}
}

// State returns a deep copy of the current state.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Clone()
}

// LastReport 最近一次季度推进的结果，开局或重开后为 nil
func (g *Game) LastReport() *QuarterReport {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastReport
}
