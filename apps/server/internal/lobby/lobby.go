package lobby

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"idol-career/apps/server/internal/archive"
	"idol-career/apps/server/internal/session"
	"idol-career/career"
)

// Options 大厅依赖
type Options struct {
	// NewConfig returns the engine config for each new session.
	NewConfig func() (career.Config, error)
	Narrator  career.Narrator
	// Archive may be nil; finished careers are then only logged.
	Archive archive.Service
	IdleTTL time.Duration
}

// Lobby maps session ids to their actors.
type Lobby struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	opts     Options
}

func New(opts Options) *Lobby {
	if opts.NewConfig == nil {
		opts.NewConfig = func() (career.Config, error) { return career.DefaultConfig(), nil }
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	return &Lobby{
		sessions: make(map[string]*session.Session),
		opts:     opts,
	}
}

// Create starts a new session actor with a fresh id.
func (l *Lobby) Create() (*session.Session, error) {
	cfg, err := l.opts.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("career config: %w", err)
	}
	id := uuid.NewString()
	s, err := session.New(id, cfg, l.opts.Narrator)
	if err != nil {
		return nil, err
	}
	s.AddEndHook(l.archiveCareer)

	l.mu.Lock()
	l.sessions[id] = s
	total := len(l.sessions)
	l.mu.Unlock()

	log.Printf("[Lobby] Session %s created (active=%d)", id, total)
	return s, nil
}

func (l *Lobby) Get(id string) *session.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessions[id]
}

// List returns all session ids, sorted.
func (l *Lobby) List() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.sessions))
	for id := range l.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Remove stops and forgets a session.
func (l *Lobby) Remove(id string) {
	l.mu.Lock()
	s := l.sessions[id]
	delete(l.sessions, id)
	l.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// ReapIdle stops every session idle for longer than the configured TTL and
// returns how many were removed.
func (l *Lobby) ReapIdle() int {
	l.mu.Lock()
	var victims []*session.Session
	for id, s := range l.sessions {
		if s.IsIdleFor(l.opts.IdleTTL) {
			victims = append(victims, s)
			delete(l.sessions, id)
		}
	}
	l.mu.Unlock()

	for _, s := range victims {
		s.Stop()
		log.Printf("[Lobby] Reaped idle session %s", s.ID)
	}
	return len(victims)
}

// RunReaper calls ReapIdle every interval until ctx is done.
func (l *Lobby) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.ReapIdle()
		}
	}
}

// Close stops every session.
func (l *Lobby) Close() {
	l.mu.Lock()
	sessions := l.sessions
	l.sessions = make(map[string]*session.Session)
	l.mu.Unlock()
	for _, s := range sessions {
		s.Stop()
	}
}

func (l *Lobby) archiveCareer(info session.EndInfo) {
	if l.opts.Archive == nil {
		log.Printf("[Lobby] Career %s ended (%s), archive disabled", info.CareerID, info.Snapshot.EndReason)
		return
	}
	rec, err := archive.RecordFromSnapshot(info.CareerID, info.Snapshot, info.EndedAt)
	if err != nil {
		log.Printf("[Lobby] Build archive record failed: career=%s err=%v", info.CareerID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.opts.Archive.Record(ctx, rec); err != nil {
		log.Printf("[Lobby] Archive career failed: career=%s err=%v", info.CareerID, err)
		return
	}
	log.Printf("[Lobby] Career %s archived (session=%s, reason=%s)", info.CareerID, info.SessionID, rec.EndReason)
}
