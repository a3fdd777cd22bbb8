// Package session runs one career per actor goroutine. Every command for a
// playthrough goes through the actor queue; a quarter advance runs beside
// the queue so snapshots stay available while the narrative is generated.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"idol-career/career"
	"idol-career/roster"
	"idol-career/wire"
)

// NoticeWelcome notice code carried by the start-of-career greeting.
const NoticeWelcome = "welcome"

var (
	ErrSessionClosed = errors.New("session closed")
	errDeferred      = errors.New("response deferred")
)

// EventType 会话 actor 的消息类型
type EventType int

const (
	EventStart EventType = iota
	EventAction
	EventAdvance
	EventRestart
	EventSnapshot
	EventClose
	eventAdvanceDone
)

type Event struct {
	Type      EventType
	Action    career.ActionType
	Timestamp time.Time
	Response  chan error

	report *career.QuarterReport
	err    error
}

// EndInfo is emitted once per finished career.
type EndInfo struct {
	SessionID string
	CareerID  string
	Snapshot  career.Snapshot
	EndedAt   time.Time
}

type EndHook func(info EndInfo)

// Sink receives encoded server frames. It must not block for long.
type Sink func(data []byte)

type Session struct {
	ID string

	mu       sync.RWMutex
	game     *career.Game
	careerID string
	closed   bool
	stopOnce sync.Once

	events chan Event
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	serverSeq  uint64
	lastActive time.Time
	sink       Sink
	sinkOwner  uint64 // 当前 sink 的持有者，Detach 只认这个 token
	attachSeq  uint64

	advanceResp chan error
	endHooks    []EndHook
}

// New creates the session and starts its actor. The career stays in the
// start phase until an EventStart arrives.
func New(id string, cfg career.Config, narrator career.Narrator) (*Session, error) {
	game, err := career.NewGame(cfg, narrator)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:         id,
		game:       game,
		careerID:   uuid.NewString(),
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		lastActive: time.Now(),
	}
	go s.run()
	log.Printf("[Session %s] Created (ruleset=%s)", id, cfg.Rules.Name)
	return s, nil
}

func (s *Session) run() {
	for {
		select {
		case event := <-s.events:
			err := s.handleEvent(event)
			if errors.Is(err, errDeferred) {
				continue
			}
			if event.Response != nil {
				event.Response <- err
			}
		case <-s.done:
			log.Printf("[Session %s] Actor stopped", s.ID)
			return
		}
	}
}

func (s *Session) handleEvent(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed && e.Type != EventClose {
		return ErrSessionClosed
	}
	if e.Type != eventAdvanceDone {
		s.lastActive = e.Timestamp
	}

	switch e.Type {
	case EventStart:
		return s.handleStart()
	case EventAction:
		return s.handleAction(e.Action)
	case EventAdvance:
		return s.handleAdvance(e.Response)
	case eventAdvanceDone:
		s.handleAdvanceDone(e.report, e.err)
		return nil
	case EventRestart:
		return s.handleRestart()
	case EventSnapshot:
		s.sendSnapshotLocked()
		return nil
	case EventClose:
		s.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (s *Session) handleStart() error {
	if err := s.game.Start(); err != nil {
		return err
	}
	log.Printf("[Session %s] Career %s started", s.ID, s.careerID)
	s.sendSnapshotLocked()
	s.sendWelcomeLocked()
	return nil
}

func (s *Session) handleRestart() error {
	if err := s.game.Restart(); err != nil {
		return err
	}
	s.careerID = uuid.NewString()
	if err := s.game.Start(); err != nil {
		return err
	}
	log.Printf("[Session %s] Career restarted as %s", s.ID, s.careerID)
	s.sendSnapshotLocked()
	s.sendWelcomeLocked()
	return nil
}

// sendWelcomeLocked 开局欢迎提示，走 notice 帧，不进生涯日志
func (s *Session) sendWelcomeLocked() {
	team := roster.Team(s.game.Snapshot().Player.Team)
	s.sendLocked(wire.TypeNotice, wire.NoticePayload(NoticeWelcome, career.WelcomeMessage(team)))
}

func (s *Session) handleAction(a career.ActionType) error {
	entry, err := s.game.Act(a)
	if err != nil {
		return err
	}
	payload, err := wire.LogToStruct(entry)
	if err != nil {
		return err
	}
	s.sendLocked(wire.TypeAction, payload)
	s.sendSnapshotLocked()
	return nil
}

// handleAdvance starts the quarter on its own goroutine. The caller's
// response channel is answered from handleAdvanceDone.
func (s *Session) handleAdvance(resp chan error) error {
	if s.advanceResp != nil {
		return career.ErrQuarterInFlight
	}
	snap := s.game.Snapshot()
	if snap.Phase != career.PhasePlaying {
		return career.ErrNotPlaying
	}
	if snap.ActionsRemaining > 0 {
		return career.ErrActionsRemaining
	}
	s.advanceResp = resp
	go func() {
		report, err := s.game.AdvanceQuarter(s.ctx)
		select {
		case s.events <- Event{Type: eventAdvanceDone, report: report, err: err}:
		case <-s.done:
		}
	}()
	return errDeferred
}

func (s *Session) handleAdvanceDone(report *career.QuarterReport, err error) {
	resp := s.advanceResp
	s.advanceResp = nil
	defer func() {
		if resp != nil {
			resp <- err
		}
	}()
	if err != nil {
		log.Printf("[Session %s] Quarter advance failed: %v", s.ID, err)
		return
	}

	payload, encErr := wire.ReportToStruct(report)
	if encErr != nil {
		log.Printf("[Session %s] Failed to encode report: %v", s.ID, encErr)
	} else {
		s.sendLocked(wire.TypeQuarter, payload)
	}
	snap := s.game.Snapshot()
	s.sendSnapshotPayloadLocked(snap)

	if report.Ended {
		log.Printf("[Session %s] Career %s ended: %s at %d-%d", s.ID, s.careerID, report.EndReason, snap.Year, snap.Quarter)
		if endPayload, err := wire.EndToStruct(snap); err == nil {
			s.sendLocked(wire.TypeEnd, endPayload)
		}
		s.dispatchEndHooksLocked(snap)
	}
}

func (s *Session) dispatchEndHooksLocked(snap career.Snapshot) {
	if len(s.endHooks) == 0 {
		return
	}
	info := EndInfo{
		SessionID: s.ID,
		CareerID:  s.careerID,
		Snapshot:  snap,
		EndedAt:   time.Now().UTC(),
	}
	hooks := append([]EndHook(nil), s.endHooks...)
	for _, hook := range hooks {
		go func(cb EndHook) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Session %s] end hook panic: %v", s.ID, r)
				}
			}()
			cb(info)
		}(hook)
	}
}

// SubmitEvent sends an event to the actor and waits for its result.
func (s *Session) SubmitEvent(e Event) error {
	e.Timestamp = time.Now()
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrSessionClosed
	}

	select {
	case s.events <- e:
	case <-s.done:
		return ErrSessionClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-s.done:
		return ErrSessionClosed
	}
}

// Stop abandons any in-flight quarter and shuts the actor down.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	s.closed = true
	s.stopOnce.Do(func() {
		s.cancel()
		close(s.done)
	})
}

// Attach routes frames to sink, replacing any previous sink. The returned
// token is needed to Detach.
func (s *Session) Attach(sink Sink) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachSeq++
	s.sinkOwner = s.attachSeq
	s.sink = sink
	s.lastActive = time.Now()
	return s.sinkOwner
}

// Detach clears the sink only while token still owns it, so a connection
// torn down after a resume cannot cut off its successor.
func (s *Session) Detach(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == 0 || token != s.sinkOwner {
		return false
	}
	s.sink = nil
	s.sinkOwner = 0
	s.lastActive = time.Now()
	return true
}

func (s *Session) AddEndHook(hook EndHook) {
	if hook == nil {
		return
	}
	s.mu.Lock()
	s.endHooks = append(s.endHooks, hook)
	s.mu.Unlock()
}

// IsIdleFor reports whether the session can be reaped: closed, or without
// activity for ttl while detached or ended.
func (s *Session) IsIdleFor(ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return true
	}
	if s.advanceResp != nil {
		return false
	}
	if s.sink != nil && !s.game.Snapshot().Ended {
		return false
	}
	return time.Since(s.lastActive) >= ttl
}

func (s *Session) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Session) CareerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.careerID
}

// Snapshot is safe to call while a quarter is in flight.
func (s *Session) Snapshot() career.Snapshot {
	return s.game.Snapshot()
}

// Notice sends a user-visible notice frame, e.g. a rejected command.
func (s *Session) Notice(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(wire.TypeNotice, wire.NoticePayload(code, message))
}

func (s *Session) sendSnapshotLocked() {
	s.sendSnapshotPayloadLocked(s.game.Snapshot())
}

func (s *Session) sendSnapshotPayloadLocked(snap career.Snapshot) {
	payload, err := wire.SnapshotToStruct(snap)
	if err != nil {
		log.Printf("[Session %s] Failed to encode snapshot: %v", s.ID, err)
		return
	}
	s.sendLocked(wire.TypeSnapshot, payload)
}

func (s *Session) sendLocked(typ string, payload *structpb.Struct) {
	if s.sink == nil {
		return
	}
	s.serverSeq++
	data, err := wire.MarshalServer(&wire.ServerEnvelope{
		SessionID:  s.ID,
		ServerSeq:  s.serverSeq,
		ServerTsMs: wire.NowMs(),
		Type:       typ,
		Payload:    payload,
	})
	if err != nil {
		log.Printf("[Session %s] Failed to marshal message: %v", s.ID, err)
		return
	}
	s.sink(data)
}
