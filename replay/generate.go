package replay

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"idol-career/career"
	"idol-career/narrative"
	"idol-career/roster"
	"idol-career/wire"
)

const defaultCareerID = "replay_local"

// replayEpoch 回放使用的固定时钟起点，每条日志递增一秒
var replayEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func GenerateReplayTape(spec CareerSpec) (*ReplayTape, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	var ticks int64
	var ids int
	game, err := career.NewGame(career.Config{
		Rules:      ns.rules,
		Tables:     roster.Default(),
		PlayerName: ns.playerName,
		Seed:       ns.seed,
		Now: func() time.Time {
			ticks++
			return replayEpoch.Add(time.Duration(ticks) * time.Second)
		},
		NewID: func() string {
			ids++
			return fmt.Sprintf("log_%04d", ids)
		},
	}, narrative.Static{})
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}
	if err := game.Start(); err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "start_failed", Message: err.Error()}
	}

	builder := newTapeBuilder(defaultCareerID)
	if err := builder.addSnapshot(-1, game.Snapshot()); err != nil {
		return nil, err
	}

	for stepIdx, cmd := range ns.commands {
		step := int32(stepIdx)
		before := game.Snapshot()
		if before.Ended {
			return nil, &ReplayError{
				StepIndex: step,
				Reason:    "career_ended",
				Message:   "career has already ended; no further commands are allowed",
				Expected:  expectedState(before),
			}
		}

		if cmd.advance {
			report, err := game.AdvanceQuarter(context.Background())
			if err != nil {
				return nil, &ReplayError{
					StepIndex: step,
					Reason:    reasonFor(err),
					Message:   err.Error(),
					Expected:  expectedState(before),
				}
			}
			if err := builder.addQuarter(step, report); err != nil {
				return nil, err
			}
		} else {
			entry, err := game.Act(cmd.action)
			if err != nil {
				return nil, &ReplayError{
					StepIndex: step,
					Reason:    reasonFor(err),
					Message:   fmt.Sprintf("action %s rejected: %v", cmd.action, err),
					Expected:  expectedState(before),
				}
			}
			if err := builder.addAction(step, entry); err != nil {
				return nil, err
			}
		}

		after := game.Snapshot()
		if err := builder.addSnapshot(step, after); err != nil {
			return nil, err
		}
		if after.Ended {
			if err := builder.addEnd(step, after); err != nil {
				return nil, err
			}
		}
	}

	return &ReplayTape{
		TapeVersion: 1,
		CareerID:    builder.careerID,
		Ruleset:     ns.rules.Name,
		Events:      builder.events,
	}, nil
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, career.ErrInsufficientStamina):
		return "insufficient_stamina"
	case errors.Is(err, career.ErrNoActionsLeft):
		return "no_actions_left"
	case errors.Is(err, career.ErrActionsRemaining):
		return "actions_remaining"
	case errors.Is(err, career.ErrNotPlaying), errors.Is(err, career.ErrGameOver):
		return "career_ended"
	default:
		return "command_apply_failed"
	}
}

func expectedState(s career.Snapshot) *ExpectedState {
	return &ExpectedState{
		Phase:            s.Phase.String(),
		Year:             s.Year,
		Quarter:          s.Quarter,
		ActionsRemaining: s.ActionsRemaining,
		Stamina:          s.Player.Stats.Stamina,
	}
}

type tapeBuilder struct {
	careerID string
	seq      uint64
	events   []ReplayEvent
}

func newTapeBuilder(careerID string) *tapeBuilder {
	return &tapeBuilder{
		careerID: careerID,
		events:   make([]ReplayEvent, 0, 64),
	}
}

func (b *tapeBuilder) addSnapshot(step int32, snap career.Snapshot) error {
	payload, err := wire.SnapshotToStruct(snap)
	if err != nil {
		return &ReplayError{StepIndex: step, Reason: "encode_failed", Message: err.Error()}
	}
	return b.pushEnvelope(step, wire.TypeSnapshot, payload)
}

func (b *tapeBuilder) addAction(step int32, entry career.LogEntry) error {
	payload, err := wire.LogToStruct(entry)
	if err != nil {
		return &ReplayError{StepIndex: step, Reason: "encode_failed", Message: err.Error()}
	}
	return b.pushEnvelope(step, wire.TypeAction, payload)
}

func (b *tapeBuilder) addQuarter(step int32, report *career.QuarterReport) error {
	payload, err := wire.ReportToStruct(report)
	if err != nil {
		return &ReplayError{StepIndex: step, Reason: "encode_failed", Message: err.Error()}
	}
	return b.pushEnvelope(step, wire.TypeQuarter, payload)
}

func (b *tapeBuilder) addEnd(step int32, snap career.Snapshot) error {
	payload, err := wire.EndToStruct(snap)
	if err != nil {
		return &ReplayError{StepIndex: step, Reason: "encode_failed", Message: err.Error()}
	}
	return b.pushEnvelope(step, wire.TypeEnd, payload)
}

func (b *tapeBuilder) pushEnvelope(step int32, typ string, payload *structpb.Struct) error {
	b.seq++
	bin, err := wire.MarshalServer(&wire.ServerEnvelope{
		SessionID:  b.careerID,
		ServerSeq:  b.seq,
		ServerTsMs: int64(b.seq),
		Type:       typ,
		Payload:    payload,
	})
	if err != nil {
		return &ReplayError{StepIndex: step, Reason: "encode_failed", Message: err.Error()}
	}
	b.events = append(b.events, ReplayEvent{
		Type:        typ,
		Seq:         b.seq,
		Step:        step,
		EnvelopeB64: base64.StdEncoding.EncodeToString(bin),
	})
	return nil
}
