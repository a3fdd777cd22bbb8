package replay

import (
	"fmt"
	"strings"

	"idol-career/career"
)

const (
	commandAction  = "action"
	commandAdvance = "advance"
)

type normalizedCommand struct {
	advance bool
	action  career.ActionType
}

type normalizedSpec struct {
	rules      career.Ruleset
	playerName string
	seed       int64
	commands   []normalizedCommand
}

func normalizeSpec(spec CareerSpec) (normalizedSpec, error) {
	var out normalizedSpec

	rules, err := career.RulesetByName(spec.Ruleset)
	if err != nil {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_ruleset", Message: err.Error()}
	}
	out.rules = rules

	out.playerName = strings.TrimSpace(spec.PlayerName)
	if out.playerName == "" {
		out.playerName = career.DefaultPlayerName
	}
	out.seed = seedFromSpec(spec.RNG)

	if len(spec.Commands) == 0 {
		return out, &ReplayError{StepIndex: -1, Reason: "invalid_commands", Message: "at least one command is required"}
	}
	out.commands = make([]normalizedCommand, 0, len(spec.Commands))
	for i, c := range spec.Commands {
		switch strings.ToLower(strings.TrimSpace(c.Type)) {
		case commandAdvance:
			out.commands = append(out.commands, normalizedCommand{advance: true})
		case commandAction:
			a, ok := career.ParseAction(strings.ToLower(strings.TrimSpace(c.Action)))
			if !ok {
				return out, &ReplayError{
					StepIndex: int32(i),
					Reason:    "invalid_action",
					Message:   fmt.Sprintf("unknown action %q", c.Action),
				}
			}
			out.commands = append(out.commands, normalizedCommand{action: a})
		default:
			return out, &ReplayError{
				StepIndex: int32(i),
				Reason:    "invalid_command",
				Message:   fmt.Sprintf("unknown command type %q", c.Type),
			}
		}
	}
	return out, nil
}

// seedFromSpec 固定种子；未指定时使用 1，保证回放可复现
func seedFromSpec(rng *RNGSpec) int64 {
	if rng == nil || rng.Seed == 0 {
		return 1
	}
	return rng.Seed
}
