package wire

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"idol-career/career"
)

type CommandType string

const (
	CmdStart    CommandType = "start"
	CmdAction   CommandType = "action"
	CmdAdvance  CommandType = "advance"
	CmdRestart  CommandType = "restart"
	CmdSnapshot CommandType = "snapshot"
)

// Command 客户端上行命令
type Command struct {
	Type   CommandType
	Action career.ActionType // CmdAction only
	Seq    uint64
}

func (c Command) Validate() error {
	switch c.Type {
	case CmdStart, CmdAdvance, CmdRestart, CmdSnapshot:
		return nil
	case CmdAction:
		if c.Action == career.ActionNone {
			return fmt.Errorf("wire: action command without action")
		}
		return nil
	default:
		return fmt.Errorf("wire: unknown command %q", c.Type)
	}
}

// MarshalCommand encodes a client command.
func MarshalCommand(c Command) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	fields := map[string]any{
		"type": string(c.Type),
		"seq":  float64(c.Seq),
	}
	if c.Type == CmdAction {
		fields["action"] = c.Action.String()
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(s)
}

// UnmarshalCommand decodes and validates a client frame.
func UnmarshalCommand(data []byte) (Command, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return Command{}, fmt.Errorf("wire: decode command: %w", err)
	}
	f := s.GetFields()
	c := Command{
		Type: CommandType(strings.ToLower(f["type"].GetStringValue())),
		Seq:  uint64(f["seq"].GetNumberValue()),
	}
	if c.Type == CmdAction {
		name := f["action"].GetStringValue()
		a, ok := career.ParseAction(strings.ToLower(name))
		if !ok {
			return Command{}, fmt.Errorf("wire: unknown action %q", name)
		}
		c.Action = a
	}
	if err := c.Validate(); err != nil {
		return Command{}, err
	}
	return c, nil
}
