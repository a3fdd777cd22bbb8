// Package wire encodes session traffic as proto-serialised structpb values.
// Client frames carry commands; server frames carry snapshots, quarter
// reports and notices.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server frame types
const (
	TypeSnapshot = "snapshot"
	TypeAction   = "action"
	TypeQuarter  = "quarter"
	TypeEnd      = "end"
	TypeNotice   = "notice"
	TypeError    = "error"
)

// ServerEnvelope 服务端下行帧
type ServerEnvelope struct {
	SessionID  string
	ServerSeq  uint64
	ServerTsMs int64
	Type       string
	Payload    *structpb.Struct
}

func (e *ServerEnvelope) toStruct() (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]any{
		"sessionId":  e.SessionID,
		"serverSeq":  float64(e.ServerSeq),
		"serverTsMs": float64(e.ServerTsMs),
		"type":       e.Type,
	})
	if err != nil {
		return nil, err
	}
	if e.Payload != nil {
		out.Fields["payload"] = structpb.NewStructValue(e.Payload)
	}
	return out, nil
}

// MarshalServer encodes a server envelope as protobuf bytes.
func MarshalServer(e *ServerEnvelope) ([]byte, error) {
	s, err := e.toStruct()
	if err != nil {
		return nil, fmt.Errorf("wire: build envelope: %w", err)
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(s)
}

// UnmarshalServer decodes bytes produced by MarshalServer.
func UnmarshalServer(data []byte) (*ServerEnvelope, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("wire: decode envelope: %w", err)
	}
	f := s.GetFields()
	e := &ServerEnvelope{
		SessionID:  f["sessionId"].GetStringValue(),
		ServerSeq:  uint64(f["serverSeq"].GetNumberValue()),
		ServerTsMs: int64(f["serverTsMs"].GetNumberValue()),
		Type:       f["type"].GetStringValue(),
		Payload:    f["payload"].GetStructValue(),
	}
	if e.Type == "" {
		return nil, fmt.Errorf("wire: envelope missing type")
	}
	return e, nil
}

// NoticePayload 用户可见的轻提示（行动被拒绝等）
func NoticePayload(code, message string) *structpb.Struct {
	s, _ := structpb.NewStruct(map[string]any{"code": code, "message": message})
	return s
}
