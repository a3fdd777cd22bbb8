//go:build js && wasm

// Command replaywasm exposes career replay generation to the browser.
package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"syscall/js"

	"google.golang.org/protobuf/encoding/protojson"

	"idol-career/replay"
	"idol-career/wire"
)

type initRequest struct {
	Spec replay.CareerSpec `json:"spec"`
}

type initResponse struct {
	OK    bool                   `json:"ok"`
	Tape  *replay.WireReplayTape `json:"tape,omitempty"`
	Error *replay.ReplayError    `json:"error,omitempty"`
}

type decodeResponse struct {
	OK      bool            `json:"ok"`
	Type    string          `json:"type,omitempty"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func main() {
	js.Global().Set("__careerReplayInit", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(initResponse{
				Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_request", Message: "missing request payload"},
			})
		}
		return mustJSON(handleInit(args[0].String()))
	}))
	// 前端逐帧播放时把 envelopeB64 解成 JSON
	js.Global().Set("__careerDecodeEnvelope", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(decodeResponse{Error: "missing envelope"})
		}
		return mustJSON(handleDecode(args[0].String()))
	}))

	select {}
}

func handleInit(raw string) initResponse {
	var req initRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return initResponse{
			Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_json", Message: err.Error()},
		}
	}

	tape, err := replay.GenerateReplayTape(req.Spec)
	if err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			return initResponse{Error: replayErr}
		}
		return initResponse{
			Error: &replay.ReplayError{StepIndex: -1, Reason: "replay_generation_failed", Message: err.Error()},
		}
	}
	return initResponse{OK: true, Tape: replay.ToWireReplayTape(tape)}
}

func handleDecode(b64 string) decodeResponse {
	bin, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return decodeResponse{Error: err.Error()}
	}
	env, err := wire.UnmarshalServer(bin)
	if err != nil {
		return decodeResponse{Error: err.Error()}
	}
	resp := decodeResponse{OK: true, Type: env.Type, Seq: env.ServerSeq}
	if env.Payload != nil {
		payload, err := protojson.Marshal(env.Payload)
		if err != nil {
			return decodeResponse{Error: err.Error()}
		}
		resp.Payload = payload
	}
	return resp
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(decodeResponse{Error: err.Error()})
	}
	return string(b)
}
