package replay

// CareerSpec 一局完整生涯的脚本：规则、种子、玩家名与命令序列。
type CareerSpec struct {
	Ruleset    string        `json:"ruleset"`
	PlayerName string        `json:"player_name,omitempty"`
	Commands   []CommandSpec `json:"commands"`
	RNG        *RNGSpec      `json:"rng,omitempty"`
}

// CommandSpec is either {"type":"action","action":"lesson"} or {"type":"advance"}.
type CommandSpec struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
}

type RNGSpec struct {
	Seed int64 `json:"seed"`
}

type ReplayTape struct {
	TapeVersion int           `json:"tape_version"`
	CareerID    string        `json:"career_id"`
	Ruleset     string        `json:"ruleset"`
	Events      []ReplayEvent `json:"events"`
}

type ReplayEvent struct {
	Type        string `json:"type"`
	Seq         uint64 `json:"seq"`
	Step        int32  `json:"step"`
	EnvelopeB64 string `json:"envelope_b64,omitempty"`
}
