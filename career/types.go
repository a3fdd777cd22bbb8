package career

// Phase 游戏阶段
type Phase byte

const (
	PhaseStart   Phase = 0
	PhasePlaying Phase = 1
	PhaseEnded   Phase = 2
)

var PhaseDictionary = map[Phase]string{
	PhaseStart:   "start",
	PhasePlaying: "playing",
	PhaseEnded:   "ended",
}

func (p Phase) String() string {
	if s, ok := PhaseDictionary[p]; ok {
		return s
	}
	return "unknown"
}

// ActionType 行动类型：0-NONE 1-LESSON 2-VARIETY 3-WORK 4-BOND 5-REST
type ActionType byte

const (
	ActionNone    ActionType = 0
	ActionLesson  ActionType = 1
	ActionVariety ActionType = 2
	ActionWork    ActionType = 3
	ActionBond    ActionType = 4
	ActionRest    ActionType = 5
)

var ActionTypeDictionary = map[ActionType]string{
	ActionNone:    "none",
	ActionLesson:  "lesson",
	ActionVariety: "variety",
	ActionWork:    "work",
	ActionBond:    "bond",
	ActionRest:    "rest",
}

// AllActions 可执行的五种行动，按界面顺序排列
var AllActions = []ActionType{ActionLesson, ActionVariety, ActionWork, ActionBond, ActionRest}

func (a ActionType) String() string {
	if s, ok := ActionTypeDictionary[a]; ok {
		return s
	}
	return "unknown"
}

// ParseAction maps a wire name ("lesson", "work", ...) to its ActionType.
func ParseAction(name string) (ActionType, bool) {
	for a, s := range ActionTypeDictionary {
		if a != ActionNone && s == name {
			return a, true
		}
	}
	return ActionNone, false
}

// EventType 季度事件类型
type EventType byte

const (
	EventDaily       EventType = 0
	EventScandal     EventType = 1
	EventElection    EventType = 2
	EventTeamShuffle EventType = 3
	EventSingle      EventType = 4
	EventJanken      EventType = 5
	EventYearEnd     EventType = 6
)

// EventTypeLabels 传给剧情生成服务的事件标签
var EventTypeLabels = map[EventType]string{
	EventDaily:       "日常运营",
	EventScandal:     "文春炮爆料",
	EventElection:    "总选举开票",
	EventTeamShuffle: "组阁祭与升格",
	EventSingle:      "单曲选拔发表",
	EventJanken:      "猜拳大会",
	EventYearEnd:     "年末盘点",
}

func (e EventType) String() string {
	if s, ok := EventTypeLabels[e]; ok {
		return s
	}
	return "未知事件"
}

// SingleStatus 单曲选拔状态，每次选拔季度重新计算
type SingleStatus byte

const (
	SingleNone     SingleStatus = 0
	SingleSenbatsu SingleStatus = 1
	SingleCenter   SingleStatus = 2
)

var SingleStatusDictionary = map[SingleStatus]string{
	SingleNone:     "None",
	SingleSenbatsu: "Senbatsu",
	SingleCenter:   "Center",
}

func (s SingleStatus) String() string {
	if v, ok := SingleStatusDictionary[s]; ok {
		return v
	}
	return "unknown"
}

// EndReason 生涯结束原因
type EndReason byte

const (
	EndNone      EndReason = 0
	EndGraduated EndReason = 1 // 到达生涯年限
	EndBurnout   EndReason = 2 // 体力透支
	EndBreakdown EndReason = 3 // 心态崩溃
)

var EndReasonDictionary = map[EndReason]string{
	EndNone:      "none",
	EndGraduated: "graduated",
	EndBurnout:   "burnout",
	EndBreakdown: "breakdown",
}

func (r EndReason) String() string {
	if s, ok := EndReasonDictionary[r]; ok {
		return s
	}
	return "unknown"
}

// LogColor 日志的显示分类提示
type LogColor string

const (
	ColorPink   LogColor = "pink"
	ColorBlue   LogColor = "blue"
	ColorRed    LogColor = "red"
	ColorGold   LogColor = "gold"
	ColorPurple LogColor = "purple"
	ColorGray   LogColor = "gray"
)

const (
	MaxActionsPerQuarter = 3
	MaxLogEntries        = 50
	StatSoftCap          = 100
	QuartersPerYear      = 4
)
