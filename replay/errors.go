package replay

import "fmt"

type ReplayError struct {
	StepIndex int32          `json:"step_index"`
	Reason    string         `json:"reason"`
	Message   string         `json:"message"`
	Expected  *ExpectedState `json:"expected,omitempty"`
}

// ExpectedState 出错时引擎所处的状态，帮助定位脚本问题
type ExpectedState struct {
	Phase            string `json:"phase"`
	Year             int    `json:"year"`
	Quarter          int    `json:"quarter"`
	ActionsRemaining int    `json:"actions_remaining"`
	Stamina          int    `json:"stamina"`
}

func (e *ReplayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("replay error(step=%d reason=%s): %s", e.StepIndex, e.Reason, e.Message)
}
