package narrative

import (
	"context"
	"fmt"

	"idol-career/career"
)

// Static 不访问网络的固定文案，按事件类型套模板。输出只取决于快照与事件，
// 用于未配置 API key 的部署和确定性回放。
type Static struct{}

var staticTemplates = map[career.EventType]string{
	career.EventDaily:       "%s 在剧场和握手会之间奔波，又是普通而忙碌的一季。",
	career.EventScandal:     "周刊文春的头版刊登了 %s 的照片，运营连夜召开紧急会议。",
	career.EventElection:    "总选举开票之夜，%s 紧握双手等待自己的名字被念出。",
	career.EventTeamShuffle: "组阁祭上，运营公布了新的队伍编成，%s 屏住了呼吸。",
	career.EventSingle:      "新单曲选拔名单发表，%s 在后台盯着屏幕一言不发。",
	career.EventJanken:      "猜拳大会开幕，%s 把一切交给了命运。",
	career.EventYearEnd:     "年末盘点，%s 回顾了这一年的汗水与泪水。",
}

// Narrate implements career.Narrator.
func (Static) Narrate(_ context.Context, snap career.Snapshot, ev career.EventType) (career.Narrative, error) {
	tmpl, ok := staticTemplates[ev]
	if !ok {
		return career.Narrative{}, fmt.Errorf("static narrator: no template for event %d", ev)
	}
	return career.Narrative{
		Title:       fmt.Sprintf("第%d年 第%d季度 · %s", snap.Year, snap.Quarter, ev),
		Description: fmt.Sprintf(tmpl, snap.Player.Name),
	}, nil
}
