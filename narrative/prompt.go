// Package narrative provides career.Narrator implementations: a Gemini
// generateContent client and a deterministic static narrator.
package narrative

import (
	"fmt"
	"strings"

	"idol-career/career"
)

// BuildPrompt 运营委员会视角的剧情提示词
func BuildPrompt(snap career.Snapshot, ev career.EventType) string {
	var b strings.Builder
	b.WriteString("你现在是 AKB48 运营委员会。\n")
	fmt.Fprintf(&b, "当前时间：第 %d 年 第 %d 季度。\n", snap.Year, snap.Quarter)
	fmt.Fprintf(&b, "玩家信息：姓名：%s，队伍：%s，人气：%d，中心位次数：%d。\n",
		snap.Player.Name, snap.Player.Team, snap.Player.Stats.Popularity, snap.Player.CenterCount)
	fmt.Fprintf(&b, "事件类型：%s\n\n", ev)
	b.WriteString("请根据这些信息，生成一段极具 AKB48 风格（充满了热血、汗水、梦想和残酷竞争的氛围）的剧情描述。\n")
	b.WriteString("要求：\n")
	b.WriteString("1. 语气专业且带有偶像行业的术语。\n")
	b.WriteString("2. 如果是总选举，描述现场粉丝的疯狂和成员的泪水。\n")
	b.WriteString("3. 如果是文春爆料，描述那种晴天霹雳的冲击感。\n")
	b.WriteString("4. 结果需要符合逻辑。\n")
	b.WriteString("5. 返回 JSON 格式，包含 title 和 description。\n")
	return b.String()
}
