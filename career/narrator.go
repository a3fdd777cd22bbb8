package career

//go:generate go tool mockgen -source=narrator.go -destination=mocks/mock_narrator.go -package=mocks

import "context"

// Narrative 剧情文本，title 与 description 均为必填。
type Narrative struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Complete reports whether both fields are present.
func (n Narrative) Complete() bool {
	return n.Title != "" && n.Description != ""
}

// FallbackNarrative 剧情服务失败时的固定文本
var FallbackNarrative = Narrative{
	Title:       "系统公告",
	Description: "运营内部正在商讨重要事项，请稍后再试。",
}

// Narrator 把状态快照和事件标签变成剧情文本。实现可以失败，引擎会替换为 FallbackNarrative。
// 返回内容只用于展示，不影响任何数值结算。
type Narrator interface {
	Narrate(ctx context.Context, snap Snapshot, event EventType) (Narrative, error)
}

// NarratorFunc adapts a plain function to Narrator.
type NarratorFunc func(ctx context.Context, snap Snapshot, event EventType) (Narrative, error)

func (f NarratorFunc) Narrate(ctx context.Context, snap Snapshot, event EventType) (Narrative, error) {
	return f(ctx, snap, event)
}
