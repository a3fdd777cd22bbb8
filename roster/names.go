package roster

// MemberNames 剧场战友候选名单（开局无放回抽取）
var MemberNames = []string{
	"柏木由纪", "向井地美音", "小嶋阳菜", "冈田奈奈", "小栗有以",
	"大岛优子", "千叶惠里", "本田仁美", "仓野尾成美", "下尾美羽",
	"篠田麻里子", "武藤十梦", "渡边麻友", "板野友美", "宮脇咲良",
	"前田敦子", "横山由衣", "高桥南",
}

// Baseline 初始属性基准。visual/performance/popularity 开局时会被随机值覆盖。
type Baseline struct {
	Visual      int `json:"visual"`
	Performance int `json:"performance"`
	Variety     int `json:"variety"`
	Popularity  int `json:"popularity"`
	Stamina     int `json:"stamina"`
	Mood        int `json:"mood"`
	Love        int `json:"love"`
	Exposure    int `json:"exposure"`
}

var InitialStats = Baseline{
	Visual:      50,
	Performance: 40,
	Variety:     35,
	Popularity:  150,
	Stamina:     100,
	Mood:        100,
	Love:        20,
	Exposure:    50,
}
