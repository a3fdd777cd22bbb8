package career

import "fmt"

// RankKind 排名的标签类型
type RankKind byte

const (
	RankUnranked RankKind = 0 // 圏外
	RankNumeric  RankKind = 1
	RankBucket   RankKind = 2
)

// Bucket 分级排名档位，数值越小越靠前
type Bucket byte

const (
	BucketCenter      Bucket = 1
	BucketKami        Bucket = 2
	BucketSenbatsu    Bucket = 3
	BucketInCircle    Bucket = 4
	BucketOutOfCircle Bucket = 5
)

var BucketDictionary = map[Bucket]string{
	BucketCenter:      "Center",
	BucketKami:        "神7",
	BucketSenbatsu:    "选拔",
	BucketInCircle:    "圈内",
	BucketOutOfCircle: "圏外",
}

// Rank 总选举排名（tagged variant）。Position 仅在 RankNumeric 时有效，
// Bucket 仅在 RankBucket 时有效。
type Rank struct {
	Kind     RankKind
	Position int
	Bucket   Bucket
}

func Unranked() Rank                { return Rank{Kind: RankUnranked} }
func NumericRank(position int) Rank { return Rank{Kind: RankNumeric, Position: position} }
func BucketRank(b Bucket) Rank      { return Rank{Kind: RankBucket, Bucket: b} }

func (r Rank) String() string {
	switch r.Kind {
	case RankNumeric:
		return fmt.Sprintf("#%d", r.Position)
	case RankBucket:
		if s, ok := BucketDictionary[r.Bucket]; ok {
			return s
		}
		return "?"
	default:
		return "圏外"
	}
}

// IsTop reports whether the rank is the best possible placement.
func (r Rank) IsTop() bool {
	switch r.Kind {
	case RankNumeric:
		return r.Position == 1
	case RankBucket:
		return r.Bucket == BucketCenter
	}
	return false
}

// RankFor 由人气纯函数推导排名。
func (r Ruleset) RankFor(popularity int) Rank {
	if r.RankSchema == RankSchemaBucket {
		return BucketRank(r.bucketFor(popularity))
	}
	pos := r.NumericRankBase - floorDiv(popularity, r.NumericRankDivisor)
	if pos < 1 {
		pos = 1
	}
	if pos > r.NumericRankCutoff {
		return Unranked()
	}
	return NumericRank(pos)
}

func (r Ruleset) bucketFor(popularity int) Bucket {
	buckets := [4]Bucket{BucketCenter, BucketKami, BucketSenbatsu, BucketInCircle}
	for i, min := range r.BucketThresholds {
		if popularity >= min {
			return buckets[i]
		}
	}
	return BucketOutOfCircle
}

// InitialRank 开局时显示的排名
func (r Ruleset) InitialRank() Rank {
	if r.RankSchema == RankSchemaBucket {
		return BucketRank(BucketOutOfCircle)
	}
	return Unranked()
}

// floorDiv 向下取整除法（人气可能为负）
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
