package wire

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"idol-career/career"
)

func rankToMap(r career.Rank) map[string]any {
	m := map[string]any{"label": r.String()}
	switch r.Kind {
	case career.RankNumeric:
		m["kind"] = "numeric"
		m["position"] = float64(r.Position)
	case career.RankBucket:
		m["kind"] = "bucket"
		m["bucket"] = float64(r.Bucket)
	default:
		m["kind"] = "unranked"
	}
	return m
}

func statsToMap(st career.Stats) map[string]any {
	return map[string]any{
		"visual":      float64(st.Visual),
		"performance": float64(st.Performance),
		"variety":     float64(st.Variety),
		"popularity":  float64(st.Popularity),
		"stamina":     float64(st.Stamina),
		"mood":        float64(st.Mood),
		"love":        float64(st.Love),
		"exposure":    float64(st.Exposure),
	}
}

func logToMap(e career.LogEntry) map[string]any {
	return map[string]any{
		"id":      e.ID,
		"tag":     e.Tag,
		"message": e.Message,
		"color":   string(e.Color),
		"tsMs":    float64(e.Timestamp.UnixMilli()),
	}
}

// SnapshotToStruct converts a career snapshot to a structpb payload.
func SnapshotToStruct(snap career.Snapshot) (*structpb.Struct, error) {
	members := make([]any, 0, len(snap.Members))
	for _, m := range snap.Members {
		members = append(members, map[string]any{
			"name": m.Name,
			"bond": float64(m.Bond),
			"isCp": m.IsCP,
		})
	}
	logs := make([]any, 0, len(snap.Logs))
	for _, e := range snap.Logs {
		logs = append(logs, logToMap(e))
	}
	p := snap.Player
	return structpb.NewStruct(map[string]any{
		"ruleset":          snap.Ruleset,
		"phase":            snap.Phase.String(),
		"ended":            snap.Ended,
		"endReason":        snap.EndReason.String(),
		"advancing":        snap.Advancing,
		"year":             float64(snap.Year),
		"quarter":          float64(snap.Quarter),
		"actionsRemaining": float64(snap.ActionsRemaining),
		"player": map[string]any{
			"name":         p.Name,
			"team":         p.Team,
			"role":         p.Role,
			"stats":        statsToMap(p.Stats),
			"rank":         rankToMap(p.Rank),
			"centerCount":  float64(p.CenterCount),
			"isKenmin":     p.IsKenmin,
			"singleStatus": p.SingleStatus.String(),
		},
		"members": members,
		"logs":    logs,
	})
}

// ReportToStruct converts a quarter report to a structpb payload.
func ReportToStruct(r *career.QuarterReport) (*structpb.Struct, error) {
	summary := make([]any, 0, len(r.Summary))
	for _, s := range r.Summary {
		summary = append(summary, s)
	}
	return structpb.NewStruct(map[string]any{
		"event":       r.Label,
		"title":       r.Narrative.Title,
		"description": r.Narrative.Description,
		"fallback":    r.Fallback,
		"summary":     summary,
		"year":        float64(r.Time.Year),
		"quarter":     float64(r.Time.Quarter),
		"ended":       r.Ended,
		"endReason":   r.EndReason.String(),
	})
}

// LogToStruct converts a single log entry (action result) to a payload.
func LogToStruct(e career.LogEntry) (*structpb.Struct, error) {
	return structpb.NewStruct(logToMap(e))
}

// EndToStruct 生涯结算摘要
func EndToStruct(snap career.Snapshot) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"endReason":   snap.EndReason.String(),
		"year":        float64(snap.Year),
		"quarter":     float64(snap.Quarter),
		"rank":        snap.Player.Rank.String(),
		"popularity":  float64(snap.Player.Stats.Popularity),
		"centerCount": float64(snap.Player.CenterCount),
		"cpCount":     float64(snap.CPCount()),
	})
}

// NowMs 服务端时间戳
func NowMs() int64 { return time.Now().UnixMilli() }
