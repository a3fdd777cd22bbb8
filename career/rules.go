package career

import (
	"fmt"
	"strings"
)

// IntRange 闭区间 [Min, Max]
type IntRange struct {
	Min int
	Max int
}

func fixed(v int) IntRange { return IntRange{Min: v, Max: v} }

// RankSchema 排名的表示方式
type RankSchema byte

const (
	RankSchemaNumeric RankSchema = 0 // 名次数字，超出 cutoff 为圏外
	RankSchemaBucket  RankSchema = 1 // 五档定性分级
)

// Ruleset 一套完整的数值规则。所有阈值、上限、概率都在这里命名。
type Ruleset struct {
	Name string

	// Career
	RosterSize   int
	CareerYears  int
	StaminaFloor int // 季度结算时体力 <= 该值则生涯结束
	MoodFloor    int
	// 行动允许把体力透支到 -StaminaOverdraft
	StaminaOverdraft int
	KenminCostFactor float64

	// Start
	StartVisual      IntRange
	StartPerformance IntRange
	StartPopularity  IntRange
	StartBond        IntRange

	// Actions
	LessonStamina     int
	LessonPerformance int
	LessonPopularity  IntRange

	VarietyStamina int
	VarietyVariety int
	VarietyLove    int

	WorkStamina    int
	WorkPopularity IntRange
	WorkExposure   IntRange

	BondMood    int
	BondGain    int
	CPThreshold int
	CPBonus     IntRange

	RestStamina           IntRange
	RestMood              IntRange
	RestPopularityPenalty int

	// Calendar，按年份奇偶选择，下标为 quarter-1
	OddYearCalendar  [QuartersPerYear]EventType
	EvenYearCalendar [QuartersPerYear]EventType

	// Scandal
	ScandalChance         float64
	ScandalPopularityLoss int
	ScandalMoodLoss       int

	// Ranking
	RankSchema         RankSchema
	NumericRankBase    int
	NumericRankDivisor int
	NumericRankCutoff  int
	// Center / 神7 / 选拔 / 圈内 的人气下限，降序
	BucketThresholds [4]int

	// Single selection
	SinglePopularityDivisor float64
	SingleLoveWeight        float64
	SinglePerformanceWeight float64
	SingleSenbatsuScore     float64
	SingleCenterScore       float64

	// Janken
	JankenWinChance       float64
	JankenQualityMin      float64
	JankenWinPopularity   int
	JankenFlopPopularity  int
	JankenQualityPopScale int

	// Year end
	YearEndRankingThreshold int
	YearEndRankingBonus     int
	PromotionChance         float64
	KenminPerformanceMin    int
	KenminLoveMin           int
	TVLoveMin               int
	TVPopularityMin         int
	TVExposureGain          int
	TVPopularityGain        int
}

const (
	RulesetClassic  = "classic"
	RulesetExtended = "extended"
)

// ClassicRules 三人名单、八年生涯、数字排名。与最初版本的数值一致。
func ClassicRules() Ruleset {
	return Ruleset{
		Name:             RulesetClassic,
		RosterSize:       3,
		CareerYears:      8,
		StaminaFloor:     0,
		MoodFloor:        0,
		StaminaOverdraft: 0,
		KenminCostFactor: 1.5,

		StartVisual:      IntRange{Min: 40, Max: 69},
		StartPerformance: IntRange{Min: 35, Max: 64},
		StartPopularity:  IntRange{Min: 200, Max: 299},
		StartBond:        IntRange{Min: 15, Max: 34},

		LessonStamina:     20,
		LessonPerformance: 6,
		LessonPopularity:  fixed(100),

		VarietyStamina: 15,
		VarietyVariety: 7,
		VarietyLove:    4,

		WorkStamina:    20,
		WorkPopularity: fixed(150),
		WorkExposure:   fixed(15),

		BondMood:    10,
		BondGain:    15,
		CPThreshold: 80,
		CPBonus:     fixed(300),

		RestStamina:           fixed(50),
		RestMood:              fixed(20),
		RestPopularityPenalty: 20,

		OddYearCalendar:  [QuartersPerYear]EventType{EventDaily, EventElection, EventDaily, EventTeamShuffle},
		EvenYearCalendar: [QuartersPerYear]EventType{EventDaily, EventElection, EventDaily, EventTeamShuffle},

		ScandalChance:         0.08,
		ScandalPopularityLoss: 1500,
		ScandalMoodLoss:       40,

		RankSchema:         RankSchemaNumeric,
		NumericRankBase:    301,
		NumericRankDivisor: 25,
		NumericRankCutoff:  100,
		BucketThresholds:   [4]int{8000, 6000, 4000, 2000},
	}
}

// ExtendedRules 五人名单、十年生涯、分级排名，带单曲选拔/猜拳/年末事件。
func ExtendedRules() Ruleset {
	r := ClassicRules()
	r.Name = RulesetExtended
	r.RosterSize = 5
	r.CareerYears = 10
	r.StaminaFloor = -20
	r.StaminaOverdraft = 20

	r.LessonPopularity = IntRange{Min: 100, Max: 180}
	r.WorkPopularity = IntRange{Min: 150, Max: 180}
	r.WorkExposure = IntRange{Min: 12, Max: 15}
	r.CPThreshold = 85
	r.CPBonus = IntRange{Min: 150, Max: 300}
	r.RestStamina = IntRange{Min: 50, Max: 60}
	r.RestMood = IntRange{Min: 20, Max: 25}
	r.RestPopularityPenalty = 0

	r.OddYearCalendar = [QuartersPerYear]EventType{EventSingle, EventElection, EventJanken, EventYearEnd}
	r.EvenYearCalendar = [QuartersPerYear]EventType{EventSingle, EventElection, EventSingle, EventYearEnd}

	r.RankSchema = RankSchemaBucket

	r.SinglePopularityDivisor = 100
	r.SingleLoveWeight = 1
	r.SinglePerformanceWeight = 0.5
	r.SingleSenbatsuScore = 60
	r.SingleCenterScore = 120

	r.JankenWinChance = 0.10
	r.JankenQualityMin = 60
	r.JankenWinPopularity = 2000
	r.JankenFlopPopularity = 500
	r.JankenQualityPopScale = 100

	r.YearEndRankingThreshold = 5000
	r.YearEndRankingBonus = 800
	r.PromotionChance = 0.05
	r.KenminPerformanceMin = 100
	r.KenminLoveMin = 60
	r.TVLoveMin = 50
	r.TVPopularityMin = 4000
	r.TVExposureGain = 20
	r.TVPopularityGain = 300
	return r
}

// RulesetByName resolves "classic" / "extended" (case-insensitive, empty => classic).
func RulesetByName(name string) (Ruleset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RulesetClassic:
		return ClassicRules(), nil
	case RulesetExtended:
		return ExtendedRules(), nil
	default:
		return Ruleset{}, fmt.Errorf("unknown ruleset %q", name)
	}
}

func (r Ruleset) validate() error {
	if r.RosterSize <= 0 {
		return fmt.Errorf("RosterSize must be > 0")
	}
	if r.CareerYears <= 0 {
		return fmt.Errorf("CareerYears must be > 0")
	}
	if r.StaminaOverdraft < 0 {
		return fmt.Errorf("StaminaOverdraft must be >= 0")
	}
	if r.KenminCostFactor < 1 {
		return fmt.Errorf("KenminCostFactor must be >= 1")
	}
	ranges := map[string]IntRange{
		"StartVisual":      r.StartVisual,
		"StartPerformance": r.StartPerformance,
		"StartPopularity":  r.StartPopularity,
		"StartBond":        r.StartBond,
		"LessonPopularity": r.LessonPopularity,
		"WorkPopularity":   r.WorkPopularity,
		"WorkExposure":     r.WorkExposure,
		"CPBonus":          r.CPBonus,
		"RestStamina":      r.RestStamina,
		"RestMood":         r.RestMood,
	}
	for name, rg := range ranges {
		if rg.Min > rg.Max {
			return fmt.Errorf("invalid range %s: [%d, %d]", name, rg.Min, rg.Max)
		}
	}
	for _, p := range []float64{r.ScandalChance, r.JankenWinChance, r.PromotionChance} {
		if p < 0 || p > 1 {
			return fmt.Errorf("probability out of range: %v", p)
		}
	}
	switch r.RankSchema {
	case RankSchemaNumeric:
		if r.NumericRankDivisor <= 0 || r.NumericRankCutoff <= 0 {
			return fmt.Errorf("invalid numeric rank parameters")
		}
	case RankSchemaBucket:
		for i := 1; i < len(r.BucketThresholds); i++ {
			if r.BucketThresholds[i] >= r.BucketThresholds[i-1] {
				return fmt.Errorf("bucket thresholds must be strictly descending")
			}
		}
	default:
		return fmt.Errorf("unknown rank schema %d", r.RankSchema)
	}
	for _, cal := range [][QuartersPerYear]EventType{r.OddYearCalendar, r.EvenYearCalendar} {
		for _, ev := range cal {
			if ev == EventSingle && r.SinglePopularityDivisor <= 0 {
				return fmt.Errorf("single selection scheduled without SinglePopularityDivisor")
			}
			if ev == EventJanken && r.JankenQualityPopScale <= 0 {
				return fmt.Errorf("janken scheduled without JankenQualityPopScale")
			}
		}
	}
	return nil
}
