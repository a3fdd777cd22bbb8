package career

import (
	"fmt"
	"time"

	"idol-career/roster"
)

// scriptedRand 按脚本返回随机数。Intn 取模，Float64 脚本耗尽后返回 0.99（所有概率判定都不命中）。
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (s *scriptedRand) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

var testEpoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testResolver(rules Ruleset, rnd Source) Resolver {
	seq := 0
	return Resolver{
		Rules:  rules,
		Tables: roster.Default(),
		Env: Env{
			Rand: rnd,
			Now:  func() time.Time { return testEpoch },
			NewID: func() string {
				seq++
				return fmt.Sprintf("log-%d", seq)
			},
		},
	}
}

// freshState 开局后把属性固定下来，方便断言
func freshState(r Resolver) State {
	s := r.NewState("测试成员")
	s.Player.Stats = Stats{
		Visual:      50,
		Performance: 40,
		Variety:     35,
		Popularity:  250,
		Stamina:     100,
		Mood:        100,
		Love:        20,
		Exposure:    50,
	}
	return s
}
