package career

// Source 随机源。*math/rand.Rand 满足该接口；测试中可注入脚本化序列。
type Source interface {
	Intn(n int) int
	Float64() float64
}

// roll 在闭区间内取值，总是消耗一次 Intn，保证调用序列可预测。
func roll(r Source, rg IntRange) int {
	if rg.Max <= rg.Min {
		r.Intn(1)
		return rg.Min
	}
	return rg.Min + r.Intn(rg.Max-rg.Min+1)
}

// chance 总是消耗一次 Float64。
func chance(r Source, p float64) bool {
	return r.Float64() < p
}

// draw 无放回抽取 n 个名字，保持抽取顺序。
func draw(r Source, pool []string, n int) []string {
	cp := append([]string(nil), pool...)
	if n > len(cp) {
		n = len(cp)
	}
	for i := 0; i < n; i++ {
		j := i + r.Intn(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:n]
}
