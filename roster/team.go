package roster

// Team 所属队伍。主队伍之外也可能是姐妹团名称（移籍后）。
type Team string

const (
	TeamA        Team = "Team A"
	TeamK        Team = "Team K"
	TeamB        Team = "Team B"
	TeamFour     Team = "Team 4"
	TeamGraduate Team = "毕业生"
)

// MainTeams 开局随机分配的队伍
var MainTeams = []Team{TeamA, TeamK, TeamB, TeamFour}

// SisterGroups 年末升格抽选可能移籍的姐妹团
var SisterGroups = []Team{"SKE48", "NMB48", "HKT48", "NGT48", "STU48"}

// IsSisterGroup reports whether t is one of the sister-group labels in groups.
func IsSisterGroup(t Team, groups []Team) bool {
	for _, g := range groups {
		if g == t {
			return true
		}
	}
	return false
}
