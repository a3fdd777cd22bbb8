package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"idol-career/career"
	"idol-career/roster"
)

const visibleLogs = 8

var (
	pink        = lipgloss.Color("205")
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(pink)
	boardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(pink).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	promptStyle = lipgloss.NewStyle().Foreground(pink).Bold(true)
	reportStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("220")).Padding(0, 1)

	logColors = map[career.LogColor]lipgloss.Color{
		career.ColorPink:   lipgloss.Color("205"),
		career.ColorBlue:   lipgloss.Color("39"),
		career.ColorRed:    lipgloss.Color("9"),
		career.ColorGold:   lipgloss.Color("220"),
		career.ColorPurple: lipgloss.Color("135"),
		career.ColorGray:   lipgloss.Color("244"),
	}
)

func renderBoard(snap career.Snapshot) string {
	p := snap.Player
	title := titleStyle.Render(fmt.Sprintf("%s · %s · %s", p.Name, p.Team, p.Role))
	clock := fmt.Sprintf("第 %d 年 Q%d  剩余行动 %d  排名 %s  Center %d 次", snap.Year, snap.Quarter, snap.ActionsRemaining, p.Rank, p.CenterCount)
	if p.IsKenmin {
		clock += "  兼任中"
	}

	st := p.Stats
	stats := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(pink)).
		Headers("颜值", "实力", "综艺", "人气", "体力", "心情", "运营爱", "曝光").
		Row(
			fmt.Sprint(st.Visual), fmt.Sprint(st.Performance), fmt.Sprint(st.Variety), fmt.Sprint(st.Popularity),
			fmt.Sprint(st.Stamina), fmt.Sprint(st.Mood), fmt.Sprint(st.Love), fmt.Sprint(st.Exposure),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})

	rows := make([][]string, 0, len(snap.Members))
	for _, m := range snap.Members {
		cp := ""
		if m.IsCP {
			cp = "♥ CP"
		}
		rows = append(rows, []string{m.Name, fmt.Sprint(m.Bond), cp})
	}
	members := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(pink)).
		Headers("战友", "羁绊", "").
		Rows(rows...)

	return boardStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		clock,
		stats.Render(),
		members.Render(),
		renderLogs(snap.Logs),
	))
}

func renderLogs(logs []career.LogEntry) string {
	if len(logs) > visibleLogs {
		logs = logs[len(logs)-visibleLogs:]
	}
	lines := make([]string, 0, len(logs))
	for _, e := range logs {
		lines = append(lines, renderLog(e))
	}
	return strings.Join(lines, "\n")
}

func renderLog(e career.LogEntry) string {
	style := lipgloss.NewStyle().Foreground(logColors[e.Color])
	return style.Render(fmt.Sprintf("[%s] %s", e.Tag, e.Message))
}

func renderReport(r *career.QuarterReport) string {
	body := r.Text()
	if r.Fallback {
		body += "\n" + hintStyle.Render("(剧情服务不可用)")
	}
	return reportStyle.Render(titleStyle.Render(r.Label) + "\n" + body)
}

func renderFinal(snap career.Snapshot) string {
	if !snap.Ended {
		return hintStyle.Render("再见。")
	}
	return titleStyle.Render(fmt.Sprintf(
		"生涯结束（%s）：第 %d 年 Q%d，人气 %d，最终排名 %s，Center %d 次，官方CP %d 组",
		endReasonLabel(snap.EndReason), snap.Year, snap.Quarter,
		snap.Player.Stats.Popularity, snap.Player.Rank, snap.Player.CenterCount, snap.CPCount(),
	))
}

func endReasonLabel(r career.EndReason) string {
	switch r {
	case career.EndGraduated:
		return "圆满毕业"
	case career.EndBurnout:
		return "体力透支"
	case career.EndBreakdown:
		return "心态崩溃"
	}
	return r.String()
}

func renderWelcome(snap career.Snapshot) string {
	return titleStyle.Render("[系统] " + career.WelcomeMessage(roster.Team(snap.Player.Team)))
}

func renderHelp() string {
	return hintStyle.Render("1 剧场公演  2 综艺  3 外务  4 社交  5 休息  n 推进季度  s 状态  r 重开  q 退出")
}
