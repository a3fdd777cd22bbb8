// Command terminal plays one career on stdin/stdout.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"idol-career/career"
	"idol-career/narrative"
	"idol-career/roster"
)

type terminalEnv struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL"`
	GeminiURL    string `env:"GEMINI_BASE_URL"`
	RosterFile   string `env:"ROSTER_FILE"`
}

func main() {
	ruleset := flag.String("ruleset", career.RulesetClassic, "ruleset preset (classic|extended)")
	seed := flag.Int64("seed", 0, "rng seed, 0 for time based")
	name := flag.String("name", career.DefaultPlayerName, "player name")
	flag.Parse()

	var e terminalEnv
	if err := env.Parse(&e); err != nil {
		log.Fatalf("parse env: %v", err)
	}
	rules, err := career.RulesetByName(*ruleset)
	if err != nil {
		log.Fatalf("%v", err)
	}
	tables := roster.Default()
	if e.RosterFile != "" {
		if tables, err = roster.LoadFromFile(e.RosterFile); err != nil {
			log.Fatalf("%v", err)
		}
	}

	cfg := career.DefaultConfig()
	cfg.Rules = rules
	cfg.Tables = tables
	cfg.Seed = *seed
	cfg.PlayerName = *name
	narrator := narrative.New(narrative.GeminiConfig{
		APIKey:  e.GeminiAPIKey,
		Model:   e.GeminiModel,
		BaseURL: e.GeminiURL,
	})
	game, err := career.NewGame(cfg, narrator)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := run(context.Background(), game, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

// run drives game from in until quit or EOF.
func run(ctx context.Context, game *career.Game, in io.Reader, out io.Writer) error {
	if err := game.Start(); err != nil {
		return err
	}
	fmt.Fprintln(out, renderWelcome(game.Snapshot()))
	fmt.Fprintln(out, renderBoard(game.Snapshot()))
	fmt.Fprintln(out, renderHelp())

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptStyle.Render("> "))
		if !sc.Scan() {
			return sc.Err()
		}
		cmd := strings.ToLower(strings.TrimSpace(sc.Text()))
		if cmd == "" {
			continue
		}
		quit, msg := dispatch(ctx, game, cmd)
		if msg != "" {
			fmt.Fprintln(out, msg)
		}
		if quit {
			return nil
		}
	}
}

var actionKeys = map[string]career.ActionType{
	"1": career.ActionLesson,
	"2": career.ActionVariety,
	"3": career.ActionWork,
	"4": career.ActionBond,
	"5": career.ActionRest,
}

func dispatch(ctx context.Context, game *career.Game, cmd string) (bool, string) {
	switch cmd {
	case "q", "quit", "exit":
		return true, renderFinal(game.Snapshot())
	case "h", "help", "?":
		return false, renderHelp()
	case "s", "status":
		return false, renderBoard(game.Snapshot())
	case "n", "next", "advance":
		report, err := game.AdvanceQuarter(ctx)
		if err != nil {
			return false, renderError(err)
		}
		board := renderReport(report) + "\n" + renderBoard(game.Snapshot())
		if report.Ended {
			board += "\n" + renderFinal(game.Snapshot()) + "\n" + hintStyle.Render("输入 r 重新开始，q 退出")
		}
		return false, board
	case "r", "restart":
		if err := game.Restart(); err != nil {
			return false, renderError(err)
		}
		if err := game.Start(); err != nil {
			return false, renderError(err)
		}
		return false, renderWelcome(game.Snapshot()) + "\n" + renderBoard(game.Snapshot())
	}

	a, ok := actionKeys[cmd]
	if !ok {
		a, ok = career.ParseAction(cmd)
	}
	if !ok {
		return false, renderError(fmt.Errorf("未知指令 %q", cmd))
	}
	entry, err := game.Act(a)
	if err != nil {
		return false, renderError(err)
	}
	return false, renderLog(entry) + "\n" + renderBoard(game.Snapshot())
}

func renderError(err error) string {
	switch {
	case errors.Is(err, career.ErrInsufficientStamina):
		return errorStyle.Render("体力不足，先休息一下吧。")
	case errors.Is(err, career.ErrNoActionsLeft):
		return errorStyle.Render("本季度行动次数已用完，输入 n 推进季度。")
	case errors.Is(err, career.ErrActionsRemaining):
		return errorStyle.Render("还有剩余行动次数。")
	case errors.Is(err, career.ErrNotPlaying), errors.Is(err, career.ErrGameOver):
		return errorStyle.Render("生涯已经结束。")
	}
	return errorStyle.Render(err.Error())
}
