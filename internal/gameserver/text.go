package gameserver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DmitriyMamontov/all-dice-bot/internal/game/command"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/pool"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/ruleset"
	"github.com/DmitriyMamontov/all-dice-bot/internal/storage/postgres"
)

// MenuText lists the games in catalog and how to start one.
func MenuText(catalog *ruleset.Catalog) string {
	var b strings.Builder
	b.WriteString("Games:\n")
	for _, g := range catalog.All() {
		fmt.Fprintf(&b, "  %-12s %s", g.ID, g.Name)
		if len(g.Aliases) > 0 {
			fmt.Fprintf(&b, " (also: %s)", strings.Join(g.Aliases, ", "))
		}
		b.WriteByte('\n')
	}
	b.WriteString("Type 'play <game>' to open a table.")
	return b.String()
}

// HelpText lists the registered commands grouped by category.
func HelpText(reg *command.Registry) string {
	groups := reg.CommandsByCategory()
	var b strings.Builder
	for _, cat := range command.CategoryOrder {
		cmds := groups[cat]
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(cat[:1])+cat[1:])
		for _, c := range cmds {
			usage := c.Usage
			if usage == "" {
				usage = c.Name
			}
			fmt.Fprintf(&b, "  %-14s %s", usage, c.Help)
			if len(c.Aliases) > 0 {
				fmt.Fprintf(&b, " [%s]", strings.Join(c.Aliases, ", "))
			}
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RulesText formats the rules of preset with its name as a heading.
func RulesText(preset *ruleset.GamePreset) string {
	var b strings.Builder
	b.WriteString(preset.Name)
	b.WriteByte('\n')
	for _, line := range preset.Rules {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// HistoryText formats archived results, newest first.
func HistoryText(results []postgres.GameResult) string {
	if len(results) == 0 {
		return "No finished games at this table yet."
	}
	var b strings.Builder
	b.WriteString("Recent games:\n")
	for _, r := range results {
		winner := r.WinnerName
		if winner == "" {
			winner = r.WinnerID
		}
		fmt.Fprintf(&b, "  %s  %-11s winner %s", r.FinishedAt.Format("2006-01-02 15:04"), r.Kind, winner)
		if len(r.Standings) > 0 {
			fmt.Fprintf(&b, " (%d)", r.Standings[0].Score)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// optionsHint lists the values preset allows for a setup command at a table
// of players.
func optionsHint(preset *ruleset.GamePreset, handler string, players int) string {
	switch handler {
	case command.HandlerRounds:
		if preset.Rounds.Max == 0 {
			return "This game has no rounds setting."
		}
		return fmt.Sprintf("Choose %d to %d rounds (e.g. %s).", preset.Rounds.Min, preset.Rounds.Max, joinInts(preset.Rounds.Offered))
	case command.HandlerDice:
		if len(preset.DiceCounts) == 0 {
			return "This game has no dice setting."
		}
		opts := preset.DiceOptions(pool.MinSize(players))
		if len(opts) == 0 {
			return fmt.Sprintf("No box holds enough dice for %d players.", players)
		}
		if len(opts) == 1 && players > 2 {
			return fmt.Sprintf("%d players need at least %d dice.", players, opts[0])
		}
		return "Choose " + joinInts(opts) + " dice."
	case command.HandlerTarget:
		if len(preset.Targets) == 0 {
			return "This game has no target setting."
		}
		return "Choose a target of " + joinInts(preset.Targets) + "."
	}
	return ""
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
