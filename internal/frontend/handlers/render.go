package handlers

import (
	"fmt"
	"strings"

	"github.com/DmitriyMamontov/all-dice-bot/internal/frontend/telnet"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/dice"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/pool"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/ruleset"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
)

var medals = [...]string{"🥇", "🥈", "🥉"}

const nameWidth = 12

// RenderSnapshot formats the table for snap. preset supplies the title and
// may be nil. window limits the history shown; 0 shows all of it.
func RenderSnapshot(snap session.Snapshot, preset *ruleset.GamePreset, window int) string {
	var b strings.Builder
	title := string(snap.Kind)
	if preset != nil {
		title = preset.Name
	}
	b.WriteString(telnet.Colorf(telnet.Bold+telnet.BrightYellow, "🎲 %s", title))
	b.WriteString(telnet.Colorf(telnet.Dim, "  [%s: %s]", snap.ID, snap.Phase))
	b.WriteByte('\n')

	switch snap.Phase {
	case session.PhaseLobby:
		renderLobby(&b, snap)
	case session.PhaseConfiguring:
		renderConfig(&b, snap, preset)
	case session.PhasePlaying:
		renderBoard(&b, snap, window)
	case session.PhaseFinished:
		renderResults(&b, snap)
		renderHistory(&b, snap, window)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLobby(b *strings.Builder, snap session.Snapshot) {
	if len(snap.Players) == 0 {
		b.WriteString("No players yet.\n")
	} else {
		names := make([]string, len(snap.Players))
		for i, p := range snap.Players {
			names[i] = p.Name
		}
		fmt.Fprintf(b, "Players (%d): %s\n", len(names), strings.Join(names, ", "))
	}
	b.WriteString(telnet.Colorize(telnet.Dim, "Type 'join' to sit down, 'close' when everyone is in."))
	b.WriteByte('\n')
}

func renderConfig(b *strings.Builder, snap session.Snapshot, preset *ruleset.GamePreset) {
	setting := func(label string, v int, options string) {
		value := telnet.Colorize(telnet.Yellow, "not set")
		if v > 0 {
			value = telnet.Colorf(telnet.BrightGreen, "%d", v)
		}
		fmt.Fprintf(b, "  %-8s %s", label, value)
		if options != "" {
			b.WriteString(telnet.Colorf(telnet.Dim, "  (%s)", options))
		}
		b.WriteByte('\n')
	}
	b.WriteString("Settings:\n")
	switch snap.Kind {
	case session.KindBlackWhite:
		var rounds, counts string
		if preset != nil {
			rounds = "rounds " + joinInts(preset.Rounds.Offered)
			counts = "dice " + joinInts(preset.DiceOptions(pool.MinSize(len(snap.Players))))
		}
		setting("rounds", snap.Config.Rounds, rounds)
		setting("dice", snap.Config.DiceCount, counts)
	case session.KindDoublePig:
		var targets string
		if preset != nil {
			targets = "target " + joinInts(preset.Targets)
		}
		setting("target", snap.Config.TargetScore, targets)
	}
}

func renderBoard(b *strings.Builder, snap session.Snapshot, window int) {
	switch snap.Kind {
	case session.KindBlackWhite:
		fmt.Fprintf(b, "Round %d of %d   Box: %d/%d dice\n",
			snap.RoundIndex, snap.Config.Rounds, snap.PoolRemaining, snap.PoolSize)
	case session.KindDoublePig:
		fmt.Fprintf(b, "Target %d   Turn %d\n", snap.Config.TargetScore, snap.TurnsTaken+1)
	}

	for _, id := range snap.TurnOrder {
		p, ok := snap.Player(id)
		if !ok {
			continue
		}
		marker := "  "
		if id == snap.Current {
			marker = telnet.Colorize(telnet.BrightGreen, "▶ ")
		}
		b.WriteString(marker)
		b.WriteString(telnet.PadRight(p.Name, nameWidth))
		switch snap.Kind {
		case session.KindBlackWhite:
			fmt.Fprintf(b, " %s %s = %s",
				telnet.Colorf(telnet.BrightWhite, "+%d", p.Positive),
				telnet.Colorf(telnet.BrightBlack, "-%d", p.Negative),
				telnet.Colorf(telnet.Bold, "%d", p.Net()))
			if len(p.PendingDraw) > 0 {
				b.WriteString("  " + tokenSymbols(p.PendingDraw))
			} else if p.HasActed {
				b.WriteString(telnet.Colorize(telnet.Dim, "  done"))
			}
		case session.KindDoublePig:
			fmt.Fprintf(b, " %s", telnet.Colorf(telnet.Bold, "%d", p.Total))
			if id == snap.Current && p.TurnPoints > 0 {
				b.WriteString(telnet.Colorf(telnet.Yellow, "  (+%d this turn)", p.TurnPoints))
			}
			if p.MustContinue {
				b.WriteString(telnet.Colorize(telnet.Red, "  must roll"))
			}
		}
		b.WriteByte('\n')
	}
	if name := snap.CurrentName(); name != "" {
		fmt.Fprintf(b, "%s to play: %s\n", name, nextMove(snap))
	}
	renderHistory(b, snap, window)
}

func nextMove(snap session.Snapshot) string {
	p, _ := snap.Player(snap.Current)
	switch {
	case snap.Kind == session.KindDoublePig && p.MustContinue:
		return "roll"
	case snap.Kind == session.KindDoublePig:
		return "roll or hold"
	case len(p.PendingDraw) > 0:
		return "roll"
	default:
		return "draw"
	}
}

func renderResults(b *strings.Builder, snap session.Snapshot) {
	b.WriteString(telnet.Colorize(telnet.Bold, "Final standings:"))
	b.WriteByte('\n')
	for i, st := range snap.Results {
		place := fmt.Sprintf("%d.", st.Rank+1)
		if i < len(medals) {
			place = medals[i]
		}
		fmt.Fprintf(b, "  %s %s %d", place, telnet.PadRight(st.Name, nameWidth), st.Score)
		if snap.Kind == session.KindBlackWhite {
			b.WriteString(telnet.Colorf(telnet.Dim, "  (+%d -%d)", st.Positive, st.Negative))
		}
		b.WriteByte('\n')
	}
	if p, ok := snap.Player(snap.Winner); ok {
		b.WriteString(telnet.Colorf(telnet.BrightGreen, "%s wins!", p.Name))
		b.WriteByte('\n')
	}
	b.WriteString(telnet.Colorize(telnet.Dim, "Type 'new' for a rematch or 'games' for the menu."))
	b.WriteByte('\n')
}

func renderHistory(b *strings.Builder, snap session.Snapshot, window int) {
	entries := snap.Recent(window)
	if len(entries) == 0 {
		return
	}
	b.WriteString(telnet.Colorize(telnet.Underline, "History"))
	b.WriteByte('\n')
	for _, e := range entries {
		b.WriteString("  ")
		b.WriteString(HistoryLine(e))
		b.WriteByte('\n')
	}
}

// HistoryLine formats one history entry.
func HistoryLine(e session.HistoryEntry) string {
	switch e.Kind {
	case session.EntryNotice:
		return telnet.Colorf(telnet.Cyan, "* %s", e.Note)
	case session.EntryHold:
		return fmt.Sprintf("%s %s", e.ActorName, e.Note)
	}
	var faces []string
	for i, v := range e.Values {
		face := dice.Glyph(v)
		if i < len(e.Tokens) {
			face = e.Tokens[i].Polarity.Symbol() + face
		}
		faces = append(faces, face)
	}
	sep := ""
	if len(e.Tokens) > 0 {
		sep = " "
	}
	return fmt.Sprintf("%s %s %s", e.ActorName, strings.Join(faces, sep), e.Note)
}

func tokenSymbols(tokens []pool.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Polarity.Symbol())
	}
	return b.String()
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "/")
}
