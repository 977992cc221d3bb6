// Package handlers connects chat clients to the game tables: it seats each
// connection at a table, renders game state and routes typed commands.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DmitriyMamontov/all-dice-bot/internal/frontend/telnet"
	"github.com/DmitriyMamontov/all-dice-bot/internal/gameserver"
)

// CommandHandler runs one command line for a seated player.
// *gameserver.Dispatcher satisfies it.
type CommandHandler interface {
	Handle(ctx context.Context, table, actor, name, line string) error
}

const welcomeBanner = "\n" + telnet.Bold + telnet.BrightYellow +
	"  ⚀ ⚁ ⚂  All Dice  ⚃ ⚄ ⚅" + telnet.Reset + "\n\n" +
	"  Dice games for everyone at the table.\n" +
	"  Pick a name and a table; friends at the same table play together.\n"

const defaultTable = "main"

var validName = regexp.MustCompile(`^[\p{L}\p{N}_-]{2,24}$`)

// TableHandler implements telnet.SessionHandler.
type TableHandler struct {
	hub      *Hub
	commands CommandHandler
	logger   *zap.Logger
}

// NewTableHandler creates a TableHandler.
//
// Precondition: every argument must be non-nil.
func NewTableHandler(hub *Hub, commands CommandHandler, logger *zap.Logger) *TableHandler {
	return &TableHandler{hub: hub, commands: commands, logger: logger}
}

// HandleSession seats the client and runs its command loop.
//
// Postcondition: Returns nil when the player quits, ctx.Err() on shutdown,
// or the read error that ended the connection.
func (h *TableHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	if err := conn.WriteLines(welcomeBanner); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	name, ob, err := h.seat(conn)
	if err != nil {
		return err
	}

	actor, table := ob.Actor(), ob.Table()
	log := h.logger.With(
		zap.String("conn_id", conn.ID()),
		zap.String("session", table),
		zap.String("actor", actor),
	)
	log.Info("player seated")

	prompt := telnet.Colorf(telnet.BrightCyan, "[%s@%s]> ", name, table)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for text := range ob.Events() {
			if err := conn.WriteLines(text); err != nil {
				log.Debug("writing table message", zap.Error(err))
				continue
			}
			_ = conn.WritePrompt(prompt)
		}
	}()
	defer wg.Wait()
	// Unregister must run before wg.Wait so the writer's range ends.
	defer h.hub.Unregister(ob)

	_ = conn.WriteLine(telnet.Colorf(telnet.Green, "Welcome, %s! You are at table %q. Type 'help' for commands.", name, table))
	if err := h.commands.Handle(ctx, table, actor, name, "games"); err != nil && !errors.Is(err, gameserver.ErrQuit) {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			_ = conn.WritePrompt(prompt)
			continue
		}

		err = h.commands.Handle(ctx, table, actor, name, line)
		if errors.Is(err, gameserver.ErrQuit) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			log.Info("player left", zap.Duration("session_duration", time.Since(start)))
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// seat asks for a name and table until the hub accepts them.
func (h *TableHandler) seat(conn *telnet.Conn) (string, *Outbox, error) {
	for {
		name, err := h.ask(conn, "Your name: ")
		if err != nil {
			return "", nil, err
		}
		if !validName.MatchString(name) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Names are 2-24 letters, digits, '_' or '-'."))
			continue
		}
		table, err := h.ask(conn, fmt.Sprintf("Table [%s]: ", defaultTable))
		if err != nil {
			return "", nil, err
		}
		if table == "" {
			table = defaultTable
		}
		table = strings.ToLower(table)
		if !validName.MatchString(table) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Table names are 2-24 letters, digits, '_' or '-'."))
			continue
		}

		ob, err := h.hub.Register(conn.ID(), strings.ToLower(name), table)
		if errors.Is(err, ErrNameTaken) {
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Someone called %s is already here. Pick another name.", name))
			continue
		}
		if err != nil {
			return "", nil, err
		}
		return name, ob, nil
	}
}

func (h *TableHandler) ask(conn *telnet.Conn, prompt string) (string, error) {
	if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, prompt)); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}
	line, err := conn.ReadLine()
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
