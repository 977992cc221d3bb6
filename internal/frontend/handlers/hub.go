package handlers

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/DmitriyMamontov/all-dice-bot/internal/frontend/telnet"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/ruleset"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
)

// ErrNameTaken is returned by Register when another connection uses the name.
var ErrNameTaken = errors.New("name already in use")

// Hub tracks which connections sit at which table and delivers game output
// to them. It implements gameserver.Presenter.
type Hub struct {
	catalog       *ruleset.Catalog
	historyWindow int
	outboxSize    int
	logger        *zap.Logger

	mu     sync.RWMutex
	tables map[string]map[string]*Outbox // table → actor → outbox
	actors map[string]*Outbox            // actor → outbox

	// renderMu orders boards per table; it is taken before mu.
	renderMu sync.Mutex
	rendered map[string]uint64 // table → Seq of the last board sent
}

// NewHub creates a Hub. historyWindow overrides every preset's history
// window when it is zero or more; a negative value uses the preset's.
//
// Precondition: catalog and logger must be non-nil.
func NewHub(catalog *ruleset.Catalog, historyWindow, outboxSize int, logger *zap.Logger) *Hub {
	return &Hub{
		catalog:       catalog,
		historyWindow: historyWindow,
		outboxSize:    outboxSize,
		logger:        logger,
		tables:        make(map[string]map[string]*Outbox),
		actors:        make(map[string]*Outbox),
		rendered:      make(map[string]uint64),
	}
}

// Register seats a connection at table under actor.
//
// Postcondition: Returns ErrNameTaken if actor is connected elsewhere.
func (h *Hub) Register(connID, actor, table string) (*Outbox, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, taken := h.actors[actor]; taken {
		return nil, fmt.Errorf("%q: %w", actor, ErrNameTaken)
	}
	ob := NewOutbox(connID, actor, table, h.outboxSize)
	h.actors[actor] = ob
	seats, ok := h.tables[table]
	if !ok {
		seats = make(map[string]*Outbox)
		h.tables[table] = seats
	}
	seats[actor] = ob
	return ob, nil
}

// Unregister removes ob from the hub and closes it.
func (h *Hub) Unregister(ob *Outbox) {
	h.renderMu.Lock()
	h.mu.Lock()
	if cur, ok := h.actors[ob.Actor()]; ok && cur == ob {
		delete(h.actors, ob.Actor())
		seats := h.tables[ob.Table()]
		delete(seats, ob.Actor())
		if len(seats) == 0 {
			delete(h.tables, ob.Table())
			delete(h.rendered, ob.Table())
		}
	}
	h.mu.Unlock()
	h.renderMu.Unlock()
	ob.Close()
}

// Connected returns the number of registered connections.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.actors)
}

// Seated returns the actors connected at table, sorted.
func (h *Hub) Seated(table string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.tables[table]))
	for actor := range h.tables[table] {
		out = append(out, actor)
	}
	sort.Strings(out)
	return out
}

// Render broadcasts the board for snap to its table. A snapshot older than
// the last board sent to the table is dropped, so boards rendered outside
// the session lock never go backwards.
func (h *Hub) Render(snap session.Snapshot) {
	h.renderMu.Lock()
	defer h.renderMu.Unlock()
	if snap.Seq != 0 {
		if snap.Seq < h.rendered[snap.ID] {
			h.logger.Debug("dropping stale board",
				zap.String("session", snap.ID),
				zap.Uint64("seq", snap.Seq),
			)
			return
		}
		h.rendered[snap.ID] = snap.Seq
	}

	preset, _ := h.catalog.Get(string(snap.Kind))
	window := h.historyWindow
	if window < 0 {
		window = 0
		if preset != nil {
			window = preset.HistoryWindow
		}
	}
	h.broadcast(snap.ID, RenderSnapshot(snap, preset, window))
}

// Notify broadcasts one line to table.
func (h *Hub) Notify(table, text string) {
	h.broadcast(table, telnet.Colorize(telnet.Cyan, text))
}

// AnnounceError shows msg to actor alone.
func (h *Hub) AnnounceError(table, actor, msg string) {
	h.send(table, actor, telnet.Colorize(telnet.Red, msg))
}

// Tell shows text to actor alone.
func (h *Hub) Tell(table, actor, text string) {
	h.send(table, actor, text)
}

func (h *Hub) broadcast(table, text string) {
	h.mu.RLock()
	targets := make([]*Outbox, 0, len(h.tables[table]))
	for _, ob := range h.tables[table] {
		targets = append(targets, ob)
	}
	h.mu.RUnlock()

	for _, ob := range targets {
		h.push(ob, text)
	}
}

func (h *Hub) send(table, actor, text string) {
	h.mu.RLock()
	ob, ok := h.tables[table][actor]
	h.mu.RUnlock()
	if !ok {
		h.logger.Debug("message for absent actor",
			zap.String("session", table),
			zap.String("actor", actor),
		)
		return
	}
	h.push(ob, text)
}

func (h *Hub) push(ob *Outbox, text string) {
	if err := ob.Push(text); err != nil {
		h.logger.Warn("dropping table message",
			zap.String("session", ob.Table()),
			zap.String("actor", ob.Actor()),
			zap.Error(err),
		)
	}
}
