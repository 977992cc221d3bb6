// Package ruleset loads the game presets that bound what a table may configure.
package ruleset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// RoundRange bounds the accepted number of rounds. Offered lists the values
// suggested to players; any value within [Min, Max] is accepted.
type RoundRange struct {
	Min     int   `yaml:"min"`
	Max     int   `yaml:"max"`
	Offered []int `yaml:"offered"`
}

// GamePreset describes one playable game.
//
// Precondition: ID and Name must be non-empty after loading.
type GamePreset struct {
	ID            string     `yaml:"id"`
	Name          string     `yaml:"name"`
	Aliases       []string   `yaml:"aliases"`
	MinPlayers    int        `yaml:"min_players"`
	MaxPlayers    int        `yaml:"max_players"`
	HistoryWindow int        `yaml:"history_window"`
	Rounds        RoundRange `yaml:"rounds"`
	DiceCounts    []int      `yaml:"dice_counts"`
	MaxDice       int        `yaml:"max_dice"`
	Targets       []int      `yaml:"targets"`
	Rules         []string   `yaml:"rules"`
}

// Validate reports every problem with the preset in a single error.
func (g *GamePreset) Validate() error {
	var errs []string
	if g.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if g.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if g.MinPlayers < 1 {
		errs = append(errs, fmt.Sprintf("min_players must be at least 1, got %d", g.MinPlayers))
	}
	if g.MaxPlayers != 0 && g.MaxPlayers < g.MinPlayers {
		errs = append(errs, fmt.Sprintf("max_players %d is below min_players %d", g.MaxPlayers, g.MinPlayers))
	}
	if g.HistoryWindow < 0 {
		errs = append(errs, "history_window must not be negative")
	}
	if g.Rounds.Max < g.Rounds.Min {
		errs = append(errs, fmt.Sprintf("rounds.max %d is below rounds.min %d", g.Rounds.Max, g.Rounds.Min))
	}
	for _, n := range g.DiceCounts {
		if n <= 0 || n%2 != 0 {
			errs = append(errs, fmt.Sprintf("dice count %d must be positive and even", n))
		}
	}
	if g.MaxDice != 0 && (g.MaxDice%2 != 0 || len(g.DiceCounts) == 0 || g.MaxDice < slices.Min(g.DiceCounts)) {
		errs = append(errs, fmt.Sprintf("max_dice %d must be even and at least the smallest dice count", g.MaxDice))
	}
	for _, n := range g.Targets {
		if n <= 0 {
			errs = append(errs, fmt.Sprintf("target %d must be positive", n))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("game %q: %s", g.ID, strings.Join(errs, "; "))
	}
	return nil
}

// AcceptsRounds reports whether n rounds may be configured.
func (g *GamePreset) AcceptsRounds(n int) bool {
	return g.Rounds.Max > 0 && n >= g.Rounds.Min && n <= g.Rounds.Max
}

// AcceptsDice reports whether a pool of n dice may be configured: one of
// DiceCounts, or any even count from the smallest of them up to MaxDice.
func (g *GamePreset) AcceptsDice(n int) bool {
	if slices.Contains(g.DiceCounts, n) {
		return true
	}
	return g.MaxDice > 0 && n%2 == 0 && n >= slices.Min(g.DiceCounts) && n <= g.MaxDice
}

// DiceOptions lists the offered dice counts of at least atLeast. When none
// is large enough it returns the smallest accepted count that is, or nil.
func (g *GamePreset) DiceOptions(atLeast int) []int {
	var out []int
	for _, n := range g.DiceCounts {
		if n >= atLeast {
			out = append(out, n)
		}
	}
	if len(out) > 0 {
		return out
	}
	n := atLeast + atLeast%2
	if g.AcceptsDice(n) {
		return []int{n}
	}
	return nil
}

// AcceptsTarget reports whether target may be configured.
func (g *GamePreset) AcceptsTarget(target int) bool { return slices.Contains(g.Targets, target) }

// RosterFull reports whether a roster of size n has reached the maximum.
func (g *GamePreset) RosterFull(n int) bool { return g.MaxPlayers > 0 && n >= g.MaxPlayers }

// RulesText joins the rule lines into one block.
func (g *GamePreset) RulesText() string { return strings.Join(g.Rules, "\n") }

// Catalog indexes presets by id and alias.
type Catalog struct {
	byName map[string]*GamePreset
	order  []*GamePreset
}

// NewCatalog validates presets and indexes them.
//
// Postcondition: Returns an error on an invalid preset or a name claimed twice.
func NewCatalog(presets []*GamePreset) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]*GamePreset)}
	for _, g := range presets {
		if err := g.Validate(); err != nil {
			return nil, err
		}
		for _, name := range append([]string{g.ID}, g.Aliases...) {
			key := strings.ToLower(name)
			if prev, dup := c.byName[key]; dup {
				return nil, fmt.Errorf("name %q claimed by both %q and %q", name, prev.ID, g.ID)
			}
			c.byName[key] = g
		}
		c.order = append(c.order, g)
	}
	sort.Slice(c.order, func(i, j int) bool { return c.order[i].ID < c.order[j].ID })
	return c, nil
}

// Get returns the preset whose id or alias is name, case-insensitively.
func (c *Catalog) Get(name string) (*GamePreset, bool) {
	g, ok := c.byName[strings.ToLower(name)]
	return g, ok
}

// All returns the presets ordered by id.
func (c *Catalog) All() []*GamePreset {
	return append([]*GamePreset(nil), c.order...)
}

// LoadGames reads every .yaml file in dir as a GamePreset.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed presets (may be empty slice) or a non-nil error.
func LoadGames(dir string) ([]*GamePreset, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	games := make([]*GamePreset, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		g, err := parseGame(data)
		if err != nil {
			return nil, fmt.Errorf("parsing game file %s: %w", path, err)
		}
		games = append(games, g)
	}
	return games, nil
}

func parseGame(data []byte) (*GamePreset, error) {
	var g GamePreset
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// LoadCatalog builds a catalog from dir. An empty dir name, a missing
// directory, or one without presets yields the built-in defaults.
func LoadCatalog(dir string) (*Catalog, error) {
	if dir == "" {
		return DefaultCatalog(), nil
	}
	games, err := LoadGames(dir)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultCatalog(), nil
	}
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return DefaultCatalog(), nil
	}
	return NewCatalog(games)
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
