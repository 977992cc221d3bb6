package ruleset

// Built-in presets, kept identical to content/games.
const (
	blackWhiteYAML = `
id: black_white
name: "Black & White"
aliases: [bw, blackwhite, black-white]
min_players: 2
max_players: 0
history_window: 0
rounds:
  min: 2
  max: 20
  offered: [2, 3, 4, 5, 6]
dice_counts: [4, 6, 8]
max_dice: 20
rules:
  - "The box holds white and black dice (white = +, black = -)."
  - "Choose the format: 4 (2 white + 2 black), 6 (3 + 3) or 8 (4 + 4) dice."
  - "The first player draws half of the dice."
  - "The second player gets the rest."
  - "With more than two players everybody draws up to 2 dice, so the box needs 2 dice per player."
  - "The highest difference white - black wins."
`

	doublePigYAML = `
id: double_pig
name: "Double Pig"
aliases: [pig, dp, doublepig, double-pig]
min_players: 2
max_players: 4
history_window: 12
targets: [50, 100, 150]
rules:
  - "Every turn the player rolls two six-sided dice."
  - "A single 1 burns the turn: every point of this turn is lost."
  - "Double 1 wipes the player's whole score."
  - "Any other double scores twice its sum and forces another roll."
  - "Otherwise the sum is added to the turn points."
  - "Turn points only count once you hold. Keep rolling and you risk losing them."
  - "First to reach the chosen target (50 / 100 / 150) wins."
`
)

// DefaultCatalog returns the compiled-in presets for both games.
func DefaultCatalog() *Catalog {
	var presets []*GamePreset
	for _, src := range []string{blackWhiteYAML, doublePigYAML} {
		g, err := parseGame([]byte(src))
		if err != nil {
			panic("ruleset: built-in preset: " + err.Error())
		}
		presets = append(presets, g)
	}
	c, err := NewCatalog(presets)
	if err != nil {
		panic("ruleset: built-in catalog: " + err.Error())
	}
	return c
}
