// Package command provides the table command registry, line parser, and
// built-in command definitions.
package command

// Categories for organizing commands in help output.
const (
	CategoryTable  = "table"
	CategoryLobby  = "lobby"
	CategorySetup  = "setup"
	CategoryPlay   = "play"
	CategorySystem = "system"
)

// Handler identifiers route a resolved command to the dispatcher.
const (
	HandlerGames   = "games"
	HandlerPlay    = "play"
	HandlerJoin    = "join"
	HandlerClose   = "close"
	HandlerRounds  = "rounds"
	HandlerDice    = "dice"
	HandlerTarget  = "target"
	HandlerBegin   = "begin"
	HandlerDraw    = "draw"
	HandlerRoll    = "roll"
	HandlerHold    = "hold"
	HandlerBoard   = "board"
	HandlerRules   = "rules"
	HandlerStop    = "stop"
	HandlerNew     = "new"
	HandlerSwitch  = "switch"
	HandlerHistory = "history"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a player-invocable table command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "rounds <n>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler names the dispatcher operation.
	Handler string
}

// BuiltinCommands returns every table command.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "games", Aliases: []string{"menu", "start"}, Help: "List the games you can play", Category: CategoryTable, Handler: HandlerGames},
		{Name: "play", Usage: "play <game>", Help: "Open a lobby for a game at this table", Category: CategoryTable, Handler: HandlerPlay},
		{Name: "board", Aliases: []string{"b", "look"}, Help: "Show the table", Category: CategoryTable, Handler: HandlerBoard},
		{Name: "rules", Help: "Show the rules of the current game", Category: CategoryTable, Handler: HandlerRules},
		{Name: "history", Help: "Show recently finished games at this table", Category: CategoryTable, Handler: HandlerHistory},

		{Name: "join", Aliases: []string{"j"}, Help: "Join the lobby", Category: CategoryLobby, Handler: HandlerJoin},
		{Name: "close", Aliases: []string{"ready"}, Help: "Close the lobby and choose settings", Category: CategoryLobby, Handler: HandlerClose},

		{Name: "rounds", Usage: "rounds <n>", Help: "Set the number of rounds", Category: CategorySetup, Handler: HandlerRounds},
		{Name: "dice", Usage: "dice <n>", Help: "Set the number of dice in the box", Category: CategorySetup, Handler: HandlerDice},
		{Name: "target", Usage: "target <n>", Help: "Set the winning score", Category: CategorySetup, Handler: HandlerTarget},
		{Name: "begin", Help: "Start playing once settings are complete", Category: CategorySetup, Handler: HandlerBegin},

		{Name: "draw", Aliases: []string{"d"}, Help: "Draw your dice from the box", Category: CategoryPlay, Handler: HandlerDraw},
		{Name: "roll", Aliases: []string{"r"}, Help: "Roll the dice", Category: CategoryPlay, Handler: HandlerRoll},
		{Name: "hold", Aliases: []string{"h", "bank"}, Help: "Bank your turn points", Category: CategoryPlay, Handler: HandlerHold},

		{Name: "stop", Help: "End the game at this table", Category: CategorySystem, Handler: HandlerStop},
		{Name: "new", Aliases: []string{"reset"}, Help: "Start a new game of the same kind", Category: CategorySystem, Handler: HandlerNew},
		{Name: "switch", Help: "End the game and pick another", Category: CategorySystem, Handler: HandlerSwitch},
		{Name: "help", Aliases: []string{"?"}, Help: "List commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Leave the table", Category: CategorySystem, Handler: HandlerQuit},
	}
}
