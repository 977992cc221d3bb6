package command

import "strings"

// Line is one typed command: a lowercased name and its arguments.
type Line struct {
	Name string
	Args []string
}

// Parse splits text into a command name and whitespace-separated
// arguments. A leading "/" or "!" is dropped so chat-style "/roll" and
// "!roll" work like "roll".
//
// Postcondition: Name is empty when text holds no command.
func Parse(text string) Line {
	text = strings.TrimLeft(strings.TrimSpace(text), "/!")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Line{}
	}
	l := Line{Name: strings.ToLower(fields[0])}
	if len(fields) > 1 {
		l.Args = fields[1:]
	}
	return l
}
