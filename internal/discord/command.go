package discord

import (
	"strings"
)

// Command matches chat messages of the form "<prefix> <command>"
type Command struct {
	Prefixes []string
	Names    []string
}

// DefaultCommand answers "uno play" and "uno uno"
func DefaultCommand() Command {
	return Command{
		Prefixes: []string{"uno"},
		Names:    []string{"play", "uno"},
	}
}

// Match reports whether content invokes the command. Prefixes and names
// compare case-insensitively; trailing arguments are ignored.
func (c Command) Match(content string) bool {
	fields := strings.Fields(content)
	if len(fields) < 2 {
		return false
	}
	return containsFold(c.Prefixes, fields[0]) && containsFold(c.Names, fields[1])
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
