package replcmd

import "strings"

// Completer is a minimal completer data model for the REPL front-end: it
// knows the set of command verbs and can suggest ones matching a prefix.
// It does not attempt argument completion (breakpoint ids, task names),
// which requires live session state the parser itself does not have.
type Completer struct {
	verbs []string
}

func NewCompleter() *Completer {
	verbs := make([]string, 0, len(verbTable))
	for v := range verbTable {
		verbs = append(verbs, v)
	}
	return &Completer{verbs: verbs}
}

// Suggest returns every known verb with the given prefix, in no
// particular order.
func (c *Completer) Suggest(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var out []string
	for _, v := range c.verbs {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}
