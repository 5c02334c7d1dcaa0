package logging

import (
	"os"

	"golang.org/x/term"
)

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
