package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPassword reads passwords from in with echo disabled when in is a
// terminal, and as a plain line otherwise.
func TerminalPassword(in *os.File, out io.Writer) func(prompt string) (string, error) {
	lines := bufio.NewReader(in)
	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		fd := int(in.Fd())
		if !term.IsTerminal(fd) {
			line, err := lines.ReadString('\n')
			if err != nil && line == "" {
				return "", fmt.Errorf("read password: %w", err)
			}
			return strings.TrimSpace(line), nil
		}
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
}
