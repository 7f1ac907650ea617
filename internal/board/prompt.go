package board

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompter is the host's blocking dialog surface. Confirm does not return until
// the user answers.
type Prompter interface {
	Confirm(message string) bool
	Alert(message string)
}

// ConsolePrompter asks on a terminal: y/yes confirms, anything else declines.
type ConsolePrompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewReader(in), out: out}
}

func (p *ConsolePrompter) Confirm(message string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s [y/N]: ", message)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (p *ConsolePrompter) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, message)
}

// AutoConfirm answers every Confirm with yes and forwards alerts.
type AutoConfirm struct {
	Prompter
}

func (AutoConfirm) Confirm(string) bool { return true }
