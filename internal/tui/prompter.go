package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type confirmMsg struct {
	message string
	reply   chan<- bool
}

type alertMsg string

// prompter blocks the calling command goroutine until the user answers the
// dialog shown by the Model. It never runs on the event loop itself.
type prompter struct {
	send func(tea.Msg)
	done <-chan struct{}
}

func (p *prompter) Confirm(message string) bool {
	reply := make(chan bool, 1)
	p.send(confirmMsg{message: message, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-p.done:
		return false
	}
}

func (p *prompter) Alert(message string) {
	p.send(alertMsg(message))
}
