package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the console (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCommandDone MsgKind = iota
)

type commandResult struct {
	command string
	output  string
	err     error
}

// commandDoneMsg is the constructor for [MsgCommandDone]
func commandDoneMsg(command, output string, err error) Msg {
	return Msg{
		kind: MsgCommandDone,
		data: commandResult{command: command, output: output, err: err},
	}
}
