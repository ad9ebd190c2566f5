package models

import "fmt"

// RemoteTarget identifies a guest VM reachable over SSH.
type RemoteTarget struct {
	Name           string
	Host           string
	Port           int
	Username       string
	Password       string
	PrivateKeyPath string
}

func (t RemoteTarget) Addr() string {
	port := t.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", t.Host, port)
}

// CommandResult holds the captured output of a synchronous remote command.
type CommandResult struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}
