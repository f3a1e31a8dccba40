package main

import (
	"github.com/fastygo/taskboard/internal/command"
)

func main() {
	command.Main(
		"taskctl", "a command line client for the taskboard API",
		command.RegisterCommand(),
		command.LoginCommand(),
		command.LogoutCommand(),
		command.ListCommand(),
		command.GetCommand(),
		command.CreateCommand(),
		command.UpdateCommand(),
		command.DeleteCommand(),
		command.StatsCommand(),
	)
}
