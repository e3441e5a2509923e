package main

import "clicktap-chat/internal/commands"

func main() {
	commands.Execute()
}
