package main

import "github.com/cppla/arz/cmd/arz/commands"

func main() {
	commands.Execute()
}
