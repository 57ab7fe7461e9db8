package main

import "github.com/fekuna/omnipos-variation-service/cmd/variationctl/commands"

func main() {
	commands.Execute()
}
