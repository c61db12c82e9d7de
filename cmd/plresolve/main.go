package main

import cmd "github.com/rohmanhakim/playlist-resolver/internal/cli"

func main() {
	cmd.Execute()
}
