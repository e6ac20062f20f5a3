package main

import "VibeWake/cmd"

func main() {
	cmd.Execute()
}
