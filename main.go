package main

import "github.com/killallgit/textcast/cmd"

func main() {
	cmd.Execute()
}
