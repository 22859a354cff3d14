package main

import "github.com/brk3/habitstats/cmd"

func main() {
	cmd.Execute()
}
