package main

import "osusume/internal/cmd"

func main() {
	cmd.Run()
}
