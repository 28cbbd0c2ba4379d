package main

import "github.com/icco/drumbeast/cmd"

func main() {
	cmd.Execute()
}
