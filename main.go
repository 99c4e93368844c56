package main

import "github.com/greywatch/srev/cmd"

func main() {
	cmd.Execute()
}
