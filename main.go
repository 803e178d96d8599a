package main

import "github.com/swoopdelivery/swoopsim/cmd"

func main() {
	cmd.Execute()
}
