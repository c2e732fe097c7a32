package main

import "aws-graphx/cmd"

func main() {
	cmd.Execute()
}
