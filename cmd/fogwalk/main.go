package main

import "github.com/mcoot/fogwalk/internal/cli"

func main() {
	cli.Execute()
}
