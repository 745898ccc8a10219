package main

import "github.com/mcoot/playersvc/internal/cli"

func main() {
	cli.Execute()
}
