package main

import "github.com/mikkelsonm/bitboxing/internal/cli"

func main() {
	cli.Execute()
}
