package main

import "github.com/mcoot/samuel/internal/cli"

func main() {
	cli.Execute()
}
