package main

import "github.com/passlock/passlock/cmd/cli"

func main() {
	cli.Execute()
}
