package main

import "github.com/mvp-joe/docvault/internal/cli"

func main() {
	cli.Execute()
}
