package main

import (
	"github.com/crosswirehq/crosswire/internal/cli"
)

func main() {
	cli.Execute()
}
