package main

import (
	"github.com/andrescamacho/citysim-go/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
