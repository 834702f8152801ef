package main

import "github.com/veilmetrics/veil/internal/cli"

func main() {
	cli.Execute()
}
