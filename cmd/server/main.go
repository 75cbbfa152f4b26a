package main

import (
	"Chest/internal/command"
	"os"
)

func main() {
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
