package main

import (
	"os"

	"github.com/AnderBEz/thuCompiler/cmd/thuc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
