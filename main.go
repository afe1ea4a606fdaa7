package main

import (
	"os"

	"github.com/rpupo63/project-showcase-backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
