package main

import (
	"fmt"
	"os"

	"github.com/northernhub/keyhub/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "keyhub: %v\n", err)
		os.Exit(1)
	}
}
