package main

import (
	"fmt"
	"os"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aipomodoro: %v\n", err)
		os.Exit(1)
	}
}
