package main

import (
	"os"

	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/cmd"
	"github.com/rithik2000raj/AI-Bug-Fix-Advisor/internal/sentry"
)

func main() {
	os.Exit(run())
}

func run() int {
	cleanup := sentry.Init(cmd.Version)
	defer cleanup()
	defer sentry.RecoverAndPanic()

	if err := cmd.Execute(); err != nil {
		sentry.CaptureError(err)
		return 1
	}
	return 0
}
