package signal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context that is cancelled on SIGINT/SIGTERM,
// so an in-flight completion request is abandoned when the user presses Ctrl+C.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// PrintCancellationMessage prints a green cancellation message to stderr.
func PrintCancellationMessage(commandName string) {
	FprintCancellationMessage(os.Stderr, commandName)
}

// FprintCancellationMessage writes the cancellation message to w.
func FprintCancellationMessage(w io.Writer, commandName string) {
	const colorGreen = "\033[32m"
	const colorReset = "\033[0m"
	_, _ = fmt.Fprintf(w, "\n%s%s cancelled%s\n", colorGreen, commandName, colorReset)
}
