// Command handwrite renders text as handwriting pages through a remote
// generation service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"handwrite/core"
	"handwrite/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background(), func(sig os.Signal) {
		fmt.Fprintf(os.Stderr, "\nreceived %s again, exiting immediately\n", sig)
		os.Exit(core.ExitCodeForSignal(sig))
	})

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	code := exitCode(ctx, err)
	stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(code)
}
