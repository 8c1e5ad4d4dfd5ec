package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/crucial707/automation-schedules/cmd/cli/root"
	"github.com/crucial707/automation-schedules/cmd/cli/schedules"
)

func main() {
	cli := root.New()
	schedules.InitSchedules(cli)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Execute the root Cobra command
	if err := cli.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
