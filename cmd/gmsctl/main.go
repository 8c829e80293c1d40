// Command gmsctl files and tracks campus grievances from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"campus-gms/cmd/gmsctl/commands"
)

func main() {
	// A local .env may carry GMS_SERVER.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := commands.NewApp(os.Stdin, os.Stdout)
	defer app.Close()

	if err := commands.NewRootCommand(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
