// Package commands implements the gmsctl subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"campus-gms/client"
	"campus-gms/config"
	"campus-gms/session"
	"campus-gms/utils"
)

const defaultServer = "http://localhost:8080"

// App carries what every command shares: the API client, the saved
// credentials and the signed-in identity.
type App struct {
	In  io.Reader
	Out io.Writer

	server          string
	credentialsPath string
	verbose         bool

	Logger  *zap.Logger
	Tokens  *session.TokenStore
	Session *session.Store
	Client  *client.Client
}

// NewApp returns an App reading prompts from in and printing to out.
func NewApp(in io.Reader, out io.Writer) *App {
	return &App{In: in, Out: out, Logger: zap.NewNop(), Session: session.NewStore()}
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.Logger.Sync()
}

// NewRootCommand wires every subcommand to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "gmsctl",
		Short: "Campus grievance management client",
		Long: `Campus grievance management client

Report classroom, restroom, lift and other campus issues, check whether
someone already reported them, and follow them until they are closed.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return app.setup() },
	}

	root.PersistentFlags().StringVar(&app.server, "server", os.Getenv("GMS_SERVER"), "GMS server URL (default $GMS_SERVER, then the saved server)")
	root.PersistentFlags().StringVar(&app.credentialsPath, "credentials", "", "credentials file (default ~/.gms/credentials.json)")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "log API calls")

	root.AddCommand(loginCmd(app), logoutCmd(app), whoamiCmd(app))
	root.AddCommand(categoriesCmd(app), reportCmd(app))
	root.AddCommand(IssueCommands(app), LostFoundCommands(app), QRCommands(app))
	return root
}

func (a *App) setup() error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	a.Logger = utils.NewLogger(config.LogConfig{Level: level, Development: true})

	path := a.credentialsPath
	if path == "" {
		var err error
		if path, err = session.DefaultTokenPath(); err != nil {
			return err
		}
	}
	a.Tokens = session.NewTokenStore(path)

	if a.server == "" {
		if creds, err := a.Tokens.Load(); err == nil && creds.Server != "" {
			a.server = creds.Server
		} else {
			a.server = defaultServer
		}
	}
	deviceID, err := a.Tokens.DeviceID()
	if err != nil {
		return err
	}
	a.Client = client.New(a.server, client.WithLogger(a.Logger), client.WithDeviceID(deviceID))
	a.Logger.Debug("🔧 Client ready", zap.String("server", a.server), zap.String("credentials", path))
	return nil
}

// signedIn restores the saved session or tells the user to log in.
func (a *App) signedIn(ctx context.Context) (session.Session, error) {
	sess, err := session.Resume(ctx, a.Client, a.Tokens, a.Session)
	switch {
	case errors.Is(err, session.ErrNoCredentials):
		return session.Session{}, fmt.Errorf("not signed in, run: gmsctl login")
	case errors.Is(err, session.ErrExpired):
		return session.Session{}, fmt.Errorf("%w: run gmsctl login", err)
	case err != nil:
		return session.Session{}, err
	}
	return sess, nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

func (a *App) printYAML(v any) error {
	enc := yaml.NewEncoder(a.Out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
