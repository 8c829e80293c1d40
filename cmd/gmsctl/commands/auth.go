package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"campus-gms/session"
)

func loginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login [student-id]",
		Short: "Sign in and save the session",
		Long:  `Sign in with your student id. The password is read without echo when a terminal is attached, otherwise from the first line of stdin.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reader := bufio.NewReader(app.In)

			var studentID string
			if len(args) > 0 {
				studentID = args[0]
			} else {
				app.printf("Student ID: ")
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read student id: %w", err)
				}
				studentID = strings.TrimSpace(line)
			}
			if studentID == "" {
				return errors.New("student id is required")
			}

			password, err := app.readPassword(reader)
			if err != nil {
				return err
			}

			res, err := app.Client.SignIn(ctx, studentID, password)
			if err != nil {
				return fmt.Errorf("sign in: %w", err)
			}

			creds, err := app.Tokens.Load()
			if err != nil && !errors.Is(err, session.ErrNoCredentials) {
				return err
			}
			creds.Server = app.server
			if err := app.Tokens.Save(creds.WithTokens(res.Tokens)); err != nil {
				return err
			}
			app.Session.Set(session.FromAccount(res.User))
			app.Logger.Debug("✅ Signed in", zap.String("student_id", res.User.StudentID))
			app.printf("Signed in as %s (%s)\n", res.User.FullName, res.User.StudentID)
			return nil
		},
	}
}

func (a *App) readPassword(reader *bufio.Reader) (string, error) {
	a.printf("Password: ")
	if f, ok := a.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		a.printf("\n")
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func logoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := app.Tokens.Load()
			if errors.Is(err, session.ErrNoCredentials) || creds.RefreshToken == "" {
				app.printf("Not signed in\n")
				return nil
			}
			if err != nil {
				return err
			}
			app.Client.SetAccessToken(creds.AccessToken)
			if err := app.Client.SignOut(cmd.Context(), creds.RefreshToken); err != nil {
				// the local tokens go regardless
				app.Logger.Warn("⚠️ Server sign-out failed", zap.Error(err))
			}
			if err := app.Tokens.ClearTokens(); err != nil {
				return err
			}
			app.Session.Clear()
			app.printf("Signed out\n")
			return nil
		},
	}
}

func whoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := app.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			return app.printYAML(sess)
		},
	}
}
