package cli

import (
	"bufio"
	"errors"
	"strings"

	"stock-cli/internal/console"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var username string
	var password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session token",
		Example: strings.TrimSpace(`
stock login --username admin --password-stdin < secret
STOCK_PASSWORD=... stock login --username admin
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return writeErr(cmd, errors.New("read password from stdin: empty input"))
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				password = envOr("STOCK_PASSWORD", "")
			}

			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			sess := app.session()
			login := console.NewLogin(c, sess, app.log)
			login.SetUsername(username)
			login.SetPassword(password)
			submit, ok := login.Submit(cmd.Context())
			if !ok {
				return writeErr(cmd, errors.New("username and password are required"))
			}
			res := submit()
			if !login.Apply(res) {
				return writeErr(cmd, errors.New(login.Notice()))
			}
			return writeOut(cmd, app, envelope{
				Data:  map[string]any{"username": res.Username, "api": app.cfg.APIURL},
				Hints: []string{"stock items list"},
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", envOr("STOCK_USERNAME", ""), "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password (prefer --password-stdin or $STOCK_PASSWORD)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.session().Clear(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("logged out")
			return writeOut(cmd, app, envelope{Data: map[string]any{"loggedIn": false}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := app.session()
			return writeOut(cmd, app, envelope{Data: map[string]any{
				"loggedIn": sess.LoggedIn(),
				"username": sess.Username(cmd.Context()),
				"api":      app.cfg.APIURL,
				"stateDir": app.cfg.StateDir,
			}})
		},
	}
}
