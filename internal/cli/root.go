package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"stock-cli/internal/api"
	"stock-cli/internal/config"
	"stock-cli/internal/format"
	"stock-cli/internal/logger"
	"stock-cli/internal/store"
	"stock-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	APIURL     string
	StateDir   string
	PrettyJSON bool
	Format     string

	cfg    *config.Config
	log    logger.Logger
	closer io.Closer
}

// envelope is the JSON shape of every command's output.
type envelope struct {
	Data  any      `json:"data"`
	Hints []string `json:"_hints,omitempty"`
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "stock",
		Short:        "Inventory console for items and their lots",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  stock

  # Scriptable commands
  stock login --username admin --password-stdin < secret
  stock items list --name cola --format table
  stock lots add 3 --number L-10 --quantity 24 --expiry 31/12/2026
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.teardown()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "API base URL including /api (default $STOCK_API_URL or http://127.0.0.1:5000/api)")
	cmd.PersistentFlags().StringVar(&app.StateDir, "state-dir", "", "Directory for the session database and log (default $STOCK_STATE_DIR or ~/.stock)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("STOCK_FORMAT", "json"), "Output format (json|edn|table)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newLotsCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newWebTUICmd(app))

	return cmd
}

func (app *App) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Override(app.APIURL, app.StateDir); err != nil {
		return err
	}
	if err := (store.Store{Dir: cfg.StateDir}).Ensure(); err != nil {
		return fmt.Errorf("state dir: %w", err)
	}
	log, closer, err := logger.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	app.cfg = cfg
	app.log = log
	app.closer = closer
	return nil
}

func (app *App) teardown() {
	if app.closer != nil {
		_ = app.closer.Close()
		app.closer = nil
	}
}

func (app *App) store() store.Store {
	return store.Store{Dir: app.cfg.StateDir}
}

func (app *App) session() store.Session {
	return store.Session{Store: app.store(), APIURL: app.cfg.APIURL}
}

// client authenticates every request with the saved session token.
func (app *App) client() (*api.Client, error) {
	return api.New(api.Options{
		BaseURL:     app.cfg.APIURL,
		Credentials: app.session(),
		Logger:      app.log,
		Timeout:     app.cfg.RequestTimeout,
	})
}

func runTUI(cmd *cobra.Command, app *App) error {
	c, err := app.client()
	if err != nil {
		return writeErr(cmd, err)
	}
	app.log.Info("console started", "api", app.cfg.APIURL)
	return tui.Run(cmd.Context(), tui.Options{
		Client:  c,
		Session: app.session(),
		Store:   app.store(),
		Log:     app.log,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	if e, ok := v.(envelope); ok && app.Format == "table" {
		if t, ok := e.Data.(format.Tabular); ok {
			v = t
		}
	}
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
