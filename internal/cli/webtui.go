package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stock-cli/internal/webtui"

	"github.com/spf13/cobra"
)

func newWebTUICmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "webtui",
		Short: "Serve the console in a browser (PTY + WebSocket)",
		Long: strings.TrimSpace(`
Run the interactive console over the web via a server-side PTY and a browser terminal emulator.

Notes:
- No auth of its own: every tab shares the saved session of the state dir.
- Each browser tab starts a console subprocess on the server.
`),
		Example: strings.TrimSpace(`
stock webtui --addr 127.0.0.1:3334
stock --api http://stock.local/api webtui --addr :3334
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := webtui.NewServer(webtui.ServerConfig{
				Addr:     strings.TrimSpace(addr),
				APIURL:   app.cfg.APIURL,
				StateDir: app.cfg.StateDir,
				Log:      app.log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			listenAddr := srv.Addr()
			if listenAddr == "" {
				return writeErr(cmd, errors.New("webtui: missing --addr"))
			}

			_ = writeOut(cmd, app, envelope{
				Data: map[string]any{
					"addr":      listenAddr,
					"api":       app.cfg.APIURL,
					"stateDir":  app.cfg.StateDir,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				Hints: []string{"open http://" + listenAddr},
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "stock webtui running at http://%s (api=%s)\n", listenAddr, app.cfg.APIURL)
			return http.ListenAndServe(listenAddr, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3334", "Bind address (host:port or :port)")
	return cmd
}
