package webtui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	frameSize    = 32 * 1024
	writeTimeout = 10 * time.Second
	initialCols  = 120
	initialRows  = 40
)

var errSessionEnded = errors.New("console exited")

// controlMsg is a JSON text frame from the page. Everything else is keystrokes.
type controlMsg struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  frameSize,
	WriteBufferSize: frameSize,
	CheckOrigin:     sameOrigin,
}

func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	return strings.HasSuffix(origin, "://"+strings.TrimSpace(r.Host))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.cfg.Log.Warn("websocket upgrade failed", "error", err.Error())
		return
	}

	argv, err := s.childArgs()
	if err != nil {
		s.refuse(conn, err)
		return
	}
	sess, err := startSession(conn, argv)
	if err != nil {
		s.refuse(conn, err)
		return
	}

	log := s.cfg.Log.With("remote", r.RemoteAddr, "pid", sess.proc.Process.Pid)
	log.Info("console session started")
	if err := sess.run(r.Context()); err != nil {
		log.Debug("console session closed", "error", err.Error())
	}
	log.Info("console session ended")
}

func (s *Server) refuse(conn *websocket.Conn, err error) {
	s.cfg.Log.Error("start console session", "error", err.Error())
	_ = conn.WriteMessage(websocket.TextMessage, []byte("failed to start session: "+err.Error()))
	_ = conn.Close()
}

// childArgs is the command line of one console session: this binary with no
// subcommand, pointed at the same API and state dir.
func (s *Server) childArgs() ([]string, error) {
	if len(s.cfg.Command) > 0 {
		return s.cfg.Command, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	args := []string{exe}
	if v := strings.TrimSpace(s.cfg.APIURL); v != "" {
		args = append(args, "--api", v)
	}
	if v := strings.TrimSpace(s.cfg.StateDir); v != "" {
		args = append(args, "--state-dir", v)
	}
	return args, nil
}

// session ties one browser tab to one console process on a PTY.
type session struct {
	conn *websocket.Conn
	tty  *os.File
	proc *exec.Cmd

	closeOnce sync.Once
}

func startSession(conn *websocket.Conn, argv []string) (*session, error) {
	proc := exec.Command(argv[0], argv[1:]...)
	proc.Env = append(os.Environ(), "TERM=xterm-256color", "COLORTERM=truecolor")
	tty, err := pty.StartWithSize(proc, &pty.Winsize{Cols: initialCols, Rows: initialRows})
	if err != nil {
		return nil, err
	}
	return &session{conn: conn, tty: tty, proc: proc}, nil
}

// run relays until either side goes away, then tears both down. Each relay
// only returns with an error, so the group context always ends.
func (ss *session) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(ss.toBrowser)
	g.Go(ss.fromBrowser)
	g.Go(func() error {
		<-gctx.Done()
		ss.close()
		return nil
	})
	err := g.Wait()
	ss.close()
	if errors.Is(err, errSessionEnded) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (ss *session) close() {
	ss.closeOnce.Do(func() {
		_ = ss.proc.Process.Kill()
		_ = ss.tty.Close()
		_ = ss.conn.Close()
		_, _ = ss.proc.Process.Wait()
	})
}

func (ss *session) toBrowser() error {
	buf := make([]byte, frameSize)
	for {
		n, err := ss.tty.Read(buf)
		if n > 0 {
			_ = ss.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if werr := ss.conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return werr
			}
		}
		switch {
		case errors.Is(err, io.EOF):
			return errSessionEnded
		case err != nil:
			return err
		}
	}
}

func (ss *session) fromBrowser() error {
	for {
		mt, data, err := ss.conn.ReadMessage()
		if err != nil {
			return err
		}
		if msg, ok := parseControl(mt, data); ok {
			if msg.Type == "resize" {
				ss.resize(msg.Cols, msg.Rows)
			}
			continue
		}
		if len(data) == 0 {
			continue
		}
		if _, err := ss.tty.Write(data); err != nil {
			return err
		}
	}
}

func (ss *session) resize(cols, rows int) {
	if cols <= 0 || rows <= 0 || cols > 0xffff || rows > 0xffff {
		return
	}
	_ = pty.Setsize(ss.tty, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

// parseControl decodes a control frame. Keystrokes are sent as binary frames,
// and a text frame only counts when it is a JSON object.
func parseControl(mt int, data []byte) (controlMsg, bool) {
	if mt != websocket.TextMessage || len(data) == 0 || data[0] != '{' {
		return controlMsg{}, false
	}
	var msg controlMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return controlMsg{}, false
	}
	msg.Type = strings.ToLower(strings.TrimSpace(msg.Type))
	return msg, true
}
