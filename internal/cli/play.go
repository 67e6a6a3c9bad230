package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

const playHelp = "Commands: roll | up/down/left/right (w/s/a/d) | end | quit"

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <world-id>",
		Short: "Play interactively over a WebSocket",
		Long: `Join a world over a WebSocket and play from the terminal.

` + playHelp + `

The map is redrawn after every update.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return play(ctx, args[0], os.Stdin, os.Stdout)
		},
	}
}

// wsEnvelope is both the command sent and the update received
type wsEnvelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func play(ctx context.Context, worldID string, in io.Reader, out io.Writer) error {
	wsURL, err := client.StreamURL("ws", "/ws", url.Values{"world_id": {worldID}})
	if err != nil {
		return err
	}

	header := http.Header{}
	if cfg.Locale != "" {
		header.Set("Accept-Language", cfg.Locale)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	join := map[string]string{}
	if cfg.Locale != "" {
		join["locale"] = cfg.Locale
	}
	if err := sendCommand(conn, "player:join", join); err != nil {
		return err
	}
	fmt.Fprintln(out, playHelp)

	done := make(chan error, 1)
	go func() {
		done <- readUpdates(conn, out)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return closeGracefully(conn)
		case err := <-done:
			return err
		case line, ok := <-lines:
			if !ok {
				return closeGracefully(conn)
			}
			action, data, quit, err := parsePlayCommand(line)
			if quit {
				return closeGracefully(conn)
			}
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if action == "" {
				continue
			}
			if err := sendCommand(conn, action, data); err != nil {
				return err
			}
		}
	}
}

// parsePlayCommand maps a typed line to a WebSocket action
func parsePlayCommand(line string) (action string, data any, quit bool, err error) {
	word := strings.ToLower(strings.TrimSpace(line))
	switch word {
	case "":
		return "", nil, false, nil
	case "q", "quit", "exit":
		return "", nil, true, nil
	case "roll":
		return "player:roll", nil, false, nil
	case "end", "end-turn":
		return "player:end-turn", nil, false, nil
	case "w", "up":
		return "player:move", map[string]string{"direction": "UP"}, false, nil
	case "s", "down":
		return "player:move", map[string]string{"direction": "DOWN"}, false, nil
	case "a", "left":
		return "player:move", map[string]string{"direction": "LEFT"}, false, nil
	case "d", "right":
		return "player:move", map[string]string{"direction": "RIGHT"}, false, nil
	default:
		return "", nil, false, fmt.Errorf("unknown command %q. %s", word, playHelp)
	}
}

func sendCommand(conn *websocket.Conn, action string, data any) error {
	msg := wsEnvelope{Action: action}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		msg.Data = raw
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", action, err)
	}
	return nil
}

func readUpdates(conn *websocket.Conn, out io.Writer) error {
	for {
		var msg wsEnvelope
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		printUpdate(out, msg)
	}
}

// printUpdate renders one pushed update
func printUpdate(out io.Writer, msg wsEnvelope) {
	switch msg.Action {
	case "map:update":
		var m MapWindow
		if err := json.Unmarshal(msg.Data, &m); err == nil {
			fmt.Fprint(out, RenderMap(m))
			return
		}
	case "player:update":
		var p PlayerState
		if err := json.Unmarshal(msg.Data, &p); err == nil {
			fmt.Fprintf(out, "%s at %s, turn %d (%s), %d steps left\n",
				p.Username, p.Position, p.TurnNumber, p.Phase, p.StepsLeft)
			return
		}
	case "dice:rolled", "event:triggered", "error":
		var m struct {
			Message string `json:"message"`
			Total   int    `json:"total"`
			Skipped bool   `json:"skipped"`
		}
		if err := json.Unmarshal(msg.Data, &m); err == nil {
			switch {
			case m.Message != "":
				fmt.Fprintf(out, "%s: %s\n", msg.Action, m.Message)
			case m.Skipped:
				fmt.Fprintf(out, "%s: turn skipped\n", msg.Action)
			default:
				fmt.Fprintf(out, "%s: %d steps\n", msg.Action, m.Total)
			}
			return
		}
	}
	fmt.Fprintf(out, "%s: %s\n", msg.Action, string(msg.Data))
}

func closeGracefully(conn *websocket.Conn) error {
	err := conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return err
	}
	return nil
}
