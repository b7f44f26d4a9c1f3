package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var (
		spectator bool
		passcode  string
		jsonLines bool
	)

	cmd := &cobra.Command{
		Use:   "play <code>",
		Short: "Connect to a room and play interactively",
		Long: `Connect to a room over the websocket protocol and stream events.

Commands are read from stdin, one per line:
  cell <x> <y> <letter>   write a letter
  clear <x> <y>           clear a cell
  cursor <x> <y>          move your cursor
  say <text>              send a chat message
  react <clue> <emoji>    toggle a reaction on a clue
  hint <x> <y>            request a hint for a cell
  ready | unready         toggle readiness in the lobby
  start                   start the game (host only)
  pass                    pass the turn (relay mode)
  leave                   leave the room and exit

Press Ctrl+C to disconnect without leaving.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(strings.ToUpper(args[0]), spectator, passcode, jsonLines)
		},
	}

	cmd.Flags().BoolVar(&spectator, "spectator", false, "Join as a spectator")
	cmd.Flags().StringVar(&passcode, "passcode", "", "Room passcode")
	cmd.Flags().BoolVar(&jsonLines, "json", false, "Output events as JSON lines")

	return cmd
}

func play(code string, spectator bool, passcode string, jsonLines bool) error {
	if cfg.Token == "" {
		return fmt.Errorf("no session token; run 'crosswire session guest <name>' first")
	}

	wsURL, err := websocketURL(cfg.ServerURL, code)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.Token)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: %s", resp.Status)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	join := map[string]any{"spectator": spectator}
	if passcode != "" {
		join["passcode"] = passcode
	}
	if err := writeFrame(conn, "join_room", join); err != nil {
		return err
	}

	done := make(chan struct{})

	// Receive loop
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			printFrame(data, jsonLines)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Command loop
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-done:
			if !jsonLines {
				fmt.Println("Disconnected")
			}
			return nil
		case <-sigCh:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			msgType, payload, err := parseCommand(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
				continue
			}
			if msgType == "" {
				continue
			}
			if err := writeFrame(conn, msgType, payload); err != nil {
				return err
			}
			if msgType == "leave_room" {
				<-done
				return nil
			}
		}
	}
}

func websocketURL(server, code string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/" + code
	return u.String(), nil
}

func writeFrame(conn *websocket.Conn, msgType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(map[string]any{"type": msgType, "payload": json.RawMessage(raw)})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func printFrame(data []byte, jsonLines bool) {
	if jsonLines {
		fmt.Println(string(data))
		return
	}

	var frame struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		fmt.Println(string(data))
		return
	}

	display := string(frame.Payload)
	if len(display) > 120 {
		display = display[:120] + "..."
	}
	fmt.Printf("[%s] %s: %s\n", time.Now().Format("15:04:05"), frame.Type, display)
}

// parseCommand turns one stdin line into a protocol message
func parseCommand(line string) (string, any, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return "", nil, nil
	}

	switch fields[0] {
	case "cell":
		if len(fields) != 4 {
			return "", nil, fmt.Errorf("usage: cell <x> <y> <letter>")
		}
		x, y, err := parseCoord(fields[1], fields[2])
		if err != nil {
			return "", nil, err
		}
		return "cell_update", map[string]any{"x": x, "y": y, "value": strings.ToUpper(fields[3])}, nil
	case "clear":
		if len(fields) != 3 {
			return "", nil, fmt.Errorf("usage: clear <x> <y>")
		}
		x, y, err := parseCoord(fields[1], fields[2])
		if err != nil {
			return "", nil, err
		}
		return "cell_update", map[string]any{"x": x, "y": y, "value": ""}, nil
	case "cursor":
		if len(fields) != 3 {
			return "", nil, fmt.Errorf("usage: cursor <x> <y>")
		}
		x, y, err := parseCoord(fields[1], fields[2])
		if err != nil {
			return "", nil, err
		}
		return "cursor_move", map[string]any{"x": x, "y": y}, nil
	case "say":
		if len(fields) < 2 {
			return "", nil, fmt.Errorf("usage: say <text>")
		}
		return "send_message", map[string]any{"text": strings.Join(fields[1:], " ")}, nil
	case "react":
		if len(fields) != 3 {
			return "", nil, fmt.Errorf("usage: react <clue> <emoji>")
		}
		return "reaction", map[string]any{"clue_id": fields[1], "emoji": fields[2]}, nil
	case "hint":
		if len(fields) != 3 {
			return "", nil, fmt.Errorf("usage: hint <x> <y>")
		}
		x, y, err := parseCoord(fields[1], fields[2])
		if err != nil {
			return "", nil, err
		}
		return "request_hint", map[string]any{"x": x, "y": y}, nil
	case "ready":
		return "set_ready", map[string]any{"ready": true}, nil
	case "unready":
		return "set_ready", map[string]any{"ready": false}, nil
	case "start":
		return "start_game", map[string]any{}, nil
	case "pass":
		return "pass_turn", map[string]any{}, nil
	case "leave":
		return "leave_room", map[string]any{}, nil
	default:
		return "", nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func parseCoord(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x %q", xs)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y %q", ys)
	}
	return x, y, nil
}
