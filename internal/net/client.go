package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/peterkuimelis/tcglive/internal/game"
)

// ErrBadCommand is returned by ParseCommand for input it cannot understand.
var ErrBadCommand = errors.New("bad command")

const helpText = `Commands:
  play <card|n> [hero <role> | creature <id>]   play a card by ID or hand position
  draw                                          draw a card
  end                                           end your turn
  attack <id> hero|<creature id>                attack with a creature
  gift <rose|rocket|lion> [viewer]              send a TikTok gift
  sync                                          show the full state
  help                                          show this help
  quit                                          leave the game`

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn    net.Conn
	role    game.Role
	catalog *game.Catalog
	out     io.Writer

	mu   sync.Mutex // guards out and last
	last *game.Snapshot
}

// Connect dials the server, joins gameID as role and runs the REPL until
// the user quits, in ends or the server goes away.
func Connect(ctx context.Context, addr, gameID string, role game.Role, catalog *game.Catalog, in io.Reader, out io.Writer) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(ClientMessage{Type: MsgJoinGame, GameID: gameID, Role: role}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	c := &Client{conn: conn, role: role, catalog: catalog, out: out}
	return c.RunREPL(ctx, in)
}

// RunREPL renders server messages in the background and sends the commands
// read from in.
func (c *Client) RunREPL(ctx context.Context, in io.Reader) error {
	readErr := make(chan error, 1)
	go func() { readErr <- c.readLoop() }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	enc := json.NewEncoder(c.conn)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			switch line {
			case "":
				continue
			case "quit", "exit":
				return nil
			case "help", "?":
				c.printf("%s\n", helpText)
				continue
			}

			c.mu.Lock()
			last := c.last
			c.mu.Unlock()
			msg, err := ParseCommand(line, c.role, last)
			if err != nil {
				c.printf("%v\n", err)
				continue
			}
			if err := enc.Encode(msg); err != nil {
				return fmt.Errorf("send %s: %w", msg.Type, err)
			}
		}
	}
}

func (c *Client) readLoop() error {
	dec := json.NewDecoder(c.conn)
	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("server closed the connection")
			}
			return fmt.Errorf("read message: %w", err)
		}
		c.render(msg)
	}
}

func (c *Client) render(msg ServerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.State != nil {
		c.last = msg.State
	}

	switch msg.Type {
	case "error":
		fmt.Fprintf(c.out, "✗ %s (%s)\n", msg.Message, msg.Code)
	case "gameOver":
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		fmt.Fprintln(c.out, "          GAME OVER")
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		fmt.Fprintln(c.out, msg.Message)
		fmt.Fprintln(c.out, "═══════════════════════════════════")
	default:
		for _, ev := range msg.Events {
			fmt.Fprintln(c.out, FormatEventView(ev))
		}
		if msg.Type == "gameState" && msg.Message != "" {
			fmt.Fprintln(c.out, msg.Message)
		}
		if msg.State != nil {
			fmt.Fprint(c.out, RenderState(*msg.State, c.role, c.catalog))
		}
	}
}

func (c *Client) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// FormatEventView formats an event the way the text logger does.
func FormatEventView(ev EventView) string {
	return fmt.Sprintf("T%-2d %-9s| %s", ev.Turn, ev.Player, ev.Details)
}

// RenderState draws the board from role's side: the opponent on top, role's
// own hero, board and hand below.
func RenderState(s game.Snapshot, role game.Role, catalog *game.Catalog) string {
	if !role.Valid() {
		role = game.RoleViewers
	}
	opp := role.Opponent()
	var b strings.Builder

	b.WriteString("\n╔══════════════════════════════════════════════════════╗\n")
	writeHero(&b, s, opp, strings.ToUpper(string(opp)))
	writeBoard(&b, s.Board[opp], catalog)
	b.WriteString("║──────────────────────────────────────────────────────\n")
	writeBoard(&b, s.Board[role], catalog)
	writeHero(&b, s, role, "YOU ("+string(role)+")")
	b.WriteString("╚══════════════════════════════════════════════════════╝\n")

	turnInfo := fmt.Sprintf("Turn %d | %s", s.Turn, s.Phase)
	switch {
	case s.Over:
		turnInfo += " | " + s.Result
	case s.CurrentPlayer == role:
		turnInfo += " | Your turn"
	default:
		turnInfo += " | Opponent's turn"
	}
	b.WriteString(turnInfo + "\n")

	if hand := s.Hands[role]; len(hand) > 0 {
		b.WriteString("\nHand: ")
		for i, id := range hand {
			fmt.Fprintf(&b, "[%d] %s  ", i+1, cardLabel(id, catalog))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeHero(b *strings.Builder, s game.Snapshot, r game.Role, label string) {
	p := s.Players[r]
	fmt.Fprintf(b, "║  %s (HP: %d/%d", label, p.Health, p.MaxHealth)
	if p.Shield > 0 {
		fmt.Fprintf(b, " +%d shield", p.Shield)
	}
	fmt.Fprintf(b, ")  Mana: %d/%d  Hand: %d  Deck: %d\n", p.Mana, p.MaxMana, len(s.Hands[r]), len(s.Decks[r]))
}

func writeBoard(b *strings.Builder, board []game.CreatureSnapshot, catalog *game.Catalog) {
	b.WriteString("║  Board:   ")
	if len(board) == 0 {
		b.WriteString("[ ]")
	}
	for _, c := range board {
		ready := ""
		if c.CanAttack {
			ready = "*"
		}
		fmt.Fprintf(b, "[#%d %s %d/%d%s] ", c.InstanceID, cardLabel(c.CardID, catalog), c.Attack, c.CurrentHealth, ready)
	}
	b.WriteString("\n")
}

func cardLabel(id string, catalog *game.Catalog) string {
	if catalog == nil {
		return id
	}
	return catalog.Name(id)
}

// ParseCommand turns one REPL line into a protocol message. Hand positions
// (1-based) are resolved against last, the most recent state seen.
func ParseCommand(line string, role game.Role, last *game.Snapshot) (ClientMessage, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ClientMessage{}, fmt.Errorf("%w: empty line", ErrBadCommand)
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "play", "p":
		if len(args) == 0 {
			return ClientMessage{}, fmt.Errorf("%w: play <card|n> [hero <role> | creature <id>]", ErrBadCommand)
		}
		cardID, err := resolveCard(args[0], role, last)
		if err != nil {
			return ClientMessage{}, err
		}
		msg := ClientMessage{Type: MsgPlayCard, CardID: cardID}
		if len(args) > 1 {
			target, err := parseTarget(args[1:], role)
			if err != nil {
				return ClientMessage{}, err
			}
			msg.Target = &target
		}
		return msg, nil

	case "draw", "d":
		return ClientMessage{Type: MsgDrawCard}, nil

	case "end", "e":
		return ClientMessage{Type: MsgEndTurn}, nil

	case "attack", "a":
		if len(args) != 2 {
			return ClientMessage{}, fmt.Errorf("%w: attack <id> hero|<creature id>", ErrBadCommand)
		}
		attacker, err := strconv.Atoi(args[0])
		if err != nil {
			return ClientMessage{}, fmt.Errorf("%w: attacker must be a creature ID", ErrBadCommand)
		}
		var target game.Target
		if strings.EqualFold(args[1], "hero") {
			target = game.HeroTarget(role.Opponent())
		} else {
			id, err := strconv.Atoi(args[1])
			if err != nil {
				return ClientMessage{}, fmt.Errorf("%w: target must be hero or a creature ID", ErrBadCommand)
			}
			target = game.CreatureTarget(id)
		}
		return ClientMessage{Type: MsgAttack, AttackerID: attacker, Target: &target}, nil

	case "gift", "g":
		if len(args) == 0 {
			return ClientMessage{}, fmt.Errorf("%w: gift <rose|rocket|lion> [viewer]", ErrBadCommand)
		}
		msg := ClientMessage{Type: MsgGift, Gift: args[0]}
		if len(args) > 1 {
			msg.Viewer = strings.Join(args[1:], " ")
		}
		return msg, nil

	case "sync", "state", "s":
		return ClientMessage{Type: MsgSync}, nil
	}
	return ClientMessage{}, fmt.Errorf("%w: %q (type help)", ErrBadCommand, fields[0])
}

func resolveCard(arg string, role game.Role, last *game.Snapshot) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}
	if last == nil {
		return "", fmt.Errorf("%w: no state yet, play by card ID", ErrBadCommand)
	}
	hand := last.Hands[role]
	if n < 1 || n > len(hand) {
		return "", fmt.Errorf("%w: hand position must be between 1 and %d", ErrBadCommand, len(hand))
	}
	return hand[n-1], nil
}

func parseTarget(args []string, role game.Role) (game.Target, error) {
	switch strings.ToLower(args[0]) {
	case "hero":
		r := role.Opponent()
		if len(args) > 1 {
			parsed, err := game.ParseRole(args[1])
			if err != nil {
				return game.Target{}, fmt.Errorf("%w: %v", ErrBadCommand, err)
			}
			r = parsed
		}
		return game.HeroTarget(r), nil
	case "me":
		return game.HeroTarget(role), nil
	case "creature":
		if len(args) < 2 {
			return game.Target{}, fmt.Errorf("%w: creature <id>", ErrBadCommand)
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return game.Target{}, fmt.Errorf("%w: creature ID must be a number", ErrBadCommand)
		}
		return game.CreatureTarget(id), nil
	}
	return game.Target{}, fmt.Errorf("%w: target must be hero or creature", ErrBadCommand)
}
