package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	return OfType(l.events, t)
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// OfType filters events by type.
func OfType(events []GameEvent, t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w      io.Writer
	prefix string
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

// NewPrefixedTextLogger tags every line, e.g. with a game ID.
func NewPrefixedTextLogger(w io.Writer, prefix string) *TextLogger {
	return &TextLogger{w: w, prefix: prefix}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, l.prefix+FormatEvent(event))
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	player := e.Player
	// Pad player to 9 chars for alignment
	for len(player) < 9 {
		player += " "
	}
	return fmt.Sprintf("T%-2d %s| %s", e.Turn, player, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Messages returns the detail strings of the events, in order.
func Messages(events []GameEvent) []string {
	msgs := make([]string, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, e.Details)
	}
	return msgs
}

// --- Helper constructors for common events ---

func NewGameStartEvent(turn int, phase string, first string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  first,
		Type:    EventGameStart,
		Details: fmt.Sprintf("=== Game start: %s act first ===", first),
	}
}

func NewShuffleEvent(turn int, phase string, player string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventShuffle,
		Details: fmt.Sprintf("%s shuffled their deck", player),
	}
}

func NewTurnEvent(turn int, player string, mana, maxMana int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "main",
		Player:  player,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s, mana %d/%d) ===", turn, player, mana, maxMana),
	}
}

func NewDrawEvent(turn int, phase string, player string, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDraw,
		Card:    cardName,
		Details: fmt.Sprintf("%s draws %s", player, cardName),
	}
}

func NewDrawFailedEvent(turn int, phase string, player string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDrawFailed,
		Details: fmt.Sprintf("%s cannot draw (%s)", player, reason),
	}
}

func NewCardPlayedEvent(turn int, phase string, player string, cardName string, cost, manaLeft int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventCardPlayed,
		Card:    cardName,
		Details: fmt.Sprintf("%s plays %s (cost %d, %d mana left)", player, cardName, cost, manaLeft),
	}
}

func NewSummonEvent(turn int, phase string, player string, cardName string, id, atk, health int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSummon,
		Card:    cardName,
		Details: fmt.Sprintf("%s summons %s #%d (%d/%d)", player, cardName, id, atk, health),
	}
}

func NewSpellEvent(turn int, phase string, player string, cardName string, effect string, target string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSpell,
		Card:    cardName,
		Details: fmt.Sprintf("%s casts %s: %s → %s", player, cardName, effect, target),
	}
}

func NewSupportEvent(turn int, phase string, player string, cardName string, details string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventSupport,
		Card:    cardName,
		Details: fmt.Sprintf("%s activates %s: %s", player, cardName, details),
	}
}

func NewHeroDamageEvent(turn int, phase string, player string, source string, absorbed, oldHP, newHP int) GameEvent {
	details := fmt.Sprintf("%s HP: %d → %d (%s)", player, oldHP, newHP, source)
	if absorbed > 0 {
		details = fmt.Sprintf("%s HP: %d → %d (%s, %d absorbed by shield)", player, oldHP, newHP, source, absorbed)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDamage,
		Details: details,
	}
}

func NewCreatureDamageEvent(turn int, phase string, player string, cardName string, oldHP, newHP int, source string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDamage,
		Card:    cardName,
		Details: fmt.Sprintf("%s health: %d → %d (%s)", cardName, oldHP, newHP, source),
	}
}

func NewHealEvent(turn int, phase string, player string, target string, oldHP, newHP int, source string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventHeal,
		Details: fmt.Sprintf("%s health: %d → %d (%s)", target, oldHP, newHP, source),
	}
}

func NewShieldEvent(turn int, phase string, player string, shield int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventShield,
		Details: fmt.Sprintf("%s shield: %d", player, shield),
	}
}

func NewManaChangeEvent(turn int, phase string, player string, mana, maxMana int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventManaChange,
		Details: fmt.Sprintf("%s mana: %d/%d (%s)", player, mana, maxMana, reason),
	}
}

func NewCreatureDestroyedEvent(turn int, phase string, player string, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventCreatureDestroyed,
		Card:    cardName,
		Details: fmt.Sprintf("%s's %s is destroyed", player, cardName),
	}
}

func NewAttackEvent(turn int, phase string, player string, attacker string, defender string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAttack,
		Card:    attacker,
		Details: fmt.Sprintf("%s attacks: %s → %s", player, attacker, defender),
	}
}

func NewGiftEvent(turn int, phase string, viewer string, gift string, effect string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  "viewers",
		Type:    EventGift,
		Details: fmt.Sprintf("🎁 %s sent %s: %s", viewer, gift, effect),
	}
}

func NewAddToHandEvent(turn int, phase string, player string, cardName string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAddToHand,
		Card:    cardName,
		Details: fmt.Sprintf("%s is added to %s's hand (%s)", cardName, player, reason),
	}
}

func NewWinEvent(turn int, phase string, winner string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  winner,
		Type:    EventWin,
		Details: fmt.Sprintf("%s win! (%s)", winner, reason),
	}
}

func NewTieEvent(turn int, phase string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventDraw_Tie,
		Details: fmt.Sprintf("Game drawn (%s)", reason),
	}
}
