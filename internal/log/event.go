package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventGameStart EventType = iota
	EventShuffle
	EventDraw
	EventDrawFailed
	EventCardPlayed
	EventSummon
	EventSpell
	EventSupport
	EventDamage
	EventHeal
	EventShield
	EventManaChange
	EventCreatureDestroyed
	EventAttack
	EventNewTurn
	EventGift
	EventAddToHand
	EventWin
	EventDraw_Tie
)

func (e EventType) String() string {
	switch e {
	case EventGameStart:
		return "GameStart"
	case EventShuffle:
		return "Shuffle"
	case EventDraw:
		return "Draw"
	case EventDrawFailed:
		return "DrawFailed"
	case EventCardPlayed:
		return "CardPlayed"
	case EventSummon:
		return "Summon"
	case EventSpell:
		return "Spell"
	case EventSupport:
		return "Support"
	case EventDamage:
		return "Damage"
	case EventHeal:
		return "Heal"
	case EventShield:
		return "Shield"
	case EventManaChange:
		return "ManaChange"
	case EventCreatureDestroyed:
		return "CreatureDestroyed"
	case EventAttack:
		return "Attack"
	case EventNewTurn:
		return "NewTurn"
	case EventGift:
		return "Gift"
	case EventAddToHand:
		return "AddToHand"
	case EventWin:
		return "Win"
	case EventDraw_Tie:
		return "Draw(tie)"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a game.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Phase   string    // current phase name
	Player  string    // acting participant ("streamer" or "viewers")
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
