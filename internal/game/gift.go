package game

import (
	"fmt"
	"strings"

	"github.com/peterkuimelis/tcglive/internal/log"
)

// Gift is a live-stream gift that viewers send to trigger an effect.
type Gift string

const (
	GiftRose   Gift = "rose"   // viewers draw a card
	GiftRocket Gift = "rocket" // viewers gain 2 mana
	GiftLion   Gift = "lion"   // viewers get a random rare card
)

// RocketMana is the mana a rocket gift refills, up to max mana.
const RocketMana = 2

var giftAliases = map[string]Gift{
	"rose":   GiftRose,
	"🌹":      GiftRose,
	"rocket": GiftRocket,
	"🚀":      GiftRocket,
	"lion":   GiftLion,
	"🦁":      GiftLion,
}

// ParseGift recognizes a gift by name or emoji. Unknown gifts report false.
func ParseGift(s string) (Gift, bool) {
	g, ok := giftAliases[strings.ToLower(strings.TrimSpace(s))]
	return g, ok
}

func (g Gift) Emoji() string {
	switch g {
	case GiftRose:
		return "🌹"
	case GiftRocket:
		return "🚀"
	case GiftLion:
		return "🦁"
	default:
		return "🎁"
	}
}

func (g Gift) String() string {
	return g.Emoji() + " " + string(g)
}

// applyGift resolves a gift for the viewers. Gifts ignore turn order; unknown
// gifts change nothing and emit nothing.
func (e *Engine) applyGift(in Intent) error {
	g, ok := ParseGift(in.Gift)
	if !ok {
		return nil
	}
	gs := e.State
	v := gs.Player(RoleViewers)
	viewer := strings.TrimSpace(in.Viewer)
	if viewer == "" {
		viewer = "anonymous"
	}
	turn, phase := gs.Turn, string(gs.Phase)

	switch g {
	case GiftRose:
		id, err := v.Draw()
		if err != nil {
			e.emit(log.NewGiftEvent(turn, phase, viewer, g.String(), fmt.Sprintf("viewers could not draw (%v)", err)))
			return nil
		}
		e.emit(log.NewGiftEvent(turn, phase, viewer, g.String(), "viewers draw a card"))
		e.emit(log.NewDrawEvent(turn, phase, string(v.Role), e.Catalog.Name(id)))

	case GiftRocket:
		gained := v.GainMana(RocketMana)
		e.emit(log.NewGiftEvent(turn, phase, viewer, g.String(), fmt.Sprintf("viewers gain %d mana", gained)))
		e.emit(log.NewManaChangeEvent(turn, phase, string(v.Role), v.Mana, v.MaxMana, g.String()))

	case GiftLion:
		rares := e.Catalog.ByRarity(RarityRare)
		switch {
		case len(rares) == 0:
			e.emit(log.NewGiftEvent(turn, phase, viewer, g.String(), "no rare cards in the catalog"))
		default:
			id := rares[e.rng.IntN(len(rares))]
			if err := v.AddToHand(id); err != nil {
				e.emit(log.NewGiftEvent(turn, phase, viewer, g.String(), "viewers' hand is full"))
				break
			}
			name := e.Catalog.Name(id)
			e.emit(log.NewGiftEvent(turn, phase, viewer, g.String(), "viewers receive "+name))
			e.emit(log.NewAddToHandEvent(turn, phase, string(v.Role), name, g.String()))
		}
	}
	return nil
}
