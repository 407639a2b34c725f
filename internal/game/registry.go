package game

import (
	"fmt"

	"github.com/peterkuimelis/tcglive/internal/log"
)

// WardShield is the number of damage points one Protective Ward absorbs.
const WardShield = 3

// SupportEffect applies a support card's effect for the player who played it.
type SupportEffect func(e *Engine, p *Player, card *Card)

// SupportRegistry maps support card IDs to their effects.
var SupportRegistry = map[string]SupportEffect{
	"mana_crystal":    manaCrystal,
	"protective_ward": protectiveWard,
}

// LookupSupport returns the effect registered for a support card.
func LookupSupport(id string) (SupportEffect, bool) {
	eff, ok := SupportRegistry[id]
	return eff, ok
}

// applySupport resolves a support card. Cards without a registered effect are
// played for their cost alone.
func (e *Engine) applySupport(p *Player, card *Card) {
	eff, ok := LookupSupport(card.ID)
	if !ok {
		gs := e.State
		e.emit(log.NewSupportEvent(gs.Turn, string(gs.Phase), string(p.Role), card.Name, "no effect"))
		return
	}
	eff(e, p, card)
}

// manaCrystal: +1 max mana, never above the ceiling. Current mana is untouched.
func manaCrystal(e *Engine, p *Player, card *Card) {
	gs := e.State
	details := "max mana +1"
	if p.GainMaxMana(1) == 0 {
		details = fmt.Sprintf("max mana already at %d", MaxMana)
	}
	e.emit(log.NewSupportEvent(gs.Turn, string(gs.Phase), string(p.Role), card.Name, details))
	e.emit(log.NewManaChangeEvent(gs.Turn, string(gs.Phase), string(p.Role), p.Mana, p.MaxMana, card.Name))
}

// protectiveWard: the hero absorbs the next WardShield points of damage.
func protectiveWard(e *Engine, p *Player, card *Card) {
	gs := e.State
	p.Shield += WardShield
	e.emit(log.NewSupportEvent(gs.Turn, string(gs.Phase), string(p.Role), card.Name,
		fmt.Sprintf("absorb the next %d damage", WardShield)))
	e.emit(log.NewShieldEvent(gs.Turn, string(gs.Phase), string(p.Role), p.Shield))
}
