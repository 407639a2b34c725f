package game

import (
	"fmt"

	"github.com/peterkuimelis/tcglive/internal/log"
)

// spellTarget resolves and validates where a spell lands. Without an explicit
// target, damage goes to the enemy hero and healing to the caster's hero.
func (e *Engine) spellTarget(p *Player, card *Card, t Target) (Target, error) {
	switch t.Kind {
	case TargetNone:
		if card.Spell == SpellHeal {
			return HeroTarget(p.Role), nil
		}
		return HeroTarget(p.Role.Opponent()), nil
	case TargetHero:
		if !t.Player.Valid() {
			return Target{}, fmt.Errorf("%w: unknown hero %q", ErrInvalidTarget, t.Player)
		}
		return t, nil
	case TargetCreature:
		if c, _ := e.State.FindCreature(t.Creature); c == nil {
			return Target{}, fmt.Errorf("%w: no creature #%d on the board", ErrInvalidTarget, t.Creature)
		}
		return t, nil
	default:
		return Target{}, fmt.Errorf("%w: unknown target kind %q", ErrInvalidTarget, t.Kind)
	}
}

// castSpell applies a spell's fixed amount to an already validated target.
func (e *Engine) castSpell(p *Player, card *Card, t Target) {
	gs := e.State
	targetName := t.String()
	if t.Kind == TargetCreature {
		if c, _ := gs.FindCreature(t.Creature); c != nil {
			targetName = c.String()
		}
	}
	e.emit(log.NewSpellEvent(gs.Turn, string(gs.Phase), string(p.Role), card.Name,
		fmt.Sprintf("%s %d", card.Spell, card.Amount), targetName))

	switch card.Spell {
	case SpellDamage:
		if t.Kind == TargetHero {
			e.damageHero(gs.Player(t.Player), card.Amount, card.Name)
			return
		}
		c, owner := gs.FindCreature(t.Creature)
		e.damageCreature(owner, c, card.Amount, card.Name)
		e.removeDead(owner)
	case SpellHeal:
		if t.Kind == TargetHero {
			e.healHero(gs.Player(t.Player), card.Amount, card.Name)
			return
		}
		c, owner := gs.FindCreature(t.Creature)
		e.healCreature(owner, c, card.Amount, card.Name)
	}
}
