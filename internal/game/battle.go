package game

import (
	"fmt"
	"slices"

	"github.com/peterkuimelis/tcglive/internal/log"
)

// AttackTargets returns every legal target for the given attacker, honoring
// taunt. It fails when the creature may not attack at all.
func (e *Engine) AttackTargets(player Role, attackerID int) ([]Target, error) {
	gs := e.State
	p := gs.Player(player)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, player)
	}
	attacker := p.Creature(attackerID)
	if attacker == nil {
		return nil, fmt.Errorf("%w: %s controls no creature #%d", ErrCannotAttack, player, attackerID)
	}
	if !attacker.CanAttack {
		return nil, fmt.Errorf("%w: %s", ErrCannotAttack, attacker)
	}

	opp := gs.Player(player.Opponent())
	taunts := opp.Taunts()
	if len(taunts) > 0 && !attacker.Card.HasKeyword(KeywordFlying) {
		targets := make([]Target, 0, len(taunts))
		for _, c := range taunts {
			targets = append(targets, CreatureTarget(c.ID))
		}
		return targets, nil
	}
	targets := []Target{HeroTarget(opp.Role)}
	for _, c := range opp.Board {
		targets = append(targets, CreatureTarget(c.ID))
	}
	return targets, nil
}

func (e *Engine) attack(in Intent) error {
	gs := e.State
	if err := e.checkTurn(in.Player); err != nil {
		return err
	}
	p := gs.Player(in.Player)
	opp := gs.Player(in.Player.Opponent())

	legal, err := e.AttackTargets(in.Player, in.Attacker)
	if err != nil {
		return err
	}
	t := in.Target
	switch t.Kind {
	case TargetHero:
		if t.Player != opp.Role {
			return fmt.Errorf("%w: creatures attack the enemy hero only", ErrInvalidTarget)
		}
		t = HeroTarget(opp.Role)
	case TargetCreature:
		if opp.Creature(t.Creature) == nil {
			return fmt.Errorf("%w: %s controls no creature #%d", ErrInvalidTarget, opp.Role, t.Creature)
		}
		t = CreatureTarget(t.Creature)
	default:
		return fmt.Errorf("%w: attacks need a hero or creature target", ErrInvalidTarget)
	}
	if !slices.Contains(legal, t) {
		return fmt.Errorf("%w: %s", ErrTaunt, tauntNames(opp))
	}

	attacker := p.Creature(in.Attacker)
	attacker.CanAttack = false

	if t.Kind == TargetHero {
		e.emit(log.NewAttackEvent(gs.Turn, string(gs.Phase), string(p.Role), attacker.String(), string(opp.Role)))
		e.damageHero(opp, attacker.Attack(), attacker.Card.Name)
		e.checkWin()
		return nil
	}

	defender := opp.Creature(t.Creature)
	e.emit(log.NewAttackEvent(gs.Turn, string(gs.Phase), string(p.Role), attacker.String(), defender.String()))
	// Both strike at once: damage is computed before either is applied.
	toDefender, toAttacker := attacker.Attack(), defender.Attack()
	e.damageCreature(opp, defender, toDefender, attacker.Card.Name)
	e.damageCreature(p, attacker, toAttacker, defender.Card.Name)
	e.removeDead(opp)
	e.removeDead(p)
	return nil
}

func tauntNames(p *Player) string {
	names := make([]string, 0, len(p.Board))
	for _, c := range p.Taunts() {
		names = append(names, c.String())
	}
	return fmt.Sprintf("%v", names)
}

// damageHero applies damage to a hero, shield first, and logs the change.
func (e *Engine) damageHero(p *Player, n int, source string) {
	gs := e.State
	old := p.Health
	absorbed, _ := p.TakeDamage(n)
	e.emit(log.NewHeroDamageEvent(gs.Turn, string(gs.Phase), string(p.Role), source, absorbed, old, p.Health))
	if absorbed > 0 {
		e.emit(log.NewShieldEvent(gs.Turn, string(gs.Phase), string(p.Role), p.Shield))
	}
}

func (e *Engine) healHero(p *Player, n int, source string) {
	gs := e.State
	old := p.Health
	p.Heal(n)
	e.emit(log.NewHealEvent(gs.Turn, string(gs.Phase), string(p.Role), string(p.Role), old, p.Health, source))
}

// damageCreature lowers current health without removing the creature; callers
// sweep the board with removeDead once all damage is dealt.
func (e *Engine) damageCreature(owner *Player, c *Creature, n int, source string) {
	gs := e.State
	old := c.CurrentHealth
	c.CurrentHealth -= n
	e.emit(log.NewCreatureDamageEvent(gs.Turn, string(gs.Phase), string(owner.Role), c.Card.Name, old, c.CurrentHealth, source))
}

// healCreature restores health up to the card's base health.
func (e *Engine) healCreature(owner *Player, c *Creature, n int, source string) {
	gs := e.State
	old := c.CurrentHealth
	c.CurrentHealth = min(c.CurrentHealth+n, c.Card.Health)
	e.emit(log.NewHealEvent(gs.Turn, string(gs.Phase), string(owner.Role), c.Card.Name, old, c.CurrentHealth, source))
}

// removeDead takes every creature at 0 health or below off the board.
func (e *Engine) removeDead(p *Player) {
	gs := e.State
	for _, c := range slices.Clone(p.Board) {
		if !c.Dead() {
			continue
		}
		p.RemoveCreature(c.ID)
		e.emit(log.NewCreatureDestroyedEvent(gs.Turn, string(gs.Phase), string(p.Role), c.Card.Name))
	}
}
