package battle

import "warhex/internal/hexgrid"

// EffectEvent is a queued, renderer-visible effect. The numeric state
// change only happens when the event is applied, so an animation layer can
// play the effect first; the headless path drains the buffer at the end of
// every step.
type EffectEvent struct {
	Type     Effect        `json:"type"`
	SourceID int           `json:"source_id"`
	TargetID int           `json:"target_id"`
	Amount   int           `json:"amount"`
	Pos      hexgrid.Coord `json:"pos"`
}

func (b *Battle) queueEvent(ev EffectEvent) {
	b.pending = append(b.pending, ev)
}

// PendingEvents returns a copy of the undrained event buffer.
func (b *Battle) PendingEvents() []EffectEvent {
	out := make([]EffectEvent, len(b.pending))
	copy(out, b.pending)
	return out
}

// PopEvent removes and returns the oldest queued event without applying
// it. The caller is expected to follow up with ApplyEffectEvent once any
// animation has finished.
func (b *Battle) PopEvent() (EffectEvent, bool) {
	if len(b.pending) == 0 {
		return EffectEvent{}, false
	}
	ev := b.pending[0]
	b.pending = b.pending[1:]
	return ev, true
}

// DrainEvents pops and applies every queued event in order, returning the
// applied events for the caller's benefit.
func (b *Battle) DrainEvents() []EffectEvent {
	var out []EffectEvent
	for {
		ev, ok := b.PopEvent()
		if !ok {
			return out
		}
		b.ApplyEffectEvent(ev)
		out = append(out, ev)
	}
}

// ApplyEffectEvent makes a queued event's state change visible. Targets
// that died while the event sat in the buffer are silently skipped.
func (b *Battle) ApplyEffectEvent(ev EffectEvent) {
	target := b.UnitByID(ev.TargetID)
	if target == nil || !target.Alive() {
		return
	}
	source := b.UnitByID(ev.SourceID)

	switch ev.Type {
	case EffectHeal, EffectRepair:
		before := target.HP
		target.HP += ev.Amount
		if target.HP > target.MaxHP {
			target.HP = target.MaxHP
		}
		if target.HP != before {
			b.logf("%s #%d is healed for %d", target.Name, target.ID, target.HP-before)
		}
	case EffectFortify:
		target.Armor += ev.Amount
		b.logf("%s #%d gains %d armor", target.Name, target.ID, ev.Amount)
	case EffectSunder:
		target.Armor -= ev.Amount
		if target.Armor < 0 {
			target.Armor = 0
		}
		b.logf("%s #%d loses %d armor", target.Name, target.ID, ev.Amount)
	case EffectStrike, EffectSplash, EffectBombard:
		dealt := b.ApplyDamage(target, ev.Amount, source)
		b.logf("%s #%d is struck for %d", target.Name, target.ID, dealt)
	}
}
