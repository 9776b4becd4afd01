package journal

import "github.com/grimoire-vm/grimoire/pkg/bytecode"

// Recorder captures the externally observable events of one execution.
// It implements bytecode.EffectDispatcher and wraps an actor table so
// every mutation flows through it. A Recorder is single-use: create a
// fresh one per run.
type Recorder struct {
	// Next, if non-nil, receives forwarded effect calls.
	Next bytecode.EffectDispatcher

	events []Event
}

// NewRecorder creates a Recorder that forwards effects to next.
// next may be nil when effects only need to be captured.
func NewRecorder(next bytecode.EffectDispatcher) *Recorder {
	return &Recorder{Next: next}
}

// Events returns the captured events in execution order.
func (r *Recorder) Events() []Event {
	return r.events
}

// PlaySound records the effect and forwards it.
func (r *Recorder) PlaySound(id int64) {
	r.events = append(r.events, Event{Kind: EventEffect, Op: bytecode.OpPlaySound.String(), Value: id})
	if r.Next != nil {
		r.Next.PlaySound(id)
	}
}

// SpawnParticles records the effect and forwards it.
func (r *Recorder) SpawnParticles(id int64) {
	r.events = append(r.events, Event{Kind: EventEffect, Op: bytecode.OpSpawnParticles.String(), Value: id})
	if r.Next != nil {
		r.Next.SpawnParticles(id)
	}
}

// WrapTable returns a table of recording proxies around the given actors.
// Reads pass through untouched; writes are captured before being applied.
func (r *Recorder) WrapTable(actors bytecode.Table) bytecode.Table {
	wrapped := make(bytecode.Table, len(actors))
	for id, actor := range actors {
		wrapped[id] = &recordedActor{id: id, inner: actor, rec: r}
	}
	return wrapped
}

// recordedActor proxies an Actor, capturing every mutation.
type recordedActor struct {
	id    int64
	inner bytecode.Actor
	rec   *Recorder
}

func (a *recordedActor) Health() int64  { return a.inner.Health() }
func (a *recordedActor) Wisdom() int64  { return a.inner.Wisdom() }
func (a *recordedActor) Agility() int64 { return a.inner.Agility() }

func (a *recordedActor) SetHealth(v int64) {
	a.record(bytecode.OpSetHealth, v)
	a.inner.SetHealth(v)
}

func (a *recordedActor) SetWisdom(v int64) {
	a.record(bytecode.OpSetWisdom, v)
	a.inner.SetWisdom(v)
}

func (a *recordedActor) SetAgility(v int64) {
	a.record(bytecode.OpSetAgility, v)
	a.inner.SetAgility(v)
}

func (a *recordedActor) record(op bytecode.Opcode, v int64) {
	a.rec.events = append(a.rec.events, Event{
		Kind:  EventMutation,
		Op:    op.String(),
		Actor: a.id,
		Value: v,
	})
}
