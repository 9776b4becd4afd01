package bytecode

// Actor is an external game entity addressable by small integer id.
// The VM only ever reads and writes attributes through this interface;
// making the underlying entity safe for the embedding application's
// concurrency model is the caller's responsibility.
type Actor interface {
	Health() int64
	SetHealth(value int64)

	Wisdom() int64
	SetWisdom(value int64)

	Agility() int64
	SetAgility(value int64)
}

// EffectDispatcher receives fire-and-forget effect calls from the VM.
type EffectDispatcher interface {
	PlaySound(id int64)
	SpawnParticles(id int64)
}

// Table maps small integer identifiers to actor handles. It is supplied by
// the caller and read-only from the interpreter's perspective.
type Table map[int64]Actor

// Lookup resolves an actor id.
func (t Table) Lookup(id int64) (Actor, bool) {
	a, ok := t[id]
	return a, ok
}
