package breed

// Wizard is a concrete game entity spawned from a breed. It implements
// bytecode.Actor so spells can read and mutate its attributes.
type Wizard struct {
	// Breed is the kind this wizard was spawned from.
	Breed *Breed

	health  int64
	wisdom  int64
	agility int64
}

func (w *Wizard) Health() int64  { return w.health }
func (w *Wizard) Wisdom() int64  { return w.wisdom }
func (w *Wizard) Agility() int64 { return w.agility }

func (w *Wizard) SetHealth(v int64)  { w.health = v }
func (w *Wizard) SetWisdom(v int64)  { w.wisdom = v }
func (w *Wizard) SetAgility(v int64) { w.agility = v }

// Reset restores the wizard's attributes to its breed's starting values.
func (w *Wizard) Reset() error {
	fresh, err := w.Breed.Spawn()
	if err != nil {
		return err
	}
	*w = *fresh
	return nil
}
