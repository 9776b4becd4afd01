package runner

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/grimoire-vm/grimoire/manifest"
	"github.com/grimoire-vm/grimoire/pkg/breed"
	"github.com/grimoire-vm/grimoire/pkg/bytecode"
	"github.com/grimoire-vm/grimoire/pkg/journal"
	"github.com/grimoire-vm/grimoire/pkg/spellbook"
	"github.com/grimoire-vm/grimoire/pkg/wire"
)

// Runner wires the spellbook, the journal and the breed registry around
// the interpreter. One Runner serves one project directory; it is not
// safe for concurrent use.
type Runner struct {
	Book    *spellbook.Book
	Journal *journal.Store
	Breeds  *breed.Registry

	// Effects receives sounds and particle bursts after the journal has
	// recorded them. Nil means recorded but otherwise dropped.
	Effects bytecode.EffectDispatcher

	fuelLimit uint64
}

// Open builds a Runner from a loaded project manifest.
func Open(m *manifest.Manifest) (*Runner, error) {
	book, err := spellbook.Open(m.SpellbookPath())
	if err != nil {
		return nil, fmt.Errorf("opening spellbook: %w", err)
	}

	store, err := journal.Open(m.JournalPath())
	if err != nil {
		book.Close()
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	breeds := breed.NewRegistry()
	for _, path := range m.BreedFilePaths() {
		if err := breeds.Load(path); err != nil {
			store.Close()
			book.Close()
			return nil, fmt.Errorf("loading breeds: %w", err)
		}
	}

	return &Runner{
		Book:      book,
		Journal:   store,
		Breeds:    breeds,
		fuelLimit: m.Limits.Fuel,
	}, nil
}

func (r *Runner) Close() error {
	jerr := r.Journal.Close()
	berr := r.Book.Close()
	if berr != nil {
		return berr
	}
	return jerr
}

// Build assembles source text and stores the resulting chunk under name.
// Returns the content id of the stored spell.
func (r *Runner) Build(name, source string) (string, error) {
	chunk, err := bytecode.Assemble(source)
	if err != nil {
		return "", fmt.Errorf("assembling %q: %w", name, err)
	}

	id, err := r.Book.Put(name, chunk)
	if err != nil {
		return "", fmt.Errorf("storing %q: %w", name, err)
	}

	log.Debug("stored spell", "name", name, "id", id, "bytes", len(chunk.Code))
	return id, nil
}

// SpawnParty creates one wizard per breed name, keyed by list position.
func (r *Runner) SpawnParty(breedNames []string) (bytecode.Table, error) {
	party := bytecode.Table{}
	for i, name := range breedNames {
		b, err := r.Breeds.Get(name)
		if err != nil {
			return nil, err
		}
		w, err := b.Spawn()
		if err != nil {
			return nil, err
		}
		party[int64(i)] = w
	}
	return party, nil
}

// Cast resolves ref (spell name first, then content id), executes it
// against the party and journals the run. The run is recorded even when
// execution fails; the terminal error is kept on the run record.
func (r *Runner) Cast(ref string, party bytecode.Table) (*journal.Run, bytecode.Result, error) {
	chunk, err := r.resolve(ref)
	if err != nil {
		return nil, bytecode.Result{}, err
	}

	spellID, err := wire.ID(chunk)
	if err != nil {
		return nil, bytecode.Result{}, err
	}

	rec := journal.NewRecorder(r.Effects)
	vm := bytecode.NewVM()
	vm.FuelLimit = r.fuelLimit
	vm.Trace = func(offset int, op bytecode.Opcode, depth int) {
		log.Debug("step", "offset", fmt.Sprintf("0x%04X", offset), "op", op.String(), "depth", depth)
	}

	run := &journal.Run{
		ID:        uuid.NewString(),
		SpellID:   spellID,
		StartedAt: time.Now().UTC(),
	}

	res, execErr := vm.Execute(chunk, rec.WrapTable(party), rec)
	run.Events = rec.Events()
	if execErr != nil {
		run.Error = execErr.Error()
	}

	if err := r.Journal.Record(run); err != nil {
		return run, res, fmt.Errorf("recording run: %w", err)
	}

	if execErr != nil {
		log.Warn("spell failed", "spell", spellID, "run", run.ID, "err", execErr)
		return run, res, execErr
	}

	log.Info("spell complete",
		"spell", spellID, "run", run.ID,
		"steps", res.Steps, "fuel", res.FuelUsed, "events", len(run.Events))
	return run, res, nil
}

// Verify replays nothing; it compares the journaled event streams of two
// runs. Deterministic spells over identical parties must match.
func (r *Runner) Verify(runA, runB string) (bool, error) {
	a, err := r.Journal.Get(runA)
	if err != nil {
		return false, err
	}
	b, err := r.Journal.Get(runB)
	if err != nil {
		return false, err
	}
	return journal.SameEvents(a, b), nil
}

func (r *Runner) resolve(ref string) (*bytecode.Chunk, error) {
	chunk, err := r.Book.GetByName(ref)
	if err == nil {
		return chunk, nil
	}
	return r.Book.Get(ref)
}
