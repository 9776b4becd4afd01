package breed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func loadRegistry(t *testing.T, toml string) *Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "breeds.toml")
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	r := NewRegistry()
	if err := r.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return r
}

func TestLoadAndSpawn(t *testing.T) {
	r := loadRegistry(t, `
[breeds.goblin]
health = 10
wisdom = 2
agility = 5
`)

	b, err := r.Get("goblin")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	w, err := b.Spawn()
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if w.Health() != 10 || w.Wisdom() != 2 || w.Agility() != 5 {
		t.Errorf("got health=%d wisdom=%d agility=%d, want 10/2/5",
			w.Health(), w.Wisdom(), w.Agility())
	}
}

func TestParentInheritance(t *testing.T) {
	r := loadRegistry(t, `
[breeds.goblin]
health = 10
wisdom = 2
agility = 5

[breeds.goblin-archer]
parent = "goblin"
agility = 8
`)

	b, err := r.Get("goblin-archer")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Own attribute wins, unset ones come from the parent.
	agility, _ := b.Agility()
	health, _ := b.Health()
	wisdom, _ := b.Wisdom()
	if agility != 8 || health != 10 || wisdom != 2 {
		t.Errorf("got health=%d wisdom=%d agility=%d, want 10/2/8", health, wisdom, agility)
	}
}

func TestGrandparentInheritance(t *testing.T) {
	r := loadRegistry(t, `
[breeds.base]
health = 1
wisdom = 1
agility = 1

[breeds.mid]
parent = "base"
health = 2

[breeds.leaf]
parent = "mid"
agility = 3
`)

	b, _ := r.Get("leaf")
	health, _ := b.Health()
	wisdom, _ := b.Wisdom()
	agility, _ := b.Agility()
	if health != 2 || wisdom != 1 || agility != 3 {
		t.Errorf("got health=%d wisdom=%d agility=%d, want 2/1/3", health, wisdom, agility)
	}
}

func TestMissingAttribute(t *testing.T) {
	r := loadRegistry(t, `
[breeds.ghost]
health = 1
`)

	b, _ := r.Get("ghost")
	if _, err := b.Wisdom(); !errors.Is(err, ErrMissingAttribute) {
		t.Errorf("err = %v, want ErrMissingAttribute", err)
	}
	if _, err := b.Spawn(); !errors.Is(err, ErrMissingAttribute) {
		t.Errorf("Spawn err = %v, want ErrMissingAttribute", err)
	}
}

func TestUnknownParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breeds.toml")
	os.WriteFile(path, []byte(`
[breeds.orphan]
parent = "nobody"
health = 1
`), 0o644)

	r := NewRegistry()
	if err := r.Load(path); !errors.Is(err, ErrUnknownParent) {
		t.Errorf("err = %v, want ErrUnknownParent", err)
	}
}

func TestParentCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breeds.toml")
	os.WriteFile(path, []byte(`
[breeds.a]
parent = "b"

[breeds.b]
parent = "a"
`), 0o644)

	r := NewRegistry()
	if err := r.Load(path); !errors.Is(err, ErrParentCycle) {
		t.Errorf("err = %v, want ErrParentCycle", err)
	}
}

func TestUnknownBreed(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("nothing"); !errors.Is(err, ErrUnknownBreed) {
		t.Errorf("err = %v, want ErrUnknownBreed", err)
	}
}

func TestNames(t *testing.T) {
	r := loadRegistry(t, `
[breeds.zed]
health = 1
wisdom = 1
agility = 1

[breeds.abe]
parent = "zed"
`)

	names := r.Names()
	if len(names) != 2 || names[0] != "abe" || names[1] != "zed" {
		t.Errorf("Names = %v, want [abe zed]", names)
	}
}

func TestWizardReset(t *testing.T) {
	r := loadRegistry(t, `
[breeds.goblin]
health = 10
wisdom = 2
agility = 5
`)

	b, _ := r.Get("goblin")
	w, err := b.Spawn()
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	w.SetHealth(1)
	w.SetAgility(99)
	if err := w.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if w.Health() != 10 || w.Agility() != 5 {
		t.Errorf("after Reset: health=%d agility=%d, want 10/5", w.Health(), w.Agility())
	}
}
