package spellbook

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/grimoire-vm/grimoire/pkg/bytecode"
	"github.com/grimoire-vm/grimoire/pkg/wire"
)

func openBook(t *testing.T) *Book {
	t.Helper()
	book, err := Open(filepath.Join(t.TempDir(), "spells.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { book.Close() })
	return book
}

func healSpell(t *testing.T) *bytecode.Chunk {
	t.Helper()
	chunk, err := bytecode.Assemble(`
		LITERAL 3
		LITERAL 0
		SET_HEALTH
	`)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	return chunk
}

func TestPutAndGet(t *testing.T) {
	book := openBook(t)
	chunk := healSpell(t)

	id, err := book.Put("heal", chunk)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	wantID, _ := wire.ID(chunk)
	if id != wantID {
		t.Errorf("Put id = %q, want content id %q", id, wantID)
	}

	got, err := book.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	gotID, _ := wire.ID(got)
	if gotID != id {
		t.Errorf("round-tripped chunk has id %q, want %q", gotID, id)
	}
}

func TestGetByName(t *testing.T) {
	book := openBook(t)
	chunk := healSpell(t)

	if _, err := book.Put("heal", chunk); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := book.GetByName("heal")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if len(got.Code) != len(chunk.Code) {
		t.Errorf("Code length = %d, want %d", len(got.Code), len(chunk.Code))
	}
}

func TestGetMissing(t *testing.T) {
	book := openBook(t)

	if _, err := book.Get("nope"); !errors.Is(err, ErrSpellNotFound) {
		t.Errorf("Get err = %v, want ErrSpellNotFound", err)
	}
	if _, err := book.GetByName("nope"); !errors.Is(err, ErrSpellNotFound) {
		t.Errorf("GetByName err = %v, want ErrSpellNotFound", err)
	}
}

func TestPutIsIdempotentByContent(t *testing.T) {
	book := openBook(t)
	chunk := healSpell(t)

	id1, err := book.Put("heal", chunk)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	id2, err := book.Put("heal-renamed", chunk)
	if err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("same chunk stored under ids %q and %q", id1, id2)
	}

	entries, err := book.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("List returned %d entries, want 1 (content-keyed)", len(entries))
	}
	if entries[0].Name != "heal-renamed" {
		t.Errorf("entry name = %q, want %q", entries[0].Name, "heal-renamed")
	}
}

func TestList(t *testing.T) {
	book := openBook(t)

	a, _ := bytecode.Assemble("LITERAL 1\nLITERAL 0\nSET_HEALTH")
	b, _ := bytecode.Assemble("LITERAL 2\nLITERAL 0\nSET_WISDOM")

	if _, err := book.Put("zap", a); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := book.Put("bless", b); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entries, err := book.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(entries))
	}
	if entries[0].Name != "bless" || entries[1].Name != "zap" {
		t.Errorf("List order = [%s %s], want [bless zap]", entries[0].Name, entries[1].Name)
	}
}

func TestDelete(t *testing.T) {
	book := openBook(t)
	chunk := healSpell(t)

	id, err := book.Put("heal", chunk)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := book.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := book.Get(id); !errors.Is(err, ErrSpellNotFound) {
		t.Errorf("Get after Delete err = %v, want ErrSpellNotFound", err)
	}
	if err := book.Delete(id); !errors.Is(err, ErrSpellNotFound) {
		t.Errorf("second Delete err = %v, want ErrSpellNotFound", err)
	}
}

func TestStoredSpellExecutes(t *testing.T) {
	book := openBook(t)

	id, err := book.Put("heal", healSpell(t))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	chunk, err := book.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	actor := &stubActor{}
	vm := bytecode.NewVM()
	if _, err := vm.Execute(chunk, bytecode.Table{0: actor}, nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if actor.health != 3 {
		t.Errorf("health = %d, want 3", actor.health)
	}
}

type stubActor struct {
	health, wisdom, agility int64
}

func (a *stubActor) Health() int64      { return a.health }
func (a *stubActor) SetHealth(v int64)  { a.health = v }
func (a *stubActor) Wisdom() int64      { return a.wisdom }
func (a *stubActor) SetWisdom(v int64)  { a.wisdom = v }
func (a *stubActor) Agility() int64     { return a.agility }
func (a *stubActor) SetAgility(v int64) { a.agility = v }
