package wire

import (
	"errors"
	"testing"

	"github.com/grimoire-vm/grimoire/pkg/bytecode"
)

func sampleChunk(t *testing.T) *bytecode.Chunk {
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

func TestChunkRoundTrip(t *testing.T) {
	chunk := sampleChunk(t)

	data, err := MarshalChunk(chunk)
	if err != nil {
		t.Fatalf("MarshalChunk failed: %v", err)
	}

	decoded, err := UnmarshalChunk(data)
	if err != nil {
		t.Fatalf("UnmarshalChunk failed: %v", err)
	}

	if decoded.Version != chunk.Version {
		t.Errorf("Version = %d, want %d", decoded.Version, chunk.Version)
	}
	if len(decoded.Code) != len(chunk.Code) {
		t.Fatalf("Code length = %d, want %d", len(decoded.Code), len(chunk.Code))
	}
	for i := range chunk.Code {
		if decoded.Code[i] != chunk.Code[i] {
			t.Errorf("Code[%d] = 0x%02X, want 0x%02X", i, decoded.Code[i], chunk.Code[i])
		}
	}
	if len(decoded.Constants) != len(chunk.Constants) {
		t.Fatalf("Constants = %v, want %v", decoded.Constants, chunk.Constants)
	}

	// The decoded chunk must execute identically.
	vm := bytecode.NewVM()
	actor := &recordingActor{}
	if _, err := vm.Execute(decoded, bytecode.Table{0: actor}, nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if actor.health != 3 {
		t.Errorf("health = %d, want 3", actor.health)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalChunk([]byte{0xFF, 0x00, 0x13}); err == nil {
		t.Error("UnmarshalChunk accepted garbage")
	}
}

func TestUnmarshalValidatesChunk(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.Code = []byte{0xEE} // not a real opcode

	data, err := MarshalChunk(chunk)
	if err != nil {
		t.Fatalf("MarshalChunk failed: %v", err)
	}

	_, err = UnmarshalChunk(data)
	if !errors.Is(err, bytecode.ErrBadOpcode) {
		t.Errorf("err = %v, want ErrBadOpcode", err)
	}
}

func TestIDIsDeterministic(t *testing.T) {
	a := sampleChunk(t)
	b := sampleChunk(t)

	idA, err := ID(a)
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}
	idB, err := ID(b)
	if err != nil {
		t.Fatalf("ID failed: %v", err)
	}

	if idA != idB {
		t.Errorf("identical chunks got ids %q and %q", idA, idB)
	}
	if idA == "" {
		t.Error("empty id")
	}
}

func TestIDDistinguishesChunks(t *testing.T) {
	a := sampleChunk(t)
	b, err := bytecode.Assemble("LITERAL 4\nLITERAL 0\nSET_HEALTH")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	idA, _ := ID(a)
	idB, _ := ID(b)
	if idA == idB {
		t.Errorf("different chunks share id %q", idA)
	}
}

// recordingActor is a minimal Actor for round-trip execution checks.
type recordingActor struct {
	health, wisdom, agility int64
}

func (a *recordingActor) Health() int64      { return a.health }
func (a *recordingActor) SetHealth(v int64)  { a.health = v }
func (a *recordingActor) Wisdom() int64      { return a.wisdom }
func (a *recordingActor) SetWisdom(v int64)  { a.wisdom = v }
func (a *recordingActor) Agility() int64     { return a.agility }
func (a *recordingActor) SetAgility(v int64) { a.agility = v }
