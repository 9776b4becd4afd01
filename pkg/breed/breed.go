// Package breed implements data-driven actor kinds: a breed is a named
// bundle of starting attributes, optionally inheriting unset attributes
// from a parent breed. Breeds are defined in TOML files so new kinds of
// actors can be added without recompiling.
package breed

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

var (
	// ErrUnknownBreed is returned when a breed name does not resolve.
	ErrUnknownBreed = errors.New("unknown breed")

	// ErrUnknownParent is returned when a breed names a parent that is
	// not defined.
	ErrUnknownParent = errors.New("unknown parent breed")

	// ErrParentCycle is returned when breed inheritance forms a cycle.
	ErrParentCycle = errors.New("breed parent cycle")

	// ErrMissingAttribute is returned when an attribute is unset on a
	// breed and on every ancestor.
	ErrMissingAttribute = errors.New("missing attribute")
)

// breedSpec is the TOML shape of a breed definition. Unset attributes
// inherit from the parent chain.
type breedSpec struct {
	Parent  string `toml:"parent"`
	Health  *int64 `toml:"health"`
	Wisdom  *int64 `toml:"wisdom"`
	Agility *int64 `toml:"agility"`
}

type breedFile struct {
	Breeds map[string]breedSpec `toml:"breeds"`
}

// Breed is a resolved actor kind.
type Breed struct {
	name    string
	parent  *Breed
	health  *int64
	wisdom  *int64
	agility *int64
}

// Name returns the breed's name.
func (b *Breed) Name() string { return b.name }

// Health resolves the starting health through the parent chain.
func (b *Breed) Health() (int64, error) {
	return b.resolve("health", func(x *Breed) *int64 { return x.health })
}

// Wisdom resolves the starting wisdom through the parent chain.
func (b *Breed) Wisdom() (int64, error) {
	return b.resolve("wisdom", func(x *Breed) *int64 { return x.wisdom })
}

// Agility resolves the starting agility through the parent chain.
func (b *Breed) Agility() (int64, error) {
	return b.resolve("agility", func(x *Breed) *int64 { return x.agility })
}

func (b *Breed) resolve(attr string, get func(*Breed) *int64) (int64, error) {
	for cur := b; cur != nil; cur = cur.parent {
		if v := get(cur); v != nil {
			return *v, nil
		}
	}
	return 0, fmt.Errorf("%w: %s on breed %q", ErrMissingAttribute, attr, b.name)
}

// Spawn creates a Wizard with the breed's starting attributes.
func (b *Breed) Spawn() (*Wizard, error) {
	health, err := b.Health()
	if err != nil {
		return nil, err
	}
	wisdom, err := b.Wisdom()
	if err != nil {
		return nil, err
	}
	agility, err := b.Agility()
	if err != nil {
		return nil, err
	}
	return &Wizard{
		Breed:   b,
		health:  health,
		wisdom:  wisdom,
		agility: agility,
	}, nil
}

// Registry holds a set of resolved breeds.
type Registry struct {
	breeds map[string]*Breed
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{breeds: make(map[string]*Breed)}
}

// Load reads breed definitions from a TOML file into the registry.
// Parents may refer to breeds defined in the same file or loaded earlier.
func (r *Registry) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	return r.loadTOML(path, data)
}

func (r *Registry) loadTOML(path string, data []byte) error {
	var file breedFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse error in %s: %w", path, err)
	}

	// Insert all breeds first so parents can be linked regardless of
	// definition order.
	for name, spec := range file.Breeds {
		r.breeds[name] = &Breed{
			name:    name,
			health:  spec.Health,
			wisdom:  spec.Wisdom,
			agility: spec.Agility,
		}
	}

	// Link parents. Sort names so error reporting is deterministic.
	names := make([]string, 0, len(file.Breeds))
	for name := range file.Breeds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := file.Breeds[name]
		if spec.Parent == "" {
			continue
		}
		parent, ok := r.breeds[spec.Parent]
		if !ok {
			return fmt.Errorf("%w: %q (parent of %q)", ErrUnknownParent, spec.Parent, name)
		}
		r.breeds[name].parent = parent
	}

	// Cycle check: walk each parent chain with a visited set.
	for _, name := range names {
		seen := map[string]bool{}
		for cur := r.breeds[name]; cur != nil; cur = cur.parent {
			if seen[cur.name] {
				return fmt.Errorf("%w: via %q", ErrParentCycle, name)
			}
			seen[cur.name] = true
		}
	}

	return nil
}

// Get looks up a breed by name.
func (r *Registry) Get(name string) (*Breed, error) {
	b, ok := r.breeds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBreed, name)
	}
	return b, nil
}

// Names returns all registered breed names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.breeds))
	for name := range r.breeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
