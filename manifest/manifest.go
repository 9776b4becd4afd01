// Package manifest handles grimoire.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file name looked up by Load and FindAndLoad.
const ManifestName = "grimoire.toml"

// Manifest represents a grimoire.toml project configuration.
type Manifest struct {
	Project Project     `toml:"project"`
	Paths   Paths       `toml:"paths"`
	Limits  Limits      `toml:"limits"`
	Breeds  BreedConfig `toml:"breeds"`

	// Dir is the directory containing the grimoire.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Paths configures where the project's databases live, relative to Dir.
type Paths struct {
	Spellbook string `toml:"spellbook"`
	Journal   string `toml:"journal"`
}

// Limits configures execution bounds.
type Limits struct {
	Fuel uint64 `toml:"fuel"`
}

// BreedConfig configures breed definition files, relative to Dir.
type BreedConfig struct {
	Files []string `toml:"files"`
}

// Load parses a grimoire.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Paths.Spellbook == "" {
		m.Paths.Spellbook = "spellbook.db"
	}
	if m.Paths.Journal == "" {
		m.Paths.Journal = "journal.db"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a grimoire.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SpellbookPath returns the absolute path of the spellbook database.
func (m *Manifest) SpellbookPath() string {
	return filepath.Join(m.Dir, m.Paths.Spellbook)
}

// JournalPath returns the absolute path of the journal database.
func (m *Manifest) JournalPath() string {
	return filepath.Join(m.Dir, m.Paths.Journal)
}

// BreedFilePaths returns absolute paths for the configured breed files.
func (m *Manifest) BreedFilePaths() []string {
	var paths []string
	for _, f := range m.Breeds.Files {
		paths = append(paths, filepath.Join(m.Dir, f))
	}
	return paths
}
