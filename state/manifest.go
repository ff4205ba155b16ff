// Package state keeps a manifest of the files proforma has generated in a
// project. Generated files are never removed automatically; the manifest is
// what tells a user which files came from which template.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// FileName is the manifest file kept in the project root.
const FileName = ".proforma.manifest.json"

const manifestVersion = "1"

// Entry describes one generated file. Hash is the hex SHA-256 of the content
// as written.
type Entry struct {
	Path        string    `json:"path"`
	Template    string    `json:"template"`
	Hash        string    `json:"hash"`
	Size        int64     `json:"size"`
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Manifest maps slash-separated project paths to the entries of the files
// generated there. It implements engine.Recorder.
type Manifest struct {
	Version string           `json:"version"`
	RunID   string           `json:"run_id,omitempty"`
	Updated time.Time        `json:"updated"`
	Entries map[string]Entry `json:"entries"`

	now func() time.Time
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{
		Version: manifestVersion,
		Entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Load reads the manifest of projectDir. A project without a manifest gets an
// empty one.
func Load(projectDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m := New()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if m.Entries == nil {
		m.Entries = make(map[string]Entry)
	}
	return m, nil
}

// BeginRun stamps subsequent entries with a fresh run ID and returns it.
func (m *Manifest) BeginRun() string {
	m.RunID = uuid.NewString()
	return m.RunID
}

// Record stores an entry for a file written at path (slash-separated, relative
// to the project root).
func (m *Manifest) Record(path, template string, content []byte) {
	sum := sha256.Sum256(content)
	now := m.now()
	m.Entries[path] = Entry{
		Path:        path,
		Template:    template,
		Hash:        hex.EncodeToString(sum[:]),
		Size:        int64(len(content)),
		RunID:       m.RunID,
		GeneratedAt: now,
	}
	m.Updated = now
}

// List returns the entries sorted by path.
func (m *Manifest) List() []Entry {
	entries := make([]Entry, 0, len(m.Entries))
	for _, e := range m.Entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}

// Modified reports whether the file recorded for path differs from what was
// generated. A missing file counts as modified.
func (m *Manifest) Modified(projectDir, path string) (bool, error) {
	entry, ok := m.Entries[path]
	if !ok {
		return false, fmt.Errorf("no manifest entry for %s", path)
	}

	data, err := os.ReadFile(filepath.Join(projectDir, filepath.FromSlash(path)))
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) != entry.Hash, nil
}

// Save writes the manifest to projectDir through a temporary file.
func (m *Manifest) Save(projectDir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(projectDir, FileName)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move manifest file: %w", err)
	}
	return nil
}
