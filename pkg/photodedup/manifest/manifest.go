package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/photodedup/pkg/photodedup/logging"
	"github.com/jamesainslie/photodedup/pkg/photodedup/output"
)

var logger = logging.Get("manifest")

// ErrNotFound is returned by Get when no entry matches.
var ErrNotFound = errors.New("entry not found")

// ErrAmbiguousID is returned by Get when a prefix matches several entries.
var ErrAmbiguousID = errors.New("ambiguous entry id")

const entryPrefix = "run-"

// Manifest manages run history on the filesystem.
type Manifest struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New creates a new Manifest with the given directory.
// The directory is not created until EnsureDir is called.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir, now: time.Now}, nil
}

// Dir returns the manifest directory.
func (m *Manifest) Dir() string {
	return m.dir
}

// EnsureDir creates the manifest directory if it does not exist.
func (m *Manifest) EnsureDir() error {
	return os.MkdirAll(m.dir, 0o755)
}

// NewEntry builds an unsaved entry from a report. Every group is recorded,
// independent of the report's display limit.
func NewEntry(r *output.Result) Entry {
	groups := make([]GroupRecord, len(r.Groups))
	for i, g := range r.Groups {
		paths := make([]string, len(g.Files))
		for j, f := range g.Files {
			paths[j] = f.Path
		}
		groups[i] = GroupRecord{Digest: g.Digest, Size: g.Size, Paths: paths}
	}

	return Entry{
		Root:   r.Source,
		Policy: r.Policy,
		Method: r.Method,
		Groups: groups,
		Summary: Summary{
			Images:      r.Stats.Images,
			Groups:      r.Stats.Groups,
			ExtraFiles:  r.Stats.ExtraFiles,
			WastedSpace: r.Stats.WastedSpace,
			Errors:      len(r.Errors),
		},
	}
}

// Record persists a report as a new entry and returns it.
func (m *Manifest) Record(r *output.Result) (*Entry, error) {
	entry := NewEntry(r)
	return m.Log(entry)
}

// Log assigns an ID and timestamp to entry and persists it.
func (m *Manifest) Log(entry Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.Timestamp = m.now().UTC()
	if entry.Groups == nil {
		entry.Groups = []GroupRecord{}
	}

	if err := m.writeEntry(&entry); err != nil {
		return nil, fmt.Errorf("failed to write manifest entry: %w", err)
	}

	logger.Debug("run recorded", "id", entry.ID, "groups", len(entry.Groups))
	return &entry, nil
}

// writeEntry writes an entry to a JSON file in the manifest directory.
func (m *Manifest) writeEntry(entry *Entry) error {
	filePath := filepath.Join(m.dir, entryFilename(entry))

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	// Write atomically using a temp file and rename
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// entryFilename sorts lexically by time, e.g.
// "run-2024-06-15T10-30-00-<uuid>.json".
func entryFilename(entry *Entry) string {
	return fmt.Sprintf("%s%s-%s.json", entryPrefix, entry.Timestamp.Format("2006-01-02T15-04-05"), entry.ID)
}

// readAll parses every entry file in the directory. Unparseable files are
// skipped. The caller must hold m.mu.
func (m *Manifest) readAll() ([]Entry, error) {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if !isEntryFile(f) {
			continue
		}

		entry, err := m.readEntryFile(f.Name())
		if err != nil {
			logger.Warn("skipping unreadable manifest entry", "file", f.Name(), "error", err)
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func isEntryFile(f os.DirEntry) bool {
	return !f.IsDir() && strings.HasPrefix(f.Name(), entryPrefix) && strings.HasSuffix(f.Name(), ".json")
}

// List returns entries sorted by timestamp descending (newest first).
// If limit is 0 or negative, all entries are returned.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get retrieves an entry by full ID or unique ID prefix.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	var match *Entry
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
		if strings.HasPrefix(entries[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
			}
			match = &entries[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}

// readEntryFile reads and parses a manifest entry from a JSON file.
func (m *Manifest) readEntryFile(filename string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	return &entry, nil
}

// Cleanup removes entries whose timestamp is older than retentionDays and
// returns how many were removed. A non-positive retention keeps everything.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	removed := 0
	for _, f := range files {
		if !isEntryFile(f) {
			continue
		}

		entry, err := m.readEntryFile(f.Name())
		if err != nil {
			continue
		}
		if !entry.Timestamp.Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(m.dir, f.Name())); err != nil {
			logger.Warn("failed to remove expired manifest entry", "file", f.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("expired manifest entries removed", "count", removed, "retention_days", retentionDays)
	}
	return removed, nil
}
