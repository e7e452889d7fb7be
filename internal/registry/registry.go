package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"refcat/internal/logging"
)

// Registry accumulates identifier-to-name mappings observed during
// resolution. Append-only within a run; duplicate identifiers are
// last-write-wins. Save rewrites the side file from scratch, matching the
// lifetime of the resolution cache rather than merging across runs.
type Registry struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock

	mu      sync.Mutex
	entries map[string]string
}

// New constructs a registry persisting to path. An empty path disables
// persistence; Record and Snapshot still work.
func New(path string, logger *slog.Logger) *Registry {
	r := &Registry{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "registry"),
		entries: make(map[string]string),
	}
	if path != "" {
		r.lock = flock.New(path + ".lock")
	}
	return r
}

// Record stores the display name for an identifier.
func (r *Registry) Record(oid, shortName string) {
	oid = strings.TrimSpace(oid)
	if oid == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[oid] = shortName
}

// Snapshot returns a copy of the full mapping for external reporting.
func (r *Registry) Snapshot() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make(map[string]string, len(r.entries))
	for oid, name := range r.entries {
		snapshot[oid] = name
	}
	return snapshot
}

// Save rewrites the side file with the current mapping, pretty-printed UTF-8
// JSON. A file lock guards against interleaved writes from concurrent
// invocations of the CLI.
func (r *Registry) Save() error {
	if r.path == "" {
		return nil
	}

	snapshot := r.Snapshot()
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(r.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create registry directory: %w", err)
		}
	}

	if r.lock != nil {
		if err := r.lock.Lock(); err != nil {
			return fmt.Errorf("lock registry file: %w", err)
		}
		defer func() {
			_ = r.lock.Unlock()
		}()
	}

	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write registry file: %w", err)
	}

	r.logger.Debug("registry saved", logging.String("path", r.path), logging.Int("entries", len(snapshot)))
	return nil
}

// Load reads a previously saved registry file into a plain mapping. Used by
// reporting commands; the in-memory registry never merges with it.
func Load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse registry file: %w", err)
	}
	return entries, nil
}
