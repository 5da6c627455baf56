package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/freshmart/storefront/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrNotFound indicates the requested record does not exist in the collection.
var ErrNotFound = errors.New("record not found")

const maxBackups = 5

// Store persists collections as JSON array files under a data directory.
// All mutations follow a read-all/mutate/write-all cycle serialized by a
// per-collection mutex, and writes go through temp-file-then-rename so a
// crash mid-write never corrupts the collection file.
type Store struct {
	dir   string
	log   *zap.Logger
	genID *snowflake.Node
	clk   clock.Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clk   clock.Clock
}

// New creates a Store rooted at dir, creating the directory when missing.
func New(dir string, p Params) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage: data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	return &Store{
		dir:   dir,
		log:   p.Log.Named("storage"),
		genID: p.GenID,
		clk:   p.Clk,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// NewID generates a unique, time-ordered record ID.
func (s *Store) NewID() string {
	return s.genID.Generate().String()
}

// Dir returns the data directory the store writes under.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) lock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	return l
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// readFile returns the raw collection bytes. A missing file is created empty
// and reported as an empty array; any other failure surfaces as an error.
func (s *Store) readFile(collection string) ([]byte, error) {
	path := s.path(collection)
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("storage: read %s: %w", collection, err)
	}
	if err := s.writeFile(collection, []byte("[]\n"), WriteOptions{}); err != nil {
		return nil, err
	}
	return []byte("[]"), nil
}

// WriteOptions controls collection write behavior.
type WriteOptions struct {
	// Backup copies the previous file contents to a timestamped backup
	// before overwriting, retaining the 5 most recent backups.
	Backup bool
}

func (s *Store) writeFile(collection string, data []byte, opts WriteOptions) error {
	path := s.path(collection)

	if opts.Backup {
		if err := s.backup(collection); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(s.dir, collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp for %s: %w", collection, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: write %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: close temp for %s: %w", collection, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: replace %s: %w", collection, err)
	}
	return nil
}

func (s *Store) backup(collection string) error {
	path := s.path(collection)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("storage: read %s for backup: %w", collection, err)
	}

	name := fmt.Sprintf("%s.backup.%d", path, s.clk.Now().UnixMilli())
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("storage: back up %s: %w", collection, err)
	}

	return s.pruneBackups(collection)
}

func (s *Store) pruneBackups(collection string) error {
	pattern := s.path(collection) + ".backup.*"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("storage: list backups for %s: %w", collection, err)
	}
	if len(matches) <= maxBackups {
		return nil
	}

	// Newest first; epoch-ms suffixes sort lexicographically.
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	for _, stale := range matches[maxBackups:] {
		if err := os.Remove(stale); err != nil {
			s.log.Warn("failed to prune backup", zap.String("file", stale), zap.Error(err))
		}
	}
	return nil
}

// Module wires the flat-file store.
var Module = fx.Module("storage",
	fx.Provide(Provide),
)
