package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Meta carries the fields every stored record has. Entity types embed it.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordID returns the record's unique ID within its collection.
func (m *Meta) RecordID() string { return m.ID }

func (m *Meta) stampNew(id string, now time.Time) {
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
}

func (m *Meta) touch(now time.Time) {
	m.UpdatedAt = now
}

// Record constrains collection element types to structs embedding Meta.
type Record[T any] interface {
	*T
	RecordID() string
	stampNew(id string, now time.Time)
	touch(now time.Time)
}

// NormalizeFunc rewrites legacy on-disk content into the canonical array
// shape. It returns the rewritten bytes and whether a rewrite happened.
type NormalizeFunc func(data []byte) ([]byte, bool)

// Collection exposes typed CRUD over one JSON array file.
type Collection[T any, P Record[T]] struct {
	store     *Store
	name      string
	normalize NormalizeFunc
}

// CollectionOption customizes collection behavior.
type CollectionOption func(*collectionConfig)

type collectionConfig struct {
	normalize NormalizeFunc
}

// WithNormalize installs a legacy-shape migration applied after every read.
// The next mutation persists the canonical shape.
func WithNormalize(fn NormalizeFunc) CollectionOption {
	return func(c *collectionConfig) { c.normalize = fn }
}

// NewCollection binds a typed collection to a store file (<name>.json).
func NewCollection[T any, P Record[T]](store *Store, name string, opts ...CollectionOption) *Collection[T, P] {
	var cfg collectionConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Collection[T, P]{store: store, name: name, normalize: cfg.normalize}
}

// All returns every record in the collection, in file order.
func (c *Collection[T, P]) All(ctx context.Context) ([]T, error) {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()
	return c.readAll(ctx)
}

// Replace overwrites the whole collection with the given records.
func (c *Collection[T, P]) Replace(ctx context.Context, records []T, opts WriteOptions) error {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()
	return c.writeAll(records, opts)
}

// Insert assigns a generated ID and creation timestamp, appends the record,
// and rewrites the collection.
func (c *Collection[T, P]) Insert(ctx context.Context, record T) (T, error) {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()

	records, err := c.readAll(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	P(&record).stampNew(c.store.NewID(), c.store.clk.Now())
	records = append(records, record)
	if err := c.writeAll(records, WriteOptions{Backup: true}); err != nil {
		var zero T
		return zero, err
	}
	return record, nil
}

// Update locates a record by ID, applies mutate to it, stamps updatedAt, and
// rewrites the collection. Returns ErrNotFound without writing when the ID is
// absent.
func (c *Collection[T, P]) Update(ctx context.Context, id string, mutate func(P)) (T, error) {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()

	var zero T
	records, err := c.readAll(ctx)
	if err != nil {
		return zero, err
	}

	idx := -1
	for i := range records {
		if P(&records[i]).RecordID() == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return zero, ErrNotFound
	}

	mutate(P(&records[idx]))
	P(&records[idx]).touch(c.store.clk.Now())

	if err := c.writeAll(records, WriteOptions{Backup: true}); err != nil {
		return zero, err
	}
	return records[idx], nil
}

// Delete removes a record by ID and reports whether anything was removed.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()

	records, err := c.readAll(ctx)
	if err != nil {
		return false, err
	}

	kept := records[:0:0]
	for i := range records {
		if P(&records[i]).RecordID() != id {
			kept = append(kept, records[i])
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	if err := c.writeAll(kept, WriteOptions{Backup: true}); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the record with the given ID, reporting whether it exists.
func (c *Collection[T, P]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	records, err := c.All(ctx)
	if err != nil {
		return zero, false, err
	}
	for i := range records {
		if P(&records[i]).RecordID() == id {
			return records[i], true, nil
		}
	}
	return zero, false, nil
}

// Find returns the records matching pred, in file order.
func (c *Collection[T, P]) Find(ctx context.Context, pred func(T) bool) ([]T, error) {
	records, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *Collection[T, P]) readAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := c.store.readFile(c.name)
	if err != nil {
		return nil, err
	}
	if c.normalize != nil {
		if rewritten, ok := c.normalize(data); ok {
			data = rewritten
		}
	}

	// Non-array content reads as an empty collection; the next write
	// restores the canonical shape.
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed[0] != '[' {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", c.name, err)
	}
	return records, nil
}

func (c *Collection[T, P]) writeAll(records []T, opts WriteOptions) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", c.name, err)
	}
	return c.store.writeFile(c.name, append(data, '\n'), opts)
}
