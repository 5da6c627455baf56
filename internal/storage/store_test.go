package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshmart/storefront/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testRecord struct {
	Meta
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func newTestStore(t *testing.T) (*Store, *clock.FakeClock) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store, err := New(t.TempDir(), Params{Log: zap.NewNop(), GenID: node, Clk: clk})
	require.NoError(t, err)
	return store, clk
}

func TestInsertAssignsUniqueStableIDs(t *testing.T) {
	store, _ := newTestStore(t)
	col := NewCollection[testRecord](store, "items")
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		created, err := col.Insert(ctx, testRecord{Name: "item"})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.False(t, seen[created.ID], "duplicate id %s", created.ID)
		seen[created.ID] = true
	}

	records, err := col.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 10)
	for _, r := range records {
		assert.True(t, seen[r.ID], "id %s not stable across reads", r.ID)
	}
}

func TestReadAllMissingFileCreatesEmptyCollection(t *testing.T) {
	store, _ := newTestStore(t)
	col := NewCollection[testRecord](store, "missing")

	records, err := col.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = os.Stat(filepath.Join(store.Dir(), "missing.json"))
	assert.NoError(t, err)
}

func TestReadAllNonArrayContentReadsEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	path := filepath.Join(store.Dir(), "odd.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0o644))

	col := NewCollection[testRecord](store, "odd")
	records, err := col.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUpdateMissingIDPerformsNoWrite(t *testing.T) {
	store, _ := newTestStore(t)
	col := NewCollection[testRecord](store, "items")
	ctx := context.Background()

	_, err := col.Insert(ctx, testRecord{Name: "one"})
	require.NoError(t, err)

	before, err := os.ReadFile(filepath.Join(store.Dir(), "items.json"))
	require.NoError(t, err)

	_, err = col.Update(ctx, "nope", func(r *testRecord) { r.Name = "changed" })
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(filepath.Join(store.Dir(), "items.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateStampsUpdatedAt(t *testing.T) {
	store, clk := newTestStore(t)
	col := NewCollection[testRecord](store, "items")
	ctx := context.Background()

	created, err := col.Insert(ctx, testRecord{Name: "one"})
	require.NoError(t, err)

	clk.Advance(time.Minute)
	updated, err := col.Update(ctx, created.ID, func(r *testRecord) { r.Price = 9.99 })
	require.NoError(t, err)

	assert.Equal(t, 9.99, updated.Price)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestDeleteThenGetReportsMissing(t *testing.T) {
	store, _ := newTestStore(t)
	col := NewCollection[testRecord](store, "items")
	ctx := context.Background()

	created, err := col.Insert(ctx, testRecord{Name: "one"})
	require.NoError(t, err)

	removed, err := col.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, found, err := col.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, found)

	removed, err = col.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestReplaceRoundTripPreservesOrder(t *testing.T) {
	store, _ := newTestStore(t)
	col := NewCollection[testRecord](store, "items")
	ctx := context.Background()

	in := []testRecord{
		{Meta: Meta{ID: "3"}, Name: "c"},
		{Meta: Meta{ID: "1"}, Name: "a"},
		{Meta: Meta{ID: "2"}, Name: "b"},
	}
	require.NoError(t, col.Replace(ctx, in, WriteOptions{}))

	out, err := col.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBackupRetentionKeepsFiveNewest(t *testing.T) {
	store, clk := newTestStore(t)
	col := NewCollection[testRecord](store, "items")
	ctx := context.Background()

	require.NoError(t, col.Replace(ctx, []testRecord{}, WriteOptions{}))

	for i := 0; i < 8; i++ {
		clk.Advance(time.Second)
		require.NoError(t, col.Replace(ctx, []testRecord{{Meta: Meta{ID: "x"}}}, WriteOptions{Backup: true}))
	}

	matches, err := filepath.Glob(filepath.Join(store.Dir(), "items.json.backup.*"))
	require.NoError(t, err)
	require.Len(t, matches, 5)

	// The retained backups are the 5 most recent timestamps.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 4; i <= 8; i++ {
		ms := base.Add(time.Duration(i) * time.Second).UnixMilli()
		want := filepath.Join(store.Dir(), "items.json.backup."+strconv.FormatInt(ms, 10))
		assert.Contains(t, matches, want)
	}
}

func TestNormalizeMigratesLegacyShape(t *testing.T) {
	store, _ := newTestStore(t)
	path := filepath.Join(store.Dir(), "wrapped.json")
	legacy := `[{"orders":[{"id":"o1","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z","name":"n"}]}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	col := NewCollection[testRecord](store, "wrapped", WithNormalize(func(data []byte) ([]byte, bool) {
		var envelope []struct {
			Orders json.RawMessage `json:"orders"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil || len(envelope) != 1 || envelope[0].Orders == nil {
			return nil, false
		}
		return envelope[0].Orders, true
	}))

	records, err := col.All(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "o1", records[0].ID)
}
