package archive

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mcs-risk/internal/simulation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(projectID string, expected float64) Record {
	return Record{
		ProjectID:       projectID,
		RunBy:           "user-7",
		Iterations:      10000,
		ConfidenceLevel: 0.95,
		Materialization: simulation.MaterializeFixed,
		Seed:            42,
		Variables: []simulation.Variable{
			{Name: "Slab Duration", Kind: simulation.KindDuration, Distribution: simulation.DistTriangular, Min: 8, Max: 15},
		},
		Result: simulation.Result{
			Trials:           10000,
			ExpectedDuration: expected,
			Percentiles:      simulation.Percentiles{P90: expected + 2},
			Criticality:      map[string]float64{"Slab Duration": 0.25},
		},
	}
}

func TestStore_AppendAndGet(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	rec, err := store.Append(sampleRecord("tower-a", 11))
	require.NoError(t, err)
	_, err = uuid.Parse(rec.ID)
	assert.NoError(t, err, "expected a UUID record id")
	assert.False(t, rec.RunAt.IsZero())

	got, err := store.Get("tower-a", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 11.0, got.Result.ExpectedDuration)
	assert.Equal(t, 0.25, got.Result.Criticality["Slab Duration"])

	// A fresh store must see the same record from disk.
	reloaded, err := NewStore(dir).Get("tower-a", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, reloaded.ID)
	assert.True(t, rec.RunAt.Equal(reloaded.RunAt))
	assert.Equal(t, rec.Variables, reloaded.Variables)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := NewStore(t.TempDir())
	base := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		rec := sampleRecord("tower-a", float64(10+i))
		rec.RunAt = base.Add(time.Duration(i) * time.Hour)
		_, err := store.Append(rec)
		require.NoError(t, err)
	}
	_, err := store.Append(sampleRecord("annex", 4))
	require.NoError(t, err)

	list, err := store.List("tower-a")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 12.0, list[0].ExpectedDuration)
	assert.Equal(t, 14.0, list[0].P90Duration)
	assert.Equal(t, 10.0, list[2].ExpectedDuration)

	latest, err := store.Latest("tower-a")
	require.NoError(t, err)
	assert.Equal(t, 12.0, latest.Result.ExpectedDuration)

	annex, err := store.List("annex")
	require.NoError(t, err)
	assert.Len(t, annex, 1)
}

func TestStore_NotFound(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Get("tower-a", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Latest("tower-a")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := store.List("tower-a")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_RejectsDuplicatesAndBadIDs(t *testing.T) {
	store := NewStore(t.TempDir())

	rec, err := store.Append(sampleRecord("tower-a", 1))
	require.NoError(t, err)
	_, err = store.Append(rec)
	assert.Error(t, err)

	_, err = store.Append(sampleRecord("../escape", 1))
	assert.Error(t, err)
}

func TestStore_SkipsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewStore(dir).Append(sampleRecord("tower-a", 9))
	require.NoError(t, err)

	f, err := os.OpenFile(filepath.Join(dir, "tower-a.jsonl"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	list, err := NewStore(dir).List("tower-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rec.ID, list[0].ID)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Append(sampleRecord("tower-a", float64(i)))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := NewStore(dir).List("tower-a")
	require.NoError(t, err)
	assert.Len(t, list, 20)
}
