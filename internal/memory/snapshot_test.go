package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/chops/internal/models"
	"github.com/ajitpratap0/chops/internal/persistence"
)

func populatedStore(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(DefaultConfig(), newTestClock())
	s.Record(testIdea(models.PersonaMadScientist, "fintech", 0.9, "ledger", "chain"))
	s.Record(testIdea(models.PersonaZenMaster, "fintech", 0.4, "calm"))
	s.RecordFeedback(models.PersonaMadScientist, 0.85)
	return s
}

func TestSnapshot_RoundTrip(t *testing.T) {
	src := populatedStore(t)
	snap := src.Snapshot()

	dst := newTestStore(DefaultConfig(), newTestClock())
	require.NoError(t, dst.Restore(snap))

	assert.Equal(t, src.Stats(), dst.Stats())

	got, ok := dst.Recall("ledger")
	require.True(t, ok)
	assert.Equal(t, models.PersonaMadScientist, got.PersonaUsed)

	// Long-term learning survives the trip.
	ranks := dst.Recommend("fintech")
	require.NotEmpty(t, ranks)
	assert.Equal(t, models.PersonaMadScientist, ranks[0].Persona)
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s := populatedStore(t)
	snap := s.Snapshot()

	snap.ShortTerm.RecentIdeas[0].Tags[0] = "mutated"
	snap.LongTerm.SuccessfulPatterns["ledger"].SuccessRate = -99

	got, ok := s.Recall("ledger")
	require.True(t, ok)
	assert.Equal(t, "ledger", got.Tags[0])

	fresh := s.Snapshot()
	assert.NotEqual(t, -99.0, fresh.LongTerm.SuccessfulPatterns["ledger"].SuccessRate)
}

func TestRestore_DetachesFromCallerSnapshot(t *testing.T) {
	src := populatedStore(t)
	snap := src.Snapshot()

	dst := newTestStore(DefaultConfig(), newTestClock())
	require.NoError(t, dst.Restore(snap))

	// Mutating the caller's snapshot after Restore must not leak into
	// the store.
	snap.ShortTerm.RecentIdeas[0].Tags[0] = "mutated"
	snap.LongTerm.SuccessfulPatterns["ledger"].SuccessRate = -99
	snap.Working.ActiveContext["recent_tag_ledger"] = "poisoned"

	got, ok := dst.Recall("ledger")
	require.True(t, ok)
	assert.Equal(t, "ledger", got.Tags[0])

	after := dst.Snapshot()
	assert.NotEqual(t, -99.0, after.LongTerm.SuccessfulPatterns["ledger"].SuccessRate)
	assert.NotEqual(t, "poisoned", after.Working.ActiveContext["recent_tag_ledger"])
}

func TestRestore_RejectsCorruptSnapshotWholesale(t *testing.T) {
	s := populatedStore(t)
	before := s.Stats()

	corrupt := s.Snapshot()
	corrupt.ShortTerm.MaxCapacity = 0
	err := s.Restore(corrupt)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
	assert.Equal(t, before, s.Stats(), "a rejected restore must not touch the store")

	corrupt = s.Snapshot()
	corrupt.Working.CognitiveLoad = 1.5
	assert.ErrorIs(t, s.Restore(corrupt), ErrCorruptSnapshot)

	corrupt = s.Snapshot()
	corrupt.ShortTerm.RecentIdeas[0].CreativityScore = 2.0
	assert.ErrorIs(t, s.Restore(corrupt), ErrCorruptSnapshot)

	corrupt = s.Snapshot()
	corrupt.LongTerm.SuccessfulPatterns["ledger"].SuccessRate = -0.1
	assert.ErrorIs(t, s.Restore(corrupt), ErrCorruptSnapshot)

	assert.Equal(t, before, s.Stats())
}

func TestSaveLoad_FileBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.json")

	storage, err := persistence.NewFileStorage(path)
	require.NoError(t, err)
	defer func() { _ = storage.Close() }()

	src := populatedStore(t)
	require.NoError(t, src.Save(ctx, storage))

	dst := newTestStore(DefaultConfig(), newTestClock())
	require.NoError(t, dst.Load(ctx, storage))
	assert.Equal(t, src.Stats(), dst.Stats())
}

func TestLoad_EmptySlotLeavesStoreEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "missing.json")

	storage, err := persistence.NewFileStorage(path)
	require.NoError(t, err)
	defer func() { _ = storage.Close() }()

	s := newTestStore(DefaultConfig(), newTestClock())
	require.NoError(t, s.Load(ctx, storage))
	assert.Zero(t, s.Stats().ShortTermCount)
}

func TestLoad_UndecodableDataIsCorrupt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.json")

	storage, err := persistence.NewFileStorage(path)
	require.NoError(t, err)
	defer func() { _ = storage.Close() }()
	require.NoError(t, storage.Write(ctx, []byte("{not json")))

	s := populatedStore(t)
	before := s.Stats()
	assert.ErrorIs(t, s.Load(ctx, storage), ErrCorruptSnapshot)
	assert.Equal(t, before, s.Stats(), "corrupt data must keep the prior state")
}
