package filters

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belpol-ops/belpol-ops/internal/shared"
)

type stubDefaults struct {
	criteria []Criterion
	err      error
}

func (s *stubDefaults) GetDefault(ctx context.Context, userID int64) ([]Criterion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.criteria, nil
}

func newTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStorage(client, time.Hour), mr
}

func TestSetAddReplacesSingleValuedKinds(t *testing.T) {
	storage, _ := newTestStorage(t)
	set := NewSet(nil, storage, nil, 7)
	ctx := context.Background()

	set.Add(ctx, NewStore(1, "Katowice"))
	active := set.Add(ctx, NewStore(2, "Gliwice"))

	require.Len(t, active, 1)
	assert.Equal(t, int64(2), active[0].StoreID)
}

func TestSetAddAccumulatesStatusValues(t *testing.T) {
	storage, _ := newTestStorage(t)
	set := NewSet(nil, storage, nil, 7)
	ctx := context.Background()

	set.Add(ctx, NewEnum(KindStatus, "nowe", "Nowe"))
	active := set.Add(ctx, NewEnum(KindStatus, "zaplanowany", "Zaplanowany"))

	require.Len(t, active, 2)
}

func TestSetAddRejectsDuplicateStatusValue(t *testing.T) {
	storage, _ := newTestStorage(t)
	set := NewSet(nil, storage, nil, 7)
	ctx := context.Background()

	set.Add(ctx, NewEnum(KindStatus, "nowe", "Nowe"))
	active := set.Add(ctx, NewEnum(KindStatus, "nowe", "Nowe (duplikat)"))

	require.Len(t, active, 1)
	assert.Equal(t, "Nowe", active[0].Label)
}

func TestSetAddKeepsDateRangesPerField(t *testing.T) {
	storage, _ := newTestStorage(t)
	set := NewSet(nil, storage, nil, 7)
	ctx := context.Background()

	set.Add(ctx, NewDateRange(DateFieldInstallation, day(2026, 3, 1), day(2026, 3, 31), "Montaż"))
	active := set.Add(ctx, NewDateRange(DateFieldTransport, day(2026, 3, 5), nil, "Transport"))

	require.Len(t, active, 2)

	// A second installation range replaces the first one.
	active = set.Add(ctx, NewDateRange(DateFieldInstallation, day(2026, 4, 1), nil, "Kwiecień"))
	require.Len(t, active, 2)
	for _, c := range active {
		if c.Range.AppliesTo == DateFieldInstallation {
			assert.Equal(t, "Kwiecień", c.Label)
		}
	}
}

func TestSetRemoveIsIdempotent(t *testing.T) {
	storage, _ := newTestStorage(t)
	set := NewSet(nil, storage, nil, 7)
	ctx := context.Background()

	c := NewEnum(KindStatus, "nowe", "Nowe")
	set.Add(ctx, c)

	active := set.Remove(ctx, c.ID)
	assert.Empty(t, active)

	active = set.Remove(ctx, c.ID)
	assert.Empty(t, active)

	active = set.Remove(ctx, "missing-id")
	assert.Empty(t, active)
}

func TestSetLoadSeedsFreshSessionFromDefault(t *testing.T) {
	storage, _ := newTestStorage(t)
	ctx := context.Background()

	defaults := &stubDefaults{criteria: []Criterion{NewEnum(KindStatus, "wykonane", "Wykonane")}}
	set := NewSet(nil, storage, defaults, 7)

	active := set.Load(ctx)
	require.Len(t, active, 1)
	assert.Equal(t, KindStatus, active[0].Kind)
}

func TestSetLoadPrefersBlobOverDefault(t *testing.T) {
	storage, _ := newTestStorage(t)
	ctx := context.Background()

	blobOnly := NewSet(nil, storage, nil, 7)
	blobOnly.Add(ctx, NewStore(1, "Katowice"))

	defaults := &stubDefaults{criteria: []Criterion{NewEnum(KindStatus, "wykonane", "Wykonane")}}
	set := NewSet(nil, storage, defaults, 7)

	active := set.Load(ctx)
	require.Len(t, active, 1)
	assert.Equal(t, KindStore, active[0].Kind)
}

func TestSetMutationsSurviveReload(t *testing.T) {
	storage, _ := newTestStorage(t)
	ctx := context.Background()

	defaults := &stubDefaults{criteria: []Criterion{NewEnum(KindStatus, "wykonane", "Wykonane")}}

	set := NewSet(nil, storage, defaults, 7)
	require.Len(t, set.Load(ctx), 1)
	require.Len(t, set.Add(ctx, NewStore(1, "Katowice")), 2)

	reloaded := NewSet(nil, storage, defaults, 7)
	active := reloaded.Load(ctx)
	require.Len(t, active, 2)

	removed := reloaded.Remove(ctx, active[0].ID)
	require.Len(t, removed, 1)

	again := NewSet(nil, storage, defaults, 7)
	assert.Len(t, again.Load(ctx), 1)
}

func TestSetLoadFallsBackToBlob(t *testing.T) {
	storage, _ := newTestStorage(t)
	ctx := context.Background()

	seed := NewSet(nil, storage, nil, 7)
	seed.Add(ctx, NewStore(5, "Tychy"))

	defaults := &stubDefaults{err: shared.ErrNotFound}
	set := NewSet(nil, storage, defaults, 7)

	active := set.Load(ctx)
	require.Len(t, active, 1)
	assert.Equal(t, int64(5), active[0].StoreID)
}

func TestSetLoadEmptyWhenNothingPersisted(t *testing.T) {
	storage, _ := newTestStorage(t)
	set := NewSet(nil, storage, &stubDefaults{err: shared.ErrNotFound}, 7)

	assert.Empty(t, set.Load(context.Background()))
}

func TestSetLoadClearsCorruptBlob(t *testing.T) {
	storage, mr := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, 7, []byte("{not json")))

	set := NewSet(nil, storage, nil, 7)
	active := set.Load(ctx)

	assert.Empty(t, active)
	assert.False(t, mr.Exists("filters:user:7"))
}

func TestSetLoadDedupesLegacySingleValuedEntries(t *testing.T) {
	storage, _ := newTestStorage(t)
	ctx := context.Background()

	first := NewStore(1, "Katowice")
	second := NewStore(2, "Gliwice")
	defaults := &stubDefaults{criteria: []Criterion{first, second}}

	set := NewSet(nil, storage, defaults, 7)
	active := set.Load(ctx)

	require.Len(t, active, 1)
	assert.Equal(t, int64(2), active[0].StoreID)
}

func TestSetClearSticksAcrossLoads(t *testing.T) {
	storage, mr := newTestStorage(t)
	ctx := context.Background()

	defaults := &stubDefaults{criteria: []Criterion{NewEnum(KindStatus, "wykonane", "Wykonane")}}

	set := NewSet(nil, storage, defaults, 7)
	set.Load(ctx)
	set.Add(ctx, NewStore(1, "Katowice"))

	set.Clear(ctx)
	assert.Empty(t, set.Active())
	require.True(t, mr.Exists("filters:user:7"))

	reloaded := NewSet(nil, storage, defaults, 7)
	assert.Empty(t, reloaded.Load(ctx))
}

func TestSetRoundTripsThroughStorage(t *testing.T) {
	storage, _ := newTestStorage(t)
	ctx := context.Background()

	writer := NewSet(nil, storage, nil, 7)
	writer.Add(ctx, NewEnum(KindStatus, "nowe", "Nowe"))
	writer.Add(ctx, NewDateRange(DateFieldInstallation, day(2026, 3, 1), day(2026, 3, 31), "Marzec"))

	reader := NewSet(nil, storage, nil, 7)
	active := reader.Load(ctx)

	require.Len(t, active, 2)
	assert.Equal(t, KindStatus, active[0].Kind)
	assert.Equal(t, KindDateRange, active[1].Kind)
	assert.Equal(t, DateFieldInstallation, active[1].Range.AppliesTo)
}
