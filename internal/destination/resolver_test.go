package destination_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelkov/staybook/internal/destination"
)

// ---- mock implementations ----

type mockStore struct {
	searchFn func(ctx context.Context, query string, limit int) ([]destination.Destination, error)
	upsertFn func(ctx context.Context, p destination.Projection) error

	searchCalls int
	upserted    []destination.Projection
}

func (m *mockStore) SearchDestinations(ctx context.Context, query string, limit int) ([]destination.Destination, error) {
	m.searchCalls++
	return m.searchFn(ctx, query, limit)
}

func (m *mockStore) UpsertDestination(ctx context.Context, p destination.Projection) error {
	m.upserted = append(m.upserted, p)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, p)
	}
	return nil
}

type mockSearchCache struct {
	getFn func(ctx context.Context, query string) ([]destination.Projection, error)
	setFn func(ctx context.Context, query string, results []destination.Projection) error

	getCalls int
	setCalls int
}

func (m *mockSearchCache) GetSearch(ctx context.Context, query string) ([]destination.Projection, error) {
	m.getCalls++
	if m.getFn != nil {
		return m.getFn(ctx, query)
	}
	return nil, nil
}

func (m *mockSearchCache) SetSearch(ctx context.Context, query string, results []destination.Projection) error {
	m.setCalls++
	if m.setFn != nil {
		return m.setFn(ctx, query, results)
	}
	return nil
}

type mockDirectory struct {
	lookupFn func(ctx context.Context, text string) ([]destination.Projection, error)

	calls int
}

func (m *mockDirectory) DestinationInfo(ctx context.Context, text string) ([]destination.Projection, error) {
	m.calls++
	return m.lookupFn(ctx, text)
}

// ---- helpers ----

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func localDest(id, city, country, code string, count int) destination.Destination {
	return destination.Destination{
		DestinationID: id,
		CityName:      city,
		CountryName:   country,
		CountryCode:   code,
		SearchCount:   count,
	}
}

func emptyStore() *mockStore {
	return &mockStore{
		searchFn: func(_ context.Context, _ string, _ int) ([]destination.Destination, error) {
			return nil, nil
		},
	}
}

func newResolver(store *mockStore, cache *mockSearchCache, remote *mockDirectory) *destination.Resolver {
	return destination.NewResolver(store, cache, remote, discardLogger())
}

// ---- short query fast path ----

func TestResolve_ShortQuery_NoCollaboratorCalls(t *testing.T) {
	store := emptyStore()
	cache := &mockSearchCache{}
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		return nil, nil
	}}

	r := newResolver(store, cache, remote)

	for _, q := range []string{"", "d", " d ", "   "} {
		results, err := r.Resolve(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, results, "query %q", q)
	}

	assert.Zero(t, store.searchCalls, "store must not be called below min length")
	assert.Zero(t, cache.getCalls, "cache must not be called below min length")
	assert.Zero(t, remote.calls, "supplier must not be called below min length")
}

// ---- local sufficiency short-circuit ----

func TestResolve_EnoughLocalResults_SkipsCacheAndRemote(t *testing.T) {
	store := &mockStore{
		searchFn: func(_ context.Context, _ string, _ int) ([]destination.Destination, error) {
			return []destination.Destination{
				localDest("1-1", "Dubai", "United Arab Emirates", "AE", 9),
				localDest("2-2", "Dublin", "Ireland", "IE", 4),
				localDest("3-3", "Dubrovnik", "Croatia", "HR", 2),
			}, nil
		},
	}
	cache := &mockSearchCache{}
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		return nil, nil
	}}

	r := newResolver(store, cache, remote)
	results, err := r.Resolve(context.Background(), "Dub")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "1-1", results[0].DestinationID)
	assert.Zero(t, cache.getCalls, "cache must be skipped with enough local results")
	assert.Zero(t, remote.calls, "supplier must be skipped with enough local results")
	assert.Empty(t, store.upserted, "nothing to write back on a pure local hit")
}

func TestResolve_DoesNotIncrementOnSurface(t *testing.T) {
	// Resolution must not touch counters; only the analytics endpoint does.
	// The Store interface exposes no increment at all, so it is enough to
	// verify the resolver returns the stored counts untouched.
	store := &mockStore{
		searchFn: func(_ context.Context, _ string, _ int) ([]destination.Destination, error) {
			return []destination.Destination{
				localDest("2-2", "Paris", "France", "FR", 5),
				localDest("4-4", "Parma", "Italy", "IT", 1),
				localDest("5-5", "Paros", "Greece", "GR", 0),
			}, nil
		},
	}
	r := newResolver(store, &mockSearchCache{}, &mockDirectory{})

	results, err := r.Resolve(context.Background(), "Paris")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 5, results[0].SearchCount)
}

// ---- cache hit path ----

func TestResolve_CacheHit_SkipsRemoteAndWritesBack(t *testing.T) {
	store := &mockStore{
		searchFn: func(_ context.Context, _ string, _ int) ([]destination.Destination, error) {
			return []destination.Destination{
				localDest("2-2", "Paris", "France", "FR", 5),
			}, nil
		},
	}
	cached := []destination.Projection{
		{DestinationID: "2-2", CityName: "Paris", CountryName: "France", CountryCode: "FR"},
		{DestinationID: "7-7", CityName: "Parma", CountryName: "Italy", CountryCode: "IT"},
	}
	cache := &mockSearchCache{
		getFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
			return cached, nil
		},
	}
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		return nil, nil
	}}

	r := newResolver(store, cache, remote)
	results, err := r.Resolve(context.Background(), "par")
	require.NoError(t, err)

	assert.Zero(t, remote.calls, "supplier must not be called on cache hit")

	// Deduped by id, local entry wins and keeps its counter.
	require.Len(t, results, 2)
	assert.Equal(t, "2-2", results[0].DestinationID)
	assert.Equal(t, 5, results[0].SearchCount)
	assert.Equal(t, "7-7", results[1].DestinationID)

	// Every cache-sourced destination is written back for future local hits.
	require.Len(t, store.upserted, 2)
	assert.Equal(t, "2-2", store.upserted[0].DestinationID)
	assert.Equal(t, "7-7", store.upserted[1].DestinationID)
}

func TestResolve_CacheError_TreatedAsMiss(t *testing.T) {
	store := emptyStore()
	cache := &mockSearchCache{
		getFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
			return nil, fmt.Errorf("redis unreachable")
		},
	}
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		return []destination.Projection{
			{DestinationID: "1-1", CityName: "Dubai", CountryName: "United Arab Emirates", CountryCode: "AE"},
		}, nil
	}}

	r := newResolver(store, cache, remote)
	results, err := r.Resolve(context.Background(), "dub")
	require.NoError(t, err)

	assert.Equal(t, 1, remote.calls, "cache failure must fall through to the supplier")
	require.Len(t, results, 1)
	assert.Equal(t, "1-1", results[0].DestinationID)
}

// ---- remote fallback path ----

func TestResolve_RemoteSuccess_CachesAndPersists(t *testing.T) {
	store := emptyStore()
	cache := &mockSearchCache{}
	remote := &mockDirectory{lookupFn: func(_ context.Context, text string) ([]destination.Projection, error) {
		assert.Equal(t, "dub", text, "supplier receives the normalized query")
		return []destination.Projection{
			{DestinationID: "1-1", CityName: "Dubai", CountryName: "United Arab Emirates", CountryCode: "AE"},
		}, nil
	}}

	r := newResolver(store, cache, remote)
	results, err := r.Resolve(context.Background(), "  Dub ")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "1-1", results[0].DestinationID)
	assert.Equal(t, "Dubai", results[0].CityName)
	assert.Zero(t, results[0].SearchCount, "new destinations start at zero")

	assert.Equal(t, 1, cache.setCalls, "supplier results must be cached")
	require.Len(t, store.upserted, 1)
	assert.Equal(t, "1-1", store.upserted[0].DestinationID)
}

func TestResolve_RemoteFailure_FallsBackToLocal(t *testing.T) {
	store := &mockStore{
		searchFn: func(_ context.Context, _ string, _ int) ([]destination.Destination, error) {
			return []destination.Destination{
				localDest("2-2", "Paris", "France", "FR", 5),
			}, nil
		},
	}
	cache := &mockSearchCache{}
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		return nil, fmt.Errorf("%w: network down", destination.ErrSupplierLookup)
	}}

	r := newResolver(store, cache, remote)
	results, err := r.Resolve(context.Background(), "par")
	require.NoError(t, err, "supplier failures are absorbed")
	require.Len(t, results, 1)
	assert.Equal(t, "2-2", results[0].DestinationID)
}

func TestResolve_RemoteFailure_EmptyLocal_ReturnsEmpty(t *testing.T) {
	store := emptyStore()
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		return nil, fmt.Errorf("boom")
	}}

	r := newResolver(store, &mockSearchCache{}, remote)
	results, err := r.Resolve(context.Background(), "xy")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResolve_StoreFailure_Surfaces(t *testing.T) {
	store := &mockStore{
		searchFn: func(_ context.Context, _ string, _ int) ([]destination.Destination, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}
	r := newResolver(store, &mockSearchCache{}, &mockDirectory{})

	_, err := r.Resolve(context.Background(), "par")
	require.Error(t, err, "the pipeline cannot produce a useful result without the store")
}

// ---- merging and ranking ----

func TestResolve_MergeDeduplicatesById(t *testing.T) {
	store := &mockStore{
		searchFn: func(_ context.Context, _ string, _ int) ([]destination.Destination, error) {
			return []destination.Destination{
				localDest("2-2", "Paris", "France", "FR", 5),
			}, nil
		},
	}
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		return []destination.Projection{
			{DestinationID: "2-2", CityName: "Paris", CountryName: "France", CountryCode: "FR"},
			{DestinationID: "8-8", CityName: "Paros", CountryName: "Greece", CountryCode: "GR"},
		}, nil
	}}

	r := newResolver(store, &mockSearchCache{}, remote)
	results, err := r.Resolve(context.Background(), "par")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, d := range results {
		assert.False(t, seen[d.DestinationID], "duplicate id %s", d.DestinationID)
		seen[d.DestinationID] = true
	}
	require.Len(t, results, 2)
	assert.Equal(t, 5, results[0].SearchCount, "local record wins the conflict")
}

func TestResolve_ExactMatchRanksFirst(t *testing.T) {
	store := &mockStore{
		searchFn: func(_ context.Context, _ string, _ int) ([]destination.Destination, error) {
			return []destination.Destination{
				localDest("9-9", "Paris Beach", "Greece", "GR", 50),
			}, nil
		},
	}
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		return []destination.Projection{
			{DestinationID: "2-2", CityName: "Paris", CountryName: "France", CountryCode: "FR"},
		}, nil
	}}

	r := newResolver(store, &mockSearchCache{}, remote)
	results, err := r.Resolve(context.Background(), "Paris")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "2-2", results[0].DestinationID, "exact city match sorts before a higher counter")
}

func TestResolve_CapsAtMaxResults(t *testing.T) {
	// 2 local + 12 supplier rows overflow the cap through the remote path.
	store := &mockStore{
		searchFn: func(_ context.Context, _ string, _ int) ([]destination.Destination, error) {
			return []destination.Destination{
				localDest("l-0", "Porto", "Portugal", "PT", 3),
				localDest("l-1", "Portimao", "Portugal", "PT", 1),
			}, nil
		},
	}
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		var out []destination.Projection
		for i := 0; i < 12; i++ {
			out = append(out, destination.Projection{
				DestinationID: fmt.Sprintf("r-%d", i),
				CityName:      fmt.Sprintf("Vila Porto %d", i),
				CountryName:   "Portugal",
				CountryCode:   "PT",
			})
		}
		return out, nil
	}}

	r := newResolver(store, &mockSearchCache{}, remote)
	results, err := r.Resolve(context.Background(), "port")
	require.NoError(t, err)
	assert.Len(t, results, destination.MaxResults)
}

func TestResolve_Idempotent_SameIDSet(t *testing.T) {
	store := &mockStore{
		searchFn: func(_ context.Context, _ string, _ int) ([]destination.Destination, error) {
			return []destination.Destination{
				localDest("2-2", "Paris", "France", "FR", 5),
			}, nil
		},
	}
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		return []destination.Projection{
			{DestinationID: "8-8", CityName: "Paros", CountryName: "Greece", CountryCode: "GR"},
		}, nil
	}}

	r := newResolver(store, &mockSearchCache{}, remote)

	ids := func(ds []destination.Destination) map[string]bool {
		m := map[string]bool{}
		for _, d := range ds {
			m[d.DestinationID] = true
		}
		return m
	}

	first, err := r.Resolve(context.Background(), "par")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "par")
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second))
}

func TestResolve_WriteBackFailure_NonFatal(t *testing.T) {
	store := emptyStore()
	store.upsertFn = func(_ context.Context, _ destination.Projection) error {
		return fmt.Errorf("disk full")
	}
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		return []destination.Projection{
			{DestinationID: "1-1", CityName: "Dubai", CountryName: "United Arab Emirates", CountryCode: "AE"},
		}, nil
	}}

	r := newResolver(store, &mockSearchCache{}, remote)
	results, err := r.Resolve(context.Background(), "dub")
	require.NoError(t, err)
	assert.Len(t, results, 1, "failed write-back must not degrade the result")
}

func TestResolve_CountryLevelEntrySurvivesMerge(t *testing.T) {
	store := emptyStore()
	remote := &mockDirectory{lookupFn: func(_ context.Context, _ string) ([]destination.Projection, error) {
		return []destination.Projection{
			{DestinationID: "160-0", CityName: "Singapore", CountryName: "Singapore", CountryCode: "SG"},
		}, nil
	}}

	r := newResolver(store, &mockSearchCache{}, remote)
	results, err := r.Resolve(context.Background(), "sing")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].Projection().IsCountryLevel())
}
