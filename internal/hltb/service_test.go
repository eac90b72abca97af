package hltb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanm101/gameid/internal/db"
	"github.com/ryanm101/gameid/internal/match"
	"github.com/ryanm101/gameid/internal/resolve"
)

func zeldaCatalogue() *fakeHLTB {
	return &fakeHLTB{games: []Game{
		{ID: 1, Name: "The Legend of Zelda", ReleaseYear: 1986, CompletionCount: 5000, CompMain: 36000},
		{ID: 2, Name: "Zelda II", ReleaseYear: 1987, CompletionCount: 10},
	}}
}

func TestService_FindZelda(t *testing.T) {
	f := zeldaCatalogue()
	s := NewService(newTestClient(t, f), nil, nil)

	r, err := s.Find(context.Background(), match.Identity{
		Name:           "The Legend of Zelda",
		AlternateNames: []string{"Zelda"},
		Year:           1986,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, r.ID)
	assert.Equal(t, "The Legend of Zelda", r.Name)
	require.NotNil(t, r.Times.Main)
	assert.Equal(t, 10.0, *r.Times.Main)
	assert.Equal(t, s.Queries(match.Identity{Name: "The Legend of Zelda", AlternateNames: []string{"Zelda"}}), f.terms)
}

func TestService_NotFound(t *testing.T) {
	f := zeldaCatalogue()
	s := NewService(newTestClient(t, f), nil, nil)

	_, err := s.Find(context.Background(), match.Identity{Name: "Minecraft"})

	assert.ErrorIs(t, err, resolve.ErrNotFound)
}

func TestService_EmptyName(t *testing.T) {
	f := zeldaCatalogue()
	s := NewService(newTestClient(t, f), nil, nil)

	_, err := s.Find(context.Background(), match.Identity{Name: " "})

	assert.ErrorIs(t, err, match.ErrEmptyName)
	assert.Equal(t, 0, f.searches)
}

func TestService_RetriesThroughTransientFailure(t *testing.T) {
	f := zeldaCatalogue()
	f.failFinder = 1
	s := NewService(newTestClient(t, f), nil, nil)

	r, err := s.Find(context.Background(), match.Identity{Name: "Zelda II", Year: 1987})

	require.NoError(t, err)
	assert.Equal(t, 2, r.ID)
	assert.Equal(t, 2, f.inits)
}

func TestService_CachesHits(t *testing.T) {
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := zeldaCatalogue()
	s := NewService(newTestClient(t, f), nil, db.NewCache[Result](store, Provider, time.Hour))
	id := match.Identity{Name: "The Legend of Zelda", Year: 1986}

	first, err := s.Find(context.Background(), id)
	require.NoError(t, err)
	searches := f.searches

	second, err := s.Find(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, searches, f.searches)

	_, err = s.Find(context.Background(), match.Identity{Name: "Minecraft"})
	assert.ErrorIs(t, err, resolve.ErrNotFound)
	counts, err := store.CountResolvedGames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{Provider: 1}, counts)
}

func TestService_CacheKeyIgnoresPlatforms(t *testing.T) {
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := zeldaCatalogue()
	s := NewService(newTestClient(t, f), nil, db.NewCache[Result](store, Provider, time.Hour))

	_, err = s.Find(context.Background(), match.Identity{Name: "The Legend of Zelda", Year: 1986, Platforms: []string{"NES"}})
	require.NoError(t, err)
	searches := f.searches

	_, err = s.Find(context.Background(), match.Identity{Name: "The Legend of Zelda", Year: 1986, Platforms: []string{"Switch"}})
	require.NoError(t, err)
	assert.Equal(t, searches, f.searches)
}

func TestService_CacheScopedToVocabularyVersion(t *testing.T) {
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := zeldaCatalogue()
	id := match.Identity{Name: "The Legend of Zelda", Year: 1986}

	old := NewService(newTestClient(t, f), nil, db.NewCache[Result](store, Provider, time.Hour))
	_, err = old.Find(context.Background(), id)
	require.NoError(t, err)
	searches := f.searches

	upgraded := *match.DefaultVocabulary()
	upgraded.Version++
	s := NewService(newTestClient(t, f), &upgraded, db.NewCache[Result](store, Provider, time.Hour))
	_, err = s.Find(context.Background(), id)
	require.NoError(t, err)
	assert.Greater(t, f.searches, searches)

	counts, err := store.CountResolvedGames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{Provider: 2}, counts)
}
