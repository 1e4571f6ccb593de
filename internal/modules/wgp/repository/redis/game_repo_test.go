package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
)

func newRound(t *testing.T) *domain.RoundState {
	t.Helper()
	players := []domain.Player{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p4"}, {ID: "p5"}}
	r, err := domain.NewRound("g-redis", players, domain.Course{Name: "Test"}, domain.Options{})
	require.NoError(t, err)
	r, err = domain.Apply(r, domain.GoSolo{CaptainID: "p1"})
	require.NoError(t, err)
	return r
}

func TestGameRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewGameRepository(rdb, time.Hour)
	ctx := context.Background()

	_, err := repo.Get(ctx, "g-redis")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)

	state := newRound(t)
	require.NoError(t, repo.Save(ctx, state))

	got, err := repo.Get(ctx, "g-redis")
	require.NoError(t, err)
	assert.Equal(t, state.Hole.Formation, got.Hole.Formation)
	assert.Equal(t, state.BaseOrder, got.BaseOrder)
	assert.Equal(t, 2, got.Hole.Wager.CurrentWager())

	assert.Equal(t, time.Hour, mr.TTL(key("g-redis")))
	assert.Equal(t, "regular", mr.HGet(key("g-redis")+":meta", "phase"))

	require.NoError(t, repo.Delete(ctx, "g-redis"))
	_, err = repo.Get(ctx, "g-redis")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestGameRepositoryExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewGameRepository(rdb, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newRound(t)))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, "g-redis")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}
