package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDraftRepo(t *testing.T) (*DraftRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewDraftRepository(client), mr
}

func TestDraftRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save then get round-trips the snapshot", func(t *testing.T) {
		repo, _ := setupDraftRepo(t)

		snapshot := json.RawMessage(`{"public_id":"plan-1","levels":[]}`)
		require.NoError(t, repo.Save(ctx, "plan-1", snapshot))

		got, err := repo.Get(ctx, "plan-1")
		require.NoError(t, err)
		assert.JSONEq(t, string(snapshot), string(got))
	})

	t.Run("missing draft returns nil without error", func(t *testing.T) {
		repo, _ := setupDraftRepo(t)
		got, err := repo.Get(ctx, "plan-nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("save sets a TTL so abandoned drafts expire", func(t *testing.T) {
		repo, mr := setupDraftRepo(t)
		require.NoError(t, repo.Save(ctx, "plan-1", json.RawMessage(`{}`)))
		assert.Positive(t, mr.TTL("plan:draft:plan-1"))
	})

	t.Run("delete drops the draft", func(t *testing.T) {
		repo, _ := setupDraftRepo(t)
		require.NoError(t, repo.Save(ctx, "plan-1", json.RawMessage(`{}`)))
		require.NoError(t, repo.Delete(ctx, "plan-1"))

		got, err := repo.Get(ctx, "plan-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("empty project id is rejected", func(t *testing.T) {
		repo, _ := setupDraftRepo(t)
		assert.Error(t, repo.Save(ctx, "", json.RawMessage(`{}`)))
	})
}
