package collab

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkiform/go-plan-backend/internal/editor/domain"
	"github.com/arkiform/go-plan-backend/internal/editor/service"
	"github.com/arkiform/go-plan-backend/internal/editor/store"
	"github.com/arkiform/go-plan-backend/internal/notify"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func collabSession(t *testing.T) *service.Session {
	t.Helper()
	st := store.New()
	st.Load(&domain.Project{
		PublicID: "plan-1",
		Levels: []domain.Level{{
			ID:            "lvl_1",
			Name:          "Ground Floor",
			Layers:        []domain.Layer{{ID: "lay_1", Name: "Default", Visible: true}},
			ActiveLayerID: "lay_1",
		}},
	})
	return &service.Session{ProjectID: "plan-1", OwnerUID: "uid-1", Store: st, Notes: notify.NewStream(10)}
}

func startChannel(t *testing.T, rdb *redis.Client, sess *service.Session, timeout time.Duration) *Channel {
	t.Helper()
	ch := NewChannel(rdb, sess, timeout)
	ch.Start(context.Background())
	t.Cleanup(ch.Close)
	return ch
}

func TestChannel_ChatPropagation(t *testing.T) {
	rdb := setupRedis(t)
	chA := startChannel(t, rdb, collabSession(t), 0)
	chB := startChannel(t, rdb, collabSession(t), 0)

	chA.SendChat(context.Background(), "uid-1", "hello over there")

	require.Eventually(t, func() bool {
		return len(chB.Transcript()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "hello over there", chB.Transcript()[0].Text)

	// The sender's own publish echoes back but is not double-counted.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, chA.Transcript(), 1)
}

func TestChannel_Presence(t *testing.T) {
	rdb := setupRedis(t)
	chA := startChannel(t, rdb, collabSession(t), 0)
	chB := startChannel(t, rdb, collabSession(t), 0)

	chA.Join(context.Background(), "uid-1")
	chB.Join(context.Background(), "uid-2")

	require.Eventually(t, func() bool {
		return len(chA.Roster()) == 2 && len(chB.Roster()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	chB.Leave(context.Background(), "uid-2")
	require.Eventually(t, func() bool {
		return len(chA.Roster()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestChannel_CompanionCommand(t *testing.T) {
	t.Run("marker opens a pending wait", func(t *testing.T) {
		rdb := setupRedis(t)
		ch := startChannel(t, rdb, collabSession(t), time.Minute)

		requestID := ch.SendChat(context.Background(), "uid-1", "@aura add a second floor")
		require.NotEmpty(t, requestID)
		assert.True(t, ch.AwaitingResponse(requestID))
	})

	t.Run("plain chat opens no wait", func(t *testing.T) {
		rdb := setupRedis(t)
		ch := startChannel(t, rdb, collabSession(t), time.Minute)

		requestID := ch.SendChat(context.Background(), "uid-1", "looks good to me")
		assert.Empty(t, requestID)
	})

	t.Run("timeout reverts to idle and notifies", func(t *testing.T) {
		rdb := setupRedis(t)
		sess := collabSession(t)
		ch := startChannel(t, rdb, sess, 30*time.Millisecond)

		requestID := ch.SendChat(context.Background(), "uid-1", "@aura help")
		require.True(t, ch.AwaitingResponse(requestID))

		require.Eventually(t, func() bool {
			return !ch.AwaitingResponse(requestID)
		}, 2*time.Second, 5*time.Millisecond)

		notes := sess.Notes.Drain()
		require.Len(t, notes, 1)
		assert.Equal(t, notify.SeverityInfo, notes[0].Severity)
		assert.Contains(t, notes[0].Message, "did not respond")
	})

	t.Run("response resolves the wait", func(t *testing.T) {
		rdb := setupRedis(t)
		sess := collabSession(t)
		ch := startChannel(t, rdb, sess, time.Minute)

		requestID := ch.SendChat(context.Background(), "uid-1", "@aura add a roof")
		publishCommandResponse(t, rdb, requestID, "Added a gable roof")

		require.Eventually(t, func() bool {
			return !ch.AwaitingResponse(requestID)
		}, 2*time.Second, 10*time.Millisecond)

		transcript := ch.Transcript()
		require.Len(t, transcript, 2)
		assert.Equal(t, "aura", transcript[1].Author)
		assert.Equal(t, "Added a gable roof", transcript[1].Text)
		assert.Zero(t, sess.Notes.Pending(), "no timeout notification after a real response")
	})

	t.Run("late response is discarded", func(t *testing.T) {
		rdb := setupRedis(t)
		sess := collabSession(t)
		ch := startChannel(t, rdb, sess, 20*time.Millisecond)

		requestID := ch.SendChat(context.Background(), "uid-1", "@aura anything")
		require.Eventually(t, func() bool {
			return !ch.AwaitingResponse(requestID)
		}, 2*time.Second, 5*time.Millisecond)

		publishCommandResponse(t, rdb, requestID, "too late")

		time.Sleep(100 * time.Millisecond)
		assert.Len(t, ch.Transcript(), 1, "expired request ignores its response")
	})
}

// publishCommandResponse simulates the companion worker answering over the
// project's event channel.
func publishCommandResponse(t *testing.T, rdb *redis.Client, requestID, text string) {
	t.Helper()
	payload, err := json.Marshal(commandResponse{RequestID: requestID, Text: text})
	require.NoError(t, err)
	ev, err := json.Marshal(Event{
		ProjectID: "plan-1",
		Type:      EventCommandResponse,
		Origin:    "companion-worker",
		Payload:   payload,
	})
	require.NoError(t, err)
	require.NoError(t, rdb.Publish(context.Background(), eventChannelPrefix+"plan-1", ev).Err())
}

func TestChannel_RemoteEdit(t *testing.T) {
	rdb := setupRedis(t)
	sessA := collabSession(t)
	sessB := collabSession(t)
	chA := startChannel(t, rdb, sessA, 0)
	startChannel(t, rdb, sessB, 0)

	// A publishes a wall edit; B's session applies it through the mutation API.
	edit, err := json.Marshal(remoteEdit{
		Kind:    "add_wall",
		LevelID: "lvl_1",
		Wall:    &domain.Wall{LayerID: "lay_1", Thickness: 0.2, Height: 2.7},
	})
	require.NoError(t, err)
	chA.publish(context.Background(), EventRemoteEdit, json.RawMessage(edit))

	require.Eventually(t, func() bool {
		return len(sessB.Store.Snapshot().Levels[0].Walls) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Remote edits share the undo path with local ones.
	assert.True(t, sessB.Store.CanUndo())

	// The sender's own document is untouched by its echo.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, sessA.Store.Snapshot().Levels[0].Walls)
}
