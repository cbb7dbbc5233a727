package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewSession(sessionID)
		sess.State = domain.StateQualAge
		sess.Attributes.AbuseCount = 1
		sess.Attributes.LocationRegion = domain.RegionCanada
		sess.Attributes.LocationDetail = "ontario"

		err := store.Save(ctx, sessionID, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StateQualAge, loaded.State)
		assert.Equal(t, 1, loaded.Attributes.AbuseCount)
		assert.Equal(t, domain.RegionCanada, loaded.Attributes.LocationRegion)
		assert.Equal(t, "ontario", loaded.Attributes.LocationDetail)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Attributes.AbuseCount = 99

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 1, again.Attributes.AbuseCount, "mutating a loaded session must not leak into the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1))
		_ = store.Save(ctx, id2, domain.NewSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunHistoryStoreContract verifies the ordering and windowing rules of a HistoryStore.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	sessionID := "contract-test-history-" + time.Now().Format("20060102150405")

	t.Run("Empty", func(t *testing.T) {
		msgs, err := store.History(ctx, "missing-"+sessionID, 10)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("Append keeps order", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, sessionID,
			domain.Message{Role: domain.RoleUser, Content: "hi"},
			domain.Message{Role: domain.RoleAssistant, Content: "hey, what's up"},
		))
		require.NoError(t, store.Append(ctx, sessionID,
			domain.Message{Role: domain.RoleUser, Content: "need dating help"},
		))

		msgs, err := store.History(ctx, sessionID, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "hi", msgs[0].Content)
		assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
		assert.Equal(t, "need dating help", msgs[2].Content)
	})

	t.Run("Window returns the tail", func(t *testing.T) {
		msgs, err := store.History(ctx, sessionID, 2)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "hey, what's up", msgs[0].Content)
		assert.Equal(t, "need dating help", msgs[1].Content)
	})

	t.Run("Append nothing", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, sessionID))
		msgs, err := store.History(ctx, sessionID, 0)
		require.NoError(t, err)
		assert.Len(t, msgs, 3)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx, sessionID))
		msgs, err := store.History(ctx, sessionID, 0)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}
