package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/captioner/internal/captions"
	"github.com/lehigh-university-libraries/captioner/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := NewSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Store{
		"memory": New(),
		"sqlite": db,
	}
}

func session(id string, created time.Time) *models.CaptionSession {
	s := &models.CaptionSession{
		ID:          id,
		Directory:   "photos",
		TriggerWord: "p3rs0n",
		CreatedAt:   created,
	}
	s.Replace([]models.ImageItem{
		{Record: captions.NewRecord("photos/a.png", "p3rs0n"), Name: "a.png", Width: 10, Height: 20},
	})
	return s
}

func TestStores(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			now := time.Now().UTC().Truncate(time.Second)
			second := session("b", now.Add(time.Minute))
			first := session("a", now)
			require.NoError(t, store.Set(second))
			require.NoError(t, store.Set(first))

			got, err := store.Get("a")
			require.NoError(t, err)
			assert.Equal(t, "photos", got.Directory)
			require.Len(t, got.Items, 1)
			assert.Equal(t, "photos/a.txt", got.Items[0].CaptionPath)
			assert.Equal(t, 20, got.Items[0].Height)

			require.NoError(t, got.UpdateCaption(0, "p3rs0n, smiling"))
			require.NoError(t, store.Set(got))

			got, err = store.Get("a")
			require.NoError(t, err)
			assert.Equal(t, "p3rs0n, smiling", got.Items[0].Caption)

			all, err := store.List()
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "a", all[0].ID)
			assert.Equal(t, "b", all[1].ID)

			require.NoError(t, store.Delete("a"))
			assert.ErrorIs(t, store.Delete("a"), ErrNotFound)

			all, err = store.List()
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	db, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Set(session("keep", time.Now())))
	require.NoError(t, db.Close())

	db, err = NewSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Get("keep")
	require.NoError(t, err)
	assert.Equal(t, "p3rs0n", got.TriggerWord)
}
