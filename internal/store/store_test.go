package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	Text string `json:"text"`
	N    int    `json:"n"`
}

// backends returns a fresh instance of every backend for table tests.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	out := map[string]Backend{"memory": NewMemoryStore()}
	for _, driver := range []string{DriverMattn, DriverModernc} {
		b, err := Open(driver, filepath.Join(t.TempDir(), "nested", driver+".db"))
		require.NoError(t, err, driver)
		out[driver] = b
	}
	t.Cleanup(func() {
		for _, b := range out {
			b.Close()
		}
	})
	return out
}

func TestStore_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i, id := range []string{"c", "a", "b"} {
				require.NoError(t, SaveJSON(ctx, s, CollectionReflections, "member", "u1", id, note{Text: id, N: i}))
			}

			got, err := QueryJSON[note](ctx, s, CollectionReflections, "u1", "member")
			require.NoError(t, err)
			assert.Equal(t, []note{{"c", 0}, {"a", 1}, {"b", 2}}, got)
		})
	}
}

func TestStore_UpsertKeepsPosition(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, SaveJSON(ctx, s, CollectionProfiles, "member", "u1", "first", note{Text: "v1"}))
			require.NoError(t, SaveJSON(ctx, s, CollectionProfiles, "member", "u1", "second", note{Text: "x"}))
			require.NoError(t, SaveJSON(ctx, s, CollectionProfiles, "member", "u1", "first", note{Text: "v2"}))

			records, err := s.Query(ctx, CollectionProfiles, "u1", "member")
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "first", records[0].ID)
			assert.JSONEq(t, `{"text":"v2","n":0}`, string(records[0].Data))
			assert.False(t, records[0].UpdatedAt.Before(records[0].CreatedAt))
		})
	}
}

func TestStore_OwnerAndRoleScoping(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, SaveJSON(ctx, s, CollectionAudits, "member", "u1", "a1", note{Text: "mine"}))
			require.NoError(t, SaveJSON(ctx, s, CollectionAudits, "member", "u2", "a2", note{Text: "theirs"}))
			require.NoError(t, SaveJSON(ctx, s, CollectionAudits, "coach", "u1", "a3", note{Text: "other role"}))

			got, err := QueryJSON[note](ctx, s, CollectionAudits, "u1", "member")
			require.NoError(t, err)
			assert.Equal(t, []note{{Text: "mine"}}, got)

			none, err := s.Query(ctx, CollectionReflections, "u1", "member")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestStore_RejectsForeignOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, SaveJSON(ctx, s, CollectionProfiles, "member", "u1", "shared", note{Text: "u1"}))

			err := SaveJSON(ctx, s, CollectionProfiles, "member", "u2", "shared", note{Text: "u2"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOwnerMismatch))

			got, err := QueryJSON[note](ctx, s, CollectionProfiles, "u1", "member")
			require.NoError(t, err)
			assert.Equal(t, []note{{Text: "u1"}}, got)
		})
	}
}

func TestStore_ValidatesRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	cases := map[string]Record{
		"missing id":    {OwnerID: "u1", Data: json.RawMessage(`{}`)},
		"missing owner": {ID: "r1", Data: json.RawMessage(`{}`)},
		"invalid json":  {ID: "r1", OwnerID: "u1", Data: json.RawMessage(`{`)},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Save(ctx, CollectionProfiles, rec, "member"))
		})
	}
	assert.Error(t, s.Save(ctx, CollectionProfiles, Record{ID: "r1", OwnerID: "u1", Data: json.RawMessage(`{}`)}, ""))
	assert.Error(t, s.Save(ctx, "", Record{ID: "r1", OwnerID: "u1", Data: json.RawMessage(`{}`)}, "member"))
}

func TestSQLStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pathwise.db")

	s, err := NewSQLStore(DriverModernc, path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	require.NoError(t, SaveJSON(ctx, s, CollectionReflections, "member", "u1", "r1", note{Text: "kept"}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLStore(DriverModernc, path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	got, err := QueryJSON[note](ctx, reopened, CollectionReflections, "u1", "member")
	require.NoError(t, err)
	assert.Equal(t, []note{{Text: "kept"}}, got)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("postgres", "x")
	assert.Error(t, err)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Save(ctx, CollectionProfiles, Record{ID: "r1", OwnerID: "u1", Data: json.RawMessage(`{"text":"a"}`)}, "member"))

	records, err := s.Query(ctx, CollectionProfiles, "u1", "member")
	require.NoError(t, err)
	records[0].Data[2] = 'X'

	again, err := s.Query(ctx, CollectionProfiles, "u1", "member")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"a"}`, string(again[0].Data))
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	assert.ErrorIs(t, s.Save(ctx, CollectionProfiles, Record{ID: "r1", OwnerID: "u1", Data: json.RawMessage(`{}`)}, "member"), context.Canceled)
	_, err := s.Query(ctx, CollectionProfiles, "u1", "member")
	assert.ErrorIs(t, err, context.Canceled)
}
