package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestGetMissingIsAbsent(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := s.Get(ctx, "nope")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, v)

			b, ok, err := s.GetAsset(ctx, "nope")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, b)
		})
	}
}

func TestSetOverwritesAndDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "k", []byte("one")))
			require.NoError(t, s.Set(ctx, "k", []byte("two")))
			v, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "two", string(v))

			require.NoError(t, s.Delete(ctx, "k"))
			require.NoError(t, s.Delete(ctx, "k"))
			_, ok, err = s.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.DeleteAsset(ctx, "missing"))
		})
	}
}

func TestAssets(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := MenuImageKey("7")
			require.NoError(t, s.SetAsset(ctx, key, &Blob{MimeType: "image/png", Data: []byte{1, 2, 3}}))
			b, ok, err := s.GetAsset(ctx, key)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "image/png", b.MimeType)
			assert.Equal(t, []byte{1, 2, 3}, b.Data)
		})
	}
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, KeyMenuItems, []byte("old")))

			err := s.Update(ctx, func(tx Tx) error {
				if err := tx.SetAsset("menu_image_1", &Blob{MimeType: "image/png", Data: []byte("x")}); err != nil {
					return err
				}
				if err := tx.Set(KeyMenuItems, []byte("new")); err != nil {
					return err
				}
				return boom
			})
			assert.Equal(t, boom, err)

			v, _, err := s.Get(ctx, KeyMenuItems)
			require.NoError(t, err)
			assert.Equal(t, "old", string(v))
			_, ok, err := s.GetAsset(ctx, "menu_image_1")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Update(ctx, func(tx Tx) error {
				if err := tx.SetAsset("menu_image_1", &Blob{MimeType: "image/png", Data: []byte("x")}); err != nil {
					return err
				}
				return tx.Set(KeyMenuItems, []byte("new"))
			}))
			v, _, err = s.Get(ctx, KeyMenuItems)
			require.NoError(t, err)
			assert.Equal(t, "new", string(v))
			_, ok, err = s.GetAsset(ctx, "menu_image_1")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var got []string
	ok, err := GetJSON(ctx, s, KeyCategories, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(ctx, s, KeyCategories, []string{"Minuman", "Snack"}))
	ok, err = GetJSON(ctx, s, KeyCategories, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Minuman", "Snack"}, got)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, CartKey("A1"), []byte(`{"items":[]}`)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(ctx, CartKey("A1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"items":[]}`, string(v))
}

func TestMemoryClosed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())
	_, _, err := s.Get(context.Background(), "k")
	assert.Equal(t, ErrClosed, err)
}

func TestOpen(t *testing.T) {
	s, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open("redis", "")
	assert.Error(t, err)
}

func TestTxGetSeesOwnWrites(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Update(ctx, func(tx Tx) error {
				_, ok, err := tx.Get(KeyCategories)
				require.NoError(t, err)
				assert.False(t, ok)

				require.NoError(t, SetJSONTx(tx, KeyCategories, []string{"Minuman"}))
				var got []string
				ok, err = GetJSONTx(tx, KeyCategories, &got)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, []string{"Minuman"}, got)
				return nil
			}))

			v, ok, err := s.Get(ctx, KeyCategories)
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `["Minuman"]`, string(v))
		})
	}
}
