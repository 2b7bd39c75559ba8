package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	version, err := m.Put(ctx, "drafts/a", []byte(`{"x":1}`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	doc, err := m.Get(ctx, "drafts/a")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"x":1}`), doc.Data)
	assert.Equal(t, int64(1), doc.Version)
}

func TestMemory_GetMissingKey(t *testing.T) {
	m := NewMemory()

	_, err := m.Get(context.Background(), "drafts/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_PutEnforcesVersions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Put(ctx, "drafts/a", []byte(`1`), 0)
	require.NoError(t, err)

	// Create of an existing key conflicts.
	_, err = m.Put(ctx, "drafts/a", []byte(`2`), 0)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// Stale version conflicts.
	_, err = m.Put(ctx, "drafts/a", []byte(`2`), 5)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// Update of a missing key is NotFound, not a conflict.
	_, err = m.Put(ctx, "drafts/b", []byte(`2`), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// Correct version bumps.
	version, err := m.Put(ctx, "drafts/a", []byte(`2`), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestMemory_AppendAndListKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for _, payload := range []string{`"p1"`, `"p2"`, `"p3"`} {
		_, err := m.Append(ctx, "drafts/a/picks", []byte(payload))
		require.NoError(t, err)
	}
	// A child of another parent must not leak in.
	_, err := m.Append(ctx, "drafts/b/picks", []byte(`"other"`))
	require.NoError(t, err)

	docs, err := m.List(ctx, "drafts/a/picks")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []byte(`"p1"`), docs[0].Data)
	assert.Equal(t, []byte(`"p2"`), docs[1].Data)
	assert.Equal(t, []byte(`"p3"`), docs[2].Data)
}

func TestMemory_SubscribeReceivesMatchingWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewMemory()

	ch, err := m.Subscribe(ctx, "drafts/a")
	require.NoError(t, err)

	_, err = m.Put(ctx, "drafts/a", []byte(`1`), 0)
	require.NoError(t, err)
	_, err = m.Put(ctx, "drafts/b", []byte(`1`), 0)
	require.NoError(t, err)
	_, err = m.Append(ctx, "drafts/a/picks", []byte(`2`))
	require.NoError(t, err)

	first := <-ch
	assert.Equal(t, "drafts/a", first.Key)
	second := <-ch
	assert.Contains(t, second.Key, "drafts/a/picks/")
}
