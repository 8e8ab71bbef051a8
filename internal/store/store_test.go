package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetRelease(t *testing.T) {
	s := New()

	h := s.Put(Content{Data: []byte{1, 2, 3}, Width: 640, Height: 360})
	require.NotZero(t, h, "handles start at 1")

	c, ok := s.Get(h)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, c.Data)
	assert.Equal(t, 640, c.Width)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, int64(3), s.BytesHeld())

	require.NoError(t, s.Release(h))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, int64(0), s.BytesHeld())
	assert.Equal(t, uint64(1), s.Released())

	_, ok = s.Get(h)
	assert.False(t, ok)
}

func TestStore_DoubleReleaseFails(t *testing.T) {
	s := New()
	h := s.Put(Content{Data: []byte{1}})

	require.NoError(t, s.Release(h))
	assert.ErrorIs(t, s.Release(h), ErrHandleNotFound)
}

func TestStore_ReleaseUnknownHandle(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Release(42), ErrHandleNotFound)
}

func TestStore_HandlesAreUnique(t *testing.T) {
	s := New()
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		h := s.Put(Content{Data: []byte{byte(i)}})
		require.False(t, seen[h], "handle %d allocated twice", h)
		seen[h] = true
	}
}

func TestStore_ReleaseAll(t *testing.T) {
	s := New()
	handles := make([]uint64, 0, 5)
	for i := 0; i < 5; i++ {
		handles = append(handles, s.Put(Content{Data: make([]byte, 10)}))
	}

	// One handle already released out of band.
	require.NoError(t, s.Release(handles[2]))

	released := s.ReleaseAll(handles)
	assert.Equal(t, 4, released)
	assert.Equal(t, 0, s.Len())
}
