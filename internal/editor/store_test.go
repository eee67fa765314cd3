package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

func TestStore_OpenGetClose(t *testing.T) {
	store := NewStore(2, nil, nil)

	s, err := store.Open(context.Background(), testSource(t, 20, 10), Viewport{})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 1, store.Len())

	// zero viewport falls back to the natural size
	st := s.State()
	assert.Equal(t, Viewport{Width: 20, Height: 10}, st.Viewport)

	got, err := store.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, store.Close(s.ID()))
	assert.Equal(t, 0, store.Len())

	_, err = store.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.Close(s.ID()), ErrSessionNotFound)

	_, err = s.Reset()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestStore_Limit(t *testing.T) {
	store := NewStore(1, nil, nil)
	ctx := context.Background()

	_, err := store.Open(ctx, testSource(t, 10, 10), Viewport{})
	require.NoError(t, err)

	_, err = store.Open(ctx, testSource(t, 10, 10), Viewport{})
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestStore_OpenDecodeError(t *testing.T) {
	store := NewStore(1, nil, nil)

	_, err := store.Open(context.Background(), imaging.NewSource([]byte("not an image"), "image/png"), Viewport{})
	var decErr *imaging.DecodeError
	assert.ErrorAs(t, err, &decErr)
	assert.Equal(t, 0, store.Len())
}

func TestStore_UniqueIDs(t *testing.T) {
	store := NewStore(8, nil, nil)
	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		s, err := store.Open(context.Background(), testSource(t, 4, 4), Viewport{})
		require.NoError(t, err)
		assert.False(t, seen[s.ID()])
		seen[s.ID()] = true
	}
}

func TestStore_CloseAll(t *testing.T) {
	store := NewStore(3, nil, nil)
	var sessions []*Session
	for i := 0; i < 3; i++ {
		s, err := store.Open(context.Background(), testSource(t, 4, 4), Viewport{})
		require.NoError(t, err)
		sessions = append(sessions, s)
	}

	store.CloseAll()
	assert.Equal(t, 0, store.Len())
	for _, s := range sessions {
		_, err := s.RotateLeft()
		assert.ErrorIs(t, err, ErrSessionClosed)
	}
}
