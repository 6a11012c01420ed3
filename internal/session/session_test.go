package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, NewStore(rdb)
}

func TestLoad_EmptyID(t *testing.T) {
	_, s := newStore(t)
	sess, err := s.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)
}

func TestLoad_Unknown(t *testing.T) {
	_, s := newStore(t)
	sess, err := s.Load(context.Background(), "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)
}

func TestSaveLoad(t *testing.T) {
	mr, s := newStore(t)
	ctx := context.Background()
	want := Session{Kiosk: true, Peopleflow: "https://peopleflow.example/", UserID: "u42"}

	require.NoError(t, s.Save(ctx, "abc", want, time.Hour))
	got, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	require.NoError(t, s.Save(ctx, "abc", Session{UserID: "u42"}, time.Hour))
	got, err = s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, got.Kiosk)
	assert.Empty(t, got.Peopleflow)
}

func TestNewID(t *testing.T) {
	a, err := NewID()
	require.NoError(t, err)
	b, err := NewID()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
