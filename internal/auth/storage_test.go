// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"testing"

	"github.com/connectapp/connect/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	s := NewStorage(kv)

	assert.Nil(t, s.User(ctx))
	assert.Empty(t, s.Token(ctx))
	assert.False(t, s.IsAuthenticated(ctx))

	require.NoError(t, s.SaveUser(ctx, User{ID: "7", Email: "ana@example.com"}, "tok"))

	u := s.User(ctx)
	require.NotNil(t, u)
	assert.Equal(t, "7", u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, "tok", s.Token(ctx))
	assert.True(t, s.IsAuthenticated(ctx))

	require.NoError(t, s.Clear(ctx))
	assert.Nil(t, s.User(ctx))
	assert.Empty(t, s.Token(ctx))
}

func TestStorageCorruptRecordIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, KeyUser, []byte("{not json")))

	s := NewStorage(kv)
	assert.Nil(t, s.User(ctx))
	assert.False(t, s.IsAuthenticated(ctx))
}

func TestStorageEmptyIDIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, KeyUser, []byte(`{"id":"","email":"x@y.z"}`)))

	assert.Nil(t, NewStorage(kv).User(ctx))
}

func TestStorageKeepsTokenWhenEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewStorage(store.NewMemoryStore())

	require.NoError(t, s.SaveUser(ctx, User{ID: "1"}, "first"))
	require.NoError(t, s.SaveUser(ctx, User{ID: "1"}, ""))
	assert.Equal(t, "first", s.Token(ctx))
}
