package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolvePeer(ctx context.Context, ref domain.Ref) (domain.Peer, error) {
	args := m.Called(ctx, ref)
	p, _ := args.Get(0).(domain.Peer)
	return p, args.Error(1)
}

func (m *mockResolver) LookupID(ctx context.Context, id int64) (domain.Peer, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(domain.Peer)
	return p, args.Error(1)
}

func TestName_User(t *testing.T) {
	tests := []struct {
		name string
		user domain.User
		want string
	}{
		{"all fields", domain.User{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}, "Ada Lovelace (ada)"},
		{"no username", domain.User{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"no last name", domain.User{FirstName: "Ada", Username: "ada"}, "Ada (ada)"},
		{"first name only", domain.User{FirstName: "Ada"}, "Ada"},
		{"username only", domain.User{Username: "ada"}, "ada"},
		{"deleted", domain.User{ID: 1}, "Deleted Account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(&tt.user))
		})
	}
}

func TestName_ChannelAndChat(t *testing.T) {
	assert.Equal(t, "News", Name(&domain.Channel{ID: 1, Title: "News", Username: "news"}))
	assert.Equal(t, "Friends", Name(&domain.Unknown{ID: 2, Title: "Friends"}))
	assert.Equal(t, "3", Name(&domain.Unknown{ID: 3}))
}

func TestResolve_Idempotent(t *testing.T) {
	resolver := new(mockResolver)
	ref := domain.UserRef(7)
	resolver.On("ResolvePeer", mock.Anything, ref).
		Return(&domain.User{ID: 7, FirstName: "Ada", LastName: "Lovelace", Username: "ada"}, nil).
		Once()

	cache := New(resolver)
	ctx := context.Background()

	first, err := cache.Resolve(ctx, ref)
	require.NoError(t, err)
	second, err := cache.Resolve(ctx, ref)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace (ada)", first.Name)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())
	resolver.AssertNumberOfCalls(t, "ResolvePeer", 1)
}

func TestResolve_Denied(t *testing.T) {
	resolver := new(mockResolver)
	ref := domain.ChannelRef(10)
	resolver.On("ResolvePeer", mock.Anything, ref).
		Return(nil, fmt.Errorf("wrapped: %w", sharedErrors.ErrPrivateChannel))
	resolver.On("LookupID", mock.Anything, int64(10)).Return(nil, sharedErrors.ErrPeerNotFound)

	cache := New(resolver)

	id, err := cache.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, id.Denied)
	assert.Empty(t, id.Name)
	assert.Zero(t, cache.Len())
}

func TestResolve_DeniedKeepsKnownTitle(t *testing.T) {
	resolver := new(mockResolver)
	ref := domain.ChannelRef(10)
	resolver.On("ResolvePeer", mock.Anything, ref).Return(nil, sharedErrors.ErrPrivateChannel)
	resolver.On("LookupID", mock.Anything, int64(10)).Return(&domain.Channel{ID: 10, Title: "Leaks"}, nil)

	id, err := New(resolver).Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, id.Denied)
	assert.Equal(t, "Leaks", id.Name)
	assert.Nil(t, id.Peer)
}

func TestResolve_DeniedIgnoresOtherPeerWithSameID(t *testing.T) {
	resolver := new(mockResolver)
	ref := domain.ChannelRef(10)
	resolver.On("ResolvePeer", mock.Anything, ref).Return(nil, sharedErrors.ErrPrivateChannel)
	resolver.On("LookupID", mock.Anything, int64(10)).Return(&domain.User{ID: 10, FirstName: "Bob"}, nil)

	id, err := New(resolver).Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, id.Denied)
	assert.Empty(t, id.Name)
}

func TestResolve_Error(t *testing.T) {
	resolver := new(mockResolver)
	ref := domain.UserRef(1)
	resolver.On("ResolvePeer", mock.Anything, ref).Return(nil, errors.New("boom"))

	_, err := New(resolver).Resolve(context.Background(), ref)
	assert.Error(t, err)
}

func TestResolve_FreshInstancesAreIsolated(t *testing.T) {
	resolver := new(mockResolver)
	ref := domain.ChannelRef(10)
	resolver.On("ResolvePeer", mock.Anything, ref).Return(&domain.Channel{ID: 10, Title: "News"}, nil)

	_, err := New(resolver).Resolve(context.Background(), ref)
	require.NoError(t, err)
	_, err = New(resolver).Resolve(context.Background(), ref)
	require.NoError(t, err)

	resolver.AssertNumberOfCalls(t, "ResolvePeer", 2)
}

func TestRemember(t *testing.T) {
	resolver := new(mockResolver)
	cache := New(resolver)

	cache.Remember(&domain.Channel{ID: 10, Title: "News"})
	cache.Remember(&domain.Channel{ID: 10, Title: "Renamed"})

	id, err := cache.Resolve(context.Background(), domain.ChannelRef(10))
	require.NoError(t, err)
	assert.Equal(t, "News", id.Name)
	resolver.AssertNotCalled(t, "ResolvePeer", mock.Anything, mock.Anything)
}

func TestResolve_Concurrent(t *testing.T) {
	resolver := new(mockResolver)
	ref := domain.UserRef(7)
	resolver.On("ResolvePeer", mock.Anything, ref).Return(&domain.User{ID: 7, FirstName: "Ada"}, nil)

	cache := New(resolver)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := cache.Resolve(context.Background(), ref)
			assert.NoError(t, err)
			assert.Equal(t, "Ada", id.Name)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cache.Len())
}
