package repository

import (
	"testing"

	"github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	"github.com/reshetovitsme/tgfeed/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_SaveAndFind(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileStorage(dir)
	require.NoError(t, err)

	channel := &domain.Channel{ID: 1234, AccessHash: 99, Title: "News", Username: "News"}
	user := &domain.User{ID: 1234, AccessHash: 7, FirstName: "Ann"}
	chat := &domain.Unknown{ID: 55, Title: "Group"}
	require.NoError(t, repo.SavePeers(channel, user, chat, nil))

	got, err := repo.GetPeer(domain.UserRef(1234))
	require.NoError(t, err)
	assert.Equal(t, user, got)

	// Bare ids prefer channels.
	got, err = repo.FindByID(1234)
	require.NoError(t, err)
	assert.Equal(t, channel, got)

	got, err = repo.FindByID(-1000000001234)
	require.NoError(t, err)
	assert.Equal(t, channel, got)

	got, err = repo.FindByID(-55)
	require.NoError(t, err)
	assert.Equal(t, chat, got)

	got, err = repo.FindByUsername("@news")
	require.NoError(t, err)
	assert.Equal(t, channel, got)

	_, err = repo.FindByID(-77)
	assert.ErrorIs(t, err, errors.ErrPeerNotFound)

	_, err = repo.FindByUsername("missing")
	assert.ErrorIs(t, err, errors.ErrPeerNotFound)
}

func TestFileStorage_KeepsAccessHashFromMinPeers(t *testing.T) {
	repo, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, repo.SavePeers(&domain.User{ID: 1, AccessHash: 42, FirstName: "Ann"}))
	require.NoError(t, repo.SavePeers(&domain.User{ID: 1, FirstName: "Anna"}))

	got, err := repo.GetPeer(domain.UserRef(1))
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: 1, AccessHash: 42, FirstName: "Anna"}, got)
}

func TestFileStorage_UsernameChange(t *testing.T) {
	repo, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, repo.SavePeers(&domain.Channel{ID: 5, Title: "A", Username: "old"}))
	require.NoError(t, repo.SavePeers(&domain.Channel{ID: 5, Title: "A", Username: "new"}))

	_, err = repo.FindByUsername("old")
	assert.ErrorIs(t, err, errors.ErrPeerNotFound)

	got, err := repo.FindByUsername("new")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Ref().ID)
}

func TestFileStorage_ReloadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, repo.SavePeers(&domain.Channel{ID: 9, AccessHash: 3, Title: "Kept", Username: "kept"}))

	reopened, err := NewFileStorage(dir)
	require.NoError(t, err)

	all, err := reopened.GetAllPeers()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, &domain.Channel{ID: 9, AccessHash: 3, Title: "Kept", Username: "kept"}, all[0])
}
