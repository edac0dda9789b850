package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	chat "github.com/reshetovitsme/tgfeed/internal/modules/chat/repository"
	identity "github.com/reshetovitsme/tgfeed/internal/modules/identity/service"
	message "github.com/reshetovitsme/tgfeed/internal/modules/message/domain"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
)

type mockChat struct {
	mock.Mock
}

var _ chat.Repository = (*mockChat)(nil)

func (m *mockChat) ResolveHandle(ctx context.Context, handle string) (peer.Peer, error) {
	args := m.Called(ctx, handle)
	p, _ := args.Get(0).(peer.Peer)
	return p, args.Error(1)
}

func (m *mockChat) ResolvePeer(ctx context.Context, ref peer.Ref) (peer.Peer, error) {
	args := m.Called(ctx, ref)
	p, _ := args.Get(0).(peer.Peer)
	return p, args.Error(1)
}

func (m *mockChat) LookupID(ctx context.Context, id int64) (peer.Peer, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(peer.Peer)
	return p, args.Error(1)
}

func (m *mockChat) PeerAbout(ctx context.Context, p peer.Peer) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *mockChat) History(ctx context.Context, p peer.Peer, q chat.HistoryQuery) ([]*message.Message, error) {
	args := m.Called(ctx, p, q)
	msgs, _ := args.Get(0).([]*message.Message)
	return msgs, args.Error(1)
}

func (m *mockChat) Message(ctx context.Context, p peer.Peer, id int) (*message.Message, error) {
	args := m.Called(ctx, p, id)
	msg, _ := args.Get(0).(*message.Message)
	return msg, args.Error(1)
}

func (m *mockChat) Download(ctx context.Context, loc message.Location, w io.Writer) error {
	return m.Called(ctx, loc, w).Error(0)
}

func (m *mockChat) DownloadProfilePhoto(ctx context.Context, p peer.Peer, w io.Writer) error {
	return m.Called(ctx, p, w).Error(0)
}

func newTestService(repo *mockChat) *Service {
	links := peer.NewLinks("http://feed.local")
	identities := identity.New(repo)
	svc := New(repo, NewRenderer(identities, links), links, Config{})
	svc.now = func() time.Time { return postDate }
	return svc
}

// newest first, as the network returns them
func page(msgs ...*message.Message) []*message.Message {
	return msgs
}

func TestFeed(t *testing.T) {
	repo := new(mockChat)
	repo.On("History", mock.Anything, news, chat.HistoryQuery{Limit: 25}).
		Return(page(channelPost(2, "second"), channelPost(1, "first")), nil)
	repo.On("PeerAbout", mock.Anything, news).Return("All the news", nil)

	feed, err := newTestService(repo).Feed(context.Background(), Request{Peer: news})
	require.NoError(t, err)

	assert.Equal(t, "News", feed.Meta.Title)
	assert.Equal(t, "https://t.me/news", feed.Meta.Link)
	assert.Equal(t, "http://feed.local/profile/news", feed.Meta.Avatar)
	assert.Equal(t, "All the news", feed.Meta.Description)
	assert.Equal(t, postDate, feed.Meta.Built)
	require.Len(t, feed.Entries, 2)
	assert.Equal(t, "first", feed.Entries[0].Title)
	assert.Equal(t, "second", feed.Entries[1].Title)
	assert.Equal(t, "News", feed.Entries[0].Author)

	// the feed peer is cached, authors never hit the network
	repo.AssertNotCalled(t, "ResolvePeer", mock.Anything, mock.Anything)
}

func TestFeed_OffsetAndLimit(t *testing.T) {
	repo := new(mockChat)
	repo.On("History", mock.Anything, news, chat.HistoryQuery{Limit: 5, AddOffset: 10}).
		Return(page(channelPost(1, "x")), nil)
	repo.On("PeerAbout", mock.Anything, news).Return("", nil)

	feed, err := newTestService(repo).Feed(context.Background(), Request{Peer: news, Offset: 10, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, "tgfeed:1001:10", feed.Meta.ID())
	assert.Equal(t, "http://feed.local/rss/news/10", feed.Meta.Self)
}

func TestFeed_Empty(t *testing.T) {
	repo := new(mockChat)
	repo.On("History", mock.Anything, news, mock.Anything).Return(page(), nil)

	_, err := newTestService(repo).Feed(context.Background(), Request{Peer: news})
	assert.ErrorIs(t, err, sharedErrors.ErrEmptyFeed)
	repo.AssertNotCalled(t, "PeerAbout", mock.Anything, mock.Anything)
}

func TestFeed_HistoryError(t *testing.T) {
	repo := new(mockChat)
	repo.On("History", mock.Anything, hidden, mock.Anything).Return(nil, sharedErrors.ErrPrivateChannel)

	_, err := newTestService(repo).Feed(context.Background(), Request{Peer: hidden})
	assert.ErrorIs(t, err, sharedErrors.ErrPrivateChannel)
}

func TestFeed_AboutErrors(t *testing.T) {
	t.Run("private channel", func(t *testing.T) {
		repo := new(mockChat)
		repo.On("History", mock.Anything, news, mock.Anything).Return(page(channelPost(1, "x")), nil)
		repo.On("PeerAbout", mock.Anything, news).Return("", sharedErrors.ErrPrivateChannel)

		_, err := newTestService(repo).Feed(context.Background(), Request{Peer: news})
		assert.ErrorIs(t, err, sharedErrors.ErrPrivateChannel)
	})

	t.Run("other failures degrade", func(t *testing.T) {
		repo := new(mockChat)
		repo.On("History", mock.Anything, news, mock.Anything).Return(page(channelPost(1, "x")), nil)
		repo.On("PeerAbout", mock.Anything, news).Return("", errors.New("flood wait"))

		feed, err := newTestService(repo).Feed(context.Background(), Request{Peer: news})
		require.NoError(t, err)
		assert.Empty(t, feed.Meta.Description)
	})
}

func TestFeed_ExpandsTrailingGroup(t *testing.T) {
	album := func(id int, text string) *message.Message {
		m := channelPost(id, text)
		m.GroupID = 77
		return m
	}

	repo := new(mockChat)
	repo.On("History", mock.Anything, news, chat.HistoryQuery{Limit: 2}).
		Return(page(channelPost(12, "latest"), album(11, "B")), nil)
	repo.On("History", mock.Anything, news, chat.HistoryQuery{Limit: 10, MaxID: 11}).
		Return(page(album(10, "A"), channelPost(9, "older")), nil)
	repo.On("PeerAbout", mock.Anything, news).Return("", nil)

	feed, err := newTestService(repo).Feed(context.Background(), Request{Peer: news, Limit: 2})
	require.NoError(t, err)

	require.Len(t, feed.Entries, 2)
	assert.Equal(t, "latest", feed.Entries[0].Title)
	assert.Equal(t, "1001/10", feed.Entries[1].GUID)
	assert.Equal(t,
		`<p style="white-space: pre-line">A</p><p style="white-space: pre-line">B</p>`,
		feed.Entries[1].Body,
	)
}

func TestFeed_GroupExpansionFailureKeepsPage(t *testing.T) {
	m := channelPost(3, "part")
	m.GroupID = 5

	repo := new(mockChat)
	repo.On("History", mock.Anything, news, chat.HistoryQuery{Limit: 25}).Return(page(m), nil)
	repo.On("History", mock.Anything, news, chat.HistoryQuery{Limit: 10, MaxID: 3}).Return(nil, errors.New("timeout"))
	repo.On("PeerAbout", mock.Anything, news).Return("", nil)

	feed, err := newTestService(repo).Feed(context.Background(), Request{Peer: news})
	require.NoError(t, err)
	assert.Len(t, feed.Entries, 1)
}
