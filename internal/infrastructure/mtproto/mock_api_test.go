package mtproto

import (
	"context"
	"log/slog"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	peerRepository "github.com/reshetovitsme/tgfeed/internal/modules/peer/repository"
	"github.com/reshetovitsme/tgfeed/internal/shared/metrics"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) ContactsResolveUsername(ctx context.Context, req *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*tg.ContactsResolvedPeer)
	return res, args.Error(1)
}

func (m *mockAPI) UsersGetUsers(ctx context.Context, id []tg.InputUserClass) ([]tg.UserClass, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).([]tg.UserClass)
	return res, args.Error(1)
}

func (m *mockAPI) UsersGetFullUser(ctx context.Context, id tg.InputUserClass) (*tg.UsersUserFull, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*tg.UsersUserFull)
	return res, args.Error(1)
}

func (m *mockAPI) ChannelsGetChannels(ctx context.Context, id []tg.InputChannelClass) (tg.MessagesChatsClass, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(tg.MessagesChatsClass)
	return res, args.Error(1)
}

func (m *mockAPI) ChannelsGetFullChannel(ctx context.Context, channel tg.InputChannelClass) (*tg.MessagesChatFull, error) {
	args := m.Called(ctx, channel)
	res, _ := args.Get(0).(*tg.MessagesChatFull)
	return res, args.Error(1)
}

func (m *mockAPI) ChannelsGetMessages(ctx context.Context, req *tg.ChannelsGetMessagesRequest) (tg.MessagesMessagesClass, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(tg.MessagesMessagesClass)
	return res, args.Error(1)
}

func (m *mockAPI) MessagesGetChats(ctx context.Context, id []int64) (tg.MessagesChatsClass, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(tg.MessagesChatsClass)
	return res, args.Error(1)
}

func (m *mockAPI) MessagesGetHistory(ctx context.Context, req *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(tg.MessagesMessagesClass)
	return res, args.Error(1)
}

func (m *mockAPI) MessagesGetMessages(ctx context.Context, id []tg.InputMessageClass) (tg.MessagesMessagesClass, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(tg.MessagesMessagesClass)
	return res, args.Error(1)
}

func (m *mockAPI) MessagesGetDialogs(ctx context.Context, req *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(tg.MessagesDialogsClass)
	return res, args.Error(1)
}

// newTestClient returns a connected client backed by a mock API and a
// temporary peer store.
func newTestClient(t *testing.T) (*Client, *mockAPI, peerRepository.Repository) {
	t.Helper()

	peers, err := peerRepository.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	api := new(mockAPI)
	c := &Client{
		apiID:     1,
		apiHash:   "hash",
		partSize:  32 * 1024,
		terminal:  &Terminal{},
		peers:     peers,
		metrics:   metrics.New(),
		logger:    slog.Default(),
		limiter:   rate.NewLimiter(rate.Inf, 1),
		connected: true,
		api:       api,
	}

	return c, api, peers
}
