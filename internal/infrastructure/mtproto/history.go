package mtproto

import (
	"context"

	"github.com/gotd/td/tg"
	"github.com/samber/lo"
	"github.com/samber/oops"

	chat "github.com/reshetovitsme/tgfeed/internal/modules/chat/repository"
	message "github.com/reshetovitsme/tgfeed/internal/modules/message/domain"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
)

// History fetches a page of messages, newest first
func (c *Client) History(ctx context.Context, p peer.Peer, q chat.HistoryQuery) ([]*message.Message, error) {
	var res tg.MessagesMessagesClass
	err := c.invoke(ctx, "messages.getHistory", func(ctx context.Context, api api) error {
		var err error
		res, err = api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:      inputPeer(p),
			Limit:     q.Limit,
			AddOffset: q.AddOffset,
			MaxID:     q.MaxID,
		})
		return err
	})
	if err != nil {
		return nil, oops.
			With("peer", p.Ref().String(), "limit", q.Limit, "offset", q.AddOffset, "max_id", q.MaxID).
			Wrap(err)
	}

	return c.unpack(res), nil
}

// Message fetches a single message by id
func (c *Client) Message(ctx context.Context, p peer.Peer, id int) (*message.Message, error) {
	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: id}}

	var res tg.MessagesMessagesClass
	var err error
	if ch, ok := p.(*peer.Channel); ok {
		err = c.invoke(ctx, "channels.getMessages", func(ctx context.Context, api api) error {
			var err error
			res, err = api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
				Channel: &tg.InputChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash},
				ID:      ids,
			})
			return err
		})
	} else {
		err = c.invoke(ctx, "messages.getMessages", func(ctx context.Context, api api) error {
			var err error
			res, err = api.MessagesGetMessages(ctx, ids)
			return err
		})
	}
	if err != nil {
		return nil, oops.With("peer", p.Ref().String(), "message_id", id).Wrap(err)
	}

	msgs := c.unpack(res)
	if len(msgs) == 0 {
		return nil, oops.With("peer", p.Ref().String(), "message_id", id).Wrap(sharedErrors.ErrMessageNotFound)
	}
	return msgs[0], nil
}

// unpack stores the peers of a response and converts its messages.
// Empty messages are dropped.
func (c *Client) unpack(res tg.MessagesMessagesClass) []*message.Message {
	var (
		msgs  []tg.MessageClass
		users []tg.UserClass
		chats []tg.ChatClass
	)

	switch v := res.(type) {
	case *tg.MessagesMessages:
		msgs, users, chats = v.Messages, v.Users, v.Chats
	case *tg.MessagesMessagesSlice:
		msgs, users, chats = v.Messages, v.Users, v.Chats
	case *tg.MessagesChannelMessages:
		msgs, users, chats = v.Messages, v.Users, v.Chats
	default:
		return nil
	}

	c.remember(users, chats)

	return lo.FilterMap(msgs, func(m tg.MessageClass, _ int) (*message.Message, bool) {
		return convertMessage(m)
	})
}
