package mtproto

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gotd/td/tg"
	"github.com/samber/lo"
	"github.com/samber/oops"

	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
)

// ResolveHandle turns a username (with or without "@") into a peer.
// Numeric handles are treated as ids.
func (c *Client) ResolveHandle(ctx context.Context, handle string) (peer.Peer, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, sharedErrors.ErrPeerNotFound
	}

	if id, err := strconv.ParseInt(handle, 10, 64); err == nil {
		return c.LookupID(ctx, id)
	}

	if p, err := c.peers.FindByUsername(handle); err == nil {
		return p, nil
	}

	var resolved *tg.ContactsResolvedPeer
	err := c.invoke(ctx, "contacts.resolveUsername", func(ctx context.Context, api api) error {
		var err error
		resolved, err = api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: handle})
		return err
	})
	if err != nil {
		return nil, oops.With("handle", handle, "context", "failed to resolve username").Wrap(err)
	}

	c.remember(resolved.Users, resolved.Chats)

	ref, ok := refFromPeer(resolved.Peer)
	if !ok {
		return nil, oops.With("handle", handle).Wrap(sharedErrors.ErrPeerNotFound)
	}
	if forbidden(resolved.Chats, ref) {
		return nil, oops.With("handle", handle).Wrap(sharedErrors.ErrPrivateChannel)
	}

	return c.peers.GetPeer(ref)
}

// ResolvePeer returns the current state of a peer. Channels are always
// fetched so that a private channel reports ErrPrivateChannel; users and
// chats come from the store when known.
func (c *Client) ResolvePeer(ctx context.Context, ref peer.Ref) (peer.Peer, error) {
	stored, err := c.peers.GetPeer(ref)
	if err != nil && !errors.Is(err, sharedErrors.ErrPeerNotFound) {
		return nil, err
	}

	switch ref.Kind {
	case peer.PeerKindChannel:
		var hash int64
		if ch, ok := stored.(*peer.Channel); ok {
			hash = ch.AccessHash
		}

		var res tg.MessagesChatsClass
		err := c.invoke(ctx, "channels.getChannels", func(ctx context.Context, api api) error {
			var err error
			res, err = api.ChannelsGetChannels(ctx, []tg.InputChannelClass{
				&tg.InputChannel{ChannelID: ref.ID, AccessHash: hash},
			})
			return err
		})
		if err != nil {
			return nil, oops.With("peer", ref.String(), "context", "failed to get channel").Wrap(err)
		}

		chats := chatsOf(res)
		c.remember(nil, chats)
		if forbidden(chats, ref) {
			return nil, oops.With("peer", ref.String()).Wrap(sharedErrors.ErrPrivateChannel)
		}

	case peer.PeerKindUser:
		if stored != nil {
			return stored, nil
		}

		var users []tg.UserClass
		err := c.invoke(ctx, "users.getUsers", func(ctx context.Context, api api) error {
			var err error
			users, err = api.UsersGetUsers(ctx, []tg.InputUserClass{&tg.InputUser{UserID: ref.ID}})
			return err
		})
		if err != nil {
			return nil, oops.With("peer", ref.String(), "context", "failed to get user").Wrap(err)
		}
		c.remember(users, nil)

	default:
		if stored != nil {
			return stored, nil
		}

		var res tg.MessagesChatsClass
		err := c.invoke(ctx, "messages.getChats", func(ctx context.Context, api api) error {
			var err error
			res, err = api.MessagesGetChats(ctx, []int64{ref.ID})
			return err
		})
		if err != nil {
			return nil, oops.With("peer", ref.String(), "context", "failed to get chat").Wrap(err)
		}
		c.remember(nil, chatsOf(res))
	}

	return c.peers.GetPeer(ref)
}

// LookupID finds a peer by numeric id among the peers seen so far
func (c *Client) LookupID(_ context.Context, id int64) (peer.Peer, error) {
	p, err := c.peers.FindByID(id)
	if err != nil {
		return nil, oops.With("peer_id", id).Wrap(err)
	}
	return p, nil
}

// PeerAbout returns the description of a channel or the bio of a user.
// Other chats have none.
func (c *Client) PeerAbout(ctx context.Context, p peer.Peer) (string, error) {
	switch v := p.(type) {
	case *peer.Channel:
		var full *tg.MessagesChatFull
		err := c.invoke(ctx, "channels.getFullChannel", func(ctx context.Context, api api) error {
			var err error
			full, err = api.ChannelsGetFullChannel(ctx, &tg.InputChannel{ChannelID: v.ID, AccessHash: v.AccessHash})
			return err
		})
		if err != nil {
			return "", oops.With("peer", v.Ref().String(), "context", "failed to get full channel").Wrap(err)
		}

		c.remember(full.Users, full.Chats)
		if info, ok := full.FullChat.(*tg.ChannelFull); ok {
			return info.About, nil
		}
		return "", nil

	case *peer.User:
		var full *tg.UsersUserFull
		err := c.invoke(ctx, "users.getFullUser", func(ctx context.Context, api api) error {
			var err error
			full, err = api.UsersGetFullUser(ctx, &tg.InputUser{UserID: v.ID, AccessHash: v.AccessHash})
			return err
		})
		if err != nil {
			return "", oops.With("peer", v.Ref().String(), "context", "failed to get full user").Wrap(err)
		}

		c.remember(full.Users, full.Chats)
		return full.FullUser.About, nil

	default:
		return "", nil
	}
}

// remember stores every peer of an RPC response
func (c *Client) remember(users []tg.UserClass, chats []tg.ChatClass) {
	peers := append(
		lo.FilterMap(users, func(u tg.UserClass, _ int) (peer.Peer, bool) { return convertUser(u) }),
		lo.FilterMap(chats, func(ch tg.ChatClass, _ int) (peer.Peer, bool) { return convertChat(ch) })...,
	)
	if len(peers) == 0 {
		return
	}

	if err := c.peers.SavePeers(peers...); err != nil {
		c.logger.Warn("Failed to store peers", "count", len(peers), "error", err)
	}
}

func chatsOf(res tg.MessagesChatsClass) []tg.ChatClass {
	switch v := res.(type) {
	case *tg.MessagesChats:
		return v.Chats
	case *tg.MessagesChatsSlice:
		return v.Chats
	default:
		return nil
	}
}

func forbidden(chats []tg.ChatClass, ref peer.Ref) bool {
	if ref.Kind != peer.PeerKindChannel {
		return false
	}
	return lo.ContainsBy(chats, func(ch tg.ChatClass) bool {
		f, ok := ch.(*tg.ChannelForbidden)
		return ok && f.ID == ref.ID
	})
}

func inputPeer(p peer.Peer) tg.InputPeerClass {
	switch v := p.(type) {
	case *peer.User:
		return &tg.InputPeerUser{UserID: v.ID, AccessHash: v.AccessHash}
	case *peer.Channel:
		return &tg.InputPeerChannel{ChannelID: v.ID, AccessHash: v.AccessHash}
	default:
		return &tg.InputPeerChat{ChatID: p.Ref().ID}
	}
}
