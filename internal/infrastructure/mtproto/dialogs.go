package mtproto

import (
	"context"

	"github.com/gotd/td/tg"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	dialogPageSize = 100
	maxDialogPages = 50
)

// Resync walks the dialog list and stores every peer in it, which makes
// those peers addressable by numeric id.
func (c *Client) Resync(ctx context.Context) error {
	c.logger.InfoContext(ctx, "Updating dialogs")

	req := &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      dialogPageSize,
	}

	total := 0
	for page := 0; page < maxDialogPages; page++ {
		var res tg.MessagesDialogsClass
		err := c.invoke(ctx, "messages.getDialogs", func(ctx context.Context, api api) error {
			var err error
			res, err = api.MessagesGetDialogs(ctx, req)
			return err
		})
		if err != nil {
			return oops.With("page", page, "context", "failed to get dialogs").Wrap(err)
		}

		var (
			dialogs  []tg.DialogClass
			messages []tg.MessageClass
			last     bool
		)
		switch v := res.(type) {
		case *tg.MessagesDialogs:
			dialogs, messages = v.Dialogs, v.Messages
			c.remember(v.Users, v.Chats)
			last = true
		case *tg.MessagesDialogsSlice:
			dialogs, messages = v.Dialogs, v.Messages
			c.remember(v.Users, v.Chats)
			last = len(v.Dialogs) < dialogPageSize
		default:
			last = true
		}

		total += len(dialogs)
		if last || len(dialogs) == 0 {
			break
		}

		next, ok := c.nextDialogPage(dialogs[len(dialogs)-1], messages)
		if !ok {
			break
		}
		req = next
	}

	c.logger.InfoContext(ctx, "Dialogs updated", "dialogs", total)
	return nil
}

// nextDialogPage builds the offset of the page following the given dialog
func (c *Client) nextDialogPage(last tg.DialogClass, messages []tg.MessageClass) (*tg.MessagesGetDialogsRequest, bool) {
	dialog, ok := last.(*tg.Dialog)
	if !ok {
		return nil, false
	}

	ref, ok := refFromPeer(dialog.Peer)
	if !ok {
		return nil, false
	}
	p, err := c.peers.GetPeer(ref)
	if err != nil {
		return nil, false
	}

	top, found := lo.Find(messages, func(m tg.MessageClass) bool {
		return m.GetID() == dialog.TopMessage
	})
	date := 0
	if found {
		switch m := top.(type) {
		case *tg.Message:
			date = m.Date
		case *tg.MessageService:
			date = m.Date
		}
	}

	return &tg.MessagesGetDialogsRequest{
		OffsetDate: date,
		OffsetID:   dialog.TopMessage,
		OffsetPeer: inputPeer(p),
		Limit:      dialogPageSize,
	}, true
}
