package mtproto

import (
	"cmp"
	"slices"
	"time"

	"github.com/gotd/td/tg"
	"github.com/samber/lo"

	message "github.com/reshetovitsme/tgfeed/internal/modules/message/domain"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
)

func refFromPeer(p tg.PeerClass) (peer.Ref, bool) {
	switch v := p.(type) {
	case *tg.PeerUser:
		return peer.UserRef(v.UserID), true
	case *tg.PeerChannel:
		return peer.ChannelRef(v.ChannelID), true
	case *tg.PeerChat:
		return peer.UnknownRef(v.ChatID), true
	default:
		return peer.Ref{}, false
	}
}

func convertUser(u tg.UserClass) (peer.Peer, bool) {
	user, ok := u.(*tg.User)
	if !ok {
		return nil, false
	}

	p := &peer.User{
		ID:         user.ID,
		AccessHash: user.AccessHash,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Username:   user.Username,
		Bot:        user.Bot,
	}
	// Min constructors carry a hash that only works inside the message
	// they came with.
	if user.Min {
		p.AccessHash = 0
	}
	if photo, ok := user.Photo.(*tg.UserProfilePhoto); ok {
		p.PhotoID = photo.PhotoID
	}
	return p, true
}

func convertChat(c tg.ChatClass) (peer.Peer, bool) {
	switch v := c.(type) {
	case *tg.Channel:
		p := &peer.Channel{
			ID:         v.ID,
			AccessHash: v.AccessHash,
			Title:      v.Title,
			Username:   v.Username,
			Broadcast:  v.Broadcast,
		}
		if v.Min {
			p.AccessHash = 0
		}
		if photo, ok := v.Photo.(*tg.ChatPhoto); ok {
			p.PhotoID = photo.PhotoID
		}
		return p, true
	case *tg.ChannelForbidden:
		return &peer.Channel{ID: v.ID, AccessHash: v.AccessHash, Title: v.Title, Broadcast: v.Broadcast}, true
	case *tg.Chat:
		return &peer.Unknown{ID: v.ID, Title: v.Title}, true
	case *tg.ChatForbidden:
		return &peer.Unknown{ID: v.ID, Title: v.Title}, true
	default:
		return nil, false
	}
}

func convertMessage(m tg.MessageClass) (*message.Message, bool) {
	switch v := m.(type) {
	case *tg.Message:
		return convertRegular(v), true
	case *tg.MessageService:
		return convertService(v), true
	default:
		return nil, false
	}
}

func convertRegular(m *tg.Message) *message.Message {
	ref, _ := refFromPeer(m.PeerID)

	msg := &message.Message{
		ID:         m.ID,
		Peer:       ref,
		Date:       time.Unix(int64(m.Date), 0).UTC(),
		Text:       m.Message,
		Entities:   convertEntities(m.Entities),
		Post:       m.Post,
		PostAuthor: m.PostAuthor,
		GroupID:    m.GroupedID,
	}

	if from, ok := m.GetFromID(); ok {
		if ref, ok := refFromPeer(from); ok {
			msg.From = &ref
		}
	}

	if fwd, ok := m.GetFwdFrom(); ok {
		msg.Forward = &message.Forward{FromName: fwd.FromName, ChannelPost: fwd.ChannelPost}
		if from, ok := fwd.GetFromID(); ok {
			if ref, ok := refFromPeer(from); ok {
				msg.Forward.From = &ref
			}
		}
	}

	if media, ok := m.GetMedia(); ok {
		msg.Media = convertMedia(media)
	}

	return msg
}

func convertService(m *tg.MessageService) *message.Message {
	ref, _ := refFromPeer(m.PeerID)

	msg := &message.Message{
		ID:   m.ID,
		Peer: ref,
		Date: time.Unix(int64(m.Date), 0).UTC(),
		Post: m.Post,
	}

	if from, ok := m.GetFromID(); ok {
		if ref, ok := refFromPeer(from); ok {
			msg.From = &ref
		}
	}

	switch a := m.Action.(type) {
	case *tg.MessageActionPinMessage:
		pin := &message.PinMessage{}
		if reply, ok := m.GetReplyTo(); ok {
			if header, ok := reply.(*tg.MessageReplyHeader); ok {
				pin.MessageID = header.ReplyToMsgID
			}
		}
		msg.Action = pin
	case *tg.MessageActionChatEditPhoto:
		msg.Action = &message.ChatEditPhoto{Photo: convertPhoto(a.Photo)}
	case *tg.MessageActionChannelCreate:
		msg.Action = &message.ChannelCreate{Title: a.Title}
	default:
		msg.Action = &message.UnknownAction{Type: m.Action.TypeName()}
	}

	return msg
}

func convertMedia(m tg.MessageMediaClass) message.Media {
	switch v := m.(type) {
	case *tg.MessageMediaPhoto:
		if photo := convertPhoto(v.Photo); photo != nil {
			return photo
		}
		return nil
	case *tg.MessageMediaDocument:
		if doc := convertDocument(v.Document); doc != nil {
			return doc
		}
		return nil
	case *tg.MessageMediaWebPage:
		page, ok := v.Webpage.(*tg.WebPage)
		if !ok {
			return nil
		}
		return &message.WebPage{
			URL:         page.URL,
			SiteName:    page.SiteName,
			Author:      page.Author,
			Title:       page.Title,
			Description: page.Description,
			Photo:       convertPhoto(page.Photo),
		}
	case *tg.MessageMediaEmpty:
		return nil
	default:
		return &message.Unsupported{Type: m.TypeName()}
	}
}

func convertPhoto(p tg.PhotoClass) *message.Photo {
	photo, ok := p.(*tg.Photo)
	if !ok {
		return nil
	}

	return &message.Photo{
		ID:            photo.ID,
		AccessHash:    photo.AccessHash,
		FileReference: photo.FileReference,
		Sizes:         convertThumbs(photo.Sizes),
	}
}

func convertDocument(d tg.DocumentClass) *message.Document {
	doc, ok := d.(*tg.Document)
	if !ok {
		return nil
	}

	out := &message.Document{
		ID:            doc.ID,
		AccessHash:    doc.AccessHash,
		FileReference: doc.FileReference,
		MimeType:      doc.MimeType,
		Size:          doc.Size,
		Thumbs:        convertThumbs(doc.Thumbs),
	}

	var animated, sticker, video bool
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeFilename:
			if out.FileName == "" {
				out.FileName = a.FileName
			}
		case *tg.DocumentAttributeVideo:
			video = true
			if out.Width == 0 {
				out.Width = a.W
			}
		case *tg.DocumentAttributeImageSize:
			if out.Width == 0 {
				out.Width = a.W
			}
		case *tg.DocumentAttributeAnimated:
			animated = true
		case *tg.DocumentAttributeSticker:
			sticker = true
		}
	}

	switch {
	case animated:
		out.Kind = message.DocumentKindGif
	case sticker:
		out.Kind = message.DocumentKindSticker
	case video:
		out.Kind = message.DocumentKindVideo
	default:
		out.Kind = message.DocumentKindGeneric
	}

	return out
}

// convertThumbs keeps the downloadable sizes ordered by byte size.
// Stripped and cached sizes are inlined in the object and cannot be
// fetched with a file location.
func convertThumbs(sizes []tg.PhotoSizeClass) []message.Thumb {
	thumbs := lo.FilterMap(sizes, func(s tg.PhotoSizeClass, _ int) (message.Thumb, bool) {
		switch v := s.(type) {
		case *tg.PhotoSize:
			return message.Thumb{Type: v.Type, Width: v.W, Size: v.Size}, true
		case *tg.PhotoSizeProgressive:
			if len(v.Sizes) == 0 {
				return message.Thumb{}, false
			}
			return message.Thumb{Type: v.Type, Width: v.W, Size: v.Sizes[len(v.Sizes)-1]}, true
		default:
			return message.Thumb{}, false
		}
	})

	slices.SortStableFunc(thumbs, func(a, b message.Thumb) int {
		return cmp.Compare(a.Size, b.Size)
	})
	return thumbs
}

func convertEntities(entities []tg.MessageEntityClass) []message.Entity {
	return lo.FilterMap(entities, func(e tg.MessageEntityClass, _ int) (message.Entity, bool) {
		out := message.Entity{Offset: e.GetOffset(), Length: e.GetLength()}

		switch v := e.(type) {
		case *tg.MessageEntityBold:
			out.Kind = message.EntityBold
		case *tg.MessageEntityItalic:
			out.Kind = message.EntityItalic
		case *tg.MessageEntityUnderline:
			out.Kind = message.EntityUnderline
		case *tg.MessageEntityStrike:
			out.Kind = message.EntityStrike
		case *tg.MessageEntityCode:
			out.Kind = message.EntityCode
		case *tg.MessageEntityPre:
			out.Kind = message.EntityPre
			out.Language = v.Language
		case *tg.MessageEntityTextURL:
			out.Kind = message.EntityTextURL
			out.URL = v.URL
		case *tg.MessageEntityURL:
			out.Kind = message.EntityURL
		case *tg.MessageEntityEmail:
			out.Kind = message.EntityEmail
		case *tg.MessageEntityMention:
			out.Kind = message.EntityMention
		case *tg.MessageEntityMentionName:
			out.Kind = message.EntityMentionName
			out.UserID = v.UserID
		case *tg.MessageEntitySpoiler:
			out.Kind = message.EntitySpoiler
		case *tg.MessageEntityBlockquote:
			out.Kind = message.EntityBlockquote
		default:
			return message.Entity{}, false
		}

		return out, true
	})
}
