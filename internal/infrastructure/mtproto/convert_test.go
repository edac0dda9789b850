package mtproto

import (
	"testing"
	"time"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	message "github.com/reshetovitsme/tgfeed/internal/modules/message/domain"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
)

func TestConvertUser(t *testing.T) {
	p, ok := convertUser(&tg.User{
		ID:         7,
		AccessHash: 99,
		FirstName:  "Alice",
		LastName:   "Liddell",
		Username:   "alice",
		Photo:      &tg.UserProfilePhoto{PhotoID: 5},
	})
	require.True(t, ok)

	user, ok := p.(*peer.User)
	require.True(t, ok)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, int64(99), user.AccessHash)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, int64(5), user.PhotoID)

	minUser, ok := convertUser(&tg.User{ID: 8, AccessHash: 1, Min: true})
	require.True(t, ok)
	assert.Zero(t, minUser.(*peer.User).AccessHash)

	_, ok = convertUser(&tg.UserEmpty{ID: 9})
	assert.False(t, ok)
}

func TestConvertChat(t *testing.T) {
	tests := []struct {
		name string
		in   tg.ChatClass
		want peer.Peer
	}{
		{
			name: "channel",
			in:   &tg.Channel{ID: 1, AccessHash: 2, Title: "News", Username: "news", Broadcast: true, Photo: &tg.ChatPhoto{PhotoID: 3}},
			want: &peer.Channel{ID: 1, AccessHash: 2, Title: "News", Username: "news", Broadcast: true, PhotoID: 3},
		},
		{
			name: "forbidden channel",
			in:   &tg.ChannelForbidden{ID: 4, AccessHash: 5, Title: "Secret"},
			want: &peer.Channel{ID: 4, AccessHash: 5, Title: "Secret"},
		},
		{
			name: "basic chat",
			in:   &tg.Chat{ID: 6, Title: "Friends"},
			want: &peer.Unknown{ID: 6, Title: "Friends"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := convertChat(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertMessage_Regular(t *testing.T) {
	in := &tg.Message{
		ID:        42,
		PeerID:    &tg.PeerChannel{ChannelID: 10},
		Date:      1700000000,
		Message:   "hello world",
		Post:      true,
		GroupedID: 77,
		Entities: []tg.MessageEntityClass{
			&tg.MessageEntityBold{Offset: 0, Length: 5},
			&tg.MessageEntityTextURL{Offset: 6, Length: 5, URL: "https://example.com"},
		},
	}
	in.SetPostAuthor("Bob")
	fwd := tg.MessageFwdHeader{}
	fwd.SetFromID(&tg.PeerChannel{ChannelID: 11})
	fwd.SetChannelPost(5)
	in.SetFwdFrom(fwd)
	in.SetMedia(&tg.MessageMediaPhoto{Photo: &tg.Photo{
		ID:         1,
		AccessHash: 2,
		Sizes: []tg.PhotoSizeClass{
			&tg.PhotoSize{Type: "y", W: 1280, Size: 300},
			&tg.PhotoStrippedSize{Type: "i"},
			&tg.PhotoSize{Type: "m", W: 320, Size: 30},
		},
	}})

	msg, ok := convertMessage(in)
	require.True(t, ok)

	assert.Equal(t, 42, msg.ID)
	assert.Equal(t, peer.ChannelRef(10), msg.Peer)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), msg.Date)
	assert.Equal(t, "hello world", msg.Text)
	assert.True(t, msg.Post)
	assert.Equal(t, "Bob", msg.PostAuthor)
	assert.Equal(t, int64(77), msg.GroupID)
	assert.Nil(t, msg.From)
	assert.False(t, msg.IsService())

	require.NotNil(t, msg.Forward)
	require.NotNil(t, msg.Forward.From)
	assert.Equal(t, peer.ChannelRef(11), *msg.Forward.From)
	assert.Equal(t, 5, msg.Forward.ChannelPost)

	require.Len(t, msg.Entities, 2)
	assert.Equal(t, message.Entity{Kind: message.EntityBold, Offset: 0, Length: 5}, msg.Entities[0])
	assert.Equal(t, "https://example.com", msg.Entities[1].URL)

	photo, ok := msg.Media.(*message.Photo)
	require.True(t, ok)
	assert.Equal(t, []message.Thumb{
		{Type: "m", Width: 320, Size: 30},
		{Type: "y", Width: 1280, Size: 300},
	}, photo.Sizes)
}

func TestConvertMessage_Service(t *testing.T) {
	pin := &tg.MessageService{
		ID:     3,
		PeerID: &tg.PeerChannel{ChannelID: 10},
		Date:   1700000000,
		Action: &tg.MessageActionPinMessage{},
	}
	pin.SetReplyTo(&tg.MessageReplyHeader{ReplyToMsgID: 2})

	msg, ok := convertMessage(pin)
	require.True(t, ok)
	require.True(t, msg.IsService())
	assert.Equal(t, &message.PinMessage{MessageID: 2}, msg.Action)

	created, ok := convertMessage(&tg.MessageService{
		ID:     1,
		PeerID: &tg.PeerChannel{ChannelID: 10},
		Action: &tg.MessageActionChannelCreate{Title: "News"},
	})
	require.True(t, ok)
	assert.Equal(t, &message.ChannelCreate{Title: "News"}, created.Action)

	other, ok := convertMessage(&tg.MessageService{
		ID:     4,
		PeerID: &tg.PeerChannel{ChannelID: 10},
		Action: &tg.MessageActionHistoryClear{},
	})
	require.True(t, ok)
	assert.IsType(t, &message.UnknownAction{}, other.Action)

	_, ok = convertMessage(&tg.MessageEmpty{ID: 5})
	assert.False(t, ok)
}

func TestConvertDocument_Kind(t *testing.T) {
	tests := []struct {
		name  string
		attrs []tg.DocumentAttributeClass
		kind  message.DocumentKind
		width int
		file  string
	}{
		{
			name:  "gif has both animated and video attributes",
			attrs: []tg.DocumentAttributeClass{&tg.DocumentAttributeImageSize{W: 480}, &tg.DocumentAttributeAnimated{}, &tg.DocumentAttributeVideo{W: 400}},
			kind:  message.DocumentKindGif,
			width: 480,
		},
		{
			name:  "video sticker",
			attrs: []tg.DocumentAttributeClass{&tg.DocumentAttributeVideo{W: 512}, &tg.DocumentAttributeSticker{}},
			kind:  message.DocumentKindSticker,
			width: 512,
		},
		{
			name:  "video",
			attrs: []tg.DocumentAttributeClass{&tg.DocumentAttributeVideo{W: 1920}, &tg.DocumentAttributeFilename{FileName: "clip.mp4"}},
			kind:  message.DocumentKindVideo,
			width: 1920,
			file:  "clip.mp4",
		},
		{
			name:  "generic",
			attrs: []tg.DocumentAttributeClass{&tg.DocumentAttributeFilename{FileName: "report.pdf"}, &tg.DocumentAttributeFilename{FileName: "other.pdf"}},
			kind:  message.DocumentKindGeneric,
			file:  "report.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := convertDocument(&tg.Document{ID: 1, MimeType: "application/pdf", Attributes: tt.attrs})
			require.NotNil(t, doc)
			assert.Equal(t, tt.kind, doc.Kind)
			assert.Equal(t, tt.width, doc.Width)
			assert.Equal(t, tt.file, doc.FileName)
		})
	}
}

func TestConvertMedia_WebPage(t *testing.T) {
	media := convertMedia(&tg.MessageMediaWebPage{Webpage: &tg.WebPage{
		URL:      "https://example.com",
		SiteName: "Example",
		Title:    "Title",
		Photo:    &tg.Photo{ID: 1},
	}})

	page, ok := media.(*message.WebPage)
	require.True(t, ok)
	assert.Equal(t, "Example", page.SiteName)
	assert.Empty(t, page.Author)
	require.NotNil(t, page.Photo)
	assert.Equal(t, int64(1), page.Photo.ID)

	assert.Nil(t, convertMedia(&tg.MessageMediaWebPage{Webpage: &tg.WebPagePending{ID: 1}}))
	assert.IsType(t, &message.Unsupported{}, convertMedia(&tg.MessageMediaGeo{Geo: &tg.GeoPoint{}}))
}
