package domain

import (
	"time"

	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
)

// Message is a chat message converted from the client's object model
type Message struct {
	ID       int
	Peer     peer.Ref
	Date     time.Time
	Text     string
	Entities []Entity

	// Post is set for channel posts; PostAuthor carries the signature.
	Post       bool
	PostAuthor string
	From       *peer.Ref

	// GroupID is shared by all parts of an album, 0 otherwise.
	GroupID int64
	Forward *Forward

	Media  Media
	Action Action
}

// IsService reports whether the message describes an event rather than
// user content.
func (m *Message) IsService() bool {
	return m.Action != nil
}

// Forward is the origin of a forwarded message
type Forward struct {
	From        *peer.Ref
	FromName    string
	ChannelPost int
}

// EntityKind is the formatting applied to a slice of the text
type EntityKind int

const (
	EntityBold EntityKind = iota + 1
	EntityItalic
	EntityUnderline
	EntityStrike
	EntityCode
	EntityPre
	EntityTextURL
	EntityURL
	EntityEmail
	EntityMention
	EntityMentionName
	EntitySpoiler
	EntityBlockquote
)

// Entity offsets and lengths are counted in UTF-16 code units.
type Entity struct {
	Kind     EntityKind
	Offset   int
	Length   int
	URL      string
	Language string
	UserID   int64
}
