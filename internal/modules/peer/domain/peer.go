package domain

import (
	"fmt"
	"strings"
)

// Peer is a chat participant addressable by a numeric id.
// Implemented by *User, *Channel and *Unknown only.
type Peer interface {
	Ref() Ref
	// Handle returns the public username, or "" for peers without one.
	Handle() string
	// DisplayName is the human readable name used for feed titles.
	DisplayName() string

	isPeer()
}

// Ref is a reference to a peer without any of its attributes.
type Ref struct {
	Kind PeerKind `json:"kind"`
	ID   int64    `json:"id"`
}

func UserRef(id int64) Ref    { return Ref{Kind: PeerKindUser, ID: id} }
func ChannelRef(id int64) Ref { return Ref{Kind: PeerKindChannel, ID: id} }
func UnknownRef(id int64) Ref { return Ref{Kind: PeerKindUnknown, ID: id} }

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// channelMarkOffset is the offset used by marked ("-100...") channel ids.
const channelMarkOffset = 1000000000000

// MarkedID returns the signed id form: positive for users,
// -100<id> for channels and -<id> for other chats.
func (r Ref) MarkedID() int64 {
	switch r.Kind {
	case PeerKindChannel:
		return -(channelMarkOffset + r.ID)
	case PeerKindUnknown:
		return -r.ID
	default:
		return r.ID
	}
}

// ParseMarkedID reverses MarkedID. The second result is false when the id
// is a bare positive number, which may denote any kind of peer.
func ParseMarkedID(id int64) (Ref, bool) {
	switch {
	case id <= -channelMarkOffset:
		return ChannelRef(-id - channelMarkOffset), true
	case id < 0:
		return UnknownRef(-id), true
	default:
		return UserRef(id), false
	}
}

// User is an individual account.
type User struct {
	ID         int64  `json:"id"`
	AccessHash int64  `json:"access_hash"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Username   string `json:"username,omitempty"`
	PhotoID    int64  `json:"photo_id,omitempty"`
	Bot        bool   `json:"bot,omitempty"`
}

func (u *User) Ref() Ref       { return UserRef(u.ID) }
func (u *User) Handle() string { return u.Username }

func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (*User) isPeer() {}

// Channel is a broadcast channel or a supergroup.
type Channel struct {
	ID         int64  `json:"id"`
	AccessHash int64  `json:"access_hash"`
	Title      string `json:"title"`
	Username   string `json:"username,omitempty"`
	PhotoID    int64  `json:"photo_id,omitempty"`
	Broadcast  bool   `json:"broadcast,omitempty"`
}

func (c *Channel) Ref() Ref            { return ChannelRef(c.ID) }
func (c *Channel) Handle() string      { return c.Username }
func (c *Channel) DisplayName() string { return c.Title }
func (*Channel) isPeer()               {}

// Unknown covers basic group chats and peers the client could not classify.
type Unknown struct {
	ID    int64  `json:"id"`
	Title string `json:"title,omitempty"`
}

func (u *Unknown) Ref() Ref       { return UnknownRef(u.ID) }
func (u *Unknown) Handle() string { return "" }

func (u *Unknown) DisplayName() string {
	if u.Title == "" {
		return fmt.Sprintf("%d", u.ID)
	}
	return u.Title
}

func (*Unknown) isPeer() {}
