package domain

import (
	"fmt"
	"strings"
)

const telegramURL = "https://t.me"

// Links builds every URL that depends on whether a peer is public
// (has a username) or private (addressed by numeric id).
type Links struct {
	PublicURL string
}

func NewLinks(publicURL string) Links {
	return Links{PublicURL: strings.TrimRight(publicURL, "/")}
}

// PathSegment is the peer part of local routes: the username for public
// peers and "i/<id>" for private ones.
func PathSegment(p Peer) string {
	if h := p.Handle(); h != "" {
		return h
	}
	return fmt.Sprintf("i/%d", p.Ref().ID)
}

// Label is the username, or the numeric id for private peers.
func Label(p Peer) string {
	if h := p.Handle(); h != "" {
		return h
	}
	return fmt.Sprintf("%d", p.Ref().ID)
}

// PeerURL links to the peer on t.me.
func (l Links) PeerURL(p Peer) string {
	if h := p.Handle(); h != "" {
		return fmt.Sprintf("%s/%s", telegramURL, h)
	}
	return fmt.Sprintf("%s/c/%d", telegramURL, p.Ref().ID)
}

// Permalink links to a single message on t.me.
func (l Links) Permalink(p Peer, msgID int) string {
	return fmt.Sprintf("%s/%d", l.PeerURL(p), msgID)
}

// Media is the local media endpoint for a message. A non-empty sub selects
// a thumbnail ("1" is the poster frame).
func (l Links) Media(p Peer, msgID int, sub string) string {
	u := fmt.Sprintf("%s/media/%s/%d", l.PublicURL, PathSegment(p), msgID)
	if sub != "" {
		u += "/" + sub
	}
	return u
}

func (l Links) Avatar(p Peer) string {
	return fmt.Sprintf("%s/profile/%s", l.PublicURL, PathSegment(p))
}

func (l Links) Feed(p Peer) string {
	return fmt.Sprintf("%s/rss/%s", l.PublicURL, PathSegment(p))
}

// FeedPage is the feed URL of the page starting offset messages back.
func (l Links) FeedPage(p Peer, offset int) string {
	if offset <= 0 {
		return l.Feed(p)
	}
	return fmt.Sprintf("%s/%d", l.Feed(p), offset)
}
