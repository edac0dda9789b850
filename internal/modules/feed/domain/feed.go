package domain

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the timestamp format of entries and feeds
	DateLayout = "2006-01-02T15:04:05-0700"
	// TitleDateLayout is used as the title of entries without text
	TitleDateLayout = "02 Jan 2006 15:04:05"
)

// Entry is a rendered message
type Entry struct {
	MessageID int
	GUID      string
	Title     string
	Body      string
	Author    string
	Link      string
	Date      time.Time
	// GroupID is non-zero for parts of an album
	GroupID int64
}

// GUID builds the stable id of a message: "<peer-id>/<message-id>"
func GUID(peerID int64, msgID int) string {
	return fmt.Sprintf("%d/%d", peerID, msgID)
}

// Timestamp formats the entry date with DateLayout
func (e *Entry) Timestamp() string {
	return e.Date.Format(DateLayout)
}

// Meta is the feed-level metadata
type Meta struct {
	PeerID      int64
	Title       string
	Link        string
	Avatar      string
	Description string
	// Self is the URL the feed is served at
	Self   string
	Built  time.Time
	Offset int
}

// ID is the feed id, unique per peer and page
func (m Meta) ID() string {
	return fmt.Sprintf("tgfeed:%d:%d", m.PeerID, m.Offset)
}

type Feed struct {
	Meta    Meta
	Entries []*Entry
}
