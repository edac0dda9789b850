package repository

import (
	"context"
	"io"

	message "github.com/reshetovitsme/tgfeed/internal/modules/message/domain"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
)

// HistoryQuery selects a page of history. Results come newest first.
type HistoryQuery struct {
	Limit     int
	AddOffset int
	// MaxID, when set, only returns messages with a smaller id.
	MaxID int
}

// Repository defines the read access to the chat network.
// The production implementation talks MTProto; tests use fakes.
type Repository interface {
	ResolveHandle(ctx context.Context, handle string) (peer.Peer, error)
	ResolvePeer(ctx context.Context, ref peer.Ref) (peer.Peer, error)
	LookupID(ctx context.Context, id int64) (peer.Peer, error)
	// PeerAbout returns the "about" text of a channel or user.
	PeerAbout(ctx context.Context, p peer.Peer) (string, error)

	History(ctx context.Context, p peer.Peer, q HistoryQuery) ([]*message.Message, error)
	Message(ctx context.Context, p peer.Peer, id int) (*message.Message, error)

	Download(ctx context.Context, loc message.Location, w io.Writer) error
	DownloadProfilePhoto(ctx context.Context, p peer.Peer, w io.Writer) error
}

// Session is the connection lifecycle of the client.
type Session interface {
	Connect(ctx context.Context) error
	// Resync refreshes the dialog list so that peers become addressable.
	Resync(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	// EnsureConnected reconnects and resyncs when the session dropped.
	EnsureConnected(ctx context.Context) error
}
