package mtproto

import (
	"context"
	"io"

	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/samber/oops"

	message "github.com/reshetovitsme/tgfeed/internal/modules/message/domain"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
)

// Download streams a photo or document to w in parts of the configured
// size. Each part is written as soon as it arrives.
func (c *Client) Download(ctx context.Context, loc message.Location, w io.Writer) error {
	location, err := fileLocation(loc)
	if err != nil {
		return err
	}
	return c.stream(ctx, location, w)
}

// DownloadProfilePhoto streams the big version of a peer's current photo.
func (c *Client) DownloadProfilePhoto(ctx context.Context, p peer.Peer, w io.Writer) error {
	var photoID int64
	switch v := p.(type) {
	case *peer.User:
		photoID = v.PhotoID
	case *peer.Channel:
		photoID = v.PhotoID
	}
	if photoID == 0 {
		return oops.With("peer", p.Ref().String()).Wrap(sharedErrors.ErrNoMedia)
	}

	return c.stream(ctx, &tg.InputPeerPhotoFileLocation{
		Big:     true,
		Peer:    inputPeer(p),
		PhotoID: photoID,
	}, w)
}

func (c *Client) stream(ctx context.Context, location tg.InputFileLocationClass, w io.Writer) error {
	c.mu.RLock()
	raw, connected := c.raw, c.connected
	c.mu.RUnlock()

	if !connected || raw == nil {
		return sharedErrors.ErrNotConnected
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return oops.With("context", "rate limit wait cancelled").Wrap(err)
	}

	c.metrics.UpstreamCalls.WithLabelValues("upload.getFile").Inc()

	_, err := downloader.NewDownloader().
		WithPartSize(c.partSize).
		Download(raw, location).
		Stream(ctx, w)
	if err != nil {
		c.metrics.UpstreamErrors.WithLabelValues("upload.getFile").Inc()
		return oops.With("location", location.TypeName(), "context", "download failed").Wrap(classify(err))
	}
	return nil
}

func fileLocation(loc message.Location) (tg.InputFileLocationClass, error) {
	switch loc.Kind {
	case message.LocationKindPhoto:
		return &tg.InputPhotoFileLocation{
			ID:            loc.ID,
			AccessHash:    loc.AccessHash,
			FileReference: loc.FileReference,
			ThumbSize:     loc.ThumbSize,
		}, nil
	case message.LocationKindDocument:
		return &tg.InputDocumentFileLocation{
			ID:            loc.ID,
			AccessHash:    loc.AccessHash,
			FileReference: loc.FileReference,
			ThumbSize:     loc.ThumbSize,
		}, nil
	default:
		return nil, oops.With("kind", loc.Kind.String()).Wrap(sharedErrors.ErrUnsupportedMedia)
	}
}
