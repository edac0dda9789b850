package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/samber/oops"

	chat "github.com/reshetovitsme/tgfeed/internal/modules/chat/repository"
	message "github.com/reshetovitsme/tgfeed/internal/modules/message/domain"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
	"github.com/reshetovitsme/tgfeed/internal/shared/metrics"
)

// Original selects the full file instead of a thumbnail
const Original = -1

const (
	jpegMime    = "image/jpeg"
	defaultMime = "application/octet-stream"
)

// Request addresses the media of a single message
type Request struct {
	Peer      peer.Peer
	MessageID int
	// Thumb indexes the thumbnails ordered by size, or is Original.
	Thumb int
}

// Source is a resolved download
type Source struct {
	Location message.Location
	MimeType string
	FileName string
	// Thumbnail is set when a preview size was selected
	Thumbnail bool
}

// Service handles media lookup and streaming
type Service struct {
	chat    chat.Repository
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new media service
func New(chat chat.Repository, m *metrics.Metrics) *Service {
	return &Service{
		chat:    chat,
		metrics: m,
		logger:  slog.Default().With("component", "media"),
	}
}

// Open fetches the message and picks the file to download.
func (s *Service) Open(ctx context.Context, req Request) (*Source, error) {
	m, err := s.chat.Message(ctx, req.Peer, req.MessageID)
	if err != nil {
		return nil, oops.With("peer", req.Peer.Ref().String(), "message_id", req.MessageID).Wrap(err)
	}

	src, err := selectSource(peer.Label(req.Peer), m, req.Thumb)
	if errors.Is(err, sharedErrors.ErrNoMedia) || errors.Is(err, sharedErrors.ErrUnsupportedMedia) {
		err = &sharedErrors.MediaError{Media: mediaName(m), Err: err}
	}
	if err != nil {
		return nil, oops.With("peer", req.Peer.Ref().String(), "message_id", req.MessageID).Wrap(err)
	}

	return src, nil
}

// Stream writes the file to w and counts the streamed bytes.
func (s *Service) Stream(ctx context.Context, src *Source, w io.Writer) error {
	kind := src.Location.Kind.String()
	if src.Thumbnail {
		kind = "thumbnail"
	}
	s.metrics.MediaRequests.WithLabelValues(kind).Inc()

	cw := &countingWriter{w: w}
	err := s.chat.Download(ctx, src.Location, cw)
	s.metrics.MediaBytes.Add(float64(cw.n))
	if err != nil {
		s.logger.ErrorContext(ctx, "Media download failed", "file", src.FileName, "written", cw.n, "error", err)
		return err
	}

	return nil
}

// Avatar streams the profile photo of p.
func (s *Service) Avatar(ctx context.Context, p peer.Peer, w io.Writer) error {
	s.metrics.MediaRequests.WithLabelValues("avatar").Inc()

	cw := &countingWriter{w: w}
	err := s.chat.DownloadProfilePhoto(ctx, p, cw)
	s.metrics.MediaBytes.Add(float64(cw.n))
	return err
}

func selectSource(label string, m *message.Message, thumb int) (*Source, error) {
	if doc, ok := m.Media.(*message.Document); ok {
		return documentSource(label, m.ID, doc, thumb)
	}

	photo, err := photoOf(m)
	if err != nil {
		return nil, err
	}

	size, ok := pickSize(photo.Sizes, thumb)
	if !ok {
		return nil, sharedErrors.ErrNoMedia
	}

	return &Source{
		Location: message.Location{
			Kind:          message.LocationKindPhoto,
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     size.Type,
		},
		MimeType:  jpegMime,
		FileName:  message.DefaultFileName(label, m.ID, ".jpg"),
		Thumbnail: thumb != Original,
	}, nil
}

func documentSource(label string, msgID int, doc *message.Document, thumb int) (*Source, error) {
	src := &Source{
		Location: message.Location{
			Kind:          message.LocationKindDocument,
			ID:            doc.ID,
			AccessHash:    doc.AccessHash,
			FileReference: doc.FileReference,
		},
		MimeType: doc.MimeType,
		FileName: doc.FileName,
	}
	if src.MimeType == "" {
		src.MimeType = defaultMime
	}
	if src.FileName == "" {
		src.FileName = message.DefaultFileName(label, msgID, ".bin")
	}

	if thumb == Original {
		return src, nil
	}

	size, ok := pickSize(doc.Thumbs, thumb)
	if !ok {
		return nil, sharedErrors.ErrNoMedia
	}
	src.Location.ThumbSize = size.Type
	src.MimeType = jpegMime
	src.FileName = message.DefaultFileName(label, msgID, ".jpg")
	src.Thumbnail = true

	return src, nil
}

// photoOf finds the photo of a photo message, a link preview or a
// channel photo change.
func photoOf(m *message.Message) (*message.Photo, error) {
	switch media := m.Media.(type) {
	case *message.Photo:
		return media, nil
	case *message.WebPage:
		if media.Photo != nil {
			return media.Photo, nil
		}
		return nil, sharedErrors.ErrNoMedia
	case *message.Unsupported:
		return nil, oops.With("media", media.Type).Wrap(sharedErrors.ErrUnsupportedMedia)
	}

	if action, ok := m.Action.(*message.ChatEditPhoto); ok && action.Photo != nil {
		return action.Photo, nil
	}

	return nil, sharedErrors.ErrNoMedia
}

// mediaName names the attachment of m the way the network types it
func mediaName(m *message.Message) string {
	switch media := m.Media.(type) {
	case *message.Photo:
		return "messageMediaPhoto"
	case *message.Document:
		return "messageMediaDocument"
	case *message.WebPage:
		return "messageMediaWebPage"
	case *message.Unsupported:
		return media.Type
	}
	if m.IsService() {
		return "messageService"
	}
	return "messageMediaEmpty"
}

// pickSize clamps index into sizes, which are ordered smallest first.
// Original selects the largest size.
func pickSize(sizes []message.Thumb, index int) (message.Thumb, bool) {
	if len(sizes) == 0 {
		return message.Thumb{}, false
	}
	if index == Original || index >= len(sizes) {
		return sizes[len(sizes)-1], true
	}
	return sizes[max(index, 0)], true
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
