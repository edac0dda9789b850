package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/samber/oops"

	chat "github.com/reshetovitsme/tgfeed/internal/modules/chat/repository"
	"github.com/reshetovitsme/tgfeed/internal/modules/feed/domain"
	message "github.com/reshetovitsme/tgfeed/internal/modules/message/domain"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
)

// Config holds the paging limits of the feed service
type Config struct {
	DefaultLimit     int
	GroupExpandLimit int
}

// Request selects a feed page. Offset counts messages back from the newest.
type Request struct {
	Peer   peer.Peer
	Offset int
	Limit  int
}

// Service handles feed generation
type Service struct {
	chat     chat.Repository
	renderer *Renderer
	links    peer.Links
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a new feed service
func New(chat chat.Repository, renderer *Renderer, links peer.Links, cfg Config) *Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 25
	}
	if cfg.GroupExpandLimit <= 0 {
		cfg.GroupExpandLimit = 10
	}

	return &Service{
		chat:     chat,
		renderer: renderer,
		links:    links,
		cfg:      cfg,
		logger:   slog.Default().With("component", "feed"),
		now:      time.Now,
	}
}

// Feed fetches a page of history and renders it.
func (s *Service) Feed(ctx context.Context, req Request) (*domain.Feed, error) {
	p := req.Peer
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	msgs, err := s.chat.History(ctx, p, chat.HistoryQuery{Limit: limit, AddOffset: req.Offset})
	if err != nil {
		return nil, oops.With("peer", p.Ref().String(), "context", "failed to fetch history").Wrap(err)
	}
	if len(msgs) == 0 {
		return nil, oops.With("peer", p.Ref().String(), "offset", req.Offset).Wrap(sharedErrors.ErrEmptyFeed)
	}

	msgs = s.expandTrailingGroup(ctx, p, msgs)

	about, err := s.chat.PeerAbout(ctx, p)
	if err != nil {
		if errors.Is(err, sharedErrors.ErrPrivateChannel) {
			return nil, err
		}
		s.logger.WarnContext(ctx, "Failed to get peer description", "peer", p.Ref().String(), "error", err)
		about = ""
	}

	// the feed peer is at hand, no need to look it up for channel posts
	s.renderer.identities.Remember(p)

	feed := &domain.Feed{
		Meta: domain.Meta{
			PeerID:      p.Ref().ID,
			Title:       p.DisplayName(),
			Link:        s.links.PeerURL(p),
			Avatar:      s.links.Avatar(p),
			Description: about,
			Self:        s.links.FeedPage(p, req.Offset),
			Built:       s.now(),
			Offset:      req.Offset,
		},
		Entries: s.assemble(ctx, p, msgs),
	}

	s.logger.DebugContext(ctx, "Feed rendered",
		"peer", p.Ref().String(),
		"messages", len(msgs),
		"entries", len(feed.Entries),
	)

	return feed, nil
}

// expandTrailingGroup pulls the older siblings of an album cut by the page
// boundary. A failed follow-up fetch keeps the page as it is.
func (s *Service) expandTrailingGroup(ctx context.Context, p peer.Peer, msgs []*message.Message) []*message.Message {
	last := msgs[len(msgs)-1]
	if last.GroupID == 0 {
		return msgs
	}

	extra, err := s.chat.History(ctx, p, chat.HistoryQuery{Limit: s.cfg.GroupExpandLimit, MaxID: last.ID})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to expand trailing group", "peer", p.Ref().String(), "group", last.GroupID, "error", err)
		return msgs
	}

	return append(msgs, lo.Filter(extra, func(m *message.Message, _ int) bool {
		return m.GroupID == last.GroupID
	})...)
}
