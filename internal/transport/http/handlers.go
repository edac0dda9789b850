package http

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	"github.com/reshetovitsme/tgfeed/internal/modules/feed/domain"
	feedService "github.com/reshetovitsme/tgfeed/internal/modules/feed/service"
	mediaService "github.com/reshetovitsme/tgfeed/internal/modules/media/service"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
)

// maxFeedLimit is the largest page the network returns in one call
const maxFeedLimit = 100

// errBadRequest marks malformed path or query values
var errBadRequest = errors.New("bad request")

type peerLookup func(r *http.Request) (peer.Peer, error)

func (s *Server) peerByHandle(r *http.Request) (peer.Peer, error) {
	return s.chat.ResolveHandle(r.Context(), chi.URLParam(r, "handle"))
}

func (s *Server) peerByID(r *http.Request) (peer.Peer, error) {
	raw := chi.URLParam(r, "peerID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, oops.With("peer_id", raw).Wrap(errBadRequest)
	}
	return s.chat.LookupID(r.Context(), id)
}

func (s *Server) handleFeedHead(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", feedService.ContentType(domain.FormatRss))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleFeed(lookup peerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, format, err := s.feedRequest(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		p, err := lookup(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		req.Peer = p

		feed, err := s.feeds.Feed(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		doc, err := feedService.Encode(feed, format)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.metrics.FeedsRendered.WithLabelValues(format.String()).Inc()
		s.metrics.FeedEntries.Observe(float64(len(feed.Entries)))

		w.Header().Set("Content-Type", feedService.ContentType(format))
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Header().Set("X-Feed-Offset", strconv.Itoa(feed.Meta.Offset))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(doc))
	}
}

func (s *Server) feedRequest(r *http.Request) (feedService.Request, domain.Format, error) {
	req := feedService.Request{Limit: s.cfg.FeedLimit}

	if raw := chi.URLParam(r, "offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return req, "", oops.With("offset", raw).Wrap(errBadRequest)
		}
		req.Offset = offset
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return req, "", oops.With("limit", raw).Wrap(errBadRequest)
		}
		req.Limit = min(limit, maxFeedLimit)
	}

	format := domain.FormatRss
	if raw := r.URL.Query().Get("format"); raw != "" {
		parsed, err := domain.ParseFormat(raw)
		if err != nil {
			return req, "", oops.With("format", raw).Wrap(errBadRequest)
		}
		format = parsed
	}

	return req, format, nil
}

func (s *Server) handleMedia(lookup peerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := mediaService.Request{Thumb: mediaService.Original}

		rawMsg := chi.URLParam(r, "msg")
		msgID, err := strconv.Atoi(rawMsg)
		if err != nil || msgID <= 0 {
			s.writeError(w, r, oops.With("msg", rawMsg).Wrap(errBadRequest))
			return
		}
		req.MessageID = msgID

		if raw := chi.URLParam(r, "size"); raw != "" {
			size, err := strconv.Atoi(raw)
			if err != nil || size < 0 {
				s.writeError(w, r, oops.With("size", raw).Wrap(errBadRequest))
				return
			}
			req.Thumb = size
		}

		if req.Peer, err = lookup(r); err != nil {
			s.writeError(w, r, err)
			return
		}

		src, err := s.media.Open(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		out := newStreamWriter(w, !src.Thumbnail, func(h http.Header) {
			h.Set("Content-Type", src.MimeType)
			h.Set("Cache-Control", "no-cache")
			h.Set("Content-Disposition", inline(src.FileName))
			if !src.Thumbnail {
				h.Set("Transfer-Encoding", "chunked")
			}
		})
		s.finish(w, r, out, s.media.Stream(r.Context(), src, out))
	}
}

func (s *Server) handleProfile(lookup peerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := lookup(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		out := newStreamWriter(w, false, func(h http.Header) {
			h.Set("Content-Type", "image/jpeg")
			h.Set("Cache-Control", "no-cache")
			h.Set("Content-Disposition", inline(peer.Label(p)))
		})
		s.finish(w, r, out, s.media.Avatar(r.Context(), p, out))
	}
}

// finish completes a streamed response. Errors before the first byte still
// get a proper status; later ones can only be logged.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, out *streamWriter, err error) {
	switch {
	case err == nil:
		out.commit()
	case !out.started():
		s.writeError(w, r, err)
	case errors.Is(err, context.Canceled):
		s.logger.DebugContext(r.Context(), "Client went away during download", "path", r.URL.Path, "written", out.written)
	default:
		s.logger.ErrorContext(r.Context(), "Download aborted", "path", r.URL.Path, "written", out.written, "error", err)
	}
}

// inline builds a Content-Disposition value, quoting the name when needed
func inline(name string) string {
	if v := mime.FormatMediaType("inline", map[string]string{"filename": name}); v != "" {
		return v
	}
	return fmt.Sprintf("inline; filename=%q", name)
}
