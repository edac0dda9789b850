package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
)

// statusOf maps domain errors to HTTP statuses
func statusOf(err error) int {
	switch {
	case errors.Is(err, sharedErrors.ErrPeerNotFound),
		errors.Is(err, sharedErrors.ErrMessageNotFound),
		errors.Is(err, sharedErrors.ErrNoMedia):
		return http.StatusNotFound
	case errors.Is(err, sharedErrors.ErrPrivateChannel):
		return http.StatusForbidden
	case errors.Is(err, sharedErrors.ErrEmptyFeed),
		errors.Is(err, sharedErrors.ErrUnsupportedMedia),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, sharedErrors.ErrNotConnected),
		errors.Is(err, sharedErrors.ErrUnauthorized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	s.metrics.HTTPErrors.WithLabelValues(routeOf(r), strconv.Itoa(status)).Inc()

	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.DebugContext(r.Context(), "Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	h := w.Header()
	h.Del("Content-Disposition")
	h.Del("Transfer-Encoding")
	http.Error(w, diagnostic(err, status), status)
}

// routeOf names the endpoint family of a request for metrics
func routeOf(r *http.Request) string {
	first, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	switch first {
	case "rss", "media", "profile":
		return first
	default:
		return "other"
	}
}

// diagnostic is the response body of a failed request. Media failures
// name the offending media object.
func diagnostic(err error, status int) string {
	var mediaErr *sharedErrors.MediaError
	if errors.As(err, &mediaErr) {
		return mediaErr.Error()
	}
	return http.StatusText(status)
}
