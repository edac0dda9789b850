package errors

import "errors"

var (
	ErrMissingAPICredentials = errors.New("API_ID and API_HASH are required")
	ErrUnauthorized          = errors.New("unauthorized user")
	ErrNotConnected          = errors.New("telegram client is not connected")

	ErrPeerNotFound    = errors.New("peer not found")
	ErrPrivateChannel  = errors.New("channel is private")
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyFeed       = errors.New("no messages returned")

	ErrNoMedia          = errors.New("message has no media")
	ErrUnsupportedMedia = errors.New("unsupported media")
)

// MediaError names the media object a download could not be served from.
type MediaError struct {
	Media string
	Err   error
}

func (e *MediaError) Error() string {
	return e.Err.Error() + ": " + e.Media
}

func (e *MediaError) Unwrap() error {
	return e.Err
}
