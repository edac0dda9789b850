package mtproto

import (
	"fmt"

	"github.com/gotd/td/tgerr"

	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
)

// classify maps RPC errors onto the shared sentinels while keeping the
// original error in the chain.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case tgerr.Is(err, "CHANNEL_PRIVATE", "CHAT_FORBIDDEN", "CHANNEL_PUBLIC_GROUP_NA"):
		return fmt.Errorf("%w: %w", sharedErrors.ErrPrivateChannel, err)
	case tgerr.Is(err,
		"USERNAME_NOT_OCCUPIED",
		"USERNAME_INVALID",
		"PEER_ID_INVALID",
		"CHANNEL_INVALID",
		"CHAT_ID_INVALID",
		"USER_ID_INVALID",
	):
		return fmt.Errorf("%w: %w", sharedErrors.ErrPeerNotFound, err)
	case tgerr.Is(err, "MSG_ID_INVALID"):
		return fmt.Errorf("%w: %w", sharedErrors.ErrMessageNotFound, err)
	case tgerr.Is(err, "AUTH_KEY_UNREGISTERED", "SESSION_REVOKED", "USER_DEACTIVATED"):
		return fmt.Errorf("%w: %w", sharedErrors.ErrUnauthorized, err)
	default:
		return err
	}
}
