package repository

import (
	"github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
)

// Repository keeps every peer the client has seen together with the access
// hash needed to address it again.
type Repository interface {
	SavePeers(peers ...domain.Peer) error
	GetPeer(ref domain.Ref) (domain.Peer, error)
	// FindByID accepts marked ids; bare positive ids are matched against
	// channels, then users, then other chats.
	FindByID(id int64) (domain.Peer, error)
	FindByUsername(username string) (domain.Peer, error)
	GetAllPeers() ([]domain.Peer, error)
}
