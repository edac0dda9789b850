package repository

import (
	"github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
)

// record is the on-disk form of a peer.
type record struct {
	Kind       domain.PeerKind `json:"kind"`
	ID         int64           `json:"id"`
	AccessHash int64           `json:"access_hash,omitempty"`
	Username   string          `json:"username,omitempty"`
	Title      string          `json:"title,omitempty"`
	FirstName  string          `json:"first_name,omitempty"`
	LastName   string          `json:"last_name,omitempty"`
	PhotoID    int64           `json:"photo_id,omitempty"`
	Broadcast  bool            `json:"broadcast,omitempty"`
	Bot        bool            `json:"bot,omitempty"`
}

func toRecord(p domain.Peer) record {
	switch v := p.(type) {
	case *domain.User:
		return record{
			Kind:       domain.PeerKindUser,
			ID:         v.ID,
			AccessHash: v.AccessHash,
			Username:   v.Username,
			FirstName:  v.FirstName,
			LastName:   v.LastName,
			PhotoID:    v.PhotoID,
			Bot:        v.Bot,
		}
	case *domain.Channel:
		return record{
			Kind:       domain.PeerKindChannel,
			ID:         v.ID,
			AccessHash: v.AccessHash,
			Username:   v.Username,
			Title:      v.Title,
			PhotoID:    v.PhotoID,
			Broadcast:  v.Broadcast,
		}
	case *domain.Unknown:
		return record{Kind: domain.PeerKindUnknown, ID: v.ID, Title: v.Title}
	default:
		ref := p.Ref()
		return record{Kind: ref.Kind, ID: ref.ID}
	}
}

func (r record) ref() domain.Ref {
	return domain.Ref{Kind: r.Kind, ID: r.ID}
}

func (r record) toPeer() domain.Peer {
	switch r.Kind {
	case domain.PeerKindUser:
		return &domain.User{
			ID:         r.ID,
			AccessHash: r.AccessHash,
			FirstName:  r.FirstName,
			LastName:   r.LastName,
			Username:   r.Username,
			PhotoID:    r.PhotoID,
			Bot:        r.Bot,
		}
	case domain.PeerKindChannel:
		return &domain.Channel{
			ID:         r.ID,
			AccessHash: r.AccessHash,
			Title:      r.Title,
			Username:   r.Username,
			PhotoID:    r.PhotoID,
			Broadcast:  r.Broadcast,
		}
	default:
		return &domain.Unknown{ID: r.ID, Title: r.Title}
	}
}
