package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	chat "github.com/reshetovitsme/tgfeed/internal/modules/chat/repository"
	"github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
)

// Identity is the result of a resolution. Denied is set when the peer is
// a private channel; Peer is empty then and Name holds the title last seen
// for it, if any.
type Identity struct {
	Name   string
	Peer   domain.Peer
	Denied bool
}

// Resolver is the part of the chat repository the cache needs.
type Resolver interface {
	ResolvePeer(ctx context.Context, ref domain.Ref) (domain.Peer, error)
	LookupID(ctx context.Context, id int64) (domain.Peer, error)
}

var _ Resolver = (chat.Repository)(nil)

// Service caches display names of peers for the lifetime of the process.
// Entries are never invalidated.
type Service struct {
	resolver Resolver
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[domain.Ref]Identity
}

// New creates a new identity cache
func New(resolver Resolver) *Service {
	return &Service{
		resolver: resolver,
		logger:   slog.Default().With("component", "identity"),
		entries:  make(map[domain.Ref]Identity),
	}
}

// Resolve returns the display string for a peer, fetching it on first use.
// Concurrent first lookups of the same peer may both reach the resolver.
func (s *Service) Resolve(ctx context.Context, ref domain.Ref) (Identity, error) {
	s.mu.RLock()
	id, ok := s.entries[ref]
	s.mu.RUnlock()
	if ok {
		return id, nil
	}

	p, err := s.resolver.ResolvePeer(ctx, ref)
	if err != nil {
		if errors.Is(err, sharedErrors.ErrPrivateChannel) {
			s.logger.DebugContext(ctx, "Identity denied", "peer", ref.String())
			return s.denied(ctx, ref), nil
		}
		return Identity{}, oops.With("peer", ref.String(), "context", "failed to resolve identity").Wrap(err)
	}

	id = Identity{Name: Name(p), Peer: p}

	s.mu.Lock()
	if existing, ok := s.entries[ref]; ok {
		id = existing
	} else {
		s.entries[ref] = id
	}
	s.mu.Unlock()

	return id, nil
}

// denied keeps the title of a private channel when the peer was seen
// before it became inaccessible.
func (s *Service) denied(ctx context.Context, ref domain.Ref) Identity {
	id := Identity{Denied: true}
	if known, err := s.resolver.LookupID(ctx, ref.ID); err == nil && known.Ref() == ref {
		id.Name = Name(known)
	}
	return id
}

// Remember stores the name of a peer that is already at hand.
func (s *Service) Remember(p domain.Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[p.Ref()]; !ok {
		s.entries[p.Ref()] = Identity{Name: Name(p), Peer: p}
	}
}

// Len returns the number of cached identities.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Name builds the identity string of a peer: "First Last (username)" for
// users with every field present, shorter forms otherwise, and the title
// for channels.
func Name(p domain.Peer) string {
	switch v := p.(type) {
	case *domain.User:
		return userName(v)
	case *domain.Channel:
		return v.Title
	default:
		return p.DisplayName()
	}
}

func userName(u *domain.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name = fmt.Sprintf("%s %s", u.FirstName, u.LastName)
	}

	switch {
	case name == "" && u.Username != "":
		return u.Username
	case name == "":
		return "Deleted Account"
	case u.Username != "":
		return fmt.Sprintf("%s (%s)", name, u.Username)
	default:
		return name
	}
}
