package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/reshetovitsme/tgfeed/internal/modules/feed/domain"
	message "github.com/reshetovitsme/tgfeed/internal/modules/message/domain"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
)

// assemble renders a newest-first page in chronological order and merges
// albums.
func (s *Service) assemble(ctx context.Context, p peer.Peer, msgs []*message.Message) []*domain.Entry {
	entries := make([]*domain.Entry, 0, len(msgs))
	for _, m := range lo.Reverse(append([]*message.Message(nil), msgs...)) {
		entries = append(entries, s.renderer.Render(ctx, p, m))
	}
	return mergeGroups(entries)
}

// mergeGroups folds every album into its first-seen entry. Entries without
// a group keep their order; merged albums are appended after all of them,
// so the result is not globally chronological.
func mergeGroups(entries []*domain.Entry) []*domain.Entry {
	var (
		passthrough []*domain.Entry
		order       []int64
	)
	groups := make(map[int64]*domain.Entry)

	for _, e := range entries {
		if e.GroupID == 0 {
			passthrough = append(passthrough, e)
			continue
		}
		if head, ok := groups[e.GroupID]; ok {
			head.Body += e.Body
			continue
		}
		groups[e.GroupID] = e
		order = append(order, e.GroupID)
	}

	return append(passthrough, lo.Map(order, func(id int64, _ int) *domain.Entry {
		return groups[id]
	})...)
}
