package service

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/reshetovitsme/tgfeed/internal/modules/operator/domain"
	"github.com/reshetovitsme/tgfeed/internal/modules/operator/repository"
)

// Service handles access to the control bot
type Service struct {
	repo    repository.Repository
	allowed []int64
	logger  *slog.Logger
	now     func() time.Time

	// mu serialises Touch so that only one operator becomes admin
	mu sync.Mutex
}

// New creates a new operator service. An empty allowed list lets everyone in.
func New(repo repository.Repository, allowed []int64) *Service {
	return &Service{
		repo:    repo,
		allowed: allowed,
		logger:  slog.Default().With("component", "operators"),
		now:     time.Now,
	}
}

// IsAuthorized checks if an operator may issue commands
func (s *Service) IsAuthorized(id int64) bool {
	if len(s.allowed) == 0 {
		return true
	}
	return lo.Contains(s.allowed, id)
}

// Touch records that an operator talked to the bot. The first operator
// ever recorded becomes admin.
func (s *Service) Touch(id int64, username string) (*domain.Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	operator, err := s.repo.GetOperator(id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		all, err := s.repo.GetAllOperators()
		if err != nil {
			return nil, oops.With("operator_id", id, "context", "failed to list operators").Wrap(err)
		}
		operator = &domain.Operator{ID: id, AddedAt: now, IsAdmin: len(all) == 0}
		s.logger.Info("New bot operator", "operator_id", id, "username", username, "admin", operator.IsAdmin)
	case err != nil:
		return nil, err
	}

	operator.Username = username
	operator.LastSeenAt = now

	if err := s.repo.SaveOperator(operator); err != nil {
		return nil, err
	}
	return operator, nil
}

// Admin returns the operator that became admin, or ErrNotFound before
// anyone talked to the bot.
func (s *Service) Admin() (*domain.Operator, error) {
	all, err := s.repo.GetAllOperators()
	if err != nil {
		return nil, err
	}
	admin, ok := lo.Find(all, func(o *domain.Operator) bool { return o.IsAdmin })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return admin, nil
}

// Count returns the number of operators seen so far
func (s *Service) Count() (int, error) {
	all, err := s.repo.GetAllOperators()
	if err != nil {
		return 0, err
	}
	return len(all), nil
}
