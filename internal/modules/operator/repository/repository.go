package repository

import (
	"errors"

	"github.com/reshetovitsme/tgfeed/internal/modules/operator/domain"
)

var ErrNotFound = errors.New("operator not found")

// Repository defines the interface for operator persistence
type Repository interface {
	SaveOperator(operator *domain.Operator) error
	GetOperator(id int64) (*domain.Operator, error)
	GetAllOperators() ([]*domain.Operator, error)
}
