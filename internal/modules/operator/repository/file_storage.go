package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/reshetovitsme/tgfeed/internal/modules/operator/domain"
)

// FileStorage implements Repository with one JSON file per operator
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based operator repository
func NewFileStorage(basePath string) (Repository, error) {
	operatorPath := filepath.Join(basePath, "operators")
	if err := os.MkdirAll(operatorPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create operators directory").Wrap(err)
	}

	return &FileStorage{basePath: operatorPath}, nil
}

func (s *FileStorage) path(id int64) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%d.json", id))
}

func (s *FileStorage) SaveOperator(operator *domain.Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(operator, "", "  ")
	if err != nil {
		return oops.With("operator_id", operator.ID, "context", "failed to marshal operator").Wrap(err)
	}

	if err := os.WriteFile(s.path(operator.ID), data, 0644); err != nil {
		return oops.With("operator_id", operator.ID, "context", "failed to write operator").Wrap(err)
	}
	return nil
}

func (s *FileStorage) GetOperator(id int64) (*domain.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oops.With("operator_id", id).Wrap(ErrNotFound)
		}
		return nil, oops.With("operator_id", id, "context", "failed to read operator").Wrap(err)
	}

	var operator domain.Operator
	if err := json.Unmarshal(data, &operator); err != nil {
		return nil, oops.With("operator_id", id, "context", "failed to unmarshal operator").Wrap(err)
	}

	return &operator, nil
}

// GetAllOperators skips files that cannot be read or parsed
func (s *FileStorage) GetAllOperators() ([]*domain.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, oops.With("directory", s.basePath, "context", "failed to read operators directory").Wrap(err)
	}

	return lo.FilterMap(entries, func(entry os.DirEntry, _ int) (*domain.Operator, bool) {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			return nil, false
		}

		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			return nil, false
		}

		var operator domain.Operator
		if err := json.Unmarshal(data, &operator); err != nil {
			return nil, false
		}

		return &operator, true
	}), nil
}
