package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
	"github.com/reshetovitsme/tgfeed/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// FileStorage implements peer.Repository using file system with an
// in-memory index in front of it
type FileStorage struct {
	basePath  string
	mu        sync.RWMutex
	records   map[domain.Ref]record
	usernames map[string]domain.Ref
}

// NewFileStorage creates a new file-based peer repository and loads every
// peer saved by a previous run
func NewFileStorage(basePath string) (Repository, error) {
	peerPath := filepath.Join(basePath, "peers")
	if err := os.MkdirAll(peerPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create peers directory").Wrap(err)
	}

	s := &FileStorage{
		basePath:  peerPath,
		records:   make(map[domain.Ref]record),
		usernames: make(map[string]domain.Ref),
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileStorage) load() error {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return oops.With("directory", s.basePath, "context", "failed to read peers directory").Wrap(err)
	}

	records := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (record, bool) {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			return record{}, false
		}

		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			return record{}, false
		}

		var r record
		if err := json.Unmarshal(data, &r); err != nil || !r.Kind.IsValid() {
			return record{}, false
		}

		return r, true
	})

	for _, r := range records {
		s.index(r)
	}

	return nil
}

func (s *FileStorage) index(r record) {
	s.records[r.ref()] = r
	if r.Username != "" {
		s.usernames[strings.ToLower(r.Username)] = r.ref()
	}
}

func (s *FileStorage) SavePeers(peers ...domain.Peer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range peers {
		if p == nil {
			continue
		}

		r := toRecord(p)
		old, known := s.records[r.ref()]
		if known {
			// Min constructors come without an access hash.
			if r.AccessHash == 0 {
				r.AccessHash = old.AccessHash
			}
			if old == r {
				continue
			}
			if old.Username != "" && !strings.EqualFold(old.Username, r.Username) {
				delete(s.usernames, strings.ToLower(old.Username))
			}
		}

		if err := s.write(r); err != nil {
			return err
		}
		s.index(r)
	}

	return nil
}

func (s *FileStorage) write(r record) error {
	path := filepath.Join(s.basePath, fmt.Sprintf("%s_%d.json", r.Kind, r.ID))
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return oops.With("peer", r.ref().String(), "context", "failed to marshal peer").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return oops.With("peer", r.ref().String(), "context", "failed to write peer").Wrap(err)
	}

	return nil
}

func (s *FileStorage) GetPeer(ref domain.Ref) (domain.Peer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[ref]
	if !ok {
		return nil, errors.ErrPeerNotFound
	}

	return r.toPeer(), nil
}

func (s *FileStorage) FindByID(id int64) (domain.Peer, error) {
	ref, exact := domain.ParseMarkedID(id)
	if exact {
		return s.GetPeer(ref)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := []domain.Ref{domain.ChannelRef(id), domain.UserRef(id), domain.UnknownRef(id)}
	for _, c := range candidates {
		if r, ok := s.records[c]; ok {
			return r.toPeer(), nil
		}
	}

	return nil, errors.ErrPeerNotFound
}

func (s *FileStorage) FindByUsername(username string) (domain.Peer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, ok := s.usernames[strings.ToLower(strings.TrimPrefix(username, "@"))]
	if !ok {
		return nil, errors.ErrPeerNotFound
	}

	return s.records[ref].toPeer(), nil
}

func (s *FileStorage) GetAllPeers() ([]domain.Peer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.MapToSlice(s.records, func(_ domain.Ref, r record) domain.Peer {
		return r.toPeer()
	}), nil
}
